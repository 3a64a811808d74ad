package heapfile

import (
	"testing"

	"SlotDB/types"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectionCacheKeysOnSchema(t *testing.T) {
	pc, err := newProjectionCache(0)
	require.NoError(t, err)
	defer pc.close()

	reordered := []types.Attribute{employee[3], employee[1], employee[0], employee[2]}
	names := []string{"Salary", "EmpName"}

	for range 3 {
		got, err := pc.resolve(employee, names)
		require.NoError(t, err)
		assert.Equal(t, []int{3, 0}, got)

		got, err = pc.resolve(reordered, names)
		require.NoError(t, err)
		assert.Equal(t, []int{0, 2}, got)

		pc.cache.Wait()
	}

	assert.NotEqual(t, projectionKey(employee, names), projectionKey(reordered, names))
	assert.NotEqual(t, projectionKey(employee, []string{"Age"}), projectionKey(employee, []string{"Height"}))

	_, err = pc.resolve(employee, []string{"Salary", "Bonus"})
	assert.True(t, errors.Is(err, ErrNoSuchAttribute))

	pc.close()
	pc.close()
}
