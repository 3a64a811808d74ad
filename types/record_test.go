package types

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var employee = []Attribute{
	{Name: "EmpName", Type: TypeVarChar, Length: 30},
	{Name: "Age", Type: TypeInt, Length: 4},
	{Name: "Height", Type: TypeReal, Length: 4},
	{Name: "Salary", Type: TypeInt, Length: 4},
}

func TestRecordRoundTrip(t *testing.T) {
	cases := []struct {
		name   string
		values []any
	}{
		{"all set", []any{"Anteater", int32(25), float32(177.8), int32(6200)}},
		{"empty varchar", []any{"", int32(0), float32(0), int32(-1)}},
		{"some nulls", []any{nil, int32(31), nil, int32(1)}},
		{"all null", []any{nil, nil, nil, nil}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := EncodeRecord(employee, tc.values)
			require.NoError(t, err)

			got, err := DecodeRecord(employee, data)
			require.NoError(t, err)
			assert.Equal(t, tc.values, got)

			_, size, err := WalkRecord(employee, data)
			require.NoError(t, err)
			assert.Equal(t, len(data), size)
		})
	}
}

func TestNullBitmapLayout(t *testing.T) {
	attrs := make([]Attribute, 10)
	for i := range attrs {
		attrs[i] = Attribute{Name: string(rune('a' + i)), Type: TypeInt, Length: 4}
	}
	values := make([]any, 10)
	for i := range values {
		values[i] = int32(i)
	}
	values[0] = nil
	values[9] = nil

	data, err := EncodeRecord(attrs, values)
	require.NoError(t, err)
	require.Equal(t, 2, NullIndicatorSize(len(attrs)))
	assert.Equal(t, byte(0x80), data[0])
	assert.Equal(t, byte(0x40), data[1])
	assert.Len(t, data, 2+8*4)
}

func TestWalkRecordRejectsShortData(t *testing.T) {
	data, err := EncodeRecord(employee, []any{"Anteater", int32(25), float32(1), int32(2)})
	require.NoError(t, err)

	for _, n := range []int{0, 3, len(data) - 1} {
		_, _, err := WalkRecord(employee, data[:n])
		assert.True(t, errors.Is(err, ErrMalformedRecord), "prefix %d: %v", n, err)
	}
}

func TestCompareValues(t *testing.T) {
	assert.Equal(t, -1, CompareValues(TypeInt, IntValue(-5), IntValue(3)))
	assert.Equal(t, 0, CompareValues(TypeInt, IntValue(7), IntValue(7)))
	assert.Equal(t, 1, CompareValues(TypeReal, RealValue(2.5), RealValue(-1)))
	assert.Equal(t, -1, CompareValues(TypeReal, RealValue(float32(math.Inf(-1))), RealValue(0)))

	assert.Equal(t, -1, CompareValues(TypeVarChar, VarCharValue("ab"), VarCharValue("abc")))
	assert.Equal(t, 1, CompareValues(TypeVarChar, VarCharValue("b"), VarCharValue("abc")))
	assert.Equal(t, 0, CompareValues(TypeVarChar, VarCharValue(""), VarCharValue("")))
}

func TestCompareValuesOrdersNaN(t *testing.T) {
	nan := RealValue(float32(math.NaN()))
	assert.Equal(t, 0, CompareValues(TypeReal, nan, nan))
	assert.Equal(t, -1, CompareValues(TypeReal, nan, RealValue(float32(math.Inf(-1)))))
	assert.Equal(t, 1, CompareValues(TypeReal, RealValue(0), nan))
}

func TestCompOpHolds(t *testing.T) {
	assert.True(t, LE.Holds(0))
	assert.True(t, LE.Holds(-1))
	assert.False(t, LT.Holds(0))
	assert.True(t, NE.Holds(1))
	assert.False(t, EQ.Holds(1))
	assert.True(t, NoOp.Holds(42))
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "25", FormatValue(TypeInt, IntValue(25)))
	assert.Equal(t, "1.5", FormatValue(TypeReal, RealValue(1.5)))
	assert.Equal(t, "Anteater", FormatValue(TypeVarChar, VarCharValue("Anteater")))
}
