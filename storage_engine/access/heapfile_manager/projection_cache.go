package heapfile

import (
	"SlotDB/types"
	"strings"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/pkg/errors"
)

const defaultProjectionCacheSize = 1024

// projectionCache maps (schema, attribute names) to the field positions
// the names resolve to. It caches name resolution only, never page data.
// Callers pass the schema on every call, so without it every Scan and
// ReadAttribute would rescan the attribute list for each requested name;
// with it a repeated projection over a wide schema costs one hash lookup.
type projectionCache struct {
	cache  *ristretto.Cache[string, []int]
	closed bool
}

func newProjectionCache(size int64) (*projectionCache, error) {
	if size <= 0 {
		size = defaultProjectionCacheSize
	}
	cache, err := ristretto.NewCache(&ristretto.Config[string, []int]{
		NumCounters: size * 10,
		MaxCost:     size,
		BufferItems: 64,

		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "projection cache")
	}
	return &projectionCache{cache: cache}, nil
}

func projectionKey(attrs []types.Attribute, names []string) string {
	var b strings.Builder
	for _, a := range attrs {
		b.WriteString(a.Name)
		b.WriteByte(':')
		b.WriteString(a.Type.String())
		b.WriteByte(0)
	}
	b.WriteByte('|')
	b.WriteString(strings.Join(names, "\x00"))
	return b.String()
}

// resolve returns the position of every name in attrs. Sets are
// asynchronous, so a lookup right after a miss may miss again; it then
// resolves from attrs.
func (pc *projectionCache) resolve(attrs []types.Attribute, names []string) ([]int, error) {
	key := projectionKey(attrs, names)
	if positions, ok := pc.cache.Get(key); ok {
		return positions, nil
	}

	positions := make([]int, len(names))
	for i, name := range names {
		positions[i] = types.AttributeIndex(attrs, name)
		if positions[i] < 0 {
			return nil, errors.Wrapf(ErrNoSuchAttribute, "%q", name)
		}
	}
	pc.cache.Set(key, positions, 1)
	return positions, nil
}

func (pc *projectionCache) close() {
	if !pc.closed {
		pc.closed = true
		pc.cache.Close()
	}
}
