package bplus

import (
	"SlotDB/types"
	"io"

	"github.com/pkg/errors"
)

// Iterator provides a forward-only range scan over the leaves. It holds
// one leaf at a time and never re-descends the tree.
type Iterator struct {
	tree    *BPlusTree
	leaf    *Node
	index   int
	endLeaf types.PageNum

	low, high         []byte // nil means unbounded
	lowIncl, highIncl bool

	done bool
}

// Scan positions an iterator before the first entry within the bounds.
// A nil low starts at the leftmost leaf; a nil high runs to the rightmost.
func (t *BPlusTree) Scan(low, high []byte, lowIncl, highIncl bool) (*Iterator, error) {
	it := &Iterator{tree: t, low: low, high: high, lowIncl: lowIncl, highIncl: highIncl}
	if t.isEmpty() {
		it.done = true
		return it, nil
	}

	var err error
	if low != nil {
		if it.low, err = t.checkKey(low); err != nil {
			return nil, errors.Wrap(err, "Scan: low key")
		}
	}
	if high != nil {
		if it.high, err = t.checkKey(high); err != nil {
			return nil, errors.Wrap(err, "Scan: high key")
		}
	}

	// Equal keys may sit left of their separator, so the start leaf comes
	// from the left-biased descent and the end leaf from the right-biased one.
	if _, it.leaf, err = t.descend(it.low, lowerBound); err != nil {
		return nil, errors.Wrap(err, "Scan: start leaf")
	}
	var end *Node
	if it.high == nil {
		end, err = t.rightmostLeaf()
	} else {
		_, end, err = t.descend(it.high, upperBound)
	}
	if err != nil {
		return nil, errors.Wrap(err, "Scan: end leaf")
	}
	it.endLeaf = end.pageNum
	return it, nil
}

// GetNextEntry returns the next (rid, key) in ascending key order, or
// io.EOF once the range is exhausted.
func (it *Iterator) GetNextEntry() (types.RID, []byte, error) {
	t := it.tree
	for !it.done {
		if it.index >= len(it.leaf.keys) {
			if it.leaf.pageNum == it.endLeaf || it.leaf.next == noPage {
				it.done = true
				break
			}
			next, err := t.readNode(types.PageNum(it.leaf.next))
			if err != nil {
				return types.RID{}, nil, errors.Wrap(err, "GetNextEntry")
			}
			if !next.isLeaf {
				return types.RID{}, nil, errors.Wrapf(ErrCorruptNode, "leaf chain reaches internal page %d", next.pageNum)
			}
			it.leaf, it.index = next, 0
			continue
		}

		key, rid := it.leaf.keys[it.index], it.leaf.rids[it.index]
		it.index++

		if it.low != nil {
			if c := t.compare(key, it.low); c < 0 || (c == 0 && !it.lowIncl) {
				continue
			}
		}
		if it.high != nil {
			if c := t.compare(key, it.high); c > 0 || (c == 0 && !it.highIncl) {
				it.done = true
				break
			}
		}
		return rid, key, nil
	}
	return types.RID{}, nil, io.EOF
}

// Close releases the held leaf.
func (it *Iterator) Close() error {
	it.leaf = nil
	it.done = true
	return nil
}
