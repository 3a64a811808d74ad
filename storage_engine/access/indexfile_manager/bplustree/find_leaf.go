package bplus

import (
	"SlotDB/types"

	"github.com/pkg/errors"
)

// FindLeaf returns the leaf a new entry with key belongs in: at each
// internal node it takes the child right of the last separator <= key.
func (t *BPlusTree) FindLeaf(key []byte) (types.PageNum, error) {
	if t.isEmpty() {
		return 0, ErrTreeEmpty
	}
	key, err := t.checkKey(key)
	if err != nil {
		return 0, errors.Wrap(err, "FindLeaf")
	}
	_, leaf, err := t.descend(key, upperBound)
	if err != nil {
		return 0, errors.Wrap(err, "FindLeaf")
	}
	return leaf.pageNum, nil
}

// descend walks from the root to a leaf, choosing children[pick(keys, key)]
// at every internal node, and returns the internal nodes passed. With
// upperBound it lands where key would be inserted; with lowerBound it lands
// on the leftmost leaf that can hold key. A nil key means the leftmost
// leaf.
func (t *BPlusTree) descend(key []byte, pick func([][]byte, []byte, func(a, b []byte) int) int) ([]pathStep, *Node, error) {
	var path []pathStep
	pageNum := rootPage
	for depth := 0; ; depth++ {
		node, err := t.readNode(pageNum)
		if err != nil {
			return nil, nil, err
		}
		if node.isLeaf {
			if pageNum == rootPage {
				return nil, nil, errors.Wrap(ErrCorruptNode, "root is a leaf")
			}
			return path, node, nil
		}
		if depth > int(t.fh.NumberOfPages()) {
			return nil, nil, errors.Wrapf(ErrCorruptNode, "descent through page %d never reaches a leaf", pageNum)
		}

		idx := 0
		if key != nil {
			idx = pick(node.keys, key, t.compare)
		}
		path = append(path, pathStep{node: node, childIdx: idx})
		pageNum = node.children[idx]
	}
}

// rightmostLeaf follows the last child at every level.
func (t *BPlusTree) rightmostLeaf() (*Node, error) {
	pageNum := rootPage
	for depth := 0; ; depth++ {
		node, err := t.readNode(pageNum)
		if err != nil {
			return nil, err
		}
		if node.isLeaf {
			return node, nil
		}
		if depth > int(t.fh.NumberOfPages()) {
			return nil, errors.Wrapf(ErrCorruptNode, "descent through page %d never reaches a leaf", pageNum)
		}
		pageNum = node.children[len(node.children)-1]
	}
}
