package bplus

import (
	"SlotDB/storage_engine/page"
	"SlotDB/types"

	"github.com/pkg/errors"
)

// Delete removes the entry (key, rid). A run of equal keys may span
// several leaves, so every subtree that can hold key is searched.
func (t *BPlusTree) Delete(key []byte, rid types.RID) error {
	if t.isEmpty() {
		return errors.Wrap(ErrKeyNotFound, "Delete: empty tree")
	}
	key, err := t.checkKey(key)
	if err != nil {
		return errors.Wrap(err, "Delete")
	}

	path, leaf, idx, err := t.locate(rootPage, key, rid, nil, 0)
	if err != nil {
		return errors.Wrap(err, "Delete")
	}
	if leaf == nil {
		return errors.Wrapf(ErrKeyNotFound, "Delete: no entry for rid %s", rid)
	}

	leaf.keys = remove(leaf.keys, idx)
	leaf.rids = remove(leaf.rids, idx)

	if err := t.rebalance(path, leaf); err != nil {
		return errors.Wrap(err, "Delete")
	}
	return nil
}

// locate runs a depth-first search below pageNum for the leaf entry
// (key, rid). It returns a nil leaf when there is none.
func (t *BPlusTree) locate(pageNum types.PageNum, key []byte, rid types.RID, path []pathStep, depth int) ([]pathStep, *Node, int, error) {
	if depth > int(t.fh.NumberOfPages()) {
		return nil, nil, 0, errors.Wrapf(ErrCorruptNode, "search through page %d never reaches a leaf", pageNum)
	}
	node, err := t.readNode(pageNum)
	if err != nil {
		return nil, nil, 0, err
	}

	if node.isLeaf {
		for i := lowerBound(node.keys, key, t.compare); i < len(node.keys); i++ {
			if t.compare(node.keys[i], key) != 0 {
				break
			}
			if node.rids[i] == rid {
				return path, node, i, nil
			}
		}
		return nil, nil, 0, nil
	}

	lo := lowerBound(node.keys, key, t.compare)
	hi := upperBound(node.keys, key, t.compare)
	for i := lo; i <= hi; i++ {
		step := append(path[:len(path):len(path)], pathStep{node: node, childIdx: i})
		found, leaf, idx, err := t.locate(node.children[i], key, rid, step, depth+1)
		if err != nil || leaf != nil {
			return found, leaf, idx, err
		}
	}
	return nil, nil, 0, nil
}

// rebalance writes node back after a removal. A non-root node left under
// half full is merged with a sibling under the same parent when both fit
// in one page, and otherwise shares the sibling's entries evenly. Merges
// remove a separator from the parent, which may underflow in turn.
func (t *BPlusTree) rebalance(path []pathStep, node *Node) error {
	for len(path) > 0 {
		if !node.underflows() {
			return t.writeNode(node)
		}

		step := path[len(path)-1]
		path = path[:len(path)-1]
		parent := step.node
		if len(parent.children) < 2 {
			// Only child of a separator-less root; nothing to pair with.
			if err := t.writeNode(node); err != nil {
				return err
			}
			node = parent
			continue
		}

		sepIdx := step.childIdx - 1
		var left, right *Node
		if step.childIdx > 0 {
			sibling, err := t.readNode(parent.children[sepIdx])
			if err != nil {
				return err
			}
			left, right = sibling, node
		} else {
			sepIdx = 0
			sibling, err := t.readNode(parent.children[1])
			if err != nil {
				return err
			}
			left, right = node, sibling
		}

		if mergedSize(left, right, parent.keys[sepIdx]) <= page.PageSize {
			if err := t.merge(left, right, parent.keys[sepIdx]); err != nil {
				return err
			}
			parent.keys = remove(parent.keys, sepIdx)
			parent.children = remove(parent.children, sepIdx+1)
			node = parent
			continue
		}

		parent.keys[sepIdx] = redistribute(left, right, parent.keys[sepIdx])
		if err := t.writeNode(left); err != nil {
			return err
		}
		if err := t.writeNode(right); err != nil {
			return err
		}
		t.log.Debug("siblings redistributed", "left", left.pageNum, "right", right.pageNum)

		// A longer separator can overflow the parent.
		return t.settle(path, parent)
	}

	return t.collapseRoot(node)
}

// mergedSize is the byte size of left and right joined into one node,
// including the separator an internal merge pulls down.
func mergedSize(left, right *Node, sep []byte) int {
	size := left.byteSize() + right.byteSize() - NodeHeaderSize
	if !left.isLeaf {
		size += internalEntrySize + len(sep)
	}
	return size
}

// merge folds right into left. right's page is abandoned.
func (t *BPlusTree) merge(left, right *Node, sep []byte) error {
	if left.isLeaf {
		left.keys = append(left.keys, right.keys...)
		left.rids = append(left.rids, right.rids...)
		left.next = right.next // skip over merged right in leaf chain
		if right.next != noPage {
			after, err := t.readNode(types.PageNum(right.next))
			if err != nil {
				return errors.Wrap(err, "merge: next leaf")
			}
			after.prev = int32(left.pageNum)
			if err := t.writeNode(after); err != nil {
				return err
			}
		}
	} else {
		// Internal merge: pull separator from parent down.
		left.keys = append(left.keys, sep)
		left.keys = append(left.keys, right.keys...)
		left.children = append(left.children, right.children...)
	}

	t.log.Debug("nodes merged", "into", left.pageNum, "abandoned", right.pageNum, "leaf", left.isLeaf)
	return t.writeNode(left)
}

// redistribute splits the entries of left and right evenly by bytes and
// returns the new separator between them.
func redistribute(left, right *Node, sep []byte) []byte {
	if left.isLeaf {
		keys := append(append([][]byte(nil), left.keys...), right.keys...)
		rids := append(append([]types.RID(nil), left.rids...), right.rids...)
		mid := byteMedian(keys, leafEntrySize, 1, len(keys)-1)

		left.keys, right.keys = keys[:mid:mid], keys[mid:]
		left.rids, right.rids = rids[:mid:mid], rids[mid:]
		return right.keys[0]
	}

	keys := append(append(append([][]byte(nil), left.keys...), sep), right.keys...)
	children := append(append([]types.PageNum(nil), left.children...), right.children...)
	mid := byteMedian(keys, internalEntrySize, 1, len(keys)-2)

	left.keys, right.keys = keys[:mid:mid], keys[mid+1:]
	left.children, right.children = children[:mid+1:mid+1], children[mid+1:]
	return keys[mid]
}
