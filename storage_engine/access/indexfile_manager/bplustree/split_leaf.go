package bplus

import (
	"SlotDB/types"

	"github.com/pkg/errors"
)

// splitLeaf moves the upper half (by bytes) of leaf into a new right
// sibling appended to the file, relinks the leaf chain and returns the
// separator to promote: the right leaf's first key. leaf itself is left for
// the caller to write.
func (t *BPlusTree) splitLeaf(leaf *Node) ([]byte, *Node, error) {
	mid := byteMedian(leaf.keys, leafEntrySize, 1, len(leaf.keys)-1)

	right := &Node{
		isLeaf: true,
		keys:   append([][]byte(nil), leaf.keys[mid:]...),
		rids:   append([]types.RID(nil), leaf.rids[mid:]...),
		next:   leaf.next, // right inherits leaf's old next pointer
		prev:   int32(leaf.pageNum),
	}
	if err := t.appendNode(right); err != nil {
		return nil, nil, errors.Wrap(err, "splitLeaf: right sibling")
	}

	if right.next != noPage {
		oldNext, err := t.readNode(types.PageNum(right.next))
		if err != nil {
			return nil, nil, errors.Wrap(err, "splitLeaf: old next")
		}
		oldNext.prev = int32(right.pageNum)
		if err := t.writeNode(oldNext); err != nil {
			return nil, nil, err
		}
	}

	leaf.keys = leaf.keys[:mid]
	leaf.rids = leaf.rids[:mid]
	leaf.next = int32(right.pageNum)

	t.log.Debug("leaf split", "left", leaf.pageNum, "right", right.pageNum,
		"left_entries", len(leaf.keys), "right_entries", len(right.keys))
	return right.keys[0], right, nil
}
