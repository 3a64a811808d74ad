package bplus

import (
	"SlotDB/types"

	"github.com/pkg/errors"
)

// splitInternal splits a full internal node and promotes the middle key.
// The upper half goes to a new page; node is left for the caller to write.
func (t *BPlusTree) splitInternal(node *Node) ([]byte, *Node, error) {
	// mid is the index of the key to promote
	mid := byteMedian(node.keys, internalEntrySize, 1, len(node.keys)-2)
	promoteKey := node.keys[mid]

	right := &Node{
		keys:     append([][]byte(nil), node.keys[mid+1:]...),
		children: append([]types.PageNum(nil), node.children[mid+1:]...),
	}
	if err := t.appendNode(right); err != nil {
		return nil, nil, errors.Wrap(err, "splitInternal: right sibling")
	}

	// Shrink left.
	node.keys = node.keys[:mid]
	node.children = node.children[:mid+1]

	t.log.Debug("internal split", "left", node.pageNum, "right", right.pageNum)
	return promoteKey, right, nil
}
