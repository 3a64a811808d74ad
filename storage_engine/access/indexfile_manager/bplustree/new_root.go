package bplus

import (
	"SlotDB/types"

	"github.com/pkg/errors"
)

// createNewRoot handles a split of page 0. The root must stay at page 0, so
// the left half moves to a new page too and page 0 is rewritten as an
// internal node over both halves. The tree grows by one level.
func (t *BPlusTree) createNewRoot(left *Node, sepKey []byte, right *Node) error {
	if err := t.appendNode(left); err != nil {
		return errors.Wrap(err, "createNewRoot: left half")
	}

	root := &Node{
		pageNum:  rootPage,
		keys:     [][]byte{sepKey},
		children: []types.PageNum{left.pageNum, right.pageNum},
	}
	if err := t.writeNode(root); err != nil {
		return errors.Wrap(err, "createNewRoot")
	}

	t.log.Debug("root split", "left", left.pageNum, "right", right.pageNum)
	return nil
}

// collapseRoot replaces a root that has no separators and an internal only
// child with that child, shrinking the tree by one level. A leaf only child
// stays under the root, since page 0 is always internal.
func (t *BPlusTree) collapseRoot(root *Node) error {
	for len(root.keys) == 0 {
		child, err := t.readNode(root.children[0])
		if err != nil {
			return err
		}
		if child.isLeaf {
			break
		}
		old := child.pageNum
		child.pageNum = rootPage
		root = child
		t.log.Debug("root collapsed", "from", old)
	}
	return t.writeNode(root)
}
