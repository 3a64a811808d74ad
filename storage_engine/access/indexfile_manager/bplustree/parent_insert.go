package bplus

import "SlotDB/types"

// settle writes node back, splitting it and every ancestor on path that
// overflows. path holds the ancestors of node, root first.
func (t *BPlusTree) settle(path []pathStep, node *Node) error {
	for {
		if node.fits() {
			return t.writeNode(node)
		}

		var sepKey []byte
		var right *Node
		var err error
		if node.isLeaf {
			sepKey, right, err = t.splitLeaf(node)
		} else {
			sepKey, right, err = t.splitInternal(node)
		}
		if err != nil {
			return err
		}

		if node.pageNum == rootPage {
			return t.createNewRoot(node, sepKey, right)
		}

		if err := t.writeNode(node); err != nil {
			return err
		}

		step := path[len(path)-1]
		path = path[:len(path)-1]
		node = t.insertIntoParent(step, sepKey, right.pageNum)
	}
}

// insertIntoParent adds sepKey and the new right child next to the child
// the descent took.
func (t *BPlusTree) insertIntoParent(step pathStep, sepKey []byte, rightNum types.PageNum) *Node {
	parent := step.node
	parent.keys = insert(parent.keys, step.childIdx, sepKey)
	parent.children = insert(parent.children, step.childIdx+1, rightNum)
	return parent
}
