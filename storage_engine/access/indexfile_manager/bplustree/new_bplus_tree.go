package bplus

import (
	"SlotDB/logging"
	diskmanager "SlotDB/storage_engine/disk_manager"
	"SlotDB/storage_engine/page"
	"SlotDB/types"
	"log/slog"

	"github.com/pkg/errors"
)

/*
A BPlusTree is built per call by the index file manager from an open
FileHandle and the key attribute's type. The file starts with zero pages;
the first insert lays down an empty root at page 0 pointing to an empty
leaf at page 1.

Pages released by merges are not reused. There is no free list, so a file
never shrinks.
*/

func NewBPlusTree(fh *diskmanager.FileHandle, attrType types.AttrType, logger *slog.Logger) *BPlusTree {
	return &BPlusTree{
		fh:       fh,
		attrType: attrType,
		log:      logging.OrDiscard(logger),
	}
}

func (t *BPlusTree) isEmpty() bool {
	return t.fh.NumberOfPages() == 0
}

// initTree writes the root and the first leaf of an empty file.
func (t *BPlusTree) initTree() error {
	root := &Node{pageNum: rootPage, children: []types.PageNum{1}}
	if err := t.appendNode(root); err != nil {
		return errors.Wrap(err, "initTree: root")
	}
	leaf := &Node{isLeaf: true, next: noPage, prev: noPage}
	if err := t.appendNode(leaf); err != nil {
		return errors.Wrap(err, "initTree: first leaf")
	}
	t.log.Debug("index initialised", "root", root.pageNum, "leaf", leaf.pageNum)
	return nil
}

func (t *BPlusTree) readNode(pageNum types.PageNum) (*Node, error) {
	pg := page.New()
	if err := t.fh.ReadPage(pageNum, pg); err != nil {
		return nil, err
	}
	return DeserializeNode(pg, pageNum, t.attrType)
}

func (t *BPlusTree) writeNode(n *Node) error {
	pg := page.New()
	if err := SerializeNode(n, pg); err != nil {
		return err
	}
	return t.fh.WritePage(n.pageNum, pg)
}

// appendNode stores n as a new last page and sets its page number.
func (t *BPlusTree) appendNode(n *Node) error {
	n.pageNum = t.fh.NumberOfPages()
	pg := page.New()
	if err := SerializeNode(n, pg); err != nil {
		return err
	}
	return t.fh.AppendPage(pg)
}

// checkKey validates a wire-format key and returns it trimmed to its
// exact size.
func (t *BPlusTree) checkKey(key []byte) ([]byte, error) {
	n, err := types.ValueSize(t.attrType, key)
	if err != nil {
		return nil, err
	}
	if n > MaxKeySize {
		return nil, errors.Wrapf(ErrKeyTooLarge, "%d bytes, max %d", n, MaxKeySize)
	}
	return key[:n], nil
}
