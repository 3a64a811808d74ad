package bplus

import (
	"SlotDB/storage_engine/page"
	"SlotDB/types"

	"github.com/pkg/errors"
)

/*
SerializeNode writes a Node into a page; DeserializeNode reads it back.

Layout:

	Header (17 bytes):
	  entryCount       uint16  @0
	  freeSpaceOffset  uint16  @2   first byte of the key area
	  isLeaf           uint8   @4   1=leaf, 0=internal
	  next             int32   @5   leaf-only, -1 if none
	  prev             int32   @9   leaf-only, -1 if none
	  leftmostChild    int32   @13  internal-only, -1 for leaves

	Entry directory (after the header, grows forward):
	  leaf:      [ keyOffset uint16 | pageNum uint32 | slotNum uint32 ]  (10 bytes)
	  internal:  [ keyOffset uint16 | rightChild int32 ]                 (6 bytes)

	Key area (grows backward from PageSize):
	  keys in wire format, so a VARCHAR key carries its 4 byte length

Entry i of an internal node holds separator keys[i] and children[i+1];
children[0] is leftmostChild. Serializing always repacks the key area, so a
node on disk never has holes.
*/

const (
	nodeOffEntryCount    = 0
	nodeOffFreeSpace     = 2
	nodeOffIsLeaf        = 4
	nodeOffNext          = 5
	nodeOffPrev          = 9
	nodeOffLeftmostChild = 13

	NodeHeaderSize    = 17
	leafEntrySize     = 10
	internalEntrySize = 6
)

func entrySize(isLeaf bool) int {
	if isLeaf {
		return leafEntrySize
	}
	return internalEntrySize
}

// byteSize is the number of bytes the node needs on a page.
func (n *Node) byteSize() int {
	size := NodeHeaderSize
	es := entrySize(n.isLeaf)
	for _, k := range n.keys {
		size += es + len(k)
	}
	return size
}

func (n *Node) fits() bool {
	return n.byteSize() <= page.PageSize
}

// underflows reports whether the node uses less than half of a page's
// usable space.
func (n *Node) underflows() bool {
	return n.byteSize()-NodeHeaderSize < (page.PageSize-NodeHeaderSize)/2
}

func SerializeNode(node *Node, pg *page.Page) error {
	if !node.fits() {
		return errors.Errorf("SerializeNode: node %d needs %d bytes", node.pageNum, node.byteSize())
	}
	pg.Reset()

	pg.PutUint16(nodeOffEntryCount, uint16(len(node.keys)))
	next, prev, leftmost := int32(noPage), int32(noPage), int32(noPage)
	if node.isLeaf {
		pg.PutUint8(nodeOffIsLeaf, 1)
		next, prev = node.next, node.prev
	} else {
		leftmost = int32(node.children[0])
	}
	pg.PutInt32(nodeOffNext, next)
	pg.PutInt32(nodeOffPrev, prev)
	pg.PutInt32(nodeOffLeftmostChild, leftmost)

	keyOff := page.PageSize
	dir := NodeHeaderSize
	for i, key := range node.keys {
		keyOff -= len(key)
		pg.PutBytes(keyOff, key)
		pg.PutUint16(dir, uint16(keyOff))
		if node.isLeaf {
			pg.PutUint32(dir+2, node.rids[i].PageNum)
			pg.PutUint32(dir+6, node.rids[i].SlotNum)
		} else {
			pg.PutInt32(dir+2, int32(node.children[i+1]))
		}
		dir += entrySize(node.isLeaf)
	}
	pg.PutUint16(nodeOffFreeSpace, uint16(keyOff))
	return nil
}

// DeserializeNode parses a node page, validating every offset against the
// page before it is used.
func DeserializeNode(pg *page.Page, pageNum types.PageNum, attrType types.AttrType) (*Node, error) {
	corrupt := func(format string, args ...any) error {
		return errors.Wrapf(ErrCorruptNode, "page %d: "+format, append([]any{pageNum}, args...)...)
	}

	count := int(pg.Uint16(nodeOffEntryCount))
	fso := int(pg.Uint16(nodeOffFreeSpace))
	isLeaf := pg.Uint8(nodeOffIsLeaf)
	if isLeaf > 1 {
		return nil, corrupt("isLeaf=%d", isLeaf)
	}

	node := &Node{pageNum: pageNum, isLeaf: isLeaf == 1, next: noPage, prev: noPage}
	es := entrySize(node.isLeaf)
	dirEnd := NodeHeaderSize + count*es
	if dirEnd > fso || fso > page.PageSize {
		return nil, corrupt("%d entries with freeSpaceOffset %d", count, fso)
	}

	if node.isLeaf {
		node.next = pg.Int32(nodeOffNext)
		node.prev = pg.Int32(nodeOffPrev)
		node.rids = make([]types.RID, 0, count)
	} else {
		leftmost := pg.Int32(nodeOffLeftmostChild)
		if leftmost < 0 {
			return nil, corrupt("internal node without leftmost child")
		}
		node.children = make([]types.PageNum, 0, count+1)
		node.children = append(node.children, types.PageNum(leftmost))
	}

	node.keys = make([][]byte, 0, count)
	for i := 0; i < count; i++ {
		dir := NodeHeaderSize + i*es
		keyOff := int(pg.Uint16(dir))
		if keyOff < fso || keyOff >= page.PageSize {
			return nil, corrupt("entry %d key offset %d outside key area", i, keyOff)
		}
		rest := pg.Bytes(keyOff, page.PageSize-keyOff)
		n, err := types.ValueSize(attrType, rest)
		if err != nil {
			return nil, corrupt("entry %d: %v", i, err)
		}
		node.keys = append(node.keys, append([]byte(nil), rest[:n]...))

		if node.isLeaf {
			node.rids = append(node.rids, types.RID{PageNum: pg.Uint32(dir + 2), SlotNum: pg.Uint32(dir + 6)})
		} else {
			child := pg.Int32(dir + 2)
			if child < 0 {
				return nil, corrupt("entry %d has no right child", i)
			}
			node.children = append(node.children, types.PageNum(child))
		}
	}
	return node, nil
}
