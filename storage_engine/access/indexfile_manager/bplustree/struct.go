// Structure of B+ Tree
/*
Tree
 ├── Internal Node (keys + child pointers), always page 0 for the root
 │      └── Child Internal Nodes ...
 │             └── Leaf Nodes (keys + RIDs + next/prev pointers)

- keys: sorted ascending, duplicates allowed
- internal nodes: children length == len(keys)+1
- leaf nodes: rids length == len(keys)
- leaf nodes doubly linked with next/prev for range scans
- all leaf nodes at same depth
- for separator keys[i]: every key under children[i] <= keys[i] <= every key under children[i+1]
*/
package bplus

import (
	diskmanager "SlotDB/storage_engine/disk_manager"
	"SlotDB/types"
	"log/slog"

	"github.com/pkg/errors"
)

var (
	ErrKeyNotFound = errors.New("key not found")
	ErrTreeEmpty   = errors.New("tree is empty")
	ErrKeyTooLarge = errors.New("key too large")
	ErrCorruptNode = errors.New("corrupt index node")
)

const (
	rootPage types.PageNum = 0

	// noPage marks an absent sibling or child pointer on disk.
	noPage = -1

	// MaxKeySize bounds a key in wire format (VARCHAR length prefix
	// included) so that both halves of any split fit in a page.
	MaxKeySize = 1024
)

type Node struct {
	pageNum  types.PageNum
	isLeaf   bool
	keys     [][]byte        // wire-format keys, sorted
	rids     []types.RID     // leaf only
	children []types.PageNum // internal only
	next     int32           // leaf only, noPage if none
	prev     int32           // leaf only, noPage if none
}

// BPlusTree is a view of one open index file. It holds no node state
// between calls; every operation reads the nodes it touches.
type BPlusTree struct {
	fh       *diskmanager.FileHandle
	attrType types.AttrType
	log      *slog.Logger
}

// pathStep records an internal node passed on the way down and the child
// index taken out of it.
type pathStep struct {
	node     *Node
	childIdx int
}
