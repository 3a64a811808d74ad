package heapfile

import (
	diskmanager "SlotDB/storage_engine/disk_manager"
	"SlotDB/storage_engine/page"
	"SlotDB/types"
	"log/slog"

	"github.com/pkg/errors"
)

var (
	ErrSlotDoesNotExist = errors.New("slot does not exist")
	ErrReadAfterDelete  = errors.New("record has been deleted")
	ErrNoSuchAttribute  = errors.New("no such attribute")
	ErrRecordTooLarge   = errors.New("record does not fit in an empty page")
	ErrForwardingCycle  = errors.New("forwarding chain revisits a slot")
	ErrCorruptPage      = errors.New("corrupt heap page")
)

// Options configures a HeapFileManager.
type Options struct {
	// ProjectionCacheSize bounds the number of resolved projections kept
	// in memory. Zero picks a default.
	ProjectionCacheSize int64
	Logger              *slog.Logger
}

// HeapFileManager stores variable-length records in slotted pages of files
// opened through its DiskManager. It keeps no page state between calls.
type HeapFileManager struct {
	diskManager *diskmanager.DiskManager
	projections *projectionCache
	log         *slog.Logger
}

// slot is one 8 byte slot directory entry.
//
//	Valid:  offset > 0, length = record bytes
//	Dead:   length == 0 && offset == 0
//	Moved:  offset <= 0, record lives at RID{length, -offset}
type slot struct {
	length uint32
	offset int32
}

// ScanIterator walks a heap file forward one slot at a time. It holds one
// page buffer for its whole life.
type ScanIterator struct {
	fh    *diskmanager.FileHandle
	attrs []types.Attribute

	condIdx int // -1 when there is no predicate
	op      types.CompOp
	value   []byte // predicate literal in wire format

	projection []int // positions in attrs, empty means RIDs only

	pg      *page.Page
	pageNum types.PageNum
	slotNum uint32
	loaded  bool
	closed  bool
}
