package heapfile

import (
	"SlotDB/storage_engine/page"
	"SlotDB/types"
	"sort"

	"github.com/pkg/errors"
)

/*
Heap page binary layout (all values little-endian):

	Offset  Size  Field
	──────────────────────────────────────────────────────
	0       2     FreeSpaceOffset  uint16  first byte of the record area
	2       2     SlotCount        uint16  slot entries, live or not
	4       8*n   Slot directory   {Length uint32, Offset int32}
	──────────────────────────────────────────────────────

	[ header 4B ][ slot dir → ][ free space ][ ← records ]
	0           4              ^             ^             4096
	                           4+8*n         FreeSpaceOffset

	Slot directory grows FORWARD from the header.
	Records grow BACKWARD from PageSize.

Slot i lives at 4 + 8*i. A Moved slot reuses its two fields as a pointer:
Length holds the target page and -Offset the target slot. Slot 0 of page 0
is never a forwarding target, since that pointer would read as Dead.
*/
const (
	heapOffFreeSpace = 0 // uint16 (2)
	heapOffSlotCount = 2 // uint16 (2)

	HeapHeaderSize = 4

	// SlotSize is the byte size of one slot entry: Length(4) + Offset(4).
	SlotSize = 8

	// MaxRecordSize is the largest on-page record a fresh page can hold.
	MaxRecordSize = page.PageSize - HeapHeaderSize - SlotSize
)

// ─────────────────────────────────────────────────────────────────────────────
// Header
// ─────────────────────────────────────────────────────────────────────────────

func initHeapPage(pg *page.Page) {
	pg.Reset()
	setFreeSpaceOffset(pg, page.PageSize)
	setSlotCount(pg, 0)
}

func getFreeSpaceOffset(pg *page.Page) int {
	return int(pg.Uint16(heapOffFreeSpace))
}

func setFreeSpaceOffset(pg *page.Page, off int) {
	pg.PutUint16(heapOffFreeSpace, uint16(off))
}

func getSlotCount(pg *page.Page) uint32 {
	return uint32(pg.Uint16(heapOffSlotCount))
}

func setSlotCount(pg *page.Page, n uint32) {
	pg.PutUint16(heapOffSlotCount, uint16(n))
}

func slotDirEnd(pg *page.Page) int {
	return HeapHeaderSize + SlotSize*int(getSlotCount(pg))
}

// freeSpace is the gap between the slot directory and the record area.
func freeSpace(pg *page.Page) int {
	return max(0, getFreeSpaceOffset(pg)-slotDirEnd(pg))
}

// checkHeader validates the header fields read off disk before any slot or
// record access relies on them.
func checkHeader(pg *page.Page, pageNum types.PageNum) error {
	fso := getFreeSpaceOffset(pg)
	dirEnd := slotDirEnd(pg)
	if dirEnd > page.PageSize || fso < dirEnd || fso > page.PageSize {
		return errors.Wrapf(ErrCorruptPage, "page %d: freeSpaceOffset=%d slotCount=%d",
			pageNum, fso, getSlotCount(pg))
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Slots
// ─────────────────────────────────────────────────────────────────────────────

func slotPos(i uint32) int {
	return HeapHeaderSize + SlotSize*int(i)
}

func readSlot(pg *page.Page, i uint32) slot {
	pos := slotPos(i)
	return slot{length: pg.Uint32(pos), offset: pg.Int32(pos + 4)}
}

func writeSlot(pg *page.Page, i uint32, s slot) {
	pos := slotPos(i)
	pg.PutUint32(pos, s.length)
	pg.PutInt32(pos+4, s.offset)
}

func (s slot) isDead() bool  { return s.length == 0 && s.offset == 0 }
func (s slot) isMoved() bool { return !s.isDead() && s.offset <= 0 }
func (s slot) isValid() bool { return s.offset > 0 }

func (s slot) target() types.RID {
	return types.RID{PageNum: s.length, SlotNum: uint32(-s.offset)}
}

func movedSlot(to types.RID) slot {
	return slot{length: to.PageNum, offset: -int32(to.SlotNum)}
}

// recordBytes returns the live bytes of a Valid slot, after checking that
// the slot points inside the record area.
func recordBytes(pg *page.Page, rid types.RID, s slot) ([]byte, error) {
	off, n := int(s.offset), int(s.length)
	if off < getFreeSpaceOffset(pg) || !page.InBounds(off, n) {
		return nil, errors.Wrapf(ErrCorruptPage, "slot %s: record [%d, %d) outside record area", rid, off, off+n)
	}
	return pg.Bytes(off, n), nil
}

// pickSlot returns the lowest Dead slot, or the next new slot number.
// skipZero keeps slot 0 out of the result when it would become a
// forwarding target on page 0.
func pickSlot(pg *page.Page, skipZero bool) (uint32, bool) {
	count := getSlotCount(pg)
	for i := uint32(0); i < count; i++ {
		if i == 0 && skipZero {
			continue
		}
		if readSlot(pg, i).isDead() {
			return i, true
		}
	}
	if count == 0 && skipZero {
		return 0, false
	}
	return count, true
}

// placeRecord writes rec just below the record area under slot i, growing
// the slot directory if i is new. The caller has checked the space.
func placeRecord(pg *page.Page, i uint32, rec []byte) {
	off := getFreeSpaceOffset(pg) - len(rec)
	pg.PutBytes(off, rec)
	setFreeSpaceOffset(pg, off)
	if i >= getSlotCount(pg) {
		setSlotCount(pg, i+1)
	}
	writeSlot(pg, i, slot{length: uint32(len(rec)), offset: int32(off)})
}

// ─────────────────────────────────────────────────────────────────────────────
// Compaction
// ─────────────────────────────────────────────────────────────────────────────

// reorganizePage packs every Valid record against the end of the page, in
// descending order of its current offset, so the free space is one
// contiguous gap. Slot numbers do not change.
func reorganizePage(pg *page.Page) {
	count := getSlotCount(pg)
	live := make([]uint32, 0, count)
	for i := uint32(0); i < count; i++ {
		if readSlot(pg, i).isValid() {
			live = append(live, i)
		}
	}
	sort.Slice(live, func(a, b int) bool {
		return readSlot(pg, live[a]).offset > readSlot(pg, live[b]).offset
	})

	cursor := page.PageSize
	for _, i := range live {
		s := readSlot(pg, i)
		n := int(s.length)
		cursor -= n
		if cursor != int(s.offset) {
			pg.Move(cursor, int(s.offset), n)
			s.offset = int32(cursor)
			writeSlot(pg, i, s)
		}
	}

	dirEnd := slotDirEnd(pg)
	if cursor > dirEnd {
		pg.Zero(dirEnd, cursor-dirEnd)
	}
	setFreeSpaceOffset(pg, cursor)
}
