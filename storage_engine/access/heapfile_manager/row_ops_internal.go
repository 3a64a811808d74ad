package heapfile

import (
	diskmanager "SlotDB/storage_engine/disk_manager"
	"SlotDB/storage_engine/page"
	"SlotDB/types"

	"github.com/pkg/errors"
)

/*
Page-level helpers shared by the record operations. None of them keep a
page across calls: the caller passes the buffer and decides when to write
it back.
*/

func readHeapPage(fh *diskmanager.FileHandle, pageNum types.PageNum, pg *page.Page) error {
	if err := fh.ReadPage(pageNum, pg); err != nil {
		return err
	}
	return checkHeader(pg, pageNum)
}

// loadSlot reads rid's page into pg and returns its slot entry.
func loadSlot(fh *diskmanager.FileHandle, rid types.RID, pg *page.Page) (slot, error) {
	if err := readHeapPage(fh, rid.PageNum, pg); err != nil {
		return slot{}, err
	}
	if rid.SlotNum >= getSlotCount(pg) {
		return slot{}, errors.Wrapf(ErrSlotDoesNotExist, "%s: page has %d slots", rid, getSlotCount(pg))
	}
	return readSlot(pg, rid.SlotNum), nil
}

// resolve follows forwarding pointers from rid until it reaches a slot that
// is not Moved. pg holds that slot's page on return.
func resolve(fh *diskmanager.FileHandle, rid types.RID, pg *page.Page) (types.RID, slot, error) {
	visited := map[types.RID]struct{}{}
	for {
		if _, seen := visited[rid]; seen {
			return rid, slot{}, errors.Wrapf(ErrForwardingCycle, "at %s", rid)
		}
		visited[rid] = struct{}{}

		s, err := loadSlot(fh, rid, pg)
		if err != nil {
			return rid, slot{}, err
		}
		if !s.isMoved() {
			return rid, s, nil
		}
		rid = s.target()
	}
}

// liveRecord resolves rid and returns the on-page bytes it names.
func liveRecord(fh *diskmanager.FileHandle, rid types.RID, pg *page.Page) ([]byte, error) {
	at, s, err := resolve(fh, rid, pg)
	if err != nil {
		return nil, err
	}
	if s.isDead() {
		return nil, errors.Wrapf(ErrReadAfterDelete, "%s", rid)
	}
	return recordBytes(pg, at, s)
}

// insertBytes stores an on-page record on the first page with room for it,
// appending a page when none has. forwarded marks a record that is the
// target of a Moved slot, which may not take slot 0 of page 0.
func (hfm *HeapFileManager) insertBytes(fh *diskmanager.FileHandle, rec []byte, forwarded bool) (types.RID, error) {
	need := SlotSize + len(rec)
	pg := page.New()

	for pageNum := types.PageNum(0); pageNum < fh.NumberOfPages(); pageNum++ {
		if err := readHeapPage(fh, pageNum, pg); err != nil {
			return types.RID{}, err
		}
		if freeSpace(pg) < need {
			continue
		}
		slotNum, ok := pickSlot(pg, forwarded && pageNum == 0)
		if !ok {
			continue
		}
		placeRecord(pg, slotNum, rec)
		if err := fh.WritePage(pageNum, pg); err != nil {
			return types.RID{}, err
		}
		return types.RID{PageNum: pageNum, SlotNum: slotNum}, nil
	}

	pageNum := fh.NumberOfPages()
	initHeapPage(pg)
	slotNum, ok := pickSlot(pg, forwarded && pageNum == 0)
	if !ok {
		// Only an empty file reaches here; park slot 0 as Dead.
		setSlotCount(pg, 1)
		slotNum = 1
	}
	placeRecord(pg, slotNum, rec)
	if err := fh.AppendPage(pg); err != nil {
		return types.RID{}, err
	}
	hfm.log.Debug("heap page appended", "file", fh.Path(), "page", pageNum)
	return types.RID{PageNum: pageNum, SlotNum: slotNum}, nil
}

// releaseSlot marks slot i Dead and compacts the page.
func releaseSlot(pg *page.Page, i uint32) {
	writeSlot(pg, i, slot{})
	reorganizePage(pg)
}

// rewriteInPlace replaces the record under a Valid slot when the new bytes
// fit on the same page. It reports false when they do not.
func rewriteInPlace(pg *page.Page, i uint32, s slot, rec []byte) bool {
	oldLen, newLen := int(s.length), len(rec)
	switch {
	case newLen == oldLen:
		pg.PutBytes(int(s.offset), rec)
	case newLen < oldLen:
		pg.PutBytes(int(s.offset), rec)
		writeSlot(pg, i, slot{length: uint32(newLen), offset: s.offset})
		reorganizePage(pg)
	case freeSpace(pg)+oldLen >= newLen:
		releaseSlot(pg, i)
		placeRecord(pg, i, rec)
	default:
		return false
	}
	return true
}
