package heapfile

import (
	diskmanager "SlotDB/storage_engine/disk_manager"
	"SlotDB/storage_engine/page"
	"SlotDB/types"

	"github.com/pkg/errors"
)

/*
Record operations on an open heap file. Records cross this boundary in
wire format (null bitmap + values, see types/record.go); on the page they
are kept in the on-page format of record_format.go.

A RID handed out by InsertRecord stays valid until DeleteRecord, however
many times the record is updated. When an update cannot fit on the record's
page the record moves and its old slot becomes a forwarding pointer; reads,
updates and deletes follow it.
*/

// InsertRecord stores data and returns its RID.
func (hfm *HeapFileManager) InsertRecord(fh *diskmanager.FileHandle, attrs []types.Attribute, data []byte) (types.RID, error) {
	rec, err := toOnPage(attrs, data)
	if err != nil {
		return types.RID{}, errors.Wrap(err, "InsertRecord")
	}

	rid, err := hfm.insertBytes(fh, rec, false)
	if err != nil {
		return types.RID{}, errors.Wrap(err, "InsertRecord")
	}
	hfm.log.Debug("record inserted", "rid", rid, "bytes", len(rec))
	return rid, nil
}

// ReadRecord returns the record at rid in wire format.
func (hfm *HeapFileManager) ReadRecord(fh *diskmanager.FileHandle, attrs []types.Attribute, rid types.RID) ([]byte, error) {
	pg := page.New()
	rec, err := liveRecord(fh, rid, pg)
	if err != nil {
		return nil, errors.Wrap(err, "ReadRecord")
	}

	data, err := fromOnPage(attrs, rec, allPositions(len(attrs)))
	if err != nil {
		return nil, errors.Wrapf(err, "ReadRecord %s", rid)
	}
	return data, nil
}

// ReadAttribute returns one field of the record at rid as a one byte null
// indicator followed by the value in wire format.
func (hfm *HeapFileManager) ReadAttribute(fh *diskmanager.FileHandle, attrs []types.Attribute, rid types.RID, name string) ([]byte, error) {
	positions, err := hfm.projections.resolve(attrs, []string{name})
	if err != nil {
		return nil, errors.Wrap(err, "ReadAttribute")
	}

	pg := page.New()
	rec, err := liveRecord(fh, rid, pg)
	if err != nil {
		return nil, errors.Wrap(err, "ReadAttribute")
	}

	data, err := fromOnPage(attrs, rec, positions)
	if err != nil {
		return nil, errors.Wrapf(err, "ReadAttribute %s", rid)
	}
	return data, nil
}

// DeleteRecord removes the record at rid. Deleting through a forwarding
// pointer removes the relocated record and then the pointer itself.
func (hfm *HeapFileManager) DeleteRecord(fh *diskmanager.FileHandle, attrs []types.Attribute, rid types.RID) error {
	pg := page.New()
	s, err := loadSlot(fh, rid, pg)
	if err != nil {
		return errors.Wrap(err, "DeleteRecord")
	}
	if s.isDead() {
		return errors.Wrapf(ErrSlotDoesNotExist, "DeleteRecord %s: already deleted", rid)
	}

	if s.isMoved() {
		at, ts, err := resolve(fh, rid, pg)
		if err != nil {
			return errors.Wrap(err, "DeleteRecord")
		}
		if !ts.isDead() {
			releaseSlot(pg, at.SlotNum)
			if err := fh.WritePage(at.PageNum, pg); err != nil {
				return errors.Wrapf(err, "DeleteRecord %s: relocated record %s", rid, at)
			}
		}
		if _, err := loadSlot(fh, rid, pg); err != nil {
			return errors.Wrap(err, "DeleteRecord")
		}
	}

	releaseSlot(pg, rid.SlotNum)
	if err := fh.WritePage(rid.PageNum, pg); err != nil {
		return errors.Wrapf(err, "DeleteRecord %s", rid)
	}
	hfm.log.Debug("record deleted", "rid", rid)
	return nil
}

// UpdateRecord replaces the record at rid with data. rid keeps naming the
// record afterwards.
func (hfm *HeapFileManager) UpdateRecord(fh *diskmanager.FileHandle, attrs []types.Attribute, data []byte, rid types.RID) error {
	rec, err := toOnPage(attrs, data)
	if err != nil {
		return errors.Wrap(err, "UpdateRecord")
	}

	pg := page.New()
	at, s, err := resolve(fh, rid, pg)
	if err != nil {
		return errors.Wrap(err, "UpdateRecord")
	}
	if s.isDead() {
		return errors.Wrapf(ErrReadAfterDelete, "UpdateRecord %s", rid)
	}
	if _, err := recordBytes(pg, at, s); err != nil {
		return errors.Wrap(err, "UpdateRecord")
	}

	if rewriteInPlace(pg, at.SlotNum, s, rec) {
		if err := fh.WritePage(at.PageNum, pg); err != nil {
			return errors.Wrapf(err, "UpdateRecord %s", rid)
		}
		return nil
	}

	// Does not fit on its page any more: store it elsewhere first, so a
	// failed insert leaves the old record untouched.
	newAt, err := hfm.insertBytes(fh, rec, true)
	if err != nil {
		return errors.Wrapf(err, "UpdateRecord %s: relocate", rid)
	}

	if at == rid {
		if err := readHeapPage(fh, at.PageNum, pg); err != nil {
			return errors.Wrap(err, "UpdateRecord")
		}
		writeSlot(pg, at.SlotNum, movedSlot(newAt))
		reorganizePage(pg)
		if err := fh.WritePage(at.PageNum, pg); err != nil {
			return errors.Wrapf(err, "UpdateRecord %s", rid)
		}
	} else {
		// Already forwarded: drop the old copy and repoint the original
		// slot, so chains never grow past one hop.
		if err := readHeapPage(fh, at.PageNum, pg); err != nil {
			return errors.Wrap(err, "UpdateRecord")
		}
		releaseSlot(pg, at.SlotNum)
		if err := fh.WritePage(at.PageNum, pg); err != nil {
			return errors.Wrapf(err, "UpdateRecord %s: release %s", rid, at)
		}
		if _, err := loadSlot(fh, rid, pg); err != nil {
			return errors.Wrap(err, "UpdateRecord")
		}
		writeSlot(pg, rid.SlotNum, movedSlot(newAt))
		if err := fh.WritePage(rid.PageNum, pg); err != nil {
			return errors.Wrapf(err, "UpdateRecord %s", rid)
		}
	}

	hfm.log.Debug("record relocated", "rid", rid, "to", newAt, "bytes", len(rec))
	return nil
}
