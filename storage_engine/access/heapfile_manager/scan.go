package heapfile

import (
	diskmanager "SlotDB/storage_engine/disk_manager"
	"SlotDB/storage_engine/page"
	"SlotDB/types"
	"io"

	"github.com/pkg/errors"
)

// Scan opens a forward iterator over every live record of fh whose
// condAttr compares to value under op, yielding the projected attributes in
// wire format. With op NoOp condAttr and value are ignored; an empty
// projection yields RIDs only. A record that was relocated by an update is
// returned under the RID of the page it now lives on.
func (hfm *HeapFileManager) Scan(fh *diskmanager.FileHandle, attrs []types.Attribute, condAttr string,
	op types.CompOp, value []byte, projection []string) (*ScanIterator, error) {

	positions, err := hfm.projections.resolve(attrs, projection)
	if err != nil {
		return nil, errors.Wrap(err, "Scan: projection")
	}

	it := &ScanIterator{
		fh:         fh,
		attrs:      attrs,
		condIdx:    -1,
		op:         op,
		projection: positions,
		pg:         page.New(),
	}

	if op != types.NoOp {
		cond, err := hfm.projections.resolve(attrs, []string{condAttr})
		if err != nil {
			return nil, errors.Wrap(err, "Scan: condition")
		}
		it.condIdx = cond[0]
		if _, err := types.ValueSize(attrs[it.condIdx].Type, value); err != nil {
			return nil, errors.Wrapf(err, "Scan: literal for %q", condAttr)
		}
		it.value = value
	}
	return it, nil
}

// GetNextRecord returns the next matching record, or io.EOF once the last
// slot of the last page has been passed.
func (it *ScanIterator) GetNextRecord() (types.RID, []byte, error) {
	for {
		if it.closed {
			return types.RID{}, nil, io.EOF
		}
		if !it.loaded {
			if it.pageNum >= it.fh.NumberOfPages() {
				return types.RID{}, nil, io.EOF
			}
			if err := readHeapPage(it.fh, it.pageNum, it.pg); err != nil {
				return types.RID{}, nil, errors.Wrap(err, "GetNextRecord")
			}
			it.loaded = true
		}

		if it.slotNum >= getSlotCount(it.pg) {
			it.pageNum++
			it.slotNum = 0
			it.loaded = false
			continue
		}

		rid := types.RID{PageNum: it.pageNum, SlotNum: it.slotNum}
		it.slotNum++

		s := readSlot(it.pg, rid.SlotNum)
		if !s.isValid() {
			continue
		}
		rec, err := recordBytes(it.pg, rid, s)
		if err != nil {
			return types.RID{}, nil, errors.Wrap(err, "GetNextRecord")
		}

		ok, err := it.accept(rec)
		if err != nil {
			return types.RID{}, nil, errors.Wrapf(err, "GetNextRecord %s", rid)
		}
		if !ok {
			continue
		}

		if len(it.projection) == 0 {
			return rid, nil, nil
		}
		data, err := fromOnPage(it.attrs, rec, it.projection)
		if err != nil {
			return types.RID{}, nil, errors.Wrapf(err, "GetNextRecord %s", rid)
		}
		return rid, data, nil
	}
}

// accept evaluates the predicate. A null field never matches.
func (it *ScanIterator) accept(rec []byte) (bool, error) {
	if it.condIdx < 0 {
		return true, nil
	}
	null, raw, err := storedField(rec, it.condIdx)
	if err != nil || null {
		return false, err
	}
	t := it.attrs[it.condIdx].Type
	if t != types.TypeVarChar && len(raw) != types.IntSize {
		return false, errors.Wrapf(ErrCorruptPage, "field holds %d bytes for %s", len(raw), t)
	}
	field := appendWireValue(nil, t, raw)
	return it.op.Holds(types.CompareValues(t, field, it.value)), nil
}

// Close releases the page buffer; further calls return io.EOF.
func (it *ScanIterator) Close() error {
	it.closed = true
	it.pg = nil
	return nil
}
