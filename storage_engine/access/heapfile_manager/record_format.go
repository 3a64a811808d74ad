package heapfile

import (
	"SlotDB/types"
	"encoding/binary"

	"github.com/pkg/errors"
)

/*
On-page record layout:

	[ FieldCount uint16 ][ null bitmap ][ end offset uint16 * FieldCount ][ values ]

End offsets are relative to the record start, so field i occupies
[end(i-1), end(i)) with end(-1) being the start of the value area. A null
field has start == end. VARCHAR values are stored without their length
prefix; the length is end - start. Any field past FieldCount reads as null,
which lets a record written under a shorter schema be read under a longer
one.
*/

const (
	recOffFieldCount = 0
	fieldCountSize   = 2
	endOffsetSize    = 2
)

func onPageHeaderSize(fieldCount int) int {
	return fieldCountSize + types.NullIndicatorSize(fieldCount) + endOffsetSize*fieldCount
}

// toOnPage converts wire-format data into its on-page form.
func toOnPage(attrs []types.Attribute, data []byte) ([]byte, error) {
	fields, _, err := types.WalkRecord(attrs, data)
	if err != nil {
		return nil, err
	}

	n := len(attrs)
	header := onPageHeaderSize(n)
	size := header
	for _, f := range fields {
		size += f.End - f.Start
	}
	if size > MaxRecordSize {
		return nil, errors.Wrapf(ErrRecordTooLarge, "record needs %d bytes, page holds %d", size, MaxRecordSize)
	}

	rec := make([]byte, size)
	binary.LittleEndian.PutUint16(rec[recOffFieldCount:], uint16(n))
	bitmap := rec[fieldCountSize : fieldCountSize+types.NullIndicatorSize(n)]
	copy(bitmap, data[:len(bitmap)])

	dirPos := fieldCountSize + len(bitmap)
	end := header
	for i, f := range fields {
		if !f.Null {
			end += copy(rec[end:], data[f.Start:f.End])
		}
		binary.LittleEndian.PutUint16(rec[dirPos+endOffsetSize*i:], uint16(end))
	}
	return rec, nil
}

// storedField locates field i of an on-page record. raw excludes the
// VARCHAR length prefix.
func storedField(rec []byte, i int) (null bool, raw []byte, err error) {
	if len(rec) < fieldCountSize {
		return false, nil, errors.Wrapf(ErrCorruptPage, "record of %d bytes has no field count", len(rec))
	}
	count := int(binary.LittleEndian.Uint16(rec[recOffFieldCount:]))
	header := onPageHeaderSize(count)
	if header > len(rec) {
		return false, nil, errors.Wrapf(ErrCorruptPage, "record of %d bytes cannot hold %d fields", len(rec), count)
	}
	if i >= count {
		return true, nil, nil
	}
	if types.FieldIsNull(rec[fieldCountSize:], i) {
		return true, nil, nil
	}

	dirPos := fieldCountSize + types.NullIndicatorSize(count)
	start := header
	if i > 0 {
		start = int(binary.LittleEndian.Uint16(rec[dirPos+endOffsetSize*(i-1):]))
	}
	end := int(binary.LittleEndian.Uint16(rec[dirPos+endOffsetSize*i:]))
	if start < header || end < start || end > len(rec) {
		return false, nil, errors.Wrapf(ErrCorruptPage, "field %d spans [%d, %d) in a %d byte record", i, start, end, len(rec))
	}
	return false, rec[start:end], nil
}

// appendWireValue appends raw in wire format for type t.
func appendWireValue(dst []byte, t types.AttrType, raw []byte) []byte {
	if t == types.TypeVarChar {
		dst = binary.LittleEndian.AppendUint32(dst, uint32(len(raw)))
	}
	return append(dst, raw...)
}

// fromOnPage projects an on-page record onto the given attribute
// positions and returns wire-format data.
func fromOnPage(attrs []types.Attribute, rec []byte, positions []int) ([]byte, error) {
	nullSize := types.NullIndicatorSize(len(positions))
	out := make([]byte, nullSize, nullSize+len(rec)+types.VarCharLengthSize*len(positions))
	for j, pos := range positions {
		null, raw, err := storedField(rec, pos)
		if err != nil {
			return nil, err
		}
		if null {
			types.SetFieldNull(out, j)
			continue
		}
		if t := attrs[pos].Type; t != types.TypeVarChar && len(raw) != types.IntSize {
			return nil, errors.Wrapf(ErrCorruptPage, "field %q holds %d bytes for %s", attrs[pos].Name, len(raw), t)
		}
		out = appendWireValue(out, attrs[pos].Type, raw)
	}
	return out, nil
}

func allPositions(n int) []int {
	positions := make([]int, n)
	for i := range positions {
		positions[i] = i
	}
	return positions
}
