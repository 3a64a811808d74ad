package types

import (
	"bytes"
	"cmp"
	"encoding/binary"
	"math"
	"strconv"

	"github.com/pkg/errors"
)

/*
Record wire format, the only record representation that crosses the engine
boundary (insert/update input, read/scan output):

	[ null bitmap: ceil(n/8) bytes ][ value 0 ][ value 1 ] ...

Bit i of the bitmap is 0x80 >> (i % 8) of byte i / 8. A null field has no
value bytes. INT and REAL are 4 bytes little-endian; VARCHAR is a 4 byte
little-endian length followed by that many raw bytes.
*/

const (
	IntSize           = 4
	RealSize          = 4
	VarCharLengthSize = 4
)

var ErrMalformedRecord = errors.New("malformed record data")

// NullIndicatorSize is the number of bitmap bytes for fieldCount fields.
func NullIndicatorSize(fieldCount int) int {
	return (fieldCount + 7) / 8
}

func FieldIsNull(bitmap []byte, i int) bool {
	return bitmap[i/8]&(0x80>>(uint(i)%8)) != 0
}

func SetFieldNull(bitmap []byte, i int) {
	bitmap[i/8] |= 0x80 >> (uint(i) % 8)
}

// Field locates one field's value inside wire-format data. For VARCHAR,
// Start points past the length prefix so data[Start:End] is the raw string.
type Field struct {
	Null  bool
	Start int
	End   int
}

// WalkRecord splits wire-format data into its fields and returns the total
// number of bytes the record occupies.
func WalkRecord(attrs []Attribute, data []byte) ([]Field, int, error) {
	nullSize := NullIndicatorSize(len(attrs))
	if len(data) < nullSize {
		return nil, 0, errors.Wrapf(ErrMalformedRecord, "need %d bitmap bytes, have %d", nullSize, len(data))
	}
	bitmap := data[:nullSize]
	fields := make([]Field, len(attrs))
	off := nullSize
	for i, a := range attrs {
		if FieldIsNull(bitmap, i) {
			fields[i] = Field{Null: true, Start: off, End: off}
			continue
		}
		n, err := ValueSize(a.Type, data[off:])
		if err != nil {
			return nil, 0, errors.Wrapf(err, "field %q", a.Name)
		}
		start := off
		if a.Type == TypeVarChar {
			start += VarCharLengthSize
		}
		fields[i] = Field{Start: start, End: off + n}
		off += n
	}
	return fields, off, nil
}

// ValueSize returns the wire size of the value of type t at the start of buf.
func ValueSize(t AttrType, buf []byte) (int, error) {
	switch t {
	case TypeInt, TypeReal:
		if len(buf) < 4 {
			return 0, errors.Wrapf(ErrMalformedRecord, "need 4 bytes for %s, have %d", t, len(buf))
		}
		return 4, nil
	case TypeVarChar:
		if len(buf) < VarCharLengthSize {
			return 0, errors.Wrapf(ErrMalformedRecord, "need varchar length prefix, have %d bytes", len(buf))
		}
		n := int(binary.LittleEndian.Uint32(buf))
		if n > len(buf)-VarCharLengthSize {
			return 0, errors.Wrapf(ErrMalformedRecord, "varchar length %d exceeds remaining %d bytes", n, len(buf)-VarCharLengthSize)
		}
		return VarCharLengthSize + n, nil
	}
	return 0, errors.Errorf("unknown attribute type %d", t)
}

// IntValue, RealValue and VarCharValue build single wire-format values, as
// used for scan predicates and index keys.
func IntValue(v int32) []byte {
	b := make([]byte, IntSize)
	binary.LittleEndian.PutUint32(b, uint32(v))
	return b
}

func RealValue(v float32) []byte {
	b := make([]byte, RealSize)
	binary.LittleEndian.PutUint32(b, math.Float32bits(v))
	return b
}

func VarCharValue(s string) []byte {
	b := make([]byte, VarCharLengthSize+len(s))
	binary.LittleEndian.PutUint32(b, uint32(len(s)))
	copy(b[VarCharLengthSize:], s)
	return b
}

// EncodeValue converts a Go value into the wire value of type t.
func EncodeValue(t AttrType, v any) ([]byte, error) {
	switch t {
	case TypeInt:
		switch x := v.(type) {
		case int32:
			return IntValue(x), nil
		case int:
			return IntValue(int32(x)), nil
		case int64:
			return IntValue(int32(x)), nil
		}
	case TypeReal:
		switch x := v.(type) {
		case float32:
			return RealValue(x), nil
		case float64:
			return RealValue(float32(x)), nil
		}
	case TypeVarChar:
		switch x := v.(type) {
		case string:
			return VarCharValue(x), nil
		case []byte:
			return VarCharValue(string(x)), nil
		}
	}
	return nil, errors.Errorf("cannot encode %T as %s", v, t)
}

// DecodeValue converts one wire value back into int32, float32 or string.
func DecodeValue(t AttrType, b []byte) (any, error) {
	n, err := ValueSize(t, b)
	if err != nil {
		return nil, err
	}
	switch t {
	case TypeInt:
		return int32(binary.LittleEndian.Uint32(b)), nil
	case TypeReal:
		return math.Float32frombits(binary.LittleEndian.Uint32(b)), nil
	default:
		return string(b[VarCharLengthSize:n]), nil
	}
}

// EncodeRecord builds wire-format data from Go values; a nil entry is NULL.
func EncodeRecord(attrs []Attribute, values []any) ([]byte, error) {
	if len(values) != len(attrs) {
		return nil, errors.Errorf("EncodeRecord: %d values for %d attributes", len(values), len(attrs))
	}
	out := make([]byte, NullIndicatorSize(len(attrs)))
	for i, a := range attrs {
		if values[i] == nil {
			SetFieldNull(out, i)
			continue
		}
		v, err := EncodeValue(a.Type, values[i])
		if err != nil {
			return nil, errors.Wrapf(err, "EncodeRecord: field %q", a.Name)
		}
		out = append(out, v...)
	}
	return out, nil
}

// DecodeRecord is the inverse of EncodeRecord.
func DecodeRecord(attrs []Attribute, data []byte) ([]any, error) {
	fields, _, err := WalkRecord(attrs, data)
	if err != nil {
		return nil, err
	}
	values := make([]any, len(attrs))
	for i, f := range fields {
		if f.Null {
			continue
		}
		start := f.Start
		if attrs[i].Type == TypeVarChar {
			start -= VarCharLengthSize
		}
		v, err := DecodeValue(attrs[i].Type, data[start:f.End])
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// CompareValues orders two wire values of type t. Numbers compare
// numerically, with a REAL NaN below every other value and equal to
// itself; varchars compare bytewise over exactly their stored length.
func CompareValues(t AttrType, a, b []byte) int {
	switch t {
	case TypeInt:
		x := int32(binary.LittleEndian.Uint32(a))
		y := int32(binary.LittleEndian.Uint32(b))
		return cmp.Compare(x, y)
	case TypeReal:
		x := math.Float32frombits(binary.LittleEndian.Uint32(a))
		y := math.Float32frombits(binary.LittleEndian.Uint32(b))
		return cmp.Compare(x, y)
	default:
		la := int(binary.LittleEndian.Uint32(a))
		lb := int(binary.LittleEndian.Uint32(b))
		return bytes.Compare(a[VarCharLengthSize:VarCharLengthSize+la], b[VarCharLengthSize:VarCharLengthSize+lb])
	}
}

// FormatValue renders a wire value for printing.
func FormatValue(t AttrType, b []byte) string {
	v, err := DecodeValue(t, b)
	if err != nil {
		return "<" + err.Error() + ">"
	}
	switch x := v.(type) {
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	default:
		return x.(string)
	}
}
