package types

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

type AttrType uint8

const (
	TypeInt AttrType = iota
	TypeReal
	TypeVarChar
)

func (t AttrType) String() string {
	switch t {
	case TypeInt:
		return "INT"
	case TypeReal:
		return "REAL"
	case TypeVarChar:
		return "VARCHAR"
	default:
		return fmt.Sprintf("AttrType(%d)", uint8(t))
	}
}

// ParseAttrType maps a column type name (as typed on a command line) to an AttrType.
func ParseAttrType(s string) (AttrType, error) {
	switch s {
	case "int", "INT":
		return TypeInt, nil
	case "real", "REAL", "float", "FLOAT":
		return TypeReal, nil
	case "varchar", "VARCHAR", "string", "STRING":
		return TypeVarChar, nil
	}
	return 0, errors.Errorf("unknown attribute type %q", s)
}

// Attribute describes one field of a record. Length is the declared maximum
// for varchars and 4 for ints and reals.
type Attribute struct {
	Name   string   `json:"name"`
	Type   AttrType `json:"type"`
	Length uint32   `json:"length"`
}

// AttributeIndex returns the position of the named attribute, or -1.
func AttributeIndex(attrs []Attribute, name string) int {
	for i, a := range attrs {
		if a.Name == name {
			return i
		}
	}
	return -1
}

// ParseSchema parses a comma separated list of name:type[:length], e.g.
// "Name:varchar:30,Age:int". Length defaults to 4 for ints and reals and
// 255 for varchars.
func ParseSchema(s string) ([]Attribute, error) {
	var attrs []Attribute
	for _, col := range strings.Split(s, ",") {
		col = strings.TrimSpace(col)
		if col == "" {
			continue
		}
		parts := strings.Split(col, ":")
		if len(parts) < 2 || len(parts) > 3 {
			return nil, errors.Errorf("column %q: want name:type[:length]", col)
		}
		t, err := ParseAttrType(parts[1])
		if err != nil {
			return nil, errors.Wrapf(err, "column %q", col)
		}
		length := uint32(4)
		if t == TypeVarChar {
			length = 255
		}
		if len(parts) == 3 {
			n, err := strconv.ParseUint(parts[2], 10, 32)
			if err != nil {
				return nil, errors.Wrapf(err, "column %q: bad length", col)
			}
			length = uint32(n)
		}
		attrs = append(attrs, Attribute{Name: parts[0], Type: t, Length: length})
	}
	if len(attrs) == 0 {
		return nil, errors.New("empty schema")
	}
	return attrs, nil
}
