package types

import (
	"strings"

	"github.com/pkg/errors"
)

// CompOp is the comparison applied by a scan predicate.
type CompOp uint8

const (
	EQ CompOp = iota // =
	LT               // <
	LE               // <=
	GT               // >
	GE               // >=
	NE               // !=
	NoOp             // no condition
)

func (op CompOp) String() string {
	switch op {
	case EQ:
		return "="
	case LT:
		return "<"
	case LE:
		return "<="
	case GT:
		return ">"
	case GE:
		return ">="
	case NE:
		return "!="
	default:
		return "NO_OP"
	}
}

// Holds reports whether cmp (the result of comparing a field to the literal,
// in the -1/0/1 convention) satisfies op.
func (op CompOp) Holds(cmp int) bool {
	switch op {
	case EQ:
		return cmp == 0
	case LT:
		return cmp < 0
	case LE:
		return cmp <= 0
	case GT:
		return cmp > 0
	case GE:
		return cmp >= 0
	case NE:
		return cmp != 0
	case NoOp:
		return true
	}
	return false
}

// ParseCompOp accepts either the symbol ("<=") or the short name ("le").
func ParseCompOp(s string) (CompOp, error) {
	switch strings.ToLower(s) {
	case "=", "==", "eq":
		return EQ, nil
	case "<", "lt":
		return LT, nil
	case "<=", "le":
		return LE, nil
	case ">", "gt":
		return GT, nil
	case ">=", "ge":
		return GE, nil
	case "!=", "<>", "ne":
		return NE, nil
	case "", "none", "no_op":
		return NoOp, nil
	}
	return NoOp, errors.Errorf("unknown comparison %q", s)
}
