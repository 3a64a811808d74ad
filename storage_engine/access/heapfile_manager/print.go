package heapfile

import (
	"SlotDB/types"
	"fmt"
	"io"
)

// PrintRecord writes one "name: value" line per attribute of a wire-format
// record, between two rulers.
func PrintRecord(w io.Writer, attrs []types.Attribute, data []byte) error {
	fields, _, err := types.WalkRecord(attrs, data)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "----")
	for i, a := range attrs {
		value := "NULL"
		if !fields[i].Null {
			start := fields[i].Start
			if a.Type == types.TypeVarChar {
				start -= types.VarCharLengthSize
			}
			value = types.FormatValue(a.Type, data[start:fields[i].End])
		}
		if _, err := fmt.Fprintf(w, "%s: %s\n", a.Name, value); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintln(w, "----")
	return err
}
