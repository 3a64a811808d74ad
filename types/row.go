package types

import "fmt"

// RID points to a specific record in a heap file: the page it lives on and
// its index in that page's slot directory.
type RID struct {
	PageNum uint32 `json:"page_num"`
	SlotNum uint32 `json:"slot_num"`
}

func (r RID) String() string {
	return fmt.Sprintf("(%d, %d)", r.PageNum, r.SlotNum)
}
