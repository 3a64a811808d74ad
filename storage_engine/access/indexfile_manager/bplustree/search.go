package bplus

import (
	"SlotDB/types"
	"io"
)

// Lookup returns the RIDs of every entry equal to key, in insertion order.
func (t *BPlusTree) Lookup(key []byte) ([]types.RID, error) {
	it, err := t.Scan(key, key, true, true)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var rids []types.RID
	for {
		rid, _, err := it.GetNextEntry()
		if err != nil {
			if err == io.EOF {
				return rids, nil
			}
			return nil, err
		}
		rids = append(rids, rid)
	}
}
