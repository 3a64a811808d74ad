package bplus

import (
	"SlotDB/types"

	"github.com/pkg/errors"
)

// Insert adds (key, rid). Equal keys are kept in insertion order.
func (t *BPlusTree) Insert(key []byte, rid types.RID) error {
	key, err := t.checkKey(key)
	if err != nil {
		return errors.Wrap(err, "Insert")
	}
	key = append([]byte(nil), key...)

	if t.isEmpty() {
		if err := t.initTree(); err != nil {
			return err
		}
	}

	path, leaf, err := t.descend(key, upperBound)
	if err != nil {
		return errors.Wrap(err, "Insert")
	}

	pos := upperBound(leaf.keys, key, t.compare)
	leaf.keys = insert(leaf.keys, pos, key)
	leaf.rids = insert(leaf.rids, pos, rid)

	if err := t.settle(path, leaf); err != nil {
		return errors.Wrap(err, "Insert")
	}
	return nil
}
