package indexfile

import (
	"SlotDB/logging"
	bplus "SlotDB/storage_engine/access/indexfile_manager/bplustree"
	diskmanager "SlotDB/storage_engine/disk_manager"
	"SlotDB/types"
	"io"
	"log/slog"
)

/*
This file is the main file for Index File Manager that deals with the index pages.
Similar to HeapFileManager it goes through the Disk Manager for every page.

An index file holds one B+ tree over the values of a single attribute,
mapping each key to the RIDs of the records that carry it. The file is
created empty; the tree's root and first leaf appear on the first insert.
*/

func NewIndexFileManager(diskManager *diskmanager.DiskManager, logger *slog.Logger) *IndexFileManager {
	return &IndexFileManager{
		diskManager: diskManager,
		log:         logging.WithComponent(logger, "indexfile"),
	}
}

func (ifm *IndexFileManager) CreateFile(fileName string) error {
	return ifm.diskManager.CreateFile(fileName)
}

func (ifm *IndexFileManager) DestroyFile(fileName string) error {
	return ifm.diskManager.DestroyFile(fileName)
}

func (ifm *IndexFileManager) OpenFile(fileName string) (*diskmanager.FileHandle, error) {
	return ifm.diskManager.OpenFile(fileName)
}

func (ifm *IndexFileManager) CloseFile(fh *diskmanager.FileHandle) error {
	return ifm.diskManager.CloseFile(fh)
}

func (ifm *IndexFileManager) tree(fh *diskmanager.FileHandle, attr types.Attribute) *bplus.BPlusTree {
	return bplus.NewBPlusTree(fh, attr.Type, ifm.log.With("file", fh.Path()))
}

// InsertEntry adds (key, rid) to the index; key is a single value in wire
// format.
func (ifm *IndexFileManager) InsertEntry(fh *diskmanager.FileHandle, attr types.Attribute, key []byte, rid types.RID) error {
	return ifm.tree(fh, attr).Insert(key, rid)
}

// DeleteEntry removes the entry matching both key and rid.
func (ifm *IndexFileManager) DeleteEntry(fh *diskmanager.FileHandle, attr types.Attribute, key []byte, rid types.RID) error {
	return ifm.tree(fh, attr).Delete(key, rid)
}

// Scan iterates the entries between low and high in key order. A nil bound
// is open on that side.
func (ifm *IndexFileManager) Scan(fh *diskmanager.FileHandle, attr types.Attribute, low, high []byte, lowIncl, highIncl bool) (*bplus.Iterator, error) {
	return ifm.tree(fh, attr).Scan(low, high, lowIncl, highIncl)
}

// Lookup returns every RID stored under key.
func (ifm *IndexFileManager) Lookup(fh *diskmanager.FileHandle, attr types.Attribute, key []byte) ([]types.RID, error) {
	return ifm.tree(fh, attr).Lookup(key)
}

// FindLeaf returns the leaf page a new entry with key would go to.
func (ifm *IndexFileManager) FindLeaf(fh *diskmanager.FileHandle, attr types.Attribute, key []byte) (types.PageNum, error) {
	return ifm.tree(fh, attr).FindLeaf(key)
}

// PrintBTree writes the tree as indented JSON.
func (ifm *IndexFileManager) PrintBTree(w io.Writer, fh *diskmanager.FileHandle, attr types.Attribute) error {
	return ifm.tree(fh, attr).PrintBTree(w)
}
