package storageengine

import (
	"SlotDB/logging"
	heapfile "SlotDB/storage_engine/access/heapfile_manager"
	indexfile "SlotDB/storage_engine/access/indexfile_manager"
	diskmanager "SlotDB/storage_engine/disk_manager"
	"SlotDB/types"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

/*
The main file of storage engine. It builds the Disk Manager and the two
access methods on top of it from one Config; nothing here is global, so a
process may run several engines over different directories.

The heap and the index never talk to each other. The helpers below that
involve both (BuildIndex, IndexKey) live here for that reason.
*/

func New(cfg Config) (*StorageEngine, error) {
	if cfg.DataDir == "" {
		cfg.DataDir = DefaultConfig().DataDir
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create data dir")
	}

	logger := logging.New(cfg.Log)

	dm := diskmanager.NewDiskManager(diskmanager.Options{
		SyncWrites: cfg.SyncWrites,
		Logger:     logger,
	})
	hfm, err := heapfile.NewHeapFileManager(dm, heapfile.Options{
		ProjectionCacheSize: cfg.ProjectionCacheSize,
		Logger:              logger,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to init heap file manager")
	}

	se := &StorageEngine{
		DiskManager:  dm,
		HeapManager:  hfm,
		IndexManager: indexfile.NewIndexFileManager(dm, logger),
		DataDir:      cfg.DataDir,
		log:          logging.WithComponent(logger, "storage_engine"),
	}
	se.log.Debug("storage engine ready", "data_dir", cfg.DataDir, "sync_writes", cfg.SyncWrites)
	return se, nil
}

// Close closes every file still open and releases the heap's cache.
func (se *StorageEngine) Close() error {
	err := se.DiskManager.CloseAll()
	se.HeapManager.Close()
	return err
}

// Path resolves a file name against the data directory.
func (se *StorageEngine) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(se.DataDir, name)
}

// HeapFileName and IndexFileName are the naming convention the tools use:
// <table>.heap and <table>_<attribute>.idx.
func HeapFileName(table string) string {
	return table + ".heap"
}

func IndexFileName(table, attr string) string {
	return table + "_" + attr + ".idx"
}

// IndexKey extracts attribute name of a wire-format record as an index key.
// It reports null=true for a NULL field, which is not indexed.
func IndexKey(attrs []types.Attribute, data []byte, name string) (key []byte, null bool, err error) {
	pos := types.AttributeIndex(attrs, name)
	if pos < 0 {
		return nil, false, errors.Wrapf(heapfile.ErrNoSuchAttribute, "IndexKey %q", name)
	}
	fields, _, err := types.WalkRecord(attrs, data)
	if err != nil {
		return nil, false, errors.Wrap(err, "IndexKey")
	}
	f := fields[pos]
	if f.Null {
		return nil, true, nil
	}
	start := f.Start
	if attrs[pos].Type == types.TypeVarChar {
		start -= types.VarCharLengthSize
	}
	return data[start:f.End], false, nil
}

// BuildIndex inserts one entry per non-null value of attribute name in the
// heap file into the index file, and returns how many it inserted.
func (se *StorageEngine) BuildIndex(heapFh *diskmanager.FileHandle, attrs []types.Attribute, name string, idxFh *diskmanager.FileHandle) (int, error) {
	pos := types.AttributeIndex(attrs, name)
	if pos < 0 {
		return 0, errors.Wrapf(heapfile.ErrNoSuchAttribute, "BuildIndex %q", name)
	}
	attr := attrs[pos]

	it, err := se.HeapManager.Scan(heapFh, attrs, "", types.NoOp, nil, []string{name})
	if err != nil {
		return 0, errors.Wrap(err, "BuildIndex")
	}
	defer it.Close()

	projected := []types.Attribute{attr}
	count := 0
	for {
		rid, data, err := it.GetNextRecord()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, errors.Wrap(err, "BuildIndex")
		}
		key, null, err := IndexKey(projected, data, name)
		if err != nil {
			return count, err
		}
		if null {
			continue
		}
		if err := se.IndexManager.InsertEntry(idxFh, attr, key, rid); err != nil {
			return count, errors.Wrapf(err, "BuildIndex %s", rid)
		}
		count++
	}

	se.log.Debug("index built", "attribute", name, "entries", count)
	return count, nil
}
