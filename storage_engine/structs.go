package storageengine

import (
	"SlotDB/logging"
	heapfile "SlotDB/storage_engine/access/heapfile_manager"
	indexfile "SlotDB/storage_engine/access/indexfile_manager"
	diskmanager "SlotDB/storage_engine/disk_manager"
	"log/slog"
)

// Config is everything needed to build a StorageEngine.
type Config struct {
	// DataDir is where relative file names are resolved. It is created if
	// missing.
	DataDir string

	// SyncWrites fsyncs every page write.
	SyncWrites bool

	// ProjectionCacheSize bounds the heap's cache of resolved attribute
	// lists. Zero picks a default.
	ProjectionCacheSize int64

	Log logging.Config
}

func DefaultConfig() Config {
	return Config{
		DataDir:             "./data",
		ProjectionCacheSize: 1024,
		Log:                 logging.DefaultConfig(),
	}
}

type StorageEngine struct {
	DiskManager  *diskmanager.DiskManager
	HeapManager  *heapfile.HeapFileManager
	IndexManager *indexfile.IndexFileManager

	DataDir string
	log     *slog.Logger
}
