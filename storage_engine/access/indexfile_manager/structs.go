package indexfile

import (
	diskmanager "SlotDB/storage_engine/disk_manager"
	"log/slog"
)

// IndexFileManager owns B+ tree index files. It keeps nothing per file:
// each call builds a tree view over the FileHandle it is given.
type IndexFileManager struct {
	diskManager *diskmanager.DiskManager
	log         *slog.Logger
}
