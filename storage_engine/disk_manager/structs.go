package diskmanager

import (
	"log/slog"
	"os"
	"sync"

	"github.com/pkg/errors"
)

var (
	ErrFileExists       = errors.New("file already exists")
	ErrFileNotFound     = errors.New("file does not exist")
	ErrHandleInUse      = errors.New("file already open through this disk manager")
	ErrFileNotOpen      = errors.New("file handle is not open")
	ErrPageDoesNotExist = errors.New("page does not exist")
)

// ############################################# FILE HANDLE ###########################################

// FileHandle is an open paged file. It is not safe for concurrent use.
type FileHandle struct {
	filePath string
	file     *os.File
	numPages uint32
	sync     bool
	counters Counters
	log      *slog.Logger
}

// Counters are the per-handle I/O totals, for cost observability in tests.
type Counters struct {
	Reads   uint32
	Writes  uint32
	Appends uint32
}

// ############################################# DISK MANAGER #############################################

// Options configures a DiskManager.
type Options struct {
	// SyncWrites fsyncs after every WritePage/AppendPage.
	SyncWrites bool
	Logger     *slog.Logger
}

// DiskManager creates, destroys, opens and closes paged files.
type DiskManager struct {
	opts Options
	open map[string]*FileHandle // absolute path -> open handle
	log  *slog.Logger
	mu   sync.Mutex
}
