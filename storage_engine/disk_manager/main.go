package diskmanager

import (
	"SlotDB/logging"
	"SlotDB/storage_engine/page"
	"SlotDB/types"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

/*
This is main file for disk manager (the Page Store)
It owns:
File lifecycle (create, destroy, open, close)
Reading/writing whole pages at pageNum*PageSize (ReadAt, WriteAt)
The page count of each open file and its read/write/append counters

Every ReadPage goes to the file; nothing is cached here or above.
*/

func NewDiskManager(opts Options) *DiskManager {
	return &DiskManager{
		opts: opts,
		open: make(map[string]*FileHandle),
		log:  logging.WithComponent(opts.Logger, "disk_manager"),
	}
}

// CreateFile creates an empty paged file.
func (dm *DiskManager) CreateFile(fileName string) error {
	file, err := os.OpenFile(fileName, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return errors.Wrapf(ErrFileExists, "CreateFile %s", fileName)
		}
		return errors.Wrapf(err, "CreateFile %s", fileName)
	}
	if err := file.Close(); err != nil {
		return errors.Wrapf(err, "CreateFile %s: close", fileName)
	}
	dm.log.Debug("file created", "path", fileName)
	return nil
}

// DestroyFile removes a paged file from disk.
func (dm *DiskManager) DestroyFile(fileName string) error {
	if err := os.Remove(fileName); err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(ErrFileNotFound, "DestroyFile %s", fileName)
		}
		return errors.Wrapf(err, "DestroyFile %s", fileName)
	}
	dm.log.Debug("file destroyed", "path", fileName)
	return nil
}

// OpenFile opens an existing paged file and returns a handle bound to it.
func (dm *DiskManager) OpenFile(fileName string) (*FileHandle, error) {
	abs, err := filepath.Abs(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "OpenFile %s", fileName)
	}

	dm.mu.Lock()
	defer dm.mu.Unlock()

	if _, exists := dm.open[abs]; exists {
		return nil, errors.Wrapf(ErrHandleInUse, "OpenFile %s", fileName)
	}

	file, err := os.OpenFile(fileName, os.O_RDWR, 0644)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrFileNotFound, "OpenFile %s", fileName)
		}
		return nil, errors.Wrapf(err, "OpenFile %s", fileName)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, errors.Wrapf(err, "OpenFile %s: stat", fileName)
	}

	fh := &FileHandle{
		filePath: abs,
		file:     file,
		numPages: uint32(stat.Size() / int64(page.PageSize)),
		sync:     dm.opts.SyncWrites,
		log:      dm.log.With("file", filepath.Base(fileName)),
	}
	dm.open[abs] = fh

	dm.log.Debug("file opened", "path", fileName, "pages", fh.numPages)
	return fh, nil
}

// CloseFile syncs and closes the handle; the handle cannot be reused.
func (dm *DiskManager) CloseFile(fh *FileHandle) error {
	if fh == nil || fh.file == nil {
		return errors.Wrap(ErrFileNotOpen, "CloseFile")
	}

	dm.mu.Lock()
	delete(dm.open, fh.filePath)
	dm.mu.Unlock()

	file := fh.file
	fh.file = nil

	if err := file.Sync(); err != nil {
		file.Close()
		return errors.Wrapf(err, "CloseFile %s: sync", fh.filePath)
	}
	if err := file.Close(); err != nil {
		return errors.Wrapf(err, "CloseFile %s", fh.filePath)
	}
	dm.log.Debug("file closed", "path", fh.filePath, "reads", fh.counters.Reads,
		"writes", fh.counters.Writes, "appends", fh.counters.Appends)
	return nil
}

// CloseAll closes every handle still open through this manager.
func (dm *DiskManager) CloseAll() error {
	dm.mu.Lock()
	handles := make([]*FileHandle, 0, len(dm.open))
	for _, fh := range dm.open {
		handles = append(handles, fh)
	}
	dm.mu.Unlock()

	var lastErr error
	for _, fh := range handles {
		if err := dm.CloseFile(fh); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// FileExists reports whether fileName exists on disk.
func FileExists(fileName string) bool {
	_, err := os.Stat(fileName)
	return err == nil
}

// ############################################# FILE HANDLE ###########################################

// ReadPage reads page pageNum into pg.
func (fh *FileHandle) ReadPage(pageNum types.PageNum, pg *page.Page) error {
	if fh.file == nil {
		return errors.Wrap(ErrFileNotOpen, "ReadPage")
	}
	if pageNum >= fh.numPages {
		return errors.Wrapf(ErrPageDoesNotExist, "ReadPage %d (file has %d pages)", pageNum, fh.numPages)
	}

	offset := int64(pageNum) * int64(page.PageSize)
	n, err := fh.file.ReadAt(pg.Data[:], offset)
	if err != nil && !(err == io.EOF && n == page.PageSize) {
		return errors.Wrapf(err, "ReadPage %d: read failed after %d bytes", pageNum, n)
	}

	fh.counters.Reads++
	return nil
}

// WritePage overwrites an existing page.
func (fh *FileHandle) WritePage(pageNum types.PageNum, pg *page.Page) error {
	if fh.file == nil {
		return errors.Wrap(ErrFileNotOpen, "WritePage")
	}
	if pageNum >= fh.numPages {
		return errors.Wrapf(ErrPageDoesNotExist, "WritePage %d (file has %d pages)", pageNum, fh.numPages)
	}

	if err := fh.writeAt(pageNum, pg); err != nil {
		return errors.Wrapf(err, "WritePage %d", pageNum)
	}

	fh.counters.Writes++
	return nil
}

// AppendPage adds pg as a new last page; its page number is the old
// NumberOfPages().
func (fh *FileHandle) AppendPage(pg *page.Page) error {
	if fh.file == nil {
		return errors.Wrap(ErrFileNotOpen, "AppendPage")
	}

	pageNum := fh.numPages
	if err := fh.writeAt(pageNum, pg); err != nil {
		return errors.Wrapf(err, "AppendPage %d", pageNum)
	}

	fh.numPages++
	fh.counters.Appends++
	fh.log.Debug("page appended", "page", pageNum)
	return nil
}

func (fh *FileHandle) writeAt(pageNum types.PageNum, pg *page.Page) error {
	offset := int64(pageNum) * int64(page.PageSize)
	if _, err := fh.file.WriteAt(pg.Data[:], offset); err != nil {
		return err
	}
	if fh.sync {
		if err := fh.file.Sync(); err != nil {
			return errors.Wrap(err, "sync")
		}
	}
	return nil
}

// NumberOfPages returns the page count of the file.
func (fh *FileHandle) NumberOfPages() uint32 {
	return fh.numPages
}

// CollectCounterValues returns the I/O totals since the handle was opened.
func (fh *FileHandle) CollectCounterValues() Counters {
	return fh.counters
}

// IsOpen reports whether the handle is still bound to a file.
func (fh *FileHandle) IsOpen() bool {
	return fh != nil && fh.file != nil
}

// Path returns the absolute path the handle was opened with.
func (fh *FileHandle) Path() string {
	return fh.filePath
}
