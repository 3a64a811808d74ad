package heapfile

import (
	"SlotDB/logging"
	diskmanager "SlotDB/storage_engine/disk_manager"
	"SlotDB/storage_engine/page"
	"SlotDB/types"

	"github.com/pkg/errors"
)

/*
This file is the start of the heapfile manager.
It owns creation of heap files (a fresh file gets one empty heap page) and
hands open/close/destroy through to the Disk Manager.

Every operation reads the pages it needs from the FileHandle and writes
back what it changed before returning. There is no page cache.
*/

// NewHeapFileManager creates a heap file manager on top of diskManager.
func NewHeapFileManager(diskManager *diskmanager.DiskManager, opts Options) (*HeapFileManager, error) {
	projections, err := newProjectionCache(opts.ProjectionCacheSize)
	if err != nil {
		return nil, err
	}
	return &HeapFileManager{
		diskManager: diskManager,
		projections: projections,
		log:         logging.WithComponent(opts.Logger, "heapfile"),
	}, nil
}

// Close releases the projection cache.
func (hfm *HeapFileManager) Close() {
	hfm.projections.close()
}

// CreateFile creates a heap file holding one empty page.
func (hfm *HeapFileManager) CreateFile(fileName string) error {
	if err := hfm.diskManager.CreateFile(fileName); err != nil {
		return err
	}

	fh, err := hfm.diskManager.OpenFile(fileName)
	if err != nil {
		return errors.Wrap(err, "CreateFile")
	}

	pg := page.New()
	initHeapPage(pg)
	if err := fh.AppendPage(pg); err != nil {
		hfm.diskManager.CloseFile(fh)
		return errors.Wrap(err, "CreateFile: first heap page")
	}

	hfm.log.Debug("heap file created", "path", fileName)
	return hfm.diskManager.CloseFile(fh)
}

func (hfm *HeapFileManager) DestroyFile(fileName string) error {
	return hfm.diskManager.DestroyFile(fileName)
}

func (hfm *HeapFileManager) OpenFile(fileName string) (*diskmanager.FileHandle, error) {
	return hfm.diskManager.OpenFile(fileName)
}

func (hfm *HeapFileManager) CloseFile(fh *diskmanager.FileHandle) error {
	return hfm.diskManager.CloseFile(fh)
}

// PageFreeSpace reports the free bytes between the slot directory and the
// record area of one page.
func (hfm *HeapFileManager) PageFreeSpace(fh *diskmanager.FileHandle, pageNum types.PageNum) (int, error) {
	pg := page.New()
	if err := readHeapPage(fh, pageNum, pg); err != nil {
		return 0, errors.Wrap(err, "PageFreeSpace")
	}
	return freeSpace(pg), nil
}
