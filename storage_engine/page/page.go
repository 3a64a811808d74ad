package page

import (
	"SlotDB/types"
	"encoding/binary"
	"fmt"
)

const (
	PageSize = types.PageSize
)

/*
Page is the unit both access methods move in and out of the Page Store.
It is a fixed-capacity array rather than a slice so a page can never be
resized, and every typed read/write goes through an accessor that checks
the offset against PageSize first.

The byte layout is owned by the access method:
for heap page: /SlotDB/storage_engine/access/heapfile_manager/heap_page.go
for index page: /SlotDB/storage_engine/access/indexfile_manager/bplustree/node_to_index_page.go

An out-of-range offset here is a layout bug, not bad input: callers validate
anything they read off disk (slot offsets, key offsets) before using it, so
the accessors panic instead of returning errors.
*/

type Page struct {
	Data [PageSize]byte
}

// New returns a zeroed page.
func New() *Page {
	return &Page{}
}

// Reset zeroes the page so a recycled buffer starts clean.
func (p *Page) Reset() {
	p.Data = [PageSize]byte{}
}

func (p *Page) check(off, size int) {
	if off < 0 || size < 0 || off+size > PageSize {
		panic(fmt.Sprintf("page: access [%d, %d) outside page of %d bytes", off, off+size, PageSize))
	}
}

// InBounds reports whether [off, off+size) lies inside the page.
func InBounds(off, size int) bool {
	return off >= 0 && size >= 0 && off+size <= PageSize
}

func (p *Page) Uint8(off int) uint8 {
	p.check(off, 1)
	return p.Data[off]
}

func (p *Page) PutUint8(off int, v uint8) {
	p.check(off, 1)
	p.Data[off] = v
}

func (p *Page) Uint16(off int) uint16 {
	p.check(off, 2)
	return binary.LittleEndian.Uint16(p.Data[off:])
}

func (p *Page) PutUint16(off int, v uint16) {
	p.check(off, 2)
	binary.LittleEndian.PutUint16(p.Data[off:], v)
}

func (p *Page) Uint32(off int) uint32 {
	p.check(off, 4)
	return binary.LittleEndian.Uint32(p.Data[off:])
}

func (p *Page) PutUint32(off int, v uint32) {
	p.check(off, 4)
	binary.LittleEndian.PutUint32(p.Data[off:], v)
}

func (p *Page) Int32(off int) int32 {
	return int32(p.Uint32(off))
}

func (p *Page) PutInt32(off int, v int32) {
	p.PutUint32(off, uint32(v))
}

// Bytes returns the live sub-slice [off, off+size) of the page.
func (p *Page) Bytes(off, size int) []byte {
	p.check(off, size)
	return p.Data[off : off+size]
}

// PutBytes copies b into the page at off.
func (p *Page) PutBytes(off int, b []byte) {
	p.check(off, len(b))
	copy(p.Data[off:], b)
}

// Move copies size bytes from src to dst; the ranges may overlap.
func (p *Page) Move(dst, src, size int) {
	p.check(dst, size)
	p.check(src, size)
	copy(p.Data[dst:dst+size], p.Data[src:src+size])
}

// Zero clears [off, off+size).
func (p *Page) Zero(off, size int) {
	p.check(off, size)
	clear(p.Data[off : off+size])
}
