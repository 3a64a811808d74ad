package heapfile

import (
	"bytes"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"SlotDB/logging"
	diskmanager "SlotDB/storage_engine/disk_manager"
	"SlotDB/storage_engine/page"
	"SlotDB/types"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var employee = []types.Attribute{
	{Name: "EmpName", Type: types.TypeVarChar, Length: 30},
	{Name: "Age", Type: types.TypeInt, Length: 4},
	{Name: "Height", Type: types.TypeReal, Length: 4},
	{Name: "Salary", Type: types.TypeInt, Length: 4},
}

var blob = []types.Attribute{
	{Name: "Body", Type: types.TypeVarChar, Length: 4000},
}

func setupHeap(t *testing.T) (*HeapFileManager, *diskmanager.FileHandle) {
	t.Helper()
	dm := diskmanager.NewDiskManager(diskmanager.Options{Logger: logging.Discard()})
	hfm, err := NewHeapFileManager(dm, Options{Logger: logging.Discard()})
	require.NoError(t, err)
	t.Cleanup(hfm.Close)

	path := filepath.Join(t.TempDir(), "employee.heap")
	require.NoError(t, hfm.CreateFile(path))
	fh, err := hfm.OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { dm.CloseAll() })
	return hfm, fh
}

func encode(t *testing.T, attrs []types.Attribute, values ...any) []byte {
	t.Helper()
	data, err := types.EncodeRecord(attrs, values)
	require.NoError(t, err)
	return data
}

func body(n int) []byte {
	return encodeBlob(strings.Repeat("x", n))
}

func encodeBlob(s string) []byte {
	data, _ := types.EncodeRecord(blob, []any{s})
	return data
}

// requireCompacted checks that the live records of a page tile the record
// area exactly and the free space matches the header.
func requireCompacted(t *testing.T, fh *diskmanager.FileHandle, pageNum types.PageNum) {
	t.Helper()
	pg := page.New()
	require.NoError(t, readHeapPage(fh, pageNum, pg))

	type span struct{ off, n int }
	var spans []span
	used := 0
	for i := uint32(0); i < getSlotCount(pg); i++ {
		if s := readSlot(pg, i); s.isValid() {
			spans = append(spans, span{int(s.offset), int(s.length)})
			used += int(s.length)
		}
	}
	sort.Slice(spans, func(a, b int) bool { return spans[a].off > spans[b].off })

	cursor := page.PageSize
	for _, sp := range spans {
		require.Equal(t, cursor, sp.off+sp.n, "gap or overlap above offset %d", sp.off)
		cursor = sp.off
	}
	require.Equal(t, cursor, getFreeSpaceOffset(pg))
	require.Equal(t, page.PageSize-HeapHeaderSize-SlotSize*int(getSlotCount(pg))-used, freeSpace(pg))
}

func drain(t *testing.T, it *ScanIterator) ([]types.RID, [][]byte) {
	t.Helper()
	var rids []types.RID
	var rows [][]byte
	for {
		rid, data, err := it.GetNextRecord()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		rids = append(rids, rid)
		rows = append(rows, data)
	}
	require.NoError(t, it.Close())
	return rids, rows
}

func TestCreateFileHasOneEmptyPage(t *testing.T) {
	hfm, fh := setupHeap(t)
	assert.Equal(t, uint32(1), fh.NumberOfPages())

	free, err := hfm.PageFreeSpace(fh, 0)
	require.NoError(t, err)
	assert.Equal(t, page.PageSize-HeapHeaderSize, free)
}

func TestInsertAndReadAgree(t *testing.T) {
	hfm, fh := setupHeap(t)

	rows := [][]any{
		{"Anteater", int32(25), float32(177.8), int32(6200)},
		{"", int32(0), float32(0), int32(0)},
		{nil, int32(31), nil, int32(-4)},
		{nil, nil, nil, nil},
	}
	rids := make([]types.RID, len(rows))
	for i, values := range rows {
		rid, err := hfm.InsertRecord(fh, employee, encode(t, employee, values...))
		require.NoError(t, err)
		rids[i] = rid
	}

	for i, rid := range rids {
		got, err := hfm.ReadRecord(fh, employee, rid)
		require.NoError(t, err)
		assert.Equal(t, encode(t, employee, rows[i]...), got, "row %d at %s", i, rid)
	}
	requireCompacted(t, fh, 0)

	_, err := hfm.ReadRecord(fh, employee, types.RID{PageNum: 0, SlotNum: 99})
	assert.True(t, errors.Is(err, ErrSlotDoesNotExist), "got %v", err)
}

func TestInsertIsFirstFit(t *testing.T) {
	hfm, fh := setupHeap(t)

	// Three 1305 byte records fill most of page 0, the fourth needs a new page
	// and the fifth small one goes back to page 0.
	for i := 0; i < 3; i++ {
		rid, err := hfm.InsertRecord(fh, blob, body(1300))
		require.NoError(t, err)
		assert.Equal(t, types.RID{PageNum: 0, SlotNum: uint32(i)}, rid)
	}
	rid, err := hfm.InsertRecord(fh, blob, body(1300))
	require.NoError(t, err)
	assert.Equal(t, types.PageNum(1), rid.PageNum)

	rid, err = hfm.InsertRecord(fh, blob, body(10))
	require.NoError(t, err)
	assert.Equal(t, types.RID{PageNum: 0, SlotNum: 3}, rid)
}

func TestRecordTooLarge(t *testing.T) {
	hfm, fh := setupHeap(t)
	_, err := hfm.InsertRecord(fh, blob, body(page.PageSize))
	assert.True(t, errors.Is(err, ErrRecordTooLarge), "got %v", err)

	rid, err := hfm.InsertRecord(fh, blob, body(MaxRecordSize-onPageHeaderSize(1)))
	require.NoError(t, err)
	assert.Equal(t, types.RID{}, rid)
}

func TestDeleteIsFinal(t *testing.T) {
	hfm, fh := setupHeap(t)

	var rids []types.RID
	for i := 0; i < 3; i++ {
		rid, err := hfm.InsertRecord(fh, employee, encode(t, employee, "emp", int32(i), float32(i), int32(i)))
		require.NoError(t, err)
		rids = append(rids, rid)
	}
	before, err := hfm.PageFreeSpace(fh, 0)
	require.NoError(t, err)

	require.NoError(t, hfm.DeleteRecord(fh, employee, rids[1]))
	requireCompacted(t, fh, 0)

	after, err := hfm.PageFreeSpace(fh, 0)
	require.NoError(t, err)
	assert.Greater(t, after, before)

	_, err = hfm.ReadRecord(fh, employee, rids[1])
	assert.True(t, errors.Is(err, ErrReadAfterDelete), "got %v", err)
	err = hfm.DeleteRecord(fh, employee, rids[1])
	assert.True(t, errors.Is(err, ErrSlotDoesNotExist), "got %v", err)
	err = hfm.UpdateRecord(fh, employee, encode(t, employee, "x", int32(1), float32(1), int32(1)), rids[1])
	assert.True(t, errors.Is(err, ErrReadAfterDelete), "got %v", err)

	// Neighbours survive compaction.
	for _, i := range []int{0, 2} {
		got, err := hfm.ReadRecord(fh, employee, rids[i])
		require.NoError(t, err)
		assert.Equal(t, encode(t, employee, "emp", int32(i), float32(i), int32(i)), got)
	}

	// The lowest dead slot is reused.
	rid, err := hfm.InsertRecord(fh, employee, encode(t, employee, "new", int32(9), float32(9), int32(9)))
	require.NoError(t, err)
	assert.Equal(t, rids[1], rid)
}

func TestUpdateKeepsRID(t *testing.T) {
	hfm, fh := setupHeap(t)

	var rids []types.RID
	for i := 0; i < 4; i++ {
		rid, err := hfm.InsertRecord(fh, blob, body(1000))
		require.NoError(t, err)
		require.Equal(t, types.PageNum(0), rid.PageNum)
		rids = append(rids, rid)
	}
	free, err := hfm.PageFreeSpace(fh, 0)
	require.NoError(t, err)
	require.Less(t, free, 100)

	read := func(rid types.RID) []byte {
		got, err := hfm.ReadRecord(fh, blob, rid)
		require.NoError(t, err)
		return got
	}

	t.Run("equal size", func(t *testing.T) {
		next := encodeBlob(strings.Repeat("e", 1000))
		require.NoError(t, hfm.UpdateRecord(fh, blob, next, rids[0]))
		assert.Equal(t, next, read(rids[0]))
		requireCompacted(t, fh, 0)
	})

	t.Run("shrink", func(t *testing.T) {
		next := encodeBlob("short")
		require.NoError(t, hfm.UpdateRecord(fh, blob, next, rids[1]))
		assert.Equal(t, next, read(rids[1]))
		requireCompacted(t, fh, 0)
	})

	t.Run("grow in place", func(t *testing.T) {
		next := body(1500)
		require.NoError(t, hfm.UpdateRecord(fh, blob, next, rids[2]))
		assert.Equal(t, next, read(rids[2]))
		assert.Equal(t, uint32(1), fh.NumberOfPages())
		requireCompacted(t, fh, 0)
	})

	t.Run("grow forwards", func(t *testing.T) {
		next := body(3000)
		require.NoError(t, hfm.UpdateRecord(fh, blob, next, rids[3]))
		assert.Equal(t, next, read(rids[3]))
		assert.Equal(t, uint32(2), fh.NumberOfPages())
		requireCompacted(t, fh, 0)
		requireCompacted(t, fh, 1)

		pg := page.New()
		s, err := loadSlot(fh, rids[3], pg)
		require.NoError(t, err)
		require.True(t, s.isMoved())
		assert.Equal(t, types.RID{PageNum: 1, SlotNum: 0}, s.target())
	})

	t.Run("update through pointer", func(t *testing.T) {
		next := encodeBlob("back to small")
		require.NoError(t, hfm.UpdateRecord(fh, blob, next, rids[3]))
		assert.Equal(t, next, read(rids[3]))
	})

	it, err := hfm.Scan(fh, blob, "", types.NoOp, nil, []string{"Body"})
	require.NoError(t, err)
	scanned, _ := drain(t, it)
	assert.Len(t, scanned, 4, "relocated record must be seen exactly once")
}

func TestRelocatingAForwardedRecordRepointsOrigin(t *testing.T) {
	hfm, fh := setupHeap(t)

	var rids []types.RID
	for i := 0; i < 3; i++ {
		rid, err := hfm.InsertRecord(fh, blob, body(1300))
		require.NoError(t, err)
		rids = append(rids, rid)
	}

	// rids[0] moves to page 1, then page 1 fills up behind it.
	require.NoError(t, hfm.UpdateRecord(fh, blob, body(2000), rids[0]))
	filler, err := hfm.InsertRecord(fh, blob, body(2000))
	require.NoError(t, err)
	require.Equal(t, types.PageNum(1), filler.PageNum)

	// Growing it again cannot stay on page 1.
	next := body(2100)
	require.NoError(t, hfm.UpdateRecord(fh, blob, next, rids[0]))

	pg := page.New()
	s, err := loadSlot(fh, rids[0], pg)
	require.NoError(t, err)
	require.True(t, s.isMoved())
	assert.Equal(t, types.PageNum(2), s.target().PageNum)

	old, err := loadSlot(fh, types.RID{PageNum: 1, SlotNum: 0}, pg)
	require.NoError(t, err)
	assert.True(t, old.isDead())
	requireCompacted(t, fh, 1)

	got, err := hfm.ReadRecord(fh, blob, rids[0])
	require.NoError(t, err)
	assert.Equal(t, next, got)

	require.NoError(t, hfm.DeleteRecord(fh, blob, rids[0]))
	_, err = hfm.ReadRecord(fh, blob, rids[0])
	assert.True(t, errors.Is(err, ErrReadAfterDelete))
	target, err := loadSlot(fh, s.target(), pg)
	require.NoError(t, err)
	assert.True(t, target.isDead())
}

func TestForwardingNeverTargetsFirstSlot(t *testing.T) {
	hfm, fh := setupHeap(t)

	a, err := hfm.InsertRecord(fh, blob, body(3000))
	require.NoError(t, err)
	b, err := hfm.InsertRecord(fh, blob, body(2000))
	require.NoError(t, err)
	require.Equal(t, types.RID{PageNum: 1, SlotNum: 0}, b)
	c, err := hfm.InsertRecord(fh, blob, body(1500))
	require.NoError(t, err)
	require.Equal(t, types.RID{PageNum: 1, SlotNum: 1}, c)

	// Page 0 has room again once a is gone, but slot 0 is off limits.
	require.NoError(t, hfm.DeleteRecord(fh, blob, a))
	next := body(2800)
	require.NoError(t, hfm.UpdateRecord(fh, blob, next, b))

	pg := page.New()
	s, err := loadSlot(fh, b, pg)
	require.NoError(t, err)
	require.True(t, s.isMoved())
	assert.Equal(t, types.RID{PageNum: 0, SlotNum: 1}, s.target())

	got, err := hfm.ReadRecord(fh, blob, b)
	require.NoError(t, err)
	assert.Equal(t, next, got)
}

func TestForwardingCycleIsDetected(t *testing.T) {
	hfm, fh := setupHeap(t)
	for i := 0; i < 3; i++ {
		_, err := hfm.InsertRecord(fh, blob, body(10))
		require.NoError(t, err)
	}

	pg := page.New()
	require.NoError(t, readHeapPage(fh, 0, pg))
	writeSlot(pg, 1, movedSlot(types.RID{PageNum: 0, SlotNum: 2}))
	writeSlot(pg, 2, movedSlot(types.RID{PageNum: 0, SlotNum: 1}))
	require.NoError(t, fh.WritePage(0, pg))

	_, err := hfm.ReadRecord(fh, blob, types.RID{PageNum: 0, SlotNum: 1})
	assert.True(t, errors.Is(err, ErrForwardingCycle), "got %v", err)
}

func TestCorruptHeaderIsReported(t *testing.T) {
	hfm, fh := setupHeap(t)
	pg := page.New()
	setFreeSpaceOffset(pg, 2)
	require.NoError(t, fh.WritePage(0, pg))

	_, err := hfm.ReadRecord(fh, blob, types.RID{})
	assert.True(t, errors.Is(err, ErrCorruptPage), "got %v", err)
}

func TestScanPredicates(t *testing.T) {
	hfm, fh := setupHeap(t)

	people := [][]any{
		{"Ann", int32(20), float32(160), int32(100)},
		{"Bob", int32(30), float32(170), int32(200)},
		{"Cat", nil, float32(180), int32(300)},
		{"Dan", int32(40), nil, int32(400)},
		{"Eve", int32(30), float32(150), nil},
	}
	for _, p := range people {
		_, err := hfm.InsertRecord(fh, employee, encode(t, employee, p...))
		require.NoError(t, err)
	}

	names := func(rows [][]byte) []string {
		var out []string
		for _, r := range rows {
			v, err := types.DecodeRecord(employee[:1], r)
			require.NoError(t, err)
			out = append(out, v[0].(string))
		}
		return out
	}
	scan := func(attr string, op types.CompOp, value []byte) []string {
		it, err := hfm.Scan(fh, employee, attr, op, value, []string{"EmpName"})
		require.NoError(t, err)
		_, rows := drain(t, it)
		return names(rows)
	}

	assert.Equal(t, []string{"Ann", "Bob", "Cat", "Dan", "Eve"}, scan("", types.NoOp, nil))
	assert.Equal(t, []string{"Bob", "Eve"}, scan("Age", types.EQ, types.IntValue(30)))
	assert.Equal(t, []string{"Ann"}, scan("Age", types.LT, types.IntValue(30)))
	assert.Equal(t, []string{"Ann", "Bob", "Eve"}, scan("Age", types.LE, types.IntValue(30)))
	assert.Equal(t, []string{"Dan"}, scan("Age", types.GT, types.IntValue(30)))
	assert.Equal(t, []string{"Bob", "Dan", "Eve"}, scan("Age", types.GE, types.IntValue(30)))
	assert.Equal(t, []string{"Ann", "Dan"}, scan("Age", types.NE, types.IntValue(30)), "null never matches")
	assert.Equal(t, []string{"Bob", "Cat"}, scan("Height", types.GE, types.RealValue(170)))
	assert.Equal(t, []string{"Cat", "Dan", "Eve"}, scan("EmpName", types.GT, types.VarCharValue("Bz")))
	assert.Equal(t, []string{"Ann", "Bob"}, scan("Salary", types.LE, types.IntValue(200)))
}

func TestScanProjection(t *testing.T) {
	hfm, fh := setupHeap(t)
	rid, err := hfm.InsertRecord(fh, employee, encode(t, employee, "Ann", nil, float32(1.5), int32(7)))
	require.NoError(t, err)

	it, err := hfm.Scan(fh, employee, "", types.NoOp, nil, []string{"Salary", "Age", "EmpName"})
	require.NoError(t, err)
	rids, rows := drain(t, it)
	require.Len(t, rows, 1)
	assert.Equal(t, []types.RID{rid}, rids)

	projected := []types.Attribute{employee[3], employee[1], employee[0]}
	got, err := types.DecodeRecord(projected, rows[0])
	require.NoError(t, err)
	assert.Equal(t, []any{int32(7), nil, "Ann"}, got)

	it, err = hfm.Scan(fh, employee, "", types.NoOp, nil, nil)
	require.NoError(t, err)
	rids, rows = drain(t, it)
	assert.Equal(t, []types.RID{rid}, rids)
	assert.Nil(t, rows[0])
}

func TestScanUnknownAttribute(t *testing.T) {
	hfm, fh := setupHeap(t)

	_, err := hfm.Scan(fh, employee, "Nope", types.EQ, types.IntValue(1), []string{"Age"})
	assert.True(t, errors.Is(err, ErrNoSuchAttribute), "got %v", err)

	_, err = hfm.Scan(fh, employee, "", types.NoOp, nil, []string{"Age", "Nope"})
	assert.True(t, errors.Is(err, ErrNoSuchAttribute), "got %v", err)

	_, err = hfm.ReadAttribute(fh, employee, types.RID{}, "Nope")
	assert.True(t, errors.Is(err, ErrNoSuchAttribute), "got %v", err)
}

func TestScanAfterClose(t *testing.T) {
	hfm, fh := setupHeap(t)
	_, err := hfm.InsertRecord(fh, blob, body(5))
	require.NoError(t, err)

	it, err := hfm.Scan(fh, blob, "", types.NoOp, nil, nil)
	require.NoError(t, err)
	require.NoError(t, it.Close())
	_, _, err = it.GetNextRecord()
	assert.Equal(t, io.EOF, err)
}

func TestScanThousandRecords(t *testing.T) {
	hfm, fh := setupHeap(t)
	schema := []types.Attribute{
		{Name: "page", Type: types.TypeInt, Length: 4},
		{Name: "slot", Type: types.TypeInt, Length: 4},
	}

	const n = 1000
	inserted := make(map[types.RID]int32, n)
	for i := int32(0); i < n; i++ {
		rid, err := hfm.InsertRecord(fh, schema, encode(t, schema, i, i+1))
		require.NoError(t, err)
		inserted[rid] = i
	}

	it, err := hfm.Scan(fh, schema, "", types.NoOp, nil, []string{"page", "slot"})
	require.NoError(t, err)
	rids, rows := drain(t, it)
	require.Len(t, rows, n)

	sum := 0
	for i, row := range rows {
		v, err := types.DecodeRecord(schema, row)
		require.NoError(t, err)
		assert.Equal(t, inserted[rids[i]], v[0].(int32))
		sum += int(v[0].(int32))
	}
	assert.Equal(t, 999*1000/2, sum)

	for p := types.PageNum(0); p < fh.NumberOfPages(); p++ {
		requireCompacted(t, fh, p)
	}
}

func TestReadAttribute(t *testing.T) {
	hfm, fh := setupHeap(t)
	rid, err := hfm.InsertRecord(fh, employee, encode(t, employee, "Ann", nil, float32(1.5), int32(7)))
	require.NoError(t, err)

	got, err := hfm.ReadAttribute(fh, employee, rid, "EmpName")
	require.NoError(t, err)
	assert.Equal(t, append([]byte{0}, types.VarCharValue("Ann")...), got)

	got, err = hfm.ReadAttribute(fh, employee, rid, "Age")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x80}, got)

	got, err = hfm.ReadAttribute(fh, employee, rid, "Salary")
	require.NoError(t, err)
	assert.Equal(t, append([]byte{0}, types.IntValue(7)...), got)
}

func TestReadWithWiderSchema(t *testing.T) {
	hfm, fh := setupHeap(t)
	rid, err := hfm.InsertRecord(fh, employee[:2], encode(t, employee[:2], "Ann", int32(3)))
	require.NoError(t, err)

	got, err := hfm.ReadRecord(fh, employee, rid)
	require.NoError(t, err)
	assert.Equal(t, encode(t, employee, "Ann", int32(3), nil, nil), got)
}

func TestReorganizePage(t *testing.T) {
	pg := page.New()
	initHeapPage(pg)
	placeRecord(pg, 0, bytes.Repeat([]byte{'a'}, 10))
	placeRecord(pg, 1, bytes.Repeat([]byte{'b'}, 20))
	placeRecord(pg, 2, bytes.Repeat([]byte{'c'}, 30))

	writeSlot(pg, 1, slot{})
	reorganizePage(pg)

	assert.Equal(t, page.PageSize-40, getFreeSpaceOffset(pg))
	assert.Equal(t, uint32(3), getSlotCount(pg))
	a := readSlot(pg, 0)
	c := readSlot(pg, 2)
	assert.Equal(t, bytes.Repeat([]byte{'a'}, 10), pg.Bytes(int(a.offset), int(a.length)))
	assert.Equal(t, bytes.Repeat([]byte{'c'}, 30), pg.Bytes(int(c.offset), int(c.length)))
	assert.Equal(t, page.PageSize-10, int(a.offset))
	assert.Equal(t, page.PageSize-40, int(c.offset))
}

func TestPrintRecord(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintRecord(&buf, employee, encode(t, employee, "Ann", nil, float32(1.5), int32(7))))
	assert.Equal(t, "----\nEmpName: Ann\nAge: NULL\nHeight: 1.5\nSalary: 7\n----\n", buf.String())
}
