// Dump a heap file: per-page free space, then every record that matches an
// optional condition.
// Usage: go run ./cmd/dump_heap [-dir data] -schema Name:varchar:30,Age:int [-where Age -op ge -value 40] [-project Name] <file.heap>
// Example: go run ./cmd/dump_heap -dir ./data -schema Name:varchar:30,Age:int,Height:real,Salary:int employees.heap
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"SlotDB/cmd/internal/report"
	storageengine "SlotDB/storage_engine"
	heapfile "SlotDB/storage_engine/access/heapfile_manager"
	diskmanager "SlotDB/storage_engine/disk_manager"
	"SlotDB/storage_engine/page"
	"SlotDB/types"

	"github.com/pkg/errors"
)

type options struct {
	schema  string
	where   string
	op      string
	value   string
	project string
	limit   int
}

func main() {
	cfg := storageengine.DefaultConfig()
	var opts options
	flag.StringVar(&cfg.DataDir, "dir", cfg.DataDir, "data directory")
	flag.StringVar(&opts.schema, "schema", "", "record schema, name:type[:length],...")
	flag.StringVar(&opts.where, "where", "", "attribute to filter on")
	flag.StringVar(&opts.op, "op", "eq", "eq, lt, le, gt, ge or ne")
	flag.StringVar(&opts.value, "value", "", "value to compare against")
	flag.StringVar(&opts.project, "project", "", "comma separated attributes to print (default all)")
	flag.IntVar(&opts.limit, "limit", 0, "stop after this many records (0 means all)")
	flag.Parse()

	if flag.NArg() < 1 || opts.schema == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s [-dir data] -schema name:type[:len],... <file.heap>\n", os.Args[0])
		os.Exit(1)
	}
	if err := dump(cfg, flag.Arg(0), opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func dump(cfg storageengine.Config, name string, opts options) error {
	attrs, err := types.ParseSchema(opts.schema)
	if err != nil {
		return err
	}
	op, value, err := condition(attrs, opts)
	if err != nil {
		return err
	}
	var projection []string
	if opts.project != "" {
		projection = strings.Split(opts.project, ",")
	} else {
		for _, a := range attrs {
			projection = append(projection, a.Name)
		}
	}
	printAttrs, err := projectedAttrs(attrs, projection)
	if err != nil {
		return err
	}

	se, err := storageengine.New(cfg)
	if err != nil {
		return err
	}
	defer se.Close()

	fh, err := se.HeapManager.OpenFile(se.Path(name))
	if err != nil {
		return err
	}
	defer se.HeapManager.CloseFile(fh)

	if err := printPages(se.HeapManager, fh); err != nil {
		return err
	}

	it, err := se.HeapManager.Scan(fh, attrs, opts.where, op, value, projection)
	if err != nil {
		return err
	}
	defer it.Close()

	n := 0
	for opts.limit == 0 || n < opts.limit {
		rid, data, err := it.GetNextRecord()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		fmt.Println(report.TitleStyle.Render(rid.String()))
		if err := heapfile.PrintRecord(os.Stdout, printAttrs, data); err != nil {
			return err
		}
		n++
	}
	fmt.Println(report.Box("scan", report.Stat{Label: "matched", Value: n}))
	return nil
}

func printPages(hfm *heapfile.HeapFileManager, fh *diskmanager.FileHandle) error {
	stats := []report.Stat{{Label: "pages", Value: fh.NumberOfPages()}}
	for p := uint32(0); p < fh.NumberOfPages(); p++ {
		free, err := hfm.PageFreeSpace(fh, types.PageNum(p))
		if err != nil {
			return err
		}
		label := "page " + strconv.FormatUint(uint64(p), 10)
		used := page.PageSize - free
		stats = append(stats, report.Stat{
			Label: label,
			Value: fmt.Sprintf("%s %4d bytes free", report.Bar(used, page.PageSize, 20), free),
		})
	}
	fmt.Println(report.Box(fh.Path(), stats...))
	return nil
}

func condition(attrs []types.Attribute, opts options) (types.CompOp, []byte, error) {
	if opts.where == "" {
		return types.NoOp, nil, nil
	}
	pos := types.AttributeIndex(attrs, opts.where)
	if pos < 0 {
		return 0, nil, errors.Wrapf(heapfile.ErrNoSuchAttribute, "-where %q", opts.where)
	}
	op, err := types.ParseCompOp(opts.op)
	if err != nil {
		return 0, nil, err
	}
	value, err := parseValue(attrs[pos].Type, opts.value)
	if err != nil {
		return 0, nil, errors.Wrapf(err, "value for %q", opts.where)
	}
	return op, value, nil
}

func parseValue(t types.AttrType, s string) ([]byte, error) {
	switch t {
	case types.TypeInt:
		v, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return nil, err
		}
		return types.IntValue(int32(v)), nil
	case types.TypeReal:
		v, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return nil, err
		}
		return types.RealValue(float32(v)), nil
	default:
		return types.VarCharValue(s), nil
	}
}

func projectedAttrs(attrs []types.Attribute, names []string) ([]types.Attribute, error) {
	out := make([]types.Attribute, 0, len(names))
	for _, n := range names {
		pos := types.AttributeIndex(attrs, n)
		if pos < 0 {
			return nil, errors.Wrapf(heapfile.ErrNoSuchAttribute, "-project %q", n)
		}
		out = append(out, attrs[pos])
	}
	return out, nil
}
