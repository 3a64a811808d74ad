// Inspect a B+ tree index file (.idx): a stats header, then every node.
// Usage: go run ./cmd/inspect_idx [-dir data] -type int|real|varchar <file.idx>
// Example: go run ./cmd/inspect_idx -dir ./data -type int employees_Age.idx
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"SlotDB/cmd/internal/report"
	storageengine "SlotDB/storage_engine"
	diskmanager "SlotDB/storage_engine/disk_manager"
	"SlotDB/types"
)

func main() {
	cfg := storageengine.DefaultConfig()
	typ := flag.String("type", "int", "key type: int, real or varchar")
	flag.StringVar(&cfg.DataDir, "dir", cfg.DataDir, "data directory")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [-dir data] -type int|real|varchar <index.idx>\n", os.Args[0])
		os.Exit(1)
	}
	if err := inspect(cfg, flag.Arg(0), *typ); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func inspect(cfg storageengine.Config, name, typ string) error {
	t, err := types.ParseAttrType(typ)
	if err != nil {
		return err
	}
	attr := types.Attribute{Name: "key", Type: t, Length: 4}
	if t == types.TypeVarChar {
		attr.Length = 255
	}

	se, err := storageengine.New(cfg)
	if err != nil {
		return err
	}
	defer se.Close()

	fh, err := se.IndexManager.OpenFile(se.Path(name))
	if err != nil {
		return err
	}
	defer se.IndexManager.CloseFile(fh)

	ks, err := scanKeys(se, fh, attr)
	if err != nil {
		return err
	}
	stats := []report.Stat{
		{Label: "key type", Value: t},
		{Label: "pages", Value: fh.NumberOfPages()},
		{Label: "entries", Value: ks.entries},
	}
	if ks.entries > 0 {
		stats = append(stats, report.Stat{Label: "key range", Value: ks.min + " .. " + ks.max})
	}
	stats = append(stats, report.Stat{Label: "page reads", Value: fh.CollectCounterValues().Reads})
	fmt.Println(report.Box(fh.Path(), stats...))
	return se.IndexManager.PrintBTree(os.Stdout, fh, attr)
}

type keyStats struct {
	entries  int
	min, max string
}

func scanKeys(se *storageengine.StorageEngine, fh *diskmanager.FileHandle, attr types.Attribute) (keyStats, error) {
	var ks keyStats
	it, err := se.IndexManager.Scan(fh, attr, nil, nil, true, true)
	if err != nil {
		return ks, err
	}
	defer it.Close()
	for {
		_, key, err := it.GetNextEntry()
		if err == io.EOF {
			return ks, nil
		}
		if err != nil {
			return ks, err
		}
		if ks.entries == 0 {
			ks.min = types.FormatValue(attr.Type, key)
		}
		ks.max = types.FormatValue(attr.Type, key)
		ks.entries++
	}
}
