// Seed program: creates two sample tables, fills their heap files and builds
// one index per table. The tables are loaded concurrently, each on its own
// heap and index handles.
//
// Run: go run ./cmd/seed -dir ./data -rows 5000
// Then inspect: go run ./cmd/dump_heap -dir ./data -schema ... employees.heap
//
//	go run ./cmd/inspect_idx -dir ./data -type int employees_Age.idx
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"

	"SlotDB/logging"
	storageengine "SlotDB/storage_engine"
	diskmanager "SlotDB/storage_engine/disk_manager"
	"SlotDB/types"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

type table struct {
	name    string
	schema  string
	indexOn string
	row     func(r *rand.Rand, i int) []any
}

var firstNames = []string{"Ada", "Brook", "Cyd", "Dana", "Eli", "Fran", "Gus", "Hale", "Ira", "Jo"}

var tables = []table{
	{
		name:    "employees",
		schema:  "Name:varchar:30,Age:int,Height:real,Salary:int",
		indexOn: "Age",
		row: func(r *rand.Rand, i int) []any {
			var height any = float32(150 + r.IntN(50))
			if i%7 == 0 {
				height = nil
			}
			name := fmt.Sprintf("%s%d", firstNames[r.IntN(len(firstNames))], i)
			return []any{name, int32(18 + r.IntN(50)), height, int32(30000 + r.IntN(90000))}
		},
	},
	{
		name:    "departments",
		schema:  "DeptName:varchar:20,Budget:real,Floor:int",
		indexOn: "DeptName",
		row: func(r *rand.Rand, i int) []any {
			return []any{fmt.Sprintf("dept-%05d", r.IntN(100000)), float32(r.IntN(1_000_000)) / 100, int32(i % 12)}
		},
	},
}

func main() {
	cfg := storageengine.DefaultConfig()
	rows := flag.Int("rows", 1000, "rows per table")
	seed := flag.Uint64("seed", 1, "random seed")
	level := flag.String("log-level", "info", "debug, info, warn or error")
	flag.StringVar(&cfg.DataDir, "dir", cfg.DataDir, "data directory")
	flag.BoolVar(&cfg.SyncWrites, "sync", false, "fsync every page write")
	flag.StringVar(&cfg.Log.Format, "log-format", cfg.Log.Format, "text or json")
	flag.Parse()
	cfg.Log.Level = logging.ParseLevel(*level)

	se, err := storageengine.New(cfg)
	if err != nil {
		log.Fatalf("storage engine: %v", err)
	}

	g, ctx := errgroup.WithContext(context.Background())
	for i, t := range tables {
		r := rand.New(rand.NewPCG(*seed, uint64(i)))
		g.Go(func() error {
			return load(ctx, se, t, r, *rows)
		})
	}
	err = g.Wait()
	if cerr := se.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
}

func load(ctx context.Context, se *storageengine.StorageEngine, t table, r *rand.Rand, rows int) error {
	attrs, err := types.ParseSchema(t.schema)
	if err != nil {
		return errors.Wrap(err, t.name)
	}
	heapPath := se.Path(storageengine.HeapFileName(t.name))
	idxPath := se.Path(storageengine.IndexFileName(t.name, t.indexOn))

	for _, p := range []string{heapPath, idxPath} {
		if diskmanager.FileExists(p) {
			if err := se.DiskManager.DestroyFile(p); err != nil {
				return err
			}
		}
	}

	if err := se.HeapManager.CreateFile(heapPath); err != nil {
		return err
	}
	heapFh, err := se.HeapManager.OpenFile(heapPath)
	if err != nil {
		return err
	}
	defer se.HeapManager.CloseFile(heapFh)

	for i := 0; i < rows; i++ {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		data, err := types.EncodeRecord(attrs, t.row(r, i))
		if err != nil {
			return errors.Wrapf(err, "%s row %d", t.name, i)
		}
		if _, err := se.HeapManager.InsertRecord(heapFh, attrs, data); err != nil {
			return errors.Wrapf(err, "%s row %d", t.name, i)
		}
	}

	if err := se.IndexManager.CreateFile(idxPath); err != nil {
		return err
	}
	idxFh, err := se.IndexManager.OpenFile(idxPath)
	if err != nil {
		return err
	}
	defer se.IndexManager.CloseFile(idxFh)

	n, err := se.BuildIndex(heapFh, attrs, t.indexOn, idxFh)
	if err != nil {
		return errors.Wrapf(err, "%s index on %s", t.name, t.indexOn)
	}

	fmt.Printf("%-12s %6d rows  %4d heap pages  index %s: %d entries, %d pages\n%-12s schema %s\n",
		t.name, rows, heapFh.NumberOfPages(), t.indexOn, n, idxFh.NumberOfPages(), "", t.schema)
	return nil
}
