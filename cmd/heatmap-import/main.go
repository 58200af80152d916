// Command heatmap-import loads observations from JSON or CSV (or generates
// synthetic ones) into a SQLite observation store that heatmap can read.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/banshee-data/heatmap.report/internal/fsutil"
	"github.com/banshee-data/heatmap.report/internal/heatmap"
	"github.com/banshee-data/heatmap.report/internal/observations"
	"github.com/banshee-data/heatmap.report/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatalf("heatmap-import: %v", err)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("heatmap-import", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	dbPath := fs.String("db", "observations.db", "SQLite observation store (created and migrated if needed)")
	input := fs.String("input", "", "Observations to import (.json or .csv)")
	synthetic := fs.Int("synthetic", 0, "Generate this many synthetic observations instead of reading -input")
	seed := fs.Int64("seed", 1, "Seed for synthetic observations")
	columns := fs.Int("columns", 32, "Synthetic x range is [0, columns-1]")
	list := fs.Bool("list", false, "List the imports already in -db and exit")
	export := fs.String("export", "", "Write the observations in -db to this .json file and exit")
	batch := fs.String("batch", "", "With -export, write only this import batch")
	showVersion := fs.Bool("version", false, "Print version information and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *showVersion {
		fmt.Fprintln(stdout, version.String("heatmap-import"))
		return nil
	}

	if *list {
		return listBatches(ctx, *dbPath, stdout)
	}
	if *export != "" {
		return exportJSON(*dbPath, *export, *batch, stdout)
	}
	if *batch != "" {
		return fmt.Errorf("-batch requires -export")
	}

	var obs []heatmap.Observation
	switch {
	case *synthetic > 0:
		gen := observations.NewGenerator(*seed)
		gen.Count = *synthetic
		gen.Columns = *columns
		obs = gen.Generate()
	case *input != "":
		var err error
		if obs, err = observations.LoadFile(*input); err != nil {
			return err
		}
	default:
		return fmt.Errorf("one of -input or -synthetic is required")
	}

	store, err := observations.OpenStore(*dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	batchID, err := store.Insert(ctx, obs)
	if err != nil {
		return err
	}
	total, err := store.Count()
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "imported %d observations into %s (batch %s, %d total)\n", len(obs), *dbPath, batchID, total)
	return nil
}

// openExisting opens a store that must already exist on disk.
func openExisting(dbPath string) (*observations.Store, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, err
	}
	store, err := observations.OpenStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return store, nil
}

func exportJSON(dbPath, outPath, batchID string, stdout io.Writer) error {
	if ext := strings.ToLower(filepath.Ext(outPath)); ext != ".json" {
		return fmt.Errorf("export file must have .json extension, got %q", ext)
	}
	store, err := openExisting(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	var obs []heatmap.Observation
	if batchID != "" {
		obs, err = store.Batch(batchID)
	} else {
		obs, err = store.All()
	}
	if err != nil {
		return err
	}
	if len(obs) == 0 {
		return fmt.Errorf("no observations to export from %s", dbPath)
	}

	var buf bytes.Buffer
	if err := observations.WriteJSON(&buf, obs); err != nil {
		return err
	}
	if err := fsutil.WriteAtomic(fsutil.OSFileSystem{}, outPath, buf.Bytes(), 0644); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "exported %d observations to %s\n", len(obs), outPath)
	return nil
}

func listBatches(ctx context.Context, dbPath string, stdout io.Writer) error {
	store, err := openExisting(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	batches, err := store.Batches(ctx)
	if err != nil {
		return err
	}
	for _, b := range batches {
		fmt.Fprintf(stdout, "%s\t%d\t%s\n", b.ID, b.Count, b.RecordedAt.Format(time.RFC3339))
	}
	return nil
}
