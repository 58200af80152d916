// Package observations loads interaction observations for the heatmap from
// JSON and CSV files, a SQLite store, or a seeded synthetic generator.
package observations

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/banshee-data/heatmap.report/internal/heatmap"
	"github.com/banshee-data/heatmap.report/internal/monitoring"
)

// ReadJSON decodes a JSON array of {"x", "y", "users_relative"} objects.
func ReadJSON(r io.Reader) ([]heatmap.Observation, error) {
	var obs []heatmap.Observation
	if err := json.NewDecoder(r).Decode(&obs); err != nil {
		return nil, fmt.Errorf("failed to decode observations: %w", err)
	}
	return obs, nil
}

// ReadCSV parses CSV records with a header row naming the x, y and
// (optionally) users_relative columns. Column order is free.
func ReadCSV(r io.Reader) ([]heatmap.Observation, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return parseObservationRecords(records)
}

func parseObservationRecords(records [][]string) ([]heatmap.Observation, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV has no header row")
	}

	cols := map[string]int{}
	for i, name := range records[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	xCol, okX := cols["x"]
	yCol, okY := cols["y"]
	if !okX || !okY {
		return nil, fmt.Errorf("CSV header must name x and y columns, got %v", records[0])
	}
	urCol, hasUR := cols["users_relative"]

	obs := make([]heatmap.Observation, 0, len(records)-1)
	for i, rec := range records[1:] {
		line := i + 2
		field := func(col int, name string) (int, error) {
			if col >= len(rec) {
				return 0, fmt.Errorf("line %d: missing %s", line, name)
			}
			v, err := strconv.Atoi(strings.TrimSpace(rec[col]))
			if err != nil {
				return 0, fmt.Errorf("line %d: invalid %s '%s': %w", line, name, rec[col], err)
			}
			return v, nil
		}

		var (
			o   heatmap.Observation
			err error
		)
		if o.X, err = field(xCol, "x"); err != nil {
			return nil, err
		}
		if o.Y, err = field(yCol, "y"); err != nil {
			return nil, err
		}
		if hasUR && urCol < len(rec) && strings.TrimSpace(rec[urCol]) != "" {
			if o.UsersRelative, err = field(urCol, "users_relative"); err != nil {
				return nil, err
			}
		}
		obs = append(obs, o)
	}
	return obs, nil
}

// LoadFile reads observations from path, choosing the decoder by extension:
// .json, .csv, or .db/.sqlite for an observation store.
func LoadFile(path string) ([]heatmap.Observation, error) {
	cleanPath := filepath.Clean(path)
	switch ext := strings.ToLower(filepath.Ext(cleanPath)); ext {
	case ".db", ".sqlite", ".sqlite3":
		if _, err := os.Stat(cleanPath); err != nil {
			return nil, err
		}
		store, err := OpenStore(cleanPath)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.All()
	case ".json", ".csv":
		f, err := os.Open(cleanPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if ext == ".csv" {
			return ReadCSV(f)
		}
		return ReadJSON(f)
	default:
		return nil, fmt.Errorf("unsupported observation file extension %q", ext)
	}
}

// Load reads observations from path. When the file does not exist it falls
// back to gen and reports synthetic=true. A nil gen disables the fallback.
func Load(path string, gen *Generator) (obs []heatmap.Observation, synthetic bool, err error) {
	obs, err = LoadFile(path)
	if err == nil {
		monitoring.Logf("loaded %d observations from %s", len(obs), path)
		return obs, false, nil
	}
	if gen == nil || !errors.Is(err, fs.ErrNotExist) {
		return nil, false, fmt.Errorf("load observations from %s: %w", path, err)
	}

	obs = gen.Generate()
	monitoring.Logf("%s not found, generated %d synthetic observations", path, len(obs))
	return obs, true, nil
}

// WriteJSON encodes obs in the same shape ReadJSON accepts.
func WriteJSON(w io.Writer, obs []heatmap.Observation) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(obs)
}
