// Command heatmap renders interaction observations as heatmaps using the
// direct and/or kernel density strategies.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/banshee-data/heatmap.report/internal/config"
	"github.com/banshee-data/heatmap.report/internal/heatmap"
	"github.com/banshee-data/heatmap.report/internal/observations"
	"github.com/banshee-data/heatmap.report/internal/render"
	"github.com/banshee-data/heatmap.report/internal/version"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatalf("heatmap: %v", err)
	}
}

// cliFlags holds values that are not part of the heatmap config.
type cliFlags struct {
	dumpDensity bool
	runSuffix   bool
	showVersion bool
}

// parseArgs loads the config file named by -config (or the built-in
// defaults) and applies any flags the user set on top of it.
func parseArgs(args []string, stderr io.Writer) (*config.HeatmapConfig, cliFlags, error) {
	fs := flag.NewFlagSet("heatmap", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var cli cliFlags
	configPath := fs.String("config", "", "Path to a heatmap config JSON file (defaults to "+config.DefaultConfigPath+" when present)")
	input := fs.String("input", "", "Observation source: .json, .csv or .db; synthetic data is generated if it does not exist")
	strategy := fs.String("strategy", "", "Strategy to run: kde, direct or both")
	bandwidth := fs.Float64("bandwidth", 0, "Fixed KDE bandwidth in pixels")
	bandwidthMode := fs.String("bandwidth-mode", "", "KDE bandwidth mode: fixed or silverman")
	paletteSize := fs.Int("palette-size", 0, "Number of KDE colour buckets (1-10)")
	workers := fs.Int("workers", 0, "Parallel KDE workers (1 = serial)")
	lineLayout := fs.Bool("line-layout", false, "Direct strategy: pin every square to x=0")
	width := fs.Int("width", 0, "Canvas width in pixels")
	height := fs.Int("height", 0, "Canvas height in pixels")
	gridSize := fs.Int("grid-size", 0, "Cell side length in pixels")
	seed := fs.Int64("seed", 0, "Seed for synthetic observations")
	outDir := fs.String("out", "", "Output directory")
	formats := fs.String("format", "", "Comma-separated output formats: svg, png, html")
	fs.BoolVar(&cli.dumpDensity, "dump-density", false, "Print the KDE density field as JSON to stdout")
	fs.BoolVar(&cli.runSuffix, "run-suffix", false, "Append the run ID to output file names")
	fs.BoolVar(&cli.showVersion, "version", false, "Print version information and exit")

	if err := fs.Parse(args); err != nil {
		return nil, cli, err
	}
	if fs.NArg() > 0 {
		return nil, cli, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	var (
		cfg *config.HeatmapConfig
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadHeatmapConfig(*configPath)
	} else {
		cfg, _, err = config.LoadDefaultConfig()
	}
	if err != nil {
		return nil, cli, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			cfg.Source = input
		case "strategy":
			cfg.Strategy = strategy
		case "bandwidth":
			cfg.Bandwidth = bandwidth
		case "bandwidth-mode":
			cfg.BandwidthMode = bandwidthMode
		case "palette-size":
			cfg.PaletteSize = paletteSize
		case "workers":
			cfg.Workers = workers
		case "line-layout":
			cfg.UseLineLayout = lineLayout
		case "width":
			cfg.Width = width
		case "height":
			cfg.Height = height
		case "grid-size":
			cfg.GridSize = gridSize
		case "seed":
			cfg.Seed = seed
		case "out":
			cfg.OutputDir = outDir
		case "format":
			cfg.Formats = splitList(*formats)
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, cli, err
	}
	return cfg, cli, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func run(args []string, stdout io.Writer) error {
	cfg, cli, err := parseArgs(args, os.Stderr)
	if err != nil {
		return err
	}

	if cli.showVersion {
		fmt.Fprintln(stdout, version.String("heatmap"))
		return nil
	}

	canvas := cfg.Canvas()
	if err := canvas.Validate(); err != nil {
		return err
	}

	gen := observations.NewGenerator(cfg.GetSeed())
	gen.Count = cfg.GetSyntheticCount()
	gen.Columns = canvas.Cols()
	obs, synthetic, err := observations.Load(cfg.GetSource(), gen)
	if err != nil {
		return err
	}
	if synthetic {
		log.Printf("using %d synthetic observations (seed %d)", len(obs), cfg.GetSeed())
	}

	for _, name := range cfg.StrategyNames() {
		s, err := heatmap.NewStrategy(cfg.StrategyOptions(name))
		if err != nil {
			return err
		}

		res, err := heatmap.Run(s, obs)
		if err != nil {
			return err
		}
		if res.KDE != nil && cli.dumpDensity {
			if err := dumpDensity(stdout, res.KDE); err != nil {
				return err
			}
		}

		scene := render.NewScene(canvas, res)
		for _, format := range cfg.GetFormats() {
			r, err := render.ForFormat(format)
			if err != nil {
				return err
			}
			path, err := render.WriteFile(cfg.GetOutputDir(), r, scene, cli.runSuffix)
			if err != nil {
				return err
			}
			log.Printf("wrote %s", path)
		}
	}
	return nil
}

func dumpDensity(w io.Writer, res *heatmap.KDEResult) error {
	return json.NewEncoder(w).Encode(struct {
		Bandwidth float64   `json:"bandwidth"`
		Density   []float64 `json:"density"`
	}{res.Bandwidth.H, res.Density})
}
