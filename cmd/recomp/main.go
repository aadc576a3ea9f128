// Command recomp statically recompiles a DOS 16-bit overlay program
// into per-function target routines operating against an explicit CPU
// state, and reports on the discovered function and overlay structure.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/civrecomp/dos16recomp/analyze"
	"github.com/civrecomp/dos16recomp/config"
	"github.com/civrecomp/dos16recomp/container"
	"github.com/civrecomp/dos16recomp/report"
	"github.com/civrecomp/dos16recomp/strscan"
)

func main() {
	var (
		verbose     = flag.Bool("verbose", false, "expanded per-function listing in the text report")
		symbolsPath = flag.String("symbols", "", "write the machine-readable function table to this path")
		configPath  = flag.String("config", "", "load overlay-scan and category tuning from this TOML file")
		browse      = flag.Bool("browse", false, "launch the interactive browser instead of printing the report")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: recomp [flags] <image-file>")
		os.Exit(2)
	}

	if err := run(flag.Arg(0), *configPath, *symbolsPath, *verbose, *browse); err != nil {
		fmt.Fprintln(os.Stderr, "recomp:", err)
		os.Exit(1)
	}
}

func run(imagePath, configPath, symbolsPath string, verbose, browse bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	data, err := os.ReadFile(imagePath) // #nosec G304 -- user-specified input image
	if err != nil {
		return fmt.Errorf("container: cannot read %s: %w", imagePath, err)
	}

	bounds := container.Bounds{
		MinPages:            cfg.Overlay.MinPages,
		MaxPages:            cfg.Overlay.MaxPages,
		MinHeaderParagraphs: cfg.Overlay.MinHeaderParagraphs,
		MaxHeaderParagraphs: cfg.Overlay.MaxHeaderParagraphs,
	}
	img, err := container.Load(data, bounds)
	if err != nil {
		return fmt.Errorf("container: %w", err)
	}
	log.Printf("container: resident window [%#x,%#x), %d overlay modules", img.Resident.Start, img.Resident.End, len(img.Overlays))

	result := analyze.Build(img, cfg.Overlay.Vector)
	log.Printf("analyze: %d resident functions across %d overlays", len(result.Resident), len(result.Overlays))

	categorizeResult(result, data, img.Resident, cfg)

	if symbolsPath != "" {
		if err := report.WriteSymbols(symbolsPath, result); err != nil {
			return fmt.Errorf("report: %w", err)
		}
		log.Printf("report: wrote symbol table to %s", symbolsPath)
	}

	if browse {
		b := report.NewBrowser(result, data, cfg.Overlay.Vector)
		return b.Run()
	}

	report.Summary(os.Stdout, result, cfg.Report.TopN, verbose)
	return nil
}

func categorizeResult(result *analyze.Result, data []byte, resident container.Range, cfg *config.Config) {
	window := data[resident.Start:resident.End]
	runs := strscan.Extract(window)
	for i := range runs {
		runs[i].Offset += resident.Start
	}

	names := make([]string, 0, len(cfg.Strings.Categories))
	for name := range cfg.Strings.Categories {
		names = append(names, name)
	}
	sort.Strings(names)

	var cats []strscan.Category
	for _, name := range names {
		cats = append(cats, strscan.Category{Name: name, Keywords: cfg.Strings.Categories[name]})
	}

	var fns []strscan.Categorizable
	for _, f := range result.AllFunctions() {
		fns = append(fns, f)
	}
	strscan.Apply(runs, cats, fns)
}
