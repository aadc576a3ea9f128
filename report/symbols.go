package report

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/civrecomp/dos16recomp/analyze"
)

// SymbolEntry is one machine-readable function-table row.
type SymbolEntry struct {
	Name  string `toml:"name"`
	Start int    `toml:"start"`
	End   int    `toml:"end"`
	Size  int    `toml:"size"`
	Far   bool   `toml:"far"`
}

// SymbolTable groups entries by region, mirroring the function list's
// own resident/overlay split.
type SymbolTable struct {
	Resident []SymbolEntry            `toml:"resident"`
	Overlays map[string][]SymbolEntry `toml:"overlays"`
}

// BuildSymbolTable flattens an analysis result into the TOML-shaped
// table WriteSymbols encodes.
func BuildSymbolTable(result *analyze.Result) SymbolTable {
	table := SymbolTable{Overlays: map[string][]SymbolEntry{}}
	for _, f := range result.Resident {
		table.Resident = append(table.Resident, entryOf(f))
	}
	for _, ov := range result.Overlays {
		key := fmt.Sprintf("%02d", ov.Index)
		for _, f := range ov.Functions {
			table.Overlays[key] = append(table.Overlays[key], entryOf(f))
		}
	}
	return table
}

func entryOf(f *analyze.Function) SymbolEntry {
	return SymbolEntry{Name: f.Name, Start: f.Start, End: f.End, Size: f.Size(), Far: f.Far}
}

// WriteSymbols writes the machine-readable function table to path as
// TOML, via the same encoder config.Config uses.
func WriteSymbols(path string, result *analyze.Result) error {
	f, err := os.Create(path) // #nosec G304 -- user-specified output path
	if err != nil {
		return fmt.Errorf("report: failed to create symbols file: %w", err)
	}
	defer f.Close()

	table := BuildSymbolTable(result)
	if err := toml.NewEncoder(f).Encode(table); err != nil {
		return fmt.Errorf("report: failed to encode symbols: %w", err)
	}
	return nil
}
