// Package strscan extracts printable byte runs from a code+data
// window and assigns each a category tag from a fixed keyword table,
// for attaching a heuristic category to each analyzed function.
package strscan

import "strings"

// MinRunLength is the shortest printable run the extractor records.
const MinRunLength = 4

// Run is one printable byte run: its starting file offset and text.
type Run struct {
	Offset int
	Text   string
}

// isPrintable reports whether b falls in the printable ASCII range
// 0x20 through 0x7E inclusive.
func isPrintable(b byte) bool {
	return b >= 0x20 && b <= 0x7E
}

// Extract sweeps data once, collecting every maximal run of printable
// bytes of length at least MinRunLength, keyed by its starting offset,
// in ascending offset order.
func Extract(data []byte) []Run {
	var runs []Run
	i := 0
	for i < len(data) {
		if !isPrintable(data[i]) {
			i++
			continue
		}
		start := i
		for i < len(data) && isPrintable(data[i]) {
			i++
		}
		if i-start >= MinRunLength {
			runs = append(runs, Run{Offset: start, Text: string(data[start:i])})
		}
	}
	return runs
}

// Category is a default keyword-to-category table, overridable via
// config.
type Category struct {
	Name     string
	Keywords []string
}

// DefaultCategories mirrors the fixed categories the original tool
// recognized: graphics, sound, input, game, map, diplomacy, save,
// user interface, init.
func DefaultCategories() []Category {
	return []Category{
		{Name: "graphics", Keywords: []string{"VGA", "PALETTE", "SPRITE", "BITMAP", ".PCX", ".LBM"}},
		{Name: "sound", Keywords: []string{"SOUND", "MUSIC", "WAVE", "ADLIB", "MIDI", ".VOC"}},
		{Name: "input", Keywords: []string{"KEYBOARD", "MOUSE", "JOYSTICK", "KEY "}},
		{Name: "game", Keywords: []string{"PLAYER", "TURN", "UNIT", "BATTLE", "SCORE"}},
		{Name: "map", Keywords: []string{"TERRAIN", "TILE", "MAP ", "CONTINENT"}},
		{Name: "diplomacy", Keywords: []string{"TREATY", "ALLIANCE", "WAR ", "PEACE"}},
		{Name: "save", Keywords: []string{"SAVE", "LOAD", ".SAV", "GAME FILE"}},
		{Name: "user interface", Keywords: []string{"MENU", "DIALOG", "BUTTON", "WINDOW"}},
		{Name: "init", Keywords: []string{"INIT", "STARTUP", "CONFIG"}},
	}
}

// categorize returns the name of the first category in cats whose
// keyword appears (case-insensitively) in text, or "" if none match.
func categorize(text string, cats []Category) string {
	upper := strings.ToUpper(text)
	for _, cat := range cats {
		for _, kw := range cat.Keywords {
			if strings.Contains(upper, kw) {
				return cat.Name
			}
		}
	}
	return ""
}

// Categorizable is the minimal shape of a function the categorizer
// needs: its byte range and a settable category tag. *analyze.Function
// satisfies this directly through its Range and SetCategory methods.
type Categorizable interface {
	Range() (start, end int)
	SetCategory(string)
}

// Apply walks runs in ascending offset order and, for each function in
// fns, attaches the category of the first run whose offset falls
// within that function's half-open range that matches a category.
// Uncategorized functions keep the empty tag, whether because no run
// falls in range or because none of the runs in range match any
// category's keywords. Iterating runs in ascending offset order
// (rather than, say, a map) is required for reproducibility across
// runs.
func Apply(runs []Run, cats []Category, fns []Categorizable) {
	for _, fn := range fns {
		start, end := fn.Range()
		for _, r := range runs {
			if r.Offset < start {
				continue
			}
			if r.Offset >= end {
				break
			}
			if cat := categorize(r.Text, cats); cat != "" {
				fn.SetCategory(cat)
				break
			}
		}
	}
}
