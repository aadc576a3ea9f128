// Package config loads the optional TOML tuning file for the overlay
// scan bounds, the overlay-manager vector, and the string
// categorization keyword table.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds the tunable constants read alongside the binary.
// Strings.MinRunLength and Report.Color are parsed but not consulted by
// any pipeline stage.
type Config struct {
	Overlay struct {
		Vector              uint8 `toml:"vector"`
		MinPages            int   `toml:"min_pages"`
		MaxPages            int   `toml:"max_pages"`
		MinHeaderParagraphs int   `toml:"min_header_paragraphs"`
		MaxHeaderParagraphs int   `toml:"max_header_paragraphs"`
	} `toml:"overlay"`

	Strings struct {
		MinRunLength int                 `toml:"min_run_length"`
		Categories   map[string][]string `toml:"categories"`
	} `toml:"strings"`

	Report struct {
		TopN  int  `toml:"top_n"`
		Color bool `toml:"color"`
	} `toml:"report"`
}

// DefaultConfig returns the tunables the pipeline uses when no config
// file is supplied, matching the bounds and vector spec.md §4.1/§6
// document as the original tool's observed values.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Overlay.Vector = 0x3F
	cfg.Overlay.MinPages = 0
	cfg.Overlay.MaxPages = 500
	cfg.Overlay.MinHeaderParagraphs = 0
	cfg.Overlay.MaxHeaderParagraphs = 100

	cfg.Strings.MinRunLength = 4
	cfg.Strings.Categories = map[string][]string{
		"graphics":        {"VGA", "PALETTE", "SPRITE", "BITMAP", ".PCX", ".LBM"},
		"sound":           {"SOUND", "MUSIC", "WAVE", "ADLIB", "MIDI", ".VOC"},
		"input":           {"KEYBOARD", "MOUSE", "JOYSTICK", "KEY "},
		"game":            {"PLAYER", "TURN", "UNIT", "BATTLE", "SCORE"},
		"map":             {"TERRAIN", "TILE", "MAP ", "CONTINENT"},
		"diplomacy":       {"TREATY", "ALLIANCE", "WAR ", "PEACE"},
		"save":            {"SAVE", "LOAD", ".SAV", "GAME FILE"},
		"user interface":  {"MENU", "DIALOG", "BUTTON", "WINDOW"},
		"init":            {"INIT", "STARTUP", "CONFIG"},
	}

	cfg.Report.TopN = 10
	cfg.Report.Color = true

	return cfg
}

// Load reads path and overlays it onto the default config. A missing
// file yields the defaults unchanged; a present-but-unparseable file
// is a startup error — unlike the image body, a bad scan-bound
// constant would silently corrupt every later pipeline stage, so
// config load is never absorbed the way decode/analyze errors are.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	return cfg, nil
}
