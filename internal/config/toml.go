package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice"`
	Theme    ThemeConfig    `toml:"theme"`
	Log      LogConfig      `toml:"log"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	Trigger        *int     `toml:"trigger"`
	FilterComments *bool    `toml:"filter-comments"`
	LineWidth      *int     `toml:"line-width"`
	WordList       *string  `toml:"wordlist"`
	Words          *int     `toml:"words"`
	CapsPct        *float64 `toml:"caps"`
	PunctPct       *float64 `toml:"punct"`
	PunctSet       *string  `toml:"punct-set"`
	FocusWeak      *bool    `toml:"focus-weak"`
	WeakTop        *int     `toml:"weak-top"`
	WeakFactor     *float64 `toml:"weak-factor"`
	WeakWindow     *int     `toml:"weak-window"`
}

// ThemeConfig maps highlight colors. Values are lipgloss colors: hex strings
// or ANSI numbers.
type ThemeConfig struct {
	GoodColor *string `toml:"good-color"`
	BadColor  *string `toml:"bad-color"`
}

// LogConfig maps diagnostic log settings.
type LogConfig struct {
	Level *string `toml:"level"`
	File  *string `toml:"file"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
