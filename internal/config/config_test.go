package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("missing file should not fail: %v", err)
	}
	if cfg.Practice.Trigger != nil || cfg.Theme.GoodColor != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[practice]
trigger = 20
filter-comments = true
line-width = 72

[theme]
bad-color = "#FF0000"

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Practice.Trigger == nil || *cfg.Practice.Trigger != 20 {
		t.Fatalf("unexpected trigger: %v", cfg.Practice.Trigger)
	}
	if cfg.Practice.FilterComments == nil || !*cfg.Practice.FilterComments {
		t.Fatalf("expected filter-comments")
	}
	if cfg.Practice.LineWidth == nil || *cfg.Practice.LineWidth != 72 {
		t.Fatalf("unexpected line width")
	}
	if cfg.Theme.BadColor == nil || *cfg.Theme.BadColor != "#FF0000" || cfg.Theme.GoodColor != nil {
		t.Fatalf("unexpected theme: %+v", cfg.Theme)
	}
	if cfg.Log.Level == nil || *cfg.Log.Level != "debug" {
		t.Fatalf("unexpected log level")
	}
}

func TestLoadConfigRejectsUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[practice]\nlang = \"en\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "practice.lang") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestDefaultPathsFollowXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	if got := DefaultConfigPath(); got != filepath.Join("/cfg", "retype", "config.toml") {
		t.Fatalf("unexpected config path %q", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/data", "retype", "history.db") {
		t.Fatalf("unexpected db path %q", got)
	}
	if got := DefaultLogPath(); got != filepath.Join("/data", "retype", "retype.log") {
		t.Fatalf("unexpected log path %q", got)
	}
}

func TestDefaultPathsFallBackToHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("HOME", "/home/typist")
	if got := XDGConfigHome(); got != filepath.Join("/home/typist", ".config") {
		t.Fatalf("unexpected config home %q", got)
	}
	if got := XDGDataHome(); got != filepath.Join("/home/typist", ".local", "share") {
		t.Fatalf("unexpected data home %q", got)
	}
}
