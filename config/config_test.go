package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wordsdisplay.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	path := writeConfig(t, `
[style]
width = "90mm"
padding = "4mm 6mm"
line-gap = 1.5
highlight-color = "#FF8800"

[display]
dpi = 320.0
font_scale = 1.3

[log]
level = "debug"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Display.DPI != 320 || cfg.Display.FontScale != 1.3 {
		t.Fatalf("unexpected display: %+v", cfg.Display)
	}
	if cfg.Log.LevelOrDefault() != zerolog.DebugLevel {
		t.Fatalf("unexpected level: %v", cfg.Log.LevelOrDefault())
	}
	props, err := cfg.StyleProps()
	if err != nil {
		t.Fatalf("StyleProps: %v", err)
	}
	if props["width"] != "90mm" || props["line-gap"] != "1.5" || props["padding"] != "4mm 6mm" {
		t.Fatalf("unexpected props: %v", props)
	}
}

func TestLoadWithoutPathUsesDefaults(t *testing.T) {
	t.Setenv(EnvLogLevel, "warn")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Display.DPI != 160 || cfg.Display.FontScale != 1 {
		t.Fatalf("unexpected defaults: %+v", cfg.Display)
	}
	if cfg.Log.LevelOrDefault() != zerolog.WarnLevel {
		t.Fatalf("env override not applied: %q", cfg.Log.Level)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("missing file must fail")
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "[render]\nformat = \"pdf\"\n")
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "render") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	path := writeConfig(t, `
[style]
width = "wide"
color = "nope"

[display]
dpi = -1.0

[log]
level = "chatty"
`)
	_, err := Load(path)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"log.level", "display.dpi", "width", "nope"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error should mention %q: %v", want, err)
		}
	}
}

func TestStylePropsRejectsTables(t *testing.T) {
	cfg := Default()
	cfg.Style["padding"] = map[string]any{"left": "1mm"}
	if _, err := cfg.StyleProps(); err == nil {
		t.Fatalf("nested tables are not style values")
	}
	if cfg.Validate() == nil {
		t.Fatalf("Validate must report unsupported style values")
	}
}

func TestLevelOrDefault(t *testing.T) {
	if (LogConfig{}).LevelOrDefault() != zerolog.InfoLevel {
		t.Fatalf("empty level should default to info")
	}
	if (LogConfig{Level: "ERROR"}).LevelOrDefault() != zerolog.ErrorLevel {
		t.Fatalf("level parsing should be case-insensitive")
	}
}
