package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/wssviz/internal/core/domain"
	"github.com/yndnr/wssviz/internal/core/service"
	"github.com/yndnr/wssviz/internal/render"
)

// isolate keeps a developer's own config file out of the tests.
func isolate(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Input.Root != "/tmp/wss" {
		t.Errorf("Input.Root = %q, want /tmp/wss", cfg.Input.Root)
	}
	if cfg.Input.RawRoot != "/tmp/raw-mem" {
		t.Errorf("Input.RawRoot = %q, want /tmp/raw-mem", cfg.Input.RawRoot)
	}
	if cfg.Render.OutputDir != "img" {
		t.Errorf("Render.OutputDir = %q, want img", cfg.Render.OutputDir)
	}
	if cfg.Decode.Encoding != "activity" {
		t.Errorf("Decode.Encoding = %q, want activity", cfg.Decode.Encoding)
	}
	if !cfg.Render.Annotate || !cfg.Chart.Enabled {
		t.Error("annotation and chart should be on by default")
	}
	if cfg.History.Enabled {
		t.Error("history should be off by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestDefaultConfigPath(t *testing.T) {
	isolate(t)

	path := DefaultConfigPath()
	if !strings.HasSuffix(path, filepath.Join("wssviz", "config.yaml")) {
		t.Errorf("DefaultConfigPath() = %q", path)
	}
}

func TestConfig_MapRoundTrip(t *testing.T) {
	isolate(t)

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if want := Default(); !reflect.DeepEqual(cfg, want) {
		t.Errorf("Load() with no sources =\n%+v\nwant\n%+v", cfg, want)
	}
}

func TestLoad_File(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "wssviz.yaml")
	content := `
pid: 4242
decode:
  encoding: activity-zero
  swapped: true
render:
  caption: "SPECjbb 2 core, 16 GiB"
  output_dir: frames
watch:
  min_interval: 500ms
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.PID != "4242" {
		t.Errorf("PID = %q, want 4242", cfg.PID)
	}
	if cfg.Decode.Encoding != "activity-zero" || !cfg.Decode.Swapped {
		t.Errorf("Decode = %+v", cfg.Decode)
	}
	if cfg.Render.Caption != "SPECjbb 2 core, 16 GiB" {
		t.Errorf("Caption = %q", cfg.Render.Caption)
	}
	if cfg.Render.OutputDir != "frames" {
		t.Errorf("OutputDir = %q", cfg.Render.OutputDir)
	}
	if cfg.Watch.MinInterval != 500*time.Millisecond {
		t.Errorf("MinInterval = %v", cfg.Watch.MinInterval)
	}
	// untouched keys keep their defaults
	if cfg.Input.Root != "/tmp/wss" || !cfg.Render.Annotate {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load() error = %v, want ErrNotExist", err)
	}
}

func TestLoad_Priority(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "wssviz.yaml")
	if err := os.WriteFile(path, []byte("render:\n  output_dir: from-file\n  format: jpg\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WSSVIZ_RENDER_OUTPUT_DIR", "from-env")
	t.Setenv("WSSVIZ_DECODE_ENCODING", "presence")

	cfg, err := Load(path, map[string]any{"decode.encoding": "activity-zero"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Render.OutputDir != "from-env" {
		t.Errorf("OutputDir = %q, env should override file", cfg.Render.OutputDir)
	}
	if cfg.Render.Format != "jpg" {
		t.Errorf("Format = %q, file should override defaults", cfg.Render.Format)
	}
	if cfg.Decode.Encoding != "activity-zero" {
		t.Errorf("Encoding = %q, flags should override env", cfg.Decode.Encoding)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := Default()
	cfg.PID = "77"
	cfg.Chart.SVG = true
	cfg.Watch.MinInterval = 3 * time.Second

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(got, cfg) {
		t.Errorf("Load(Save(cfg)) =\n%+v\nwant\n%+v", got, cfg)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"bad pid", func(c *Config) { c.PID = "abc" }, "pid"},
		{"bad encoding", func(c *Config) { c.Decode.Encoding = "rle" }, "decode.encoding"},
		{"bad format", func(c *Config) { c.Render.Format = "bmp" }, "render.format"},
		{"bad overflow", func(c *Config) { c.Render.Overflow = "resize" }, "render.overflow"},
		{"bad decode policy", func(c *Config) { c.Render.OnDecodeError = "retry" }, "render.on_decode_error"},
		{"empty output dir", func(c *Config) { c.Render.OutputDir = "" }, "render.output_dir"},
		{"history without dir", func(c *Config) { c.History.Enabled = true; c.History.Dir = "" }, "history.dir"},
		{"negative interval", func(c *Config) { c.Watch.MinInterval = -time.Second }, "watch.min_interval"},
		{"bad log level", func(c *Config) { c.Log.Level = "trace" }, "log.level"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"bad output", func(c *Config) { c.Output = "csv" }, "output"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.field+":") {
				t.Errorf("Validate() = %v, want mention of %s", err, tt.field)
			}
		})
	}
}

func TestConfig_ValidateJoinsErrors(t *testing.T) {
	cfg := Default()
	cfg.Decode.Encoding = "rle"
	cfg.Log.Level = "loud"

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "decode.encoding") || !strings.Contains(err.Error(), "log.level") {
		t.Errorf("Validate() = %v, want both fields reported", err)
	}
}

func TestConfig_RunConfig(t *testing.T) {
	cfg := Default()
	cfg.Address = "0x7f00"
	cfg.Decode.Encoding = "activity-zero"
	cfg.Decode.Swapped = true
	cfg.Render.Format = "jpeg"
	cfg.Render.Overflow = "truncate"
	cfg.Render.OnDecodeError = "skip"
	cfg.Chart.SVG = true
	cfg.Metrics.Textfile = "/tmp/wssviz.prom"

	rc, err := cfg.RunConfig("42")
	if err != nil {
		t.Fatalf("RunConfig() error = %v", err)
	}

	want := service.RunConfig{
		PID:     "42",
		Address: "0x7f00",
		Decoder: service.DecoderOptions{
			Encoding: domain.EncodingActivityZero,
			Swapped:  true,
			Overflow: service.OverflowTruncate,
		},
		OnDecodeError:   service.ErrorSkip,
		Annotate:        true,
		Format:          render.FormatJPEG,
		OutputDir:       "img",
		Chart:           service.ChartOptions{Enabled: true, SVG: true, CSV: true},
		MetricsTextfile: "/tmp/wssviz.prom",
	}
	if !reflect.DeepEqual(rc, want) {
		t.Errorf("RunConfig() =\n%+v\nwant\n%+v", rc, want)
	}
}

func TestConfig_RunConfigInvalid(t *testing.T) {
	cfg := Default()
	cfg.Decode.Encoding = "rle"
	if _, err := cfg.RunConfig("42"); err == nil {
		t.Error("RunConfig() should reject an unknown encoding")
	}
}
