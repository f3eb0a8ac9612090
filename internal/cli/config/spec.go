package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/yndnr/wssviz/internal/analyze"
	"github.com/yndnr/wssviz/internal/cli/output"
	"github.com/yndnr/wssviz/internal/core/domain"
	"github.com/yndnr/wssviz/internal/core/service"
	"github.com/yndnr/wssviz/internal/render"
	"github.com/yndnr/wssviz/internal/storage/snapshot"
	"github.com/yndnr/wssviz/internal/telemetry/logger"
)

// Config is the complete wssviz configuration.
type Config struct {
	PID     string `koanf:"pid" json:"pid" yaml:"pid"`
	Address string `koanf:"address" json:"address" yaml:"address"`

	Input   InputConfig   `koanf:"input" json:"input" yaml:"input"`
	Decode  DecodeConfig  `koanf:"decode" json:"decode" yaml:"decode"`
	Render  RenderConfig  `koanf:"render" json:"render" yaml:"render"`
	Chart   ChartConfig   `koanf:"chart" json:"chart" yaml:"chart"`
	Metrics MetricsConfig `koanf:"metrics" json:"metrics" yaml:"metrics"`
	History HistoryConfig `koanf:"history" json:"history" yaml:"history"`
	Watch   WatchConfig   `koanf:"watch" json:"watch" yaml:"watch"`
	Log     LogConfig     `koanf:"log" json:"log" yaml:"log"`
	Output  string        `koanf:"output" json:"output" yaml:"output"` // table, json, yaml
}

// InputConfig locates sampler output.
type InputConfig struct {
	Root    string `koanf:"root" json:"root" yaml:"root"`             // <root>/<pid>/<timestamp>/<0xaddr>
	RawRoot string `koanf:"raw_root" json:"raw_root" yaml:"raw_root"` // <raw_root>/<pid>/* page dumps
}

// DecodeConfig selects the snapshot byte layout.
type DecodeConfig struct {
	Encoding string `koanf:"encoding" json:"encoding" yaml:"encoding"`
	Swapped  bool   `koanf:"swapped" json:"swapped" yaml:"swapped"`
}

// RenderConfig controls frame output.
type RenderConfig struct {
	Annotate      bool   `koanf:"annotate" json:"annotate" yaml:"annotate"`
	Caption       string `koanf:"caption" json:"caption" yaml:"caption"`
	Format        string `koanf:"format" json:"format" yaml:"format"`
	Overflow      string `koanf:"overflow" json:"overflow" yaml:"overflow"`
	OnDecodeError string `koanf:"on_decode_error" json:"on_decode_error" yaml:"on_decode_error"`
	OutputDir     string `koanf:"output_dir" json:"output_dir" yaml:"output_dir"`
}

// ChartConfig selects summary outputs.
type ChartConfig struct {
	Enabled bool `koanf:"enabled" json:"enabled" yaml:"enabled"`
	SVG     bool `koanf:"svg" json:"svg" yaml:"svg"`
	CSV     bool `koanf:"csv" json:"csv" yaml:"csv"`
}

// MetricsConfig controls the Prometheus textfile.
type MetricsConfig struct {
	Textfile string `koanf:"textfile" json:"textfile" yaml:"textfile"`
}

// HistoryConfig controls the run history store.
type HistoryConfig struct {
	Enabled bool   `koanf:"enabled" json:"enabled" yaml:"enabled"`
	Dir     string `koanf:"dir" json:"dir" yaml:"dir"`
}

// WatchConfig controls the watch command.
type WatchConfig struct {
	MinInterval time.Duration `koanf:"min_interval" json:"min_interval" yaml:"min_interval"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level  string `koanf:"level" json:"level" yaml:"level"`
	Format string `koanf:"format" json:"format" yaml:"format"` // json, text; empty picks by terminal
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Input: InputConfig{
			Root:    snapshot.DefaultRoot,
			RawRoot: analyze.DefaultRoot,
		},
		Decode: DecodeConfig{
			Encoding: domain.EncodingActivity.String(),
		},
		Render: RenderConfig{
			Annotate:      true,
			Format:        string(render.FormatPNG),
			Overflow:      string(service.OverflowFail),
			OnDecodeError: string(service.ErrorAbort),
			OutputDir:     "img",
		},
		Chart: ChartConfig{
			Enabled: true,
			CSV:     true,
		},
		History: HistoryConfig{
			Dir: filepath.Join(dataHome(), "history"),
		},
		Watch: WatchConfig{
			MinInterval: 2 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
		Output: output.FormatTable,
	}
}

// Map returns c as a flat map keyed by dotted koanf paths.
func (c *Config) Map() map[string]any {
	return map[string]any{
		"pid":                    c.PID,
		"address":                c.Address,
		"input.root":             c.Input.Root,
		"input.raw_root":         c.Input.RawRoot,
		"decode.encoding":        c.Decode.Encoding,
		"decode.swapped":         c.Decode.Swapped,
		"render.annotate":        c.Render.Annotate,
		"render.caption":         c.Render.Caption,
		"render.format":          c.Render.Format,
		"render.overflow":        c.Render.Overflow,
		"render.on_decode_error": c.Render.OnDecodeError,
		"render.output_dir":      c.Render.OutputDir,
		"chart.enabled":          c.Chart.Enabled,
		"chart.svg":              c.Chart.SVG,
		"chart.csv":              c.Chart.CSV,
		"metrics.textfile":       c.Metrics.Textfile,
		"history.enabled":        c.History.Enabled,
		"history.dir":            c.History.Dir,
		"watch.min_interval":     c.Watch.MinInterval.String(),
		"log.level":              c.Log.Level,
		"log.format":             c.Log.Format,
		"output":                 c.Output,
	}
}

// Validate reports every invalid field.
func (c *Config) Validate() error {
	var errs []error

	if c.PID != "" {
		if err := snapshot.ValidatePID(c.PID); err != nil {
			errs = append(errs, fmt.Errorf("pid: %w", err))
		}
	}
	if c.Input.Root == "" {
		errs = append(errs, errors.New("input.root: must not be empty"))
	}
	if _, err := domain.ParseEncoding(c.Decode.Encoding); err != nil {
		errs = append(errs, fmt.Errorf("decode.encoding: %w", err))
	}
	if _, err := render.ParseStillFormat(c.Render.Format); err != nil {
		errs = append(errs, fmt.Errorf("render.format: %w", err))
	}
	if _, err := service.ParseOverflowPolicy(c.Render.Overflow); err != nil {
		errs = append(errs, fmt.Errorf("render.overflow: %w", err))
	}
	if _, err := service.ParseErrorPolicy(c.Render.OnDecodeError); err != nil {
		errs = append(errs, fmt.Errorf("render.on_decode_error: %w", err))
	}
	if c.Render.OutputDir == "" {
		errs = append(errs, errors.New("render.output_dir: must not be empty"))
	}
	if c.History.Enabled && c.History.Dir == "" {
		errs = append(errs, errors.New("history.dir: required when history.enabled is set"))
	}
	if c.Watch.MinInterval < 0 {
		errs = append(errs, fmt.Errorf("watch.min_interval: %s is negative", c.Watch.MinInterval))
	}
	if !logger.ValidLevel(c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "", "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q (want json or text)", c.Log.Format))
	}
	if !output.ValidFormat(c.Output) {
		errs = append(errs, fmt.Errorf("output: unknown format %q (want table, json or yaml)", c.Output))
	}

	return errors.Join(errs...)
}

// DecoderOptions converts the decode and overflow settings.
func (c *Config) DecoderOptions() (service.DecoderOptions, error) {
	enc, err := domain.ParseEncoding(c.Decode.Encoding)
	if err != nil {
		return service.DecoderOptions{}, err
	}
	overflow, err := service.ParseOverflowPolicy(c.Render.Overflow)
	if err != nil {
		return service.DecoderOptions{}, err
	}
	return service.DecoderOptions{
		Encoding: enc,
		Swapped:  c.Decode.Swapped,
		Overflow: overflow,
	}, nil
}

// RunConfig converts the configuration into a render run for pid.
func (c *Config) RunConfig(pid string) (service.RunConfig, error) {
	dec, err := c.DecoderOptions()
	if err != nil {
		return service.RunConfig{}, err
	}
	policy, err := service.ParseErrorPolicy(c.Render.OnDecodeError)
	if err != nil {
		return service.RunConfig{}, err
	}
	format, err := render.ParseStillFormat(c.Render.Format)
	if err != nil {
		return service.RunConfig{}, err
	}

	return service.RunConfig{
		PID:           pid,
		Address:       c.Address,
		Decoder:       dec,
		OnDecodeError: policy,
		Annotate:      c.Render.Annotate,
		Caption:       c.Render.Caption,
		Format:        format,
		OutputDir:     c.Render.OutputDir,
		Chart: service.ChartOptions{
			Enabled: c.Chart.Enabled,
			SVG:     c.Chart.SVG,
			CSV:     c.Chart.CSV,
		},
		MetricsTextfile: c.Metrics.Textfile,
	}, nil
}
