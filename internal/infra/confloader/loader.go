package confloader

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix is the prefix of the environment variables Load reads.
const DefaultEnvPrefix = "WSSVIZ_"

// Loader merges configuration layers into one koanf tree. Later layers win:
// defaults, the YAML file, environment variables, then overrides.
type Loader struct {
	k         *koanf.Koanf
	envPrefix string
	filePath  string
	defaults  map[string]any
	overrides map[string]any
}

// Option configures a Loader.
type Option func(*Loader)

// WithEnvPrefix replaces DefaultEnvPrefix.
func WithEnvPrefix(prefix string) Option {
	return func(l *Loader) { l.envPrefix = prefix }
}

// WithConfigFile names a YAML file to read. Empty means no file.
func WithConfigFile(path string) Option {
	return func(l *Loader) { l.filePath = path }
}

// WithDefaults sets the lowest layer, keyed by dotted path. The keys also
// teach the environment layer that WSSVIZ_RENDER_OUTPUT_DIR means
// render.output_dir rather than render.output.dir.
func WithDefaults(defaults map[string]any) Option {
	return func(l *Loader) { l.defaults = defaults }
}

// WithOverrides sets the top layer, keyed by dotted path. Command line flags
// go here.
func WithOverrides(overrides map[string]any) Option {
	return func(l *Loader) { l.overrides = overrides }
}

// NewLoader returns a loader with the given options applied.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{k: koanf.New("."), envPrefix: DefaultEnvPrefix}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads every layer and unmarshals the result into target using
// koanf struct tags.
func (l *Loader) Load(target any) error {
	if err := l.loadMap(l.defaults); err != nil {
		return fmt.Errorf("load defaults: %w", err)
	}
	if l.filePath != "" {
		if err := l.k.Load(file.Provider(l.filePath), yaml.Parser()); err != nil {
			return fmt.Errorf("load config file %s: %w", l.filePath, err)
		}
	}
	if err := l.k.Load(env.Provider(l.envPrefix, ".", l.envKey()), nil); err != nil {
		return fmt.Errorf("load env: %w", err)
	}
	if err := l.loadMap(l.overrides); err != nil {
		return fmt.Errorf("load overrides: %w", err)
	}

	if err := l.k.Unmarshal("", target); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	return nil
}

func (l *Loader) loadMap(m map[string]any) error {
	if len(m) == 0 {
		return nil
	}
	return l.k.Load(mapProvider(m), nil)
}

// envKey maps a variable name to a config key. Names of keys already
// loaded match exactly; anything else splits on every underscore, so
// WSSVIZ_LOG_LEVEL becomes log.level.
func (l *Loader) envKey() func(string) string {
	known := make(map[string]string)
	for _, key := range l.k.Keys() {
		known[envName(key)] = key
	}
	return func(name string) string {
		name = strings.TrimPrefix(name, l.envPrefix)
		if key, ok := known[strings.ToUpper(name)]; ok {
			return key
		}
		return strings.ReplaceAll(strings.ToLower(name), "_", ".")
	}
}

var envReplacer = strings.NewReplacer(".", "_", "-", "_")

func envName(key string) string {
	return strings.ToUpper(envReplacer.Replace(key))
}
