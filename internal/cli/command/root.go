package command

import (
	"errors"
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/wssviz/internal/cli/config"
	"github.com/yndnr/wssviz/internal/cli/output"
	"github.com/yndnr/wssviz/internal/infra/buildinfo"
	"github.com/yndnr/wssviz/internal/telemetry/logger"
)

// Exit codes.
const (
	ExitError = 1
	ExitUsage = 2
)

// App creates the CLI application.
func App() *cli.App {
	app := &cli.App{
		Name:    "wssviz",
		Usage:   "Render working-set-size snapshots as frames, a GIF and a summary chart",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			RenderCommand(),
			InspectCommand(),
			WatchCommand(),
			RawMemCommand(),
			HistoryCommand(),
			ConfigCommand(),
			VersionCommand(),
		},
		OnUsageError: onUsageError,
		// main reports errors and picks the exit code
		ExitErrHandler: func(*cli.Context, error) {},
	}

	return app
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Configuration file (default: " + config.DefaultConfigPath() + " if present)",
			EnvVars: []string{"WSSVIZ_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error",
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "Log format: json, text (default: text on a terminal)",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Enable debug logging",
		},
	}
}

// globalKeys maps global flags to configuration keys.
var globalKeys = map[string]string{
	"output":     "output",
	"log-level":  "log.level",
	"log-format": "log.format",
}

// GlobalFlags are the global flags read outside the configuration layers.
// --output, --log-level and --log-format go through globalKeys instead.
type GlobalFlags struct {
	Config  string
	Wide    bool
	Verbose bool
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		Config:  c.String("config"),
		Wide:    c.Bool("wide"),
		Verbose: c.Bool("verbose"),
	}
}

// env is what every command action works with.
type env struct {
	cfg    *config.Config
	log    logger.Logger
	out    output.Formatter
	stdout io.Writer
	stderr io.Writer
}

// setup loads and validates the configuration and installs the logger.
// keys maps the command's own flags to configuration keys; only flags set
// on the command line override the file and environment.
func setup(c *cli.Context, keys map[string]string) (*env, error) {
	g := ParseGlobalFlags(c)
	overrides := make(map[string]any)
	for _, m := range []map[string]string{globalKeys, keys} {
		for flag, key := range m {
			if c.IsSet(flag) {
				overrides[key] = c.Value(flag)
			}
		}
	}
	if g.Verbose {
		overrides["log.level"] = "debug"
	}

	cfg, err := config.Load(g.Config, overrides)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	e := &env{
		cfg:    cfg,
		stdout: c.App.Writer,
		stderr: c.App.ErrWriter,
	}

	e.log, err = logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: e.stderr,
	})
	if err != nil {
		return nil, err
	}
	logger.SetDefault(e.log)

	format, _ := output.ParseFormat(cfg.Output)
	e.out = output.NewFormatter(format, g.Wide)
	return e, nil
}

// usageError reports wrong arguments; main exits with ExitUsage.
func usageError(c *cli.Context, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if c != nil && c.Command != nil && c.Command.FullName() != "" {
		msg = c.Command.FullName() + ": " + msg
	}
	return cli.Exit(msg, ExitUsage)
}

func onUsageError(c *cli.Context, err error, _ bool) error {
	return cli.Exit(err.Error(), ExitUsage)
}

// ExitCode returns the process exit code for err.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ec cli.ExitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return ExitError
}
