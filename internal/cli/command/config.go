package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/wssviz/internal/cli/config"
	"github.com/yndnr/wssviz/internal/cli/output"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management",
		Subcommands: []*cli.Command{
			{
				Name:         "show",
				Usage:        "Show the merged configuration (defaults, file, environment, flags)",
				OnUsageError: onUsageError,
				Action:       configShow,
			},
			{
				Name:         "validate",
				Usage:        "Validate the merged configuration",
				OnUsageError: onUsageError,
				Action:       configValidate,
			},
			{
				Name:      "init",
				Usage:     "Write a configuration file holding the defaults",
				ArgsUsage: "[FILE]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Usage: "Overwrite an existing file"},
				},
				OnUsageError: onUsageError,
				Action:       configInit,
			},
			{
				Name:         "path",
				Usage:        "Print the default configuration file path",
				OnUsageError: onUsageError,
				Action:       configPath,
			},
		},
	}
}

func configShow(c *cli.Context) error {
	e, err := setup(c, nil)
	if err != nil {
		return err
	}
	// a table of nested sections is unreadable; show YAML instead
	if _, ok := e.out.(*output.TableFormatter); ok {
		return output.NewFormatter(output.FormatYAML, false).Format(e.stdout, e.cfg)
	}
	return e.out.Format(e.stdout, e.cfg)
}

func configValidate(c *cli.Context) error {
	e, err := setup(c, nil)
	if err != nil {
		return err
	}
	source := c.String("config")
	if source == "" {
		source = "defaults"
		if _, err := os.Stat(config.DefaultConfigPath()); err == nil {
			source = config.DefaultConfigPath()
		}
	}
	fmt.Fprintf(e.stdout, "Configuration valid (%s).\n", source)
	return nil
}

func configInit(c *cli.Context) error {
	if c.NArg() > 1 {
		return usageError(c, "expected at most one FILE, got %d arguments", c.NArg())
	}
	path := c.Args().First()
	if path == "" {
		path = config.DefaultConfigPath()
	}

	if _, err := os.Stat(path); err == nil && !c.Bool("force") {
		return fmt.Errorf("config init: %s already exists (use --force to overwrite)", path)
	}
	if err := config.Save(config.Default(), path); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Wrote %s\n", path)
	return nil
}

func configPath(c *cli.Context) error {
	fmt.Fprintln(c.App.Writer, config.DefaultConfigPath())
	return nil
}
