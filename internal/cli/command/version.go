package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/wssviz/internal/cli/output"
	"github.com/yndnr/wssviz/internal/infra/buildinfo"
)

// VersionCommand returns the version command.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:         "version",
		Usage:        "Show build information",
		OnUsageError: onUsageError,
		Action:       versionAction,
	}
}

// versionAction does not load the configuration, so it works with a broken one.
func versionAction(c *cli.Context) error {
	format, err := output.ParseFormat(c.String("output"))
	if err != nil {
		return usageError(c, "%v", err)
	}
	return output.NewFormatter(format, false).Format(c.App.Writer, buildinfo.Get())
}
