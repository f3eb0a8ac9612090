package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/wssviz/internal/cli/output"
	"github.com/yndnr/wssviz/internal/core/service"
	"github.com/yndnr/wssviz/internal/storage/snapshot"
)

// InspectCommand returns the inspect command.
func InspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Decode a process's snapshots and print per-snapshot statistics",
		ArgsUsage: "[PID]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "root", Aliases: []string{"r"}, Usage: "Snapshot root directory"},
			&cli.StringFlag{Name: "address", Aliases: []string{"a"}, Usage: "Address file to inspect"},
			&cli.StringFlag{Name: "encoding", Aliases: []string{"e"}, Usage: "Snapshot encoding: presence, activity, activity-zero"},
			&cli.BoolFlag{Name: "swapped", Usage: "Accept the swapped state in activity-zero snapshots"},
		},
		OnUsageError: onUsageError,
		Action:       inspectAction,
	}
}

func inspectAction(c *cli.Context) error {
	e, err := setup(c, renderKeys)
	if err != nil {
		return err
	}
	pid, err := pidArg(c, e.cfg.PID)
	if err != nil {
		return err
	}
	opts, err := e.cfg.DecoderOptions()
	if err != nil {
		return err
	}

	store := snapshot.NewStore(e.cfg.Input.Root, snapshot.WithLogger(e.log))
	res, err := service.NewPipeline(store).Inspect(c.Context, pid, e.cfg.Address, opts)
	if err != nil {
		return fmt.Errorf("inspect pid %s: %w", pid, err)
	}

	if _, ok := e.out.(*output.TableFormatter); !ok {
		return e.out.Format(e.stdout, res)
	}
	return writeInspectTable(e, res)
}

func writeInspectTable(e *env, res *service.InspectResult) error {
	fmt.Fprintf(e.stdout, "PID %s  address %s  encoding %s  image %dx%d  reference %s\n\n",
		res.PID, res.Address, res.Encoding, res.ImageSize, res.ImageSize, res.Reference)

	t := &output.Table{}
	t.SetHeaders("SNAPSHOT", "TIMESTAMP", "BYTES", "SLOTS", "ACTIVE", "MAPPED", "ZERO", "ERROR")
	for _, s := range res.Snapshots {
		errText := "-"
		if s.Error != "" {
			errText = s.Error
		}
		t.AddRow(
			s.Name,
			s.Timestamp.UTC().Format("2006-01-02 15:04:05"),
			fmt.Sprint(s.Size),
			fmt.Sprint(s.Slots),
			percent(s.Active),
			percent(s.Mapped),
			percent(s.Zero),
			errText,
		)
	}
	return e.out.Format(e.stdout, t)
}

func percent(f float64) string {
	return fmt.Sprintf("%.2f%%", f*100)
}
