package command

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/wssviz/internal/cli/output"
	"github.com/yndnr/wssviz/internal/core/domain"
	"github.com/yndnr/wssviz/internal/storage/history"
)

// HistoryCommand returns the history subcommand group.
func HistoryCommand() *cli.Command {
	dirFlag := &cli.StringFlag{Name: "dir", Usage: "History store directory"}
	return &cli.Command{
		Name:  "history",
		Usage: "List, show and delete recorded render runs",
		Subcommands: []*cli.Command{
			{
				Name:         "list",
				Aliases:      []string{"ls"},
				Usage:        "List recorded runs, newest first",
				Flags:        []cli.Flag{dirFlag},
				OnUsageError: onUsageError,
				Action:       historyList,
			},
			{
				Name:         "show",
				Aliases:      []string{"get"},
				Usage:        "Show a run and its per-frame statistics",
				ArgsUsage:    "RUN_ID",
				Flags:        []cli.Flag{dirFlag},
				OnUsageError: onUsageError,
				Action:       historyShow,
			},
			{
				Name:         "delete",
				Aliases:      []string{"rm"},
				Usage:        "Delete a run",
				ArgsUsage:    "RUN_ID",
				Flags:        []cli.Flag{dirFlag},
				OnUsageError: onUsageError,
				Action:       historyDelete,
			},
		},
	}
}

var historyKeys = map[string]string{
	"dir": "history.dir",
}

// openHistory loads the configuration and opens the history store.
func openHistory(c *cli.Context) (*env, *history.Store, func() error, error) {
	e, err := setup(c, historyKeys)
	if err != nil {
		return nil, nil, nil, err
	}
	if e.cfg.History.Dir == "" {
		return nil, nil, nil, fmt.Errorf("history: no history.dir configured")
	}
	s, closeFn, err := history.Open(e.cfg.History.Dir, e.log)
	if err != nil {
		return nil, nil, nil, err
	}
	return e, s, closeFn, nil
}

// runIDArg returns the single required run ID argument.
func runIDArg(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", usageError(c, "expected exactly one RUN_ID, got %d arguments", c.NArg())
	}
	id := c.Args().First()
	if !domain.IsValidRunID(id) {
		return "", usageError(c, "invalid run ID %q", id)
	}
	return id, nil
}

// runRow is one line of the history list table.
type runRow struct {
	ID       string
	PID      string
	Address  string
	Encoding string
	Frames   int
	Skipped  int
	Started  time.Time
	Took     time.Duration
	Output   string `table:"wide"`
}

func historyList(c *cli.Context) error {
	if c.NArg() > 0 {
		return usageError(c, "unexpected arguments")
	}
	e, s, closeFn, err := openHistory(c)
	if err != nil {
		return err
	}
	defer closeFn()

	runs, err := s.List(c.Context)
	if err != nil {
		return err
	}

	if _, ok := e.out.(*output.TableFormatter); !ok {
		if runs == nil {
			runs = []domain.Run{}
		}
		return e.out.Format(e.stdout, runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(e.stdout, "No runs recorded.")
		return nil
	}

	rows := make([]runRow, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, runRow{
			ID:       r.ID,
			PID:      r.PID,
			Address:  r.Address,
			Encoding: r.Encoding.String(),
			Frames:   r.Frames,
			Skipped:  r.Skipped,
			Started:  r.StartedAt.Local(),
			Took:     r.Duration(),
			Output:   r.OutputDir,
		})
	}
	return e.out.Format(e.stdout, rows)
}

// runDetail is the structured output of history show.
type runDetail struct {
	Run    *domain.Run          `json:"run" yaml:"run"`
	Frames []domain.FrameRecord `json:"frames" yaml:"frames"`
}

func historyShow(c *cli.Context) error {
	id, err := runIDArg(c)
	if err != nil {
		return err
	}
	e, s, closeFn, err := openHistory(c)
	if err != nil {
		return err
	}
	defer closeFn()

	run, frames, err := s.Get(c.Context, id)
	if err != nil {
		return err
	}

	if _, ok := e.out.(*output.TableFormatter); !ok {
		return e.out.Format(e.stdout, runDetail{Run: run, Frames: frames})
	}

	fmt.Fprintf(e.stdout, "Run %s\n", run.ID)
	fmt.Fprintf(e.stdout, "  PID:        %s\n", run.PID)
	fmt.Fprintf(e.stdout, "  Address:    %s\n", run.Address)
	fmt.Fprintf(e.stdout, "  Encoding:   %s\n", run.Encoding)
	fmt.Fprintf(e.stdout, "  Image size: %dx%d\n", run.ImageSize, run.ImageSize)
	fmt.Fprintf(e.stdout, "  Frames:     %d (%d skipped)\n", run.Frames, run.Skipped)
	fmt.Fprintf(e.stdout, "  Output:     %s\n", run.OutputDir)
	fmt.Fprintf(e.stdout, "  Started:    %s\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(e.stdout, "  Took:       %s\n\n", run.Duration().Round(time.Millisecond))

	t := &output.Table{}
	t.SetHeaders("FRAME", "SNAPSHOT", "TIMESTAMP", "SLOTS", "ACTIVE", "MAPPED", "ZERO", "SWAPPED")
	for _, f := range frames {
		t.AddRow(
			fmt.Sprintf("%03d", f.Index),
			f.Snapshot,
			f.Timestamp.UTC().Format("2006-01-02 15:04:05"),
			fmt.Sprint(f.Stats.Total),
			percent(f.Stats.ActiveFraction()),
			percent(f.Stats.MappedFraction()),
			percent(f.Stats.ZeroFraction()),
			fmt.Sprint(f.Stats.Swapped),
		)
	}
	return e.out.Format(e.stdout, t)
}

func historyDelete(c *cli.Context) error {
	id, err := runIDArg(c)
	if err != nil {
		return err
	}
	e, s, closeFn, err := openHistory(c)
	if err != nil {
		return err
	}
	defer closeFn()

	if err := s.Delete(c.Context, id); err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "Run %s deleted.\n", id)
	return nil
}
