package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/wssviz/internal/analyze"
	"github.com/yndnr/wssviz/internal/cli/output"
	"github.com/yndnr/wssviz/internal/storage/snapshot"
	"github.com/yndnr/wssviz/internal/telemetry/logger"
)

// RawMemCommand returns the raw-mem command.
func RawMemCommand() *cli.Command {
	return &cli.Command{
		Name:      "raw-mem",
		Usage:     "Count zero, repeating and shared pages in raw memory dumps",
		ArgsUsage: "PID [PID...]",
		Description: "Reads every file in <input.raw_root>/<PID> as 4 KiB pages and reports\n" +
			"how many pages are zero, made of one repeated word, or share content.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "raw-root", Usage: "Raw dump root directory"},
		},
		OnUsageError: onUsageError,
		Action:       rawMemAction,
	}
}

var rawMemKeys = map[string]string{
	"raw-root": "input.raw_root",
}

// rawMemResult is the structured output of raw-mem.
type rawMemResult struct {
	analyze.Report `yaml:",inline"`

	Duplicates int                     `json:"duplicate_pages" yaml:"duplicate_pages"`
	Buckets    []analyze.SharingBucket `json:"buckets" yaml:"buckets"`
}

func rawMemAction(c *cli.Context) error {
	e, err := setup(c, rawMemKeys)
	if err != nil {
		return err
	}
	if c.NArg() == 0 {
		return usageError(c, "at least one PID is required")
	}
	pids := c.Args().Slice()
	for _, pid := range pids {
		if err := snapshot.ValidatePID(pid); err != nil {
			return usageError(c, "%v", err)
		}
	}

	var sp *output.Spinner
	if logger.IsTerminal(e.stderr) {
		sp = output.NewSpinner(e.stderr, "Hashing pages")
		sp.Start()
	}

	a := analyze.NewAnalyzer(e.cfg.Input.RawRoot)
	for _, pid := range pids {
		if err := a.AddPID(c.Context, pid); err != nil {
			if sp != nil {
				sp.Fail("analysis failed")
			}
			return err
		}
		e.log.Debug("analyzed process", "pid", pid)
	}
	if sp != nil {
		sp.Stop()
	}

	rep := a.Report()
	res := rawMemResult{Report: *rep, Duplicates: rep.DuplicatePages(), Buckets: rep.Buckets()}

	if _, ok := e.out.(*output.TableFormatter); !ok {
		return e.out.Format(e.stdout, res)
	}
	return writeRawMemTable(e, res)
}

func writeRawMemTable(e *env, res rawMemResult) error {
	total := res.TotalPages
	share := func(n int) string {
		if total == 0 {
			return "-"
		}
		return percent(float64(n) / float64(total))
	}

	summary := &output.Table{}
	summary.SetHeaders("METRIC", "PAGES", "SHARE")
	summary.AddRow("total", fmt.Sprint(total), share(total))
	summary.AddRow("zero", fmt.Sprint(res.ZeroPages), share(res.ZeroPages))
	summary.AddRow("repeating", fmt.Sprint(res.RepeatingPages), share(res.RepeatingPages))
	summary.AddRow("unique contents", fmt.Sprint(res.UniquePages), share(res.UniquePages))
	summary.AddRow("duplicated", fmt.Sprint(res.Duplicates), share(res.Duplicates))

	fmt.Fprintf(e.stdout, "PIDs %v  files %d\n\n", res.PIDs, res.Files)
	if err := e.out.Format(e.stdout, summary); err != nil {
		return err
	}
	if len(res.Buckets) == 0 {
		return nil
	}

	fmt.Fprintln(e.stdout)
	buckets := &output.Table{}
	buckets.SetHeaders("COPIES", "CONTENTS", "PAGES")
	for _, b := range res.Buckets {
		buckets.AddRow(fmt.Sprint(b.Copies), fmt.Sprint(b.Contents), fmt.Sprint(b.Copies*b.Contents))
	}
	return e.out.Format(e.stdout, buckets)
}
