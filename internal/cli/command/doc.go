// Package command provides CLI command definitions for wssviz.
//
// This package defines all CLI commands using urfave/cli/v2:
//
//   - root.go: Root command, global flags, configuration and exit codes
//   - render.go: Render snapshots to stills, a GIF and a chart
//   - inspect.go: Per-snapshot decode statistics without rendering
//   - watch.go: Re-render as new snapshots arrive
//   - rawmem.go: Zero, repeating and shared page analysis of raw dumps
//   - history.go: Recorded run subcommand group
//   - config.go: Configuration subcommand group
//   - version.go: Build information
//
// Commands follow a consistent pattern of loading the layered
// configuration, calling the pipeline or store, and formatting output.
// Wrong arguments return a cli.ExitCoder with ExitUsage.
package command
