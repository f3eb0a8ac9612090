// Package output renders command results and progress.
//
//   - formatter.go: Formatter interface and factory
//   - table.go: tabwriter tables built from structs, slices and maps
//   - encode.go: JSON and YAML output
//   - progress.go: frame progress bar for terminals
//   - spinner.go: animation for steps without a known total
package output
