// Package confloader loads layered configuration with koanf.
//
// Layers, lowest to highest priority:
//
//  1. Defaults supplied by the caller
//  2. A YAML configuration file
//  3. WSSVIZ_* environment variables
//  4. Overrides, normally the command-line flags that were set
package confloader
