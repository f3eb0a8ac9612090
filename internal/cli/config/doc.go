// Package config defines the wssviz configuration file and its loading.
//
//   - spec.go: Config struct, defaults and validation
//   - loader.go: layering of defaults, YAML file, WSSVIZ_* env and flags
//
// A minimal file:
//
//	input:
//	  root: /tmp/wss
//	decode:
//	  encoding: activity-zero
//	render:
//	  caption: "SPECjbb 2 core, 16 GiB"
//	  output_dir: img
package config
