package output

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"
)

// JSONFormatter writes data as indented JSON.
type JSONFormatter struct{}

func (*JSONFormatter) Format(w io.Writer, data any) error {
	return writeJSON(w, data)
}

// YAMLFormatter writes data as YAML with two-space indentation.
type YAMLFormatter struct{}

func (*YAMLFormatter) Format(w io.Writer, data any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	err := enc.Encode(data)
	if cerr := enc.Close(); err == nil {
		err = cerr
	}
	return err
}

func writeJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
