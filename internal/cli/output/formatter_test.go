package output

import (
	"bytes"
	"testing"
)

func TestNewFormatter(t *testing.T) {
	if _, ok := NewFormatter(FormatJSON, false).(*JSONFormatter); !ok {
		t.Error("json: want *JSONFormatter")
	}
	if _, ok := NewFormatter(FormatYAML, false).(*YAMLFormatter); !ok {
		t.Error("yaml: want *YAMLFormatter")
	}
	for _, format := range []Format{FormatTable, "bogus"} {
		tf, ok := NewFormatter(format, true).(*TableFormatter)
		if !ok || !tf.Wide {
			t.Errorf("%s: got %#v, want wide *TableFormatter", format, tf)
		}
	}
}

func TestJSONFormatter_Format(t *testing.T) {
	tests := []struct {
		name string
		data any
		want string
	}{
		{"struct", struct {
			RunID  string `json:"run_id"`
			Frames int    `json:"frames"`
		}{"run-1", 3}, "{\n  \"run_id\": \"run-1\",\n  \"frames\": 3\n}\n"},
		{"slice", []string{"000.png"}, "[\n  \"000.png\"\n]\n"},
		{"nil", nil, "null\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := (&JSONFormatter{}).Format(&buf, tt.data); err != nil {
				t.Fatalf("Format() error = %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("Format() = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestYAMLFormatter_Format(t *testing.T) {
	f := &YAMLFormatter{}

	data := struct {
		PID       string   `yaml:"pid"`
		ImageSize int      `yaml:"image_size"`
		Files     []string `yaml:"files"`
	}{
		PID:       "4242",
		ImageSize: 100,
		Files:     []string{"img/000.png"},
	}

	var buf bytes.Buffer
	if err := f.Format(&buf, data); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	want := "pid: \"4242\"\nimage_size: 100\nfiles:\n  - img/000.png\n"
	if buf.String() != want {
		t.Errorf("Format() = %q, want %q", buf.String(), want)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatTable, false},
		{"table", FormatTable, false},
		{"JSON", FormatJSON, false},
		{" yaml ", FormatYAML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
		if ValidFormat(tt.in) == tt.wantErr {
			t.Errorf("ValidFormat(%q) = %v", tt.in, !tt.wantErr)
		}
	}
}
