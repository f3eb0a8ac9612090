package output

import (
	"bytes"
	"strings"
	"testing"
)

func TestSpinner_Outcomes(t *testing.T) {
	tests := []struct {
		name   string
		finish func(*Spinner)
		want   string
	}{
		{"stop clears the line", (*Spinner).Stop, "\r\033[K"},
		{"success", func(s *Spinner) { s.Success("hashed 64 pages") }, "\r\033[K✓ hashed 64 pages\n"},
		{"fail", func(s *Spinner) { s.Fail("analysis failed") }, "\r\033[K✗ analysis failed\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			s := NewSpinner(&buf, "Hashing pages")
			s.Start()
			tt.finish(s)

			out := buf.String()
			if !strings.HasPrefix(out, "\r"+s.frames[0]+" Hashing pages") {
				t.Errorf("output = %q, want the first frame drawn", out)
			}
			if !strings.HasSuffix(out, tt.want) {
				t.Errorf("output = %q, want suffix %q", out, tt.want)
			}
		})
	}
}

func TestSpinner_StopWithoutStart(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "Hashing pages")
	s.Fail("no pages")

	if got := buf.String(); got != "\r\033[K✗ no pages\n" {
		t.Errorf("output = %q", got)
	}
}

func TestSpinner_FinishOnce(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "Hashing pages")
	s.Start()
	s.Start()
	s.Success("hashed")
	s.Stop()
	s.Fail("late")

	out := buf.String()
	if strings.Count(out, "hashed") != 1 || strings.Contains(out, "late") {
		t.Errorf("output = %q, want a single success line", out)
	}
}
