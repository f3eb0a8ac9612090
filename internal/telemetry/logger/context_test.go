package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func newJSONLogger(t *testing.T, buf *bytes.Buffer) Logger {
	t.Helper()
	l, err := New(Config{Level: "info", Format: "json", Output: buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return l
}

func TestWithLogger_FromContext(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(t, &buf)

	ctx := WithLogger(context.Background(), l)

	retrieved := FromContext(ctx)
	if retrieved == nil {
		t.Fatal("FromContext returned nil")
	}

	retrieved.Info("test message")

	if buf.Len() == 0 {
		t.Error("Logger from context should produce output")
	}
}

func TestFromContext_Default(t *testing.T) {
	if l := FromContext(context.Background()); l == nil {
		t.Error("FromContext should return default logger, got nil")
	}
}

func TestRunIDAndPID(t *testing.T) {
	ctx := context.Background()
	if RunIDFromContext(ctx) != "" || PIDFromContext(ctx) != "" {
		t.Fatal("empty context should carry no IDs")
	}

	ctx = WithRunID(ctx, "01HV0000000000000000000000")
	ctx = WithPID(ctx, "10092")

	if got := RunIDFromContext(ctx); got != "01HV0000000000000000000000" {
		t.Errorf("RunIDFromContext() = %q", got)
	}
	if got := PIDFromContext(ctx); got != "10092" {
		t.Errorf("PIDFromContext() = %q", got)
	}
}

func TestL(t *testing.T) {
	tests := []struct {
		name   string
		runID  string
		pid    string
		wantIn map[string]string
		absent []string
	}{
		{"run id", "r1", "", map[string]string{"run_id": "r1"}, []string{"pid"}},
		{"pid", "", "42", map[string]string{"pid": "42"}, []string{"run_id"}},
		{"both", "r1", "42", map[string]string{"run_id": "r1", "pid": "42"}, nil},
		{"none", "", "", nil, []string{"run_id", "pid"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			ctx := WithLogger(context.Background(), newJSONLogger(t, &buf))
			if tt.runID != "" {
				ctx = WithRunID(ctx, tt.runID)
			}
			if tt.pid != "" {
				ctx = WithPID(ctx, tt.pid)
			}

			L(ctx).Info("test message")

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("Failed to parse JSON log: %v", err)
			}
			for k, v := range tt.wantIn {
				if entry[k] != v {
					t.Errorf("%s = %v, want %q", k, entry[k], v)
				}
			}
			for _, k := range tt.absent {
				if _, ok := entry[k]; ok {
					t.Errorf("unexpected key %q", k)
				}
			}
		})
	}
}
