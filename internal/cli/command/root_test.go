package command

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"
)

func TestApp(t *testing.T) {
	app := App()
	if app == nil {
		t.Fatal("App() returned nil")
	}

	if app.Name != "wssviz" {
		t.Errorf("Name = %q, want %q", app.Name, "wssviz")
	}
	if app.Usage == "" {
		t.Error("Usage should not be empty")
	}

	commandNames := make(map[string]bool)
	for _, cmd := range app.Commands {
		commandNames[cmd.Name] = true
	}

	requiredCommands := []string{"render", "inspect", "watch", "raw-mem", "history", "config", "version"}
	for _, name := range requiredCommands {
		if !commandNames[name] {
			t.Errorf("missing required command: %s", name)
		}
	}
}

func TestApp_GlobalFlags(t *testing.T) {
	app := App()

	flagNames := make(map[string]bool)
	for _, flag := range app.Flags {
		flagNames[flag.Names()[0]] = true
	}

	requiredFlags := []string{"config", "output", "wide", "log-level", "log-format", "verbose"}
	for _, name := range requiredFlags {
		if !flagNames[name] {
			t.Errorf("missing required flag: %s", name)
		}
	}
}

func TestFlagKeysMatchFlags(t *testing.T) {
	cmds := map[string]struct {
		cmd  *cli.Command
		keys map[string]string
	}{
		"render":  {RenderCommand(), renderKeys},
		"inspect": {InspectCommand(), renderKeys},
		"watch":   {WatchCommand(), watchKeys},
		"raw-mem": {RawMemCommand(), rawMemKeys},
	}

	for name, tc := range cmds {
		t.Run(name, func(t *testing.T) {
			for _, f := range tc.cmd.Flags {
				if _, ok := tc.keys[f.Names()[0]]; !ok {
					t.Errorf("flag --%s has no configuration key", f.Names()[0])
				}
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain error", errors.New("boom"), ExitError},
		{"usage", cli.Exit("bad args", ExitUsage), ExitUsage},
		{"wrapped usage", fmt.Errorf("outer: %w", cli.Exit("bad args", ExitUsage)), ExitUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestUsageErrors(t *testing.T) {
	isolate(t)

	tests := []struct {
		name string
		args []string
	}{
		{"render two pids", []string{"render", "1", "2"}},
		{"render no pid", []string{"render"}},
		{"render bad pid", []string{"render", "abc"}},
		{"inspect two pids", []string{"inspect", "1", "2"}},
		{"raw-mem no pid", []string{"raw-mem"}},
		{"raw-mem bad pid", []string{"raw-mem", "12", "x"}},
		{"history show no id", []string{"history", "show"}},
		{"history show bad id", []string{"history", "show", "run-nope"}},
		{"history delete extra args", []string{"history", "delete", "a", "b"}},
		{"unknown flag", []string{"render", "--no-such-flag", "42"}},
		{"version bad output", []string{"-o", "xml", "version"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runApp(t, tt.args...)
			if err == nil {
				t.Fatal("expected an error")
			}
			if got := ExitCode(err); got != ExitUsage {
				t.Errorf("ExitCode() = %d, want %d (err = %v)", got, ExitUsage, err)
			}
		})
	}
}

func TestSetup_InvalidConfig(t *testing.T) {
	isolate(t)
	t.Setenv("WSSVIZ_DECODE_ENCODING", "rle")

	_, _, err := runApp(t, "inspect", "42")
	if err == nil || !strings.Contains(err.Error(), "decode.encoding") {
		t.Fatalf("error = %v, want invalid decode.encoding", err)
	}
	if ExitCode(err) != ExitError {
		t.Errorf("ExitCode() = %d, want %d", ExitCode(err), ExitError)
	}
}

func TestSetup_PIDFromEnvironment(t *testing.T) {
	isolate(t)
	root := snapshotFixture(t)
	t.Setenv("WSSVIZ_PID", "4242")
	t.Setenv("WSSVIZ_INPUT_ROOT", root)

	stdout, _, err := runApp(t, "-o", "json", "inspect")
	if err != nil {
		t.Fatalf("inspect error = %v", err)
	}
	var res struct {
		PID string `json:"pid"`
	}
	if err := json.Unmarshal([]byte(stdout), &res); err != nil {
		t.Fatalf("unmarshal %q: %v", stdout, err)
	}
	if res.PID != "4242" {
		t.Errorf("pid = %q, want 4242", res.PID)
	}
}

func TestParseGlobalFlags(t *testing.T) {
	var got *GlobalFlags
	app := &cli.App{
		Flags: globalFlags(),
		Action: func(c *cli.Context) error {
			got = ParseGlobalFlags(c)
			return nil
		},
	}
	if err := app.Run([]string{"wssviz", "-c", "/etc/wssviz.yaml", "-w", "-V"}); err != nil {
		t.Fatal(err)
	}
	want := GlobalFlags{Config: "/etc/wssviz.yaml", Wide: true, Verbose: true}
	if got == nil || *got != want {
		t.Errorf("ParseGlobalFlags() = %+v, want %+v", got, want)
	}
}

func TestSetup_GlobalFlags(t *testing.T) {
	dir := isolate(t)
	root := snapshotFixture(t)
	// not a snapshot; listing it logs at debug level
	if err := os.Mkdir(filepath.Join(root, "4242", "img"), 0755); err != nil {
		t.Fatal(err)
	}

	cfgPath := filepath.Join(dir, "wssviz.yaml")
	if err := os.WriteFile(cfgPath, []byte("input:\n  root: "+root+"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, stderr, err := runApp(t, "--config", cfgPath, "--verbose", "--log-format", "json", "inspect", "4242")
	if err != nil {
		t.Fatalf("inspect error = %v", err)
	}
	if !strings.Contains(stderr, "skipping non-timestamp entry") {
		t.Errorf("--verbose did not enable debug logging:\n%s", stderr)
	}

	_, stderr, err = runApp(t, "--config", cfgPath, "--log-format", "json", "inspect", "4242")
	if err != nil {
		t.Fatalf("inspect error = %v", err)
	}
	if strings.Contains(stderr, "skipping non-timestamp entry") {
		t.Errorf("debug entry logged without --verbose:\n%s", stderr)
	}
}

func TestVersionCommand(t *testing.T) {
	isolate(t)

	stdout, _, err := runApp(t, "-o", "json", "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	var info map[string]string
	if err := json.Unmarshal([]byte(stdout), &info); err != nil {
		t.Fatalf("unmarshal %q: %v", stdout, err)
	}
	for _, key := range []string{"version", "commit", "go_version", "platform"} {
		if info[key] == "" {
			t.Errorf("version output lacks %s: %v", key, info)
		}
	}
}
