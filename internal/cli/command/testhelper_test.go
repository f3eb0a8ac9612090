package command

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

const testAddr = "0x7fd607823000"

// isolate points every user directory at a temp dir so the tests never read
// or write a developer's own configuration or history.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("WSSVIZ_CONFIG", "")
	return dir
}

// runApp runs the CLI with args and captures its output.
func runApp(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	app := App()
	var out, errOut bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &errOut

	err = app.RunContext(context.Background(), append([]string{"wssviz"}, args...))
	return out.String(), errOut.String(), err
}

// writeSnapshots creates one activity snapshot per payload under root/pid,
// one second apart.
func writeSnapshots(t *testing.T, root, pid string, payloads ...[]byte) {
	t.Helper()
	for i, data := range payloads {
		dir := filepath.Join(root, pid, fmt.Sprint(1550000000+i))
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, testAddr), data, 0644); err != nil {
			t.Fatal(err)
		}
	}
}

// snapshotFixture writes three 10x10 activity snapshots for pid 4242 and
// returns the snapshot root.
func snapshotFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeSnapshots(t, root, "4242",
		make([]byte, 25),
		append([]byte{0xFF, 0xAA}, make([]byte, 23)...),
		append([]byte{0xFF, 0xFF}, make([]byte, 23)...),
	)
	return root
}
