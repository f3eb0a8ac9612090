package command

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yndnr/wssviz/internal/core/domain"
	"github.com/yndnr/wssviz/internal/storage/history"
)

func TestHistory_RenderListShowDelete(t *testing.T) {
	isolate(t)
	root := snapshotFixture(t)
	out := filepath.Join(t.TempDir(), "img")

	stdout, _, err := runApp(t, "-o", "json", "render", "--root", root, "--output-dir", out, "--history", "4242")
	if err != nil {
		t.Fatalf("render error = %v", err)
	}
	// history.dir defaults to a directory under the isolated XDG_DATA_HOME
	var sum renderSummary
	if err := json.Unmarshal([]byte(stdout), &sum); err != nil {
		t.Fatal(err)
	}

	stdout, _, err = runApp(t, "-o", "json", "history", "list")
	if err != nil {
		t.Fatalf("history list error = %v", err)
	}
	var runs []domain.Run
	if err := json.Unmarshal([]byte(stdout), &runs); err != nil {
		t.Fatalf("unmarshal %q: %v", stdout, err)
	}
	if len(runs) != 1 || runs[0].ID != sum.RunID || runs[0].Frames != 3 {
		t.Fatalf("runs = %+v, want the rendered run", runs)
	}

	stdout, _, err = runApp(t, "-o", "json", "history", "show", sum.RunID)
	if err != nil {
		t.Fatalf("history show error = %v", err)
	}
	var detail runDetail
	if err := json.Unmarshal([]byte(stdout), &detail); err != nil {
		t.Fatalf("unmarshal %q: %v", stdout, err)
	}
	if detail.Run.PID != "4242" || len(detail.Frames) != 3 {
		t.Errorf("detail = %+v", detail)
	}
	if detail.Frames[2].Stats.Active != 8 {
		t.Errorf("last frame stats = %+v", detail.Frames[2].Stats)
	}

	stdout, _, err = runApp(t, "history", "show", sum.RunID)
	if err != nil {
		t.Fatalf("history show (table) error = %v", err)
	}
	if !strings.Contains(stdout, "Run "+sum.RunID) || !strings.Contains(stdout, "SNAPSHOT") {
		t.Errorf("history show table =\n%s", stdout)
	}

	if _, _, err := runApp(t, "history", "delete", sum.RunID); err != nil {
		t.Fatalf("history delete error = %v", err)
	}
	_, _, err = runApp(t, "history", "show", sum.RunID)
	if !errors.Is(err, history.ErrRunNotFound) {
		t.Errorf("show after delete error = %v, want ErrRunNotFound", err)
	}
}

func TestHistory_ListEmpty(t *testing.T) {
	isolate(t)
	dir := filepath.Join(t.TempDir(), "history")

	stdout, _, err := runApp(t, "history", "list", "--dir", dir)
	if err != nil {
		t.Fatalf("history list error = %v", err)
	}
	if !strings.Contains(stdout, "No runs recorded") {
		t.Errorf("stdout = %q", stdout)
	}

	stdout, _, err = runApp(t, "-o", "json", "history", "list", "--dir", dir)
	if err != nil {
		t.Fatalf("history list error = %v", err)
	}
	if strings.TrimSpace(stdout) != "[]" {
		t.Errorf("json list = %q, want []", stdout)
	}
}

func TestHistory_DeleteUnknown(t *testing.T) {
	isolate(t)
	id, err := domain.GenerateRunID()
	if err != nil {
		t.Fatal(err)
	}

	_, _, err = runApp(t, "history", "delete", "--dir", filepath.Join(t.TempDir(), "h"), id)
	if !errors.Is(err, history.ErrRunNotFound) {
		t.Errorf("delete error = %v, want ErrRunNotFound", err)
	}
}
