package domain

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// RunIDPrefix starts every run ID.
const RunIDPrefix = "run-"

// ErrInvalidRunID indicates a malformed run ID.
var ErrInvalidRunID = NewError("WSS-RUN-4000", "invalid run id")

// Run describes one render run: what was rendered and what came out.
type Run struct {
	ID         string    `json:"id" yaml:"id"`
	PID        string    `json:"pid" yaml:"pid"`
	Address    string    `json:"address" yaml:"address"`
	Encoding   Encoding  `json:"encoding" yaml:"encoding"`
	ImageSize  int       `json:"image_size" yaml:"image_size"`
	Frames     int       `json:"frames" yaml:"frames"`
	Skipped    int       `json:"skipped" yaml:"skipped"`
	OutputDir  string    `json:"output_dir" yaml:"output_dir"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`
}

// Duration returns how long the run took.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// FrameRecord is the stored statistics of one rendered frame.
type FrameRecord struct {
	Index     int        `json:"index" yaml:"index"`
	Snapshot  string     `json:"snapshot" yaml:"snapshot"`
	Timestamp time.Time  `json:"timestamp" yaml:"timestamp"`
	Stats     FrameStats `json:"stats" yaml:"stats"`
}

// GenerateRunID returns a new run ID: run-{ulid_lowercase}, 30 characters.
// IDs sort by creation time.
func GenerateRunID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", ErrInvalidRunID.Wrap(err)
	}
	return RunIDPrefix + strings.ToLower(id.String()), nil
}

// IsValidRunID reports whether id has the run ID format.
func IsValidRunID(id string) bool {
	if !strings.HasPrefix(id, RunIDPrefix) || len(id) != len(RunIDPrefix)+ulid.EncodedSize {
		return false
	}
	_, err := ulid.ParseStrict(strings.ToUpper(id[len(RunIDPrefix):]))
	return err == nil
}

// RunIDTime returns the creation time encoded in a run ID.
func RunIDTime(id string) (time.Time, error) {
	if !IsValidRunID(id) {
		return time.Time{}, ErrInvalidRunID.With(id)
	}
	u, err := ulid.Parse(strings.ToUpper(id[len(RunIDPrefix):]))
	if err != nil {
		return time.Time{}, ErrInvalidRunID.Wrap(err)
	}
	return ulid.Time(u.Time()), nil
}
