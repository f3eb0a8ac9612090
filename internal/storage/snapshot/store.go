package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/yndnr/wssviz/internal/core/domain"
	"github.com/yndnr/wssviz/internal/telemetry/logger"
)

var (
	ErrNoSnapshots      = errors.New("snapshot: no snapshots available")
	ErrAddressNotFound  = errors.New("snapshot: address file not found")
	ErrAmbiguousAddress = errors.New("snapshot: expected exactly one address file")
	ErrInvalidPID       = errors.New("snapshot: invalid pid")
)

// DefaultRoot is the sampler's default output directory.
const DefaultRoot = "/tmp/wss"

// timestampLayouts are tried in order for non-numeric directory names.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02_15-04-05",
}

// Store lists and reads snapshots below a root directory.
type Store struct {
	root   string
	logger logger.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for skipped entries.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// NewStore creates a store rooted at root. An empty root means DefaultRoot.
func NewStore(root string, opts ...Option) *Store {
	if root == "" {
		root = DefaultRoot
	}
	s := &Store{root: root, logger: logger.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.root
}

// Dir returns the directory holding the snapshots of pid.
func (s *Store) Dir(pid string) string {
	return filepath.Join(s.root, pid)
}

// ValidatePID rejects values that are not a positive decimal process ID.
func ValidatePID(pid string) error {
	n, err := strconv.ParseUint(pid, 10, 32)
	if err != nil || n == 0 {
		return fmt.Errorf("%w: %q", ErrInvalidPID, pid)
	}
	return nil
}

// ParseTimestamp parses a snapshot directory name.
func ParseTimestamp(name string) (time.Time, bool) {
	if name == "" {
		return time.Time{}, false
	}
	if isDigits(name) {
		secs, err := strconv.ParseInt(name, 10, 64)
		if err != nil {
			return time.Time{}, false
		}
		return time.Unix(secs, 0).UTC(), true
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, name); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// List returns the snapshots of pid sorted oldest first. Data is not loaded
// and Size is left zero until ResolveAddress.
func (s *Store) List(pid string) ([]domain.Snapshot, error) {
	dir := s.Dir(pid)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoSnapshots, dir)
		}
		return nil, fmt.Errorf("snapshot: read %s: %w", dir, err)
	}

	var snaps []domain.Snapshot
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		ts, ok := ParseTimestamp(e.Name())
		if !ok {
			s.logger.Debug("skipping non-timestamp entry", "dir", dir, "name", e.Name())
			continue
		}
		snaps = append(snaps, domain.Snapshot{
			Name:      e.Name(),
			Timestamp: ts,
			Dir:       filepath.Join(dir, e.Name()),
		})
	}
	if len(snaps) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoSnapshots, dir)
	}

	sort.SliceStable(snaps, func(i, j int) bool {
		if snaps[i].Timestamp.Equal(snaps[j].Timestamp) {
			return snaps[i].Name < snaps[j].Name
		}
		return snaps[i].Timestamp.Before(snaps[j].Timestamp)
	})
	return snaps, nil
}

// Reference returns the snapshot used for image sizing: the second to last,
// or the only one.
func Reference(snaps []domain.Snapshot) (domain.Snapshot, error) {
	switch len(snaps) {
	case 0:
		return domain.Snapshot{}, ErrNoSnapshots
	case 1:
		return snaps[0], nil
	default:
		return snaps[len(snaps)-2], nil
	}
}

// Addresses lists the address files of one snapshot, sorted.
func (s *Store) Addresses(snap domain.Snapshot) ([]string, error) {
	entries, err := os.ReadDir(snap.Dir)
	if err != nil {
		return nil, fmt.Errorf("snapshot: read %s: %w", snap.Dir, err)
	}
	var addrs []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			addrs = append(addrs, e.Name())
		}
	}
	sort.Strings(addrs)
	return addrs, nil
}

// NormalizeAddress lower-cases addr and adds a 0x prefix when missing.
func NormalizeAddress(addr string) string {
	addr = strings.ToLower(strings.TrimSpace(addr))
	if addr == "" || strings.HasPrefix(addr, "0x") {
		return addr
	}
	return "0x" + addr
}

// ResolveAddress picks the address file to render from the reference
// snapshot. With an empty addr the reference must hold exactly one file.
func (s *Store) ResolveAddress(snaps []domain.Snapshot, addr string) (string, error) {
	ref, err := Reference(snaps)
	if err != nil {
		return "", err
	}
	addrs, err := s.Addresses(ref)
	if err != nil {
		return "", err
	}

	if addr == "" {
		if len(addrs) != 1 {
			return "", fmt.Errorf("%w in %s, found %d", ErrAmbiguousAddress, ref.Dir, len(addrs))
		}
		return addrs[0], nil
	}

	want := NormalizeAddress(addr)
	for _, a := range addrs {
		if NormalizeAddress(a) == want {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: %s in %s", ErrAddressNotFound, addr, ref.Dir)
}

// Path returns the address file of snap.
func Path(snap domain.Snapshot, addr string) string {
	return filepath.Join(snap.Dir, addr)
}

// Stat returns the size of the address file of snap.
func (s *Store) Stat(snap domain.Snapshot, addr string) (int64, error) {
	fi, err := os.Stat(Path(snap, addr))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("%w: %s", ErrAddressNotFound, Path(snap, addr))
		}
		return 0, fmt.Errorf("snapshot: stat: %w", err)
	}
	return fi.Size(), nil
}

// Read loads the address file of snap and returns a copy of snap with Data
// and Size set.
func (s *Store) Read(snap domain.Snapshot, addr string) (domain.Snapshot, error) {
	path := Path(snap, addr)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return snap, fmt.Errorf("%w: %s", ErrAddressNotFound, path)
		}
		return snap, fmt.Errorf("snapshot: read %s: %w", path, err)
	}
	snap.Data = data
	snap.Size = int64(len(data))
	return snap, nil
}
