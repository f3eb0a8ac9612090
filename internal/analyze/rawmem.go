package analyze

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/spaolacci/murmur3"
	"golang.org/x/sync/errgroup"

	"github.com/yndnr/wssviz/pkg/cmap"
)

// PageSize is the page granularity of the dumps.
const PageSize = 4096

// DefaultRoot is the dumper's default output directory.
const DefaultRoot = "/tmp/raw-mem"

// contentKey identifies a page by its 128-bit content hash.
type contentKey struct {
	h1, h2 uint64
}

// Report summarizes the pages of one or more processes.
type Report struct {
	PIDs       []string `json:"pids" yaml:"pids"`
	Files      int      `json:"files" yaml:"files"`
	TotalPages int      `json:"total_pages" yaml:"total_pages"`
	ZeroPages  int      `json:"zero_pages" yaml:"zero_pages"`
	// RepeatingPages counts pages made of one 64-bit word repeated,
	// zero pages included.
	RepeatingPages int `json:"repeating_pages" yaml:"repeating_pages"`
	UniquePages    int `json:"unique_pages" yaml:"unique_pages"`
	// Sharing maps "pages with identical content" to how many distinct
	// contents occur that many times.
	Sharing map[int]int `json:"sharing" yaml:"sharing"`
}

// SharingBucket is one row of the sharing histogram.
type SharingBucket struct {
	Copies   int `json:"copies" yaml:"copies"`
	Contents int `json:"contents" yaml:"contents"`
}

// Buckets returns the sharing histogram sorted by copy count.
func (r *Report) Buckets() []SharingBucket {
	out := make([]SharingBucket, 0, len(r.Sharing))
	for copies, contents := range r.Sharing {
		out = append(out, SharingBucket{Copies: copies, Contents: contents})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Copies < out[j].Copies })
	return out
}

// DuplicatePages returns the number of pages whose content also occurs in
// another page.
func (r *Report) DuplicatePages() int {
	n := 0
	for copies, contents := range r.Sharing {
		if copies > 1 {
			n += copies * contents
		}
	}
	return n
}

// Analyzer accumulates page statistics. AddData and AddPID may be called
// from several goroutines.
type Analyzer struct {
	root    string
	workers int
	counts  *cmap.Map[contentKey, int]

	total, zero, repeating atomic.Int64

	mu    sync.Mutex
	pids  []string
	files int
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithWorkers sets how many dump files are hashed at once. Values below 1
// mean GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		a.workers = n
	}
}

// NewAnalyzer creates an analyzer reading dumps below root.
// An empty root means DefaultRoot.
func NewAnalyzer(root string, opts ...Option) *Analyzer {
	if root == "" {
		root = DefaultRoot
	}
	a := &Analyzer{
		root: root,
		// the digest is already uniform; shard on its low half
		counts: cmap.New[contentKey, int](func(k contentKey) uint64 { return k.h1 }, 0),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.workers < 1 {
		a.workers = runtime.GOMAXPROCS(0)
	}
	return a
}

// AddPID analyzes every regular file in <root>/<pid>, hashing up to the
// configured number of files concurrently.
func (a *Analyzer) AddPID(ctx context.Context, pid string) error {
	dir := filepath.Join(a.root, pid)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("analyze: read %s: %w", dir, err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)

	files := 0
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		files++
		path := filepath.Join(dir, e.Name())
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("analyze: %w", err)
			}
			a.AddData(data)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	a.mu.Lock()
	a.pids = append(a.pids, pid)
	a.files += files
	a.mu.Unlock()
	return nil
}

// AddData analyzes the whole pages of data.
func (a *Analyzer) AddData(data []byte) {
	n := len(data) / PageSize
	var zero, repeating int64
	for i := 0; i < n; i++ {
		page := data[i*PageSize : (i+1)*PageSize]
		if IsZero(page) {
			zero++
		}
		if IsRepeating64(page) {
			repeating++
		}
		h1, h2 := murmur3.Sum128(page)
		a.counts.Update(contentKey{h1, h2}, func(c int, _ bool) int { return c + 1 })
	}
	a.total.Add(int64(n))
	a.zero.Add(zero)
	a.repeating.Add(repeating)
}

// Report returns the statistics gathered so far.
func (a *Analyzer) Report() *Report {
	a.mu.Lock()
	r := &Report{
		PIDs:  append([]string(nil), a.pids...),
		Files: a.files,
	}
	a.mu.Unlock()

	r.TotalPages = int(a.total.Load())
	r.ZeroPages = int(a.zero.Load())
	r.RepeatingPages = int(a.repeating.Load())
	r.Sharing = make(map[int]int)
	a.counts.Range(func(_ contentKey, copies int) bool {
		r.UniquePages++
		r.Sharing[copies]++
		return true
	})
	return r
}

// IsZero reports whether every byte of page is zero.
func IsZero(page []byte) bool {
	for _, b := range page {
		if b != 0 {
			return false
		}
	}
	return true
}

// IsRepeating64 reports whether page consists of one little-endian 64-bit
// word repeated. Pages shorter than one word are never repeating.
func IsRepeating64(page []byte) bool {
	if len(page) < 8 {
		return false
	}
	first := binary.LittleEndian.Uint64(page)
	for off := 8; off+8 <= len(page); off += 8 {
		if binary.LittleEndian.Uint64(page[off:]) != first {
			return false
		}
	}
	return true
}
