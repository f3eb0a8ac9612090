package output

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

const barWidth = 30

// ProgressBar draws a frame counter on a terminal line. It satisfies
// service.Progress.
type ProgressBar struct {
	mu    sync.Mutex
	w     io.Writer
	label string
	done  int64
	total int64
	last  string
}

// NewProgressBar returns a bar that prefixes each line with label.
func NewProgressBar(w io.Writer, label string) *ProgressBar {
	return &ProgressBar{w: w, label: label}
}

// Update records that current of total frames are done.
func (p *ProgressBar) Update(current, total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done, p.total = current, total
	p.draw()
}

// Finish redraws the final state and ends the line.
func (p *ProgressBar) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = ""
	p.draw()
	fmt.Fprintln(p.w)
}

// draw skips output when the line would not change.
func (p *ProgressBar) draw() {
	line := p.line()
	if line == p.last {
		return
	}
	p.last = line
	fmt.Fprint(p.w, "\r"+line)
}

func (p *ProgressBar) line() string {
	if p.total <= 0 {
		return fmt.Sprintf("%s %d frames", p.label, p.done)
	}
	n := min(p.done, p.total)
	filled := int(n * barWidth / p.total)
	return fmt.Sprintf("%s [%s%s] %3d%% %d/%d frames",
		p.label,
		strings.Repeat("=", filled),
		strings.Repeat(" ", barWidth-filled),
		n*100/p.total,
		p.done, p.total)
}
