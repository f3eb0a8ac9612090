package render

import (
	"fmt"
	"time"
)

// Elapsed formats t-first as HH:MM:SS. Hours do not wrap at 24 and negative
// offsets clamp to zero.
func Elapsed(t, first time.Time) string {
	d := t.Sub(first)
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs/60)%60, secs%60)
}
