package chart

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/yndnr/wssviz/internal/core/domain"
)

var csvHeader = []string{"frame", "timestamp", "active", "zero", "mapped"}

// WriteCSV writes one row per frame. An empty series yields only the header.
func WriteCSV(w io.Writer, s *domain.Series) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	if s != nil {
		for i := 0; i < s.Len(); i++ {
			var ts string
			if i < len(s.Timestamps) {
				ts = s.Timestamps[i].UTC().Format(time.RFC3339)
			}
			row := []string{
				strconv.Itoa(i),
				ts,
				strconv.FormatFloat(s.Active[i], 'f', 6, 64),
				strconv.FormatFloat(s.Zero[i], 'f', 6, 64),
				strconv.FormatFloat(s.Mapped[i], 'f', 6, 64),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}
