package report

import (
	"bufio"
	"fmt"
	"os"
	"sync"

	"github.com/jacokyle01/epd-analysis/epd"
	"github.com/jacokyle01/epd-analysis/models"
)

// EPDWriter writes one EPD line per analysed position. It satisfies
// session.RecordSink.
type EPDWriter struct {
	mu sync.Mutex
	f  *os.File
	w  *bufio.Writer
}

// CreateEPD truncates path; a previous run's records are replaced.
func CreateEPD(path string) (*EPDWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}
	return &EPDWriter{f: f, w: bufio.NewWriter(f)}, nil
}

// WriteRecord flushes every line so a killed run keeps what it analysed.
func (e *EPDWriter) WriteRecord(rec models.PositionRecord) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := e.w.WriteString(epd.FormatRecord(rec) + "\n"); err != nil {
		return err
	}
	return e.w.Flush()
}

func (e *EPDWriter) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.w.Flush(); err != nil {
		e.f.Close()
		return err
	}
	return e.f.Close()
}
