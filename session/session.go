// Package session carries the per-run context every component receives:
// run id, logger and the sink for produced position records.
package session

import (
	"sync"

	"github.com/google/uuid"
	"github.com/jacokyle01/epd-analysis/models"
	"github.com/jacokyle01/epd-analysis/notation"
	"github.com/rs/zerolog"
)

// RecordSink receives analysed positions as they complete.
type RecordSink interface {
	WriteRecord(rec models.PositionRecord) error
}

type Context struct {
	ID       uuid.UUID
	Log      zerolog.Logger
	Notation notation.Service
	Records  RecordSink
}

// New creates a context with a fresh run id attached to every log entry.
// A nil sink discards records.
func New(log zerolog.Logger, records RecordSink) *Context {
	var id = uuid.New()
	if records == nil {
		records = Discard
	}
	return &Context{
		ID:       id,
		Log:      log.With().Str("run", id.String()).Logger(),
		Notation: notation.Chess{},
		Records:  records,
	}
}

type discard struct{}

func (discard) WriteRecord(models.PositionRecord) error { return nil }

var Discard RecordSink = discard{}

// Collector keeps records in memory.
type Collector struct {
	mu      sync.Mutex
	records []models.PositionRecord
}

func (c *Collector) WriteRecord(rec models.PositionRecord) error {
	c.mu.Lock()
	c.records = append(c.records, rec)
	c.mu.Unlock()
	return nil
}

func (c *Collector) Records() []models.PositionRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.PositionRecord(nil), c.records...)
}
