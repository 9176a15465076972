// Package timing audits the total time an engine spent on a corpus.
package timing

import (
	"github.com/jacokyle01/epd-analysis/models"
)

// Margin is a clamped fraction of a per-position time allotment.
type Margin struct {
	Divisor  int64
	Min, Max int64 // ms
}

// For returns clamp(allotted/Divisor, Min, Max).
func (m Margin) For(allottedMs int64) int64 {
	var v = allottedMs
	if m.Divisor > 0 {
		v /= m.Divisor
	}
	if v < m.Min {
		return m.Min
	}
	if v > m.Max {
		return m.Max
	}
	return v
}

var (
	// AuditMargin is the tolerance per position for the session audit.
	AuditMargin = Margin{Divisor: 4, Min: 50, Max: 200}
	// StopMargin is how long past its move time an engine may search
	// before the driver sends stop.
	StopMargin = Margin{Divisor: 4, Min: 10, Max: 100}
)

// Auditor classifies a run's elapsed time.
type Auditor struct {
	Margin Margin
}

func NewAuditor() Auditor {
	return Auditor{Margin: AuditMargin}
}

// Classify compares actual against expected with a tolerance of
// positions times the per-position margin. The per-position allotment is
// expected/positions.
func (a Auditor) Classify(expectedMs, actualMs int64, positions int) models.SessionOutcome {
	var allotted int64
	if positions > 0 {
		allotted = expectedMs / int64(positions)
	}
	var perPos = a.Margin.For(allotted)
	var total = perPos * int64(positions)
	var out = models.SessionOutcome{
		ExpectedMs:          expectedMs,
		ActualMs:            actualMs,
		MarginPerPositionMs: perPos,
		MarginMs:            total,
	}
	switch {
	case actualMs > expectedMs+total:
		out.Class = models.Overrun
	case actualMs >= expectedMs-total:
		out.Class = models.OnBudget
	default:
		out.Class = models.Underrun
	}
	return out
}

// Classify uses the default audit margin.
func Classify(expectedMs, actualMs int64, positions int) models.SessionOutcome {
	return NewAuditor().Classify(expectedMs, actualMs, positions)
}
