// Package scoring keeps the running totals of one engine over a corpus.
package scoring

import (
	"github.com/jacokyle01/epd-analysis/models"
	"github.com/jacokyle01/epd-analysis/movescore"
)

// Scorer owns the RunResult of a run. It is not safe for concurrent use.
type Scorer struct {
	result models.RunResult
}

func New(engine string) *Scorer {
	return &Scorer{result: models.RunResult{Engine: engine}}
}

// Score awards the points of the first entry matching move and returns them.
// Every call counts as an attempted position and adds the table's maximum.
func (s *Scorer) Score(table movescore.Table, move string) int {
	s.result.Attempted++
	s.result.MaxScore += table.MaxAttainable()
	e, i, ok := table.Lookup(move)
	if !ok {
		return 0
	}
	if i == 0 {
		s.result.TopOne++
	}
	s.result.Score += e.Points
	return e.Points
}

// Result returns a copy of the totals so far.
func (s *Scorer) Result() models.RunResult {
	return s.result
}
