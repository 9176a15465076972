package models

// TimeClass classifies total analysis time against the expected budget.
type TimeClass string

const (
	OnBudget TimeClass = "on-budget"
	Overrun  TimeClass = "overrun"
	Underrun TimeClass = "underrun"
)

// SessionOutcome is the timing audit of a whole run.
type SessionOutcome struct {
	ExpectedMs          int64     `json:"expected_ms"`
	ActualMs            int64     `json:"actual_ms"`
	MarginPerPositionMs int64     `json:"margin_per_position_ms"`
	MarginMs            int64     `json:"margin_ms"`
	Class               TimeClass `json:"class"`
}

// RunResult is the score of one engine over one corpus.
type RunResult struct {
	Engine    string          `json:"engine"`
	Rating    int             `json:"rating"`
	TopOne    int             `json:"top1"`
	Score     int             `json:"score"`
	MaxScore  int             `json:"max_score"`
	Attempted int             `json:"attempted"` // positions where a best move was received
	ElapsedMs int64           `json:"elapsed_ms"`
	Outcome   *SessionOutcome `json:"outcome,omitempty"`
}

func (r RunResult) TopOneRate() float64 {
	if r.Attempted == 0 {
		return 0
	}
	return float64(r.TopOne) / float64(r.Attempted)
}

func (r RunResult) ScoreRate() float64 {
	if r.MaxScore == 0 {
		return 0
	}
	return float64(r.Score) / float64(r.MaxScore)
}

// PositionRecord is one analysed position as written to the output epd.
type PositionRecord struct {
	EPD      string `json:"epd"`
	ID       string `json:"id,omitempty"`
	BestMove string `json:"bm"`
	Score    int    `json:"ce"`
	Depth    int    `json:"acd"`
	HasEval  bool   `json:"has_eval"` // false for xboard, which reports only the move
}

// Result represents the analysis result a worker sends back for a job
type Result struct {
	JobID   string           `json:"job_id"`
	Run     RunResult        `json:"run"`
	Records []PositionRecord `json:"records,omitempty"`
	Good    int              `json:"good"`  // positions with a c0 annotation
	Total   int              `json:"total"` // corpus lines read
	Error   string           `json:"error,omitempty"`
}
