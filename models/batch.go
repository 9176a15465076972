package models

import "sort"

// Batch groups the jobs that run one corpus against several engines.
type Batch struct {
	ID        string            `json:"id"`
	Corpus    string            `json:"corpus"`
	JobIDs    []string          `json:"job_ids"`
	Results   map[string]Result `json:"results"`
	Completed int               `json:"completed"`
	Total     int               `json:"total"`
}

// Ranking returns the finished runs ordered best first: by score, then top1.
func (b *Batch) Ranking() []RunResult {
	runs := make([]RunResult, 0, len(b.Results))
	for _, id := range b.JobIDs {
		if res, ok := b.Results[id]; ok && res.Error == "" {
			runs = append(runs, res.Run)
		}
	}
	sortRuns(runs)
	return runs
}

func sortRuns(runs []RunResult) {
	sort.SliceStable(runs, func(i, j int) bool {
		if runs[i].Score != runs[j].Score {
			return runs[i].Score > runs[j].Score
		}
		return runs[i].TopOne > runs[j].TopOne
	})
}

// BatchRequest asks for one corpus to be run against several engines.
type BatchRequest struct {
	Corpus  string       `json:"corpus"`
	EPD     string       `json:"epd"`
	Engines []EngineSpec `json:"engines"`
}
