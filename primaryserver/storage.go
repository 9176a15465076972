package primaryserver

import "github.com/jacokyle01/epd-analysis/models"

// SubmitResult stores a completed analysis result
func (s *Server) SubmitResult(result models.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, pending := s.jobMap[result.JobID]
	delete(s.jobMap, result.JobID)
	delete(s.assigned, result.JobID)
	s.resultsStore[result.JobID] = result

	// A repeated result for a finished job leaves its batch alone.
	if batch, ok := s.batches[job.BatchID]; pending && ok {
		batch.Results[result.JobID] = result
		batch.Completed++
		s.log.Info().Str("batch", batch.ID).Int("completed", batch.Completed).Int("total", batch.Total).
			Msg("batch progress")
	}

	var ev = s.log.Info()
	if result.Error != "" {
		ev = s.log.Warn().Str("error", result.Error)
	}
	ev.Str("job", result.JobID).Str("engine", result.Run.Engine).Int("score", result.Run.Score).
		Int("max_score", result.Run.MaxScore).Int("top1", result.Run.TopOne).Msg("received result")
}

// GetResult retrieves a result by job ID
func (s *Server) GetResult(jobID string) (models.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, exists := s.resultsStore[jobID]
	return result, exists
}

// GetBatch returns a snapshot of a batch.
func (s *Server) GetBatch(batchID string) (models.Batch, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	batch, exists := s.batches[batchID]
	if !exists {
		return models.Batch{}, false
	}
	var snap = *batch
	snap.JobIDs = append([]string(nil), batch.JobIDs...)
	snap.Results = make(map[string]models.Result, len(batch.Results))
	for id, r := range batch.Results {
		snap.Results[id] = r
	}
	return snap, true
}
