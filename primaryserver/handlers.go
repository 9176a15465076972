package primaryserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jacokyle01/epd-analysis/models"
)

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func queueError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrQueueFull) {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	http.Error(w, err.Error(), http.StatusBadRequest)
}

// HTTP handlers
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	job, ok := s.GetJob()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.log.Info().Str("job", job.ID).Str("worker", r.RemoteAddr).Msg("job handed out")
	writeJSON(w, job)
}

func (s *Server) handleSubmitResult(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var result models.Result
	if err := json.NewDecoder(r.Body).Decode(&result); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if result.JobID == "" {
		http.Error(w, "Missing job_id", http.StatusBadRequest)
		return
	}

	s.SubmitResult(result)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var job models.Job
	if err := json.NewDecoder(r.Body).Decode(&job); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	id, err := s.AddJob(job)
	if err != nil {
		queueError(w, err)
		return
	}
	writeJSON(w, map[string]string{"job_id": id})
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	batch, err := s.AddBatch(req)
	if err != nil {
		queueError(w, err)
		return
	}
	writeJSON(w, map[string]interface{}{"batch_id": batch.ID, "job_ids": batch.JobIDs})
}

func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	jobID := r.URL.Query().Get("job_id")
	if jobID == "" {
		http.Error(w, "Missing job_id parameter", http.StatusBadRequest)
		return
	}

	result, exists := s.GetResult(jobID)
	if !exists {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, result)
}

// BatchStatus is the /get_batch response: the batch plus its finished runs
// ranked best first.
type BatchStatus struct {
	models.Batch
	Ranking []models.RunResult `json:"ranking"`
}

func (s *Server) handleGetBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	batchID := r.URL.Query().Get("batch_id")
	if batchID == "" {
		http.Error(w, "Missing batch_id parameter", http.StatusBadRequest)
		return
	}

	batch, exists := s.GetBatch(batchID)
	if !exists {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, BatchStatus{Batch: batch, Ranking: batch.Ranking()})
}

func (s *Server) handleViewQueue(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	queued, running := s.QueueStatus()
	writeJSON(w, map[string]interface{}{
		"queue_length": len(queued),
		"queued_jobs":  queued,
		"running_jobs": running,
	})
}
