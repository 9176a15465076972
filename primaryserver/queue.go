package primaryserver

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jacokyle01/epd-analysis/config"
	"github.com/jacokyle01/epd-analysis/models"
)

var ErrQueueFull = errors.New("job queue full")

// prepare fills defaults and rejects jobs no worker could run.
func prepare(job *models.Job) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.EPD == "" {
		return fmt.Errorf("%w: job %s has no epd", config.ErrInvalidConfig, job.ID)
	}
	// Workers run their own binaries; a job must not choose what runs.
	if job.Engine.Path != "" || len(job.Engine.Args) > 0 {
		return fmt.Errorf("%w: job %s sets an engine path or args", config.ErrInvalidConfig, job.ID)
	}
	if job.Corpus == "" {
		job.Corpus = "epd"
	}
	var defaults = config.Default().Engine
	if job.Engine.Protocol == "" {
		job.Engine.Protocol = defaults.Protocol
	}
	if job.Engine.Protocol != config.ProtocolUCI && job.Engine.Protocol != config.ProtocolXboard {
		return fmt.Errorf("%w: unknown protocol %q", config.ErrInvalidConfig, job.Engine.Protocol)
	}
	if job.Engine.Name == "" {
		return fmt.Errorf("%w: job %s has no engine name", config.ErrInvalidConfig, job.ID)
	}
	if _, err := config.ParseOptions(job.Engine.Options); err != nil {
		return err
	}
	if job.Engine.Threads == 0 {
		job.Engine.Threads = defaults.Threads
	}
	if job.Engine.Hash == 0 {
		job.Engine.Hash = defaults.Hash
	}
	if job.Engine.Protover == 0 {
		job.Engine.Protover = defaults.Protover
	}
	if job.Engine.Rating == 0 {
		job.Engine.Rating = defaults.Rating
	}
	return nil
}

// AddJob adds a new analysis job to the queue and returns its id
func (s *Server) AddJob(job models.Job) (string, error) {
	if err := prepare(&job); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return job.ID, s.enqueue(job)
}

// enqueue needs s.mu held.
func (s *Server) enqueue(job models.Job) error {
	select {
	case s.jobs <- job:
		s.jobMap[job.ID] = job
		s.log.Info().Str("job", job.ID).Str("engine", job.Engine.Name).Msg("added job to queue")
		return nil
	default:
		s.log.Warn().Str("job", job.ID).Msg("job queue full, dropping job")
		return ErrQueueFull
	}
}

// AddBatch queues one job per engine; either all jobs are queued or none.
func (s *Server) AddBatch(req models.BatchRequest) (*models.Batch, error) {
	if len(req.Engines) == 0 {
		return nil, fmt.Errorf("%w: batch has no engines", config.ErrInvalidConfig)
	}
	var batch = &models.Batch{
		ID:      uuid.NewString(),
		Corpus:  req.Corpus,
		Results: make(map[string]models.Result),
		Total:   len(req.Engines),
	}
	var jobs []models.Job
	for _, spec := range req.Engines {
		job := models.Job{BatchID: batch.ID, Corpus: req.Corpus, EPD: req.EPD, Engine: spec}
		if err := prepare(&job); err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
		batch.JobIDs = append(batch.JobIDs, job.ID)
	}
	batch.Corpus = jobs[0].Corpus

	s.mu.Lock()
	defer s.mu.Unlock()
	if cap(s.jobs)-len(s.jobs) < len(jobs) {
		return nil, ErrQueueFull
	}
	s.batches[batch.ID] = batch
	for _, job := range jobs {
		if err := s.enqueue(job); err != nil {
			return nil, err
		}
	}
	s.log.Info().Str("batch", batch.ID).Int("jobs", batch.Total).Msg("added batch")
	return batch, nil
}

// GetJob returns the next job for a worker, waiting up to the poll period
func (s *Server) GetJob() (models.Job, bool) {
	select {
	case job := <-s.jobs:
		s.mu.Lock()
		s.assigned[job.ID] = true
		s.mu.Unlock()
		return job, true
	case <-time.After(s.pollWait):
		return models.Job{}, false
	}
}

// QueueStatus splits the jobs without a result into those still waiting
// and those a worker has taken.
func (s *Server) QueueStatus() (queued, running []string) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	queued, running = []string{}, []string{}
	for id := range s.jobMap {
		if s.assigned[id] {
			running = append(running, id)
		} else {
			queued = append(queued, id)
		}
	}
	sort.Strings(queued)
	sort.Strings(running)
	return queued, running
}
