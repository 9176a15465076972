package primaryserver

import (
	"net/http"
	"sync"
	"time"

	"github.com/jacokyle01/epd-analysis/models"
	"github.com/rs/zerolog"
)

// Server manages the job queue and distributes corpus runs to workers
type Server struct {
	jobs         chan models.Job
	mu           sync.RWMutex
	jobMap       map[string]models.Job // every job without a result yet
	assigned     map[string]bool       // jobMap ids handed to a worker
	resultsStore map[string]models.Result
	batches      map[string]*models.Batch
	pollWait     time.Duration
	log          zerolog.Logger
}

// NewServer creates a new analysis server
func NewServer(log zerolog.Logger) *Server {
	return &Server{
		jobs:         make(chan models.Job, 100),
		jobMap:       make(map[string]models.Job),
		assigned:     make(map[string]bool),
		resultsStore: make(map[string]models.Result),
		batches:      make(map[string]*models.Batch),
		pollWait:     5 * time.Second,
		log:          log.With().Str("component", "server").Logger(),
	}
}

// Handler routes the server's API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/job", s.handleGetJob)
	mux.HandleFunc("/result", s.handleSubmitResult)
	mux.HandleFunc("/analyze", s.handleAnalyze)
	mux.HandleFunc("/batch", s.handleBatch)
	mux.HandleFunc("/get_result", s.handleGetResult)
	mux.HandleFunc("/get_batch", s.handleGetBatch)
	mux.HandleFunc("/queue", s.handleViewQueue)
	return mux
}

// StartServer starts the HTTP server
func (s *Server) StartServer(addr string) error {
	s.log.Info().Str("addr", addr).Msg("starting server")
	return http.ListenAndServe(addr, s.Handler())
}
