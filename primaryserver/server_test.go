package primaryserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jacokyle01/epd-analysis/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const corpus = `rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - bm e4; c0 "e4=10, d4=8";`

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	s := NewServer(zerolog.Nop())
	s.pollWait = 50 * time.Millisecond
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func post(t *testing.T, url string, body interface{}) *http.Response {
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func get(t *testing.T, url string) *http.Response {
	resp, err := http.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestJobRoundTrip(t *testing.T) {
	_, ts := newTestServer(t)

	resp := get(t, ts.URL+"/job")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = post(t, ts.URL+"/analyze", models.Job{EPD: corpus, Engine: models.EngineSpec{Name: "sf", MoveTime: 100}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var created map[string]string
	decode(t, resp, &created)
	id := created["job_id"]
	require.NotEmpty(t, id)

	var queue struct {
		Length  int      `json:"queue_length"`
		Queued  []string `json:"queued_jobs"`
		Running []string `json:"running_jobs"`
	}
	decode(t, get(t, ts.URL+"/queue"), &queue)
	assert.Equal(t, 1, queue.Length)
	assert.Equal(t, []string{id}, queue.Queued)
	assert.Empty(t, queue.Running)

	resp = get(t, ts.URL+"/job")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var job models.Job
	decode(t, resp, &job)
	assert.Equal(t, id, job.ID)
	assert.Equal(t, "uci", job.Engine.Protocol)
	assert.Equal(t, 64, job.Engine.Hash)
	assert.Equal(t, "epd", job.Corpus)

	decode(t, get(t, ts.URL+"/queue"), &queue)
	assert.Equal(t, 0, queue.Length)
	assert.Empty(t, queue.Queued)
	assert.Equal(t, []string{id}, queue.Running)

	assert.Equal(t, http.StatusNotFound, get(t, ts.URL+"/get_result?job_id="+id).StatusCode)

	result := models.Result{JobID: id, Run: models.RunResult{Engine: "sf", Score: 10, MaxScore: 10, TopOne: 1, Attempted: 1}}
	assert.Equal(t, http.StatusOK, post(t, ts.URL+"/result", result).StatusCode)

	var got models.Result
	decode(t, get(t, ts.URL+"/get_result?job_id="+id), &got)
	assert.Equal(t, result, got)

	queue.Queued, queue.Running = nil, nil
	decode(t, get(t, ts.URL+"/queue"), &queue)
	assert.Equal(t, 0, queue.Length)
	assert.Empty(t, queue.Queued)
	assert.Empty(t, queue.Running)
}

func TestAnalyzeRejectsBadJobs(t *testing.T) {
	_, ts := newTestServer(t)

	for name, job := range map[string]models.Job{
		"no epd":       {Engine: models.EngineSpec{Name: "sf"}},
		"no name":      {EPD: corpus},
		"bad option":   {EPD: corpus, Engine: models.EngineSpec{Name: "sf", Options: "depth=x"}},
		"bad protocol": {EPD: corpus, Engine: models.EngineSpec{Name: "sf", Protocol: "cecp"}},
		"engine path":  {EPD: corpus, Engine: models.EngineSpec{Name: "sf", Path: "/bin/sh"}},
		"engine args":  {EPD: corpus, Engine: models.EngineSpec{Name: "sf", Args: []string{"-c", "true"}}},
	} {
		resp := post(t, ts.URL+"/analyze", job)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, name)
	}

	resp, err := http.Post(ts.URL+"/analyze", "application/json", bytes.NewBufferString("{"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	assert.Equal(t, http.StatusMethodNotAllowed, get(t, ts.URL+"/analyze").StatusCode)
	assert.Equal(t, http.StatusBadRequest, get(t, ts.URL+"/get_result").StatusCode)
}

func TestBatchRanking(t *testing.T) {
	s, ts := newTestServer(t)

	resp := post(t, ts.URL+"/batch", models.BatchRequest{
		Corpus: "sts",
		EPD:    corpus,
		Engines: []models.EngineSpec{
			{Name: "weak", MoveTime: 100},
			{Name: "strong", MoveTime: 100},
			{Name: "broken", MoveTime: 100},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var created struct {
		BatchID string   `json:"batch_id"`
		JobIDs  []string `json:"job_ids"`
	}
	decode(t, resp, &created)
	require.Len(t, created.JobIDs, 3)

	s.SubmitResult(models.Result{JobID: created.JobIDs[0], Run: models.RunResult{Engine: "weak", Score: 8, TopOne: 0}})
	s.SubmitResult(models.Result{JobID: created.JobIDs[1], Run: models.RunResult{Engine: "strong", Score: 10, TopOne: 1}})
	s.SubmitResult(models.Result{JobID: created.JobIDs[1], Run: models.RunResult{Engine: "strong", Score: 10, TopOne: 1}})

	var status BatchStatus
	decode(t, get(t, ts.URL+"/get_batch?batch_id="+created.BatchID), &status)
	assert.Equal(t, "sts", status.Corpus)
	assert.Equal(t, 2, status.Completed)
	assert.Equal(t, 3, status.Total)
	require.Len(t, status.Ranking, 2)
	assert.Equal(t, "strong", status.Ranking[0].Engine)

	s.SubmitResult(models.Result{JobID: created.JobIDs[2], Error: "engine: start: not found"})
	batch, ok := s.GetBatch(created.BatchID)
	require.True(t, ok)
	assert.Equal(t, 3, batch.Completed)
	assert.Len(t, batch.Ranking(), 2)

	assert.Equal(t, http.StatusNotFound, get(t, ts.URL+"/get_batch?batch_id=nope").StatusCode)
}

func TestQueueFull(t *testing.T) {
	s := NewServer(zerolog.Nop())
	s.jobs = make(chan models.Job, 2)

	_, err := s.AddJob(models.Job{EPD: corpus, Engine: models.EngineSpec{Name: "a"}})
	require.NoError(t, err)

	_, err = s.AddBatch(models.BatchRequest{EPD: corpus, Engines: []models.EngineSpec{{Name: "b"}, {Name: "c"}}})
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.Len(t, s.jobs, 1, "a batch is queued whole or not at all")

	_, err = s.AddJob(models.Job{EPD: corpus, Engine: models.EngineSpec{Name: "b"}})
	require.NoError(t, err)
	_, err = s.AddJob(models.Job{EPD: corpus, Engine: models.EngineSpec{Name: "c"}})
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestBatchRejectsEnginePath(t *testing.T) {
	s := NewServer(zerolog.Nop())

	_, err := s.AddBatch(models.BatchRequest{EPD: corpus, Engines: []models.EngineSpec{
		{Name: "a"},
		{Name: "b", Path: "/bin/sh", Args: []string{"-c", "true"}},
	}})
	assert.Error(t, err)
	assert.Empty(t, s.jobs)

	queued, running := s.QueueStatus()
	assert.Empty(t, queued)
	assert.Empty(t, running)
}
