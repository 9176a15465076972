package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jacokyle01/epd-analysis/engine"
	"github.com/jacokyle01/epd-analysis/epd"
	"github.com/jacokyle01/epd-analysis/models"
	"github.com/jacokyle01/epd-analysis/session"
	"github.com/rs/zerolog"
)

// ErrUnknownEngine means a job names an engine this worker has no local
// binary for.
var ErrUnknownEngine = errors.New("worker: no local engine")

// localEngine is a binary installed on the worker.
type localEngine struct {
	path string
	args []string
}

// Client represents a worker client. It only ever launches its own local
// engines; the path and args a job carries are ignored.
type Client struct {
	serverURL string
	fallback  localEngine // used for job engines not registered by name
	engines   map[string]localEngine
	http      *http.Client
	log       zerolog.Logger
	retryWait time.Duration
	idleWait  time.Duration
}

// NewClient creates a new worker client. enginePath, when not empty, runs
// every job whose engine name has no registered binary.
func NewClient(serverURL, enginePath string, log zerolog.Logger) *Client {
	return &Client{
		serverURL: strings.TrimSuffix(serverURL, "/"),
		fallback:  localEngine{path: enginePath},
		engines:   make(map[string]localEngine),
		http:      &http.Client{Timeout: 30 * time.Second},
		log:       log.With().Str("component", "worker").Logger(),
		retryWait: 5 * time.Second,
		idleWait:  2 * time.Second,
	}
}

// WithEngine registers the local binary used for jobs naming engine name.
func (c *Client) WithEngine(name, path string, args ...string) *Client {
	c.engines[name] = localEngine{path: path, args: args}
	return c
}

// resolve points spec at a local binary.
func (c *Client) resolve(spec models.EngineSpec) (models.EngineSpec, error) {
	local, ok := c.engines[spec.Name]
	if !ok {
		local = c.fallback
	}
	if local.path == "" {
		return spec, fmt.Errorf("%w: %q", ErrUnknownEngine, spec.Name)
	}
	spec.Path, spec.Args = local.path, local.args
	return spec, nil
}

// WorkLoop runs the main worker loop
func (c *Client) WorkLoop(ctx context.Context) {
	c.log.Info().Str("server", c.serverURL).Msg("starting worker")

	for {
		var wait time.Duration
		job, ok, err := c.fetchJob(ctx)
		switch {
		case err != nil:
			c.log.Error().Err(err).Msg("error getting job")
			wait = c.retryWait
		case !ok:
			c.log.Debug().Msg("no jobs available, waiting")
			wait = c.idleWait
		default:
			if err := c.submit(ctx, c.RunJob(ctx, job)); err != nil {
				c.log.Error().Err(err).Str("job", job.ID).Msg("error submitting result")
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

// fetchJob reports ok=false when the server has no work.
func (c *Client) fetchJob(ctx context.Context) (models.Job, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.serverURL+"/job", nil)
	if err != nil {
		return models.Job{}, false, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return models.Job{}, false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNoContent:
		return models.Job{}, false, nil
	case http.StatusOK:
	default:
		return models.Job{}, false, fmt.Errorf("worker: /job: %s", resp.Status)
	}

	var job models.Job
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		return models.Job{}, false, fmt.Errorf("worker: decoding job: %w", err)
	}
	return job, true, nil
}

// RunJob runs the job's engine over its corpus. Failures are reported in
// Result.Error so the server can close the job.
func (c *Client) RunJob(ctx context.Context, job models.Job) models.Result {
	var log = c.log.With().Str("job", job.ID).Str("engine", job.Engine.Name).Logger()
	log.Info().Msg("processing job")

	var res = models.Result{JobID: job.ID}
	cases, good, total, err := epd.Parse(strings.NewReader(job.EPD), log)
	res.Good, res.Total = good, total
	if err != nil {
		res.Error = err.Error()
		return res
	}

	spec, err := c.resolve(job.Engine)
	if err != nil {
		log.Warn().Err(err).Msg("job refused")
		res.Error = err.Error()
		return res
	}
	settings, err := engine.NewSettings(spec, job.Corpus)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	var records session.Collector
	d, err := engine.New(settings, session.New(log, &records))
	if err != nil {
		res.Error = err.Error()
		return res
	}
	run, err := d.RunCorpus(ctx, cases)
	res.Run = run
	res.Records = records.Records()
	if err != nil {
		log.Error().Err(err).Msg("run failed")
		res.Error = err.Error()
	}
	return res
}

func (c *Client) submit(ctx context.Context, result models.Result) error {
	body, err := json.Marshal(result)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL+"/result", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("worker: /result: %s", resp.Status)
	}
	c.log.Info().Str("job", result.JobID).Int("score", result.Run.Score).Int("max_score", result.Run.MaxScore).
		Msg("result submitted")
	return nil
}
