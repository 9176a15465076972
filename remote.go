package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/jacokyle01/epd-analysis/config"
	"github.com/jacokyle01/epd-analysis/models"
	"github.com/jacokyle01/epd-analysis/primaryserver"
	"github.com/jacokyle01/epd-analysis/report"
	"github.com/jacokyle01/epd-analysis/worker"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const defaultServer = "http://localhost:8080"

func serverCmd(args []string) error {
	log, err := newLogger("info", nil)
	if err != nil {
		return err
	}
	port := ":8080"
	if len(args) > 0 {
		port = ":" + args[0]
	}
	return primaryserver.NewServer(log).StartServer(port)
}

func clientCmd(args []string) error {
	log, err := newLogger("info", nil)
	if err != nil {
		return err
	}
	serverURL, enginePath := defaultServer, ""
	if len(args) > 0 {
		serverURL = args[0]
	}
	if len(args) > 1 {
		enginePath = args[1]
	}

	client, err := newWorker(serverURL, enginePath, args[min(len(args), 2):], log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	client.WorkLoop(ctx)
	return nil
}

// newWorker registers each engine config file's engine under its name;
// enginePath serves every other engine name.
func newWorker(serverURL, enginePath string, engineFiles []string, log zerolog.Logger) (*worker.Client, error) {
	client := worker.NewClient(serverURL, enginePath, log)
	for _, path := range engineFiles {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		if err := config.ValidateEngine(cfg.Engine); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		client.WithEngine(cfg.Engine.Name, cfg.Engine.Path, cfg.Engine.Args...)
	}
	if enginePath == "" && len(engineFiles) == 0 {
		return nil, errors.New("client: no local engine")
	}
	return client, nil
}

// batchRequest builds a batch from an epd file and engine config files;
// each file contributes its "engine" block without path and args, which
// the workers supply.
func batchRequest(epdPath string, engineFiles []string) (models.BatchRequest, error) {
	data, err := os.ReadFile(epdPath)
	if err != nil {
		return models.BatchRequest{}, err
	}
	var req = models.BatchRequest{Corpus: corpusName(epdPath), EPD: string(data)}
	for _, path := range engineFiles {
		cfg, err := config.Load(path)
		if err != nil {
			return req, err
		}
		cfg.Engine.Path, cfg.Engine.Args = "", nil
		req.Engines = append(req.Engines, cfg.Engine)
	}
	if len(req.Engines) == 0 {
		return req, fmt.Errorf("%w: no engine config given", config.ErrInvalidConfig)
	}
	return req, nil
}

func postBatch(ctx context.Context, serverURL string, req models.BatchRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, serverURL+"/batch", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	hreq.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(hreq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("submit: %s", resp.Status)
	}
	var created struct {
		BatchID string `json:"batch_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", err
	}
	return created.BatchID, nil
}

// waitBatch polls until every job of the batch has a result.
func waitBatch(ctx context.Context, serverURL, batchID string, every time.Duration) (primaryserver.BatchStatus, error) {
	for {
		var status primaryserver.BatchStatus
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, serverURL+"/get_batch?batch_id="+batchID, nil)
		if err != nil {
			return status, err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return status, err
		}
		err = json.NewDecoder(resp.Body).Decode(&status)
		resp.Body.Close()
		if err != nil {
			return status, err
		}
		if status.Completed >= status.Total {
			return status, nil
		}
		select {
		case <-ctx.Done():
			return status, ctx.Err()
		case <-time.After(every):
		}
	}
}

func printBatch(status primaryserver.BatchStatus, epdPath string) error {
	var positions int
	for _, r := range status.Results {
		if r.Error == "" {
			positions = r.Good
			break
		}
	}
	fmt.Printf("Batch %s (%d/%d jobs)\n\n", status.ID, status.Completed, status.Total)
	if err := report.WriteSummary(os.Stdout, report.RunInfo{EPDPath: epdPath, Positions: positions}, status.Ranking); err != nil {
		return err
	}
	for _, id := range status.JobIDs {
		if r := status.Results[id]; r.Error != "" {
			fmt.Printf("job %s failed: %s\n", id, r.Error)
		}
	}
	return nil
}

func submitCmd(args []string) error {
	fs := flag.NewFlagSet("submit", flag.ContinueOnError)
	var (
		serverURL = fs.String("server", defaultServer, "server url")
		epdPath   = fs.String("epd", "", "input epd file")
		wait      = fs.Bool("wait", false, "wait for the batch and print its ranking")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	req, err := batchRequest(*epdPath, fs.Args())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	var url = strings.TrimSuffix(*serverURL, "/")
	batchID, err := postBatch(ctx, url, req)
	if err != nil {
		return err
	}
	fmt.Println("Submitted batch, ID:", batchID)
	if !*wait {
		return nil
	}
	status, err := waitBatch(ctx, url, batchID, 2*time.Second)
	if err != nil {
		return err
	}
	return printBatch(status, *epdPath)
}

// exampleCmd runs a server, one worker and a one-engine batch together and
// stops once the batch is done.
func exampleCmd(args []string) error {
	if len(args) < 2 {
		return errors.New("example: need engine path and epd file")
	}
	log, err := newLogger("info", nil)
	if err != nil {
		return err
	}

	var cfg = config.Default()
	cfg.Engine.Name = "example"
	data, err := os.ReadFile(args[1])
	if err != nil {
		return err
	}
	var req = models.BatchRequest{Corpus: corpusName(args[1]), EPD: string(data), Engines: []models.EngineSpec{cfg.Engine}}

	srv := &http.Server{Addr: "localhost:8080", Handler: primaryserver.NewServer(log).Handler()}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		worker.NewClient(defaultServer, "", log).WithEngine(cfg.Engine.Name, args[0]).WorkLoop(ctx)
		return nil
	})
	g.Go(func() error {
		defer cancel()
		defer srv.Close()
		// Wait for server to start
		time.Sleep(time.Second)
		batchID, err := postBatch(ctx, defaultServer, req)
		if err != nil {
			return err
		}
		log.Info().Str("batch", batchID).Msg("submitted batch")
		status, err := waitBatch(ctx, defaultServer, batchID, time.Second)
		if err != nil {
			return err
		}
		return printBatch(status, args[1])
	})
	return g.Wait()
}
