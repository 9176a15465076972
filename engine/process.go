package engine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrStreamEnded means the engine closed its output, or its input could
	// no longer be written, before the expected reply arrived.
	ErrStreamEnded = errors.New("engine: stream ended")
	// ErrUnresponsive means the engine did not exit after quit and was killed.
	ErrUnresponsive = errors.New("engine: did not exit after quit")

	errReadTimeout = errors.New("engine: read timeout")
)

// process wraps the engine child process. Output (stdout and stderr merged)
// is read by one goroutine into lines so reads can time out.
type process struct {
	cmd   *exec.Cmd
	stdin *bufio.Writer
	pipe  io.WriteCloser
	lines chan string
	g     errgroup.Group
	log   zerolog.Logger
}

func startProcess(path string, args []string, fromCwd bool, log zerolog.Logger) (*process, error) {
	if strings.ContainsAny(path, `/\`) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}
	cmd := exec.Command(path, args...)
	// Engines look for nets, books and ini files next to the binary.
	if !fromCwd && filepath.IsAbs(path) {
		cmd.Dir = filepath.Dir(path)
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("engine: start %s: %w", path, err)
	}
	log.Info().Str("path", path).Int("pid", cmd.Process.Pid).Msg("engine started")

	p := &process{
		cmd:   cmd,
		stdin: bufio.NewWriter(stdin),
		pipe:  stdin,
		lines: make(chan string, 256),
		log:   log,
	}
	p.g.Go(func() error {
		defer close(p.lines)
		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			p.lines <- strings.TrimSpace(scanner.Text())
		}
		return scanner.Err()
	})
	return p, nil
}

func (p *process) send(cmd string) error {
	p.log.Debug().Msg(">> " + cmd)
	if _, err := p.stdin.WriteString(cmd + "\n"); err != nil {
		return fmt.Errorf("%w: write %q: %v", ErrStreamEnded, cmd, err)
	}
	if err := p.stdin.Flush(); err != nil {
		return fmt.Errorf("%w: write %q: %v", ErrStreamEnded, cmd, err)
	}
	return nil
}

// readLine waits for the next output line. A timeout <= 0 waits until a
// line arrives, the stream ends or ctx is done.
func (p *process) readLine(ctx context.Context, timeout time.Duration) (string, error) {
	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}
	select {
	case line, ok := <-p.lines:
		if !ok {
			return "", ErrStreamEnded
		}
		p.log.Trace().Msg("<< " + line)
		return line, nil
	case <-expired:
		return "", errReadTimeout
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// await reads lines until want matches one of the events parse produces.
func (p *process) await(ctx context.Context, parse func(string) []Event, want func(Event) bool) error {
	for {
		line, err := p.readLine(ctx, 0)
		if err != nil {
			return err
		}
		for _, ev := range parse(line) {
			if want(ev) {
				p.log.Debug().Msg("<< " + line)
				return nil
			}
		}
	}
}

// close sends quit and waits up to grace for the engine to exit, draining
// its output meanwhile. After grace the engine is killed and reaped.
func (p *process) close(grace time.Duration) error {
	if err := p.send("quit"); err != nil {
		p.log.Debug().Err(err).Msg("quit not delivered")
	}
	p.pipe.Close()

	exited := make(chan error, 1)
	go func() {
		err := p.g.Wait()
		if werr := p.cmd.Wait(); werr != nil {
			err = werr
		}
		exited <- err
	}()

	timer := time.NewTimer(grace)
	defer timer.Stop()
	var lines = p.lines
	var killed bool
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			p.log.Trace().Msg("<< " + line)
		case err := <-exited:
			if killed {
				return ErrUnresponsive
			}
			return err
		case <-timer.C:
			p.log.Warn().Dur("grace", grace).Msg("engine is terminated by kill")
			killed = true
			if err := p.cmd.Process.Kill(); err != nil {
				p.log.Error().Err(err).Msg("kill")
			}
		}
	}
}
