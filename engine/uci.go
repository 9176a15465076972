package engine

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jacokyle01/epd-analysis/epd"
	"github.com/jacokyle01/epd-analysis/models"
	"github.com/jacokyle01/epd-analysis/telemetry"
)

type uciDriver struct {
	base
	lines *telemetry.Buffer
}

func newUCI(b base) *uciDriver {
	return &uciDriver{base: b, lines: telemetry.NewBuffer()}
}

func (d *uciDriver) RunCorpus(ctx context.Context, cases []epd.TestCase) (models.RunResult, error) {
	return d.run(ctx, d, cases, d.settings.Opts.Depth <= 0)
}

func (d *uciDriver) handshake(ctx context.Context) error {
	if err := d.proc.send("uci"); err != nil {
		return err
	}
	if err := d.proc.await(ctx, ParseUCI, isEvent[Identified]); err != nil {
		return err
	}
	if err := d.setOption(ctx, "Threads", strconv.Itoa(d.settings.Threads)); err != nil {
		return err
	}
	if err := d.setOption(ctx, "Hash", strconv.Itoa(d.settings.Hash)); err != nil {
		return err
	}
	for _, o := range d.settings.Opts.Engine {
		if err := d.setOption(ctx, o.Name, o.Value); err != nil {
			return err
		}
	}
	return nil
}

// setOption waits for readyok after every option; some engines apply
// options such as Hash asynchronously.
func (d *uciDriver) setOption(ctx context.Context, name, value string) error {
	if err := d.proc.send(fmt.Sprintf("setoption name %s value %s", name, value)); err != nil {
		return err
	}
	return d.ready(ctx)
}

func (d *uciDriver) ready(ctx context.Context) error {
	if err := d.proc.send("isready"); err != nil {
		return err
	}
	return d.proc.await(ctx, ParseUCI, isEvent[Ready])
}

// goCommand picks the search limits. openEnded is set for go infinite,
// which the driver stops itself.
func (d *uciDriver) goCommand() (cmd string, openEnded bool) {
	var mt, depth = d.settings.MoveTime, d.settings.Opts.Depth
	switch {
	case depth > 0 && mt <= 0:
		return fmt.Sprintf("go depth %d", depth), false
	case depth > 0:
		return fmt.Sprintf("go movetime %d depth %d", mt, depth), false
	case d.settings.Infinite:
		return "go infinite", true
	}
	return fmt.Sprintf("go movetime %d", mt), false
}

func (d *uciDriver) analyze(ctx context.Context, n int, tc epd.TestCase) error {
	d.logPosition(n, tc)
	d.lines.Reset()
	defer d.lines.Reset()

	var fen = tc.Position
	if err := d.proc.send("ucinewgame"); err != nil {
		return err
	}
	if err := d.ready(ctx); err != nil {
		return err
	}
	if err := d.proc.send("position fen " + fen); err != nil {
		return err
	}

	cmd, openEnded := d.goCommand()
	var dl = deadline{
		moveTime:  time.Duration(d.settings.MoveTime) * time.Millisecond,
		margin:    time.Duration(d.settings.StopMargin.For(int64(d.settings.MoveTime))) * time.Millisecond,
		openEnded: openEnded,
	}
	var goStart = time.Now()
	if err := d.proc.send(cmd); err != nil {
		return err
	}

	var (
		multi    = d.settings.MultiPV() >= 2
		depth    int
		score    = -32000
		stopSent bool
		move     string
	)
	for move == "" {
		line, err := d.proc.readLine(ctx, dl.wait(time.Since(goStart), stopSent))
		switch {
		case errors.Is(err, errReadTimeout):
		case err != nil:
			return err
		default:
			var evs = ParseUCI(line)
			var lr, isLine = findEvent[LineReport](evs)
			if multi && isLine {
				d.log.Debug().Msg("<< " + line)
				d.lines.Add(telemetry.SearchLine{
					Depth: lr.Depth,
					Line:  lr.Line,
					Score: lr.Score,
					Move:  d.toSAN(fen, lr.Move),
				})
				depth, score = lr.Depth, lr.Score
			} else {
				for _, ev := range evs {
					switch ev := ev.(type) {
					case DepthReport:
						depth = ev.Depth
					case ScoreReport:
						score = ev.Score
					}
				}
			}
			if bm, ok := findEvent[BestMove](evs); ok {
				d.log.Debug().Msg("<< " + line)
				move = bm.Move
				continue
			}
		}
		if !stopSent && dl.due(time.Since(goStart)) {
			stopSent = true
			if err := d.proc.send("stop"); err != nil {
				return err
			}
		}
	}

	var san = d.toSAN(fen, move)
	d.log.Info().Int64("elapsed_ms", time.Since(goStart).Milliseconds()).Str("bestmove", san).Msg("search done")
	d.score(tc, san)

	if !multi {
		d.emit(models.PositionRecord{EPD: tc.EPD(), BestMove: san, Score: score, Depth: depth, HasEval: true})
		return nil
	}
	for i, entry := range d.lines.Reduce() {
		for _, l := range entry {
			d.emit(models.PositionRecord{
				EPD:      tc.EPD(),
				ID:       fmt.Sprintf("%s pos %d MultiPV=%d", d.settings.Corpus, n+1, i+1),
				BestMove: l.Move,
				Score:    l.Score,
				Depth:    l.Depth,
				HasEval:  true,
			})
		}
	}
	return nil
}

// deadline decides when a running search gets a stop.
type deadline struct {
	moveTime  time.Duration
	margin    time.Duration
	openEnded bool
}

// due reports whether stop should be sent: an open-ended search is stopped
// after two thirds of the move time, any timed search once it overruns the
// move time by the margin.
func (dl deadline) due(elapsed time.Duration) bool {
	if dl.moveTime <= 0 {
		return false
	}
	if dl.openEnded && elapsed > dl.moveTime*2/3 {
		return true
	}
	return elapsed >= dl.moveTime+dl.margin
}

// wait is the read timeout until the next deadline, 0 when none is pending.
func (dl deadline) wait(elapsed time.Duration, stopped bool) time.Duration {
	if stopped || dl.moveTime <= 0 {
		return 0
	}
	var next = dl.moveTime + dl.margin
	if dl.openEnded {
		if soft := dl.moveTime*2/3 + time.Millisecond; soft < next {
			next = soft
		}
	}
	if w := next - elapsed; w > 0 {
		return w
	}
	return time.Millisecond
}

func isEvent[T Event](ev Event) bool {
	_, ok := ev.(T)
	return ok
}

func findEvent[T Event](evs []Event) (T, bool) {
	for _, ev := range evs {
		if t, ok := ev.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}
