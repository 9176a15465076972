// Package engine drives an external chess engine over UCI or xboard across a
// whole EPD corpus and scores its moves.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jacokyle01/epd-analysis/config"
	"github.com/jacokyle01/epd-analysis/epd"
	"github.com/jacokyle01/epd-analysis/models"
	"github.com/jacokyle01/epd-analysis/notation"
	"github.com/jacokyle01/epd-analysis/scoring"
	"github.com/jacokyle01/epd-analysis/session"
	"github.com/jacokyle01/epd-analysis/timing"
	"github.com/rs/zerolog"
)

// Driver runs one engine process over a corpus. The process is started,
// configured and quit once per call.
type Driver interface {
	RunCorpus(ctx context.Context, cases []epd.TestCase) (models.RunResult, error)
}

// Settings is an EngineSpec with its option string parsed.
type Settings struct {
	models.EngineSpec
	Opts       config.Options
	Corpus     string // corpus name used in multipv record ids
	QuitGrace  time.Duration
	StopMargin timing.Margin
	Auditor    timing.Auditor
}

func NewSettings(spec models.EngineSpec, corpus string) (Settings, error) {
	if err := config.ValidateEngine(spec); err != nil {
		return Settings{}, err
	}
	opts, err := config.ParseOptions(spec.Options)
	if err != nil {
		return Settings{}, err
	}
	var grace = time.Duration(spec.QuitGrace) * time.Millisecond
	if grace <= 0 {
		grace = 5 * time.Second
	}
	return Settings{
		EngineSpec: spec,
		Opts:       opts,
		Corpus:     corpus,
		QuitGrace:  grace,
		StopMargin: timing.StopMargin,
		Auditor:    timing.NewAuditor(),
	}, nil
}

// MultiPV reports the number of lines requested; multi-line mode is >= 2.
func (s Settings) MultiPV() int {
	if s.Opts.MultiPV < 1 {
		return 1
	}
	return s.Opts.MultiPV
}

func New(s Settings, sess *session.Context) (Driver, error) {
	var b = base{
		settings: s,
		sess:     sess,
		log:      sess.Log.With().Str("engine", s.Name).Str("protocol", s.Protocol).Logger(),
		scorer:   scoring.New(s.Name),
	}
	switch s.Protocol {
	case config.ProtocolUCI:
		return newUCI(b), nil
	case config.ProtocolXboard:
		return &xboardDriver{base: b}, nil
	}
	return nil, fmt.Errorf("%w: unknown protocol %q", config.ErrInvalidConfig, s.Protocol)
}

// dialect is the protocol specific part of a driver.
type dialect interface {
	handshake(ctx context.Context) error
	analyze(ctx context.Context, n int, tc epd.TestCase) error
}

// base holds what both protocol drivers share.
type base struct {
	settings Settings
	sess     *session.Context
	log      zerolog.Logger
	scorer   *scoring.Scorer
	proc     *process
}

// run is the corpus loop shared by both protocols: start, handshake, one
// analyze per position, quit. A position whose stream ended is abandoned and
// the loop moves on; any other error ends the run.
func (b *base) run(ctx context.Context, d dialect, cases []epd.TestCase, audit bool) (models.RunResult, error) {
	if err := b.start(); err != nil {
		return b.scorer.Result(), err
	}
	if err := d.handshake(ctx); err != nil {
		b.stop()
		return b.scorer.Result(), fmt.Errorf("engine: %s handshake: %w", b.settings.Protocol, err)
	}

	var started = time.Now()
	for i, tc := range cases {
		err := d.analyze(ctx, i, tc)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrStreamEnded) {
			b.stop()
			return b.scorer.Result(), err
		}
		b.log.Warn().Err(err).Int("pos", i+1).Msg("position abandoned")
	}
	b.stop()
	return b.finish(started, len(cases), audit), nil
}

func (b *base) start() error {
	p, err := startProcess(b.settings.Path, b.settings.Args, b.settings.RunFromCwd, b.log)
	if err != nil {
		return err
	}
	b.proc = p
	return nil
}

// stop quits the engine; it is always gone afterwards.
func (b *base) stop() {
	if b.proc == nil {
		return
	}
	err := b.proc.close(b.settings.QuitGrace)
	switch {
	case errors.Is(err, ErrUnresponsive):
		b.log.Warn().Err(err).Msg("engine killed")
	case err != nil:
		b.log.Debug().Err(err).Msg("engine exited")
	default:
		b.log.Info().Msg("engine exited")
	}
	b.proc = nil
}

// finish builds the run result; the timing audit is added when audit is set.
func (b *base) finish(started time.Time, positions int, audit bool) models.RunResult {
	var res = b.scorer.Result()
	res.Rating = b.settings.Rating
	var elapsed = time.Since(started).Milliseconds()
	res.ElapsedMs = elapsed
	if audit {
		var expected = int64(b.settings.MoveTime) * int64(positions)
		var out = b.settings.Auditor.Classify(expected, elapsed, positions)
		res.Outcome = &out
		b.log.Info().
			Str("class", string(out.Class)).
			Int64("expected_ms", out.ExpectedMs).
			Int64("actual_ms", out.ActualMs).
			Int64("margin_per_pos_ms", out.MarginPerPositionMs).
			Int64("margin_ms", out.MarginMs).
			Msg("time allocation")
	}
	b.log.Info().Int("top1", res.TopOne).Int("score", res.Score).Int("max_score", res.MaxScore).
		Int("attempted", res.Attempted).Int64("elapsed_ms", elapsed).Msg("run finished")
	return res
}

// toSAN converts an engine move; an unconvertible move is kept as sent,
// so it cannot match a solution.
func (b *base) toSAN(fen, move string) string {
	san, err := b.sess.Notation.ToAlgebraic(fen, move)
	if err != nil {
		b.log.Warn().Err(err).Str("move", move).Msg("cannot convert move to san")
		return move
	}
	return san
}

func (b *base) score(tc epd.TestCase, move string) {
	var points = b.scorer.Score(tc.Solutions, move)
	if tc.Solutions.IsTopMove(move) {
		b.log.Info().Msg("top 1 move")
	}
	var res = b.scorer.Result()
	b.log.Info().Int("points", points).Int("total", res.Score).Int("max", res.MaxScore).
		Float64("rate", res.ScoreRate()).Msg("score update")
}

func (b *base) emit(rec models.PositionRecord) {
	if err := b.sess.Records.WriteRecord(rec); err != nil {
		b.log.Error().Err(err).Msg("write record")
	}
}

func (b *base) logPosition(n int, tc epd.TestCase) {
	b.log.Info().Int("pos", n+1).Str("epd", tc.Raw).Str("id", tc.ID).Str("fen", tc.Position).
		Str("solutions", tc.Solutions.String()).Msg("position")
	if err := notation.Validate(tc.Position); err != nil {
		b.log.Warn().Err(err).Msg("engine moves for this position cannot be converted to san")
	}
}
