package engine

import (
	"context"
	"time"

	"github.com/jacokyle01/epd-analysis/epd"
	"github.com/jacokyle01/epd-analysis/models"
)

// xboardDriver trusts the engine to honour the clock it is given; there is
// no stop in this protocol mode.
type xboardDriver struct {
	base
}

func (d *xboardDriver) RunCorpus(ctx context.Context, cases []epd.TestCase) (models.RunResult, error) {
	return d.run(ctx, d, cases, true)
}

func (d *xboardDriver) handshake(ctx context.Context) error {
	if err := d.proc.send("xboard"); err != nil {
		return err
	}
	if d.settings.Protover == 2 {
		if err := d.proc.send("protover 2"); err != nil {
			return err
		}
		if err := d.proc.await(ctx, ParseXboard, isEvent[FeaturesDone]); err != nil {
			return err
		}
	}
	return d.sendAll("post", "new", "hard", "easy")
}

func (d *xboardDriver) sendAll(cmds ...string) error {
	for _, cmd := range cmds {
		if err := d.proc.send(cmd); err != nil {
			return err
		}
	}
	return nil
}

func (d *xboardDriver) analyze(ctx context.Context, n int, tc epd.TestCase) error {
	d.logPosition(n, tc)

	var fen = tc.Position
	if err := d.sendAll("new", "force", "setboard "+fen); err != nil {
		return err
	}
	if err := d.sendAll(TimeControl(d.settings.MoveTime, d.settings.STMode, d.settings.Name)...); err != nil {
		return err
	}
	var goStart = time.Now()
	if err := d.proc.send("go"); err != nil {
		return err
	}

	var move string
	for move == "" {
		line, err := d.proc.readLine(ctx, 0)
		if err != nil {
			return err
		}
		if bm, ok := findEvent[BestMove](ParseXboard(line)); ok {
			d.log.Debug().Msg("<< " + line)
			move = bm.Move
		}
	}

	var san = move
	if !d.settings.SAN {
		san = d.toSAN(fen, move)
	}
	d.log.Info().Int64("elapsed_ms", time.Since(goStart).Milliseconds()).Str("bestmove", san).Msg("search done")
	d.score(tc, san)

	if d.settings.MultiPV() == 1 {
		d.emit(models.PositionRecord{EPD: tc.EPD(), BestMove: san})
	}
	return nil
}
