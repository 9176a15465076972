package engine

import (
	"strconv"
	"strings"
)

// Event is one classified engine output line. A line may yield several.
type Event interface {
	event()
}

// Identified is uciok.
type Identified struct{}

// Ready is readyok.
type Ready struct{}

// FeaturesDone is an xboard "feature ... done=1".
type FeaturesDone struct{}

type DepthReport struct{ Depth int }

// ScoreReport carries centipawns; mate scores are already converted.
type ScoreReport struct {
	Score int
	Mate  bool
	Bound bool
}

// LineReport is a complete multipv line with its first pv move.
type LineReport struct {
	Depth, Line, Score int
	Move               string
}

type BestMove struct{ Move string }

type Other struct{ Line string }

func (Identified) event()   {}
func (Ready) event()        {}
func (FeaturesDone) event() {}
func (DepthReport) event()  {}
func (ScoreReport) event()  {}
func (LineReport) event()   {}
func (BestMove) event()     {}
func (Other) event()        {}

// MateToCentipawns maps a signed UCI "score mate m" to a centipawn value:
// 32001-2m when the engine mates, -32000-2m when it is mated. The losing
// branch uses the signed m, so mate -1 is -31998 and mate -5 is -31990.
func MateToCentipawns(m int) int {
	switch {
	case m > 0:
		return 32001 - 2*m
	case m < 0:
		return -32000 - 2*m
	}
	return 0
}

// ParseUCI classifies a UCI engine line.
func ParseUCI(line string) []Event {
	var f = strings.Fields(line)
	if len(f) == 0 {
		return []Event{Other{Line: line}}
	}
	switch f[0] {
	case "uciok":
		return []Event{Identified{}}
	case "readyok":
		return []Event{Ready{}}
	case "bestmove":
		if len(f) >= 2 {
			return []Event{BestMove{Move: f[1]}}
		}
	case "info":
		var evs = parseInfo(f[1:])
		if bm, ok := trailingBestMove(f[1:]); ok {
			evs = append(evs, bm)
		}
		if len(evs) > 0 {
			return evs
		}
	}
	return []Event{Other{Line: line}}
}

func parseInfo(f []string) []Event {
	var (
		depth, multipv, score int
		hasDepth, hasMultiPV  bool
		hasScore, mate, bound bool
		pv                    string
	)
loop:
	for i := 0; i < len(f); i++ {
		switch f[i] {
		case "depth":
			if n, ok := intAt(f, i+1); ok {
				depth, hasDepth = n, true
				i++
			}
		case "multipv":
			if n, ok := intAt(f, i+1); ok {
				multipv, hasMultiPV = n, true
				i++
			}
		case "score":
			if i+2 >= len(f) {
				continue
			}
			n, ok := intAt(f, i+2)
			if !ok {
				continue
			}
			switch f[i+1] {
			case "cp":
				score, hasScore = n, true
			case "mate":
				score, hasScore, mate = MateToCentipawns(n), true, true
			default:
				continue
			}
			i += 2
		case "lowerbound", "upperbound":
			bound = true
		case "pv":
			if i+1 < len(f) {
				pv = f[i+1]
			}
			break loop
		case "string":
			break loop
		}
	}

	var evs []Event
	if hasDepth && hasScore && hasMultiPV && pv != "" && !bound && depth > 0 && multipv > 0 {
		evs = append(evs, LineReport{Depth: depth, Line: multipv, Score: score, Move: pv})
	}
	if hasDepth {
		evs = append(evs, DepthReport{Depth: depth})
	}
	if hasScore {
		evs = append(evs, ScoreReport{Score: score, Mate: mate, Bound: bound})
	}
	return evs
}

// trailingBestMove finds a bestmove some engines print on the end of their
// last info line. Text after "info string" is free form and not searched.
func trailingBestMove(f []string) (BestMove, bool) {
	for i, tok := range f {
		switch tok {
		case "string":
			return BestMove{}, false
		case "bestmove":
			if i+1 < len(f) {
				return BestMove{Move: f[i+1]}, true
			}
		}
	}
	return BestMove{}, false
}

func intAt(f []string, i int) (int, bool) {
	if i >= len(f) {
		return 0, false
	}
	n, err := strconv.Atoi(f[i])
	return n, err == nil
}

// ParseXboard classifies an xboard engine line.
func ParseXboard(line string) []Event {
	var f = strings.Fields(line)
	if len(f) == 2 && f[0] == "move" {
		return []Event{BestMove{Move: f[1]}}
	}
	for _, tok := range f {
		if tok == "done=1" {
			return []Event{FeaturesDone{}}
		}
	}
	return []Event{Other{Line: line}}
}
