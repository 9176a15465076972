package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMateToCentipawns(t *testing.T) {
	assert.Equal(t, 31999, MateToCentipawns(1))
	assert.Equal(t, 31997, MateToCentipawns(2))
	assert.Equal(t, -31998, MateToCentipawns(-1))
	assert.Equal(t, -31996, MateToCentipawns(-2))
	assert.Equal(t, 0, MateToCentipawns(0))

	for d := 1; d < 50; d++ {
		assert.Greater(t, MateToCentipawns(d), MateToCentipawns(d+1))
		assert.Less(t, MateToCentipawns(-d), MateToCentipawns(-d-1))
		assert.Less(t, MateToCentipawns(-d-1), 0)
	}
}

func TestParseUCI(t *testing.T) {
	tests := []struct {
		line string
		want []Event
	}{
		{"uciok", []Event{Identified{}}},
		{"readyok", []Event{Ready{}}},
		{"bestmove e2e4 ponder e7e5", []Event{BestMove{Move: "e2e4"}}},
		{"bestmove", []Event{Other{Line: "bestmove"}}},
		{"id name Fake 1.0", []Event{Other{Line: "id name Fake 1.0"}}},
		{"info depth 12 seldepth 18 score cp 31 nodes 1000 pv e2e4 e7e5", []Event{
			DepthReport{Depth: 12},
			ScoreReport{Score: 31},
		}},
		{"info depth 7 seldepth 9 multipv 2 score mate 3 nodes 77 pv d1h5 g7g6", []Event{
			LineReport{Depth: 7, Line: 2, Score: 31995, Move: "d1h5"},
			DepthReport{Depth: 7},
			ScoreReport{Score: 31995, Mate: true},
		}},
		{"info depth 7 multipv 1 score cp 20 lowerbound nodes 77 pv d1h5", []Event{
			DepthReport{Depth: 7},
			ScoreReport{Score: 20, Bound: true},
		}},
		{"info depth 2 multipv 2 score cp 22 pv g1f3 d7d5 bestmove e2e4", []Event{
			LineReport{Depth: 2, Line: 2, Score: 22, Move: "g1f3"},
			DepthReport{Depth: 2},
			ScoreReport{Score: 22},
			BestMove{Move: "e2e4"},
		}},
		{"info string bestmove e2e4", []Event{Other{Line: "info string bestmove e2e4"}}},
		{"info depth 3 currmove e2e4 currmovenumber 1", []Event{DepthReport{Depth: 3}}},
		{"info score cp -45", []Event{ScoreReport{Score: -45}}},
		{"info nodes 100 nps 2000", []Event{Other{Line: "info nodes 100 nps 2000"}}},
		{"info string depth 3 score cp 1", []Event{Other{Line: "info string depth 3 score cp 1"}}},
		{"info depth x score cp y", []Event{Other{Line: "info depth x score cp y"}}},
		{"", []Event{Other{Line: ""}}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseUCI(tt.line), tt.line)
	}
}

func TestParseXboard(t *testing.T) {
	assert.Equal(t, []Event{BestMove{Move: "e2e4"}}, ParseXboard("move e2e4"))
	assert.Equal(t, []Event{BestMove{Move: "Nf3"}}, ParseXboard("move Nf3"))
	assert.Equal(t, []Event{FeaturesDone{}}, ParseXboard("feature setboard=1 ping=1 done=1"))
	assert.Equal(t, []Event{Other{Line: "feature done=0"}}, ParseXboard("feature done=0"))
	assert.Equal(t, []Event{Other{Line: "Illegal move: e2e5"}}, ParseXboard("Illegal move: e2e5"))
	assert.Equal(t, []Event{Other{Line: "1. e4"}}, ParseXboard("1. e4"))
}
