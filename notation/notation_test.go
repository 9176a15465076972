package notation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func TestToAlgebraic(t *testing.T) {
	tests := []struct {
		fen, move, want string
	}{
		{startFEN, "e2e4", "e4"},
		{startFEN, "g1f3", "Nf3"},
		{startFEN, "G1F3", "Nf3"},
		{"5k2/8/8/8/8/8/8/4K2R w K - 0 1", "e1g1", "O-O+"},
		{"8/8/8/8/8/8/1p6/4K2k b - - 0 1", "b2b1q", "b1=Q+"},
	}
	for _, tt := range tests {
		got, err := Chess{}.ToAlgebraic(tt.fen, tt.move)
		require.NoError(t, err, tt.move)
		assert.Equal(t, tt.want, got, tt.move)
	}
}

func TestToAlgebraicIllegal(t *testing.T) {
	_, err := Chess{}.ToAlgebraic(startFEN, "e2e5")
	assert.Error(t, err)
	_, err = Chess{}.ToAlgebraic(startFEN, "(none)")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(startFEN))
	assert.Error(t, Validate("not a fen"))
}
