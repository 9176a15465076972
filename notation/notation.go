// Package notation translates engine coordinate moves into SAN.
package notation

import (
	"fmt"
	"strings"

	"github.com/notnil/chess"
)

// Service converts a coordinate move (e2e4, e7e8q) played in fen to SAN.
type Service interface {
	ToAlgebraic(fen, move string) (string, error)
}

// Chess is the Service backed by github.com/notnil/chess.
type Chess struct{}

func (Chess) ToAlgebraic(fen, move string) (string, error) {
	pos, err := position(fen)
	if err != nil {
		return "", err
	}
	move = strings.ToLower(strings.TrimSpace(move))
	for _, m := range pos.ValidMoves() {
		if m.String() == move {
			return chess.AlgebraicNotation{}.Encode(pos, m), nil
		}
	}
	return "", fmt.Errorf("notation: move %q is not legal in %q", move, fen)
}

// Validate reports whether fen describes a position the library accepts.
func Validate(fen string) error {
	_, err := position(fen)
	return err
}

func position(fen string) (*chess.Position, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("notation: %w", err)
	}
	return chess.NewGame(opt).Position(), nil
}
