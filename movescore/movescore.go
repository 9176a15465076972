// Package movescore parses weighted solution annotations such as
// "Nd2=10, h3=7, Be2=6" into an ordered move to points table.
package movescore

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidEntry = errors.New("movescore: invalid entry")

// Entry is one solution move and the points it is worth.
type Entry struct {
	Move   string
	Points int
}

// Table keeps entries in annotation order. The first entry is the top move.
type Table struct {
	entries []Entry
}

// Parse builds a table from a comma separated list of move=points pairs.
// A promotion written with its own "=" (b1=Q=77) keeps "b1=Q" as the move.
func Parse(annotation string) (Table, error) {
	var t Table
	for _, field := range strings.Split(annotation, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		e, err := parseEntry(field)
		if err != nil {
			return Table{}, err
		}
		t.entries = append(t.entries, e)
	}
	if len(t.entries) == 0 {
		return Table{}, fmt.Errorf("%w: no moves in %q", ErrInvalidEntry, annotation)
	}
	return t, nil
}

func parseEntry(field string) (Entry, error) {
	var move, points string
	switch parts := strings.Split(field, "="); len(parts) {
	case 2:
		move, points = parts[0], parts[1]
	case 3:
		move, points = parts[0]+"="+parts[1], parts[2]
	default:
		return Entry{}, fmt.Errorf("%w: %q", ErrInvalidEntry, field)
	}
	move = strings.TrimSpace(move)
	n, err := strconv.Atoi(strings.TrimSpace(points))
	if move == "" || err != nil || n < 0 {
		return Entry{}, fmt.Errorf("%w: %q", ErrInvalidEntry, field)
	}
	return Entry{Move: move, Points: n}, nil
}

func (t Table) Entries() []Entry {
	return append([]Entry(nil), t.entries...)
}

func (t Table) Len() int { return len(t.entries) }

// Top returns the intended best move, "" for an empty table.
func (t Table) Top() string {
	if len(t.entries) == 0 {
		return ""
	}
	return t.entries[0].Move
}

// MaxAttainable is the points of the first entry.
func (t Table) MaxAttainable() int {
	if len(t.entries) == 0 {
		return 0
	}
	return t.entries[0].Points
}

// Lookup scans entries in order and reports the first match.
func (t Table) Lookup(move string) (e Entry, index int, ok bool) {
	for i, e := range t.entries {
		if e.Move == move {
			return e, i, true
		}
	}
	return Entry{}, -1, false
}

func (t Table) ScoreFor(move string) int {
	e, _, _ := t.Lookup(move)
	return e.Points
}

func (t Table) IsTopMove(move string) bool {
	_, i, ok := t.Lookup(move)
	return ok && i == 0
}

func (t Table) String() string {
	var sb strings.Builder
	for i, e := range t.entries {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s=%d", e.Move, e.Points)
	}
	return sb.String()
}
