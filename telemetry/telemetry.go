// Package telemetry collects multipv search lines reported during one search
// and picks the deepest depth at which every line was reported.
package telemetry

import "sort"

// SearchLine is one "info ... multipv" observation.
type SearchLine struct {
	Depth int    `json:"depth"`
	Line  int    `json:"multipv"`
	Score int    `json:"score"`
	Move  string `json:"bm"` // first pv move, SAN
}

type Key struct {
	Depth int
	Line  int
}

// Reduce returns the lines of the last depth at which the engine reported
// as many lines as it did at its first reporting depth. A depth with fewer
// (but some) lines ends the scan; the depth before it is used. Each entry is
// a single key map from line index to line, ordered by line index.
func Reduce(buf map[Key]SearchLine, deepest int) []map[int]SearchLine {
	if len(buf) == 0 {
		return nil
	}
	var counts = make(map[int]int)
	var first = 0
	for k := range buf {
		counts[k.Depth]++
		if first == 0 || k.Depth < first {
			first = k.Depth
		}
	}
	var want = counts[first]

	var complete = deepest
	for d := 1; d <= deepest; d++ {
		if n := counts[d]; n != 0 && n < want {
			complete = d - 1
			break
		}
	}

	var lines []SearchLine
	for k, v := range buf {
		if k.Depth == complete {
			lines = append(lines, v)
		}
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].Line < lines[j].Line })

	var result = make([]map[int]SearchLine, 0, len(lines))
	for _, l := range lines {
		result = append(result, map[int]SearchLine{l.Line: l})
	}
	return result
}

// Buffer accumulates lines for the position in flight.
type Buffer struct {
	lines   map[Key]SearchLine
	deepest int
}

func NewBuffer() *Buffer {
	return &Buffer{lines: make(map[Key]SearchLine), deepest: 1}
}

// Add records a line, replacing an earlier report of the same depth and index.
func (b *Buffer) Add(l SearchLine) {
	b.lines[Key{Depth: l.Depth, Line: l.Line}] = l
	b.Observe(l.Depth)
}

// Observe raises the deepest depth seen.
func (b *Buffer) Observe(depth int) {
	if depth > b.deepest {
		b.deepest = depth
	}
}

func (b *Buffer) Len() int { return len(b.lines) }

func (b *Buffer) Deepest() int { return b.deepest }

func (b *Buffer) Reduce() []map[int]SearchLine {
	return Reduce(b.lines, b.deepest)
}

func (b *Buffer) Reset() {
	b.lines = make(map[Key]SearchLine)
	b.deepest = 1
}
