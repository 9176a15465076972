package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fill(b *Buffer, depth, lines int) {
	for i := 1; i <= lines; i++ {
		b.Add(SearchLine{Depth: depth, Line: i, Score: 100 - i, Move: "m" + string(rune('0'+i))})
	}
}

func lineIndexes(t *testing.T, res []map[int]SearchLine) (depths, indexes []int) {
	for i, m := range res {
		require.Len(t, m, 1)
		v, ok := m[i+1]
		require.True(t, ok)
		depths = append(depths, v.Depth)
		indexes = append(indexes, v.Line)
	}
	return
}

func TestReduceAllComplete(t *testing.T) {
	b := NewBuffer()
	for d := 1; d <= 5; d++ {
		fill(b, d, 3)
	}
	depths, indexes := lineIndexes(t, b.Reduce())
	assert.Equal(t, []int{5, 5, 5}, depths)
	assert.Equal(t, []int{1, 2, 3}, indexes)
}

func TestReduceStopsAtIncompleteDepth(t *testing.T) {
	b := NewBuffer()
	for d := 1; d <= 4; d++ {
		fill(b, d, 3)
	}
	fill(b, 5, 1)
	fill(b, 6, 3)
	depths, _ := lineIndexes(t, b.Reduce())
	assert.Equal(t, []int{4, 4, 4}, depths)
}

func TestReduceIncompleteDeepest(t *testing.T) {
	b := NewBuffer()
	fill(b, 1, 2)
	fill(b, 2, 2)
	fill(b, 3, 1)
	res := b.Reduce()
	require.Len(t, res, 2)
	assert.Equal(t, 2, res[0][1].Depth)
	assert.Equal(t, "m2", res[1][2].Move)
}

func TestReduceFirstDepthAboveOne(t *testing.T) {
	b := NewBuffer()
	fill(b, 3, 2)
	fill(b, 4, 2)
	depths, _ := lineIndexes(t, b.Reduce())
	assert.Equal(t, []int{4, 4}, depths)
}

func TestReduceDeepestBeyondLines(t *testing.T) {
	b := NewBuffer()
	fill(b, 1, 2)
	fill(b, 2, 2)
	b.Observe(3)
	assert.Empty(t, b.Reduce())
}

func TestResetAndEmpty(t *testing.T) {
	b := NewBuffer()
	assert.Nil(t, b.Reduce())
	fill(b, 1, 2)
	b.Reset()
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, 1, b.Deepest())
	assert.Nil(t, b.Reduce())
}
