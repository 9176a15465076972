package movescore

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	table, err := Parse("Nd2=10, h3=7, Be2=6")
	require.NoError(t, err)
	assert.Equal(t, []Entry{{"Nd2", 10}, {"h3", 7}, {"Be2", 6}}, table.Entries())
	assert.Equal(t, "Nd2", table.Top())
	assert.Equal(t, "Nd2=10, h3=7, Be2=6", table.String())
}

func TestPromotion(t *testing.T) {
	table, err := Parse("b1=Q=77, Kc2=30")
	require.NoError(t, err)
	e := table.Entries()[0]
	assert.Equal(t, "b1=Q", e.Move)
	assert.Equal(t, 77, e.Points)
	assert.Equal(t, 1, strings.Count(e.Move, "="))
	assert.Equal(t, 77, table.ScoreFor("b1=Q"))
}

func TestMaxAttainableIsFirstEntry(t *testing.T) {
	for _, annotation := range []string{
		"e4=3",
		"e4=3, d4=10",
		"Rxf7=1, Qh5=2, g4=9, a3=0",
	} {
		table, err := Parse(annotation)
		require.NoError(t, err)
		assert.Equal(t, table.Entries()[0].Points, table.MaxAttainable(), annotation)
	}
}

func TestLookup(t *testing.T) {
	table, err := Parse("g5=10, Bd4=4, Kg8=4, Rd8=3")
	require.NoError(t, err)

	assert.True(t, table.IsTopMove("g5"))
	assert.False(t, table.IsTopMove("Bd4"))
	assert.Equal(t, 4, table.ScoreFor("Kg8"))
	assert.Equal(t, 0, table.ScoreFor("a4"))
	assert.False(t, table.IsTopMove("a4"))
}

func TestParseErrors(t *testing.T) {
	for _, annotation := range []string{
		"",
		"Nd2",
		"Nd2=x",
		"Nd2=-1",
		"=5",
		"a=b=c=1",
	} {
		_, err := Parse(annotation)
		assert.ErrorIs(t, err, ErrInvalidEntry, annotation)
	}
}
