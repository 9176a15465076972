package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimeControl(t *testing.T) {
	tests := []struct {
		moveTime int
		st       bool
		name     string
		want     []string
	}{
		{500, true, "sf", []string{"st 0.5"}},
		{50, true, "sf", []string{"st 0.1"}},
		{1000, true, "sf", []string{"st 1"}},
		{3000, true, "sf", []string{"st 3"}},
		{1500, false, "sf", []string{"level 40 1 0", "time 6000"}},
		{500, false, "sf", []string{"level 40 0:20 0", "time 2000"}},
		{1600, false, "sf", []string{"level 40 1:04 0", "time 6400"}},
		{500, false, "EXchess 7.9", []string{"level 40 1 0", "time 2000"}},
		{3200, false, "exchess", []string{"level 40 2 0", "time 12800"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TimeControl(tt.moveTime, tt.st, tt.name), "%d %v %s", tt.moveTime, tt.st, tt.name)
	}
}
