package engine

import (
	"fmt"
	"strings"
)

// levelPeriod is the number of moves in one xboard level cycle.
const levelPeriod = 40

// TimeControl returns the xboard commands that give the engine moveTimeMs
// for its next move: "st" seconds, or a 40 move "level" sized so that the
// average move gets moveTimeMs, followed by the matching "time" in
// centiseconds.
func TimeControl(moveTimeMs int, stMode bool, engineName string) []string {
	if stMode {
		var secs = float64(moveTimeMs) / 1000
		if moveTimeMs < 1000 {
			return []string{fmt.Sprintf("st %.1f", secs)}
		}
		return []string{fmt.Sprintf("st %.0f", secs)}
	}

	var totalMs = levelPeriod * moveTimeMs
	var minutes, secMs = totalMs / 60000, totalMs % 60000
	var level string
	switch {
	case secMs == 0:
		level = fmt.Sprintf("level %d %d 0", levelPeriod, minutes)
	case strings.Contains(strings.ToLower(engineName), "exchess"):
		// EXchess rejects min:sec in level.
		level = fmt.Sprintf("level %d %d 0", levelPeriod, max(1, minutes))
	default:
		level = fmt.Sprintf("level %d %d:%02d 0", levelPeriod, minutes, secMs/1000)
	}
	return []string{level, fmt.Sprintf("time %d", totalMs/10)}
}
