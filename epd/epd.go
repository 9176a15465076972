// Package epd reads test suites whose positions carry weighted solution
// moves in a c0 field, e.g.
//
//	1kr5/3n4/q3p2p/p2n2p1/PppB1P2/5BP1/1P2Q2P/3R2K1 w - - bm f5; id "STS 1"; c0 "f5=10, Be5+=2, Bf2=3";
package epd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/jacokyle01/epd-analysis/models"
	"github.com/jacokyle01/epd-analysis/movescore"
	"github.com/rs/zerolog"
)

// TestCase is one position of the suite.
type TestCase struct {
	Position  string // fen with placeholder counters "0 1"
	ID        string
	Raw       string
	Solutions movescore.Table
}

// EPD returns the four-field position key.
func (tc TestCase) EPD() string { return Key(tc.Position) }

var (
	c0RE = regexp.MustCompile(`c0\s"(.*?)";`)
	idRE = regexp.MustCompile(`id\s"(.*?)";`)
)

// Parse reads the corpus line by line. Lines without a usable c0 annotation
// are logged and dropped; they count toward total but not good.
func Parse(r io.Reader, log zerolog.Logger) (cases []TestCase, good, total int, err error) {
	var scanner = bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var line = strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		total++
		tc, perr := ParseLine(line)
		if perr != nil {
			log.Warn().Int("line", total).Str("epd", line).Err(perr).Msg("position is not included")
			continue
		}
		log.Debug().Int("line", total).Str("fen", tc.Position).Str("id", tc.ID).
			Str("solutions", tc.Solutions.String()).Msg("epd position")
		cases = append(cases, tc)
		good++
	}
	if err = scanner.Err(); err != nil {
		return nil, 0, 0, fmt.Errorf("epd: read: %w", err)
	}
	return cases, good, total, nil
}

func ParseFile(path string, log zerolog.Logger) ([]TestCase, int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, err
	}
	defer f.Close()
	return Parse(f, log)
}

// ParseLine parses one record.
func ParseLine(line string) (TestCase, error) {
	var fields = strings.Fields(line)
	if len(fields) < 4 {
		return TestCase{}, fmt.Errorf("epd: expected 4 position fields")
	}
	m := c0RE.FindStringSubmatch(line)
	if m == nil {
		return TestCase{}, fmt.Errorf("epd: no c0 field")
	}
	// "positional scores are: Kf2=7, a4=3"
	var solutions = m[1]
	if strings.Contains(solutions, ":") {
		solutions = strings.Split(solutions, ":")[1]
	}
	table, err := movescore.Parse(strings.TrimSpace(solutions))
	if err != nil {
		return TestCase{}, err
	}
	var tc = TestCase{
		Position:  strings.Join(fields[:4], " ") + " 0 1",
		Raw:       line,
		Solutions: table,
	}
	if id := idRE.FindStringSubmatch(line); id != nil {
		tc.ID = id[1]
	}
	return tc, nil
}

// Key returns the first four fields of a fen or epd.
func Key(fen string) string {
	var fields = strings.Fields(fen)
	if len(fields) > 4 {
		fields = fields[:4]
	}
	return strings.Join(fields, " ")
}

// FormatRecord renders an analysed position as an epd line.
func FormatRecord(rec models.PositionRecord) string {
	var sb strings.Builder
	sb.WriteString(rec.EPD)
	if rec.ID != "" {
		fmt.Fprintf(&sb, " id \"%s\";", rec.ID)
	}
	fmt.Fprintf(&sb, " bm %s;", rec.BestMove)
	if rec.HasEval {
		fmt.Fprintf(&sb, " ce %d; acd %d;", rec.Score, rec.Depth)
	}
	return sb.String()
}
