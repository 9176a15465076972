package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/jacokyle01/epd-analysis/models"
)

var csvHeader = []string{"Engine", "Rating", "Top1", "MaxTop1", "Top1Rate", "Score",
	"MaxScore", "ScoreRate", "MoveTime(ms)", "Hash(MB)", "Threads"}

// Row is one line of the results table.
type Row struct {
	Rank       int
	Engine     string
	Rating     int
	Top1       int
	MaxTop1    int
	Top1Rate   float64
	Score      int
	MaxScore   int
	ScoreRate  float64
	MoveTimeMs int
	Hash       int
	Threads    int
}

func NewRow(r models.RunResult, info RunInfo) Row {
	return Row{
		Engine:     r.Engine,
		Rating:     r.Rating,
		Top1:       r.TopOne,
		MaxTop1:    r.Attempted,
		Top1Rate:   r.TopOneRate(),
		Score:      r.Score,
		MaxScore:   r.MaxScore,
		ScoreRate:  r.ScoreRate(),
		MoveTimeMs: info.MoveTimeMs,
		Hash:       info.Hash,
		Threads:    info.Threads,
	}
}

func (r Row) record() []string {
	return []string{
		r.Engine,
		strconv.Itoa(r.Rating),
		strconv.Itoa(r.Top1),
		strconv.Itoa(r.MaxTop1),
		strconv.FormatFloat(r.Top1Rate, 'f', 3, 64),
		strconv.Itoa(r.Score),
		strconv.Itoa(r.MaxScore),
		strconv.FormatFloat(r.ScoreRate, 'f', 3, 64),
		strconv.Itoa(r.MoveTimeMs),
		strconv.Itoa(r.Hash),
		strconv.Itoa(r.Threads),
	}
}

func parseRow(rec []string) (Row, error) {
	if len(rec) != len(csvHeader) {
		return Row{}, fmt.Errorf("report: csv row has %d fields, want %d", len(rec), len(csvHeader))
	}
	var ints [8]int
	for i, j := range []int{1, 2, 3, 5, 6, 8, 9, 10} {
		n, err := strconv.Atoi(rec[j])
		if err != nil {
			return Row{}, fmt.Errorf("report: csv %s: %w", csvHeader[j], err)
		}
		ints[i] = n
	}
	top1Rate, err := strconv.ParseFloat(rec[4], 64)
	if err != nil {
		return Row{}, fmt.Errorf("report: csv Top1Rate: %w", err)
	}
	scoreRate, err := strconv.ParseFloat(rec[7], 64)
	if err != nil {
		return Row{}, fmt.Errorf("report: csv ScoreRate: %w", err)
	}
	return Row{
		Engine:     rec[0],
		Rating:     ints[0],
		Top1:       ints[1],
		MaxTop1:    ints[2],
		Top1Rate:   top1Rate,
		Score:      ints[3],
		MaxScore:   ints[4],
		ScoreRate:  scoreRate,
		MoveTimeMs: ints[5],
		Hash:       ints[6],
		Threads:    ints[7],
	}, nil
}

// AppendCSV adds rows to the CSV file at path, writing the header when the
// file is new.
func AppendCSV(path string, rows []Row) error {
	_, err := os.Stat(path)
	var fresh = errors.Is(err, fs.ErrNotExist)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if fresh {
		w.Write(csvHeader)
	}
	for _, r := range rows {
		w.Write(r.record())
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	return f.Close()
}

// ReadCSV reads every run recorded so far.
func ReadCSV(r io.Reader) ([]Row, error) {
	recs, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}
	var rows []Row
	for i, rec := range recs {
		if i == 0 && len(rec) > 0 && rec[0] == csvHeader[0] {
			continue
		}
		row, err := parseRow(rec)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Rank orders rows by score, then top 1 count, both descending, and
// numbers them from 1.
func Rank(rows []Row) []Row {
	var out = append([]Row(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Top1 > out[j].Top1
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

var htmlTable = template.Must(template.New("results").Parse(`<!DOCTYPE html>
<head>
<style>
body{margin-top:0px;margin-left:128px;margin-right:128px;}
table {width:100%;}
table, th, td {border: 1px solid black;border-collapse: collapse;}
th, td {padding: 5px;text-align: left;}
table#t01 tr:nth-child(even) {background-color: #eee;}
table#t01 tr:nth-child(odd) {background-color:#fff;}
table#t01 th {background-color: black;color: white;}
</style>
</head>
<body>
<h3>{{.Title}}</h3>
<strong>A. EPD test set:</strong><br>
Filename: {{.Corpus}}<br><br>
<table id="t01"><tr><th>Rank</th>{{range .Header}}<th>{{.}}</th>{{end}}</tr>
{{- range .Rows}}
<tr><td>{{.Rank}}</td><td>{{.Engine}}</td><td>{{.Rating}}</td><td>{{.Top1}}</td><td>{{.MaxTop1}}</td><td>{{printf "%.3f" .Top1Rate}}</td><td>{{.Score}}</td><td>{{.MaxScore}}</td><td>{{printf "%.3f" .ScoreRate}}</td><td>{{.MoveTimeMs}}</td><td>{{.Hash}}</td><td>{{.Threads}}</td></tr>
{{- end}}
</table>
</body>
</html>
`))

// WriteHTML renders ranked rows as an HTML table.
func WriteHTML(w io.Writer, title, epdPath string, ranked []Row) error {
	return htmlTable.Execute(w, struct {
		Title  string
		Corpus string
		Header []string
		Rows   []Row
	}{title, filepath.Base(epdPath), csvHeader, ranked})
}

// Publish appends the run to the CSV table next to summaryPath and
// regenerates the ranked HTML table from everything the CSV holds.
func Publish(summaryPath, title string, info RunInfo, runs []models.RunResult) error {
	var rows []Row
	for _, r := range runs {
		rows = append(rows, NewRow(r, info))
	}
	var csvPath = CSVName(summaryPath)
	if err := AppendCSV(csvPath, rows); err != nil {
		return err
	}

	f, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	all, err := ReadCSV(f)
	f.Close()
	if err != nil {
		return err
	}

	out, err := os.Create(HTMLName(summaryPath))
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	defer out.Close()
	if err := WriteHTML(out, title, info.EPDPath, Rank(all)); err != nil {
		return err
	}
	return out.Close()
}
