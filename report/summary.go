package report

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jacokyle01/epd-analysis/models"
)

// RunInfo describes the settings a run was made with.
type RunInfo struct {
	Threads    int
	Hash       int
	MoveTimeMs int
	EPDPath    string
	Positions  int // usable positions of the corpus
}

const summaryRow = "%-32s : %6d  %5d  %7d  %8.3f  %5d  %8d  %9.3f\n"

func writeSummaryHeader(w io.Writer, info RunInfo) error {
	_, err := fmt.Fprintf(w,
		"A. Engine settings\n"+
			"Threads        : %d\n"+
			"Hash (mb)      : %d\n"+
			"Time(s)/pos    : %0.1f\n\n"+
			"B. Test set\n"+
			"Filename       : %s\n"+
			"NumPos         : %d\n\n"+
			"C. Results\n"+
			"%-32s : %6s  %5s  %7s  %8s  %5s  %8s  %9s\n",
		info.Threads, info.Hash, float64(info.MoveTimeMs)/1000,
		filepath.Base(info.EPDPath), info.Positions,
		"Engine", "Rating", "Top1", "MaxTop1", "Top1Rate", "Score", "MaxScore", "ScoreRate")
	return err
}

// WriteSummary writes the summary table to w, header included.
func WriteSummary(w io.Writer, info RunInfo, runs []models.RunResult) error {
	if err := writeSummaryHeader(w, info); err != nil {
		return err
	}
	return writeSummaryRows(w, runs)
}

func writeSummaryRows(w io.Writer, runs []models.RunResult) error {
	for _, r := range runs {
		if _, err := fmt.Fprintf(w, summaryRow, r.Engine, r.Rating, r.TopOne, r.Attempted,
			r.TopOneRate(), r.Score, r.MaxScore, r.ScoreRate()); err != nil {
			return err
		}
	}
	return nil
}

// AppendSummary adds runs to the summary file at path. The header is
// written only when the file is new, so repeated runs build one table.
func AppendSummary(path string, info RunInfo, runs []models.RunResult) error {
	_, err := os.Stat(path)
	var fresh = errors.Is(err, fs.ErrNotExist)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	defer f.Close()
	if fresh {
		if err := writeSummaryHeader(f, info); err != nil {
			return err
		}
	}
	if err := writeSummaryRows(f, runs); err != nil {
		return err
	}
	return f.Close()
}
