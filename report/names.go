// Package report writes what a run produces: the EPD records of the analysed
// positions, the text summary, and the CSV/HTML result tables that
// accumulate one row per run.
package report

import (
	"fmt"
	"path/filepath"
	"strings"
)

var nameReplacer = strings.NewReplacer(" ", "_", "/", "_", `\`, "_")

// corpusName is the corpus file name without directory and extension.
func corpusName(epdPath string) string {
	var base = filepath.Base(epdPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// EPDName is the output file for the records of one run.
func EPDName(epdPath, engine string, multipv, moveTimeMs int) string {
	var name = fmt.Sprintf("%s_%s.epd", corpusName(epdPath), engine)
	if multipv > 1 {
		name = fmt.Sprintf("%s_multipv%d_%s_mt%dms_epd.epd", corpusName(epdPath), multipv, engine, moveTimeMs)
	}
	return nameReplacer.Replace(name)
}

// LogName is the log file for one run.
func LogName(epdPath, engine string, multipv, moveTimeMs int) string {
	return nameReplacer.Replace(fmt.Sprintf("%s_multipv%d_%s_mt%dms_log.txt", corpusName(epdPath), multipv, engine, moveTimeMs))
}

// siblingName swaps the extension of the summary file: mea_results.txt
// becomes mea_results.csv.
func siblingName(summaryPath, ext string) string {
	return strings.TrimSuffix(summaryPath, filepath.Ext(summaryPath)) + ext
}

func CSVName(summaryPath string) string  { return siblingName(summaryPath, ".csv") }
func HTMLName(summaryPath string) string { return siblingName(summaryPath, ".html") }
