package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/jacokyle01/epd-analysis/config"
	"github.com/jacokyle01/epd-analysis/engine"
	"github.com/jacokyle01/epd-analysis/epd"
	"github.com/jacokyle01/epd-analysis/models"
	"github.com/jacokyle01/epd-analysis/report"
	"github.com/jacokyle01/epd-analysis/session"
)

// runFlags parses the run sub-command. Values come from -config (or the
// defaults) and any flag given on the command line overrides them.
func runFlags(args []string) (config.Config, string, error) {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	var (
		cfgPath  = fs.String("config", "", "json config file")
		level    = fs.String("loglevel", "info", "log level: trace, debug, info, warn, error")
		epdPath  = fs.String("epd", "", "input epd file")
		output   = fs.String("output", "", "summary output file, default mea_results.txt")
		path     = fs.String("engine", "", "engine executable")
		name     = fs.String("name", "", "engine name")
		options  = fs.String("eoption", "", `engine options, "contempt=true, Futility Pruning=false, MultiPV=3"`)
		threads  = fs.Int("threads", 0, "engine threads, default 1")
		hash     = fs.Int("hash", 0, "engine hash in MB, default 64")
		moveTime = fs.Int("movetime", 0, "analysis time per position in ms, default 500")
		rating   = fs.Int("rating", 0, "engine rating shown in the results, default 2500")
		protocol = fs.String("protocol", "", "engine protocol, uci or xboard")
		san      = fs.Bool("san", false, "xboard engine sends moves in san")
		stMode   = fs.Bool("stmode", true, "xboard engine supports st; false uses level")
		protover = fs.Int("protover", 0, "xboard protocol version, 1 or 2")
		infinite = fs.Bool("infinite", false, "run uci engine with go infinite")
		logFile  = fs.Bool("log", false, "also write the log to a file")
		fromCwd  = fs.Bool("runenginefromcwd", false, "run the engine from the current directory")
	)
	if err := fs.Parse(args); err != nil {
		return config.Config{}, "", err
	}

	var cfg = config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			return cfg, "", err
		}
	}

	var e = &cfg.Engine
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "epd":
			cfg.EPD = *epdPath
		case "output":
			cfg.Output = *output
		case "log":
			cfg.Log = *logFile
		case "engine":
			e.Path = *path
		case "name":
			e.Name = *name
		case "eoption":
			e.Options = *options
		case "threads":
			e.Threads = *threads
		case "hash":
			e.Hash = *hash
		case "movetime":
			e.MoveTime = *moveTime
		case "rating":
			e.Rating = *rating
		case "protocol":
			e.Protocol = *protocol
		case "san":
			e.SAN = *san
		case "stmode":
			e.STMode = *stMode
		case "protover":
			e.Protover = *protover
		case "infinite":
			e.Infinite = *infinite
		case "runenginefromcwd":
			e.RunFromCwd = *fromCwd
		}
	})
	return cfg, *level, cfg.Validate()
}

// reportInfo uses the hash and threads the option string sets, when it
// sets them, since those are what the engine ran with.
func reportInfo(cfg config.Config, opts config.Options, positions int) report.RunInfo {
	var info = report.RunInfo{
		Threads:    cfg.Engine.Threads,
		Hash:       cfg.Engine.Hash,
		MoveTimeMs: cfg.Engine.MoveTime,
		EPDPath:    cfg.EPD,
		Positions:  positions,
	}
	if opts.Hash > 0 {
		info.Hash = opts.Hash
	}
	if opts.Threads > 0 {
		info.Threads = opts.Threads
	}
	return info
}

func runCmd(args []string) error {
	cfg, level, err := runFlags(args)
	if err != nil {
		return err
	}
	settings, err := engine.NewSettings(cfg.Engine, corpusName(cfg.EPD))
	if err != nil {
		return err
	}

	var logOut *os.File
	if cfg.Log {
		logOut, err = os.Create(report.LogName(cfg.EPD, cfg.Engine.Name, settings.MultiPV(), cfg.Engine.MoveTime))
		if err != nil {
			return err
		}
		defer logOut.Close()
	}
	var log, lerr = newLogger(level, fileWriter(logOut))
	if lerr != nil {
		return lerr
	}

	cases, good, total, err := epd.ParseFile(cfg.EPD, log)
	if err != nil {
		return err
	}
	if good != total {
		log.Warn().Int("good", good).Int("total", total).Msg("not all positions in the epd are considered")
	}

	records, err := report.CreateEPD(report.EPDName(cfg.EPD, cfg.Engine.Name, settings.MultiPV(), cfg.Engine.MoveTime))
	if err != nil {
		return err
	}
	defer records.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sess := session.New(log, records)
	d, err := engine.New(settings, sess)
	if err != nil {
		return err
	}
	res, err := d.RunCorpus(ctx, cases)
	if err != nil {
		return err
	}
	return publish(cfg, reportInfo(cfg, settings.Opts, good), res)
}

func publish(cfg config.Config, info report.RunInfo, res models.RunResult) error {
	var runs = []models.RunResult{res}
	if err := report.WriteSummary(os.Stdout, info, runs); err != nil {
		return err
	}
	if res.Outcome != nil {
		o := res.Outcome
		fmt.Printf("\nTime allocation  : %s\n", o.Class)
		fmt.Printf("ExpectedTime     : %0.1fs\n", float64(o.ExpectedMs)/1000)
		fmt.Printf("ActualTime       : %0.1fs\n", float64(o.ActualMs)/1000)
		fmt.Printf("TimeMargin/pos   : %0.1fs\n", float64(o.MarginPerPositionMs)/1000)
		fmt.Printf("TimeMarginTotal  : %0.1fs\n", float64(o.MarginMs)/1000)
	}
	if err := report.AppendSummary(cfg.Output, info, runs); err != nil {
		return err
	}
	return report.Publish(cfg.Output, appName+" v"+appVersion, info, runs)
}

func corpusName(epdPath string) string {
	var base = filepath.Base(epdPath)
	return base[:len(base)-len(filepath.Ext(base))]
}
