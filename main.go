package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

const (
	appName    = "MEA"
	appVersion = "1.0"
)

func usage() {
	fmt.Println(appName + " v" + appVersion + ", multiple-move EPD analyzer")
	fmt.Println("Usage:")
	fmt.Println("  mea run -epd file -engine path -name name [flags]  - Analyze a corpus locally")
	fmt.Println("  mea server [port]                                  - Run job server")
	fmt.Println("  mea client [server_url] [engine_path] [engine.json...] - Run worker")
	fmt.Println("  mea submit [flags] engine.json...                  - Submit a batch to a server")
	fmt.Println("  mea example engine_path epd_file                   - Server, worker and batch in one process")
}

// newLogger writes to stderr, and also to file when it is not nil.
func newLogger(level string, file io.Writer) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	if file != nil {
		out = zerolog.MultiLevelWriter(out, file)
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	var err error
	switch os.Args[1] {
	case "run":
		err = runCmd(os.Args[2:])
	case "server":
		err = serverCmd(os.Args[2:])
	case "client":
		err = clientCmd(os.Args[2:])
	case "submit":
		err = submitCmd(os.Args[2:])
	case "example":
		err = exampleCmd(os.Args[2:])
	case "version", "-V", "--version":
		fmt.Println(appVersion)
	default:
		fmt.Println("Unknown command:", os.Args[1])
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "mea:", err)
		os.Exit(1)
	}
}

// fileWriter keeps a nil file from becoming a non-nil io.Writer.
func fileWriter(f *os.File) io.Writer {
	if f == nil {
		return nil
	}
	return f
}
