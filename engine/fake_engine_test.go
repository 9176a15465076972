package engine

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"
)

// The test binary doubles as a scripted engine: tests start it with
// -test.run=TestHelperProcess and the script name after "--".
const (
	fakeEngineEnv = "MEA_FAKE_ENGINE"
	fakeLogEnv    = "MEA_FAKE_ENGINE_LOG"
)

func fakeBestMove(fen string) string {
	if strings.HasPrefix(fen, "r1bqkbnr") {
		return "f1b5"
	}
	return "e2e4"
}

func runFakeEngine(script string) {
	var log *os.File
	if path := os.Getenv(fakeLogEnv); path != "" {
		log, _ = os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	}
	out := func(format string, args ...interface{}) {
		fmt.Fprintf(os.Stdout, format+"\n", args...)
	}

	if script == "dead" {
		return
	}

	var fen string
	var searches int
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if log != nil {
			fmt.Fprintln(log, line)
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "uci":
			out("id name Fake 1.0")
			out("option name Hash type spin default 16 min 1 max 1024")
			out("uciok")
		case "isready":
			out("readyok")
		case "position":
			fen = strings.TrimPrefix(line, "position fen ")
		case "setboard":
			fen = strings.TrimPrefix(line, "setboard ")
		case "protover":
			out("feature ping=1 setboard=1")
			out("feature san=0 done=1")
		case "go":
			searches++
			switch script {
			case "crash":
				if searches == 2 {
					out("info depth 1 score cp 3 pv a2a3")
					os.Exit(1)
				}
			case "silent":
				continue
			case "xboard", "xboard-hang":
				out("1 20 0 100 e2e4")
				out("move %s", fakeBestMove(fen))
				continue
			case "xboard-san":
				out("move Bb5")
				continue
			case "multipv-glued":
				out("info depth 1 multipv 1 score cp 30 pv e2e4")
				out("info depth 1 multipv 2 score cp 25 pv d2d4")
				out("info depth 2 multipv 1 score cp 28 pv e2e4 e7e5")
				out("info depth 2 multipv 2 score cp 22 pv g1f3 d7d5 bestmove e2e4")
				continue
			case "multipv-plain-depth":
				out("info depth 1 multipv 1 score cp 30 pv e2e4")
				out("info depth 1 multipv 2 score cp 25 pv d2d4")
				out("info depth 2 multipv 1 score cp 28 pv e2e4 e7e5")
				out("info depth 2 multipv 2 score cp 22 pv g1f3 d7d5")
				out("info depth 9 seldepth 14 nodes 90000 nps 900000")
				out("info depth 9 score cp 40")
				out("bestmove e2e4")
				continue
			case "multipv":
				out("info depth 1 seldepth 1 multipv 1 score cp 30 nodes 20 pv e2e4 e7e5")
				out("info depth 1 seldepth 1 multipv 2 score cp 25 nodes 20 pv d2d4 d7d5")
				out("info depth 2 seldepth 3 multipv 1 score cp 28 nodes 90 pv e2e4 e7e5")
				out("info depth 2 seldepth 3 multipv 2 score cp 22 nodes 90 pv g1f3 d7d5")
				out("info depth 3 currmove e2e4 currmovenumber 1")
				out("info depth 3 seldepth 5 multipv 1 score cp 33 lowerbound nodes 300 pv e2e4")
				out("info depth 3 seldepth 5 multipv 1 score cp 31 nodes 400 pv e2e4 e7e5")
				out("bestmove e2e4 ponder e7e5")
				continue
			}
			out("info depth 1 seldepth 1 score cp 20 nodes 20 pv %s", fakeBestMove(fen))
			out("info depth 2 seldepth 4 score mate 5 nodes 100 time 1 pv %s", fakeBestMove(fen))
			out("info depth 2 currmove %s currmovenumber 1", fakeBestMove(fen))
			out("bestmove %s ponder e7e5", fakeBestMove(fen))
		case "stop":
			if script == "silent" {
				out("bestmove %s", fakeBestMove(fen))
			}
		case "quit":
			if script == "hang" || script == "xboard-hang" {
				time.Sleep(time.Hour)
			}
			return
		}
	}
}
