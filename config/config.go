// Package config loads analyzer settings from config.json and parses the
// engine option string ("Futility Pruning=false, MultiPV=3, depth=12").
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jacokyle01/epd-analysis/models"
)

var (
	ErrInvalidOption = errors.New("config: invalid engine option")
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

const (
	ProtocolUCI    = "uci"
	ProtocolXboard = "xboard"
)

type Config struct {
	Engine models.EngineSpec `json:"engine"`
	EPD    string            `json:"epd"`
	Output string            `json:"output"` // summary file; csv and epd names derive from it
	Log    bool              `json:"log"`
}

func Default() Config {
	return Config{
		Engine: models.EngineSpec{
			Protocol:  ProtocolUCI,
			Threads:   1,
			Hash:      64,
			MoveTime:  500,
			STMode:    true,
			Protover:  2,
			Rating:    2500,
			QuitGrace: 5000,
		},
		Output: "mea_results.txt",
	}
}

// Load reads a json config over the defaults.
func Load(path string) (Config, error) {
	var cfg = Default()
	file, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer file.Close()
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("config: reading %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.EPD == "" {
		return fmt.Errorf("%w: no epd file", ErrInvalidConfig)
	}
	return ValidateEngine(c.Engine)
}

// ValidateEngine rejects engine settings that cannot produce a meaningful run.
func ValidateEngine(e models.EngineSpec) error {
	if e.Path == "" {
		return fmt.Errorf("%w: no engine path", ErrInvalidConfig)
	}
	if e.Name == "" {
		return fmt.Errorf("%w: no engine name", ErrInvalidConfig)
	}
	opts, err := ParseOptions(e.Options)
	if err != nil {
		return err
	}
	if e.MoveTime < 0 {
		return fmt.Errorf("%w: negative movetime %d", ErrInvalidConfig, e.MoveTime)
	}
	switch e.Protocol {
	case ProtocolUCI:
		if e.MoveTime == 0 && opts.Depth <= 0 {
			return fmt.Errorf("%w: uci engine needs a movetime or a depth option", ErrInvalidConfig)
		}
	case ProtocolXboard:
		if e.MoveTime == 0 {
			return fmt.Errorf("%w: xboard engine needs a movetime", ErrInvalidConfig)
		}
		if e.Protover != 1 && e.Protover != 2 {
			return fmt.Errorf("%w: protover %d", ErrInvalidConfig, e.Protover)
		}
	default:
		return fmt.Errorf("%w: unknown protocol %q", ErrInvalidConfig, e.Protocol)
	}
	return nil
}

// Option is one engine option forwarded with setoption.
type Option struct {
	Name  string
	Value string
}

// Options is a parsed option string. Depth is not an engine option and is
// never forwarded; MultiPV, Hash and Threads are forwarded and also kept for
// the driver and the reports. Zero means unset.
type Options struct {
	Engine  []Option
	Depth   int
	MultiPV int
	Hash    int
	Threads int
}

func ParseOptions(s string) (Options, error) {
	var opts Options
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		kv := strings.SplitN(item, "=", 2)
		if len(kv) != 2 || strings.TrimSpace(kv[0]) == "" {
			return Options{}, fmt.Errorf("%w: %q", ErrInvalidOption, item)
		}
		var name, value = strings.TrimSpace(kv[0]), strings.TrimSpace(kv[1])
		switch strings.ToLower(name) {
		case "depth":
			d, err := parsePositive(item, value)
			if err != nil {
				return Options{}, err
			}
			opts.Depth = d
			continue
		case "multipv":
			n, err := parsePositive(item, value)
			if err != nil {
				return Options{}, err
			}
			opts.MultiPV = n
		case "hash":
			n, err := parsePositive(item, value)
			if err != nil {
				return Options{}, err
			}
			opts.Hash = n
		case "threads":
			n, err := parsePositive(item, value)
			if err != nil {
				return Options{}, err
			}
			opts.Threads = n
		}
		opts.Engine = append(opts.Engine, Option{Name: name, Value: value})
	}
	return opts, nil
}

func parsePositive(item, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidOption, item)
	}
	return n, nil
}
