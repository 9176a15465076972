package models

// EngineSpec describes how to launch and drive one engine.
// It travels inside a Job and is also the "engine" block of config.json.
type EngineSpec struct {
	Name       string   `json:"name"`
	Path       string   `json:"path"`
	Args       []string `json:"args,omitempty"`
	Protocol   string   `json:"protocol"` // uci or xboard
	Threads    int      `json:"threads"`
	Hash       int      `json:"hash"`      // MB
	MoveTime   int      `json:"movetime"`  // ms per position
	Options    string   `json:"options"`   // "name=value, name=value"
	SAN        bool     `json:"san"`       // xboard engine sends SAN moves
	STMode     bool     `json:"st_mode"`   // xboard: st instead of level
	Protover   int      `json:"protover"`  // xboard protocol version, 1 or 2
	Infinite   bool     `json:"infinite"`  // uci: go infinite and stop it ourselves
	RunFromCwd bool     `json:"run_from_cwd"`
	Rating     int      `json:"rating"`
	QuitGrace  int      `json:"quit_grace_ms"`
}

// Job represents one engine run over an EPD corpus
type Job struct {
	ID       string     `json:"id"`
	BatchID  string     `json:"batch_id,omitempty"`
	Corpus   string     `json:"corpus"` // corpus name, used in multipv record ids
	EPD      string     `json:"epd"`    // corpus text, one position per line
	Engine   EngineSpec `json:"engine"`
	Priority int        `json:"priority"`
}
