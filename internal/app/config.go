package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	GridPath string   // .hcl experiment files
	Mode     string   // experiment mode token forwarded to the trainer
	GPUs     []string // GPU pool; one entry means single-device execution
	Workers  int
	Extra    []string // pass-through trainer arguments
	DryRun   bool
	History  int    // list the N most recent ledger rows instead of running
	Ledger   string // SQLite ledger path; empty disables recording

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.GridPath == "" && cfg.History == 0 {
		return nil, errors.New("GridPath is a required configuration field and cannot be empty")
	}
	if cfg.Workers < 1 {
		return nil, errors.New("Workers must be at least 1")
	}
	if cfg.History > 0 && cfg.Ledger == "" {
		return nil, errors.New("History requires a ledger path")
	}

	return &cfg, nil
}
