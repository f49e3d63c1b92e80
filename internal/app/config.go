package app

import (
	"errors"
	"fmt"
	"runtime"
)

// Commands understood by the app.
const (
	CommandSetup = "setup"
	CommandRun   = "run"
	CommandList  = "list"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Command string

	// Setup and list.
	DefinitionsPath string   // hcl file or directory
	MachineConfig   string   // machine layer yaml
	ConfigFiles     []string // user layer yaml files, later ones win
	Component       string
	Suite           string
	Tasks           []string
	WorkDir         string

	// Run.
	CheckpointPath  string // work dir, task dir or step dir
	Cores           int
	BaselineDir     string
	EventsURL       string
	EventsNamespace string
	HealthcheckPort int

	LogFormat string
	LogLevel  string
}

func NewConfig(cfg Config) (*Config, error) {
	switch cfg.Command {
	case CommandSetup:
		if cfg.DefinitionsPath == "" {
			return nil, errors.New("DefinitionsPath is a required configuration field and cannot be empty")
		}
		if cfg.WorkDir == "" {
			return nil, errors.New("WorkDir is a required configuration field for setup")
		}
	case CommandList:
		if cfg.DefinitionsPath == "" {
			return nil, errors.New("DefinitionsPath is a required configuration field and cannot be empty")
		}
	case CommandRun:
		if cfg.CheckpointPath == "" {
			return nil, errors.New("CheckpointPath is a required configuration field for run")
		}
		if cfg.Cores < 0 {
			return nil, fmt.Errorf("cores must not be negative, got %d", cfg.Cores)
		}
		if cfg.Cores == 0 {
			cfg.Cores = runtime.NumCPU()
		}
	default:
		return nil, fmt.Errorf("unknown command %q", cfg.Command)
	}
	return &cfg, nil
}
