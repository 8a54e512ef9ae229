package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/iov-one/quorum/errors"
	"github.com/tendermint/tendermint/libs/log"
)

// Config holds the settings read from the environment. Flags override
// them per command.
type Config struct {
	// Home is the directory holding the database and the tendermint
	// config, $HOME/.quorum by default
	Home     string `env:"QUORUM_HOME"`
	LogLevel string `env:"QUORUM_LOG_LEVEL" envDefault:"info"`
	Bind     string `env:"QUORUM_BIND" envDefault:"tcp://localhost:26658"`
	Debug    bool   `env:"QUORUM_DEBUG" envDefault:"false"`
	ChainID  string `env:"QUORUM_CHAIN_ID"`
}

func loadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrInput, err.Error())
	}
	if cfg.Home == "" {
		cfg.Home = filepath.Join(os.ExpandEnv("$HOME"), ".quorum")
	}
	return cfg, nil
}

// newLogger returns a tendermint logger writing to w, filtered to the
// given level (debug, info, error or none).
func newLogger(level string, w io.Writer) (log.Logger, error) {
	allow, err := log.AllowLevel(level)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	logger := log.NewTMLogger(log.NewSyncWriter(w))
	return log.NewFilter(logger, allow).With("module", "quorumd"), nil
}
