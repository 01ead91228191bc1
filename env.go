package statebus

import (
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// loadDotEnv loads a .env file from the working directory once per process.
// A missing file is not an error; explicit environment variables always win
// because godotenv never overrides existing variables.
var loadDotEnv = sync.OnceFunc(func() {
	_ = godotenv.Load()
})

type envConfig struct {
	BufferSize int    `env:"STATEBUS_BUFFER_SIZE" envDefault:"1"`
	Replay     string `env:"STATEBUS_REPLAY_POLICY" envDefault:"last"`
}

// ConfigFromEnv builds a stream Config from the STATEBUS_BUFFER_SIZE and
// STATEBUS_REPLAY_POLICY environment variables. A .env file in the working
// directory is loaded on first use.
//
// Example:
//
//	cfg, err := statebus.ConfigFromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	registry, err := statebus.New(statebus.WithStreamConfig(cfg))
func ConfigFromEnv() (Config, error) {
	loadDotEnv()

	var ec envConfig
	if err := env.Parse(&ec); err != nil {
		return Config{}, fmt.Errorf("parse statebus env config: %w", err)
	}

	return Config{
		BufferSize: ec.BufferSize,
		Replay:     ReplayPolicy(ec.Replay),
	}.normalize()
}
