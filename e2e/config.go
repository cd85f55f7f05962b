package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// RELAY_ADDR points the suite at an already running relay
	// (host:port). When empty, the suite starts an in-process relay.
	RelayAddr string `envconfig:"RELAY_ADDR"`
	// E2E_DEBUG_FRAMES dumps every websocket frame the suite reads
	DebugFrames bool `envconfig:"E2E_DEBUG_FRAMES" default:"false"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
