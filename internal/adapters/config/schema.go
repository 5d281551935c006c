package config

import (
	"fmt"
	"time"
)

const currentSchemaVersion = 1

const (
	defaultListen          = "127.0.0.1:8765"
	defaultRequestTimeout  = "10m"
	defaultModel           = "tabbridge"
	defaultPingInterval    = "25s"
	defaultPongWait        = "60s"
	defaultMaxMessageBytes = 1 << 20
)

type fileSchema struct {
	Version int          `toml:"version"`
	Server  serverSchema `toml:"server"`
	Peer    peerSchema   `toml:"peer"`
}

type serverSchema struct {
	Listen         string `toml:"listen"`
	RequestTimeout string `toml:"request_timeout"`
	Model          string `toml:"model"`
}

type peerSchema struct {
	PingInterval    string `toml:"ping_interval"`
	PongWait        string `toml:"pong_wait"`
	MaxMessageBytes int64  `toml:"max_message_bytes"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
	if s.Server.Listen == "" {
		s.Server.Listen = defaultListen
	}
	if s.Server.RequestTimeout == "" {
		s.Server.RequestTimeout = defaultRequestTimeout
	}
	if s.Server.Model == "" {
		s.Server.Model = defaultModel
	}
	if s.Peer.PingInterval == "" {
		s.Peer.PingInterval = defaultPingInterval
	}
	if s.Peer.PongWait == "" {
		s.Peer.PongWait = defaultPongWait
	}
	if s.Peer.MaxMessageBytes == 0 {
		s.Peer.MaxMessageBytes = defaultMaxMessageBytes
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported config schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

func (s fileSchema) toSettings() (Settings, error) {
	requestTimeout, err := parseDuration("server.request_timeout", s.Server.RequestTimeout)
	if err != nil {
		return Settings{}, err
	}
	pingInterval, err := parseDuration("peer.ping_interval", s.Peer.PingInterval)
	if err != nil {
		return Settings{}, err
	}
	pongWait, err := parseDuration("peer.pong_wait", s.Peer.PongWait)
	if err != nil {
		return Settings{}, err
	}

	return Settings{
		Listen:         s.Server.Listen,
		RequestTimeout: requestTimeout,
		Model:          s.Server.Model,
		Peer: PeerSettings{
			PingInterval:    pingInterval,
			PongWait:        pongWait,
			MaxMessageBytes: s.Peer.MaxMessageBytes,
		},
	}, nil
}

func parseDuration(key, raw string) (time.Duration, error) {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", key, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %q", key, raw)
	}

	return d, nil
}
