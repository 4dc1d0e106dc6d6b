package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// SenderConfig holds the configuration for the exporting side. The wait
// intervals are fixed durations by design: the exporter is best-effort
// telemetry, not a guaranteed-delivery protocol, so there is no backoff
// growth. Durations are kept as strings and parsed where they are used.
type SenderConfig struct {
	TargetHost       string `yaml:"target_host"`
	TargetPort       int    `yaml:"target_port"`
	StartupDelay     string `yaml:"startup_delay"`
	ResolveRetryWait string `yaml:"resolve_retry_wait"`
	SendRetryWait    string `yaml:"send_retry_wait"`
	CooldownMinSecs  int    `yaml:"cooldown_min_secs"`
	CooldownMaxSecs  int    `yaml:"cooldown_max_secs"`
}

// NATSConfig holds the connection details for the decoded-packet relay.
type NATSConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// ReceiverConfig holds the configuration for the collecting side.
type ReceiverConfig struct {
	ListenHost    string     `yaml:"listen_host"`
	ListenPort    int        `yaml:"listen_port"`
	APIListenAddr string     `yaml:"api_listen_addr"`
	StatsInterval string     `yaml:"stats_interval"`
	NATS          NATSConfig `yaml:"nats"`
}

// Config is the top-level configuration struct for the entire application.
type Config struct {
	Sender   SenderConfig   `yaml:"sender"`
	Receiver ReceiverConfig `yaml:"receiver"`
}

// Default returns the configuration used when no file is given: the original
// deployment values (receiver host "receiver", NetFlow port 2055).
func Default() *Config {
	return &Config{
		Sender: SenderConfig{
			TargetHost:       "receiver",
			TargetPort:       2055,
			StartupDelay:     "5s",
			ResolveRetryWait: "5s",
			SendRetryWait:    "2s",
			CooldownMinSecs:  1,
			CooldownMaxSecs:  5,
		},
		Receiver: ReceiverConfig{
			ListenHost:    "0.0.0.0",
			ListenPort:    2055,
			APIListenAddr: ":8080",
			StatsInterval: "10s",
			NATS: NATSConfig{
				Enabled: false,
				URL:     "nats://127.0.0.1:4222",
				Subject: "netflow.packets.decoded",
			},
		},
	}
}

// LoadConfig reads the configuration from a YAML file, falling back to the
// defaults for an empty path. Environment variables override file values in
// either case.
func LoadConfig(filePath string) (*Config, error) {
	cfg := Default()

	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv layers the environment variables of the original deployment on
// top of the loaded values.
func (c *Config) applyEnv() error {
	if v := os.Getenv("RECEIVER_HOST"); v != "" {
		c.Sender.TargetHost = v
	}
	if v := os.Getenv("RECEIVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RECEIVER_PORT %q: %w", v, err)
		}
		c.Sender.TargetPort = port
	}
	if v := os.Getenv("LISTEN_HOST"); v != "" {
		c.Receiver.ListenHost = v
	}
	if v := os.Getenv("LISTEN_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid LISTEN_PORT %q: %w", v, err)
		}
		c.Receiver.ListenPort = port
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		c.Receiver.NATS.URL = v
	}
	return nil
}
