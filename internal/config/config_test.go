package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig with empty path failed: %v", err)
	}
	if cfg.Sender.TargetPort != 2055 || cfg.Receiver.ListenPort != 2055 {
		t.Errorf("Expected default NetFlow port 2055, got sender=%d receiver=%d",
			cfg.Sender.TargetPort, cfg.Receiver.ListenPort)
	}
	if cfg.Sender.StartupDelay != "5s" {
		t.Errorf("Expected default startup delay 5s, got %s", cfg.Sender.StartupDelay)
	}
}

func TestLoadConfigFile(t *testing.T) {
	// 1. Write a config file overriding a few fields
	content := `
sender:
  target_host: collector.example.net
  target_port: 9995
receiver:
  listen_port: 9995
  nats:
    enabled: true
    subject: flows.decoded
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	// 2. Load and verify overrides plus surviving defaults
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Sender.TargetHost != "collector.example.net" || cfg.Sender.TargetPort != 9995 {
		t.Errorf("File values not applied: %+v", cfg.Sender)
	}
	if !cfg.Receiver.NATS.Enabled || cfg.Receiver.NATS.Subject != "flows.decoded" {
		t.Errorf("NATS values not applied: %+v", cfg.Receiver.NATS)
	}
	if cfg.Receiver.APIListenAddr != ":8080" {
		t.Errorf("Default API listen address lost: %s", cfg.Receiver.APIListenAddr)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("RECEIVER_HOST", "10.9.8.7")
	t.Setenv("RECEIVER_PORT", "9555")
	t.Setenv("LISTEN_PORT", "9555")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Sender.TargetHost != "10.9.8.7" || cfg.Sender.TargetPort != 9555 {
		t.Errorf("Sender env overrides not applied: %+v", cfg.Sender)
	}
	if cfg.Receiver.ListenPort != 9555 {
		t.Errorf("Receiver env override not applied: %+v", cfg.Receiver)
	}

	t.Setenv("RECEIVER_PORT", "not-a-port")
	if _, err := LoadConfig(""); err == nil {
		t.Fatal("Expected an error for a malformed RECEIVER_PORT")
	}
}
