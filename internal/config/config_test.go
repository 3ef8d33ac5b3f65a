package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Server.Port != 37600 {
		t.Errorf("port = %d, want 37600", cfg.Server.Port)
	}
	if got := cfg.ListenAddr(); got != "127.0.0.1:37600" {
		t.Errorf("ListenAddr = %q", got)
	}
	if cfg.Simulation.TickMillis != 250 {
		t.Errorf("tick_millis = %d, want 250", cfg.Simulation.TickMillis)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blobsim.yaml")
	payload := `
server:
  port: 9000
simulation:
  seed: 42
`
	if err := os.WriteFile(path, []byte(payload), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Server.Bind != "127.0.0.1" {
		t.Errorf("bind = %q, want default kept", cfg.Server.Bind)
	}
	if cfg.Simulation.Seed != 42 {
		t.Errorf("seed = %d, want 42", cfg.Simulation.Seed)
	}
	if cfg.Simulation.TickMillis != 250 {
		t.Errorf("tick_millis = %d, want default kept", cfg.Simulation.TickMillis)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct {
		name    string
		payload string
	}{
		{"bad yaml", "server: [what"},
		{"bad port", "server:\n  port: 99999\n"},
		{"bad tick", "simulation:\n  tick_millis: -5\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "cfg.yaml")
			if err := os.WriteFile(path, []byte(tc.payload), 0644); err != nil {
				t.Fatalf("write: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}
