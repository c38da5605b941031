package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sandline.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Serial.BaudRate != 115200 {
		t.Errorf("BaudRate = %d, want 115200", cfg.Serial.BaudRate)
	}
	if cfg.Run.StepSize != 0.005 {
		t.Errorf("StepSize = %v, want 0.005", cfg.Run.StepSize)
	}
	if cfg.Run.BatchSize != 20 {
		t.Errorf("BatchSize = %d, want 20", cfg.Run.BatchSize)
	}
	if cfg.AwaitTimeout() != 2*time.Minute {
		t.Errorf("AwaitTimeout = %v, want 2m", cfg.AwaitTimeout())
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
port: /dev/ttyUSB0
serial:
  baud_rate: 57600
  parity: even
run:
  step_size: 0.002
  batch_size: 10
  await_timeout_s: 30
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "/dev/ttyUSB0" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.Serial.BaudRate != 57600 {
		t.Errorf("BaudRate = %d, want 57600", cfg.Serial.BaudRate)
	}
	if cfg.Serial.Parity != "E" {
		t.Errorf("Parity = %q, want E (normalized)", cfg.Serial.Parity)
	}
	if cfg.Run.StepSize != 0.002 {
		t.Errorf("StepSize = %v, want 0.002", cfg.Run.StepSize)
	}
	if cfg.AwaitTimeout() != 30*time.Second {
		t.Errorf("AwaitTimeout = %v, want 30s", cfg.AwaitTimeout())
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "port: /dev/ttyACM0\n"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Run.BatchSize != 20 {
		t.Errorf("BatchSize = %d, want default 20", cfg.Run.BatchSize)
	}
	if cfg.Serial.Parity != "N" {
		t.Errorf("Parity = %q, want default N", cfg.Serial.Parity)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := map[string]string{
		"bad yaml":       "port: [unclosed\n",
		"bad parity":     "serial:\n  parity: Q\n",
		"negative step":  "run:\n  step_size: -1\n",
		"negative batch": "run:\n  batch_size: -5\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, content)); err == nil {
				t.Error("Load should have failed")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load of a missing file should fail")
	}
}
