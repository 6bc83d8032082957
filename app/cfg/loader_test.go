package cfg

import (
	"testing"
	"time"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}
}

func TestGetTimeout(t *testing.T) {
	cfg := &Cfg{Timeout: 15}
	if cfg.GetTimeout() != 15*time.Second {
		t.Errorf("Expected 15s timeout, got %s", cfg.GetTimeout())
	}

	cfg = &Cfg{Timeout: 0}
	if cfg.GetTimeout() != 30*time.Second {
		t.Errorf("Expected 30s default timeout, got %s", cfg.GetTimeout())
	}

	cfg = &Cfg{Timeout: -1}
	if cfg.GetTimeout() != 30*time.Second {
		t.Errorf("Expected 30s default timeout for negative value, got %s", cfg.GetTimeout())
	}
}
