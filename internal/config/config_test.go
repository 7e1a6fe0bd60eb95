package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("SNAPSHOT_PATH", "")
	t.Setenv("SHUTDOWN_TIMEOUT", "")
	t.Setenv("SAVE_TIMEOUT_MS", "")
	c := Load()
	if c.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr default")
	}
	if c.SnapshotPath != "info.json" {
		t.Fatalf("SnapshotPath default")
	}
	if c.ShutdownTimeout != 15*time.Second {
		t.Fatalf("ShutdownTimeout default")
	}
	if c.SaveTimeout != 5*time.Second {
		t.Fatalf("SaveTimeout default")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("SNAPSHOT_PATH", "/tmp/store.json")
	t.Setenv("SHUTDOWN_TIMEOUT", "2")
	t.Setenv("SAVE_TIMEOUT_MS", "250")
	c := Load()
	if c.HTTPAddr != ":9090" {
		t.Fatalf("HTTPAddr env")
	}
	if c.SnapshotPath != "/tmp/store.json" {
		t.Fatalf("SnapshotPath env")
	}
	if c.ShutdownTimeout != 2*time.Second {
		t.Fatalf("ShutdownTimeout env")
	}
	if c.SaveTimeout != 250*time.Millisecond {
		t.Fatalf("SaveTimeout env")
	}
}

func TestLoadIgnoresBadNumbers(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-number")
	c := Load()
	if c.ShutdownTimeout != 15*time.Second {
		t.Fatalf("expected default on unparsable value")
	}
}
