package home

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("with explicit path", func(t *testing.T) {
		dir, err := New("/tmp/test-promptdice")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if dir.Path() != "/tmp/test-promptdice" {
			t.Errorf("expected path /tmp/test-promptdice, got %s", dir.Path())
		}
	})

	t.Run("with empty path uses default", func(t *testing.T) {
		dir, err := New("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		home, _ := os.UserHomeDir()
		expected := filepath.Join(home, DefaultDirName)
		if dir.Path() != expected {
			t.Errorf("expected path %s, got %s", expected, dir.Path())
		}
	})
}

func TestDir_Paths(t *testing.T) {
	dir, _ := New("/tmp/test-promptdice")

	t.Run("DataPath", func(t *testing.T) {
		expected := "/tmp/test-promptdice/data"
		if dir.DataPath() != expected {
			t.Errorf("expected %s, got %s", expected, dir.DataPath())
		}
	})

	t.Run("ConfigPath", func(t *testing.T) {
		expected := "/tmp/test-promptdice/config.yaml"
		if dir.ConfigPath() != expected {
			t.Errorf("expected %s, got %s", expected, dir.ConfigPath())
		}
	})

	t.Run("DatabasePath", func(t *testing.T) {
		expected := "/tmp/test-promptdice/data/promptdice.db"
		if dir.DatabasePath() != expected {
			t.Errorf("expected %s, got %s", expected, dir.DatabasePath())
		}
	})
}

func TestDir_StoragePath(t *testing.T) {
	dir, _ := New("/tmp/test-promptdice")

	tests := []struct {
		driver string
		want   string
	}{
		{"", "/tmp/test-promptdice/data"},
		{"file", "/tmp/test-promptdice/data"},
		{"sqlite", "/tmp/test-promptdice/data/promptdice.db"},
		{"redis", ""},
		{"memory", ""},
	}
	for _, tt := range tests {
		if got := dir.StoragePath(tt.driver); got != tt.want {
			t.Errorf("StoragePath(%q) = %q, want %q", tt.driver, got, tt.want)
		}
	}
}

func TestDir_EnsureExists(t *testing.T) {
	tmpDir := t.TempDir()
	homeDir := filepath.Join(tmpDir, "promptdice-test")

	dir, err := New(homeDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if dir.Exists() {
		t.Error("directory should not exist before EnsureExists")
	}

	if err := dir.EnsureExists(); err != nil {
		t.Fatalf("EnsureExists failed: %v", err)
	}

	if !dir.Exists() {
		t.Error("directory should exist after EnsureExists")
	}

	if _, err := os.Stat(dir.DataPath()); os.IsNotExist(err) {
		t.Error("data directory should exist after EnsureExists")
	}
}

func TestDir_ConfigExists(t *testing.T) {
	tmpDir := t.TempDir()
	dir, _ := New(tmpDir)

	if dir.ConfigExists() {
		t.Error("config should not exist initially")
	}

	if err := os.WriteFile(dir.ConfigPath(), []byte("log:\n  level: info\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if !dir.ConfigExists() {
		t.Error("config should exist after creation")
	}
}
