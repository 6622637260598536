package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jackzampolin/promptdice/internal/config"
)

func newConfigManager(t *testing.T, content string) *config.Manager {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	mgr, err := config.NewManager(path, "")
	if err != nil {
		t.Fatalf("config.NewManager() error = %v", err)
	}
	return mgr
}
