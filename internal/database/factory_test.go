package database

import (
	"os"
	"path/filepath"
	"testing"

	"sbs-go/internal/config"
)

func TestNewStoreFromConfig(t *testing.T) {
	t.Run("memory database", func(t *testing.T) {
		got, err := NewStoreFromConfig(config.DatabaseConfig{Type: "memory"})
		if err != nil {
			t.Fatalf("NewStoreFromConfig() unexpected error: %v", err)
		}
		got.Close()
	})

	t.Run("sqlite database", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "db")
		got, err := NewStoreFromConfig(config.DatabaseConfig{Type: "sqlite", DataDir: dir})
		if err != nil {
			t.Fatalf("NewStoreFromConfig() unexpected error: %v", err)
		}
		defer got.Close()

		if _, err := os.Stat(filepath.Join(dir, "sbs.db")); err != nil {
			t.Errorf("database file not created: %v", err)
		}
	})

	t.Run("sqlite database without data_dir", func(t *testing.T) {
		got, err := NewStoreFromConfig(config.DatabaseConfig{Type: "sqlite"})
		if err == nil {
			t.Error("NewStoreFromConfig() expected error for missing data_dir, got nil")
		}
		if got != nil {
			t.Error("NewStoreFromConfig() should return nil on error")
		}
	})

	t.Run("unknown database type", func(t *testing.T) {
		got, err := NewStoreFromConfig(config.DatabaseConfig{Type: "unknown"})
		if err == nil {
			t.Error("NewStoreFromConfig() expected error for unknown type, got nil")
		}
		if got != nil {
			t.Error("NewStoreFromConfig() should return nil on error")
		}
	})
}
