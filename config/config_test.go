package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"chipstock/config"
)

func TestLoadConfigDefaultsWhenFileMissing(t *testing.T) {
	dir := t.TempDir()
	config.SetFilePath(filepath.Join(dir, "missing.json"))
	t.Setenv("CHIPSTOCK_DB", "")
	t.Setenv("CHIPSTOCK_ADDR", "")
	t.Setenv("CHIPSTOCK_LOG_LEVEL", "")

	cfg, err := config.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.DatabasePath != "./chipstock.db" {
		t.Errorf("DatabasePath = %q", cfg.DatabasePath)
	}
	if cfg.InternRetryLimit != 3 {
		t.Errorf("InternRetryLimit = %d, want 3", cfg.InternRetryLimit)
	}
	if cfg.ExportSheetName != "Sheet1" {
		t.Errorf("ExportSheetName = %q", cfg.ExportSheetName)
	}
}

func TestLoadConfigFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chipstock_config.json")
	if err := os.WriteFile(path, []byte(`{"databasePath":"/data/a.db","listenAddr":":9000","internRetryLimit":5}`), 0644); err != nil {
		t.Fatal(err)
	}
	config.SetFilePath(path)
	t.Setenv("CHIPSTOCK_DB", "")
	t.Setenv("CHIPSTOCK_ADDR", ":7000")
	t.Setenv("CHIPSTOCK_LOG_LEVEL", "")

	cfg, err := config.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.DatabasePath != "/data/a.db" {
		t.Errorf("DatabasePath = %q, want file value", cfg.DatabasePath)
	}
	if cfg.ListenAddr != ":7000" {
		t.Errorf("ListenAddr = %q, want env override", cfg.ListenAddr)
	}
	if cfg.InternRetryLimit != 5 {
		t.Errorf("InternRetryLimit = %d, want 5", cfg.InternRetryLimit)
	}
	if got := config.GetConfig(); got != cfg {
		t.Errorf("GetConfig() = %+v, want %+v", got, cfg)
	}
}

func TestSaveConfigFillsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "saved.json")
	config.SetFilePath(path)

	if err := config.SaveConfig(config.Config{ListenAddr: ":8181"}); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	got := config.GetConfig()
	if got.ListenAddr != ":8181" || got.MaxOpenConns != 4 {
		t.Errorf("unexpected saved config %+v", got)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config file not written: %v", err)
	}
}
