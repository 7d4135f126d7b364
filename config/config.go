package config

import (
	"encoding/json"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabasePath     string `json:"databasePath"`
	ListenAddr       string `json:"listenAddr"`
	LogLevel         string `json:"logLevel"`
	InternRetryLimit int    `json:"internRetryLimit"`
	ExportSheetName  string `json:"exportSheetName"`
	UploadCharset    string `json:"uploadCharset"`
	MaxOpenConns     int    `json:"maxOpenConns"`
}

var (
	cfg = defaults()
	mu  sync.RWMutex
)

var configFilePath = "./chipstock_config.json"

// SetFilePath は設定ファイルの場所を差し替えます (CLI・テスト用)。
func SetFilePath(path string) {
	mu.Lock()
	defer mu.Unlock()
	configFilePath = path
}

func defaults() Config {
	return Config{
		DatabasePath:     "./chipstock.db",
		ListenAddr:       ":8080",
		LogLevel:         "info",
		InternRetryLimit: 3,
		ExportSheetName:  "Sheet1",
		UploadCharset:    "utf-8",
		MaxOpenConns:     4,
	}
}

func fillDefaults(c *Config) {
	d := defaults()
	if c.DatabasePath == "" {
		c.DatabasePath = d.DatabasePath
	}
	if c.ListenAddr == "" {
		c.ListenAddr = d.ListenAddr
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.InternRetryLimit <= 0 {
		c.InternRetryLimit = d.InternRetryLimit
	}
	if c.ExportSheetName == "" {
		c.ExportSheetName = d.ExportSheetName
	}
	if c.UploadCharset == "" {
		c.UploadCharset = d.UploadCharset
	}
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = d.MaxOpenConns
	}
}

// LoadConfig は設定ファイルを読み込み、.env と環境変数で上書きします。
// ファイルが無い場合はデフォルト値を使います。
func LoadConfig() (Config, error) {
	mu.Lock()
	defer mu.Unlock()

	// .env は任意
	_ = godotenv.Load()

	var tempCfg Config
	file, err := os.ReadFile(configFilePath)
	if err != nil && !os.IsNotExist(err) {
		return Config{}, err
	}
	if err == nil {
		if err := json.Unmarshal(file, &tempCfg); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&tempCfg)
	fillDefaults(&tempCfg)
	cfg = tempCfg
	return cfg, nil
}

func applyEnv(c *Config) {
	if v := strings.TrimSpace(os.Getenv("CHIPSTOCK_DB")); v != "" {
		c.DatabasePath = v
	}
	if v := strings.TrimSpace(os.Getenv("CHIPSTOCK_ADDR")); v != "" {
		c.ListenAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("CHIPSTOCK_LOG_LEVEL")); v != "" {
		c.LogLevel = v
	}
}

func SaveConfig(newCfg Config) error {
	mu.Lock()
	defer mu.Unlock()

	fillDefaults(&newCfg)

	file, err := json.MarshalIndent(newCfg, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(configFilePath, file, 0644); err != nil {
		return err
	}
	cfg = newCfg
	return nil
}

func GetConfig() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}
