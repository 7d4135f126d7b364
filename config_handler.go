package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"chipstock/config"
	"chipstock/parsers"
	"chipstock/render"

	"github.com/sirupsen/logrus"
)

// GetConfigHandler は現在の設定を返します
func GetConfigHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, http.StatusOK, config.GetConfig())
	}
}

// SaveConfigHandler は設定を検証して保存します。ログレベルは即時に反映します。
// DB パスと待受アドレスの変更は再起動後に有効になります。
func SaveConfigHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var newCfg config.Config
		if err := json.NewDecoder(r.Body).Decode(&newCfg); err != nil {
			render.Message(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := validateDatabaseFolder(newCfg.DatabasePath); err != nil {
			render.Message(w, http.StatusBadRequest, err.Error())
			return
		}
		if _, err := parsers.DecodeReader(strings.NewReader(""), newCfg.UploadCharset); err != nil {
			render.Message(w, http.StatusBadRequest, err.Error())
			return
		}
		if newCfg.LogLevel != "" {
			if _, err := logrus.ParseLevel(newCfg.LogLevel); err != nil {
				render.Message(w, http.StatusBadRequest, "unknown log level: "+newCfg.LogLevel)
				return
			}
		}
		if newCfg.InternRetryLimit < 0 || newCfg.MaxOpenConns < 0 {
			render.Message(w, http.StatusBadRequest, "limits must not be negative")
			return
		}

		if err := config.SaveConfig(newCfg); err != nil {
			config.LogError(config.GetLogger(), "main", "SaveConfigHandler", "save config", newCfg, err)
			render.Message(w, http.StatusInternalServerError, "failed to save config")
			return
		}
		config.SetLogLevel(config.GetConfig().LogLevel)
		render.Message(w, http.StatusOK, "config saved")
	}
}

// validateDatabaseFolder は DB ファイルを置くフォルダが存在するか確認します。
func validateDatabaseFolder(path string) error {
	if path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.New("database folder not found: " + dir)
		}
		config.GetLogger().WithError(err).Warn("failed to check database folder")
		return errors.New("failed to check database folder")
	}
	if !info.IsDir() {
		return errors.New("database folder is not a directory: " + dir)
	}
	return nil
}
