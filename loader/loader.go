package loader

import (
	"context"
	"fmt"

	"chipstock/config"
	"chipstock/database"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// dsnParams は全接続に共通の SQLite 接続オプションです。
// _txlock=immediate で書込トランザクションは開始時に書込ロックを取得します。
const dsnParams = "_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate&_foreign_keys=on"

// Open は SQLite データベースを開き、接続プールを設定します。
func Open(path string, maxOpenConns int) (*sqlx.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is empty")
	}
	dsn := path + "?" + dsnParams
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error (%s): %w", path, err)
	}
	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
		db.SetMaxIdleConns(maxOpenConns)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping error (%s): %w", path, err)
	}
	return db, nil
}

// InitDatabase はデータベーススキーマを適用します。何度実行しても同じ結果になります。
func InitDatabase(ctx context.Context, db *sqlx.DB) error {
	logger := config.GetLogger()
	logger.Info("Applying database schema...")
	if err := applySchema(ctx, db); err != nil {
		return fmt.Errorf("failed to apply schema.sql: %w", err)
	}

	var dimensionCount int
	if err := db.GetContext(ctx, &dimensionCount,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name LIKE 'dim\_%' ESCAPE '\'`); err != nil {
		return fmt.Errorf("failed to inspect schema: %w", err)
	}
	logger.WithFields(logrus.Fields{"dimension_tables": dimensionCount}).Info("Schema applied successfully.")
	return nil
}

// applySchema は埋め込みの schema.sql を実行します。
func applySchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, database.Schema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}
