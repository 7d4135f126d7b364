// Package dbtest はテスト用にスキーマ適用済みの SQLite データベースを用意します。
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"chipstock/loader"

	"github.com/jmoiron/sqlx"
)

// Open は t.TempDir() 配下に新しいデータベースファイルを作り、スキーマを適用して返します。
// テスト終了時に接続は閉じられます。
func Open(t testing.TB) *sqlx.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chipstock_test.db")
	db, err := loader.Open(path, 4)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := loader.InitDatabase(context.Background(), db); err != nil {
		t.Fatalf("init test database: %v", err)
	}
	return db
}

// Count は query が返す件数を読み取ります。
func Count(t testing.TB, db *sqlx.DB, query string, args ...interface{}) int {
	t.Helper()
	var n int
	if err := db.Get(&n, query, args...); err != nil {
		t.Fatalf("count %q: %v", query, err)
	}
	return n
}
