package database

import (
	"context"
	"fmt"

	"chipstock/model"
)

// InsertUserLog は操作ログを1行追加し、そのIDを返します。
func InsertUserLog(ctx context.Context, q DBTX, e model.ActionLogEntry) (int64, error) {
	const query = `
		INSERT INTO user_logs (user_id, action_type, file_name, target_table, batch_id, row_count)
		VALUES (:user_id, :action_type, :file_name, :target_table, :batch_id, :row_count)
	`
	res, err := q.NamedExecContext(ctx, query, e)
	if err != nil {
		return 0, fmt.Errorf("InsertUserLog (user=%d, action=%s) failed: %w", e.UserID, e.ActionType, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("InsertUserLog could not read id: %w", err)
	}
	return id, nil
}

// GetUserLogs は利用者の操作ログを新しい順に返します。limit <= 0 は全件です。
func GetUserLogs(ctx context.Context, q DBTX, userID int64, limit int) ([]model.ActionLogEntry, error) {
	query := `
		SELECT id, user_id, action_type, file_name, target_table, batch_id, row_count, created_at
		FROM user_logs WHERE user_id = ? ORDER BY id DESC`
	args := []interface{}{userID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	entries := []model.ActionLogEntry{}
	if err := q.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("GetUserLogs (user=%d) failed: %w", userID, err)
	}
	return entries, nil
}
