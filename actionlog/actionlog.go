// Package actionlog は一括取込の操作ログ (user_logs) を記録・参照します。
package actionlog

import (
	"context"

	"chipstock/apperr"
	"chipstock/config"
	"chipstock/database"
	"chipstock/model"

	"github.com/sirupsen/logrus"
)

const (
	ActionInflowUpload  = "Загрузка файла: Приход"
	ActionOutflowUpload = "Загрузка файла: Расход"
	ActionRefundUpload  = "Загрузка файла: Возврат"
)

// Record は操作ログを1件追加します。失敗はログに残して返しますが、呼出側は処理を巻き戻しません。
func Record(ctx context.Context, q database.DBTX, entry model.ActionLogEntry) (int64, error) {
	if entry.UserID <= 0 {
		return 0, &apperr.ValidationError{Field: "user_id", Message: "required"}
	}
	id, err := database.InsertUserLog(ctx, q, entry)
	if err != nil {
		config.GetLogger().WithFields(logrus.Fields{
			"module":      "actionlog",
			"user_id":     entry.UserID,
			"action_type": entry.ActionType,
			"file_name":   entry.FileName,
			"batch_id":    entry.BatchID,
		}).WithError(err).Warn("failed to write action log")
		return 0, apperr.Persistence("record action log", err)
	}
	return id, nil
}

// List は利用者の操作ログを新しい順に返します。
func List(ctx context.Context, q database.DBTX, userID int64, limit int) ([]model.ActionLogEntry, error) {
	if userID <= 0 {
		return nil, &apperr.ValidationError{Field: "user_id", Message: "required"}
	}
	entries, err := database.GetUserLogs(ctx, q, userID, limit)
	if err != nil {
		return nil, apperr.Persistence("list action log", err)
	}
	return entries, nil
}
