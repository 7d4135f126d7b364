// Package render は API ハンドラ共通の JSON 応答と利用者IDの取得を行います。
package render

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"chipstock/apperr"
	"chipstock/config"

	"github.com/sirupsen/logrus"
)

// UserIDHeader は認証済みの利用者IDを運ぶヘッダーです。認証は前段で済んでいる前提です。
const UserIDHeader = "X-User-ID"

// ErrorBody はエラー応答の形です。Row / Field は取込エラーのときだけ入ります。
type ErrorBody struct {
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
	Row     int    `json:"row,omitempty"`
	Field   string `json:"field,omitempty"`
}

// JSON は v を JSON で書き出します。
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		config.GetLogger().WithError(err).Warn("failed to encode response")
	}
}

// Message は {"message": ...} を返します。
func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"message": msg})
}

// Error はエラー種別に応じたステータスで JSON エラーを返します。
func Error(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	body := ErrorBody{Message: err.Error(), Kind: kind(err)}

	var re *apperr.RowError
	if errors.As(err, &re) {
		body.Row = re.Row
		body.Field = re.Field
	}
	if status >= http.StatusInternalServerError {
		config.GetLogger().WithFields(logrus.Fields{"module": "render", "status": status}).WithError(err).Error("request failed")
		body.Message = "internal error"
	}
	JSON(w, status, body)
}

func kind(err error) string {
	var (
		ve *apperr.ValidationError
		nf *apperr.NotFoundError
		ce *apperr.ConflictError
		pe *apperr.PersistenceError
	)
	switch {
	case errors.As(err, &ve):
		return "validation"
	case errors.As(err, &nf):
		return "not_found"
	case errors.As(err, &ce):
		return "conflict"
	case errors.As(err, &pe):
		return "persistence"
	}
	return ""
}

// UserID はリクエストヘッダーから利用者IDを読みます。
func UserID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.Header.Get(UserIDHeader))
	if raw == "" {
		return 0, &apperr.ValidationError{Field: "user_id", Message: "missing " + UserIDHeader + " header"}
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &apperr.ValidationError{Field: "user_id", Message: "invalid " + UserIDHeader + " header"}
	}
	return id, nil
}
