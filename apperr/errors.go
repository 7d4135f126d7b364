// Package apperr は台帳・カート処理で使うエラー種別を定義します。
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError は入力値の欠落・不正を表します。
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NotFoundError は既存であるべき値が見つからなかったことを表します。
type NotFoundError struct {
	Dimension string
	Value     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Dimension, e.Value)
}

// ConflictError は一意制約違反です。registry の再試行ループ内でのみ使われます。
type ConflictError struct {
	Table string
	Value string
	Err   error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s for %q: %v", e.Table, e.Value, e.Err)
}

func (e *ConflictError) Unwrap() error { return e.Err }

// PersistenceError はストレージ層の失敗です。
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IntegrityError は出庫が入庫を上回った品目を表します。検索全体は失敗させません。
type IntegrityError struct {
	ItemID           int64 `json:"itemId"`
	RemainingWafer   int64 `json:"remainingWafer"`
	RemainingGelPack int64 `json:"remainingGelPack"`
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("item %d: negative remainder (wafer %d, gelpack %d)",
		e.ItemID, e.RemainingWafer, e.RemainingGelPack)
}

// RowError は取込ファイルの行・列の位置情報を付けたエラーです。Row はデータ行の1始まりの番号です。
type RowError struct {
	Row   int
	Field string
	Err   error
}

func (e *RowError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("row %d: %v", e.Row, e.Err)
	}
	return fmt.Sprintf("row %d, field %s: %v", e.Row, e.Field, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// Persistence は生のストレージエラーを PersistenceError で包みます。
// 既に種別付きのエラーはそのまま返します。
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsTyped(err) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// IsTyped は err が既にこのパッケージのエラー種別を持つかどうかを返します。
func IsTyped(err error) bool {
	var (
		ve *ValidationError
		nf *NotFoundError
		ce *ConflictError
		pe *PersistenceError
		ie *IntegrityError
	)
	return errors.As(err, &ve) || errors.As(err, &nf) || errors.As(err, &ce) ||
		errors.As(err, &pe) || errors.As(err, &ie)
}

// HTTPStatus はエラー種別をHTTPステータスに対応付けます。
func HTTPStatus(err error) int {
	var (
		ve *ValidationError
		nf *NotFoundError
		ce *ConflictError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &nf):
		return http.StatusNotFound
	case errors.As(err, &ce):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
