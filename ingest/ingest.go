// Package ingest は入庫・出庫・返品ファイルの行を台帳に一括登録します。
// 1ファイルは1トランザクションで、どこかの行で失敗すればファイル全体を取り消します。
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chipstock/actionlog"
	"chipstock/apperr"
	"chipstock/config"
	"chipstock/database"
	"chipstock/model"
	"chipstock/registry"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

const (
	// blankLocation は保管場所・セルが空欄のときに使う値です。
	blankLocation = "-"
	// defaultRefundNote は返品行の備考が空欄のときの値です。
	defaultRefundNote = "возврат"
)

type batch struct {
	kind        string
	userID      int64
	fileName    string
	actionType  string
	targetTable string
	rows        int
}

// run は fn を1トランザクションで実行し、コミット後に操作ログを1件書きます。
func run(ctx context.Context, db *sqlx.DB, b batch, fn func(tx *sqlx.Tx, batchID string) error) (*model.IngestResult, error) {
	logger := config.GetLogger()
	if b.userID <= 0 {
		return nil, &apperr.ValidationError{Field: "user_id", Message: "required"}
	}
	if b.rows == 0 {
		return nil, &apperr.ValidationError{Field: "file", Message: "no data rows"}
	}

	batchID := uuid.NewString()
	fields := logrus.Fields{
		"module":   "ingest",
		"kind":     b.kind,
		"user_id":  b.userID,
		"file":     b.fileName,
		"batch_id": batchID,
		"rows":     b.rows,
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, apperr.Persistence("begin "+b.kind+" batch", err)
	}
	defer tx.Rollback()

	if err := fn(tx, batchID); err != nil {
		logger.WithFields(fields).WithError(err).Warn("batch rolled back")
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, apperr.Persistence("commit "+b.kind+" batch", err)
	}
	logger.WithFields(fields).Info("batch committed")

	result := &model.IngestResult{BatchID: batchID, Rows: b.rows, TargetTable: b.targetTable}
	_, auditErr := actionlog.Record(ctx, db, model.ActionLogEntry{
		UserID:      b.userID,
		ActionType:  b.actionType,
		FileName:    b.fileName,
		TargetTable: b.targetTable,
		BatchID:     batchID,
		RowCount:    b.rows,
	})
	if auditErr != nil {
		result.AuditError = auditErr.Error()
	}
	return result, nil
}

// Inflow は入庫行を登録します。属性値は未登録なら作成し、同じ品目の入庫は最新の値で置き換えます。
func Inflow(ctx context.Context, db *sqlx.DB, userID int64, fileName string, rows []model.InflowRow) (*model.IngestResult, error) {
	b := batch{
		kind: "inflow", userID: userID, fileName: fileName,
		actionType: actionlog.ActionInflowUpload, targetTable: "invoice", rows: len(rows),
	}
	return run(ctx, db, b, func(tx *sqlx.Tx, batchID string) error {
		for i, row := range rows {
			if err := inflowRow(ctx, tx, batchID, row); err != nil {
				return rowError(i+1, err)
			}
		}
		return nil
	})
}

func inflowRow(ctx context.Context, tx *sqlx.Tx, batchID string, row model.InflowRow) error {
	row.ItemNames = normalizeNames(row.ItemNames)
	if err := validateRow(row, inflowColumns); err != nil {
		return err
	}
	ident, err := registry.InternAll(ctx, tx, row.ItemNames)
	if err != nil {
		return err
	}
	itemID, err := database.EnsureItem(ctx, tx, ident)
	if err != nil {
		return apperr.Persistence("ensure item", err)
	}
	rec := model.InflowRecord{
		ItemID:      itemID,
		Kind:        model.InflowReceipt,
		Date:        row.Date,
		QuanWafer:   model.QtyOrZero(row.QuanWafer),
		QuanGelPack: model.QtyOrZero(row.QuanGelPack),
		Note:        strings.TrimSpace(row.Note),
		BatchID:     batchID,
	}
	return apperr.Persistence("write receipt", database.UpsertReceiptInTx(ctx, tx, rec))
}

// Outflow は出庫行を登録します。属性値・品目は入庫済みでなければなりません。出庫は累積します。
func Outflow(ctx context.Context, db *sqlx.DB, userID int64, fileName string, rows []model.OutflowRow) (*model.IngestResult, error) {
	b := batch{
		kind: "outflow", userID: userID, fileName: fileName,
		actionType: actionlog.ActionOutflowUpload, targetTable: "consumption", rows: len(rows),
	}
	return run(ctx, db, b, func(tx *sqlx.Tx, batchID string) error {
		for i, row := range rows {
			if err := outflowRow(ctx, tx, batchID, row); err != nil {
				return rowError(i+1, err)
			}
		}
		return nil
	})
}

func outflowRow(ctx context.Context, tx *sqlx.Tx, batchID string, row model.OutflowRow) error {
	row.ItemNames = normalizeNames(row.ItemNames)
	if err := validateRow(row, outflowColumns); err != nil {
		return err
	}
	itemID, err := resolveReceivedItem(ctx, tx, row.ItemNames)
	if err != nil {
		return err
	}
	rec := model.OutflowRecord{
		ItemID:         itemID,
		Date:           row.Date,
		ConsWafer:      model.QtyOrZero(row.ConsWafer),
		ConsGelPack:    model.QtyOrZero(row.ConsGelPack),
		Note:           strings.TrimSpace(row.Note),
		TransferTarget: strings.TrimSpace(row.TransferTarget),
		Recipient:      strings.TrimSpace(row.Recipient),
		BatchID:        batchID,
	}
	return apperr.Persistence("write consumption", database.InsertConsumptionInTx(ctx, tx, rec))
}

// Refund は返品行を入庫側に追加します。品目の解決は出庫と同じです。
func Refund(ctx context.Context, db *sqlx.DB, userID int64, fileName string, rows []model.RefundRow) (*model.IngestResult, error) {
	b := batch{
		kind: "refund", userID: userID, fileName: fileName,
		actionType: actionlog.ActionRefundUpload, targetTable: "invoice", rows: len(rows),
	}
	return run(ctx, db, b, func(tx *sqlx.Tx, batchID string) error {
		for i, row := range rows {
			if err := refundRow(ctx, tx, batchID, row); err != nil {
				return rowError(i+1, err)
			}
		}
		return nil
	})
}

func refundRow(ctx context.Context, tx *sqlx.Tx, batchID string, row model.RefundRow) error {
	row.ItemNames = normalizeNames(row.ItemNames)
	if err := validateRow(row, refundColumns); err != nil {
		return err
	}
	itemID, err := resolveReceivedItem(ctx, tx, row.ItemNames)
	if err != nil {
		return err
	}
	note := strings.TrimSpace(row.Note)
	if note == "" {
		note = defaultRefundNote
	}
	rec := model.InflowRecord{
		ItemID:      itemID,
		Kind:        model.InflowRefund,
		Date:        row.Date,
		QuanWafer:   model.QtyOrZero(row.QuanWafer),
		QuanGelPack: model.QtyOrZero(row.QuanGelPack),
		Note:        note,
		BatchID:     batchID,
	}
	return apperr.Persistence("write refund", database.InsertRefundInTx(ctx, tx, rec))
}

// resolveReceivedItem は出庫・返品ファイルの10属性から入庫済みの品目を1つに特定します。
func resolveReceivedItem(ctx context.Context, q database.DBTX, names model.ItemNames) (int64, error) {
	ident, err := registry.ResolveSubset(ctx, q, names, model.OutflowDimensions)
	if err != nil {
		return 0, err
	}
	ids, err := database.FindItemsBySubset(ctx, q, ident, model.OutflowDimensions)
	if err != nil {
		return 0, apperr.Persistence("find item", err)
	}
	switch len(ids) {
	case 0:
		return 0, &apperr.NotFoundError{Dimension: "item", Value: describe(names)}
	case 1:
		return ids[0], nil
	default:
		return 0, &apperr.ValidationError{
			Field:   "item",
			Message: fmt.Sprintf("ambiguous item %s: %d received items differ only in chip number, package or size", describe(names), len(ids)),
		}
	}
}

func describe(n model.ItemNames) string {
	return fmt.Sprintf("%s/%s/%s/%s/%s", n.Start, n.Manufacturer, n.Lot, n.Wafer, n.ChipCode)
}

// normalizeNames は前後の空白を除き、空欄の保管場所・セルを "-" にします。
func normalizeNames(n model.ItemNames) model.ItemNames {
	for _, d := range model.AllDimensions {
		n.Set(d, strings.TrimSpace(n.Get(d)))
	}
	if n.Storage == "" {
		n.Storage = blankLocation
	}
	if n.Cell == "" {
		n.Cell = blankLocation
	}
	return n
}

// rowError は行番号と列見出しを付けたエラーにします。
func rowError(line int, err error) error {
	var re *apperr.RowError
	if errors.As(err, &re) {
		return err
	}
	field := ""
	var de *registry.DimensionError
	var ve *apperr.ValidationError
	switch {
	case errors.As(err, &de):
		field = model.DimensionColumns[de.Dimension]
		err = de.Err
	case errors.As(err, &ve):
		field = ve.Field
	}
	return &apperr.RowError{Row: line, Field: field, Err: err}
}
