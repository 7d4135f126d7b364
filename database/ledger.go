package database

import (
	"context"
	"fmt"

	"chipstock/model"

	"github.com/jmoiron/sqlx"
)

// UpsertReceiptInTx は品目の入庫行を書き込みます。品目ごとに現在の入庫行は1つで、再取込時は最新の値で置き換えます。
func UpsertReceiptInTx(ctx context.Context, tx *sqlx.Tx, rec model.InflowRecord) error {
	const q = `
		INSERT INTO invoice (item_id, kind, date, quan_w, quan_gp, note, batch_id)
		VALUES (:item_id, 'receipt', :date, :quan_w, :quan_gp, :note, :batch_id)
		ON CONFLICT(item_id) WHERE kind = 'receipt' DO UPDATE SET
			date = excluded.date,
			quan_w = excluded.quan_w,
			quan_gp = excluded.quan_gp,
			note = excluded.note,
			batch_id = excluded.batch_id,
			created_at = datetime('now')
	`
	if _, err := tx.NamedExecContext(ctx, q, rec); err != nil {
		return fmt.Errorf("UpsertReceiptInTx (item_id=%d) failed: %w", rec.ItemID, err)
	}
	return nil
}

// InsertRefundInTx は返品を入庫側に追加します。返品は累積します。
func InsertRefundInTx(ctx context.Context, tx *sqlx.Tx, rec model.InflowRecord) error {
	const q = `
		INSERT INTO invoice (item_id, kind, date, quan_w, quan_gp, note, batch_id)
		VALUES (:item_id, 'refund', :date, :quan_w, :quan_gp, :note, :batch_id)
	`
	if _, err := tx.NamedExecContext(ctx, q, rec); err != nil {
		return fmt.Errorf("InsertRefundInTx (item_id=%d) failed: %w", rec.ItemID, err)
	}
	return nil
}

// InsertConsumptionInTx は出庫行を追加します。
func InsertConsumptionInTx(ctx context.Context, tx *sqlx.Tx, rec model.OutflowRecord) error {
	const q = `
		INSERT INTO consumption (item_id, date, cons_w, cons_gp, note, transfer_target, recipient, batch_id)
		VALUES (:item_id, :date, :cons_w, :cons_gp, :note, :transfer_target, :recipient, :batch_id)
	`
	if _, err := tx.NamedExecContext(ctx, q, rec); err != nil {
		return fmt.Errorf("InsertConsumptionInTx (item_id=%d) failed: %w", rec.ItemID, err)
	}
	return nil
}

// GetInflowRecordsByItem は品目の入庫側の行 (入庫・返品) を返します。
func GetInflowRecordsByItem(ctx context.Context, q DBTX, itemID int64) ([]model.InflowRecord, error) {
	const query = `
		SELECT id, item_id, kind, date, quan_w, quan_gp, note, batch_id
		FROM invoice WHERE item_id = ? ORDER BY id`
	records := []model.InflowRecord{}
	if err := q.SelectContext(ctx, &records, query, itemID); err != nil {
		return nil, fmt.Errorf("GetInflowRecordsByItem (item_id=%d) failed: %w", itemID, err)
	}
	return records, nil
}

// GetOutflowRecordsByItem は品目の出庫行を返します。
func GetOutflowRecordsByItem(ctx context.Context, q DBTX, itemID int64) ([]model.OutflowRecord, error) {
	const query = `
		SELECT id, item_id, date, cons_w, cons_gp, note, transfer_target, recipient, batch_id
		FROM consumption WHERE item_id = ? ORDER BY id`
	records := []model.OutflowRecord{}
	if err := q.SelectContext(ctx, &records, query, itemID); err != nil {
		return nil, fmt.Errorf("GetOutflowRecordsByItem (item_id=%d) failed: %w", itemID, err)
	}
	return records, nil
}
