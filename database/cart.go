package database

import (
	"context"
	"fmt"

	"chipstock/model"
)

// UpsertCartEntry はカートに品目を追加します。同じ利用者・品目の行があれば数量を加算します (1文で原子的に)。
func UpsertCartEntry(ctx context.Context, q DBTX, e model.CartEntry) error {
	const query = `
		INSERT INTO cart (
			user_id, item_id, cons_w, cons_gp,
			start, manufacturer, technology, lot, wafer, quadrant, internal_lot,
			chip_code, note, storage, cell, date_added
		) VALUES (
			:user_id, :item_id, :cons_w, :cons_gp,
			:start, :manufacturer, :technology, :lot, :wafer, :quadrant, :internal_lot,
			:chip_code, :note, :storage, :cell, :date_added
		)
		ON CONFLICT(user_id, item_id) DO UPDATE SET
			cons_w = cart.cons_w + excluded.cons_w,
			cons_gp = cart.cons_gp + excluded.cons_gp
	`
	if _, err := q.NamedExecContext(ctx, query, e); err != nil {
		return fmt.Errorf("UpsertCartEntry (user=%d, item=%d) failed: %w", e.UserID, e.ItemID, err)
	}
	return nil
}

// UpdateCartQuantities は数量を上書きし、更新行数を返します。
func UpdateCartQuantities(ctx context.Context, q DBTX, userID, itemID, consW, consGP int64) (int64, error) {
	const query = `UPDATE cart SET cons_w = ?, cons_gp = ? WHERE user_id = ? AND item_id = ?`
	res, err := q.ExecContext(ctx, query, consW, consGP, userID, itemID)
	if err != nil {
		return 0, fmt.Errorf("UpdateCartQuantities (user=%d, item=%d) failed: %w", userID, itemID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("UpdateCartQuantities rows affected: %w", err)
	}
	return n, nil
}

func DeleteCartEntry(ctx context.Context, q DBTX, userID, itemID int64) error {
	const query = `DELETE FROM cart WHERE user_id = ? AND item_id = ?`
	if _, err := q.ExecContext(ctx, query, userID, itemID); err != nil {
		return fmt.Errorf("DeleteCartEntry (user=%d, item=%d) failed: %w", userID, itemID, err)
	}
	return nil
}

func DeleteCartByUser(ctx context.Context, q DBTX, userID int64) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM cart WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("DeleteCartByUser (user=%d) failed: %w", userID, err)
	}
	return nil
}

// GetCartByUser は利用者のカートを追加日順で返します。
func GetCartByUser(ctx context.Context, q DBTX, userID int64) ([]model.CartEntry, error) {
	const query = `
		SELECT user_id, item_id, cons_w, cons_gp,
			start, manufacturer, technology, lot, wafer, quadrant, internal_lot,
			chip_code, note, storage, cell, date_added
		FROM cart
		WHERE user_id = ?
		ORDER BY date_added, item_id`
	entries := []model.CartEntry{}
	if err := q.SelectContext(ctx, &entries, query, userID); err != nil {
		return nil, fmt.Errorf("GetCartByUser (user=%d) failed: %w", userID, err)
	}
	return entries, nil
}
