package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"chipstock/model"
)

var balanceBaseQuery = buildBalanceQuery()

// buildBalanceQuery は入庫・出庫を品目ごとに集計し、属性名を結合する1本のSQLを組み立てます。
func buildBalanceQuery() string {
	var names, joins []string
	for _, d := range model.AllDimensions {
		alias := "d_" + string(d)
		names = append(names, alias+".name AS "+string(d))
		joins = append(joins, "JOIN dim_"+string(d)+" "+alias+" ON "+alias+".id = i."+d.Column())
	}
	return `
		WITH received AS (
			SELECT item_id, SUM(quan_w) AS w, SUM(quan_gp) AS gp
			FROM invoice GROUP BY item_id
		),
		consumed AS (
			SELECT item_id, SUM(cons_w) AS w, SUM(cons_gp) AS gp
			FROM consumption GROUP BY item_id
		)
		SELECT
			i.id AS item_id,
			` + strings.Join(names, ",\n\t\t\t") + `,
			COALESCE(rc.note, '') AS note,
			COALESCE(r.w, 0) AS received_w,
			COALESCE(r.gp, 0) AS received_gp,
			COALESCE(c.w, 0) AS consumed_w,
			COALESCE(c.gp, 0) AS consumed_gp
		FROM items i
		LEFT JOIN received r ON r.item_id = i.id
		LEFT JOIN consumed c ON c.item_id = i.id
		LEFT JOIN invoice rc ON rc.item_id = i.id AND rc.kind = 'receipt'
		` + strings.Join(joins, "\n\t\t") + `
		WHERE (r.item_id IS NOT NULL OR c.item_id IS NOT NULL)`
}

// GetItemBalances は全品目の入庫合計・出庫合計を返します。manufacturer が空でなければ完全一致で絞り込みます。
func GetItemBalances(ctx context.Context, q DBTX, manufacturer string) ([]model.ItemBalance, error) {
	query := balanceBaseQuery
	var args []interface{}
	if manufacturer != "" {
		query += ` AND d_manufacturer.name = ?`
		args = append(args, manufacturer)
	}
	query += ` ORDER BY i.id`

	balances := []model.ItemBalance{}
	if err := q.SelectContext(ctx, &balances, q.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("GetItemBalances failed: %w", err)
	}
	return balances, nil
}

// GetItemBalance は1品目分の集計を返します。該当がなければ found=false です。
func GetItemBalance(ctx context.Context, q DBTX, itemID int64) (balance model.ItemBalance, found bool, err error) {
	query := balanceBaseQuery + ` AND i.id = ?`
	err = q.GetContext(ctx, &balance, q.Rebind(query), itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ItemBalance{}, false, nil
	}
	if err != nil {
		return model.ItemBalance{}, false, fmt.Errorf("GetItemBalance (item_id=%d) failed: %w", itemID, err)
	}
	return balance, true, nil
}
