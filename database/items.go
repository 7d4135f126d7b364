package database

import (
	"context"
	"fmt"
	"strings"

	"chipstock/model"

	"github.com/jmoiron/sqlx"
)

var (
	ensureItemQuery   string
	itemsBySubsetBase string
)

func init() {
	cols := make([]string, len(model.AllDimensions))
	params := make([]string, len(model.AllDimensions))
	for i, d := range model.AllDimensions {
		cols[i] = d.Column()
		params[i] = ":" + d.Column()
	}
	// DO UPDATE は既存行でも RETURNING に id を返させるためのものです。
	ensureItemQuery = `INSERT INTO items (` + strings.Join(cols, ", ") + `) VALUES (` + strings.Join(params, ", ") + `)
		ON CONFLICT(` + strings.Join(cols, ", ") + `) DO UPDATE SET start_id = excluded.start_id
		RETURNING id`

	itemsBySubsetBase = `SELECT id FROM items WHERE `
}

// EnsureItem は属性IDの組に対応する品目を登録し、その item_id を返します。既存の組なら同じIDを返します。
func EnsureItem(ctx context.Context, q DBTX, ident model.ItemIdentity) (int64, error) {
	query, args, err := sqlx.Named(ensureItemQuery, ident)
	if err != nil {
		return 0, fmt.Errorf("EnsureItem bind failed: %w", err)
	}
	var id int64
	if err := q.GetContext(ctx, &id, q.Rebind(query), args...); err != nil {
		return 0, fmt.Errorf("EnsureItem failed: %w", err)
	}
	return id, nil
}

// FindItemsBySubset は指定した属性だけが一致する品目IDを返します。
func FindItemsBySubset(ctx context.Context, q DBTX, ident model.ItemIdentity, dims []model.Dimension) ([]int64, error) {
	if len(dims) == 0 {
		return nil, fmt.Errorf("FindItemsBySubset: no dimensions given")
	}
	conds := make([]string, len(dims))
	args := make([]interface{}, len(dims))
	for i, d := range dims {
		if !d.Valid() {
			return nil, fmt.Errorf("FindItemsBySubset: unknown dimension %q", d)
		}
		conds[i] = d.Column() + " = ?"
		args[i] = ident.Get(d)
	}
	query := itemsBySubsetBase + strings.Join(conds, " AND ") + " ORDER BY id"

	ids := []int64{}
	if err := q.SelectContext(ctx, &ids, q.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("FindItemsBySubset failed: %w", err)
	}
	return ids, nil
}
