package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"chipstock/apperr"
	"chipstock/model"
)

type dimensionQuery struct {
	selectID  string
	insert    string
	listNames string
}

// dimensionQueries は属性ごとの固定SQLです。テーブル名は model.AllDimensions からのみ作られます。
var dimensionQueries = func() map[model.Dimension]dimensionQuery {
	m := make(map[model.Dimension]dimensionQuery, len(model.AllDimensions))
	for _, d := range model.AllDimensions {
		table := "dim_" + string(d)
		m[d] = dimensionQuery{
			selectID:  `SELECT id FROM ` + table + ` WHERE name = ?`,
			insert:    `INSERT INTO ` + table + ` (name) VALUES (?)`,
			listNames: `SELECT name FROM ` + table + ` ORDER BY name`,
		}
	}
	return m
}()

func queriesFor(dim model.Dimension) (dimensionQuery, error) {
	q, ok := dimensionQueries[dim]
	if !ok {
		return dimensionQuery{}, &apperr.ValidationError{Field: "dimension", Message: fmt.Sprintf("unknown dimension %q", dim)}
	}
	return q, nil
}

// FindDimensionID は名前に一致する属性IDを検索します。見つからない場合は found=false を返します。
func FindDimensionID(ctx context.Context, q DBTX, dim model.Dimension, name string) (id int64, found bool, err error) {
	dq, err := queriesFor(dim)
	if err != nil {
		return 0, false, err
	}
	err = q.GetContext(ctx, &id, dq.selectID, name)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("FindDimensionID (%s=%q) failed: %w", dim, name, err)
	}
	return id, true, nil
}

// InsertDimensionValue は新しい属性値を登録します。一意制約違反はそのまま返すので、呼出側で IsUniqueViolation を確認してください。
func InsertDimensionValue(ctx context.Context, q DBTX, dim model.Dimension, name string) (int64, error) {
	dq, err := queriesFor(dim)
	if err != nil {
		return 0, err
	}
	res, err := q.ExecContext(ctx, dq.insert, name)
	if err != nil {
		return 0, fmt.Errorf("InsertDimensionValue (%s=%q) failed: %w", dim, name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("InsertDimensionValue (%s=%q) could not read id: %w", dim, name, err)
	}
	return id, nil
}

// ListDimensionNames は登録済みの属性値を名前順で返します。
func ListDimensionNames(ctx context.Context, q DBTX, dim model.Dimension) ([]string, error) {
	dq, err := queriesFor(dim)
	if err != nil {
		return nil, err
	}
	names := []string{}
	if err := q.SelectContext(ctx, &names, dq.listNames); err != nil {
		return nil, fmt.Errorf("ListDimensionNames (%s) failed: %w", dim, err)
	}
	return names, nil
}
