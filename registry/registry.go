// Package registry は品目属性の値を辞書テーブルに登録し、安定した整数IDに変換します。
package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chipstock/apperr"
	"chipstock/config"
	"chipstock/database"
	"chipstock/model"

	"github.com/sirupsen/logrus"
)

// Intern は属性値のIDを返します。未登録なら登録します。
// 同時に同じ値を登録しようとした場合、一意制約で負けた側は勝った側のIDを読み直します。
// 再試行回数を使い切っても、最後の競合の後に必ず1回は読み直します。
func Intern(ctx context.Context, q database.DBTX, dim model.Dimension, value string) (int64, error) {
	if !dim.Valid() {
		return 0, &apperr.ValidationError{Field: string(dim), Message: "unknown dimension"}
	}

	limit := config.GetConfig().InternRetryLimit
	if limit <= 0 {
		limit = 1
	}

	var lastConflict error
	for attempt := 0; attempt < limit; attempt++ {
		id, found, err := database.FindDimensionID(ctx, q, dim, value)
		if err != nil {
			return 0, apperr.Persistence("intern "+string(dim), err)
		}
		if found {
			return id, nil
		}

		id, err = database.InsertDimensionValue(ctx, q, dim, value)
		if err == nil {
			return id, nil
		}
		if !database.IsUniqueViolation(err) {
			return 0, apperr.Persistence("intern "+string(dim), err)
		}
		lastConflict = &apperr.ConflictError{Table: "dim_" + string(dim), Value: value, Err: err}
		config.GetLogger().WithFields(logrus.Fields{
			"dimension": dim,
			"value":     value,
			"attempt":   attempt + 1,
		}).Debug("intern lost insert race, re-reading")
	}

	id, found, err := database.FindDimensionID(ctx, q, dim, value)
	if err != nil {
		return 0, apperr.Persistence("intern "+string(dim), err)
	}
	if found {
		return id, nil
	}
	return 0, &apperr.PersistenceError{Op: "intern " + string(dim), Err: lastConflict}
}

// Resolve は登録済みの属性値のIDを返します。登録は行いません。
func Resolve(ctx context.Context, q database.DBTX, dim model.Dimension, value string) (int64, error) {
	if !dim.Valid() {
		return 0, &apperr.ValidationError{Field: string(dim), Message: "unknown dimension"}
	}
	id, found, err := database.FindDimensionID(ctx, q, dim, value)
	if err != nil {
		return 0, apperr.Persistence("resolve "+string(dim), err)
	}
	if !found {
		return 0, &apperr.NotFoundError{Dimension: string(dim), Value: value}
	}
	return id, nil
}

// DimensionError は失敗した属性を保持します。取込時の列名報告に使います。
type DimensionError struct {
	Dimension model.Dimension
	Err       error
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Dimension, e.Err)
}

func (e *DimensionError) Unwrap() error { return e.Err }

// InternAll は13属性すべてを登録し、品目の属性IDの組を返します。
func InternAll(ctx context.Context, q database.DBTX, names model.ItemNames) (model.ItemIdentity, error) {
	var ident model.ItemIdentity
	for _, d := range model.AllDimensions {
		id, err := Intern(ctx, q, d, normalize(names.Get(d)))
		if err != nil {
			return model.ItemIdentity{}, &DimensionError{Dimension: d, Err: err}
		}
		ident.Set(d, id)
	}
	return ident, nil
}

// ResolveSubset は dims の属性だけを解決します。未登録の値があれば NotFoundError を返します。
func ResolveSubset(ctx context.Context, q database.DBTX, names model.ItemNames, dims []model.Dimension) (model.ItemIdentity, error) {
	var ident model.ItemIdentity
	for _, d := range dims {
		id, err := Resolve(ctx, q, d, normalize(names.Get(d)))
		if err != nil {
			return model.ItemIdentity{}, &DimensionError{Dimension: d, Err: err}
		}
		ident.Set(d, id)
	}
	return ident, nil
}

// FailedDimension は err から失敗した属性を取り出します。
func FailedDimension(err error) (model.Dimension, bool) {
	var de *DimensionError
	if errors.As(err, &de) {
		return de.Dimension, true
	}
	return "", false
}

func normalize(v string) string {
	return strings.TrimSpace(v)
}
