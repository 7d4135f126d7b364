// Package reconcile は入庫合計と出庫合計を突き合わせ、品目ごとの残数を求めます。
package reconcile

import (
	"context"
	"strconv"
	"strings"

	"chipstock/apperr"
	"chipstock/config"
	"chipstock/database"
	"chipstock/model"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
)

// ManufacturerAll は検索フォームの「すべて」を表す値で、絞り込みなしと同じです。
const ManufacturerAll = "all"

// Search は品目ごとの入庫・出庫・残数を返します。集計は1文のSQLで行うため、1回の検索は一貫した状態を読みます。
// 残数が負の品目には Warning を付けますが、検索自体は失敗させません。
func Search(ctx context.Context, q database.DBTX, filters model.SearchFilters) ([]model.ItemBalance, error) {
	manufacturer := strings.TrimSpace(filters.Manufacturer)
	if strings.EqualFold(manufacturer, ManufacturerAll) {
		manufacturer = ""
	}

	rows, err := database.GetItemBalances(ctx, q, manufacturer)
	if err != nil {
		return nil, apperr.Persistence("search balances", err)
	}

	folder := cases.Fold()
	chip := folder.String(strings.TrimSpace(filters.ChipCode))
	result := make([]model.ItemBalance, 0, len(rows))
	for _, b := range rows {
		if chip != "" && !strings.Contains(folder.String(b.ChipCode), chip) {
			continue
		}
		result = append(result, settle(b))
	}
	return result, nil
}

// Balance は1品目の残数を返します。入出庫のない品目は NotFoundError です。
func Balance(ctx context.Context, q database.DBTX, itemID int64) (model.ItemBalance, error) {
	b, found, err := database.GetItemBalance(ctx, q, itemID)
	if err != nil {
		return model.ItemBalance{}, apperr.Persistence("item balance", err)
	}
	if !found {
		return model.ItemBalance{}, &apperr.NotFoundError{Dimension: "item", Value: strconv.FormatInt(itemID, 10)}
	}
	return settle(b), nil
}

// History は品目の残数と入出庫の明細を返します。
func History(ctx context.Context, q database.DBTX, itemID int64) (*model.ItemHistory, error) {
	b, err := Balance(ctx, q, itemID)
	if err != nil {
		return nil, err
	}
	inflows, err := database.GetInflowRecordsByItem(ctx, q, itemID)
	if err != nil {
		return nil, apperr.Persistence("item inflows", err)
	}
	outflows, err := database.GetOutflowRecordsByItem(ctx, q, itemID)
	if err != nil {
		return nil, apperr.Persistence("item outflows", err)
	}
	return &model.ItemHistory{Balance: b, Inflows: inflows, Outflows: outflows}, nil
}

// Warnings は残数が負の品目を IntegrityError として返します。
func Warnings(items []model.ItemBalance) []*apperr.IntegrityError {
	var out []*apperr.IntegrityError
	for _, b := range items {
		if b.Negative() {
			out = append(out, integrityError(b))
		}
	}
	return out
}

func settle(b model.ItemBalance) model.ItemBalance {
	b.RemainingWafer = b.ReceivedWafer - b.ConsumedWafer
	b.RemainingGelPack = b.ReceivedGelPack - b.ConsumedGelPack
	if b.Negative() {
		ie := integrityError(b)
		b.Warning = ie.Error()
		config.GetLogger().WithFields(logrus.Fields{
			"module":             "reconcile",
			"item_id":            b.ItemID,
			"remaining_wafer":    b.RemainingWafer,
			"remaining_gel_pack": b.RemainingGelPack,
		}).Warn("negative remainder")
	}
	return b
}

func integrityError(b model.ItemBalance) *apperr.IntegrityError {
	return &apperr.IntegrityError{
		ItemID:           b.ItemID,
		RemainingWafer:   b.RemainingWafer,
		RemainingGelPack: b.RemainingGelPack,
	}
}
