// Package cart は出庫前の品目を利用者ごとに一時保管し、出庫ファイル形式で書き出します。
package cart

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"chipstock/apperr"
	"chipstock/config"
	"chipstock/database"
	"chipstock/model"
	"chipstock/reconcile"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

var validate = validator.New()

// AddRequest はカート追加の入力です。Display の空欄は品目の属性名で補います。
type AddRequest struct {
	ItemID      int64             `json:"itemId" validate:"gt=0"`
	ConsWafer   int64             `json:"consWafer" validate:"min=0"`
	ConsGelPack int64             `json:"consGelPack" validate:"min=0"`
	Display     model.CartDisplay `json:"display"`
}

// Add はカートに品目を追加します。同じ品目が既にあれば数量を加算します。
func Add(ctx context.Context, db *sqlx.DB, userID int64, req AddRequest) error {
	if err := checkUser(userID); err != nil {
		return err
	}
	if err := validate.Struct(req); err != nil {
		return validationError(err)
	}
	if req.ConsWafer == 0 && req.ConsGelPack == 0 {
		return &apperr.ValidationError{Field: "quantity", Message: "wafer and gelpack quantities are both zero"}
	}

	balance, err := reconcile.Balance(ctx, db, req.ItemID)
	if err != nil {
		return err
	}
	entry := model.CartEntry{
		UserID:      userID,
		ItemID:      req.ItemID,
		ConsWafer:   req.ConsWafer,
		ConsGelPack: req.ConsGelPack,
		CartDisplay: mergeDisplay(req.Display, model.DisplayFromBalance(balance)),
		DateAdded:   time.Now().Format("2006-01-02 15:04:05"),
	}
	if err := database.UpsertCartEntry(ctx, db, entry); err != nil {
		return apperr.Persistence("add to cart", err)
	}
	config.GetLogger().WithFields(logrus.Fields{
		"module": "cart", "user_id": userID, "item_id": req.ItemID,
		"cons_w": req.ConsWafer, "cons_gp": req.ConsGelPack,
	}).Debug("cart entry added")
	return nil
}

// Update は数量を上書きします。カートにない品目は NotFoundError です。
func Update(ctx context.Context, db database.DBTX, userID, itemID, consWafer, consGelPack int64) error {
	if err := checkUser(userID); err != nil {
		return err
	}
	if itemID <= 0 {
		return &apperr.ValidationError{Field: "itemId", Message: "required"}
	}
	if consWafer < 0 || consGelPack < 0 {
		return &apperr.ValidationError{Field: "quantity", Message: "must not be negative"}
	}
	n, err := database.UpdateCartQuantities(ctx, db, userID, itemID, consWafer, consGelPack)
	if err != nil {
		return apperr.Persistence("update cart", err)
	}
	if n == 0 {
		return &apperr.NotFoundError{Dimension: "cart item", Value: strconv.FormatInt(itemID, 10)}
	}
	return nil
}

// Remove は品目をカートから外します。無い場合は何もしません。
func Remove(ctx context.Context, db database.DBTX, userID, itemID int64) error {
	if err := checkUser(userID); err != nil {
		return err
	}
	return apperr.Persistence("remove from cart", database.DeleteCartEntry(ctx, db, userID, itemID))
}

// Clear は利用者のカートを空にします。
func Clear(ctx context.Context, db database.DBTX, userID int64) error {
	if err := checkUser(userID); err != nil {
		return err
	}
	return apperr.Persistence("clear cart", database.DeleteCartByUser(ctx, db, userID))
}

// List は利用者のカートを追加順で返します。
func List(ctx context.Context, db database.DBTX, userID int64) ([]model.CartEntry, error) {
	if err := checkUser(userID); err != nil {
		return nil, err
	}
	entries, err := database.GetCartByUser(ctx, db, userID)
	if err != nil {
		return nil, apperr.Persistence("list cart", err)
	}
	return entries, nil
}

// Export はカートを出庫ファイル形式の xlsx で w に書き出し、行数を返します。カートは変更しません。
func Export(ctx context.Context, db database.DBTX, userID int64, w io.Writer, sheet string) (int, error) {
	entries, err := List(ctx, db, userID)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, &apperr.NotFoundError{Dimension: "cart", Value: strconv.FormatInt(userID, 10)}
	}
	if err := writeWorkbook(w, sheet, entries); err != nil {
		return 0, err
	}
	return len(entries), nil
}

// Checkout は書き出しとカートの削除を1トランザクションで行います。書き出しに失敗した場合カートは残ります。
func Checkout(ctx context.Context, db *sqlx.DB, userID int64, w io.Writer, sheet string) (int, error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, apperr.Persistence("begin checkout", err)
	}
	defer tx.Rollback()

	var buf bytes.Buffer
	n, err := Export(ctx, tx, userID, &buf, sheet)
	if err != nil {
		return 0, err
	}
	if err := Clear(ctx, tx, userID); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, apperr.Persistence("commit checkout", err)
	}
	if _, err := buf.WriteTo(w); err != nil {
		return 0, fmt.Errorf("write checkout file: %w", err)
	}
	return n, nil
}

func writeWorkbook(w io.Writer, sheet string, entries []model.CartEntry) error {
	f := excelize.NewFile()
	defer f.Close()

	if sheet == "" {
		sheet = "Sheet1"
	}
	if def := f.GetSheetName(0); def != sheet {
		if err := f.SetSheetName(def, sheet); err != nil {
			return fmt.Errorf("rename sheet: %w", err)
		}
	}

	header := make([]interface{}, len(model.ExportColumns))
	for i, c := range model.ExportColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, e := range entries {
		row := exportRow(e)
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

// exportRow は ExportColumns の順にセル値を並べます。カートに無い列は空欄です。
func exportRow(e model.CartEntry) []interface{} {
	values := map[string]interface{}{
		model.ColStart:          e.Start,
		model.ColManufacturer:   e.Manufacturer,
		model.ColTechnology:     e.Technology,
		model.ColLot:            e.Lot,
		model.ColWafer:          e.Wafer,
		model.ColQuadrant:       e.Quadrant,
		model.ColInternalLot:    e.InternalLot,
		model.ColChipCode:       e.ChipCode,
		model.ColOutflowDate:    dateOnly(e.DateAdded),
		model.ColOutflowWafer:   e.ConsWafer,
		model.ColOutflowGelPack: e.ConsGelPack,
		model.ColNote:           e.Note,
		model.ColStorage:        e.Storage,
		model.ColCell:           e.Cell,
	}
	row := make([]interface{}, len(model.ExportColumns))
	for i, col := range model.ExportColumns {
		if v, ok := values[col]; ok {
			row[i] = v
		}
	}
	return row
}

func dateOnly(s string) string {
	if len(s) >= len("2006-01-02") {
		return s[:len("2006-01-02")]
	}
	return s
}

func mergeDisplay(given, fallback model.CartDisplay) model.CartDisplay {
	pick := func(a, b string) string {
		if a != "" {
			return a
		}
		return b
	}
	return model.CartDisplay{
		Start:        pick(given.Start, fallback.Start),
		Manufacturer: pick(given.Manufacturer, fallback.Manufacturer),
		Technology:   pick(given.Technology, fallback.Technology),
		Lot:          pick(given.Lot, fallback.Lot),
		Wafer:        pick(given.Wafer, fallback.Wafer),
		Quadrant:     pick(given.Quadrant, fallback.Quadrant),
		InternalLot:  pick(given.InternalLot, fallback.InternalLot),
		ChipCode:     pick(given.ChipCode, fallback.ChipCode),
		Note:         pick(given.Note, fallback.Note),
		Storage:      pick(given.Storage, fallback.Storage),
		Cell:         pick(given.Cell, fallback.Cell),
	}
}

func checkUser(userID int64) error {
	if userID <= 0 {
		return &apperr.ValidationError{Field: "user_id", Message: "required"}
	}
	return nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &apperr.ValidationError{Field: fe.Field(), Message: "failed " + fe.Tag() + " check"}
	}
	return &apperr.ValidationError{Message: err.Error()}
}
