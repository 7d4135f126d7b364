package cart

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"chipstock/apperr"
	"chipstock/config"
	"chipstock/render"

	"github.com/jmoiron/sqlx"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type itemPayload struct {
	ItemID      int64 `json:"itemId"`
	ConsWafer   int64 `json:"consWafer"`
	ConsGelPack int64 `json:"consGelPack"`
}

func decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &apperr.ValidationError{Field: "body", Message: "invalid request body"}
	}
	return nil
}

// ListCartHandler は利用者のカートを返します。
func ListCartHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := render.UserID(r)
		if err != nil {
			render.Error(w, err)
			return
		}
		entries, err := List(r.Context(), db, userID)
		if err != nil {
			render.Error(w, err)
			return
		}
		render.JSON(w, http.StatusOK, entries)
	}
}

// AddCartHandler は品目をカートに追加します。
func AddCartHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := render.UserID(r)
		if err != nil {
			render.Error(w, err)
			return
		}
		var req AddRequest
		if err := decode(r, &req); err != nil {
			render.Error(w, err)
			return
		}
		if err := Add(r.Context(), db, userID, req); err != nil {
			render.Error(w, err)
			return
		}
		render.Message(w, http.StatusOK, "added to cart")
	}
}

// UpdateCartHandler は数量を上書きします。
func UpdateCartHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := render.UserID(r)
		if err != nil {
			render.Error(w, err)
			return
		}
		var p itemPayload
		if err := decode(r, &p); err != nil {
			render.Error(w, err)
			return
		}
		if err := Update(r.Context(), db, userID, p.ItemID, p.ConsWafer, p.ConsGelPack); err != nil {
			render.Error(w, err)
			return
		}
		render.Message(w, http.StatusOK, "cart updated")
	}
}

// RemoveCartHandler は品目をカートから外します。
func RemoveCartHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := render.UserID(r)
		if err != nil {
			render.Error(w, err)
			return
		}
		var p itemPayload
		if err := decode(r, &p); err != nil {
			render.Error(w, err)
			return
		}
		if err := Remove(r.Context(), db, userID, p.ItemID); err != nil {
			render.Error(w, err)
			return
		}
		render.Message(w, http.StatusOK, "removed from cart")
	}
}

// ClearCartHandler はカートを空にします。
func ClearCartHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := render.UserID(r)
		if err != nil {
			render.Error(w, err)
			return
		}
		if err := Clear(r.Context(), db, userID); err != nil {
			render.Error(w, err)
			return
		}
		render.Message(w, http.StatusOK, "cart cleared")
	}
}

// ExportCartHandler はカートを xlsx で返します。?clear=true のときは書き出し後にカートを空にします。
func ExportCartHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := render.UserID(r)
		if err != nil {
			render.Error(w, err)
			return
		}
		clearAfter, _ := strconv.ParseBool(r.URL.Query().Get("clear"))
		sheet := config.GetConfig().ExportSheetName

		var buf bytes.Buffer
		if clearAfter {
			_, err = Checkout(r.Context(), db, userID, &buf, sheet)
		} else {
			_, err = Export(r.Context(), db, userID, &buf, sheet)
		}
		if err != nil {
			render.Error(w, err)
			return
		}

		fileName := fmt.Sprintf("cart_%d_%s.xlsx", userID, time.Now().Format("20060102_150405"))
		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="`+fileName+`"`)
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		w.WriteHeader(http.StatusOK)
		if _, err := buf.WriteTo(w); err != nil {
			config.LogError(config.GetLogger(), "cart", "ExportCartHandler", "write xlsx response", fileName, err)
		}
	}
}
