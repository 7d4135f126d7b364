package reconcile

import (
	"net/http"
	"strconv"

	"chipstock/apperr"
	"chipstock/database"
	"chipstock/model"
	"chipstock/render"

	"github.com/jmoiron/sqlx"
)

type searchResponse struct {
	Items    []model.ItemBalance      `json:"items"`
	Warnings []*apperr.IntegrityError `json:"warnings,omitempty"`
}

// SearchHandler は ?chip=...&manufacturer=... で在庫を検索します。
func SearchHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters := model.SearchFilters{
			ChipCode:     r.URL.Query().Get("chip"),
			Manufacturer: r.URL.Query().Get("manufacturer"),
		}
		items, err := Search(r.Context(), db, filters)
		if err != nil {
			render.Error(w, err)
			return
		}
		render.JSON(w, http.StatusOK, searchResponse{Items: items, Warnings: Warnings(items)})
	}
}

// DimensionValuesHandler は /api/dimensions/{dim} の登録済みの値を返します (検索フォームの選択肢用)。
func DimensionValuesHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dim := model.Dimension(r.PathValue("dim"))
		if !dim.Valid() {
			render.Error(w, &apperr.ValidationError{Field: "dimension", Message: "unknown dimension " + string(dim)})
			return
		}
		names, err := database.ListDimensionNames(r.Context(), db, dim)
		if err != nil {
			render.Error(w, apperr.Persistence("list dimension", err))
			return
		}
		render.JSON(w, http.StatusOK, map[string]interface{}{"dimension": dim, "values": names})
	}
}

// ItemHistoryHandler は /api/items/{id}/history の明細を返します。
func ItemHistoryHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil || itemID <= 0 {
			render.Error(w, &apperr.ValidationError{Field: "itemId", Message: "invalid item id"})
			return
		}
		h, err := History(r.Context(), db, itemID)
		if err != nil {
			render.Error(w, err)
			return
		}
		render.JSON(w, http.StatusOK, h)
	}
}
