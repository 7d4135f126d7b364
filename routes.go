package main

import (
	"net/http"

	"chipstock/actionlog"
	"chipstock/cart"
	"chipstock/ingest"
	"chipstock/reconcile"
	"chipstock/render"

	"github.com/jmoiron/sqlx"
)

func SetupRoutes(mux *http.ServeMux, dbConn *sqlx.DB) {
	// 取込
	mux.HandleFunc("POST /api/inflow/upload", ingest.UploadInflowHandler(dbConn))
	mux.HandleFunc("POST /api/outflow/upload", ingest.UploadOutflowHandler(dbConn))
	mux.HandleFunc("POST /api/refund/upload", ingest.UploadRefundHandler(dbConn))

	// 検索
	mux.HandleFunc("GET /api/search", reconcile.SearchHandler(dbConn))
	mux.HandleFunc("GET /api/dimensions/{dim}", reconcile.DimensionValuesHandler(dbConn))
	mux.HandleFunc("GET /api/items/{id}/history", reconcile.ItemHistoryHandler(dbConn))

	// カート
	mux.HandleFunc("GET /api/cart", cart.ListCartHandler(dbConn))
	mux.HandleFunc("POST /api/cart/add", cart.AddCartHandler(dbConn))
	mux.HandleFunc("POST /api/cart/update", cart.UpdateCartHandler(dbConn))
	mux.HandleFunc("POST /api/cart/remove", cart.RemoveCartHandler(dbConn))
	mux.HandleFunc("POST /api/cart/clear", cart.ClearCartHandler(dbConn))
	mux.HandleFunc("GET /api/cart/export", cart.ExportCartHandler(dbConn))

	// 操作ログ
	mux.HandleFunc("GET /api/logs", func(w http.ResponseWriter, r *http.Request) {
		userID, err := render.UserID(r)
		if err != nil {
			render.Error(w, err)
			return
		}
		entries, err := actionlog.List(r.Context(), dbConn, userID, 200)
		if err != nil {
			render.Error(w, err)
			return
		}
		render.JSON(w, http.StatusOK, entries)
	})

	// 設定
	mux.HandleFunc("GET /api/config", GetConfigHandler())
	mux.HandleFunc("POST /api/config", SaveConfigHandler())
}
