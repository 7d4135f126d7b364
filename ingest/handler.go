package ingest

import (
	"context"
	"io"
	"net/http"
	"path/filepath"

	"chipstock/apperr"
	"chipstock/config"
	"chipstock/model"
	"chipstock/parsers"
	"chipstock/render"

	"github.com/jmoiron/sqlx"
)

const maxUploadSize = 32 << 20

type uploadResponse struct {
	Message string `json:"message"`
	model.IngestResult
}

// ingestFunc はアップロードされたファイルを解析して取込む処理です。
type ingestFunc func(ctx context.Context, db *sqlx.DB, userID int64, fileName string, f io.Reader) (*model.IngestResult, error)

func uploadHandler(db *sqlx.DB, doneMessage string, ingest ingestFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := render.UserID(r)
		if err != nil {
			render.Error(w, err)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			render.Error(w, &apperr.ValidationError{Field: "file", Message: "invalid multipart form: " + err.Error()})
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			render.Error(w, &apperr.ValidationError{Field: "file", Message: "file is required"})
			return
		}
		defer file.Close()

		fileName := filepath.Base(header.Filename)
		result, err := ingest(r.Context(), db, userID, fileName, file)
		if err != nil {
			render.Error(w, err)
			return
		}
		render.JSON(w, http.StatusOK, uploadResponse{Message: doneMessage, IngestResult: *result})
	}
}

// UploadInflowHandler は入庫ファイル (.xlsx / .csv) を取り込みます。
func UploadInflowHandler(db *sqlx.DB) http.HandlerFunc {
	return uploadHandler(db, "inflow file ingested", func(ctx context.Context, db *sqlx.DB, userID int64, fileName string, f io.Reader) (*model.IngestResult, error) {
		rows, err := parsers.ParseInflowFile(fileName, f, config.GetConfig().UploadCharset)
		if err != nil {
			return nil, err
		}
		return Inflow(ctx, db, userID, fileName, rows)
	})
}

// UploadOutflowHandler は出庫ファイルを取り込みます。
func UploadOutflowHandler(db *sqlx.DB) http.HandlerFunc {
	return uploadHandler(db, "outflow file ingested", func(ctx context.Context, db *sqlx.DB, userID int64, fileName string, f io.Reader) (*model.IngestResult, error) {
		rows, err := parsers.ParseOutflowFile(fileName, f, config.GetConfig().UploadCharset)
		if err != nil {
			return nil, err
		}
		return Outflow(ctx, db, userID, fileName, rows)
	})
}

// UploadRefundHandler は返品ファイルを取り込みます。
func UploadRefundHandler(db *sqlx.DB) http.HandlerFunc {
	return uploadHandler(db, "refund file ingested", func(ctx context.Context, db *sqlx.DB, userID int64, fileName string, f io.Reader) (*model.IngestResult, error) {
		rows, err := parsers.ParseRefundFile(fileName, f, config.GetConfig().UploadCharset)
		if err != nil {
			return nil, err
		}
		return Refund(ctx, db, userID, fileName, rows)
	})
}
