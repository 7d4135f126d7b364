package apperr_test

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"chipstock/apperr"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", &apperr.ValidationError{Field: "item_id", Message: "required"}, http.StatusBadRequest},
		{"not found wrapped in row", &apperr.RowError{Row: 2, Field: "lot", Err: &apperr.NotFoundError{Dimension: "lot", Value: "L1"}}, http.StatusNotFound},
		{"conflict", &apperr.ConflictError{Table: "dim_lot", Value: "L1", Err: errors.New("unique")}, http.StatusConflict},
		{"persistence", apperr.Persistence("insert", sql.ErrConnDone), http.StatusInternalServerError},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := apperr.HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestPersistenceKeepsTypedErrors(t *testing.T) {
	nf := &apperr.NotFoundError{Dimension: "wafer", Value: "W07"}
	wrapped := fmt.Errorf("resolve: %w", nf)

	got := apperr.Persistence("resolve", wrapped)
	if got != wrapped {
		t.Fatalf("expected typed error to pass through, got %v", got)
	}

	raw := apperr.Persistence("select", sql.ErrTxDone)
	var pe *apperr.PersistenceError
	if !errors.As(raw, &pe) {
		t.Fatalf("expected PersistenceError, got %T", raw)
	}
	if !errors.Is(raw, sql.ErrTxDone) {
		t.Errorf("PersistenceError must unwrap to the wrapped error")
	}
	if apperr.Persistence("noop", nil) != nil {
		t.Errorf("Persistence(nil) must be nil")
	}
}

func TestRowErrorMessage(t *testing.T) {
	err := &apperr.RowError{Row: 3, Field: "Партия (Lot ID)", Err: &apperr.ValidationError{Message: "required"}}
	want := "row 3, field Партия (Lot ID): validation failed: required"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("RowError must unwrap to its cause")
	}
}
