package ingest

import (
	"errors"

	"chipstock/apperr"
	"chipstock/model"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func columns(extra map[string]string) map[string]string {
	m := make(map[string]string, len(model.FieldColumns)+len(extra))
	for k, v := range model.FieldColumns {
		m[k] = v
	}
	for k, v := range extra {
		m[k] = v
	}
	return m
}

var (
	inflowColumns = columns(map[string]string{
		"Date":        model.ColInflowDate,
		"QuanWafer":   model.ColInflowWafer,
		"QuanGelPack": model.ColInflowGelPack,
	})
	outflowColumns = columns(map[string]string{
		"Date":        model.ColOutflowDate,
		"ConsWafer":   model.ColOutflowWafer,
		"ConsGelPack": model.ColOutflowGelPack,
	})
	refundColumns = columns(map[string]string{
		"Date":        model.ColReturnDate,
		"QuanWafer":   model.ColReturnWafer,
		"QuanGelPack": model.ColReturnGelPack,
	})
)

// validateRow は構造体タグで行を検証し、最初の違反を列見出し付きの ValidationError にします。
func validateRow(row interface{}, cols map[string]string) error {
	err := validate.Struct(row)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &apperr.ValidationError{Message: err.Error()}
	}
	fe := verrs[0]
	field, ok := cols[fe.StructField()]
	if !ok {
		field = fe.StructField()
	}
	return &apperr.ValidationError{Field: field, Message: message(fe)}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "datetime":
		return "must be a date in YYYY-MM-DD form"
	case "min":
		return "must not be negative"
	default:
		return "failed " + fe.Tag() + " check"
	}
}
