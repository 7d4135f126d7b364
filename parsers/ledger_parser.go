package parsers

import (
	"fmt"
	"io"
	"strings"

	"chipstock/apperr"
	"chipstock/model"
)

var (
	inflowRequired = []string{
		model.ColStart, model.ColManufacturer, model.ColTechnology, model.ColLot,
		model.ColWafer, model.ColChipCode, model.ColInflowDate,
		model.ColInflowWafer, model.ColInflowGelPack,
	}
	outflowRequired = []string{
		model.ColStart, model.ColManufacturer, model.ColTechnology, model.ColLot,
		model.ColWafer, model.ColChipCode, model.ColOutflowDate,
		model.ColOutflowWafer, model.ColOutflowGelPack,
	}
	refundRequired = []string{
		model.ColStart, model.ColManufacturer, model.ColTechnology, model.ColLot,
		model.ColWafer, model.ColChipCode, model.ColReturnDate,
		model.ColReturnWafer, model.ColReturnGelPack,
	}
)

// rowReader は1行分のセルを見出し名で取り出します。
type rowReader struct {
	colIndex map[string]int
	row      []string
	line     int
	err      error
}

func (rr *rowReader) get(col string) string {
	if idx, ok := rr.colIndex[col]; ok && idx < len(rr.row) {
		return strings.TrimSpace(rr.row[idx])
	}
	return ""
}

func (rr *rowReader) quantity(col string) *int64 {
	if rr.err != nil {
		return nil
	}
	q, err := parseQuantity(rr.get(col))
	if err != nil {
		rr.err = &apperr.RowError{Row: rr.line, Field: col, Err: &apperr.ValidationError{Field: col, Message: err.Error()}}
		return nil
	}
	return q
}

func (rr *rowReader) date(col string) string {
	if rr.err != nil {
		return ""
	}
	d, err := normalizeDate(rr.get(col))
	if err != nil {
		rr.err = &apperr.RowError{Row: rr.line, Field: col, Err: &apperr.ValidationError{Field: col, Message: err.Error()}}
		return ""
	}
	return d
}

func (rr *rowReader) names(dims []model.Dimension) model.ItemNames {
	var n model.ItemNames
	for _, d := range dims {
		n.Set(d, rr.get(model.DimensionColumns[d]))
	}
	return n
}

func eachRow(t *Table, required []string, fn func(rr *rowReader) error) error {
	colIndex, err := getColIndex(t.Header, required)
	if err != nil {
		return &apperr.ValidationError{Field: "header", Message: err.Error()}
	}
	for _, row := range t.Rows {
		if err := checkWidth(row, len(t.Header)); err != nil {
			return err
		}
		rr := &rowReader{colIndex: colIndex, row: row.Cells, line: row.Line}
		if err := fn(rr); err != nil {
			return err
		}
		if rr.err != nil {
			return rr.err
		}
	}
	return nil
}

// checkWidth は見出しより右に値のある行をエラーにします。右端の空セルは許します。
func checkWidth(row Row, width int) error {
	for i := width; i < len(row.Cells); i++ {
		if strings.TrimSpace(row.Cells[i]) != "" {
			return &apperr.RowError{Row: row.Line, Err: &apperr.ValidationError{
				Field:   "row",
				Message: fmt.Sprintf("row has %d cells but the header has %d columns", len(row.Cells), width),
			}}
		}
	}
	return nil
}

// InflowRows は入庫ファイルの表を行構造体に変換します。
func InflowRows(t *Table) ([]model.InflowRow, error) {
	var rows []model.InflowRow
	err := eachRow(t, inflowRequired, func(rr *rowReader) error {
		rows = append(rows, model.InflowRow{
			ItemNames:   rr.names(model.AllDimensions),
			Date:        rr.date(model.ColInflowDate),
			QuanWafer:   rr.quantity(model.ColInflowWafer),
			QuanGelPack: rr.quantity(model.ColInflowGelPack),
			Note:        rr.get(model.ColNote),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// OutflowRows は出庫ファイルの表を行構造体に変換します。
func OutflowRows(t *Table) ([]model.OutflowRow, error) {
	var rows []model.OutflowRow
	err := eachRow(t, outflowRequired, func(rr *rowReader) error {
		rows = append(rows, model.OutflowRow{
			ItemNames:      rr.names(model.OutflowDimensions),
			Date:           rr.date(model.ColOutflowDate),
			ConsWafer:      rr.quantity(model.ColOutflowWafer),
			ConsGelPack:    rr.quantity(model.ColOutflowGelPack),
			Note:           rr.get(model.ColNote),
			TransferTarget: rr.get(model.ColTransferTarget),
			Recipient:      rr.get(model.ColRecipient),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// RefundRows は返品ファイルの表を行構造体に変換します。
func RefundRows(t *Table) ([]model.RefundRow, error) {
	var rows []model.RefundRow
	err := eachRow(t, refundRequired, func(rr *rowReader) error {
		rows = append(rows, model.RefundRow{
			ItemNames:   rr.names(model.OutflowDimensions),
			Date:        rr.date(model.ColReturnDate),
			QuanWafer:   rr.quantity(model.ColReturnWafer),
			QuanGelPack: rr.quantity(model.ColReturnGelPack),
			Note:        rr.get(model.ColNote),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ParseInflowFile は入庫ファイル (.xlsx / .csv) を読み込みます。
func ParseInflowFile(fileName string, r io.Reader, charset string) ([]model.InflowRow, error) {
	t, err := ReadTable(fileName, r, charset)
	if err != nil {
		return nil, &apperr.ValidationError{Field: "file", Message: err.Error()}
	}
	return InflowRows(t)
}

// ParseOutflowFile は出庫ファイルを読み込みます。
func ParseOutflowFile(fileName string, r io.Reader, charset string) ([]model.OutflowRow, error) {
	t, err := ReadTable(fileName, r, charset)
	if err != nil {
		return nil, &apperr.ValidationError{Field: "file", Message: err.Error()}
	}
	return OutflowRows(t)
}

// ParseRefundFile は返品ファイルを読み込みます。
func ParseRefundFile(fileName string, r io.Reader, charset string) ([]model.RefundRow, error) {
	t, err := ReadTable(fileName, r, charset)
	if err != nil {
		return nil, &apperr.ValidationError{Field: "file", Message: err.Error()}
	}
	return RefundRows(t)
}
