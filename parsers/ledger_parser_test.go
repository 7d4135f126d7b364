package parsers_test

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
	"testing"

	"chipstock/apperr"
	"chipstock/model"
	"chipstock/parsers"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

var inflowHeader = []string{
	model.ColStart, model.ColManufacturer, model.ColTechnology, model.ColLot, model.ColWafer,
	model.ColQuadrant, model.ColInternalLot, model.ColChip, model.ColChipCode, model.ColSize,
	model.ColPackage, model.ColStorage, model.ColCell, model.ColNote,
	model.ColInflowDate, model.ColInflowWafer, model.ColInflowGelPack,
}

var outflowHeader = []string{
	model.ColStart, model.ColManufacturer, model.ColTechnology, model.ColLot, model.ColWafer,
	model.ColQuadrant, model.ColInternalLot, model.ColChipCode, model.ColStorage, model.ColCell,
	model.ColOutflowDate, model.ColOutflowWafer, model.ColOutflowGelPack, model.ColNote,
	model.ColTransferTarget, model.ColRecipient,
}

// csvText は見出しとデータ行を CSV に書きます。見出しのカンマは引用符で囲まれます。
func csvText(t *testing.T, header []string, rows ...[]string) string {
	t.Helper()
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		t.Fatalf("write header: %v", err)
	}
	if err := w.WriteAll(rows); err != nil {
		t.Fatalf("write rows: %v", err)
	}
	return buf.String()
}

func inflowCSV(t *testing.T, rows ...[]string) string {
	t.Helper()
	return csvText(t, inflowHeader, rows...)
}

func inflowLine(wafer, quanW, quanGP string) []string {
	return []string{"R-1", "Micron", "CMOS", "L1", wafer, "Q1", "IL1", "C1", "CC1", "5x5", "Tray", "S1", "3", "", "2024-03-01", quanW, quanGP}
}

func TestParseInflowCSV(t *testing.T) {
	src := "\xEF\xBB\xBF" + inflowCSV(t,
		[]string{"R-1", "Micron", "CMOS", "L1", "W1", "Q1", "IL1", "C1", "CC-Альфа", "5x5", "Tray", "S1", "3", "first", "2024-03-01", "100", "50"},
		make([]string, len(inflowHeader)),
		[]string{"R-2", "Micron", "CMOS", "L2", "W1", "Q1", "IL1", "C1", "CC2", "5x5", "Tray", "", "", "", "05.03.2024", "12.0", ""},
	)
	rows, err := parsers.ParseInflowFile("receipts.csv", strings.NewReader(src), "utf-8")
	if err != nil {
		t.Fatalf("ParseInflowFile: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2 (blank row skipped)", len(rows))
	}

	first := rows[0]
	if first.Start != "R-1" || first.ChipCode != "CC-Альфа" || first.Cell != "3" || first.Note != "first" {
		t.Errorf("first row names = %+v", first.ItemNames)
	}
	if first.Date != "2024-03-01" {
		t.Errorf("first date = %q", first.Date)
	}
	if model.QtyOrZero(first.QuanWafer) != 100 || model.QtyOrZero(first.QuanGelPack) != 50 {
		t.Errorf("first quantities = %v/%v", first.QuanWafer, first.QuanGelPack)
	}

	second := rows[1]
	if second.Date != "2024-03-05" {
		t.Errorf("second date = %q, want 2024-03-05", second.Date)
	}
	if model.QtyOrZero(second.QuanWafer) != 12 {
		t.Errorf("second wafer = %v, want 12", second.QuanWafer)
	}
	if second.QuanGelPack != nil {
		t.Errorf("blank gelpack should be nil, got %d", *second.QuanGelPack)
	}
}

func TestParseInflowCSVBadQuantity(t *testing.T) {
	src := inflowCSV(t, inflowLine("W1", "100", "50"), inflowLine("W2", "ten", "50"))
	_, err := parsers.ParseInflowFile("receipts.csv", strings.NewReader(src), "")

	var rowErr *apperr.RowError
	if !errors.As(err, &rowErr) {
		t.Fatalf("got %v, want RowError", err)
	}
	if rowErr.Row != 2 || rowErr.Field != model.ColInflowWafer {
		t.Fatalf("RowError at row %d field %q, want row 2 field %q", rowErr.Row, rowErr.Field, model.ColInflowWafer)
	}
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("RowError should wrap a ValidationError, got %v", rowErr.Err)
	}
}

func TestParseMissingHeader(t *testing.T) {
	src := model.ColStart + "," + model.ColManufacturer + "\nR-1,Micron\n"
	_, err := parsers.ParseOutflowFile("out.csv", strings.NewReader(src), "")
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) || ve.Field != "header" {
		t.Fatalf("got %v, want header ValidationError", err)
	}
}

func TestParseOutflowCSVWindows1251(t *testing.T) {
	src := csvText(t, outflowHeader,
		[]string{"R-1", "Микрон", "CMOS", "L1", "W1", "Q1", "IL1", "CC1", "S1", "3", "2024-04-02", "30", "10", "выдано", "ПП-7", "Иванов И.И."},
	)

	encoded, err := charmap.Windows1251.NewEncoder().String(src)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	rows, err := parsers.ParseOutflowFile("out.CSV", strings.NewReader(encoded), "windows-1251")
	if err != nil {
		t.Fatalf("ParseOutflowFile: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	r := rows[0]
	if r.Manufacturer != "Микрон" || r.Recipient != "Иванов И.И." || r.TransferTarget != "ПП-7" || r.Note != "выдано" {
		t.Errorf("decoded row = %+v", r)
	}
	if model.QtyOrZero(r.ConsWafer) != 30 || model.QtyOrZero(r.ConsGelPack) != 10 {
		t.Errorf("quantities = %v/%v", r.ConsWafer, r.ConsGelPack)
	}
	if r.Chip != "" || r.Package != "" || r.Size != "" {
		t.Errorf("outflow rows must not carry chip/package/size, got %+v", r.ItemNames)
	}
}

func TestParseRefundXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	header := []interface{}{
		model.ColStart, model.ColManufacturer, model.ColTechnology, model.ColLot, model.ColWafer,
		model.ColQuadrant, model.ColInternalLot, model.ColChipCode, model.ColStorage, model.ColCell,
		model.ColReturnDate, model.ColReturnWafer, model.ColReturnGelPack,
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		t.Fatalf("SetSheetRow header: %v", err)
	}
	// 45383 is the Excel serial for 2024-04-01.
	row := []interface{}{"R-1", "Micron", "CMOS", "L1", "W1", "Q1", "IL1", "CC1", "S1", "3", 45383, 2, 1}
	if err := f.SetSheetRow(sheet, "A2", &row); err != nil {
		t.Fatalf("SetSheetRow data: %v", err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}

	rows, err := parsers.ParseRefundFile("returns.xlsx", bytes.NewReader(buf.Bytes()), "")
	if err != nil {
		t.Fatalf("ParseRefundFile: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].Date != "2024-04-01" {
		t.Errorf("date = %q, want 2024-04-01", rows[0].Date)
	}
	if model.QtyOrZero(rows[0].QuanWafer) != 2 || model.QtyOrZero(rows[0].QuanGelPack) != 1 {
		t.Errorf("quantities = %v/%v", rows[0].QuanWafer, rows[0].QuanGelPack)
	}
}

func TestReadTableRejectsUnknownExtension(t *testing.T) {
	if _, err := parsers.ReadTable("notes.txt", strings.NewReader("a,b\n"), ""); err == nil {
		t.Fatal("expected error for .txt upload")
	}
}

func TestParseRequiresQuantityHeaders(t *testing.T) {
	misspelled := append([]string(nil), inflowHeader...)
	misspelled[len(misspelled)-2] = "Приход Wafer"

	tests := []struct {
		name   string
		header []string
		want   string
	}{
		{"inflow wafer misspelled", misspelled, model.ColInflowWafer},
		{"inflow gelpack missing", inflowHeader[:len(inflowHeader)-1], model.ColInflowGelPack},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := inflowLine("W1", "100", "50")[:len(tt.header)]
			src := csvText(t, tt.header, row)
			_, err := parsers.ParseInflowFile("receipts.csv", strings.NewReader(src), "")
			var ve *apperr.ValidationError
			if !errors.As(err, &ve) || ve.Field != "header" {
				t.Fatalf("got %v, want header ValidationError", err)
			}
			if !strings.Contains(ve.Message, tt.want) {
				t.Errorf("message %q does not name %q", ve.Message, tt.want)
			}
		})
	}

	outHeader := []string{
		model.ColStart, model.ColManufacturer, model.ColTechnology, model.ColLot, model.ColWafer,
		model.ColChipCode, model.ColOutflowDate, model.ColOutflowWafer,
	}
	src := csvText(t, outHeader, []string{"R-1", "Micron", "CMOS", "L1", "W1", "CC1", "2024-04-02", "3"})
	if _, err := parsers.ParseOutflowFile("out.csv", strings.NewReader(src), ""); err == nil {
		t.Fatal("outflow file without the gelpack column must be rejected")
	}

	retHeader := []string{
		model.ColStart, model.ColManufacturer, model.ColTechnology, model.ColLot, model.ColWafer,
		model.ColChipCode, model.ColReturnDate, model.ColReturnGelPack,
	}
	src = csvText(t, retHeader, []string{"R-1", "Micron", "CMOS", "L1", "W1", "CC1", "2024-04-02", "1"})
	if _, err := parsers.ParseRefundFile("ret.csv", strings.NewReader(src), ""); err == nil {
		t.Fatal("refund file without the wafer column must be rejected")
	}
}

func TestParseRejectsRowWiderThanHeader(t *testing.T) {
	wide := append(inflowLine("W2", "1", "1"), "stray")
	src := inflowCSV(t, inflowLine("W1", "1", "1"), wide)

	_, err := parsers.ParseInflowFile("receipts.csv", strings.NewReader(src), "")
	var rowErr *apperr.RowError
	if !errors.As(err, &rowErr) {
		t.Fatalf("got %v, want RowError", err)
	}
	if rowErr.Row != 2 {
		t.Errorf("RowError at row %d, want 2", rowErr.Row)
	}
}

func TestParseAllowsShortRowsAndTrailingBlanks(t *testing.T) {
	short := inflowLine("W1", "4", "")[:len(inflowHeader)-1]
	padded := append(inflowLine("W2", "5", "1"), "", " ")
	src := inflowCSV(t, short, padded)

	rows, err := parsers.ParseInflowFile("receipts.csv", strings.NewReader(src), "")
	if err != nil {
		t.Fatalf("ParseInflowFile: %v", err)
	}
	if len(rows) != 2 || model.QtyOrZero(rows[0].QuanWafer) != 4 || rows[0].QuanGelPack != nil {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestParseRowNumbersCountBlankRows(t *testing.T) {
	src := inflowCSV(t,
		inflowLine("W1", "1", "1"),
		make([]string, len(inflowHeader)),
		inflowLine("W3", "x", "1"),
	)
	_, err := parsers.ParseInflowFile("receipts.csv", strings.NewReader(src), "")
	var rowErr *apperr.RowError
	if !errors.As(err, &rowErr) {
		t.Fatalf("got %v, want RowError", err)
	}
	if rowErr.Row != 3 || rowErr.Field != model.ColInflowWafer {
		t.Fatalf("RowError at row %d field %q, want row 3 field %q", rowErr.Row, rowErr.Field, model.ColInflowWafer)
	}
}

func TestParseQuantityOutOfRange(t *testing.T) {
	tests := []string{"1e19", "-1e19", "99999999999999999999"}
	for _, q := range tests {
		t.Run(q, func(t *testing.T) {
			src := inflowCSV(t, inflowLine("W1", q, "1"))
			_, err := parsers.ParseInflowFile("receipts.csv", strings.NewReader(src), "")
			var rowErr *apperr.RowError
			if !errors.As(err, &rowErr) || rowErr.Field != model.ColInflowWafer {
				t.Fatalf("got %v, want RowError on %q", err, model.ColInflowWafer)
			}
			if !strings.Contains(rowErr.Error(), "out of range") {
				t.Errorf("error %q should report out of range", rowErr.Error())
			}
		})
	}
}
