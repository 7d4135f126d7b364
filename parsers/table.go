package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Table は取込ファイルの見出し行とデータ行です。空行は読み込み時に除かれます。
type Table struct {
	Header []string
	Rows   []Row
}

// Row はデータ行です。Line は見出しを除いた1始まりの行番号で、除かれた空行も数えます。
type Row struct {
	Line  int
	Cells []string
}

// ReadTable はファイル名の拡張子に応じて .xlsx または .csv として読み込みます。
// charset は CSV の場合だけ使われます。
func ReadTable(fileName string, r io.Reader, charset string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx", ".xlsm":
		return ReadXLSX(r)
	case ".csv":
		return ReadCSV(r, charset)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", fileName)
	}
}

// ReadXLSX は最初のシートを読み込みます。セルは書式適用前の値で読みます。
func ReadXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx has no sheets")
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return newTable(rows)
}

// ReadCSV は CSV を読み込みます。BOM は除去します。
func ReadCSV(r io.Reader, charset string) (*Table, error) {
	decoded, err := DecodeReader(r, charset)
	if err != nil {
		return nil, err
	}
	reader := csv.NewReader(SkipBOM(decoded))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return newTable(rows)
}

func newTable(rows [][]string) (*Table, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("file is empty")
	}
	t := &Table{Header: rows[0]}
	for i, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		t.Rows = append(t.Rows, Row{Line: i + 1, Cells: row})
	}
	return t, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
