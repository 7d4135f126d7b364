package dbtest

import "chipstock/model"

// Names はテスト用の品目属性名です。lot・wafer・チップ番号・製造元で品目を作り分けます。
func Names(manufacturer, lot, wafer, chipCode string) model.ItemNames {
	return model.ItemNames{
		Start:        "R-100",
		Manufacturer: manufacturer,
		Technology:   "CMOS-180",
		Lot:          lot,
		Wafer:        wafer,
		Quadrant:     "Q1",
		InternalLot:  "IL-1",
		Chip:         "7",
		ChipCode:     chipCode,
		Package:      "GelPak",
		Storage:      "Cabinet A",
		Cell:         "12",
		Size:         "2x2",
	}
}

// Qty は数量ポインタを返します。
func Qty(n int64) *int64 {
	return &n
}
