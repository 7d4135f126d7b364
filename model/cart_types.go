package model

// CartDisplay はカート行に保存する表示用の属性名スナップショットです。
type CartDisplay struct {
	Start        string `db:"start" json:"start"`
	Manufacturer string `db:"manufacturer" json:"manufacturer"`
	Technology   string `db:"technology" json:"technology"`
	Lot          string `db:"lot" json:"lot"`
	Wafer        string `db:"wafer" json:"wafer"`
	Quadrant     string `db:"quadrant" json:"quadrant"`
	InternalLot  string `db:"internal_lot" json:"internalLot"`
	ChipCode     string `db:"chip_code" json:"chipCode"`
	Note         string `db:"note" json:"note"`
	Storage      string `db:"storage" json:"storage"`
	Cell         string `db:"cell" json:"cell"`
}

type CartEntry struct {
	UserID      int64 `db:"user_id" json:"userId"`
	ItemID      int64 `db:"item_id" json:"itemId"`
	ConsWafer   int64 `db:"cons_w" json:"consWafer"`
	ConsGelPack int64 `db:"cons_gp" json:"consGelPack"`
	CartDisplay
	DateAdded string `db:"date_added" json:"dateAdded"`
}

// DisplayFromBalance は在庫検索結果からカート表示用の値を作ります。
func DisplayFromBalance(b ItemBalance) CartDisplay {
	return CartDisplay{
		Start:        b.Start,
		Manufacturer: b.Manufacturer,
		Technology:   b.Technology,
		Lot:          b.Lot,
		Wafer:        b.Wafer,
		Quadrant:     b.Quadrant,
		InternalLot:  b.InternalLot,
		ChipCode:     b.ChipCode,
		Note:         b.Note,
		Storage:      b.Storage,
		Cell:         b.Cell,
	}
}
