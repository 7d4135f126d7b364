package model

// SearchFilters は在庫検索の条件です。ChipCode は部分一致 (大文字小文字無視)、Manufacturer は完全一致です。
type SearchFilters struct {
	ChipCode     string
	Manufacturer string
}

// ItemBalance は品目ごとの入庫・出庫・残数です。
type ItemBalance struct {
	ItemID int64 `db:"item_id" json:"itemId"`
	ItemNames
	Note string `db:"note" json:"note"`

	ReceivedWafer   int64 `db:"received_w" json:"receivedWafer"`
	ReceivedGelPack int64 `db:"received_gp" json:"receivedGelPack"`
	ConsumedWafer   int64 `db:"consumed_w" json:"consumedWafer"`
	ConsumedGelPack int64 `db:"consumed_gp" json:"consumedGelPack"`

	RemainingWafer   int64  `db:"-" json:"remainingWafer"`
	RemainingGelPack int64  `db:"-" json:"remainingGelPack"`
	Warning          string `db:"-" json:"warning,omitempty"`
}

// Negative は入庫より出庫が多い品目かどうかを返します。
func (b ItemBalance) Negative() bool {
	return b.RemainingWafer < 0 || b.RemainingGelPack < 0
}

// ItemHistory は1品目の残数と、その元になった入出庫の行です。
type ItemHistory struct {
	Balance  ItemBalance     `json:"balance"`
	Inflows  []InflowRecord  `json:"inflows"`
	Outflows []OutflowRecord `json:"outflows"`
}
