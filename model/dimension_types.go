package model

// Dimension は品目を構成する属性の種類です。値は辞書テーブル名とカラム名の元になります。
type Dimension string

const (
	DimStart        Dimension = "start"
	DimManufacturer Dimension = "manufacturer"
	DimTechnology   Dimension = "technology"
	DimLot          Dimension = "lot"
	DimWafer        Dimension = "wafer"
	DimQuadrant     Dimension = "quadrant"
	DimInternalLot  Dimension = "internal_lot"
	DimChip         Dimension = "chip"
	DimChipCode     Dimension = "chip_code"
	DimPackage      Dimension = "package"
	DimStorage      Dimension = "storage"
	DimCell         Dimension = "cell"
	DimSize         Dimension = "size"
)

// AllDimensions は品目を一意に決める13属性で、items テーブルの列順です。
var AllDimensions = []Dimension{
	DimStart, DimTechnology, DimChip, DimLot, DimWafer, DimQuadrant, DimInternalLot,
	DimPackage, DimCell, DimChipCode, DimManufacturer, DimSize, DimStorage,
}

// OutflowDimensions は出庫・返品ファイルに含まれる属性です (パッケージ・サイズ・チップ番号を除く)。
var OutflowDimensions = []Dimension{
	DimStart, DimManufacturer, DimTechnology, DimLot, DimWafer, DimQuadrant,
	DimInternalLot, DimChipCode, DimStorage, DimCell,
}

func (d Dimension) Valid() bool {
	for _, known := range AllDimensions {
		if d == known {
			return true
		}
	}
	return false
}

// Column は items テーブル上の外部キー列名です。
func (d Dimension) Column() string {
	return string(d) + "_id"
}

// ItemIdentity は品目を一意に表す属性IDの組です。
type ItemIdentity struct {
	StartID        int64 `db:"start_id"`
	TechnologyID   int64 `db:"technology_id"`
	ChipID         int64 `db:"chip_id"`
	LotID          int64 `db:"lot_id"`
	WaferID        int64 `db:"wafer_id"`
	QuadrantID     int64 `db:"quadrant_id"`
	InternalLotID  int64 `db:"internal_lot_id"`
	PackageID      int64 `db:"package_id"`
	CellID         int64 `db:"cell_id"`
	ChipCodeID     int64 `db:"chip_code_id"`
	ManufacturerID int64 `db:"manufacturer_id"`
	SizeID         int64 `db:"size_id"`
	StorageID      int64 `db:"storage_id"`
}

func (id *ItemIdentity) field(d Dimension) *int64 {
	switch d {
	case DimStart:
		return &id.StartID
	case DimTechnology:
		return &id.TechnologyID
	case DimChip:
		return &id.ChipID
	case DimLot:
		return &id.LotID
	case DimWafer:
		return &id.WaferID
	case DimQuadrant:
		return &id.QuadrantID
	case DimInternalLot:
		return &id.InternalLotID
	case DimPackage:
		return &id.PackageID
	case DimCell:
		return &id.CellID
	case DimChipCode:
		return &id.ChipCodeID
	case DimManufacturer:
		return &id.ManufacturerID
	case DimSize:
		return &id.SizeID
	case DimStorage:
		return &id.StorageID
	}
	return nil
}

func (id ItemIdentity) Get(d Dimension) int64 {
	if p := id.field(d); p != nil {
		return *p
	}
	return 0
}

func (id *ItemIdentity) Set(d Dimension, v int64) {
	if p := id.field(d); p != nil {
		*p = v
	}
}

// ItemNames は品目属性の表示名 (取込ファイル上の値) です。
type ItemNames struct {
	Start        string `db:"start" json:"start" validate:"required"`
	Manufacturer string `db:"manufacturer" json:"manufacturer" validate:"required"`
	Technology   string `db:"technology" json:"technology" validate:"required"`
	Lot          string `db:"lot" json:"lot" validate:"required"`
	Wafer        string `db:"wafer" json:"wafer" validate:"required"`
	Quadrant     string `db:"quadrant" json:"quadrant"`
	InternalLot  string `db:"internal_lot" json:"internalLot"`
	Chip         string `db:"chip" json:"chip"`
	ChipCode     string `db:"chip_code" json:"chipCode" validate:"required"`
	Package      string `db:"package" json:"package"`
	Storage      string `db:"storage" json:"storage"`
	Cell         string `db:"cell" json:"cell"`
	Size         string `db:"size" json:"size"`
}

func (n *ItemNames) field(d Dimension) *string {
	switch d {
	case DimStart:
		return &n.Start
	case DimManufacturer:
		return &n.Manufacturer
	case DimTechnology:
		return &n.Technology
	case DimLot:
		return &n.Lot
	case DimWafer:
		return &n.Wafer
	case DimQuadrant:
		return &n.Quadrant
	case DimInternalLot:
		return &n.InternalLot
	case DimChip:
		return &n.Chip
	case DimChipCode:
		return &n.ChipCode
	case DimPackage:
		return &n.Package
	case DimStorage:
		return &n.Storage
	case DimCell:
		return &n.Cell
	case DimSize:
		return &n.Size
	}
	return nil
}

func (n ItemNames) Get(d Dimension) string {
	if p := n.field(d); p != nil {
		return *p
	}
	return ""
}

func (n *ItemNames) Set(d Dimension, v string) {
	if p := n.field(d); p != nil {
		*p = v
	}
}
