package model

// 取込・出力ファイルの列見出し。出力したカートファイルをそのまま出庫ファイルとして取り込めるよう共通化しています。
const (
	ColStart          = "Номер запуска"
	ColManufacturer   = "Производитель"
	ColTechnology     = "Технологический процесс"
	ColLot            = "Партия (Lot ID)"
	ColWafer          = "Пластина (Wafer)"
	ColQuadrant       = "Quadrant"
	ColInternalLot    = "Внутренняя партия"
	ColChip           = "Номер кристалла"
	ColChipCode       = "Шифр кристалла"
	ColSize           = "Размер кристалла"
	ColPackage        = "Упаковка"
	ColStorage        = "Место хранения"
	ColCell           = "Ячейка хранения"
	ColNote           = "Примечание"
	ColInflowDate     = "Дата прихода"
	ColInflowWafer    = "Приход Wafer, шт."
	ColInflowGelPack  = "Приход GelPack, шт."
	ColInflowTotal    = "Приход общий, шт."
	ColOutflowDate    = "Дата расхода"
	ColOutflowWafer   = "Расход Wafer, шт."
	ColOutflowGelPack = "Расход GelPack, шт."
	ColOutflowTotal   = "Расход общий, шт."
	ColReturnDate     = "Дата возврата"
	ColReturnWafer    = "Возврат Wafer, шт."
	ColReturnGelPack  = "Возврат GelPack, шт."
	ColReturnTotal    = "Возврат общий, шт."
	ColTransferTarget = "Куда передано (Производственная партия)"
	ColRecipient      = "ФИО"
)

// DimensionColumns は属性ごとの取込ファイルの列見出しです。
var DimensionColumns = map[Dimension]string{
	DimStart:        ColStart,
	DimManufacturer: ColManufacturer,
	DimTechnology:   ColTechnology,
	DimLot:          ColLot,
	DimWafer:        ColWafer,
	DimQuadrant:     ColQuadrant,
	DimInternalLot:  ColInternalLot,
	DimChip:         ColChip,
	DimChipCode:     ColChipCode,
	DimPackage:      ColPackage,
	DimStorage:      ColStorage,
	DimCell:         ColCell,
	DimSize:         ColSize,
}

// ExportColumns はカート出力の固定21列です。
var ExportColumns = []string{
	ColStart, ColManufacturer, ColTechnology, ColLot, ColWafer,
	ColQuadrant, ColInternalLot, ColChipCode, ColOutflowDate,
	ColOutflowWafer, ColOutflowGelPack, ColOutflowTotal, ColReturnDate,
	ColReturnWafer, ColReturnGelPack, ColReturnTotal,
	ColNote, ColTransferTarget, ColRecipient, ColStorage, ColCell,
}

// FieldColumns は行構造体のフィールド名から列見出しを引きます (検証エラーの位置表示用)。
var FieldColumns = map[string]string{
	"Start":          ColStart,
	"Manufacturer":   ColManufacturer,
	"Technology":     ColTechnology,
	"Lot":            ColLot,
	"Wafer":          ColWafer,
	"Quadrant":       ColQuadrant,
	"InternalLot":    ColInternalLot,
	"Chip":           ColChip,
	"ChipCode":       ColChipCode,
	"Package":        ColPackage,
	"Storage":        ColStorage,
	"Cell":           ColCell,
	"Size":           ColSize,
	"Note":           ColNote,
	"TransferTarget": ColTransferTarget,
	"Recipient":      ColRecipient,
}
