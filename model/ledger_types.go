package model

const (
	InflowReceipt = "receipt"
	InflowRefund  = "refund"
)

// InflowRow は入庫ファイルの1行です。数量の nil は 0 として扱います。
type InflowRow struct {
	ItemNames
	Date        string `validate:"required,datetime=2006-01-02"`
	QuanWafer   *int64 `validate:"omitempty,min=0"`
	QuanGelPack *int64 `validate:"omitempty,min=0"`
	Note        string
}

// OutflowRow は出庫(消費)ファイルの1行です。Chip / Package / Size は参照しません。
type OutflowRow struct {
	ItemNames
	Date           string `validate:"required,datetime=2006-01-02"`
	ConsWafer      *int64 `validate:"omitempty,min=0"`
	ConsGelPack    *int64 `validate:"omitempty,min=0"`
	Note           string
	TransferTarget string
	Recipient      string
}

// RefundRow は返品ファイルの1行です。
type RefundRow struct {
	ItemNames
	Date        string `validate:"required,datetime=2006-01-02"`
	QuanWafer   *int64 `validate:"omitempty,min=0"`
	QuanGelPack *int64 `validate:"omitempty,min=0"`
	Note        string
}

type InflowRecord struct {
	ID          int64  `db:"id" json:"id"`
	ItemID      int64  `db:"item_id" json:"itemId"`
	Kind        string `db:"kind" json:"kind"`
	Date        string `db:"date" json:"date"`
	QuanWafer   int64  `db:"quan_w" json:"quanWafer"`
	QuanGelPack int64  `db:"quan_gp" json:"quanGelPack"`
	Note        string `db:"note" json:"note"`
	BatchID     string `db:"batch_id" json:"batchId"`
}

type OutflowRecord struct {
	ID             int64  `db:"id" json:"id"`
	ItemID         int64  `db:"item_id" json:"itemId"`
	Date           string `db:"date" json:"date"`
	ConsWafer      int64  `db:"cons_w" json:"consWafer"`
	ConsGelPack    int64  `db:"cons_gp" json:"consGelPack"`
	Note           string `db:"note" json:"note"`
	TransferTarget string `db:"transfer_target" json:"transferTarget"`
	Recipient      string `db:"recipient" json:"recipient"`
	BatchID        string `db:"batch_id" json:"batchId"`
}

// IngestResult は1ファイル分の取込結果です。AuditError は監査ログの書込失敗 (致命的ではない) を示します。
type IngestResult struct {
	BatchID     string `json:"batchId"`
	Rows        int    `json:"rows"`
	TargetTable string `json:"targetTable"`
	AuditError  string `json:"auditError,omitempty"`
}

// ActionLogEntry は user_logs の1行です。
type ActionLogEntry struct {
	ID          int64  `db:"id" json:"id"`
	UserID      int64  `db:"user_id" json:"userId"`
	ActionType  string `db:"action_type" json:"actionType"`
	FileName    string `db:"file_name" json:"fileName"`
	TargetTable string `db:"target_table" json:"targetTable"`
	BatchID     string `db:"batch_id" json:"batchId"`
	RowCount    int    `db:"row_count" json:"rowCount"`
	CreatedAt   string `db:"created_at" json:"createdAt"`
}

// QtyOrZero は任意数量を 0 埋めします。
func QtyOrZero(q *int64) int64 {
	if q == nil {
		return 0
	}
	return *q
}
