package cart_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"chipstock/apperr"
	"chipstock/cart"
	"chipstock/dbtest"
	"chipstock/ingest"
	"chipstock/model"
	"chipstock/parsers"
	"chipstock/reconcile"

	"github.com/jmoiron/sqlx"
	"github.com/xuri/excelize/v2"
)

const (
	userA = 1
	userB = 2
)

// seedItems はチップ番号ごとに1品目を入庫し、item_id を返します。
func seedItems(t *testing.T, db *sqlx.DB, chipCodes ...string) map[string]int64 {
	t.Helper()
	ctx := context.Background()
	rows := make([]model.InflowRow, len(chipCodes))
	for i, c := range chipCodes {
		rows[i] = model.InflowRow{
			ItemNames:   dbtest.Names("Acme", "L1", "W"+c, c),
			Date:        "2024-02-01",
			QuanWafer:   dbtest.Qty(100),
			QuanGelPack: dbtest.Qty(50),
			Note:        "note " + c,
		}
	}
	if _, err := ingest.Inflow(ctx, db, userA, "in.xlsx", rows); err != nil {
		t.Fatalf("Inflow: %v", err)
	}
	items, err := reconcile.Search(ctx, db, model.SearchFilters{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	ids := make(map[string]int64, len(items))
	for _, it := range items {
		ids[it.ChipCode] = it.ItemID
	}
	return ids
}

func TestAddMergesQuantities(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	id := seedItems(t, db, "C1")["C1"]

	if err := cart.Add(ctx, db, userA, cart.AddRequest{ItemID: id, ConsWafer: 5}); err != nil {
		t.Fatalf("Add 5: %v", err)
	}
	if err := cart.Add(ctx, db, userA, cart.AddRequest{ItemID: id, ConsWafer: 7, ConsGelPack: 1}); err != nil {
		t.Fatalf("Add 7: %v", err)
	}

	entries, err := cart.List(ctx, db, userA)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].ConsWafer != 12 || entries[0].ConsGelPack != 1 {
		t.Fatalf("quantities = (%d,%d), want (12,1)", entries[0].ConsWafer, entries[0].ConsGelPack)
	}
	if entries[0].ChipCode != "C1" || entries[0].Note != "note C1" || entries[0].Storage != "Cabinet A" {
		t.Fatalf("display snapshot not filled from item: %+v", entries[0].CartDisplay)
	}
}

func TestConcurrentAddDoesNotLoseUpdates(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	id := seedItems(t, db, "C1")["C1"]

	const workers = 10
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 1; i <= workers; i++ {
		wg.Add(1)
		go func(q int64) {
			defer wg.Done()
			errs <- cart.Add(ctx, db, userA, cart.AddRequest{ItemID: id, ConsWafer: q})
		}(int64(i))
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	entries, err := cart.List(ctx, db, userA)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 || entries[0].ConsWafer != 55 {
		t.Fatalf("entries = %+v, want one entry with wafer 55", entries)
	}
}

func TestAddValidation(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	id := seedItems(t, db, "C1")["C1"]

	tests := []struct {
		name  string
		req   cart.AddRequest
		want  interface{}
		field string
	}{
		{"both zero", cart.AddRequest{ItemID: id}, &apperr.ValidationError{}, "quantity"},
		{"missing item", cart.AddRequest{ConsWafer: 1}, &apperr.ValidationError{}, "ItemID"},
		{"negative", cart.AddRequest{ItemID: id, ConsWafer: -1, ConsGelPack: 2}, &apperr.ValidationError{}, "ConsWafer"},
		{"unknown item", cart.AddRequest{ItemID: 9999, ConsWafer: 1}, &apperr.NotFoundError{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cart.Add(ctx, db, userA, tt.req)
			switch tt.want.(type) {
			case *apperr.ValidationError:
				var ve *apperr.ValidationError
				if !errors.As(err, &ve) {
					t.Fatalf("got %v, want ValidationError", err)
				}
				if ve.Field != tt.field {
					t.Errorf("field = %q, want %q", ve.Field, tt.field)
				}
			case *apperr.NotFoundError:
				var nf *apperr.NotFoundError
				if !errors.As(err, &nf) {
					t.Fatalf("got %v, want NotFoundError", err)
				}
			}
		})
	}
	if n := dbtest.Count(t, db, `SELECT COUNT(*) FROM cart`); n != 0 {
		t.Fatalf("rejected adds left %d cart rows", n)
	}
}

func TestUserScoping(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	ids := seedItems(t, db, "C1", "C2")

	if err := cart.Add(ctx, db, userA, cart.AddRequest{ItemID: ids["C1"], ConsWafer: 3}); err != nil {
		t.Fatalf("Add A: %v", err)
	}
	if err := cart.Add(ctx, db, userB, cart.AddRequest{ItemID: ids["C1"], ConsWafer: 4}); err != nil {
		t.Fatalf("Add B: %v", err)
	}

	listB, err := cart.List(ctx, db, userB)
	if err != nil {
		t.Fatalf("List B: %v", err)
	}
	if len(listB) != 1 || listB[0].UserID != userB || listB[0].ConsWafer != 4 {
		t.Fatalf("user B cart = %+v", listB)
	}

	// user B cannot touch user A's entry
	if err := cart.Update(ctx, db, userB, ids["C2"], 1, 1); err == nil {
		t.Fatalf("update of an entry not in B's cart should fail")
	}
	if err := cart.Update(ctx, db, userB, ids["C1"], 9, 0); err != nil {
		t.Fatalf("Update B: %v", err)
	}
	if err := cart.Clear(ctx, db, userB); err != nil {
		t.Fatalf("Clear B: %v", err)
	}

	listA, err := cart.List(ctx, db, userA)
	if err != nil {
		t.Fatalf("List A: %v", err)
	}
	if len(listA) != 1 || listA[0].ConsWafer != 3 {
		t.Fatalf("user A cart changed by user B: %+v", listA)
	}
}

func TestUpdateRemoveClear(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	ids := seedItems(t, db, "C1", "C2")

	for _, c := range []string{"C1", "C2"} {
		if err := cart.Add(ctx, db, userA, cart.AddRequest{ItemID: ids[c], ConsWafer: 5, ConsGelPack: 5}); err != nil {
			t.Fatalf("Add %s: %v", c, err)
		}
	}
	if err := cart.Update(ctx, db, userA, ids["C1"], 2, 0); err != nil {
		t.Fatalf("Update: %v", err)
	}
	var nf *apperr.NotFoundError
	if err := cart.Update(ctx, db, userA, 9999, 1, 1); !errors.As(err, &nf) {
		t.Fatalf("Update of absent entry: got %v, want NotFoundError", err)
	}
	var ve *apperr.ValidationError
	if err := cart.Update(ctx, db, userA, ids["C1"], -1, 0); !errors.As(err, &ve) {
		t.Fatalf("negative update: got %v, want ValidationError", err)
	}

	entries, _ := cart.List(ctx, db, userA)
	for _, e := range entries {
		if e.ItemID == ids["C1"] && (e.ConsWafer != 2 || e.ConsGelPack != 0) {
			t.Fatalf("update must overwrite, got (%d,%d)", e.ConsWafer, e.ConsGelPack)
		}
	}

	if err := cart.Remove(ctx, db, userA, ids["C2"]); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := cart.Remove(ctx, db, userA, ids["C2"]); err != nil {
		t.Fatalf("Remove of absent entry should be a no-op: %v", err)
	}
	entries, _ = cart.List(ctx, db, userA)
	if len(entries) != 1 {
		t.Fatalf("after remove: %d entries, want 1", len(entries))
	}

	if err := cart.Clear(ctx, db, userA); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	entries, _ = cart.List(ctx, db, userA)
	if len(entries) != 0 {
		t.Fatalf("after clear: %d entries, want 0", len(entries))
	}
}

func TestExport(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	ids := seedItems(t, db, "C1", "C2")

	if err := cart.Add(ctx, db, userA, cart.AddRequest{ItemID: ids["C1"], ConsWafer: 3, ConsGelPack: 1}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := cart.Add(ctx, db, userA, cart.AddRequest{
		ItemID: ids["C2"], ConsGelPack: 2,
		Display: model.CartDisplay{Note: "for line 4"},
	}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	var buf bytes.Buffer
	n, err := cart.Export(ctx, db, userA, &buf, "Расход")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if n != 2 {
		t.Fatalf("exported %d rows, want 2", n)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Расход")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(rows))
	}
	if len(rows[0]) != 21 {
		t.Fatalf("header has %d columns, want 21", len(rows[0]))
	}
	for i, col := range model.ExportColumns {
		if rows[0][i] != col {
			t.Errorf("header[%d] = %q, want %q", i, rows[0][i], col)
		}
	}

	cell := func(row []string, col string) string {
		for i, c := range model.ExportColumns {
			if c == col && i < len(row) {
				return row[i]
			}
		}
		return ""
	}
	byChip := map[string][]string{}
	for _, r := range rows[1:] {
		byChip[cell(r, model.ColChipCode)] = r
	}
	c1 := byChip["C1"]
	if cell(c1, model.ColOutflowWafer) != "3" || cell(c1, model.ColOutflowGelPack) != "1" {
		t.Errorf("C1 quantities = %q/%q", cell(c1, model.ColOutflowWafer), cell(c1, model.ColOutflowGelPack))
	}
	if d := cell(c1, model.ColOutflowDate); len(d) != 10 || d[4] != '-' || d[7] != '-' {
		t.Errorf("outflow date %q not YYYY-MM-DD", d)
	}
	if cell(c1, model.ColReturnDate) != "" || cell(c1, model.ColRecipient) != "" {
		t.Errorf("columns outside the cart must stay blank")
	}
	if cell(byChip["C2"], model.ColNote) != "for line 4" {
		t.Errorf("caller-supplied note not exported: %q", cell(byChip["C2"], model.ColNote))
	}

	// Export leaves the cart in place.
	entries, _ := cart.List(ctx, db, userA)
	if len(entries) != 2 {
		t.Fatalf("Export cleared the cart")
	}

	// An exported cart is a valid outflow file.
	outRows, err := parsers.ParseOutflowFile("cart.xlsx", bytes.NewReader(buf.Bytes()), "")
	if err != nil {
		t.Fatalf("re-parse export: %v", err)
	}
	if len(outRows) != 2 {
		t.Fatalf("re-parsed %d rows, want 2", len(outRows))
	}
}

func TestExportEmptyCart(t *testing.T) {
	db := dbtest.Open(t)
	var buf bytes.Buffer
	_, err := cart.Export(context.Background(), db, userA, &buf, "Sheet1")
	var nf *apperr.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("got %v, want NotFoundError", err)
	}
}

func TestCheckoutClearsCart(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	id := seedItems(t, db, "C1")["C1"]
	if err := cart.Add(ctx, db, userA, cart.AddRequest{ItemID: id, ConsWafer: 1}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	var buf bytes.Buffer
	n, err := cart.Checkout(ctx, db, userA, &buf, "Sheet1")
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if n != 1 || buf.Len() == 0 {
		t.Fatalf("Checkout wrote %d rows, %d bytes", n, buf.Len())
	}
	entries, _ := cart.List(ctx, db, userA)
	if len(entries) != 0 {
		t.Fatalf("cart not cleared after checkout: %+v", entries)
	}
}
