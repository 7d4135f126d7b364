package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"chipstock/actionlog"
	"chipstock/cart"
	"chipstock/config"
	"chipstock/ingest"
	"chipstock/loader"
	"chipstock/model"
	"chipstock/parsers"
	"chipstock/reconcile"

	"github.com/google/subcommands"
	"github.com/jmoiron/sqlx"
)

var (
	dbPath   = flag.String("db", "", "Path to the SQLite database (defaults to the configured path)")
	userID   = flag.Int64("user", 0, "User id recorded in the action log and used for the cart")
	charset  = flag.String("charset", "", "Charset of CSV input (utf-8, windows-1251); defaults to the configured charset")
	logLevel = flag.String("log-level", "warn", "Log level (debug, info, warn, error)")
)

// Register はサブコマンドを登録します。
func Register(c *subcommands.Commander) {
	c.Register(&uploadCmd{kind: "inflow"}, "ledger")
	c.Register(&uploadCmd{kind: "outflow"}, "ledger")
	c.Register(&uploadCmd{kind: "refund"}, "ledger")
	c.Register(&searchCmd{}, "stock")
	c.Register(&logsCmd{}, "stock")
	c.Register(&cartExportCmd{}, "cart")
}

// openDB はフラグまたは設定のパスで DB を開き、スキーマを適用します。
func openDB(ctx context.Context) (*sqlx.DB, error) {
	cfg := config.GetConfig()
	p := cfg.DatabasePath
	if *dbPath != "" {
		p = *dbPath
	}
	db, err := loader.Open(p, cfg.MaxOpenConns)
	if err != nil {
		return nil, err
	}
	if err := loader.InitDatabase(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func uploadCharset() string {
	if *charset != "" {
		return *charset
	}
	return config.GetConfig().UploadCharset
}

type uploadCmd struct {
	kind string
}

func (u *uploadCmd) Name() string { return u.kind }
func (u *uploadCmd) Synopsis() string {
	return "ingest a " + u.kind + " file (.xlsx or .csv) as one batch"
}
func (u *uploadCmd) Usage() string {
	return fmt.Sprintf(`stockctl -user <id> %s <file>

  Parses the file and writes every row in a single transaction. Any bad row
  aborts the whole file and reports its row number and column.
`, u.kind)
}
func (u *uploadCmd) SetFlags(*flag.FlagSet) {}

func (u *uploadCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, u.Usage())
		return subcommands.ExitUsageError
	}
	file, err := os.Open(f.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer file.Close()

	db, err := openDB(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer db.Close()

	name := filepath.Base(f.Arg(0))
	var res *model.IngestResult
	switch u.kind {
	case "inflow":
		rows, perr := parsers.ParseInflowFile(name, file, uploadCharset())
		if perr != nil {
			err = perr
			break
		}
		res, err = ingest.Inflow(ctx, db, *userID, name, rows)
	case "outflow":
		rows, perr := parsers.ParseOutflowFile(name, file, uploadCharset())
		if perr != nil {
			err = perr
			break
		}
		res, err = ingest.Outflow(ctx, db, *userID, name, rows)
	case "refund":
		rows, perr := parsers.ParseRefundFile(name, file, uploadCharset())
		if perr != nil {
			err = perr
			break
		}
		res, err = ingest.Refund(ctx, db, *userID, name, rows)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	fmt.Printf("%d rows written to %s (batch %s)\n", res.Rows, res.TargetTable, res.BatchID)
	if res.AuditError != "" {
		fmt.Fprintf(os.Stderr, "warning: action log not written: %s\n", res.AuditError)
	}
	return subcommands.ExitSuccess
}

type searchCmd struct {
	chip         string
	manufacturer string
}

func (*searchCmd) Name() string     { return "search" }
func (*searchCmd) Synopsis() string { return "show received, consumed and remaining quantities per item" }
func (*searchCmd) Usage() string {
	return `stockctl search [-chip <substring>] [-manufacturer <name>]
`
}
func (s *searchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&s.chip, "chip", "", "Case-insensitive substring of the chip code.")
	f.StringVar(&s.manufacturer, "manufacturer", "", "Exact manufacturer name ('all' for no filter).")
}

func (s *searchCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	db, err := openDB(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer db.Close()

	items, err := reconcile.Search(ctx, db, model.SearchFilters{ChipCode: s.chip, Manufacturer: s.manufacturer})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ITEM\tMANUFACTURER\tLOT\tWAFER\tCHIP CODE\tSTORAGE\tCELL\tREMAINING W\tREMAINING GP\tWARNING")
	for _, it := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			it.ItemID, it.Manufacturer, it.Lot, it.Wafer, it.ChipCode, it.Storage, it.Cell,
			it.RemainingWafer, it.RemainingGelPack, it.Warning)
	}
	tw.Flush()

	if w := reconcile.Warnings(items); len(w) > 0 {
		fmt.Fprintf(os.Stderr, "%d item(s) with negative remainder\n", len(w))
	}
	return subcommands.ExitSuccess
}

type logsCmd struct {
	limit int
}

func (*logsCmd) Name() string     { return "logs" }
func (*logsCmd) Synopsis() string { return "list the user's file uploads, newest first" }
func (*logsCmd) Usage() string {
	return `stockctl -user <id> logs [-n <count>]
`
}
func (l *logsCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&l.limit, "n", 20, "Number of entries to show (0 for all).")
}

func (l *logsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	db, err := openDB(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer db.Close()

	entries, err := actionlog.List(ctx, db, *userID, l.limit)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tACTION\tFILE\tTABLE\tROWS")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", e.CreatedAt, e.ActionType, e.FileName, e.TargetTable, e.RowCount)
	}
	tw.Flush()
	return subcommands.ExitSuccess
}

type cartExportCmd struct {
	out   string
	clear bool
}

func (*cartExportCmd) Name() string     { return "cart-export" }
func (*cartExportCmd) Synopsis() string { return "write the user's cart as an outflow spreadsheet" }
func (*cartExportCmd) Usage() string {
	return `stockctl -user <id> cart-export -o <file.xlsx> [-clear]
`
}
func (c *cartExportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.out, "o", "cart.xlsx", "Output file.")
	f.BoolVar(&c.clear, "clear", false, "Empty the cart after a successful export.")
}

func (c *cartExportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	db, err := openDB(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer db.Close()

	out, err := os.Create(c.out)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer out.Close()

	sheet := config.GetConfig().ExportSheetName
	var n int
	if c.clear {
		n, err = cart.Checkout(ctx, db, *userID, out, sheet)
	} else {
		n, err = cart.Export(ctx, db, *userID, out, sheet)
	}
	if err != nil {
		out.Close()
		os.Remove(c.out)
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("%d cart entries written to %s\n", n, c.out)
	return subcommands.ExitSuccess
}
