package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"agro-trend-api/pkg/services"
	"agro-trend-api/pkg/store"

	"github.com/dustin/go-humanize"
)

func main() {
	source := flag.String("source", "", "CSV or XLSX file to import")
	dbPath := flag.String("db", "exportaciones.db", "sqlite database path")
	table := flag.String("table", "exportaciones", "destination table")
	replace := flag.Bool("replace", false, "delete existing rows before importing")
	flag.Parse()

	if *source == "" {
		fmt.Fprintln(os.Stderr, "usage: import_dataset -source <file.csv|file.xlsx> [-db exportaciones.db] [-table exportaciones] [-replace]")
		os.Exit(2)
	}

	if err := run(context.Background(), *source, *dbPath, *table, *replace); err != nil {
		fmt.Fprintln(os.Stderr, "import failed:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, source, dbPath, table string, replace bool) error {
	rows, err := services.ReadRawRows(ctx, source, table)
	if err != nil {
		return fmt.Errorf("read %s: %w", source, err)
	}

	st, err := store.New(dbPath, table)
	if err != nil {
		return err
	}
	defer st.Close()

	if replace {
		if err := st.Truncate(ctx); err != nil {
			return err
		}
	}
	if err := st.InsertRows(ctx, rows); err != nil {
		return err
	}

	total, err := st.Count(ctx)
	if err != nil {
		return err
	}
	log.Printf("📦 [インポート] %s → %s:%s に %s 行を追加しました（合計 %s 行）",
		source, dbPath, table, humanize.Comma(int64(len(rows))), humanize.Comma(int64(total)))
	return nil
}
