package services

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"agro-trend-api/pkg/models"

	"github.com/dustin/go-humanize"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/xuri/excelize/v2"
	_ "modernc.org/sqlite"
)

// spanishMonths 月名（スペイン語）から月番号への対応表
var spanishMonths = map[string]time.Month{
	"Enero":      time.January,
	"Febrero":    time.February,
	"Marzo":      time.March,
	"Abril":      time.April,
	"Mayo":       time.May,
	"Junio":      time.June,
	"Julio":      time.July,
	"Agosto":     time.August,
	"Septiembre": time.September,
	"Octubre":    time.October,
	"Noviembre":  time.November,
	"Diciembre":  time.December,
}

// 列名の候補（小文字で比較）
var (
	productColumns = []string{"descripcion partida10 dig", "descripción partida10 dig", "descripcion_partida", "producto"}
	yearColumns    = []string{"año", "anio", "ano", "year"}
	monthColumns   = []string{"mes", "month"}
	valueColumns   = []string{"exportaciones en valor (miles usd fob)", "valor_miles_usd_fob", "valor", "value"}
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// RawExportRow 正規化前の1行。CSV・Excel・SQLいずれのソースも文字列として受け取る。
type RawExportRow struct {
	Product sql.NullString `db:"descripcion_partida"`
	Year    sql.NullString `db:"anio"`
	Month   sql.NullString `db:"mes"`
	Value   sql.NullString `db:"valor_miles_usd_fob"`
}

// Dataset 起動時に一度だけ構築される読み取り専用の輸出データ。
// 変更用のメソッドは持たず、参照系の操作はすべてコピーを返すため複数リクエストから並行に読める。
type Dataset struct {
	records  []models.ExportRecord
	products []string
}

// NewDataset 正規化済みレコードから Dataset を構築する
func NewDataset(records []models.ExportRecord) *Dataset {
	owned := make([]models.ExportRecord, len(records))
	copy(owned, records)

	seen := make(map[string]bool)
	products := make([]string, 0)
	for _, r := range owned {
		if strings.TrimSpace(r.Product) == "" || seen[r.Product] {
			continue
		}
		seen[r.Product] = true
		products = append(products, r.Product)
	}

	return &Dataset{records: owned, products: products}
}

// Len レコード数
func (d *Dataset) Len() int {
	return len(d.records)
}

// Records 全レコードのコピー
func (d *Dataset) Records() []models.ExportRecord {
	out := make([]models.ExportRecord, len(d.records))
	copy(out, d.records)
	return out
}

// Products データセットに含まれる製品名（重複なし、出現順）
func (d *Dataset) Products() []string {
	out := make([]string, len(d.products))
	copy(out, d.products)
	return out
}

// Filter 製品名が大文字小文字を無視して完全一致するレコードを返す
func (d *Dataset) Filter(product string) []models.ExportRecord {
	out := make([]models.ExportRecord, 0)
	for _, r := range d.records {
		if strings.EqualFold(r.Product, product) {
			out = append(out, r)
		}
	}
	return out
}

// LoadDataset ソースの種類（CSV / Excel / SQLite / PostgreSQL）を判定して読み込む。
// 読み込みに失敗した場合は ErrDataUnavailable を返す。解釈できない行は個別に破棄する。
func LoadDataset(ctx context.Context, source, table string) (*Dataset, error) {
	rows, err := ReadRawRows(ctx, source, table)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDataUnavailable, source, err)
	}

	records := NormalizeRows(rows)
	dropped := len(rows) - len(records)
	log.Printf("📦 [データセット] %s を読み込みました: %s 件（破棄 %s 件）",
		source, humanize.Comma(int64(len(records))), humanize.Comma(int64(dropped)))

	return NewDataset(records), nil
}

// ReadRawRows ソースから正規化前の行を読み込む
func ReadRawRows(ctx context.Context, source, table string) ([]RawExportRow, error) {
	lower := strings.ToLower(source)
	switch {
	case strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://"):
		return readSQLRows(ctx, "postgres", source, table)
	case strings.HasPrefix(lower, "sqlite:"):
		return readSQLRows(ctx, "sqlite", source[len("sqlite:"):], table)
	}

	switch strings.ToLower(filepath.Ext(source)) {
	case ".db", ".sqlite", ".sqlite3":
		return readSQLRows(ctx, "sqlite", source, table)
	case ".xlsx":
		return readExcelRows(source)
	default:
		f, err := os.Open(source)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return ReadCSVRows(f)
	}
}

// ReadCSVRows CSVを読み込み、ヘッダーから必要な列を検出する
func ReadCSVRows(r io.Reader) ([]RawExportRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	return tableToRows(rows)
}

func readExcelRows(path string) ([]RawExportRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, err
	}
	return tableToRows(rows)
}

func readSQLRows(ctx context.Context, driver, dsn, table string) ([]RawExportRow, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name: %q", table)
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	query := fmt.Sprintf(`SELECT
		CAST(descripcion_partida AS TEXT) AS descripcion_partida,
		CAST(anio AS TEXT) AS anio,
		CAST(mes AS TEXT) AS mes,
		CAST(valor_miles_usd_fob AS TEXT) AS valor_miles_usd_fob
	FROM %s`, table)

	var rows []RawExportRow
	if err := db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}
	return rows, nil
}

// tableToRows ヘッダー行 + データ行の二次元配列を RawExportRow に変換する
func tableToRows(table [][]string) ([]RawExportRow, error) {
	if len(table) == 0 {
		return nil, errors.New("no data")
	}

	header := normalizeHeader(table[0])
	productIdx := findColumn(header, productColumns...)
	yearIdx := findColumn(header, yearColumns...)
	monthIdx := findColumn(header, monthColumns...)
	valueIdx := findColumn(header, valueColumns...)

	var missing []string
	if productIdx == -1 {
		missing = append(missing, "Descripcion Partida10 Dig")
	}
	if yearIdx == -1 {
		missing = append(missing, "Año")
	}
	if monthIdx == -1 {
		missing = append(missing, "Mes")
	}
	if valueIdx == -1 {
		missing = append(missing, "Exportaciones en valor (Miles USD FOB)")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("required columns not found: %s (header: %v)", strings.Join(missing, ", "), table[0])
	}

	out := make([]RawExportRow, 0, len(table)-1)
	for _, row := range table[1:] {
		out = append(out, RawExportRow{
			Product: cell(row, productIdx),
			Year:    cell(row, yearIdx),
			Month:   cell(row, monthIdx),
			Value:   cell(row, valueIdx),
		})
	}
	return out, nil
}

// NormalizeRows 月名を正規化して月初日を導出し、日付または値を解釈できない行を破棄する
func NormalizeRows(rows []RawExportRow) []models.ExportRecord {
	out := make([]models.ExportRecord, 0, len(rows))
	for _, raw := range rows {
		rec, ok := normalizeRow(raw)
		if !ok {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func normalizeRow(raw RawExportRow) (models.ExportRecord, bool) {
	month := capitalize(strings.TrimSpace(raw.Month.String))
	date, ok := monthStart(raw.Year.String, month)
	if !ok {
		return models.ExportRecord{}, false
	}

	value, ok := parseAmount(raw.Value.String)
	if !ok {
		return models.ExportRecord{}, false
	}

	return models.ExportRecord{
		Product: raw.Product.String,
		Year:    date.Year(),
		Month:   month,
		Value:   value,
		Date:    date,
	}, true
}

// monthStart 年と正規化済み月名から月初日を作る。解釈できなければ false
func monthStart(yearStr, month string) (time.Time, bool) {
	m, ok := spanishMonths[month]
	if !ok {
		return time.Time{}, false
	}

	yearStr = strings.TrimSpace(yearStr)
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		// Excel由来の "2023.0" のような表記
		f, ferr := strconv.ParseFloat(yearStr, 64)
		if ferr != nil || f != float64(int(f)) {
			return time.Time{}, false
		}
		year = int(f)
	}
	if year < 1 || year > 9999 {
		return time.Time{}, false
	}

	return time.Date(year, m, 1, 0, 0, 0, 0, time.UTC), true
}

func parseAmount(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// capitalize 先頭文字のみ大文字、残りを小文字にする
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

func cell(row []string, idx int) sql.NullString {
	if idx < 0 || idx >= len(row) {
		return sql.NullString{}
	}
	return sql.NullString{String: row[idx], Valid: true}
}

func normalizeHeader(hdr []string) []string {
	out := make([]string, len(hdr))
	for i, v := range hdr {
		// Remove UTF-8 BOM if present, then trim and lowercase
		v = strings.TrimPrefix(v, "\ufeff")
		out[i] = strings.ToLower(strings.TrimSpace(v))
	}
	return out
}

// findColumn finds the index of the first candidate in the header
func findColumn(header []string, candidates ...string) int {
	for _, candidate := range candidates {
		for i, h := range header {
			if strings.EqualFold(h, candidate) {
				return i
			}
		}
	}
	return -1
}
