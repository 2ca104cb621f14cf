package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"agro-trend-api/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const sampleCSV = "\ufeffDescripcion Partida10 Dig,Año,Mes,Exportaciones en valor (Miles USD FOB)\n" +
	"Café,2020,enero,100\n" +
	"Café,2020,ENERO,\"1,050.5\"\n" +
	"Café,2020,Foo,10\n" +
	"Café,2020,Marzo,\n" +
	"Mango,2021.0,Diciembre,5\n" +
	",2021,Enero,7\n"

func TestReadCSVRowsAndNormalize(t *testing.T) {
	rows, err := ReadCSVRows(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	assert.Len(t, rows, 6)

	records := NormalizeRows(rows)
	require.Len(t, records, 4, "行の月名不正と値の欠損は破棄される")

	assert.Equal(t, "Café", records[0].Product)
	assert.Equal(t, "Enero", records[0].Month)
	assert.Equal(t, month(2020, 1), records[0].Date)
	assert.Equal(t, 100.0, records[0].Value)

	assert.Equal(t, "Enero", records[1].Month)
	assert.Equal(t, 1050.5, records[1].Value)

	assert.Equal(t, "Mango", records[2].Product)
	assert.Equal(t, 2021, records[2].Year)
	assert.Equal(t, month(2021, 12), records[2].Date)
}

func TestReadCSVRowsMissingColumns(t *testing.T) {
	_, err := ReadCSVRows(strings.NewReader("producto,anio\nCafé,2020\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Mes")
}

func TestNewDataset(t *testing.T) {
	records := []models.ExportRecord{
		{Product: "Café", Date: month(2020, 1), Value: 1},
		{Product: "Mango", Date: month(2020, 1), Value: 2},
		{Product: "", Date: month(2020, 1), Value: 3},
		{Product: "Café", Date: month(2020, 2), Value: 4},
		{Product: "Café tostado", Date: month(2020, 2), Value: 5},
	}
	dataset := NewDataset(records)

	assert.Equal(t, 5, dataset.Len())
	assert.Equal(t, []string{"Café", "Mango", "Café tostado"}, dataset.Products())

	// 大文字小文字を無視した完全一致のみ
	assert.Len(t, dataset.Filter("CAFÉ"), 2)
	assert.Empty(t, dataset.Filter("caf"))

	// 呼び出し側が返り値を変更しても内部状態は変わらない
	records[0].Value = 999
	got := dataset.Records()
	got[1].Value = 999
	assert.Equal(t, 1.0, dataset.Records()[0].Value)
	assert.Equal(t, 2.0, dataset.Records()[1].Value)
}

func TestLoadDatasetCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exportaciones.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	dataset, err := LoadDataset(context.Background(), path, "exportaciones")
	require.NoError(t, err)
	assert.Equal(t, 4, dataset.Len())
	assert.Equal(t, []string{"Café", "Mango"}, dataset.Products())
}

func TestLoadDatasetExcel(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Descripcion Partida10 Dig", "Año", "Mes", "Exportaciones en valor (Miles USD FOB)"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"Palta", 2022, "Julio", 12.5}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"Palta", 2022, "agosto", 20}))
	require.NoError(t, f.SetSheetRow(sheet, "A4", &[]interface{}{"Palta", "n/a", "Agosto", 20}))

	path := filepath.Join(t.TempDir(), "exportaciones.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	dataset, err := LoadDataset(context.Background(), path, "exportaciones")
	require.NoError(t, err)
	require.Equal(t, 2, dataset.Len())

	records := dataset.Records()
	assert.Equal(t, month(2022, 7), records[0].Date)
	assert.Equal(t, 12.5, records[0].Value)
	assert.Equal(t, "Agosto", records[1].Month)
}

func TestLoadDatasetUnavailable(t *testing.T) {
	_, err := LoadDataset(context.Background(), filepath.Join(t.TempDir(), "missing.csv"), "exportaciones")
	assert.ErrorIs(t, err, ErrDataUnavailable)

	_, err = LoadDataset(context.Background(), "sqlite:"+filepath.Join(t.TempDir(), "x.db"), "exportaciones; DROP TABLE x")
	assert.ErrorIs(t, err, ErrDataUnavailable)
}

func TestMonthStart(t *testing.T) {
	cases := []struct {
		year, month string
		ok          bool
	}{
		{"2020", "Enero", true},
		{" 2020 ", "Septiembre", true},
		{"2020.0", "Mayo", true},
		{"2020.5", "Mayo", false},
		{"abc", "Mayo", false},
		{"2020", "Setiembre", false},
		{"0", "Enero", false},
	}
	for _, tc := range cases {
		_, ok := monthStart(tc.year, tc.month)
		assert.Equal(t, tc.ok, ok, "%s %s", tc.year, tc.month)
	}
}
