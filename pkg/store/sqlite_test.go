package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"agro-trend-api/pkg/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func text(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

func TestStoreRoundTripThroughLoader(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "exportaciones.db")

	st, err := New(path, "exportaciones")
	require.NoError(t, err)

	rows := []services.RawExportRow{
		{Product: text("Café"), Year: text("2020"), Month: text("Enero"), Value: text("100")},
		{Product: text("Café"), Year: text("2020"), Month: text("febrero"), Value: text("1,200.5")},
		{Product: text("Café"), Year: text("2020"), Month: text("Marzo"), Value: sql.NullString{}},
		{Product: text("Mango"), Year: text("2021"), Month: text("Julio"), Value: text("7")},
	}
	require.NoError(t, st.InsertRows(ctx, rows))

	n, err := st.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	require.NoError(t, st.Close())

	for _, source := range []string{path, "sqlite:" + path} {
		dataset, err := services.LoadDataset(ctx, source, "exportaciones")
		require.NoError(t, err, source)
		assert.Equal(t, 3, dataset.Len(), source)
		assert.Equal(t, []string{"Café", "Mango"}, dataset.Products())
		assert.Equal(t, 1200.5, dataset.Filter("café")[1].Value)
	}
}

func TestStoreTruncate(t *testing.T) {
	ctx := context.Background()
	st, err := New(filepath.Join(t.TempDir(), "x.db"), "datos")
	require.NoError(t, err)
	defer st.Close()

	require.NoError(t, st.InsertRows(ctx, []services.RawExportRow{{Product: text("Uva")}}))
	require.NoError(t, st.Truncate(ctx))

	n, err := st.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestNewValidatesArguments(t *testing.T) {
	_, err := New("", "exportaciones")
	assert.Error(t, err)

	_, err = New(filepath.Join(t.TempDir(), "x.db"), "bad name")
	assert.Error(t, err)
}
