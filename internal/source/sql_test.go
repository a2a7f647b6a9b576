package source

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketSeries/internal/model"
)

func seedSQLite(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prices.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE yahoo_data (
		"asAtDateTime"   INTEGER,
		"security"       TEXT,
		"currency"       TEXT,
		"marketLow"      REAL,
		"marketHigh"     REAL,
		"marketOpen"     REAL,
		"marketClose"    TEXT,
		"marketVolume"   REAL,
		"instrumentType" TEXT,
		"exchangeName"   TEXT,
		"timeZone"       TEXT,
		"gmtOffSet"      INTEGER
	)`)
	require.NoError(t, err)

	ins := `INSERT INTO yahoo_data VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`
	_, err = db.Exec(ins, 1716557400, "AAPL", "USD", 10, 12, 11, "11.5", 1000, "EQUITY", "NMS", "EDT", -14400)
	require.NoError(t, err)
	_, err = db.Exec(ins, 1716557460, "MSFT", "USD", 20, 21, 20, "20.5", 500, "EQUITY", "NMS", "EDT", -14400)
	require.NoError(t, err)
	_, err = db.Exec(ins, 1716557520, "AAPL", "USD", 11, 13, 11, nil, 1200, "EQUITY", "NMS", "EDT", -14400)
	require.NoError(t, err)
	return path
}

func TestSQLReader_ReadsNamedColumns(t *testing.T) {
	path := seedSQLite(t)
	r, err := NewSQLReader(context.Background(), "sqlite", path, DefaultQuery("sqlite", ""))
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, "sql:sqlite", r.Name())

	row, err := r.Next(context.Background())
	require.NoError(t, err)
	ticker, err := row.Text(model.FieldSecurity)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", ticker)
	closePx, err := row.Float(model.FieldClose)
	require.NoError(t, err)
	assert.Equal(t, 11.5, closePx)
	off, err := row.Int(model.FieldGMTOffset)
	require.NoError(t, err)
	assert.Equal(t, int64(-14400), off)

	_, err = r.Next(context.Background())
	require.NoError(t, err)

	row, err = r.Next(context.Background())
	require.NoError(t, err)
	_, err = row.Float(model.FieldClose)
	assert.True(t, errors.Is(err, model.ErrFieldNull))

	_, err = r.Next(context.Background())
	assert.Equal(t, io.EOF, err)
}

func TestSQLReader_ColumnOrderAndCaseDoNotMatter(t *testing.T) {
	path := seedSQLite(t)
	query := `SELECT "marketVolume" AS MARKETVOLUME, "security" AS Security, "asAtDateTime" AS asatdatetime FROM yahoo_data`
	r, err := NewSQLReader(context.Background(), "sqlite", path, query)
	require.NoError(t, err)
	defer r.Close()

	row, err := r.Next(context.Background())
	require.NoError(t, err)
	vol, err := row.Float(model.FieldVolume)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, vol)
	secs, err := row.Int(model.FieldAsAt)
	require.NoError(t, err)
	assert.Equal(t, int64(1716557400), secs)

	_, err = row.Text(model.FieldCurrency)
	assert.True(t, errors.Is(err, model.ErrFieldMissing))
}

func TestSQLReader_BadQuery(t *testing.T) {
	path := seedSQLite(t)
	_, err := NewSQLReader(context.Background(), "sqlite", path, "SELECT * FROM missing_table")
	assert.Error(t, err)
}

func TestDefaultQuery_Dialects(t *testing.T) {
	q := DefaultQuery("sqlserver", "")
	assert.Contains(t, q, "[asAtDateTime], [security]")
	assert.Contains(t, q, "FROM [stk].[yahooData]")

	assert.Contains(t, DefaultQuery("mysql", "prices"), "`gmtOffSet` FROM prices")
	assert.Contains(t, DefaultQuery("postgres", ""), `"marketClose"`)
}
