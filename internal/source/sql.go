package source

import (
	"context"
	"database/sql"
	"io"
	"log"
	"strings"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/pkg/errors"

	"MarketSeries/internal/model"
)

// SQLReader streams rows from a query over any registered database/sql
// driver. Columns are matched to fields by name, never by position.
type SQLReader struct {
	driver string
	db     *sql.DB
	rows   *sql.Rows
	index  map[model.Field]int
	width  int
}

// NewSQLReader connects with driver/dsn and executes query.
func NewSQLReader(ctx context.Context, driver, dsn, query string) (*SQLReader, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", driver)
	}
	return newSQLReader(ctx, driver, db, query)
}

func newSQLReader(ctx context.Context, driver string, db *sql.DB, query string) (*SQLReader, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "executing query")
	}
	cols, err := rows.Columns()
	if err != nil {
		rows.Close()
		db.Close()
		return nil, errors.Wrap(err, "reading columns")
	}

	index := columnIndex(cols)
	for _, f := range model.Fields {
		if _, ok := index[f]; !ok {
			log.Printf("[WARN] sql source: column %s not in result set", f)
		}
	}
	log.Printf("[INFO] sql source %s: %d columns", driver, len(cols))

	return &SQLReader{driver: driver, db: db, rows: rows, index: index, width: len(cols)}, nil
}

func columnIndex(cols []string) map[model.Field]int {
	byName := make(map[string]int, len(cols))
	for i, c := range cols {
		byName[strings.ToLower(c)] = i
	}
	index := make(map[model.Field]int, len(model.Fields))
	for _, f := range model.Fields {
		if i, ok := byName[strings.ToLower(string(f))]; ok {
			index[f] = i
		}
	}
	return index
}

func (r *SQLReader) Name() string { return "sql:" + r.driver }

func (r *SQLReader) Next(_ context.Context) (model.Row, error) {
	if !r.rows.Next() {
		if err := r.rows.Err(); err != nil {
			return nil, errors.Wrap(err, "iterating rows")
		}
		return nil, io.EOF
	}
	vals := make([]any, r.width)
	ptrs := make([]any, r.width)
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := r.rows.Scan(ptrs...); err != nil {
		return nil, errors.Wrap(err, "scanning row")
	}
	return &sqlRow{vals: vals, index: r.index}, nil
}

func (r *SQLReader) Close() error {
	rowsErr := r.rows.Close()
	if err := r.db.Close(); err != nil {
		return err
	}
	return rowsErr
}

type sqlRow struct {
	vals  []any
	index map[model.Field]int
}

func (r *sqlRow) get(f model.Field) (any, error) {
	i, ok := r.index[f]
	if !ok {
		return nil, model.ErrFieldMissing
	}
	return r.vals[i], nil
}

func (r *sqlRow) Text(f model.Field) (string, error) {
	v, err := r.get(f)
	if err != nil {
		return "", err
	}
	return asText(v)
}

func (r *sqlRow) Int(f model.Field) (int64, error) {
	v, err := r.get(f)
	if err != nil {
		return 0, err
	}
	return asInt(v)
}

func (r *sqlRow) Float(f model.Field) (float64, error) {
	v, err := r.get(f)
	if err != nil {
		return 0, err
	}
	return asFloat(v)
}

// DefaultTable returns the conventional table name for a driver.
func DefaultTable(driver string) string {
	switch driver {
	case "sqlserver", "mssql", "odbc":
		return "[stk].[yahooData]"
	default:
		return "yahoo_data"
	}
}

// DefaultQuery builds the select over every field for table, quoting column
// names for the driver's dialect.
func DefaultQuery(driver, table string) string {
	if table == "" {
		table = DefaultTable(driver)
	}
	cols := make([]string, len(model.Fields))
	for i, f := range model.Fields {
		cols[i] = quoteIdent(driver, string(f))
	}
	return "SELECT " + strings.Join(cols, ", ") + " FROM " + table
}

func quoteIdent(driver, name string) string {
	switch driver {
	case "sqlserver", "mssql", "odbc":
		return "[" + name + "]"
	case "mysql":
		return "`" + name + "`"
	default:
		return `"` + name + `"`
	}
}
