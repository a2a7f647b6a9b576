package source

import (
	"context"
	"io"

	"MarketSeries/internal/model"
)

// MapRow is a Row backed by a map of raw values.
type MapRow map[model.Field]any

func (r MapRow) get(f model.Field) (any, error) {
	v, ok := r[f]
	if !ok {
		return nil, model.ErrFieldMissing
	}
	return v, nil
}

func (r MapRow) Text(f model.Field) (string, error) {
	v, err := r.get(f)
	if err != nil {
		return "", err
	}
	return asText(v)
}

func (r MapRow) Int(f model.Field) (int64, error) {
	v, err := r.get(f)
	if err != nil {
		return 0, err
	}
	return asInt(v)
}

func (r MapRow) Float(f model.Field) (float64, error) {
	v, err := r.get(f)
	if err != nil {
		return 0, err
	}
	return asFloat(v)
}

// SliceReader yields a fixed list of rows in order.
type SliceReader struct {
	name string
	rows []model.Row
	pos  int
}

// NewSliceReader creates a reader over rows.
func NewSliceReader(name string, rows ...model.Row) *SliceReader {
	return &SliceReader{name: name, rows: rows}
}

func (r *SliceReader) Name() string { return r.name }

func (r *SliceReader) Next(_ context.Context) (model.Row, error) {
	if r.pos >= len(r.rows) {
		return nil, io.EOF
	}
	row := r.rows[r.pos]
	r.pos++
	return row, nil
}

func (r *SliceReader) Close() error { return nil }
