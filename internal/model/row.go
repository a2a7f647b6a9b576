package model

import (
	"context"
	"errors"
)

// Field is the logical name of a row field. Values match the column names of
// the yahooData table.
type Field string

const (
	FieldAsAt           Field = "asAtDateTime"
	FieldSecurity       Field = "security"
	FieldCurrency       Field = "currency"
	FieldLow            Field = "marketLow"
	FieldHigh           Field = "marketHigh"
	FieldOpen           Field = "marketOpen"
	FieldClose          Field = "marketClose"
	FieldVolume         Field = "marketVolume"
	FieldInstrumentType Field = "instrumentType"
	FieldExchangeName   Field = "exchangeName"
	FieldTimeZone       Field = "timeZone"
	FieldGMTOffset      Field = "gmtOffSet"
)

// Fields lists every field a row is expected to carry.
var Fields = []Field{
	FieldAsAt, FieldSecurity, FieldCurrency,
	FieldLow, FieldHigh, FieldOpen, FieldClose, FieldVolume,
	FieldInstrumentType, FieldExchangeName, FieldTimeZone, FieldGMTOffset,
}

var (
	ErrFieldMissing = errors.New("field missing")
	ErrFieldNull    = errors.New("field is null")
	ErrFieldType    = errors.New("unsupported field type")
)

// Row is one record from a tabular source, accessed by logical field name.
type Row interface {
	Text(f Field) (string, error)
	Int(f Field) (int64, error)
	Float(f Field) (float64, error)
}

// RowReader yields rows one at a time. Next returns io.EOF once exhausted.
type RowReader interface {
	Next(ctx context.Context) (Row, error)
	Name() string
	Close() error
}
