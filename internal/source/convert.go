package source

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"MarketSeries/internal/model"
)

// Database drivers hand back values in many shapes: DECIMAL columns arrive as
// []byte, integers as int64 or int32, datetimes as time.Time. These helpers
// normalise them for the Row accessors.

func asText(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", model.ErrFieldNull
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	default:
		return "", fmt.Errorf("%w: %T as text", model.ErrFieldType, v)
	}
}

func asInt(v any) (int64, error) {
	switch x := v.(type) {
	case nil:
		return 0, model.ErrFieldNull
	case int64:
		return x, nil
	case int32:
		return int64(x), nil
	case int:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return 0, fmt.Errorf("%w: %d out of int64 range", model.ErrFieldType, x)
		}
		return int64(x), nil
	case uint:
		if uint64(x) > math.MaxInt64 {
			return 0, fmt.Errorf("%w: %d out of int64 range", model.ErrFieldType, x)
		}
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint8:
		return int64(x), nil
	case float64:
		return floatToInt(x)
	case float32:
		return floatToInt(float64(x))
	case time.Time:
		return x.Unix(), nil
	case []byte:
		return parseInt(string(x))
	case string:
		return parseInt(x)
	default:
		return 0, fmt.Errorf("%w: %T as int", model.ErrFieldType, v)
	}
}

// floatToInt accepts whole numbers inside the int64 range. 2^63 itself is
// excluded since it has no int64 counterpart.
func floatToInt(x float64) (int64, error) {
	if math.IsNaN(x) || x != math.Trunc(x) {
		return 0, fmt.Errorf("%w: non-integral %v", model.ErrFieldType, x)
	}
	if x < math.MinInt64 || x >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: %v out of int64 range", model.ErrFieldType, x)
	}
	return int64(x), nil
}

func parseInt(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, model.ErrFieldNull
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q as int", model.ErrFieldType, s)
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("%w: non-integral %s", model.ErrFieldType, s)
	}
	if !d.BigInt().IsInt64() {
		return 0, fmt.Errorf("%w: %s out of int64 range", model.ErrFieldType, s)
	}
	return d.IntPart(), nil
}

func asFloat(v any) (float64, error) {
	switch x := v.(type) {
	case nil:
		return 0, model.ErrFieldNull
	case float64:
		return finite(x)
	case float32:
		return finite(float64(x))
	case int64:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int16:
		return float64(x), nil
	case int8:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case uint:
		return float64(x), nil
	case uint32:
		return float64(x), nil
	case uint16:
		return float64(x), nil
	case uint8:
		return float64(x), nil
	case decimal.Decimal:
		return finite(x.InexactFloat64())
	case []byte:
		return parseFloat(string(x))
	case string:
		return parseFloat(x)
	default:
		return 0, fmt.Errorf("%w: %T as float", model.ErrFieldType, v)
	}
}

// finite maps NaN to a null field and rejects infinities.
func finite(x float64) (float64, error) {
	if math.IsNaN(x) {
		return 0, model.ErrFieldNull
	}
	if math.IsInf(x, 0) {
		return 0, fmt.Errorf("%w: infinite value", model.ErrFieldType)
	}
	return x, nil
}

func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, model.ErrFieldNull
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q as float", model.ErrFieldType, s)
	}
	return finite(d.InexactFloat64())
}
