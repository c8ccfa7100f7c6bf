package records

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"
)

// DateLayout is the text form of date cells.
const DateLayout = "2006-01-02"

// Format converts a cell to its text form. The conversion is stable: the same
// value always yields the same bytes. Missing values (nil or an invalid
// sql.NullString) format as the empty string.
func Format(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "1"
		}
		return "0"
	case sql.NullString:
		if !t.Valid {
			return ""
		}
		return t.String
	case time.Time:
		return t.Format(DateLayout)
	default:
		return fmt.Sprint(t)
	}
}

// DBValue converts a cell to a value database drivers encode directly.
// Missing values become nil (SQL NULL).
func DBValue(v any) any {
	switch t := v.(type) {
	case sql.NullString:
		if !t.Valid {
			return nil
		}
		return t.String
	case int:
		return int64(t)
	default:
		return v
	}
}

// IsNull reports whether v is a missing-value marker.
func IsNull(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case sql.NullString:
		return !t.Valid
	}
	return false
}
