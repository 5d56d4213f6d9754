package visitors

import (
	"database/sql/driver"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/syssam/mapper/nodes"
)

// ColumnHint describes the column a value is written to.
type ColumnHint interface {
	ColumnType() string
}

// Column type names understood as quoting hints.
const (
	TypeInteger  = "integer"
	TypeFloat    = "float"
	TypeDecimal  = "decimal"
	TypeBoolean  = "boolean"
	TypeDatetime = "datetime"
	TypeDate     = "date"
	TypeTime     = "time"
	TypeBinary   = "binary"
)

const (
	datetimeLayout = "2006-01-02 15:04:05"
	dateLayout     = "2006-01-02"
	timeLayout     = "15:04:05"
)

// ValuerError is reported when the driver.Valuer of a quoted value fails.
type ValuerError struct {
	Value any
	Err   error
}

func (e *ValuerError) Error() string {
	return fmt.Sprintf("visitors: quote %T: %v", e.Value, e.Err)
}

func (e *ValuerError) Unwrap() error { return e.Err }

// QuoteColumnName quotes a column identifier.
func (v *Visitor) QuoteColumnName(name string) string { return v.d.QuoteIdentifier(name) }

// QuoteTableName quotes a table identifier.
func (v *Visitor) QuoteTableName(name string) string { return v.d.QuoteTableName(name) }

// QuoteString returns s as a single quoted string literal. Backslashes are
// escaped and single quotes doubled.
func (v *Visitor) QuoteString(s string) string {
	if !strings.ContainsAny(s, `'\`) {
		return "'" + s + "'"
	}
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "'", "''")
	return "'" + s + "'"
}

// Quote renders value as an SQL literal. The optional hint adapts the
// rendering to the target column, e.g. booleans become 1 and 0 for integer
// columns and numeric strings are parsed for numeric columns. A failing
// driver.Valuer panics with a *ValuerError unless rendering through
// Compile or Literal.
func (v *Visitor) Quote(value any, hint ColumnHint) string {
	typ := ""
	if hint != nil {
		typ = hint.ColumnType()
	}
	switch x := value.(type) {
	case nil:
		return "NULL"
	case nodes.Node, nodes.TableSource, nodes.Subquery:
		return v.Visit(x)
	case bool:
		if typ == TypeInteger {
			if x {
				return "1"
			}
			return "0"
		}
		return v.d.Boolean(x)
	case string:
		return v.quoteText(x, typ)
	case []byte:
		return v.QuoteString(string(x))
	case int:
		return strconv.FormatInt(int64(x), 10)
	case int8:
		return strconv.FormatInt(int64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint8:
		return strconv.FormatUint(uint64(x), 10)
	case uint16:
		return strconv.FormatUint(uint64(x), 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float32:
		return v.quoteFloat(float64(x), typ)
	case float64:
		return v.quoteFloat(x, typ)
	case time.Time:
		return v.QuoteString(formatTime(x, typ))
	case driver.Valuer:
		dv, err := x.Value()
		if err != nil {
			v.fail(&ValuerError{Value: value, Err: err})
			return "NULL"
		}
		return v.Quote(dv, hint)
	case fmt.Stringer:
		return v.QuoteString(x.String())
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return "NULL"
		}
		return v.Quote(rv.Elem().Interface(), hint)
	case reflect.Slice, reflect.Array:
		if rv.Len() == 0 {
			return "NULL"
		}
		items := make([]string, rv.Len())
		for i := range items {
			items[i] = v.Quote(rv.Index(i).Interface(), hint)
		}
		return strings.Join(items, ", ")
	}
	return v.QuoteString(fmt.Sprint(value))
}

// quoteFloat renders integral floats as integers and quotes the others,
// unless the column is known to be numeric.
func (v *Visitor) quoteFloat(f float64, typ string) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "NULL"
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if f == math.Trunc(f) || typ == TypeFloat || typ == TypeDecimal {
		return s
	}
	return v.QuoteString(s)
}

func (v *Visitor) quoteText(s, typ string) string {
	switch typ {
	case TypeInteger:
		if n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			return strconv.FormatInt(n, 10)
		}
	case TypeFloat, TypeDecimal:
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
	case TypeDatetime, TypeDate, TypeTime:
		if t, err := dateparse.ParseIn(s, time.UTC); err == nil {
			return v.QuoteString(formatTime(t, typ))
		}
	}
	return v.QuoteString(s)
}

func formatTime(t time.Time, typ string) string {
	switch typ {
	case TypeDate:
		return t.UTC().Format(dateLayout)
	case TypeTime:
		return t.UTC().Format(timeLayout)
	}
	return t.UTC().Format(datetimeLayout)
}

// columnFor returns the quoting hint of an assignment target.
func columnFor(target any) ColumnHint {
	if u, ok := target.(*nodes.Unary); ok {
		target = u.Expr
	}
	if a, ok := target.(*nodes.Attribute); ok && a != nil && a.Type != "" {
		return a
	}
	return nil
}

func isNull(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map:
		return rv.IsNil()
	}
	return false
}
