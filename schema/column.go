package schema

import "github.com/syssam/mapper/visitors"

// Type is the logical type of a column.
type Type string

// Logical column types.
const (
	TypePrimaryKey Type = "primary_key"
	TypeForeignKey Type = "foreign_key"
	TypeString     Type = "string"
	TypeText       Type = "text"
	TypeInteger    Type = "integer"
	TypeFloat      Type = "float"
	TypeDecimal    Type = "decimal"
	TypeDatetime   Type = "datetime"
	TypeTime       Type = "time"
	TypeDate       Type = "date"
	TypeBinary     Type = "binary"
	TypeBoolean    Type = "boolean"
)

// Valid reports if the type is one of the logical types.
func (t Type) Valid() bool {
	_, ok := nativeTypes[""][t]
	return ok
}

// Column describes a table column.
type Column struct {
	Name      string
	Type      Type
	Size      int // Length of string-like types; 0 uses the dialect default
	Precision int // Total digits of a decimal
	Scale     int // Digits after the decimal point
	Default   any // Default value; nil for none
	NotNull   bool
}

// Definer is implemented by columns and column builders.
type Definer interface {
	Definition() *Column
}

// Definition implements Definer.
func (c *Column) Definition() *Column { return c }

// ColumnType implements visitors.ColumnHint. Keys are integers.
func (c *Column) ColumnType() string {
	switch c.Type {
	case TypePrimaryKey, TypeForeignKey:
		return visitors.TypeInteger
	case TypeString, TypeText:
		return ""
	}
	return string(c.Type)
}

var _ visitors.ColumnHint = (*Column)(nil)

// Builder builds a column definition.
type Builder struct {
	c *Column
}

func newBuilder(name string, t Type) *Builder {
	return &Builder{c: &Column{Name: name, Type: t}}
}

// PrimaryKey returns a builder for an auto-incremented integer key.
func PrimaryKey(name string) *Builder { return newBuilder(name, TypePrimaryKey) }

// ForeignKey returns a builder for an integer column referencing a key.
func ForeignKey(name string) *Builder { return newBuilder(name, TypeForeignKey) }

// String returns a builder for a bounded string column.
func String(name string) *Builder { return newBuilder(name, TypeString) }

// Text returns a builder for an unbounded text column.
func Text(name string) *Builder { return newBuilder(name, TypeText) }

// Integer returns a builder for an integer column.
func Integer(name string) *Builder { return newBuilder(name, TypeInteger) }

// Float returns a builder for a floating point column.
func Float(name string) *Builder { return newBuilder(name, TypeFloat) }

// Decimal returns a builder for a fixed point column.
func Decimal(name string) *Builder { return newBuilder(name, TypeDecimal) }

// Datetime returns a builder for a date and time column.
func Datetime(name string) *Builder { return newBuilder(name, TypeDatetime) }

// Time returns a builder for a time of day column.
func Time(name string) *Builder { return newBuilder(name, TypeTime) }

// Date returns a builder for a date column.
func Date(name string) *Builder { return newBuilder(name, TypeDate) }

// Binary returns a builder for a binary column.
func Binary(name string) *Builder { return newBuilder(name, TypeBinary) }

// Boolean returns a builder for a boolean column.
func Boolean(name string) *Builder { return newBuilder(name, TypeBoolean) }

// Size sets the length of the column type.
func (b *Builder) Size(n int) *Builder {
	b.c.Size = n
	return b
}

// Precision sets the total digits of a decimal.
func (b *Builder) Precision(p int) *Builder {
	b.c.Precision = p
	return b
}

// Scale sets the digits after the decimal point of a decimal.
func (b *Builder) Scale(s int) *Builder {
	b.c.Scale = s
	return b
}

// Default sets the default value of the column.
func (b *Builder) Default(v any) *Builder {
	b.c.Default = v
	return b
}

// NotNull marks the column as required.
func (b *Builder) NotNull() *Builder {
	b.c.NotNull = true
	return b
}

// Definition implements Definer.
func (b *Builder) Definition() *Column { return b.c }
