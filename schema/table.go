package schema

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/syssam/mapper/dialect"
	"github.com/syssam/mapper/visitors"
)

// Table describes a table and its columns.
type Table struct {
	Name       string
	PrimaryKey string // Name of the primary key column, if any
	Columns    []*Column
}

// NewTable returns a table with the given columns. The first primary key
// column becomes the table's primary key.
func NewTable(name string, columns ...Definer) *Table {
	t := &Table{Name: name}
	for _, d := range columns {
		c := d.Definition()
		if c.Type == TypePrimaryKey && t.PrimaryKey == "" {
			t.PrimaryKey = c.Name
		}
		t.Columns = append(t.Columns, c)
	}
	return t
}

// Mixin contributes a reusable set of columns to a table.
type Mixin interface {
	Columns() []Definer
}

// Mix appends the columns of the mixins that the table does not define
// yet, and returns the table.
func (t *Table) Mix(mixins ...Mixin) *Table {
	for _, m := range mixins {
		for _, d := range m.Columns() {
			c := d.Definition()
			if t.HasColumn(c.Name) {
				continue
			}
			if c.Type == TypePrimaryKey && t.PrimaryKey == "" {
				t.PrimaryKey = c.Name
			}
			t.Columns = append(t.Columns, c)
		}
	}
	return t
}

// Lookup returns the named column.
func (t *Table) Lookup(name string) (*Column, error) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, &UnknownColumnError{Table: t.Name, Column: name}
}

// HasColumn reports if the table defines the named column.
func (t *Table) HasColumn(name string) bool {
	_, err := t.Lookup(name)
	return err == nil
}

// ColumnNames returns the column names in definition order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Validate checks the column definitions. Duplicate names, unknown types
// and decimals with a scale but no precision are errors; a table without
// a primary key is a warning.
func (t *Table) Validate() *ValidationResult {
	r := &ValidationResult{}
	seen := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		switch {
		case c.Name == "":
			r.Errors = append(r.Errors, &ColumnError{Table: t.Name, Err: errors.New("empty column name")})
		case seen[c.Name]:
			r.Errors = append(r.Errors, &ColumnError{Table: t.Name, Column: c.Name, Err: errors.New("duplicate column")})
		}
		seen[c.Name] = true
		if !c.Type.Valid() {
			r.Errors = append(r.Errors, &ColumnError{Table: t.Name, Column: c.Name, Err: fmt.Errorf("unknown type %q", c.Type)})
		}
		if c.Type == TypeDecimal && c.Scale > 0 && c.Precision == 0 {
			r.Errors = append(r.Errors, &ColumnError{Table: t.Name, Column: c.Name, Err: ErrDecimalScale})
		}
	}
	if t.PrimaryKey == "" {
		r.Warnings = append(r.Warnings, &ColumnError{Table: t.Name, Column: "-", Err: errors.New("no primary key")})
	}
	return r
}

// CreateOption configures CreateTableSQL.
type CreateOption func(*createConfig)

type createConfig struct {
	temporary bool
	options   string
}

// Temporary creates a temporary table.
func Temporary() CreateOption {
	return func(c *createConfig) { c.temporary = true }
}

// TableOptions appends database specific options, such as
// "ENGINE=InnoDB", to the statement.
func TableOptions(options string) CreateOption {
	return func(c *createConfig) { c.options = options }
}

// CreateTableSQL renders the CREATE TABLE statement of t with v.
func CreateTableSQL(v *visitors.Visitor, t *Table, opts ...CreateOption) (string, error) {
	var cfg createConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	columns := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		def, err := columnSQL(v, c)
		if err != nil {
			var ce *ColumnError
			if errors.As(err, &ce) && ce.Table == "" {
				ce.Table = t.Name
			}
			return "", err
		}
		columns = append(columns, def)
	}
	var b strings.Builder
	b.WriteString("CREATE ")
	if cfg.temporary {
		b.WriteString("TEMPORARY ")
	}
	b.WriteString("TABLE ")
	b.WriteString(v.QuoteTableName(t.Name))
	b.WriteString(" (")
	b.WriteString(strings.Join(columns, ", "))
	b.WriteString(")")
	if cfg.options != "" {
		b.WriteString(" ")
		b.WriteString(cfg.options)
	}
	return b.String(), nil
}

func columnSQL(v *visitors.Visitor, c *Column) (string, error) {
	typ, err := TypeSQL(v.Dialect(), c)
	if err != nil {
		return "", err
	}
	def := v.QuoteColumnName(c.Name) + " " + typ
	if c.Type == TypePrimaryKey {
		return def, nil
	}
	if c.Default != nil {
		lit, err := v.Literal(c.Default, c)
		if err != nil {
			return "", fmt.Errorf("schema: default of %s: %w", c.Name, err)
		}
		def += " DEFAULT " + lit
	}
	if c.NotNull {
		def += " NOT NULL"
	}
	return def, nil
}

// DropTableSQL renders the DROP TABLE statement of the named table.
func DropTableSQL(v *visitors.Visitor, name string) string {
	return "DROP TABLE " + v.QuoteTableName(name)
}

// CreateIfMissing creates t unless the database already lists it. It
// reports whether the table was created. Existing tables are not altered.
func CreateIfMissing(ctx context.Context, drv dialect.Driver, t *Table, opts ...CreateOption) (bool, error) {
	tables, err := drv.Tables(ctx)
	if err != nil {
		return false, fmt.Errorf("schema: list tables: %w", err)
	}
	if slices.Contains(tables, t.Name) {
		return false, nil
	}
	query, err := CreateTableSQL(visitors.For(drv.Dialect()), t, opts...)
	if err != nil {
		return false, err
	}
	// DDL statements run through the exec path of the driver.
	if _, err := drv.Update(ctx, query); err != nil {
		return false, fmt.Errorf("schema: create table %s: %w", t.Name, err)
	}
	return true, nil
}

// Drop drops the named table.
func Drop(ctx context.Context, drv dialect.Driver, name string) error {
	if _, err := drv.Update(ctx, DropTableSQL(visitors.For(drv.Dialect()), name)); err != nil {
		return fmt.Errorf("schema: drop table %s: %w", name, err)
	}
	return nil
}
