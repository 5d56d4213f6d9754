package relation

import (
	"github.com/go-openapi/inflect"

	"github.com/syssam/mapper/dialect"
	"github.com/syssam/mapper/schema"
)

// RowMapper converts a result row into a record.
type RowMapper func(dialect.Row) (any, error)

// Model describes the table a relation queries.
type Model struct {
	// Name is the model name, e.g. "BlogPost".
	Name string
	// Table overrides the table name. It defaults to the pluralized
	// snake case form of Name.
	Table string
	// PrimaryKey overrides the primary key column. It defaults to the
	// primary key of Schema, or "id".
	PrimaryKey string
	// Schema, if set, is used to validate column names and to quote
	// values according to the column types.
	Schema *schema.Table
	// Mapper converts rows into records. Rows are returned as they are
	// when it is nil.
	Mapper RowMapper
}

// TableName returns the name of the model's table.
func (m *Model) TableName() string {
	switch {
	case m.Table != "":
		return m.Table
	case m.Schema != nil && m.Schema.Name != "":
		return m.Schema.Name
	}
	return inflect.Pluralize(inflect.Underscore(m.Name))
}

// PrimaryKeyName returns the name of the primary key column.
func (m *Model) PrimaryKeyName() string {
	switch {
	case m.PrimaryKey != "":
		return m.PrimaryKey
	case m.Schema != nil && m.Schema.PrimaryKey != "":
		return m.Schema.PrimaryKey
	}
	return "id"
}

// Label returns the name used in errors.
func (m *Model) Label() string {
	if m.Name != "" {
		return m.Name
	}
	return m.TableName()
}

func (m *Model) mapRow(row dialect.Row) (any, error) {
	if m.Mapper == nil {
		return row, nil
	}
	return m.Mapper(row)
}
