package schema

import (
	"fmt"
	"strconv"

	"github.com/syssam/mapper/dialect"
)

// nativeType is the native name of a logical type and its default length.
type nativeType struct {
	name  string
	limit int
}

// nativeTypes maps dialect names to their native column types. The ""
// entry is used for the generic and postgres dialects.
var nativeTypes = map[string]map[Type]nativeType{
	dialect.SQLite: {
		TypePrimaryKey: {name: "INTEGER PRIMARY KEY AUTOINCREMENT NOT NULL"},
		TypeForeignKey: {name: "integer"},
		TypeString:     {name: "varchar", limit: 255},
		TypeText:       {name: "text"},
		TypeInteger:    {name: "integer"},
		TypeFloat:      {name: "float"},
		TypeDecimal:    {name: "decimal"},
		TypeDatetime:   {name: "datetime"},
		TypeTime:       {name: "time"},
		TypeDate:       {name: "date"},
		TypeBinary:     {name: "blob"},
		TypeBoolean:    {name: "boolean"},
	},
	dialect.MySQL: {
		TypePrimaryKey: {name: "int(11) DEFAULT NULL auto_increment PRIMARY KEY"},
		TypeForeignKey: {name: "int(11)"},
		TypeString:     {name: "varchar", limit: 255},
		TypeText:       {name: "text"},
		TypeInteger:    {name: "int", limit: 4},
		TypeFloat:      {name: "float"},
		TypeDecimal:    {name: "decimal"},
		TypeDatetime:   {name: "datetime"},
		TypeTime:       {name: "time"},
		TypeDate:       {name: "date"},
		TypeBinary:     {name: "blob"},
		TypeBoolean:    {name: "tinyint", limit: 1},
	},
	"": {
		TypePrimaryKey: {name: "serial PRIMARY KEY"},
		TypeForeignKey: {name: "integer"},
		TypeString:     {name: "varchar", limit: 255},
		TypeText:       {name: "text"},
		TypeInteger:    {name: "integer"},
		TypeFloat:      {name: "float"},
		TypeDecimal:    {name: "decimal"},
		TypeDatetime:   {name: "timestamp"},
		TypeTime:       {name: "time"},
		TypeDate:       {name: "date"},
		TypeBinary:     {name: "bytea"},
		TypeBoolean:    {name: "boolean"},
	},
}

func typesFor(name string) map[Type]nativeType {
	if m, ok := nativeTypes[dialect.Normalize(name)]; ok {
		return m
	}
	return nativeTypes[""]
}

// TypeSQL returns the native type of c in the named dialect. Unknown
// logical types are returned as written. A decimal with a scale but no
// precision is an error.
func TypeSQL(dialectName string, c *Column) (string, error) {
	nat, ok := typesFor(dialectName)[c.Type]
	if !ok {
		return string(c.Type), nil
	}
	switch c.Type {
	case TypePrimaryKey:
		return nat.name, nil
	case TypeDecimal:
		switch {
		case c.Precision > 0 && c.Scale > 0:
			return nat.name + "(" + strconv.Itoa(c.Precision) + "," + strconv.Itoa(c.Scale) + ")", nil
		case c.Precision > 0:
			return nat.name + "(" + strconv.Itoa(c.Precision) + ")", nil
		case c.Scale > 0:
			return "", &ColumnError{Column: c.Name, Err: ErrDecimalScale}
		}
		return nat.name, nil
	}
	limit := c.Size
	if limit == 0 {
		limit = nat.limit
	}
	if limit > 0 {
		return fmt.Sprintf("%s(%d)", nat.name, limit), nil
	}
	return nat.name, nil
}
