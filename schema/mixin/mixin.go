package mixin

import "github.com/syssam/mapper/schema"

// Schema is the zero mixin. Embed it in custom mixins that only need to
// override Columns.
//
// Example:
//
//	type Audit struct {
//	    mixin.Schema
//	}
//
//	func (Audit) Columns() []schema.Definer {
//	    return []schema.Definer{
//	        schema.String("created_by"),
//	        schema.String("updated_by"),
//	    }
//	}
type Schema struct{}

// Columns returns no columns.
func (Schema) Columns() []schema.Definer { return nil }

var _ schema.Mixin = Schema{}

// ID adds the "id" primary key.
type ID struct{ Schema }

// Columns implements schema.Mixin.
func (ID) Columns() []schema.Definer {
	return []schema.Definer{schema.PrimaryKey("id")}
}

// Time adds the created_at and updated_at timestamps.
type Time struct{ Schema }

// Columns implements schema.Mixin.
func (Time) Columns() []schema.Definer {
	return []schema.Definer{
		schema.Datetime("created_at"),
		schema.Datetime("updated_at"),
	}
}

// SoftDelete adds the nullable deleted_at timestamp.
type SoftDelete struct{ Schema }

// Columns implements schema.Mixin.
func (SoftDelete) Columns() []schema.Definer {
	return []schema.Definer{schema.Datetime("deleted_at")}
}

// TenantID adds a required tenant_id column.
type TenantID struct{ Schema }

// Columns implements schema.Mixin.
func (TenantID) Columns() []schema.Definer {
	return []schema.Definer{schema.String("tenant_id").Size(64).NotNull()}
}

// TimeSoftDelete combines Time and SoftDelete.
type TimeSoftDelete struct{ Schema }

// Columns implements schema.Mixin.
func (TimeSoftDelete) Columns() []schema.Definer {
	return append(Time{}.Columns(), SoftDelete{}.Columns()...)
}
