// Package mixin provides reusable column sets for schema tables.
//
// A mixin contributes columns to a table in the order it is listed:
//
//	users := schema.NewTable("users",
//	    schema.String("name").NotNull(),
//	).Mix(mixin.ID{}, mixin.Time{})
//
// Columns already defined by the table are not replaced.
package mixin
