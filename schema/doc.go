// Package schema describes the columns of mapped tables and renders the
// CREATE TABLE statements for them.
//
// Columns are declared with builders, one per logical type:
//
//	users := schema.NewTable("users",
//	    schema.PrimaryKey("id"),
//	    schema.String("email").Size(190).NotNull(),
//	    schema.Integer("age").Default(0),
//	    schema.Decimal("balance").Precision(10).Scale(2),
//	    schema.Datetime("created_at"),
//	)
//
// The logical types map to native types per dialect; see TypeSQL.
// CreateIfMissing creates a table when the connected database does not
// list it yet. Existing tables are never altered.
//
// A Column satisfies visitors.ColumnHint, so values written to it are
// quoted according to its type.
package schema
