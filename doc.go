// Package mapper holds the types shared by the query engine packages:
// the error taxonomy, the result cache interface, the per-query context
// attached by the relation layer and the policy hook evaluated against it.
//
// The engine itself is split into packages:
//
//	nodes      the SQL syntax tree and its expression builders
//	visitors   dialect-aware rendering of trees to SQL text
//	query      the select, insert, update and delete managers
//	relation   chainable, copy-on-write queries bound to a model
//	dialect    driver interfaces and the database/sql adapter
//	schema     column types and CREATE TABLE rendering
//	config     YAML connection settings
//	privacy    allow/deny rules for relation statements
//
// contrib/dataloader batches lookups by key into single queries.
package mapper
