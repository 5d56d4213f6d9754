package nodes

// Kind identifies the concrete variant of a node.
type Kind uint8

// Node kinds.
const (
	KindSqlLiteral Kind = iota
	KindTable
	KindTableAlias
	KindAttribute
	KindQuoted

	KindGrouping
	KindNot
	KindLimit
	KindOffset
	KindHaving
	KindOn
	KindGroup
	KindUnqualifiedColumn
	KindLock

	KindCount
	KindSum
	KindMax
	KindMin
	KindAvg
	KindExists
	KindNamedFunction

	KindEquality
	KindNotEqual
	KindGreaterThan
	KindGreaterThanOrEqual
	KindLessThan
	KindLessThanOrEqual
	KindMatches
	KindDoesNotMatch
	KindIn
	KindNotIn
	KindBetween
	KindAssignment
	KindAs
	KindInnerJoin
	KindOuterJoin
	KindStringJoin

	KindOrdering
	KindAnd
	KindOr
	KindValues
	KindJoinSource

	KindSelectStatement
	KindSelectCore
	KindInsertStatement
	KindUpdateStatement
	KindDeleteStatement
)

var kindNames = [...]string{
	KindSqlLiteral:         "SqlLiteral",
	KindTable:              "Table",
	KindTableAlias:         "TableAlias",
	KindAttribute:          "Attribute",
	KindQuoted:             "Quoted",
	KindGrouping:           "Grouping",
	KindNot:                "Not",
	KindLimit:              "Limit",
	KindOffset:             "Offset",
	KindHaving:             "Having",
	KindOn:                 "On",
	KindGroup:              "Group",
	KindUnqualifiedColumn:  "UnqualifiedColumn",
	KindLock:               "Lock",
	KindCount:              "Count",
	KindSum:                "Sum",
	KindMax:                "Max",
	KindMin:                "Min",
	KindAvg:                "Avg",
	KindExists:             "Exists",
	KindNamedFunction:      "NamedFunction",
	KindEquality:           "Equality",
	KindNotEqual:           "NotEqual",
	KindGreaterThan:        "GreaterThan",
	KindGreaterThanOrEqual: "GreaterThanOrEqual",
	KindLessThan:           "LessThan",
	KindLessThanOrEqual:    "LessThanOrEqual",
	KindMatches:            "Matches",
	KindDoesNotMatch:       "DoesNotMatch",
	KindIn:                 "In",
	KindNotIn:              "NotIn",
	KindBetween:            "Between",
	KindAssignment:         "Assignment",
	KindAs:                 "As",
	KindInnerJoin:          "InnerJoin",
	KindOuterJoin:          "OuterJoin",
	KindStringJoin:         "StringJoin",
	KindOrdering:           "Ordering",
	KindAnd:                "And",
	KindOr:                 "Or",
	KindValues:             "Values",
	KindJoinSource:         "JoinSource",
	KindSelectStatement:    "SelectStatement",
	KindSelectCore:         "SelectCore",
	KindInsertStatement:    "InsertStatement",
	KindUpdateStatement:    "UpdateStatement",
	KindDeleteStatement:    "DeleteStatement",
}

// String returns the variant name of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// Node is implemented by every AST node. The set of implementations is
// closed: only types of this package (and types embedding them) are nodes.
type Node interface {
	Kind() Kind
	node()
}

// TableSource is implemented by values that wrap a table node, such as
// query.Table.
type TableSource interface {
	TableNode() *Table
}

// Unwrap returns the table node of a TableSource and v otherwise.
func Unwrap(v any) any {
	if ts, ok := v.(TableSource); ok {
		return ts.TableNode()
	}
	return v
}

// Subquery is implemented by managers that own a select statement.
type Subquery interface {
	AST() *SelectStatement
}

// IsSelect reports whether v is a complete select query.
func IsSelect(v any) bool {
	switch v.(type) {
	case *SelectStatement, Subquery:
		return true
	}
	return false
}
