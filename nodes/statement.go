package nodes

// JoinSource is the FROM source of a select core plus its joins.
type JoinSource struct {
	Left  Node
	Right []Node
}

func (*JoinSource) Kind() Kind { return KindJoinSource }
func (*JoinSource) node()      {}

// SelectCore holds the SELECT ... FROM ... WHERE ... GROUP BY ... HAVING part
// of a select statement.
type SelectCore struct {
	Source      *JoinSource
	Projections []Node
	Wheres      []Node
	Groups      []Node
	Having      Node
}

// NewSelectCore returns an empty select core.
func NewSelectCore() *SelectCore {
	return &SelectCore{Source: &JoinSource{}}
}

func (*SelectCore) Kind() Kind { return KindSelectCore }
func (*SelectCore) node()      {}

// Clone returns a copy of the core with its own clause lists.
func (c *SelectCore) Clone() *SelectCore {
	return &SelectCore{
		Source: &JoinSource{
			Left:  c.Source.Left,
			Right: append([]Node(nil), c.Source.Right...),
		},
		Projections: append([]Node(nil), c.Projections...),
		Wheres:      append([]Node(nil), c.Wheres...),
		Groups:      append([]Node(nil), c.Groups...),
		Having:      c.Having,
	}
}

// SelectStatement is the root of a SELECT query.
type SelectStatement struct {
	Core   *SelectCore
	Orders []Node
	Limit  *Unary
	Offset *Unary
	Lock   *Unary
}

// NewSelectStatement returns an empty select statement.
func NewSelectStatement() *SelectStatement {
	return &SelectStatement{Core: NewSelectCore()}
}

func (*SelectStatement) Kind() Kind { return KindSelectStatement }
func (*SelectStatement) node()      {}

// Clone returns a deep copy of the statement clause lists. Expression
// nodes are shared.
func (s *SelectStatement) Clone() *SelectStatement {
	return &SelectStatement{
		Core:   s.Core.Clone(),
		Orders: append([]Node(nil), s.Orders...),
		Limit:  s.Limit,
		Offset: s.Offset,
		Lock:   s.Lock,
	}
}

// Values is the VALUES list of an insert. Columns, when present, are used
// as quoting hints for the matching expressions.
type Values struct {
	Exprs   []any
	Columns []*Attribute
}

// NewValues returns a VALUES node.
func NewValues(exprs []any, columns []*Attribute) *Values {
	return &Values{Exprs: exprs, Columns: columns}
}

func (*Values) Kind() Kind { return KindValues }
func (*Values) node()      {}

// InsertStatement is the root of an INSERT statement. Values is a *Values
// node or a raw SqlLiteral body.
type InsertStatement struct {
	Relation Node
	Columns  []*Attribute
	Values   Node
}

func (*InsertStatement) Kind() Kind { return KindInsertStatement }
func (*InsertStatement) node()      {}

// UpdateStatement is the root of an UPDATE statement. Key names the column
// used when ORDER BY or LIMIT must be rewritten into a sub-select.
type UpdateStatement struct {
	Relation Node
	Wheres   []Node
	Values   []Node
	Orders   []Node
	Limit    *Unary
	Key      Node
}

func (*UpdateStatement) Kind() Kind { return KindUpdateStatement }
func (*UpdateStatement) node()      {}

// DeleteStatement is the root of a DELETE statement.
type DeleteStatement struct {
	Relation Node
	Wheres   []Node
}

func (*DeleteStatement) Kind() Kind { return KindDeleteStatement }
func (*DeleteStatement) node()      {}
