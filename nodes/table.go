package nodes

// Table names a database table, optionally with an alias rendered after
// the table name.
type Table struct {
	Name       string
	TableAlias string
}

// NewTable returns a table node. An alias equal to the table name is
// ignored.
func NewTable(name string, alias ...string) *Table {
	t := &Table{Name: name}
	if len(alias) > 0 && alias[0] != name {
		t.TableAlias = alias[0]
	}
	return t
}

func (*Table) Kind() Kind { return KindTable }
func (*Table) node()      {}

// TableNode implements TableSource.
func (t *Table) TableNode() *Table { return t }

// Column returns an attribute of the table.
func (t *Table) Column(name string) *Attribute { return NewAttribute(t, name) }

// Star returns the "table".* attribute.
func (t *Table) Star() *Attribute { return NewAttribute(t, "*") }

// Alias returns an alias node over the table.
func (t *Table) Alias(name string) *TableAlias { return NewTableAlias(name, t) }

// RefName is the name used to qualify columns of the table.
func (t *Table) RefName() string {
	if t.TableAlias != "" {
		return t.TableAlias
	}
	return t.Name
}

// TableAlias renders a relation followed by its alias name.
type TableAlias struct {
	Name     string
	Relation Node
}

// NewTableAlias returns relation aliased as name.
func NewTableAlias(name string, relation Node) *TableAlias {
	return &TableAlias{Name: name, Relation: relation}
}

func (*TableAlias) Kind() Kind { return KindTableAlias }
func (*TableAlias) node()      {}

// Column returns an attribute qualified by the alias name.
func (a *TableAlias) Column(name string) *Attribute { return NewAttribute(a, name) }

// Attribute references a column of a table or table alias.
type Attribute struct {
	Predications
	Relation Node
	Name     string
	// Type is an optional column type used as a quoting hint,
	// e.g. "integer" or "boolean".
	Type string
}

// NewAttribute returns the column name of relation.
func NewAttribute(relation Node, name string) *Attribute {
	a := &Attribute{Relation: relation, Name: name}
	a.self = a
	return a
}

func (*Attribute) Kind() Kind { return KindAttribute }
func (*Attribute) node()      {}

// Typed returns a copy of the attribute carrying a column type hint.
func (a *Attribute) Typed(typ string) *Attribute {
	c := NewAttribute(a.Relation, a.Name)
	c.Type = typ
	return c
}

// ColumnType implements the column hint used when quoting values.
func (a *Attribute) ColumnType() string { return a.Type }

// RelationName returns the name qualifying the attribute.
func (a *Attribute) RelationName() string {
	switch r := a.Relation.(type) {
	case *Table:
		return r.RefName()
	case *TableAlias:
		return r.Name
	}
	return ""
}
