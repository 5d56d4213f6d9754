package relation

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/syssam/mapper"
	"github.com/syssam/mapper/nodes"
)

// Scope refines a relation. Scopes are applied by Extending.
type Scope func(*Relation) *Relation

// Where returns a relation with the condition added. All conditions are
// joined with AND.
//
// Map keys name columns, optionally followed by an operator suffix such as
// "_gt" or "_in". Without a Model.Schema a column whose name ends like a
// suffix, e.g. "logged_in", is read as the suffix; with a schema, columns
// it lists are matched first.
//
// The "?" of a raw string given without arguments are filled by Bind.
func (r *Relation) Where(cond any, args ...any) *Relation {
	c := r.Clone()
	n, err := r.condition(cond, args)
	if err != nil {
		return c.addErr(err)
	}
	if n == nil {
		return c
	}
	c.wheres = append(c.wheres, n)
	if lit, ok := n.(*nodes.SqlLiteral); ok && len(args) == 0 && strings.Contains(lit.Value, "?") {
		if _, raw := cond.(string); raw {
			c.unbound = append(c.unbound, lit)
		}
	}
	return c
}

// Having returns a relation with the HAVING condition added. Conditions
// take the same forms as in Where.
func (r *Relation) Having(cond any, args ...any) *Relation {
	c := r.Clone()
	n, err := r.condition(cond, args)
	if err != nil {
		return c.addErr(err)
	}
	if n != nil {
		c.havings = append(c.havings, n)
	}
	return c
}

// Select returns a relation projecting the given columns in addition to
// the ones already selected. Plain column names are qualified with the
// table; other strings are used as raw SQL.
func (r *Relation) Select(columns ...any) *Relation {
	c := r.Clone()
	for _, col := range flatten(columns) {
		n, err := r.column(col)
		if err != nil {
			c.addErr(err)
			continue
		}
		if n != nil {
			c.selects = append(c.selects, n)
		}
	}
	return c
}

// Group returns a relation with the GROUP BY items added. Strings are used
// as raw SQL.
func (r *Relation) Group(columns ...any) *Relation {
	c := r.Clone()
	c.groups = append(c.groups, literals(columns)...)
	return c
}

// Order returns a relation with the ORDER BY items added. Strings are used
// as raw SQL.
func (r *Relation) Order(orders ...any) *Relation {
	c := r.Clone()
	c.orders = append(c.orders, literals(orders)...)
	return c
}

// Joins returns a relation with the joins added. Strings are used as raw
// join clauses; tables and aliases are joined with INNER JOIN, and join
// nodes are used as they are.
func (r *Relation) Joins(joins ...any) *Relation {
	c := r.Clone()
	for _, j := range flatten(joins) {
		if j != nil {
			c.joins = append(c.joins, j)
		}
	}
	return c
}

// Limit returns a relation with the LIMIT set. See sanitizeLimit for the
// accepted values; others are recorded as an error.
func (r *Relation) Limit(limit any) *Relation {
	c := r.Clone()
	l, err := sanitizeLimit(limit)
	if err != nil {
		return c.addErr(err)
	}
	c.limit = l
	return c
}

// Offset returns a relation with the OFFSET set.
func (r *Relation) Offset(offset any) *Relation {
	c := r.Clone()
	o, err := sanitizeOffset(offset)
	if err != nil {
		return c.addErr(err)
	}
	c.offset = o
	return c
}

// Lock returns a relation selecting rows with the row lock of the
// dialect.
func (r *Relation) Lock(lock ...bool) *Relation {
	c := r.Clone()
	c.lock = len(lock) == 0 || lock[0]
	return c
}

// From returns a relation selecting from source instead of the model's
// table. Strings are used as raw SQL.
func (r *Relation) From(source any) *Relation {
	c := r.Clone()
	c.from = source
	return c
}

// Readonly returns a relation on which mutations fail with ErrReadonly.
func (r *Relation) Readonly(readonly ...bool) *Relation {
	c := r.Clone()
	c.readonly = len(readonly) == 0 || readonly[0]
	return c
}

// IsReadonly reports whether the relation is readonly.
func (r *Relation) IsReadonly() bool { return r.readonly }

// CreateWith returns a relation whose inserts default to the given values.
// A nil map resets them.
func (r *Relation) CreateWith(values map[string]any) *Relation {
	c := r.Clone()
	if values == nil {
		c.createWith = nil
		return c
	}
	merged := maps.Clone(c.createWith)
	if merged == nil {
		merged = make(map[string]any, len(values))
	}
	maps.Copy(merged, values)
	c.createWith = merged
	return c
}

// Includes records the names of associations to preload. Loading
// associations is left to the record mapper.
func (r *Relation) Includes(names ...string) *Relation {
	c := r.Clone()
	c.includes = append(c.includes, names...)
	return c
}

// IncludesValues returns the names recorded by Includes.
func (r *Relation) IncludesValues() []string { return r.includes }

// Extending returns the relation refined by the given scopes, in order.
func (r *Relation) Extending(scopes ...Scope) *Relation {
	c := r.Clone()
	for _, s := range scopes {
		if s != nil {
			c = s(c)
		}
	}
	return c
}

// Bind returns a relation with values bound, in order, to the "?"
// placeholders of the raw string conditions given to Where without
// arguments.
func (r *Relation) Bind(values ...any) *Relation {
	c := r.Clone()
	c.binds = append(c.binds, values...)
	return c
}

// bindWheres returns the where conditions with the bind values applied.
// Every placeholder of an unbound raw condition needs a value.
func (r *Relation) bindWheres() ([]nodes.Node, error) {
	if len(r.unbound) == 0 && len(r.binds) == 0 {
		return r.wheres, nil
	}
	binds := r.binds
	wheres := make([]nodes.Node, len(r.wheres))
	for i, w := range r.wheres {
		wheres[i] = w
		lit, ok := w.(*nodes.SqlLiteral)
		if !ok || !slices.Contains(r.unbound, lit) {
			continue
		}
		n := strings.Count(lit.Value, "?")
		if n > len(binds) {
			return nil, mapper.NewBindCountError(lit.Value, len(binds), n)
		}
		s, err := r.replaceBindVariables(lit.Value, binds[:n])
		if err != nil {
			return nil, err
		}
		wheres[i] = nodes.SQL(s)
		binds = binds[n:]
	}
	if len(binds) > 0 {
		return nil, fmt.Errorf("relation: %d unused bind values", len(binds))
	}
	return wheres, nil
}

// Except returns a relation with the named clauses reset, keeping all
// others.
func (r *Relation) Except(clauses ...string) *Relation {
	c := r.Clone()
	for _, name := range clauses {
		switch name {
		case ClauseSelect:
			c.selects = nil
		case ClauseGroup:
			c.groups = nil
		case ClauseOrder:
			c.orders = nil
		case ClauseJoins:
			c.joins = nil
		case ClauseWhere:
			c.wheres, c.unbound = nil, nil
		case ClauseHaving:
			c.havings = nil
		case ClauseBind:
			c.binds = nil
		case ClauseIncludes:
			c.includes = nil
		case ClauseLimit:
			c.limit = nil
		case ClauseOffset:
			c.offset = nil
		case ClauseLock:
			c.lock = false
		case ClauseReadonly:
			c.readonly = false
		case ClauseCreateWith:
			c.createWith = nil
		case ClauseFrom:
			c.from = nil
		}
	}
	return c
}

var directionRe = regexp.MustCompile(`(?i)\s(asc|desc)$`)

// ReverseOrder returns a relation with every ORDER BY item reversed.
// Without an order, rows are ordered by the primary key descending.
// Raw SQL items are reversed per comma separated fragment; a fragment
// without a direction is sorted descending.
func (r *Relation) ReverseOrder() *Relation {
	if len(r.orders) == 0 {
		return r.Order(r.table.Column(r.model.PrimaryKeyName()).Desc())
	}
	reversed := make([]any, 0, len(r.orders))
	for _, o := range r.orders {
		switch o := o.(type) {
		case *nodes.Ordering:
			reversed = append(reversed, o.Reverse())
		case *nodes.SqlLiteral:
			reversed = append(reversed, nodes.SQL(reverseSQLOrder(o.Value)))
		default:
			reversed = append(reversed, nodes.NewOrdering(o, nodes.Descending))
		}
	}
	return r.Except(ClauseOrder).Order(reversed...)
}

func reverseSQLOrder(order string) string {
	fragments := strings.Split(order, ",")
	for i, f := range fragments {
		f = strings.TrimSpace(f)
		if m := directionRe.FindStringSubmatch(f); m != nil {
			dir := " ASC"
			if strings.EqualFold(m[1], "asc") {
				dir = " DESC"
			}
			f = f[:len(f)-len(m[0])] + dir
		} else {
			f += " DESC"
		}
		fragments[i] = f
	}
	return strings.Join(fragments, ", ")
}

// Options are finder options applied by ApplyFinderOptions.
type Options map[string]any

// finderKeys are the options dispatched to the method of the same name,
// in the order they are applied.
var finderKeys = []string{"joins", "select", "group", "order", "having", "limit", "offset", "from", "lock", "readonly"}

// ApplyFinderOptions returns the relation refined by the recognized
// options: joins, select, group, order, having, limit, offset, from, lock,
// readonly, conditions, include and extend. Other keys are ignored.
func (r *Relation) ApplyFinderOptions(opts Options) *Relation {
	c := r.Clone()
	if len(opts) == 0 {
		return c
	}
	for _, key := range finderKeys {
		v, ok := opts[key]
		if !ok {
			continue
		}
		switch key {
		case "joins":
			c = c.Joins(v)
		case "select":
			c = c.Select(v)
		case "group":
			c = c.Group(v)
		case "order":
			c = c.Order(v)
		case "having":
			c = c.Having(v)
		case "limit":
			c = c.Limit(v)
		case "offset":
			c = c.Offset(v)
		case "from":
			c = c.From(v)
		case "lock":
			c = c.Lock(truthy(v))
		case "readonly":
			c = c.Readonly(truthy(v))
		}
	}
	if v, ok := opts["conditions"]; ok {
		c = c.Where(v)
	}
	if v, ok := opts["include"]; ok {
		c = c.Includes(stringList(v)...)
	}
	if v, ok := opts["extend"]; ok {
		switch s := v.(type) {
		case Scope:
			c = c.Extending(s)
		case func(*Relation) *Relation:
			c = c.Extending(s)
		case []Scope:
			c = c.Extending(s...)
		}
	}
	return c
}

// WhereValuesHash returns the values of the equality conditions on the
// columns of the model's table.
func (r *Relation) WhereValuesHash() map[string]any {
	values := make(map[string]any)
	var walk func(n nodes.Node)
	walk = func(n nodes.Node) {
		switch n := n.(type) {
		case *nodes.Binary:
			if n.Kind() != nodes.KindEquality {
				return
			}
			if a, ok := n.Left.(*nodes.Attribute); ok && a.RelationName() == r.table.RefName() {
				values[a.Name] = n.Right
			}
		case *nodes.Nary:
			if n.Kind() == nodes.KindAnd {
				for _, child := range n.Children {
					walk(child)
				}
			}
		case *nodes.Unary:
			if n.Kind() == nodes.KindGrouping {
				if child, ok := n.Expr.(nodes.Node); ok {
					walk(child)
				}
			}
		}
	}
	for _, w := range r.wheres {
		walk(w)
	}
	return values
}

// ScopeForCreate returns the values new records of the relation default
// to: the where values merged with CreateWith.
func (r *Relation) ScopeForCreate() map[string]any {
	values := r.WhereValuesHash()
	maps.Copy(values, r.createWith)
	return values
}

func flatten(values []any) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		switch l := v.(type) {
		case []any:
			out = append(out, flatten(l)...)
		case []string:
			for _, s := range l {
				out = append(out, s)
			}
		case []nodes.Node:
			for _, n := range l {
				out = append(out, n)
			}
		default:
			out = append(out, v)
		}
	}
	return out
}

func literals(values []any) []nodes.Node {
	out := make([]nodes.Node, 0, len(values))
	for _, v := range flatten(values) {
		switch x := v.(type) {
		case string:
			if x != "" {
				out = append(out, nodes.SQL(x))
			}
		case nodes.Node:
			out = append(out, x)
		case nodes.TableSource:
			out = append(out, x.TableNode())
		}
	}
	return out
}

func truthy(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return b != "" && !strings.EqualFold(b, "false")
	case nil:
		return false
	}
	return true
}

func stringList(v any) []string {
	switch s := v.(type) {
	case string:
		return []string{s}
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, x := range s {
			out = append(out, fmt.Sprint(x))
		}
		return out
	}
	return nil
}
