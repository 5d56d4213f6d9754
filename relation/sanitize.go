package relation

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/syssam/mapper"
	"github.com/syssam/mapper/nodes"
)

var (
	suffixRe = regexp.MustCompile(`^(.+)_(eq|not|neq|noteq|notEq|gt|gte|gteq|gtEq|lt|lte|lteq|ltEq|like|nlike|notlike|notLike|in|nin|notin|notIn)$`)
	namedRe  = regexp.MustCompile(`(:?):([a-zA-Z]\w*)`)
	identRe  = regexp.MustCompile(`^\w+$`)
	dottedRe = regexp.MustCompile(`^(\w+)\.(\w+)$`)
)

// condition converts a where or having argument into a node. A nil node
// with a nil error means there is no condition.
func (r *Relation) condition(cond any, args []any) (nodes.Node, error) {
	switch c := cond.(type) {
	case nil:
		return nil, nil
	case string:
		if c == "" {
			return nil, nil
		}
		if len(args) == 0 {
			return nodes.SQL(c), nil
		}
		return r.sanitizeArray(c, args)
	case []any:
		if len(c) == 0 {
			return nil, nil
		}
		stmt, ok := c[0].(string)
		if !ok {
			return nil, fmt.Errorf("relation: condition array must start with a string, got %T", c[0])
		}
		return r.sanitizeArray(stmt, append(c[1:len(c):len(c)], args...))
	case map[string]any:
		return r.hashCondition(c)
	case nodes.Node:
		return c, nil
	}
	return nil, fmt.Errorf("relation: unsupported condition %T", cond)
}

// sanitizeArray binds values into the placeholders of stmt. A single map
// argument binds ":name" placeholders; otherwise values bind "?"
// placeholders in order.
func (r *Relation) sanitizeArray(stmt string, values []any) (nodes.Node, error) {
	if len(values) == 1 {
		if named, ok := values[0].(map[string]any); ok && namedRe.MatchString(stmt) {
			s, err := r.replaceNamedBindVariables(stmt, named)
			if err != nil {
				return nil, err
			}
			return nodes.SQL(s), nil
		}
	}
	if !strings.Contains(stmt, "?") && len(values) == 0 {
		return nodes.SQL(stmt), nil
	}
	s, err := r.replaceBindVariables(stmt, values)
	if err != nil {
		return nil, err
	}
	return nodes.SQL(s), nil
}

// replaceBindVariables substitutes each "?" of stmt with the next value,
// quoted by the dialect.
func (r *Relation) replaceBindVariables(stmt string, values []any) (string, error) {
	if want := strings.Count(stmt, "?"); want != len(values) {
		return "", mapper.NewBindCountError(stmt, len(values), want)
	}
	v := r.visitor()
	var b strings.Builder
	parts := strings.Split(stmt, "?")
	for i, part := range parts {
		b.WriteString(part)
		if i < len(values) {
			lit, err := v.Literal(values[i], nil)
			if err != nil {
				return "", err
			}
			b.WriteString(lit)
		}
	}
	return b.String(), nil
}

// replaceNamedBindVariables substitutes each ":name" of stmt with the
// quoted value of name. "::" casts are left as they are.
func (r *Relation) replaceNamedBindVariables(stmt string, binds map[string]any) (string, error) {
	v := r.visitor()
	var (
		missing string
		qerr    error
	)
	s := namedRe.ReplaceAllStringFunc(stmt, func(m string) string {
		sub := namedRe.FindStringSubmatch(m)
		if sub[1] == ":" {
			return m
		}
		value, ok := binds[sub[2]]
		if !ok {
			if missing == "" {
				missing = sub[2]
			}
			return m
		}
		lit, err := v.Literal(value, nil)
		if err != nil && qerr == nil {
			qerr = err
		}
		return lit
	})
	if missing != "" {
		return "", mapper.NewMissingBindError(stmt, missing)
	}
	if qerr != nil {
		return "", qerr
	}
	return s, nil
}

// hashCondition builds the conjunction of the map entries. Keys are
// visited in sorted order.
func (r *Relation) hashCondition(attrs map[string]any) (nodes.Node, error) {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	children := make([]nodes.Node, 0, len(keys))
	for _, k := range keys {
		n, err := r.attributeCondition(k, attrs[k])
		if err != nil {
			return nil, err
		}
		children = append(children, n)
	}
	switch len(children) {
	case 0:
		return nil, nil
	case 1:
		return children[0], nil
	}
	return nodes.NewAnd(children...), nil
}

func (r *Relation) attributeCondition(key string, value any) (nodes.Node, error) {
	op := ""
	if m := suffixRe.FindStringSubmatch(key); m != nil {
		if _, err := r.attribute(key); err != nil || r.model.Schema == nil {
			key, op = m[1], m[2]
		}
	}
	attr, err := r.attribute(key)
	if err != nil {
		return nil, err
	}
	switch op {
	case "":
		if isList(value) {
			return attr.In(value), nil
		}
		return attr.Eq(value), nil
	case "eq":
		return attr.Eq(value), nil
	case "not", "neq", "noteq", "notEq":
		return attr.NotEq(value), nil
	case "gt":
		return attr.Gt(value), nil
	case "gte", "gteq", "gtEq":
		return attr.Gteq(value), nil
	case "lt":
		return attr.Lt(value), nil
	case "lte", "lteq", "ltEq":
		return attr.Lteq(value), nil
	case "like":
		return attr.Matches(value), nil
	case "nlike", "notlike", "notLike":
		return attr.DoesNotMatch(value), nil
	case "in":
		return attr.In(value), nil
	default:
		return attr.NotIn(value), nil
	}
}

// attribute returns the attribute of the named column. Names of the form
// "table.column" reference other tables. Columns of the model are typed
// and validated against its schema, when it has one.
func (r *Relation) attribute(name string) (*nodes.Attribute, error) {
	if m := dottedRe.FindStringSubmatch(name); m != nil && m[1] != r.table.Name {
		return nodes.NewTable(m[1]).Column(m[2]), nil
	} else if m != nil {
		name = m[2]
	}
	attr := r.table.Column(name)
	if r.model.Schema == nil {
		return attr, nil
	}
	c, err := r.model.Schema.Lookup(name)
	if err != nil {
		return nil, err
	}
	if typ := c.ColumnType(); typ != "" {
		attr = attr.Typed(typ)
	}
	return attr, nil
}

// column converts a select, group or calculation argument into a node.
// Plain identifiers become attributes, other strings raw SQL.
func (r *Relation) column(v any) (nodes.Node, error) {
	switch c := v.(type) {
	case string:
		switch {
		case c == "" || c == "*" || c == "all":
			return nodes.SQL("*"), nil
		case identRe.MatchString(c), dottedRe.MatchString(c):
			return r.attribute(c)
		}
		return nodes.SQL(c), nil
	case nodes.Node:
		return c, nil
	case nil:
		return nil, nil
	}
	return nil, fmt.Errorf("relation: unsupported column %T", v)
}

func isList(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		return rv.Type().Elem().Kind() != reflect.Uint8
	case reflect.Array:
		return true
	}
	return false
}

// sanitizeLimit returns integers and SQL literals as they are, and
// parses the leading integer of other values. A string holding a comma
// separated list keeps its integer items.
func sanitizeLimit(limit any) (any, error) {
	switch l := limit.(type) {
	case nil:
		return nil, nil
	case int:
		return l, nil
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return l, nil
	case *nodes.SqlLiteral:
		return l, nil
	case float32:
		return integralFloat(limit, float64(l))
	case float64:
		return integralFloat(limit, l)
	}
	s := fmt.Sprint(limit)
	if strings.Contains(s, ",") {
		var items []string
		for _, part := range strings.Split(s, ",") {
			if n, ok := leadingInt(part); ok {
				items = append(items, strconv.Itoa(n))
			}
		}
		if len(items) == 0 {
			return nil, &mapper.LimitError{Value: limit}
		}
		return nodes.SQL(strings.Join(items, ",")), nil
	}
	n, ok := leadingInt(s)
	if !ok {
		return nil, &mapper.LimitError{Value: limit}
	}
	return n, nil
}

// sanitizeOffset accepts integers and strings holding one.
func sanitizeOffset(offset any) (any, error) {
	switch o := offset.(type) {
	case nil:
		return nil, nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return o, nil
	case float32:
		return integralFloat(offset, float64(o))
	case float64:
		return integralFloat(offset, o)
	}
	n, ok := leadingInt(fmt.Sprint(offset))
	if !ok {
		return nil, &mapper.LimitError{Value: offset}
	}
	return n, nil
}

func integralFloat(v any, f float64) (any, error) {
	if f != float64(int64(f)) {
		return nil, &mapper.LimitError{Value: v}
	}
	return int(f), nil
}

// leadingInt parses the optionally signed integer at the start of s,
// ignoring surrounding spaces and trailing characters.
func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
