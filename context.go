package mapper

import (
	"context"
	"fmt"
	"strings"
)

// Op represents the operation a statement performs.
type Op uint

// Operation types.
const (
	OpSelect Op = 1 << iota
	OpCalculate
	OpInsert
	OpUpdate
	OpDelete
)

// Is reports whether o includes op.
func (o Op) Is(op Op) bool { return o&op != 0 }

var opNames = [...]string{"OpSelect", "OpCalculate", "OpInsert", "OpUpdate", "OpDelete"}

// String returns the operation names joined with "|".
func (o Op) String() string {
	var names []string
	for i, name := range opNames {
		if o&(1<<i) != 0 {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return fmt.Sprintf("Op(%d)", uint(o))
	}
	return strings.Join(names, "|")
}

// Mutation reports whether o changes rows.
func (o Op) Mutation() bool { return o.Is(OpInsert | OpUpdate | OpDelete) }

// QueryContext describes the statement a relation is executing. The
// relation layer attaches it to the context passed to the driver, where
// wrapping drivers read it for logging.
type QueryContext struct {
	Table  string   // Table of the model
	Op     Op       // Operation being executed
	Fields []string // Selected columns, empty for all
	Limit  *int     // Limit, if any
	Offset *int     // Offset, if any
}

// Clone returns a deep copy of the query context.
func (q *QueryContext) Clone() *QueryContext {
	if q == nil {
		return nil
	}
	c := *q
	c.Fields = append([]string(nil), q.Fields...)
	if q.Limit != nil {
		v := *q.Limit
		c.Limit = &v
	}
	if q.Offset != nil {
		v := *q.Offset
		c.Offset = &v
	}
	return &c
}

// AppendFieldOnce adds the field to the list of fields if it is not
// already there.
func (q *QueryContext) AppendFieldOnce(f string) *QueryContext {
	for _, field := range q.Fields {
		if field == f {
			return q
		}
	}
	q.Fields = append(q.Fields, f)
	return q
}

type queryCtxKey struct{}

// NewQueryContext returns a new context with the given QueryContext attached.
func NewQueryContext(parent context.Context, q *QueryContext) context.Context {
	return context.WithValue(parent, queryCtxKey{}, q)
}

// QueryFromContext returns the QueryContext value stored in ctx, if any.
func QueryFromContext(ctx context.Context) *QueryContext {
	q, _ := ctx.Value(queryCtxKey{}).(*QueryContext)
	return q
}
