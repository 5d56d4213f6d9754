package mapper

import "context"

// Policy decides whether the statement described by qc may run. A nil
// error allows it; any other error is returned to the caller in place of
// running the statement.
type Policy interface {
	Eval(ctx context.Context, qc *QueryContext) error
}

// PolicyFunc adapts an ordinary function to a Policy.
type PolicyFunc func(context.Context, *QueryContext) error

// Eval returns f(ctx, qc).
func (f PolicyFunc) Eval(ctx context.Context, qc *QueryContext) error {
	return f(ctx, qc)
}
