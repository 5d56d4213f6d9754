package privacy

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/syssam/mapper"
)

// Policy decision sentinel errors.
var (
	// Allow may be returned by rules to indicate that the policy
	// evaluation should terminate with an allow decision.
	Allow = errors.New("mapper/privacy: allow rule")

	// Deny may be returned by rules to indicate that the policy
	// evaluation should terminate with a deny decision.
	Deny = errors.New("mapper/privacy: deny rule")

	// Skip may be returned by rules to indicate that the policy
	// evaluation should continue to the next rule in the chain.
	Skip = errors.New("mapper/privacy: skip rule")
)

// Allowf returns a formatted wrapped Allow decision.
func Allowf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Allow)...)
}

// Denyf returns a formatted wrapped Deny decision.
func Denyf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Deny)...)
}

// Skipf returns a formatted wrapped Skip decision.
func Skipf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Skip)...)
}

// Rule decides on a statement. It returns Allow, Deny, Skip or an error
// wrapping one of them.
type Rule interface {
	EvalRule(context.Context, *mapper.QueryContext) error
}

// RuleFunc type is an adapter which allows the use of ordinary functions
// as rules.
type RuleFunc func(context.Context, *mapper.QueryContext) error

// EvalRule returns f(ctx, qc).
func (f RuleFunc) EvalRule(ctx context.Context, qc *mapper.QueryContext) error {
	return f(ctx, qc)
}

// AlwaysAllowRule returns a rule that always returns an Allow decision.
func AlwaysAllowRule() Rule {
	return fixedDecision{Allow}
}

// AlwaysDenyRule returns a rule that always returns a Deny decision.
func AlwaysDenyRule() Rule {
	return fixedDecision{Deny}
}

// ContextRule creates a rule from a context evaluation function.
// Returning nil is equivalent to returning Skip.
func ContextRule(eval func(context.Context) error) Rule {
	return RuleFunc(func(ctx context.Context, _ *mapper.QueryContext) error {
		return eval(ctx)
	})
}

// OnOperation evaluates the given rule only for statements whose
// operation is included in op.
func OnOperation(rule Rule, op mapper.Op) Rule {
	return RuleFunc(func(ctx context.Context, qc *mapper.QueryContext) error {
		if qc.Op.Is(op) {
			return rule.EvalRule(ctx, qc)
		}
		return Skip
	})
}

// OnTable evaluates the given rule only for statements on the tables.
func OnTable(rule Rule, tables ...string) Rule {
	return RuleFunc(func(ctx context.Context, qc *mapper.QueryContext) error {
		if slices.Contains(tables, qc.Table) {
			return rule.EvalRule(ctx, qc)
		}
		return Skip
	})
}

// DenyOperationRule returns a rule denying the operations in op.
func DenyOperationRule(op mapper.Op) Rule {
	rule := RuleFunc(func(_ context.Context, qc *mapper.QueryContext) error {
		return Denyf("mapper/privacy: operation %s on %s is not allowed", qc.Op, qc.Table)
	})
	return OnOperation(rule, op)
}

// Policy groups query and mutation rules. Query rules see OpSelect and
// OpCalculate statements; mutation rules see the rest.
type Policy struct {
	Query    []Rule
	Mutation []Rule
}

// Eval implements mapper.Policy. An Allow decision, or no decision at
// all, returns nil.
func (p Policy) Eval(ctx context.Context, qc *mapper.QueryContext) error {
	if decision, ok := DecisionFromContext(ctx); ok {
		return decision
	}
	rules := p.Query
	if qc.Op.Mutation() {
		rules = p.Mutation
	}
	for _, rule := range rules {
		switch decision := rule.EvalRule(ctx, qc); {
		case decision == nil || errors.Is(decision, Skip):
		case errors.Is(decision, Allow):
			return nil
		default:
			return decision
		}
	}
	return nil
}

var _ mapper.Policy = Policy{}

type decisionCtxKey struct{}

// DecisionContext creates a new context from the given parent context with
// a policy decision attached to it. The decision overrides the rules of
// every policy evaluated with the context.
func DecisionContext(parent context.Context, decision error) context.Context {
	if decision == nil || errors.Is(decision, Skip) {
		return parent
	}
	return context.WithValue(parent, decisionCtxKey{}, decision)
}

// DecisionFromContext retrieves the policy decision from the context.
func DecisionFromContext(ctx context.Context) (error, bool) {
	decision, ok := ctx.Value(decisionCtxKey{}).(error)
	if ok && errors.Is(decision, Allow) {
		decision = nil
	}
	return decision, ok
}

type fixedDecision struct {
	decision error
}

func (f fixedDecision) EvalRule(context.Context, *mapper.QueryContext) error {
	return f.decision
}
