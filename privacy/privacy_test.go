package privacy_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/mapper"
	"github.com/syssam/mapper/privacy"
)

func TestDecisionErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		decision error
		want     error
		msg      string
	}{
		{name: "allowf", decision: privacy.Allowf("admin %s", "bob"), want: privacy.Allow, msg: "admin bob: mapper/privacy: allow rule"},
		{name: "denyf", decision: privacy.Denyf("no access"), want: privacy.Deny, msg: "no access: mapper/privacy: deny rule"},
		{name: "skipf", decision: privacy.Skipf("abstain %d", 1), want: privacy.Skip, msg: "abstain 1: mapper/privacy: skip rule"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.ErrorIs(t, tt.decision, tt.want)
			assert.EqualError(t, tt.decision, tt.msg)
		})
	}
}

func TestPolicy_Eval(t *testing.T) {
	t.Parallel()
	custom := errors.New("custom")
	selectQC := &mapper.QueryContext{Table: "users", Op: mapper.OpSelect}
	deleteQC := &mapper.QueryContext{Table: "users", Op: mapper.OpDelete}
	tests := []struct {
		name   string
		policy privacy.Policy
		qc     *mapper.QueryContext
		want   error
	}{
		{name: "empty", qc: selectQC},
		{name: "all skip", policy: privacy.Policy{Query: []privacy.Rule{privacy.ContextRule(func(context.Context) error { return nil })}}, qc: selectQC},
		{name: "allow stops", policy: privacy.Policy{Query: []privacy.Rule{privacy.AlwaysAllowRule(), privacy.AlwaysDenyRule()}}, qc: selectQC},
		{name: "deny", policy: privacy.Policy{Query: []privacy.Rule{privacy.AlwaysDenyRule()}}, qc: selectQC, want: privacy.Deny},
		{name: "custom error", policy: privacy.Policy{Mutation: []privacy.Rule{privacy.ContextRule(func(context.Context) error { return custom })}}, qc: deleteQC, want: custom},
		{name: "mutation rules ignored for queries", policy: privacy.Policy{Mutation: []privacy.Rule{privacy.AlwaysDenyRule()}}, qc: selectQC},
		{name: "query rules ignored for mutations", policy: privacy.Policy{Query: []privacy.Rule{privacy.AlwaysDenyRule()}}, qc: deleteQC},
		{name: "deny operation", policy: privacy.Policy{Mutation: []privacy.Rule{privacy.DenyOperationRule(mapper.OpUpdate | mapper.OpDelete)}}, qc: deleteQC, want: privacy.Deny},
		{name: "other operation", policy: privacy.Policy{Mutation: []privacy.Rule{privacy.DenyOperationRule(mapper.OpInsert)}}, qc: deleteQC},
		{name: "on table", policy: privacy.Policy{Query: []privacy.Rule{privacy.OnTable(privacy.AlwaysDenyRule(), "users")}}, qc: selectQC, want: privacy.Deny},
		{name: "other table", policy: privacy.Policy{Query: []privacy.Rule{privacy.OnTable(privacy.AlwaysDenyRule(), "posts")}}, qc: selectQC},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.policy.Eval(context.Background(), tt.qc)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDecisionContext(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	qc := &mapper.QueryContext{Table: "users", Op: mapper.OpSelect}
	deny := privacy.Policy{Query: []privacy.Rule{privacy.AlwaysDenyRule()}}

	assert.Equal(t, ctx, privacy.DecisionContext(ctx, nil))
	assert.Equal(t, ctx, privacy.DecisionContext(ctx, privacy.Skip))

	allowed := privacy.DecisionContext(ctx, privacy.Allow)
	decision, ok := privacy.DecisionFromContext(allowed)
	assert.True(t, ok)
	assert.NoError(t, decision)
	assert.NoError(t, deny.Eval(allowed, qc))

	denied := privacy.DecisionContext(ctx, privacy.Denyf("frozen"))
	assert.ErrorIs(t, privacy.Policy{}.Eval(denied, qc), privacy.Deny)

	_, ok = privacy.DecisionFromContext(ctx)
	assert.False(t, ok)
}

func TestViewerRules(t *testing.T) {
	t.Parallel()
	qc := &mapper.QueryContext{Table: "users", Op: mapper.OpUpdate}
	admin := &privacy.SimpleViewer{UserID: "1", Roles: []string{"admin"}}
	editor := &privacy.SimpleViewer{UserID: "2", Roles: []string{"user", "editor"}}
	tests := []struct {
		name   string
		rule   privacy.Rule
		viewer privacy.Viewer
		want   error
	}{
		{name: "no viewer denied", rule: privacy.DenyIfNoViewer(), want: privacy.Deny},
		{name: "viewer skips", rule: privacy.DenyIfNoViewer(), viewer: admin, want: privacy.Skip},
		{name: "has role", rule: privacy.HasRole("admin"), viewer: admin, want: privacy.Allow},
		{name: "missing role", rule: privacy.HasRole("admin"), viewer: editor, want: privacy.Skip},
		{name: "role without viewer", rule: privacy.HasRole("admin"), want: privacy.Skip},
		{name: "any role", rule: privacy.HasAnyRole("moderator", "editor"), viewer: editor, want: privacy.Allow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			if tt.viewer != nil {
				ctx = privacy.WithViewer(ctx, tt.viewer)
			}
			assert.ErrorIs(t, tt.rule.EvalRule(ctx, qc), tt.want)
		})
	}
	assert.Equal(t, "2", privacy.ViewerFromContext(privacy.WithViewer(context.Background(), editor)).GetID())
	assert.Nil(t, privacy.ViewerFromContext(context.Background()))
}
