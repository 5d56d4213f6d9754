// Package privacy provides rules that authorize the statements a relation
// runs before they reach the database.
//
// A Policy holds an ordered list of query rules and an ordered list of
// mutation rules. Each rule returns one of three decisions:
//
//   - Allow: grants access and stops evaluation
//   - Deny: rejects the statement and stops evaluation
//   - Skip: continues with the next rule
//
// A nil return is treated as Skip. When every rule skips, the statement is
// allowed, so policies that should deny by default end with
// AlwaysDenyRule.
//
//	policy := privacy.Policy{
//	    Mutation: []privacy.Rule{
//	        privacy.DenyIfNoViewer(),
//	        privacy.HasRole("admin"),
//	        privacy.AlwaysDenyRule(),
//	    },
//	}
//	users := relation.New(relation.Model{Name: "User"}, drv, relation.WithPolicy(policy))
//
//	ctx = privacy.WithViewer(ctx, &privacy.SimpleViewer{UserID: "1", Roles: []string{"admin"}})
//	_, err := users.Delete(ctx, 7)
//
// Denials wrap Deny and can be checked with errors.Is.
package privacy
