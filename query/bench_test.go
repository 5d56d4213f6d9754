package query_test

import (
	"testing"

	"github.com/syssam/mapper/dialect"
	"github.com/syssam/mapper/nodes"
	"github.com/syssam/mapper/query"
)

var benchDialects = []string{dialect.SQLite, dialect.MySQL, dialect.Postgres}

func BenchmarkInsertManager_Small(b *testing.B) {
	for _, d := range benchDialects {
		b.Run(d, func(b *testing.B) {
			users := query.NewTable("users", query.WithDialect(d))
			columns := []string{"id", "age", "first_name", "last_name", "nickname", "spouse_id", "created_at", "updated_at"}
			values := []any{1, 30, "Ariel", "Mashraki", "a8m", 2, "2009-11-10 23:00:00", "2009-11-10 23:00:00"}
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				pairs := make([]query.Pair, len(columns))
				for j, c := range columns {
					pairs[j] = query.Pair{Column: users.Column(c), Value: values[j]}
				}
				_ = users.InsertManager().Insert(pairs).ToSQL()
			}
		})
	}
}

func BenchmarkSelectManager_Simple(b *testing.B) {
	for _, d := range benchDialects {
		b.Run(d, func(b *testing.B) {
			users := query.NewTable("users", query.WithDialect(d))
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = users.Project(users.Column("id"), users.Column("name"), users.Column("email")).ToSQL()
			}
		})
	}
}

func BenchmarkSelectManager_WithJoins(b *testing.B) {
	for _, d := range benchDialects {
		b.Run(d, func(b *testing.B) {
			users := query.NewTable("users", query.WithDialect(d), query.As("u"))
			posts := query.NewTable("posts", query.As("p"))
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = users.Project(users.Column("id"), users.Column("name"), posts.Column("title")).
					Join(posts).On(users.Column("id").Eq(posts.Column("user_id"))).
					Where(users.Column("active").Eq(true)).
					Order(users.Column("created_at")).
					Take(10).
					ToSQL()
			}
		})
	}
}

func BenchmarkSelectManager_Complex(b *testing.B) {
	for _, d := range benchDialects {
		b.Run(d, func(b *testing.B) {
			users := query.NewTable("users", query.WithDialect(d))
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = users.Project(nodes.Star).
					Where(nodes.NewAnd(
						users.Column("status").Eq("active"),
						users.Column("age").Gt(18).Or(users.Column("role").Eq("admin")),
						users.Column("department").In([]string{"engineering", "product", "design"}),
						users.Column("email").NotEq(nil),
					)).
					Order(users.Column("created_at"), users.Column("name")).
					Take(100).
					Skip(50).
					ToSQL()
			}
		})
	}
}

func BenchmarkUpdateManager_Multiple(b *testing.B) {
	for _, d := range benchDialects {
		b.Run(d, func(b *testing.B) {
			users := query.NewTable("users", query.WithDialect(d))
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = users.UpdateManager().Table(users).
					Set([]query.Pair{
						{Column: users.Column("first_name"), Value: "John"},
						{Column: users.Column("last_name"), Value: "Doe"},
						{Column: users.Column("age"), Value: 30},
					}).
					Where(users.Column("id").In([]int{1, 2, 3, 4, 5})).
					ToSQL()
			}
		})
	}
}

func BenchmarkDeleteManager_WithConditions(b *testing.B) {
	for _, d := range benchDialects {
		b.Run(d, func(b *testing.B) {
			users := query.NewTable("users", query.WithDialect(d))
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = users.DeleteManager().From(users).
					Where(
						users.Column("status").Eq("deleted"),
						users.Column("deleted_at").Lt("2023-01-01"),
						users.Column("role").NotIn([]string{"admin", "moderator"}),
					).
					ToSQL()
			}
		})
	}
}

func BenchmarkPredications_Compound(b *testing.B) {
	users := query.NewTable("users")
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = nodes.NewAnd(
			users.Column("status").Eq("active"),
			users.Column("age").Gt(18).Or(users.Column("role").Eq("admin")),
			users.Column("department").In([]string{"eng", "product"}),
			users.Column("name").Matches("%John%"),
		)
	}
}
