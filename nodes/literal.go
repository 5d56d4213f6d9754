package nodes

// SqlLiteral is a raw SQL fragment rendered verbatim.
type SqlLiteral struct {
	Predications
	Value string
}

// SQL returns a literal node for the raw fragment s.
func SQL(s string) *SqlLiteral {
	l := &SqlLiteral{Value: s}
	l.self = l
	return l
}

// Star is the shared "*" projection.
var Star = SQL("*")

func (*SqlLiteral) Kind() Kind { return KindSqlLiteral }
func (*SqlLiteral) node()      {}

// String returns the raw fragment.
func (l *SqlLiteral) String() string { return l.Value }

// Literal converts a string to a SqlLiteral and returns nodes unchanged.
// Other values are returned as they are.
func Literal(v any) any {
	switch v := v.(type) {
	case string:
		return SQL(v)
	case TableSource:
		return v.TableNode()
	default:
		return v
	}
}
