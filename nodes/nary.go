package nodes

// Nary is a conjunction (And) or disjunction (Or) of any number of children.
// An empty And renders as 1=1 and an empty Or as 1=0.
type Nary struct {
	Predications
	kind     Kind
	Children []Node
}

func newNary(kind Kind, children []Node) *Nary {
	n := &Nary{kind: kind, Children: children}
	n.self = n
	return n
}

func (n *Nary) Kind() Kind { return n.kind }
func (*Nary) node()        {}

// NewAnd joins children with AND.
func NewAnd(children ...Node) *Nary { return newNary(KindAnd, children) }

// NewOr joins children with OR.
func NewOr(children ...Node) *Nary { return newNary(KindOr, children) }
