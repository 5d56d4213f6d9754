package query

import (
	"github.com/syssam/mapper/dialect"
	"github.com/syssam/mapper/visitors"
)

// treeManager binds a manager to a driver and the visitor of its dialect.
type treeManager struct {
	driver  dialect.Driver
	visitor *visitors.Visitor
}

func newTreeManager(drv dialect.Driver, v *visitors.Visitor) treeManager {
	switch {
	case v != nil:
	case drv != nil:
		v = visitors.For(drv.Dialect())
	default:
		v = visitors.SQL()
	}
	return treeManager{driver: drv, visitor: v}
}

// Driver returns the driver the manager is bound to, or nil.
func (m treeManager) Driver() dialect.Driver { return m.driver }

// Visitor returns the visitor used by ToSQL.
func (m treeManager) Visitor() *visitors.Visitor { return m.visitor }
