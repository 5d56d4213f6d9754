package query

import (
	"strconv"
	"sync"

	"github.com/syssam/mapper/dialect"
	"github.com/syssam/mapper/nodes"
	"github.com/syssam/mapper/visitors"
)

// Table is a database table bound to a driver or dialect. It creates the
// statement managers and forwards the select builder methods to a new
// SelectManager.
type Table struct {
	*nodes.Table
	FactoryMethods
	tm treeManager

	mu      sync.Mutex
	aliases []*nodes.TableAlias
}

// TableOption configures a Table.
type TableOption func(*tableConfig)

type tableConfig struct {
	alias   string
	driver  dialect.Driver
	visitor *visitors.Visitor
}

// WithDriver binds the table to a driver. Rendering uses the driver's
// dialect.
func WithDriver(drv dialect.Driver) TableOption {
	return func(c *tableConfig) { c.driver = drv }
}

// WithDialect renders the table's statements with the named dialect.
func WithDialect(name string) TableOption {
	return func(c *tableConfig) { c.visitor = visitors.For(name) }
}

// WithVisitor renders the table's statements with v.
func WithVisitor(v *visitors.Visitor) TableOption {
	return func(c *tableConfig) { c.visitor = v }
}

// As renders the table as "name" "alias".
func As(alias string) TableOption {
	return func(c *tableConfig) { c.alias = alias }
}

// NewTable returns the table name configured by opts.
func NewTable(name string, opts ...TableOption) *Table {
	var c tableConfig
	for _, opt := range opts {
		opt(&c)
	}
	return &Table{
		Table: nodes.NewTable(name, c.alias),
		tm:    newTreeManager(c.driver, c.visitor),
	}
}

// Driver returns the bound driver, or nil.
func (t *Table) Driver() dialect.Driver { return t.tm.driver }

// Visitor returns the visitor used by the table's managers.
func (t *Table) Visitor() *visitors.Visitor { return t.tm.visitor }

// QuotedName returns the quoted table name.
func (t *Table) QuotedName() string { return t.tm.visitor.QuoteTableName(t.Name) }

// Alias returns a new alias of the table and records it. The default
// alias name is the table name suffixed with the alias count plus one,
// starting at "<name>_2".
func (t *Table) Alias(name ...string) *nodes.TableAlias {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := t.Name + "_" + strconv.Itoa(len(t.aliases)+2)
	if len(name) > 0 && name[0] != "" {
		n = name[0]
	}
	a := nodes.NewTableAlias(n, t.Table)
	t.aliases = append(t.aliases, a)
	return a
}

// Aliases returns the aliases created by Alias.
func (t *Table) Aliases() []*nodes.TableAlias {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*nodes.TableAlias(nil), t.aliases...)
}

// SelectManager returns an empty select manager bound to the table's
// driver.
func (t *Table) SelectManager() *SelectManager { return newSelectManager(t.tm, nil) }

// InsertManager returns an insert manager bound to the table's driver.
func (t *Table) InsertManager() *InsertManager { return newInsertManager(t.tm) }

// UpdateManager returns an update manager bound to the table's driver.
func (t *Table) UpdateManager() *UpdateManager { return newUpdateManager(t.tm) }

// DeleteManager returns a delete manager bound to the table's driver.
func (t *Table) DeleteManager() *DeleteManager { return newDeleteManager(t.tm) }

// From returns a select manager selecting from the table.
func (t *Table) From() *SelectManager { return newSelectManager(t.tm, t.Table) }

// Join returns From().Join(relation, kind...).
func (t *Table) Join(relation any, kind ...nodes.Kind) *SelectManager {
	return t.From().Join(relation, kind...)
}

// Where returns From().Where(exprs...).
func (t *Table) Where(exprs ...nodes.Node) *SelectManager { return t.From().Where(exprs...) }

// Project returns From().Project(things...).
func (t *Table) Project(things ...any) *SelectManager { return t.From().Project(things...) }

// Order returns From().Order(exprs...).
func (t *Table) Order(exprs ...any) *SelectManager { return t.From().Order(exprs...) }

// Group returns From().Group(columns...).
func (t *Table) Group(columns ...any) *SelectManager { return t.From().Group(columns...) }

// Having returns From().Having(exprs...).
func (t *Table) Having(exprs ...nodes.Node) *SelectManager { return t.From().Having(exprs...) }

// Take returns From().Take(limit).
func (t *Table) Take(limit any) *SelectManager { return t.From().Take(limit) }

// Skip returns From().Skip(offset).
func (t *Table) Skip(offset any) *SelectManager { return t.From().Skip(offset) }

// Lock returns From().Lock().
func (t *Table) Lock() *SelectManager { return t.From().Lock() }
