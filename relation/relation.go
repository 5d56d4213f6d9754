package relation

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/syssam/mapper"
	"github.com/syssam/mapper/dialect"
	"github.com/syssam/mapper/nodes"
	"github.com/syssam/mapper/query"
	"github.com/syssam/mapper/visitors"
)

// ErrNoDriver is returned by terminal operations of a relation created
// without a driver.
var ErrNoDriver = errors.New("relation: no driver")

// ErrReadonly is returned by mutations of a readonly relation.
var ErrReadonly = errors.New("relation: readonly relation")

// Clause names accepted by Except.
const (
	ClauseSelect     = "select"
	ClauseGroup      = "group"
	ClauseOrder      = "order"
	ClauseJoins      = "joins"
	ClauseWhere      = "where"
	ClauseHaving     = "having"
	ClauseBind       = "bind"
	ClauseIncludes   = "includes"
	ClauseLimit      = "limit"
	ClauseOffset     = "offset"
	ClauseLock       = "lock"
	ClauseReadonly   = "readonly"
	ClauseCreateWith = "create_with"
	ClauseFrom       = "from"
)

// Option configures a relation.
type Option func(*config)

type config struct {
	logger   *slog.Logger
	cache    mapper.Cache
	cacheTTL time.Duration
	visitor  *visitors.Visitor
	policy   mapper.Policy
}

// WithLogger sets the logger statements are logged to at debug level.
// slog.Default is used otherwise.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithCache caches the rows of executed SELECT statements in c for ttl.
// Mutations through the relation evict all entries of its table.
func WithCache(c mapper.Cache, ttl time.Duration) Option {
	return func(cfg *config) {
		cfg.cache = c
		cfg.cacheTTL = ttl
	}
}

// WithDialect renders statements with the named dialect instead of the
// dialect of the driver.
func WithDialect(name string) Option {
	return func(c *config) { c.visitor = visitors.For(name) }
}

// WithPolicy evaluates p before every statement the relation runs.
// Statements p rejects are not sent to the driver.
func WithPolicy(p mapper.Policy) Option {
	return func(c *config) { c.policy = p }
}

// Relation is an immutable query over the table of a model.
type Relation struct {
	model  *Model
	driver dialect.Driver
	table  *query.Table
	cfg    *config

	// multi value clauses.
	selects  []nodes.Node
	groups   []nodes.Node
	orders   []nodes.Node
	joins    []any
	wheres   []nodes.Node
	havings  []nodes.Node
	binds    []any
	includes []string
	// raw where conditions whose "?" are filled by Bind.
	unbound []*nodes.SqlLiteral

	// single value clauses.
	limit      any
	offset     any
	lock       bool
	readonly   bool
	createWith map[string]any
	from       any

	errs []error

	mu      sync.Mutex
	sql     string
	records []any
	loaded  bool
}

// New returns a relation over the table of model. The driver may be nil
// for relations that are only rendered.
func New(model Model, drv dialect.Driver, opts ...Option) *Relation {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	topts := []query.TableOption{query.WithDriver(drv)}
	if cfg.visitor != nil {
		topts = append(topts, query.WithVisitor(cfg.visitor))
	}
	return &Relation{
		model:  &model,
		driver: drv,
		table:  query.NewTable(model.TableName(), topts...),
		cfg:    cfg,
	}
}

// Model returns the model of the relation.
func (r *Relation) Model() *Model { return r.model }

// Table returns the table the relation selects from.
func (r *Relation) Table() *query.Table { return r.table }

// Err returns the construction errors recorded on the relation, joined
// into one error, or nil.
func (r *Relation) Err() error {
	return mapper.NewAggregateError(r.errs...)
}

// Clone returns a copy of the relation without its memoized SQL and
// records.
func (r *Relation) Clone() *Relation {
	if r == nil {
		return nil
	}
	return &Relation{
		model:      r.model,
		driver:     r.driver,
		table:      r.table,
		cfg:        r.cfg,
		selects:    slices.Clone(r.selects),
		groups:     slices.Clone(r.groups),
		orders:     slices.Clone(r.orders),
		joins:      slices.Clone(r.joins),
		wheres:     slices.Clone(r.wheres),
		havings:    slices.Clone(r.havings),
		binds:      slices.Clone(r.binds),
		unbound:    slices.Clone(r.unbound),
		includes:   slices.Clone(r.includes),
		limit:      r.limit,
		offset:     r.offset,
		lock:       r.lock,
		readonly:   r.readonly,
		createWith: r.createWith,
		from:       r.from,
		errs:       slices.Clone(r.errs),
	}
}

func (r *Relation) visitor() *visitors.Visitor { return r.table.Visitor() }

func (r *Relation) addErr(err error) *Relation {
	if err != nil {
		r.errs = append(r.errs, err)
	}
	return r
}

// ToSQL renders the SELECT statement of the relation. The result is
// memoized.
func (r *Relation) ToSQL() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sql != "" {
		return r.sql, nil
	}
	m, err := r.Arel()
	if err != nil {
		return "", err
	}
	s, err := m.Compile()
	if err != nil {
		return "", err
	}
	r.sql = s
	return r.sql, nil
}

// String implements fmt.Stringer. Construction errors render as an empty
// string.
func (r *Relation) String() string {
	s, _ := r.ToSQL()
	return s
}

// Arel builds a new select manager from the clauses of the relation.
func (r *Relation) Arel() (*query.SelectManager, error) {
	if err := r.Err(); err != nil {
		return nil, err
	}
	wheres, err := r.bindWheres()
	if err != nil {
		return nil, err
	}
	m := r.table.From()
	if r.from != nil {
		m.From(r.from)
	}
	for _, j := range r.joins {
		if n, ok := j.(*nodes.Binary); ok && nodes.IsJoin(n) {
			m.From(n)
			continue
		}
		m.Join(j)
	}
	for _, w := range r.uniq(wheres) {
		m.Where(nodes.NewGrouping(w))
	}
	if orders := r.uniq(r.orders); len(orders) > 0 {
		m.Order(toAny(orders)...)
	}
	if groups := r.uniq(r.groups); len(groups) > 0 {
		m.Group(toAny(groups)...)
	}
	if havings := r.uniq(r.havings); len(havings) > 0 {
		m.Having(havings...)
	}
	if r.limit != nil {
		m.Take(r.limit)
	}
	if r.offset != nil {
		m.Skip(r.offset)
	}
	if r.lock {
		m.Lock()
	}
	if selects := r.uniq(r.selects); len(selects) > 0 {
		m.Project(toAny(selects)...)
	} else {
		m.Project(nodes.SQL(r.table.QuotedName() + ".*"))
	}
	return m, nil
}

// uniq removes the nodes rendering the same SQL as an earlier node.
func (r *Relation) uniq(list []nodes.Node) []nodes.Node {
	if len(list) < 2 {
		return list
	}
	v := r.visitor()
	seen := make(map[string]bool, len(list))
	out := make([]nodes.Node, 0, len(list))
	for _, n := range list {
		s, _ := v.Compile(n)
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, n)
	}
	return out
}

func toAny(list []nodes.Node) []any {
	out := make([]any, len(list))
	for i, n := range list {
		out[i] = n
	}
	return out
}

// queryContext attaches the description of the statement to ctx and
// authorizes it.
func (r *Relation) queryContext(ctx context.Context, op mapper.Op) (context.Context, error) {
	qc := &mapper.QueryContext{Table: r.model.TableName(), Op: op}
	v := r.visitor()
	for _, s := range r.selects {
		if f, err := v.Compile(s); err == nil {
			qc.AppendFieldOnce(f)
		}
	}
	if n, ok := r.limit.(int); ok {
		qc.Limit = &n
	}
	if n, ok := r.offset.(int); ok {
		qc.Offset = &n
	}
	return r.authorize(mapper.NewQueryContext(ctx, qc), qc)
}

// Authorize evaluates the policy of the relation for a statement of op
// issued with ctx, without building or running it.
func (r *Relation) Authorize(ctx context.Context, op mapper.Op) error {
	_, err := r.queryContext(ctx, op)
	return err
}

func (r *Relation) authorize(ctx context.Context, qc *mapper.QueryContext) (context.Context, error) {
	if r.cfg.policy == nil {
		return ctx, nil
	}
	return ctx, r.cfg.policy.Eval(ctx, qc)
}

func (r *Relation) log(ctx context.Context, op mapper.Op, query string) {
	r.cfg.logger.DebugContext(ctx, "relation: execute",
		"table", r.model.TableName(),
		"op", op.String(),
		"sql", query,
	)
}
