package relation

import (
	"context"
	"fmt"
	"slices"

	"github.com/syssam/mapper"
	"github.com/syssam/mapper/dialect"
	"github.com/syssam/mapper/nodes"
)

// Result is the outcome of an asynchronous query.
type Result struct {
	Records []any
	Err     error
}

// Execute runs the SELECT statement of the relation and returns the raw
// rows.
func (r *Relation) Execute(ctx context.Context) ([]dialect.Row, error) {
	sql, err := r.ToSQL()
	if err != nil {
		return nil, err
	}
	return r.selectRows(ctx, mapper.OpSelect, sql)
}

// selectRows runs query through the cache, when the relation has one.
func (r *Relation) selectRows(ctx context.Context, op mapper.Op, query string) ([]dialect.Row, error) {
	if r.driver == nil {
		return nil, ErrNoDriver
	}
	ctx, err := r.queryContext(ctx, op)
	if err != nil {
		return nil, err
	}
	key := mapper.CacheKey{Table: r.model.TableName(), Op: op, SQL: query}
	if rows, ok := r.cached(ctx, key); ok {
		return rows, nil
	}
	r.log(ctx, op, query)
	rows, err := r.driver.Execute(ctx, query)
	if err != nil {
		return nil, mapper.NewQueryError(r.model.TableName(), opName(op), err)
	}
	r.store(ctx, key, rows)
	return rows, nil
}

// All returns the records of the relation. The records are memoized on
// the relation.
func (r *Relation) All(ctx context.Context) ([]any, error) {
	r.mu.Lock()
	if r.loaded {
		records := r.records
		r.mu.Unlock()
		return records, nil
	}
	r.mu.Unlock()
	rows, err := r.Execute(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]any, 0, len(rows))
	for _, row := range rows {
		rec, err := r.model.mapRow(row)
		if err != nil {
			return nil, fmt.Errorf("relation: map %s row: %w", r.model.Label(), err)
		}
		records = append(records, rec)
	}
	r.mu.Lock()
	r.records, r.loaded = records, true
	r.mu.Unlock()
	return records, nil
}

// AllX is like All, but panics if an error occurs.
func (r *Relation) AllX(ctx context.Context) []any {
	records, err := r.All(ctx)
	if err != nil {
		panic(err)
	}
	return records
}

// Reset drops the memoized records, so the next call to All queries the
// database again.
func (r *Relation) Reset() *Relation {
	r.mu.Lock()
	r.records, r.loaded = nil, false
	r.mu.Unlock()
	return r
}

// Async runs All in a new goroutine. The returned channel delivers
// exactly one Result and is then closed.
func (r *Relation) Async(ctx context.Context) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		records, err := r.All(ctx)
		ch <- Result{Records: records, Err: err}
	}()
	return ch
}

// First returns the first record of the relation.
// Returns a *mapper.NotFoundError when there is no record.
func (r *Relation) First(ctx context.Context) (any, error) {
	records, err := r.Limit(1).All(ctx)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, mapper.NewNotFoundError(r.model.Label())
	}
	return records[0], nil
}

// FirstX is like First, but panics if an error occurs.
// Returns nil (without panicking) if no record was found.
func (r *Relation) FirstX(ctx context.Context) any {
	rec, err := r.First(ctx)
	if err != nil && !mapper.IsNotFound(err) {
		panic(err)
	}
	return rec
}

// Last returns the last record of the relation, selected with the order
// reversed. Returns a *mapper.NotFoundError when there is no record.
func (r *Relation) Last(ctx context.Context) (any, error) {
	return r.ReverseOrder().First(ctx)
}

// Find returns the record with the given primary key.
// Returns a *mapper.NotFoundError when there is no such record.
func (r *Relation) Find(ctx context.Context, id any) (any, error) {
	rec, err := r.Where(r.primaryKey().Eq(id)).First(ctx)
	if mapper.IsNotFound(err) {
		return nil, mapper.NewNotFoundErrorWithID(r.model.Label(), id)
	}
	return rec, err
}

// FindAll returns the records with the given primary keys. Duplicate and
// nil ids are ignored; no query is sent when no id remains.
func (r *Relation) FindAll(ctx context.Context, ids ...any) ([]any, error) {
	var uniq []any
	for _, id := range ids {
		if id != nil && !slices.Contains(uniq, id) {
			uniq = append(uniq, id)
		}
	}
	switch len(uniq) {
	case 0:
		return []any{}, nil
	case 1:
		rec, err := r.Find(ctx, uniq[0])
		if err != nil {
			return nil, err
		}
		return []any{rec}, nil
	}
	return r.Where(r.primaryKey().In(uniq)).All(ctx)
}

// Exists reports whether the relation has a record. An optional
// condition narrows it: maps, condition arrays and nodes are used as in
// Where; any other value is compared with the primary key.
func (r *Relation) Exists(ctx context.Context, cond ...any) (bool, error) {
	rel := r.Except(ClauseSelect).Select(r.primaryKey()).Limit(1)
	if len(cond) > 0 && cond[0] != nil {
		switch c := cond[0].(type) {
		case map[string]any, []any, nodes.Node:
			rel = rel.Where(c)
		default:
			rel = rel.Where(r.primaryKey().Eq(c))
		}
	}
	rows, err := rel.Execute(ctx)
	if err != nil {
		return false, fmt.Errorf("relation: check existence: %w", err)
	}
	return len(rows) > 0, nil
}

// ExistsX is like Exists, but panics if an error occurs.
func (r *Relation) ExistsX(ctx context.Context, cond ...any) bool {
	ok, err := r.Exists(ctx, cond...)
	if err != nil {
		panic(err)
	}
	return ok
}

func (r *Relation) primaryKey() *nodes.Attribute {
	attr, err := r.attribute(r.model.PrimaryKeyName())
	if err != nil {
		return r.table.Column(r.model.PrimaryKeyName())
	}
	return attr
}

func opName(op mapper.Op) string {
	switch op {
	case mapper.OpSelect:
		return "select"
	case mapper.OpCalculate:
		return "calculate"
	case mapper.OpInsert:
		return "insert"
	case mapper.OpUpdate:
		return "update"
	case mapper.OpDelete:
		return "delete"
	}
	return op.String()
}
