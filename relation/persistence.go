package relation

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/syssam/mapper"
	"github.com/syssam/mapper/nodes"
	"github.com/syssam/mapper/query"
)

// updateWorkers bounds the concurrent statements of UpdateMany.
const updateWorkers = 4

// Insert inserts one row and returns the generated id. Values are a map
// of column names to values, defaulting to ScopeForCreate, or a raw SQL
// VALUES body.
func (r *Relation) Insert(ctx context.Context, values any) (int64, error) {
	if err := r.mutable(); err != nil {
		return 0, err
	}
	im := r.table.InsertManager().Into(r.table)
	switch v := values.(type) {
	case string:
		im.Insert(nodes.SQL(v))
	case map[string]any:
		merged := r.ScopeForCreate()
		for k, val := range v {
			merged[k] = val
		}
		pairs, err := r.pairs(merged)
		if err != nil {
			return 0, err
		}
		im.Insert(pairs)
	case []query.Pair:
		im.Insert(v)
	default:
		return 0, fmt.Errorf("relation: unsupported insert values %T", values)
	}
	sql, err := im.Compile()
	if err != nil {
		return 0, err
	}
	return r.mutate(ctx, mapper.OpInsert, sql)
}

// UpdateAll updates the rows of the relation in a single statement and
// returns the number of affected rows. Updates are a map of column names
// to values, a raw SQL SET body, or a condition array whose placeholders
// are bound as in Where. The order and limit of the relation restrict the
// updated rows.
func (r *Relation) UpdateAll(ctx context.Context, updates any, args ...any) (int64, error) {
	if err := r.mutable(); err != nil {
		return 0, err
	}
	wheres, err := r.bindWheres()
	if err != nil {
		return 0, err
	}
	um := r.table.UpdateManager().Table(r.table).Key(r.primaryKey())
	for _, w := range r.uniq(wheres) {
		um.Where(nodes.NewGrouping(w))
	}
	if orders := r.uniq(r.orders); len(orders) > 0 {
		um.Order(toAny(orders)...)
	}
	if r.limit != nil {
		um.Take(r.limit)
	}
	switch u := updates.(type) {
	case map[string]any:
		pairs, err := r.pairs(u)
		if err != nil {
			return 0, err
		}
		um.Set(pairs)
	case []query.Pair:
		um.Set(u)
	case string, []any:
		n, err := r.condition(u, args)
		if err != nil {
			return 0, err
		}
		um.Set(n)
	default:
		return 0, fmt.Errorf("relation: unsupported updates %T", updates)
	}
	sql, err := um.Compile()
	if err != nil {
		return 0, err
	}
	return r.mutate(ctx, mapper.OpUpdate, sql)
}

// Update updates the record with the given primary key and returns the
// number of affected rows.
func (r *Relation) Update(ctx context.Context, id any, values map[string]any) (int64, error) {
	return r.Except(ClauseWhere, ClauseOrder, ClauseLimit, ClauseBind).
		Where(r.primaryKey().Eq(id)).
		UpdateAll(ctx, values)
}

// UpdateMany updates each record of ids with the values at the same
// index. The updates run concurrently; the first error cancels the
// remaining ones. The affected row counts are returned in the order of
// ids.
func (r *Relation) UpdateMany(ctx context.Context, ids []any, values []map[string]any) ([]int64, error) {
	if len(ids) != len(values) {
		return nil, fmt.Errorf("relation: %d ids for %d values", len(ids), len(values))
	}
	counts := make([]int64, len(ids))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(updateWorkers)
	for i := range ids {
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			n, err := r.Update(ctx, ids[i], values[i])
			if err != nil {
				return err
			}
			counts[i] = n
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return counts, nil
}

// DeleteAll deletes the rows matching the conditions of the relation in
// a single statement and returns the number of deleted rows.
func (r *Relation) DeleteAll(ctx context.Context) (int64, error) {
	if err := r.mutable(); err != nil {
		return 0, err
	}
	wheres, err := r.bindWheres()
	if err != nil {
		return 0, err
	}
	dm := r.table.DeleteManager().From(r.table)
	for _, w := range r.uniq(wheres) {
		dm.Where(nodes.NewGrouping(w))
	}
	sql, err := dm.Compile()
	if err != nil {
		return 0, err
	}
	return r.mutate(ctx, mapper.OpDelete, sql)
}

// Delete deletes the records with the given primary keys and returns the
// number of deleted rows.
func (r *Relation) Delete(ctx context.Context, ids ...any) (int64, error) {
	switch len(ids) {
	case 0:
		return 0, nil
	case 1:
		return r.Where(r.primaryKey().Eq(ids[0])).DeleteAll(ctx)
	}
	return r.Where(r.primaryKey().In(ids)).DeleteAll(ctx)
}

func (r *Relation) mutable() error {
	if err := r.Err(); err != nil {
		return err
	}
	if r.readonly {
		return ErrReadonly
	}
	if r.driver == nil {
		return ErrNoDriver
	}
	return nil
}

// mutate runs a mutation statement and evicts the cached rows of the
// table.
func (r *Relation) mutate(ctx context.Context, op mapper.Op, stmt string) (int64, error) {
	qc := &mapper.QueryContext{Table: r.model.TableName(), Op: op}
	ctx, err := r.authorize(mapper.NewQueryContext(ctx, qc), qc)
	if err != nil {
		return 0, err
	}
	r.log(ctx, op, stmt)
	var n int64
	switch op {
	case mapper.OpInsert:
		n, err = r.driver.Insert(ctx, stmt)
	case mapper.OpUpdate:
		n, err = r.driver.Update(ctx, stmt)
	default:
		n, err = r.driver.Delete(ctx, stmt)
	}
	if err != nil {
		return 0, mapper.NewMutationError(r.model.TableName(), opName(op), err)
	}
	r.evict(ctx)
	return n, nil
}

// pairs returns the column/value pairs of values, sorted by column.
func (r *Relation) pairs(values map[string]any) ([]query.Pair, error) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]query.Pair, 0, len(keys))
	for _, k := range keys {
		attr, err := r.attribute(k)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, query.Pair{Column: attr, Value: values[k]})
	}
	return pairs, nil
}
