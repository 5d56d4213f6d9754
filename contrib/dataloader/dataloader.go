// Package dataloader batches lookups of rows by a column into single
// queries.
//
// A Loader collects the keys of concurrent Load calls for a short window
// and resolves them with one IN query on its relation:
//
//	users := relation.New(relation.Model{Name: "User"}, drv)
//	byID := dataloader.New(users, "id")
//
//	// Called from many goroutines, e.g. GraphQL resolvers.
//	row, err := byID.Load(ctx, 7)
//
// LoadGroup serves one-to-many lookups:
//
//	postsByUser := dataloader.New(posts, "user_id")
//	rows, err := postsByUser.LoadGroup(ctx, 7)
//
// Loaders are usually created per request and carried in the context with
// WithLoaders and For.
package dataloader

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/syssam/mapper"
	"github.com/syssam/mapper/dialect"
	"github.com/syssam/mapper/relation"
)

// ErrNotFound is returned when no row matches a key.
var ErrNotFound = errors.New("dataloader: row not found")

// KeyFunc extracts a key from a value.
type KeyFunc[K comparable, V any] func(V) K

// OrderByKeys reorders values to match the order of keys. Missing values
// are zero values with an ErrNotFound error at the same index.
func OrderByKeys[K comparable, V any](keys []K, values []V, keyFn KeyFunc[K, V]) ([]V, []error) {
	lookup := make(map[K]V, len(values))
	for _, v := range values {
		lookup[keyFn(v)] = v
	}
	result := make([]V, len(keys))
	errs := make([]error, len(keys))
	for i, key := range keys {
		if v, ok := lookup[key]; ok {
			result[i] = v
		} else {
			errs[i] = ErrNotFound
		}
	}
	return result, errs
}

// GroupByKey groups values by key.
func GroupByKey[K comparable, V any](values []V, keyFn KeyFunc[K, V]) map[K][]V {
	result := make(map[K][]V)
	for _, v := range values {
		key := keyFn(v)
		result[key] = append(result[key], v)
	}
	return result
}

// OrderGroupsByKeys returns the groups in the order of keys.
func OrderGroupsByKeys[K comparable, V any](keys []K, groups map[K][]V) [][]V {
	result := make([][]V, len(keys))
	for i, key := range keys {
		result[i] = groups[key]
	}
	return result
}

// keyOf normalizes column values, so that 7 and int64(7) name the same
// key.
func keyOf(v any) string { return fmt.Sprint(v) }

// Option configures a Loader.
type Option func(*Loader)

// WithWait sets how long a batch collects keys before it is sent.
func WithWait(d time.Duration) Option {
	return func(l *Loader) { l.wait = d }
}

// WithMaxBatch sends a batch as soon as it holds n distinct keys.
func WithMaxBatch(n int) Option {
	return func(l *Loader) { l.maxBatch = n }
}

// Loader batches lookups of rows by a column of a relation.
type Loader struct {
	rel      *relation.Relation
	column   string
	wait     time.Duration
	maxBatch int

	mu    sync.Mutex
	batch *batch
}

type batch struct {
	ctx  context.Context
	keys []any
	seen map[string]struct{}
	done chan struct{}
	rows map[string][]dialect.Row
	err  error
}

// New returns a loader for the rows of rel by column.
func New(rel *relation.Relation, column string, opts ...Option) *Loader {
	l := &Loader{
		rel:      rel,
		column:   column,
		wait:     time.Millisecond,
		maxBatch: 100,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the first row whose column equals key.
func (l *Loader) Load(ctx context.Context, key any) (dialect.Row, error) {
	rows, err := l.LoadGroup(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s=%v", ErrNotFound, l.column, key)
	}
	return rows[0], nil
}

// LoadGroup returns the rows whose column equals key. The policy of the
// relation is evaluated for every caller before its key joins a batch.
func (l *Loader) LoadGroup(ctx context.Context, key any) ([]dialect.Row, error) {
	if err := l.rel.Authorize(ctx, mapper.OpSelect); err != nil {
		return nil, err
	}
	b := l.enqueue(ctx, key)
	select {
	case <-b.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if b.err != nil {
		return nil, b.err
	}
	return b.rows[keyOf(key)], nil
}

// LoadMany resolves keys with a single query, bypassing the batch window.
// The rows are returned in the order of keys.
func (l *Loader) LoadMany(ctx context.Context, keys []any) ([]dialect.Row, []error) {
	rows, err := l.fetch(ctx, keys)
	if err != nil {
		errs := make([]error, len(keys))
		for i := range errs {
			errs[i] = err
		}
		return make([]dialect.Row, len(keys)), errs
	}
	normalized := make([]string, len(keys))
	for i, k := range keys {
		normalized[i] = keyOf(k)
	}
	return OrderByKeys(normalized, rows, l.rowKey)
}

func (l *Loader) rowKey(row dialect.Row) string { return keyOf(row[l.column]) }

func (l *Loader) enqueue(ctx context.Context, key any) *batch {
	l.mu.Lock()
	defer l.mu.Unlock()
	b := l.batch
	if b == nil {
		b = &batch{
			ctx:  context.WithoutCancel(ctx),
			seen: make(map[string]struct{}),
			done: make(chan struct{}),
		}
		l.batch = b
		time.AfterFunc(l.wait, func() { l.dispatch(b) })
	}
	if _, ok := b.seen[keyOf(key)]; !ok {
		b.seen[keyOf(key)] = struct{}{}
		b.keys = append(b.keys, key)
	}
	if l.maxBatch > 0 && len(b.keys) >= l.maxBatch {
		l.batch = nil
		go l.run(b)
	}
	return b
}

// dispatch sends b unless it was already sent for reaching the maximum
// size.
func (l *Loader) dispatch(b *batch) {
	l.mu.Lock()
	if l.batch != b {
		l.mu.Unlock()
		return
	}
	l.batch = nil
	l.mu.Unlock()
	l.run(b)
}

func (l *Loader) run(b *batch) {
	defer close(b.done)
	rows, err := l.fetch(b.ctx, b.keys)
	if err != nil {
		b.err = err
		return
	}
	b.rows = GroupByKey(rows, l.rowKey)
}

func (l *Loader) fetch(ctx context.Context, keys []any) ([]dialect.Row, error) {
	return l.rel.Where(map[string]any{l.column: keys}).Execute(ctx)
}

type ctxKey struct{}

// WithLoaders injects loaders into the context.
//
//	ctx := dataloader.WithLoaders(r.Context(), &Loaders{
//	    UserByID: dataloader.New(users, "id"),
//	})
func WithLoaders[T any](ctx context.Context, loaders T) context.Context {
	return context.WithValue(ctx, ctxKey{}, loaders)
}

// For extracts loaders from the context.
func For[T any](ctx context.Context) T {
	v, _ := ctx.Value(ctxKey{}).(T)
	return v
}
