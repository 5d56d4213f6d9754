package sql

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/syssam/mapper"
	"github.com/syssam/mapper/dialect"
)

// QueryStats accumulates statement statistics. Statements issued by a
// relation are attributed to the operation and table of its
// mapper.QueryContext; other statements to the operation implied by the
// driver method and no table.
type QueryStats struct {
	mu       sync.Mutex
	ops      map[mapper.Op]int64
	tables   map[string]int64
	duration time.Duration
	slow     int64
	errors   int64
}

func (s *QueryStats) observe(op mapper.Op, table string, d time.Duration, slow bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ops == nil {
		s.ops = make(map[mapper.Op]int64)
		s.tables = make(map[string]int64)
	}
	s.ops[op]++
	if table != "" {
		s.tables[table]++
	}
	s.duration += d
	if slow {
		s.slow++
	}
	if err != nil {
		s.errors++
	}
}

// Stats returns a snapshot of the current statistics.
func (s *QueryStats) Stats() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := StatsSnapshot{
		ByOp:     make(map[mapper.Op]int64, len(s.ops)),
		ByTable:  make(map[string]int64, len(s.tables)),
		Duration: s.duration,
		Slow:     s.slow,
		Errors:   s.errors,
	}
	for op, n := range s.ops {
		snap.ByOp[op] = n
		snap.Statements += n
	}
	for t, n := range s.tables {
		snap.ByTable[t] = n
	}
	return snap
}

// Reset clears all statistics.
func (s *QueryStats) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops, s.tables = nil, nil
	s.duration, s.slow, s.errors = 0, 0, 0
}

// StatsSnapshot is a point-in-time copy of QueryStats.
type StatsSnapshot struct {
	Statements int64
	ByOp       map[mapper.Op]int64
	ByTable    map[string]int64
	Duration   time.Duration
	Slow       int64
	Errors     int64
}

// Avg returns the average statement duration.
func (s StatsSnapshot) Avg() time.Duration {
	if s.Statements == 0 {
		return 0
	}
	return s.Duration / time.Duration(s.Statements)
}

// String summarizes the snapshot, e.g.
// "statements=3 select=2 update=1 duration=3ms avg=1ms slow=0 errors=0".
func (s StatsSnapshot) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "statements=%d", s.Statements)
	for _, op := range []mapper.Op{mapper.OpSelect, mapper.OpCalculate, mapper.OpInsert, mapper.OpUpdate, mapper.OpDelete} {
		if n := s.ByOp[op]; n > 0 {
			fmt.Fprintf(&b, " %s=%d", opLabel(op), n)
		}
	}
	fmt.Fprintf(&b, " duration=%s avg=%s slow=%d errors=%d", s.Duration, s.Avg(), s.Slow, s.Errors)
	return b.String()
}

func opLabel(op mapper.Op) string {
	return strings.ToLower(strings.TrimPrefix(op.String(), "Op"))
}

// SlowQueryHook is a function called when a slow statement is detected.
type SlowQueryHook func(ctx context.Context, query string, duration time.Duration)

// StatsDriver wraps a dialect.Driver with statement statistics collection.
type StatsDriver struct {
	dialect.Driver
	stats         *QueryStats
	slowThreshold time.Duration
	slowHook      SlowQueryHook
	mu            sync.RWMutex
}

// StatsOption configures the StatsDriver.
type StatsOption func(*StatsDriver)

// WithSlowThreshold sets the threshold for slow query detection.
// Statements taking longer than this duration are counted as slow.
// Default is 100ms.
func WithSlowThreshold(d time.Duration) StatsOption {
	return func(s *StatsDriver) {
		s.slowThreshold = d
	}
}

// WithSlowQueryHook sets a callback function for slow statements.
func WithSlowQueryHook(hook SlowQueryHook) StatsOption {
	return func(s *StatsDriver) {
		s.slowHook = hook
	}
}

// WithSlowQueryLog logs slow statements to the given logger, or to the
// default logger when l is nil. The table and operation of the relation
// that issued the statement are logged when known.
func WithSlowQueryLog(l *slog.Logger) StatsOption {
	return WithSlowQueryHook(func(ctx context.Context, query string, duration time.Duration) {
		logger := l
		if logger == nil {
			logger = slog.Default()
		}
		attrs := []any{"duration", duration, "query", query}
		if qc := mapper.QueryFromContext(ctx); qc != nil {
			attrs = append(attrs, "table", qc.Table, "op", qc.Op.String())
		}
		logger.WarnContext(ctx, "slow query detected", attrs...)
	})
}

// NewStatsDriver wraps a Driver with statistics collection.
//
// Example:
//
//	drv, _ := sql.Open("sqlite", "file:app.db")
//	statsDriver := sql.NewStatsDriver(drv,
//	    sql.WithSlowThreshold(200*time.Millisecond),
//	    sql.WithSlowQueryLog(nil),
//	)
//	users := relation.New(relation.Model{Name: "User"}, statsDriver)
//
//	// Later, check statistics:
//	fmt.Println(statsDriver.QueryStats().Stats())
func NewStatsDriver(drv dialect.Driver, opts ...StatsOption) *StatsDriver {
	s := &StatsDriver{
		Driver:        drv,
		stats:         new(QueryStats),
		slowThreshold: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// QueryStats returns the underlying QueryStats for reading statistics.
func (d *StatsDriver) QueryStats() *QueryStats {
	return d.stats
}

// SlowThreshold returns the current slow query threshold.
func (d *StatsDriver) SlowThreshold() time.Duration {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.slowThreshold
}

// SetSlowThreshold updates the slow query threshold.
func (d *StatsDriver) SetSlowThreshold(threshold time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.slowThreshold = threshold
}

// Execute runs a query and records statistics.
func (d *StatsDriver) Execute(ctx context.Context, query string) ([]dialect.Row, error) {
	start := time.Now()
	rows, err := d.Driver.Execute(ctx, query)
	d.record(ctx, mapper.OpSelect, query, start, err)
	return rows, err
}

// SelectValue runs a query and records statistics.
func (d *StatsDriver) SelectValue(ctx context.Context, query string) (any, error) {
	start := time.Now()
	v, err := d.Driver.SelectValue(ctx, query)
	d.record(ctx, mapper.OpCalculate, query, start, err)
	return v, err
}

// Insert runs an insert and records statistics.
func (d *StatsDriver) Insert(ctx context.Context, query string) (int64, error) {
	start := time.Now()
	id, err := d.Driver.Insert(ctx, query)
	d.record(ctx, mapper.OpInsert, query, start, err)
	return id, err
}

// Update runs an update and records statistics.
func (d *StatsDriver) Update(ctx context.Context, query string) (int64, error) {
	start := time.Now()
	n, err := d.Driver.Update(ctx, query)
	d.record(ctx, mapper.OpUpdate, query, start, err)
	return n, err
}

// Delete runs a delete and records statistics.
func (d *StatsDriver) Delete(ctx context.Context, query string) (int64, error) {
	start := time.Now()
	n, err := d.Driver.Delete(ctx, query)
	d.record(ctx, mapper.OpDelete, query, start, err)
	return n, err
}

func (d *StatsDriver) record(ctx context.Context, op mapper.Op, query string, start time.Time, err error) {
	duration := time.Since(start)
	table := ""
	if qc := mapper.QueryFromContext(ctx); qc != nil {
		op, table = qc.Op, qc.Table
	}
	d.mu.RLock()
	threshold, hook := d.slowThreshold, d.slowHook
	d.mu.RUnlock()

	slow := duration > threshold
	d.stats.observe(op, table, duration, slow, err)
	if slow && hook != nil {
		hook(ctx, query, duration)
	}
}

// DebugDriver wraps a dialect.Driver with debug logging.
type DebugDriver struct {
	dialect.Driver
	log func(context.Context, ...any)
}

// DebugOption configures the DebugDriver.
type DebugOption func(*DebugDriver)

// DebugWithLog sets a custom log function.
func DebugWithLog(logFunc func(context.Context, ...any)) DebugOption {
	return func(d *DebugDriver) {
		d.log = logFunc
	}
}

// DebugWithLogger logs statements to l at debug level.
func DebugWithLogger(l *slog.Logger) DebugOption {
	return DebugWithLog(func(ctx context.Context, v ...any) {
		l.DebugContext(ctx, fmt.Sprint(v...))
	})
}

// NewDebugDriver wraps a Driver with debug logging.
//
// Example:
//
//	drv, _ := sql.Open("mysql", dsn)
//	debugDriver := sql.NewDebugDriver(drv, sql.DebugWithLog(func(ctx context.Context, v ...any) {
//	    log.Println(v...)
//	}))
func NewDebugDriver(drv dialect.Driver, opts ...DebugOption) *DebugDriver {
	d := &DebugDriver{
		Driver: drv,
		log: func(_ context.Context, v ...any) {
			slog.Info(fmt.Sprint(v...))
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *DebugDriver) logf(ctx context.Context, kind, query string) {
	if qc := mapper.QueryFromContext(ctx); qc != nil {
		d.log(ctx, fmt.Sprintf("%s %s (%s): %s", kind, qc.Table, qc.Op, query))
		return
	}
	d.log(ctx, fmt.Sprintf("%s: %s", kind, query))
}

// Execute logs and runs a query.
func (d *DebugDriver) Execute(ctx context.Context, query string) ([]dialect.Row, error) {
	d.logf(ctx, "execute", query)
	return d.Driver.Execute(ctx, query)
}

// SelectValue logs and runs a query.
func (d *DebugDriver) SelectValue(ctx context.Context, query string) (any, error) {
	d.logf(ctx, "select value", query)
	return d.Driver.SelectValue(ctx, query)
}

// Insert logs and runs an insert.
func (d *DebugDriver) Insert(ctx context.Context, query string) (int64, error) {
	d.logf(ctx, "insert", query)
	return d.Driver.Insert(ctx, query)
}

// Update logs and runs an update.
func (d *DebugDriver) Update(ctx context.Context, query string) (int64, error) {
	d.logf(ctx, "update", query)
	return d.Driver.Update(ctx, query)
}

// Delete logs and runs a delete.
func (d *DebugDriver) Delete(ctx context.Context, query string) (int64, error) {
	d.logf(ctx, "delete", query)
	return d.Driver.Delete(ctx, query)
}

// Ensure interfaces are implemented.
var (
	_ dialect.Driver = (*StatsDriver)(nil)
	_ dialect.Driver = (*DebugDriver)(nil)
)

// OpenWithStats opens a database connection with statistics collection enabled.
//
// Example:
//
//	drv, stats, err := sql.OpenWithStats("postgres", dsn,
//	    sql.WithSlowThreshold(100*time.Millisecond),
//	    sql.WithSlowQueryLog(nil),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	go func() {
//	    for range time.Tick(time.Minute) {
//	        log.Printf("query stats: %s", stats.Stats())
//	    }
//	}()
func OpenWithStats(driverName, source string, opts ...StatsOption) (*StatsDriver, *QueryStats, error) {
	drv, err := Open(driverName, source)
	if err != nil {
		return nil, nil, err
	}
	statsDriver := NewStatsDriver(drv, opts...)
	return statsDriver, statsDriver.QueryStats(), nil
}
