package relation

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/syssam/mapper"
	"github.com/syssam/mapper/nodes"
)

// Calculation operations.
const (
	OpCount   = "count"
	OpSum     = "sum"
	OpAverage = "average"
	OpMinimum = "minimum"
	OpMaximum = "maximum"
)

// ErrGrouped is returned by the scalar calculations of a grouped
// relation. Use Calculate to get the rows of each group.
var ErrGrouped = errors.New("relation: grouped calculation")

// Count returns the number of rows. A column name counts its non-null
// values; the column may be omitted, or be "*" or "all", to count rows.
func (r *Relation) Count(ctx context.Context, column ...string) (int64, error) {
	v, err := r.scalar(ctx, OpCount, first(column))
	if err != nil {
		return 0, err
	}
	return toInt64(v)
}

// CountX is like Count, but panics if an error occurs.
func (r *Relation) CountX(ctx context.Context, column ...string) int64 {
	n, err := r.Count(ctx, column...)
	if err != nil {
		panic(err)
	}
	return n
}

// Sum returns the sum of the column, or 0 when there are no rows.
func (r *Relation) Sum(ctx context.Context, column string) (float64, error) {
	v, err := r.scalar(ctx, OpSum, column)
	if err != nil {
		return 0, err
	}
	return toFloat64(v)
}

// Average returns the average of the column, or 0 when there are no rows.
func (r *Relation) Average(ctx context.Context, column string) (float64, error) {
	v, err := r.scalar(ctx, OpAverage, column)
	if err != nil {
		return 0, err
	}
	return toFloat64(v)
}

// Minimum returns the minimum of the column as returned by the driver, or
// 0 when there are no rows.
func (r *Relation) Minimum(ctx context.Context, column string) (any, error) {
	return r.scalar(ctx, OpMinimum, column)
}

// Maximum returns the maximum of the column as returned by the driver, or
// 0 when there are no rows.
func (r *Relation) Maximum(ctx context.Context, column string) (any, error) {
	return r.scalar(ctx, OpMaximum, column)
}

func (r *Relation) scalar(ctx context.Context, op, column string) (any, error) {
	if len(r.groups) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrGrouped, op)
	}
	return r.Calculate(ctx, op, column, nil)
}

// Calculate computes the aggregate op over column. Finder options are
// applied to the relation first; the "distinct" option makes the
// aggregate DISTINCT.
//
// An ungrouped relation issues one scalar query and returns its value,
// or 0 when the database returns NULL. A grouped relation returns a
// []dialect.Row holding each group's columns and the aggregate, aliased
// by ColumnAliasFor.
func (r *Relation) Calculate(ctx context.Context, op, column string, opts Options) (any, error) {
	distinct := truthy(opts["distinct"])
	rest := make(Options, len(opts))
	for k, v := range opts {
		if k != "distinct" {
			rest[k] = v
		}
	}
	rel := r
	if len(rest) > 0 {
		rel = r.ApplyFinderOptions(rest)
	}
	op = strings.ToLower(op)
	if op == OpCount && column == "" && len(rel.selects) == 1 {
		column = rel.visitor().Visit(rel.selects[0])
	}
	if len(rel.groups) > 0 {
		return rel.groupedCalculation(ctx, op, column, distinct)
	}
	return rel.simpleCalculation(ctx, op, column, distinct)
}

func (r *Relation) simpleCalculation(ctx context.Context, op, column string, distinct bool) (any, error) {
	agg, err := r.aggregate(op, column, distinct)
	if err != nil {
		return nil, err
	}
	rel := r.Except(ClauseOrder, ClauseSelect)
	rel.selects = []nodes.Node{agg}
	sql, err := rel.ToSQL()
	if err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, ErrNoDriver
	}
	ctx, err = rel.queryContext(ctx, mapper.OpCalculate)
	if err != nil {
		return nil, err
	}
	r.log(ctx, mapper.OpCalculate, sql)
	v, err := r.driver.SelectValue(ctx, sql)
	if err != nil {
		return nil, mapper.NewQueryError(r.model.TableName(), op, err)
	}
	if v == nil {
		return int64(0), nil
	}
	return v, nil
}

func (r *Relation) groupedCalculation(ctx context.Context, op, column string, distinct bool) (any, error) {
	agg, err := r.aggregate(op, column, distinct)
	if err != nil {
		return nil, err
	}
	if column == "" {
		column = "*"
	}
	v := r.visitor()
	groups := r.uniq(r.groups)
	fields := make([]string, len(groups))
	selects := []nodes.Node{agg.As(ColumnAliasFor(op, column))}
	for i, g := range groups {
		fields[i] = v.Visit(g)
		selects = append(selects, nodes.SQL(fields[i]+" AS "+ColumnAliasFor(fields[i])))
	}
	rel := r.Except(ClauseGroup, ClauseSelect).Group(strings.Join(fields, ", "))
	rel.selects = selects
	sql, err := rel.ToSQL()
	if err != nil {
		return nil, err
	}
	rows, err := rel.selectRows(ctx, mapper.OpCalculate, sql)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// aggregate returns the aggregate function of op over column.
func (r *Relation) aggregate(op, column string, distinct bool) (*nodes.Function, error) {
	n, err := r.column(column)
	if err != nil {
		return nil, err
	}
	expr, ok := n.(nodes.Expression)
	if !ok {
		return nil, fmt.Errorf("relation: cannot aggregate %T", n)
	}
	var f *nodes.Function
	switch op {
	case OpCount:
		return expr.Count(distinct), nil
	case OpSum:
		f = expr.Sum()
	case OpAverage, "avg":
		f = expr.Average()
	case OpMinimum, "min":
		f = expr.Minimum()
	case OpMaximum, "max":
		f = expr.Maximum()
	default:
		return nil, fmt.Errorf("relation: unknown calculation %q", op)
	}
	f.Distinct = distinct
	return f, nil
}

var (
	nonWordRe = regexp.MustCompile(`\W+`)
	lower     = cases.Lower(language.Und)
)

// ColumnAliasFor returns the alias the database returns for the given
// keys, joined with a space:
//
//	ColumnAliasFor("users.id")                 // "users_id"
//	ColumnAliasFor("sum(id)")                  // "sum_id"
//	ColumnAliasFor("count(distinct users.id)") // "count_distinct_users_id"
//	ColumnAliasFor("count(*)")                 // "count_all"
//	ColumnAliasFor("count", "id")              // "count_id"
func ColumnAliasFor(keys ...string) string {
	name := lower.String(strings.Join(keys, " "))
	name = strings.ReplaceAll(name, "*", "all")
	name = nonWordRe.ReplaceAllString(name, " ")
	return strings.Join(strings.Fields(name), "_")
}

func first(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case uint64:
		return int64(n), nil
	case float64:
		return int64(n), nil
	case []byte:
		return strconv.ParseInt(string(n), 10, 64)
	case string:
		return strconv.ParseInt(n, 10, 64)
	}
	return 0, fmt.Errorf("relation: unexpected count type %T", v)
}

func toFloat64(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int:
		return float64(n), nil
	case []byte:
		return strconv.ParseFloat(string(n), 64)
	case string:
		return strconv.ParseFloat(n, 64)
	}
	return 0, fmt.Errorf("relation: unexpected aggregate type %T", v)
}
