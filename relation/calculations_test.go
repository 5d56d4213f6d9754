package relation

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/mapper"
	"github.com/syssam/mapper/dialect"
)

func valueRows(v any) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"value"}).AddRow(v)
}

func TestRelation_Count(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	rel, mock := mockUsers(t)

	mock.ExpectQuery(`SELECT COUNT(*) FROM "users"`).WillReturnRows(valueRows(int64(3)))
	n, err := rel.Order("name").Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	mock.ExpectQuery(`SELECT COUNT("users"."name") FROM "users" WHERE (age > 18)`).WillReturnRows(valueRows(int64(2)))
	assert.Equal(t, int64(2), rel.Where("age > 18").CountX(ctx, "name"))

	mock.ExpectQuery(`SELECT COUNT("users"."name") FROM "users"`).WillReturnRows(valueRows(int64(4)))
	n, err = rel.Select("name").Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	mock.ExpectQuery(`SELECT COUNT(*) FROM "users"`).WillReturnRows(valueRows("7"))
	n, err = rel.Count(ctx, "all")
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRelation_Aggregates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	rel, mock := mockUsers(t)

	mock.ExpectQuery(`SELECT SUM("users"."age") AS sum_id FROM "users"`).WillReturnRows(valueRows(int64(60)))
	sum, err := rel.Sum(ctx, "age")
	require.NoError(t, err)
	assert.Equal(t, 60.0, sum)

	mock.ExpectQuery(`SELECT AVG("users"."age") AS avg_id FROM "users"`).WillReturnRows(valueRows(20.5))
	avg, err := rel.Average(ctx, "age")
	require.NoError(t, err)
	assert.Equal(t, 20.5, avg)

	mock.ExpectQuery(`SELECT MAX("users"."age") AS max_id FROM "users"`).WillReturnRows(valueRows(int64(40)))
	hi, err := rel.Maximum(ctx, "age")
	require.NoError(t, err)
	assert.Equal(t, int64(40), hi)

	mock.ExpectQuery(`SELECT MIN("users"."age") AS min_id FROM "users" WHERE (1=0)`).WillReturnRows(valueRows(nil))
	lo, err := rel.Where("1=0").Minimum(ctx, "age")
	require.NoError(t, err)
	assert.Equal(t, int64(0), lo)

	mock.ExpectQuery(`SELECT SUM(DISTINCT "users"."age") AS sum_id FROM "users" WHERE (age > 18)`).WillReturnRows(valueRows(int64(9)))
	v, err := rel.Calculate(ctx, "SUM", "age", Options{"distinct": true, "conditions": "age > 18"})
	require.NoError(t, err)
	assert.Equal(t, int64(9), v)

	mock.ExpectQuery(`SELECT COUNT(DISTINCT "users"."role") FROM "users"`).WillReturnRows(valueRows(int64(2)))
	v, err = rel.Calculate(ctx, OpCount, "role", Options{"distinct": "true"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRelation_GroupedCalculation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	rel, mock := mockUsers(t)

	mock.ExpectQuery(`SELECT COUNT(*) AS count_all, role AS role FROM "users" GROUP BY role`).
		WillReturnRows(sqlmock.NewRows([]string{"count_all", "role"}).
			AddRow(int64(2), "admin").
			AddRow(int64(5), "member"))
	v, err := rel.Group("role").Calculate(ctx, OpCount, "", nil)
	require.NoError(t, err)
	assert.Equal(t, []dialect.Row{
		{"count_all": int64(2), "role": "admin"},
		{"count_all": int64(5), "role": "member"},
	}, v)

	mock.ExpectQuery(`SELECT MAX("users"."age") AS maximum_age, role AS role, lower(name) AS lower_name FROM "users" GROUP BY role, lower(name)`).
		WillReturnRows(sqlmock.NewRows([]string{"maximum_age", "role", "lower_name"}))
	v, err = rel.Group("role", "lower(name)", "role").Calculate(ctx, OpMaximum, "age", nil)
	require.NoError(t, err)
	assert.Empty(t, v)

	_, err = rel.Group("role").Count(ctx)
	assert.ErrorIs(t, err, ErrGrouped)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRelation_CalculationErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	rel, mock := mockUsers(t)

	_, err := rel.Calculate(ctx, "median", "age", nil)
	assert.EqualError(t, err, `relation: unknown calculation "median"`)

	boom := errors.New("boom")
	mock.ExpectQuery(`SELECT COUNT(*) FROM "users"`).WillReturnError(boom)
	_, err = rel.Count(ctx)
	var qe *mapper.QueryError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, OpCount, qe.Op)
	assert.ErrorIs(t, err, boom)

	mock.ExpectQuery(`SELECT COUNT(*) FROM "users"`).WillReturnRows(valueRows("many"))
	_, err = rel.Count(ctx)
	assert.Error(t, err)

	_, err = rel.Where("a = ?").Bind(1, 2).Sum(ctx, "age")
	assert.ErrorContains(t, err, "1 unused bind values")

	_, err = rel.Where("a = ?", 1, 2).Sum(ctx, "age")
	assert.ErrorIs(t, err, mapper.ErrBindCount)
	require.NoError(t, mock.ExpectationsWereMet())
}
