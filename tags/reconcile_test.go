package tags

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/designs2/attribute-tags/errors"
	"github.com/designs2/attribute-tags/internal/idset"
)

func TestDiff(t *testing.T) {
	tests := []struct {
		name     string
		existing []int64
		target   Values
		want     Plan
	}{
		{
			name:     "fresh item",
			existing: nil,
			target:   target(5, 3),
			want:     Plan{Add: []int64{3, 5}},
		},
		{
			name:     "nil target removes everything",
			existing: []int64{4, 1},
			target:   nil,
			want:     Plan{Remove: []int64{4, 1}},
		},
		{
			name:     "mixed",
			existing: []int64{1, 2, 3},
			target:   target(3, 4, 2),
			want:     Plan{Remove: []int64{1}, Add: []int64{4}, Update: []int64{2, 3}},
		},
		{
			name:     "unchanged",
			existing: []int64{2},
			target:   target(2),
			want:     Plan{Update: []int64{2}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := Diff(tt.existing, tt.target)
			assert.Equal(t, tt.want, plan)
			assert.False(t, plan.IsEmpty())
		})
	}

	assert.True(t, Diff(nil, nil).IsEmpty())
	assert.True(t, Diff([]int64{}, Values{}).IsEmpty())
}

func TestDiff_DisjointAndCovering(t *testing.T) {
	cases := []struct {
		existing []int64
		target   []int64
	}{
		{[]int64{1, 2, 3, 4}, []int64{3, 4, 5, 6}},
		{[]int64{}, []int64{1}},
		{[]int64{9, 8, 7}, []int64{}},
		{[]int64{1, 1, 2}, []int64{2, 2, 3}},
	}

	for _, c := range cases {
		plan := Diff(c.existing, target(idset.Unique(c.target)...))

		seen := make(map[int64]int)
		for _, set := range [][]int64{plan.Remove, plan.Add, plan.Update} {
			for _, id := range set {
				seen[id]++
			}
		}
		union := idset.Of(append(append([]int64{}, c.existing...), c.target...)...)
		assert.Len(t, seen, len(union))
		for id, n := range seen {
			assert.Equal(t, 1, n, "value %d appears in more than one set", id)
			assert.True(t, union.Has(id))
		}
	}
}

func newMockAttribute(t *testing.T, settings Settings) (Attribute, sqlmock.Sqlmock) {
	t.Helper()
	database, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return New(settings, Deps{DB: database, Logger: zaptest.NewLogger(t).Sugar()}), mock
}

func TestSetDataFor_StatementShape(t *testing.T) {
	ctx := context.Background()
	a, mock := newMockAttribute(t, colorSettings())

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM `tag_relation` WHERE .+ORDER BY `tag_relation`.`item_id` ASC").
		WillReturnRows(sqlmock.NewRows([]string{"att_id", "item_id", "value_id", "value_sorting"}).
			AddRow(1, 42, 1, 0).
			AddRow(1, 42, 2, 1).
			AddRow(1, 43, 5, 0))
	mock.ExpectExec("DELETE FROM `tag_relation`").
		WithArgs(1, 42, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE `tag_relation` SET `value_sorting`=\\?").
		WithArgs(0, 1, 42, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM `tag_relation`").
		WithArgs(1, 43, 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `tag_relation` \\(`att_id`, `item_id`, `value_sorting`, `value_id`\\) VALUES \\(\\?, \\?, \\?, \\?\\), \\(\\?, \\?, \\?, \\?\\)").
		WithArgs(1, 42, 1, 3, 1, 43, 0, 6).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	err := a.SetDataFor(ctx, map[int64]Values{
		43: {6: {}},
		42: {2: {Sorting: Position(0)}, 3: {Sorting: Position(1)}},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetDataFor_SkipsUpdateWithoutSorting(t *testing.T) {
	ctx := context.Background()
	a, mock := newMockAttribute(t, colorSettings())

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM `tag_relation`").
		WillReturnRows(sqlmock.NewRows([]string{"att_id", "item_id", "value_id", "value_sorting"}).
			AddRow(1, 42, 2, 4))
	mock.ExpectCommit()

	require.NoError(t, a.SetDataFor(ctx, map[int64]Values{42: {2: {}}}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetDataFor_RollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	a, mock := newMockAttribute(t, colorSettings())

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM `tag_relation`").
		WillReturnRows(sqlmock.NewRows([]string{"att_id", "item_id", "value_id", "value_sorting"}))
	mock.ExpectExec("INSERT INTO `tag_relation`").
		WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	err := a.SetDataFor(ctx, map[int64]Values{42: target(1)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert 1 relations")
	assert.False(t, errors.IsConflict(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetDataFor_ConcurrentInsertIsConflict(t *testing.T) {
	ctx := context.Background()
	a, mock := newMockAttribute(t, colorSettings())

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM `tag_relation`").
		WillReturnRows(sqlmock.NewRows([]string{"att_id", "item_id", "value_id", "value_sorting"}))
	mock.ExpectExec("INSERT INTO `tag_relation`").
		WillReturnError(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique})
	mock.ExpectRollback()

	err := a.SetDataFor(ctx, map[int64]Values{42: target(1)})
	require.Error(t, err)
	assert.True(t, errors.IsConflict(err))
	assert.NotEmpty(t, errors.GetAllHints(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRelationStore_InsertDuplicateIsConflict(t *testing.T) {
	ctx := context.Background()
	a := newTestAttribute(t, setupColors(t), colorSettings())
	relation := Relation{AttributeID: 1, ItemID: 42, ValueID: 1}

	require.NoError(t, a.Relations().Insert(ctx, []Relation{relation}))
	err := a.Relations().Insert(ctx, []Relation{relation})
	require.Error(t, err)
	assert.True(t, errors.IsConflict(err))
}

func TestSetDataFor_MisconfiguredIssuesNothing(t *testing.T) {
	ctx := context.Background()
	settings := colorSettings()
	settings.Table = ""
	a, mock := newMockAttribute(t, settings)

	require.NoError(t, a.SetDataFor(ctx, map[int64]Values{42: target(1)}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnsetDataFor_StatementShape(t *testing.T) {
	ctx := context.Background()
	a, mock := newMockAttribute(t, colorSettings())

	mock.ExpectExec("DELETE FROM `tag_relation` WHERE \\(\\(`tag_relation`.`att_id` = \\?\\) AND \\(`tag_relation`.`item_id` IN \\(\\?, \\?\\)\\)\\)").
		WithArgs(1, 42, 43).
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, a.UnsetDataFor(ctx, []int64{42, 43}))

	err := a.UnsetDataFor(ctx, []int64{-1})
	assert.True(t, errors.IsInvalidArgument(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
