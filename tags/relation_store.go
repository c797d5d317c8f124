package tags

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	"github.com/spf13/cast"

	"github.com/designs2/attribute-tags/db"
	"github.com/designs2/attribute-tags/errors"
	"github.com/designs2/attribute-tags/internal/idset"
)

const (
	RelationTableName               = "tag_relation"
	RelationTableAttributeIDColName = "att_id"
	RelationTableItemIDColName      = "item_id"
	RelationTableSortingColName     = "value_sorting"
	RelationTableValueIDColName     = "value_id"
)

var (
	relationTable       = goqu.T(RelationTableName)
	relationAttributeID = relationTable.Col(RelationTableAttributeIDColName)
	relationItemID      = relationTable.Col(RelationTableItemIDColName)
	relationSorting     = relationTable.Col(RelationTableSortingColName)
	relationValueID     = relationTable.Col(RelationTableValueIDColName)
)

// Relation is one row of the relation table
type Relation struct {
	AttributeID int64
	ItemID      int64
	ValueID     int64
	Sorting     int
}

// RelationStore reads and writes the relation rows of one attribute
type RelationStore struct {
	q           db.Querier
	attributeID int64
}

// NewRelationStore creates a store for attributeID
func NewRelationStore(q db.Querier, attributeID int64) *RelationStore {
	return &RelationStore{q: q, attributeID: attributeID}
}

// With returns a store issuing its statements through q, typically a transaction
func (s *RelationStore) With(q db.Querier) *RelationStore {
	return &RelationStore{q: q, attributeID: s.attributeID}
}

func (s *RelationStore) selectRelations() *goqu.SelectDataset {
	return db.Dialect.From(relationTable).Prepared(true).
		Select(relationAttributeID, relationItemID, relationValueID, relationSorting).
		Where(relationAttributeID.Eq(s.attributeID))
}

func (s *RelationStore) load(ctx context.Context, ds *goqu.SelectDataset) ([]Relation, error) {
	rows, err := db.QueryRows(ctx, s.q, ds)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load relations of attribute %d", s.attributeID)
	}
	out := make([]Relation, 0, len(rows))
	for _, row := range rows {
		out = append(out, Relation{
			AttributeID: cast.ToInt64(row[RelationTableAttributeIDColName]),
			ItemID:      cast.ToInt64(row[RelationTableItemIDColName]),
			ValueID:     cast.ToInt64(row[RelationTableValueIDColName]),
			Sorting:     cast.ToInt(row[RelationTableSortingColName]),
		})
	}
	return out, nil
}

// ByItem returns the rows of itemIDs grouped contiguously by ascending item id
func (s *RelationStore) ByItem(ctx context.Context, itemIDs []int64) ([]Relation, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}
	return s.load(ctx, s.selectRelations().
		Where(relationItemID.In(itemIDs)).
		Order(relationItemID.Asc(), relationValueID.Asc()))
}

// Sorted returns the rows of itemIDs ordered by their stored sorting
func (s *RelationStore) Sorted(ctx context.Context, itemIDs []int64) ([]Relation, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}
	return s.load(ctx, s.selectRelations().
		Where(relationItemID.In(itemIDs)).
		Order(relationSorting.Asc(), relationItemID.Asc(), relationValueID.Asc()))
}

// Insert adds rows in one statement
func (s *RelationStore) Insert(ctx context.Context, relations []Relation) error {
	if len(relations) == 0 {
		return nil
	}
	vals := make([][]interface{}, 0, len(relations))
	for _, r := range relations {
		vals = append(vals, []interface{}{s.attributeID, r.ItemID, r.Sorting, r.ValueID})
	}
	ds := db.Dialect.Insert(relationTable).Prepared(true).
		Cols(RelationTableAttributeIDColName, RelationTableItemIDColName,
			RelationTableSortingColName, RelationTableValueIDColName).
		Vals(vals...)
	if _, err := db.Exec(ctx, s.q, ds); err != nil {
		if db.IsUniqueViolation(err) {
			return errors.WithHint(
				errors.WrapConflict(err, "failed to insert "+cast.ToString(len(relations))+" relations"),
				"another save stored the same values; reload the item and retry")
		}
		return errors.Wrapf(err, "failed to insert %d relations", len(relations))
	}
	return nil
}

// Delete removes the given values from one item
func (s *RelationStore) Delete(ctx context.Context, itemID int64, valueIDs []int64) error {
	if len(valueIDs) == 0 {
		return nil
	}
	ds := db.Dialect.Delete(relationTable).Prepared(true).Where(
		relationAttributeID.Eq(s.attributeID),
		relationItemID.Eq(itemID),
		relationValueID.In(valueIDs),
	)
	if _, err := db.Exec(ctx, s.q, ds); err != nil {
		return errors.Wrapf(err, "failed to remove values from item %d", itemID)
	}
	return nil
}

// DeleteItems removes every row of the given items
func (s *RelationStore) DeleteItems(ctx context.Context, itemIDs []int64) error {
	if len(itemIDs) == 0 {
		return nil
	}
	ds := db.Dialect.Delete(relationTable).Prepared(true).Where(
		relationAttributeID.Eq(s.attributeID),
		relationItemID.In(itemIDs),
	)
	if _, err := db.Exec(ctx, s.q, ds); err != nil {
		return errors.Wrapf(err, "failed to remove relations of %d items", len(itemIDs))
	}
	return nil
}

// UpdateSorting sets the sorting of one existing row
func (s *RelationStore) UpdateSorting(ctx context.Context, itemID, valueID int64, sorting int) error {
	ds := db.Dialect.Update(relationTable).Prepared(true).
		Set(goqu.Record{RelationTableSortingColName: sorting}).
		Where(
			relationAttributeID.Eq(s.attributeID),
			relationItemID.Eq(itemID),
			relationValueID.Eq(valueID),
		)
	if _, err := db.Exec(ctx, s.q, ds); err != nil {
		return errors.Wrapf(err, "failed to update sorting of value %d on item %d", valueID, itemID)
	}
	return nil
}

// UsedValueIDs returns the distinct non-zero value ids in use, optionally
// restricted to itemIDs
func (s *RelationStore) UsedValueIDs(ctx context.Context, itemIDs []int64) ([]int64, error) {
	ds := db.Dialect.From(relationTable).Prepared(true).
		Select(relationValueID).
		Where(relationAttributeID.Eq(s.attributeID)).
		GroupBy(relationValueID).
		Order(relationValueID.Asc())
	if len(itemIDs) > 0 {
		ds = ds.Where(relationItemID.In(itemIDs))
	}
	ids, err := db.QueryInt64s(ctx, s.q, ds)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load used values of attribute %d", s.attributeID)
	}
	return idset.NonZero(ids), nil
}

// CountByValue counts the items per value, restricted to valueIDs and,
// when given, to itemIDs
func (s *RelationStore) CountByValue(ctx context.Context, valueIDs, itemIDs []int64) (map[int64]int64, error) {
	counts := make(map[int64]int64)
	if len(valueIDs) == 0 {
		return counts, nil
	}
	ds := db.Dialect.From(relationTable).Prepared(true).
		Select(relationValueID, goqu.COUNT(relationItemID).As("amount")).
		Where(relationAttributeID.Eq(s.attributeID), relationValueID.In(valueIDs)).
		GroupBy(relationValueID)
	if len(itemIDs) > 0 {
		ds = ds.Where(relationItemID.In(itemIDs))
	}
	rows, err := db.QueryRows(ctx, s.q, ds)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to count values of attribute %d", s.attributeID)
	}
	for _, row := range rows {
		counts[cast.ToInt64(row[RelationTableValueIDColName])] = cast.ToInt64(row["amount"])
	}
	return counts, nil
}

// ItemsWithValues returns the distinct items referencing any of valueIDs
func (s *RelationStore) ItemsWithValues(ctx context.Context, valueIDs []int64) ([]int64, error) {
	if len(valueIDs) == 0 {
		return []int64{}, nil
	}
	ds := db.Dialect.From(relationTable).Prepared(true).
		Select(relationItemID).Distinct().
		Where(relationAttributeID.Eq(s.attributeID), relationValueID.In(valueIDs)).
		Order(relationItemID.Asc())
	ids, err := db.QueryInt64s(ctx, s.q, ds)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to match items of attribute %d", s.attributeID)
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}
