package tags

import (
	"context"

	"github.com/designs2/attribute-tags/errors"
	"github.com/designs2/attribute-tags/internal/idset"
	"github.com/designs2/attribute-tags/logger"
)

// Plan is the change set for one item. Remove, Add and Update are pairwise
// disjoint and together cover existing ∪ target.
type Plan struct {
	// Remove holds existing values missing from the target, in existing order
	Remove []int64
	// Add holds target values not yet stored, ascending
	Add []int64
	// Update holds values present on both sides, ascending
	Update []int64
}

// IsEmpty reports whether the plan changes nothing
func (p Plan) IsEmpty() bool {
	return len(p.Remove) == 0 && len(p.Add) == 0 && len(p.Update) == 0
}

// Diff computes the change set turning existing into target
func Diff(existing []int64, target Values) Plan {
	current := idset.Of(existing...)
	wanted := make(idset.Set[int64], len(target))
	for id := range target {
		wanted.Add(id)
	}

	var plan Plan
	plan.Remove = idset.Without(idset.Unique(existing), wanted)
	for _, id := range wanted.Sorted() {
		if current.Has(id) {
			plan.Update = append(plan.Update, id)
		} else {
			plan.Add = append(plan.Add, id)
		}
	}
	return plan
}

// SetDataFor replaces the values of every item in targets. A nil target
// removes all values of the item. Rows are deleted per item, sortings of kept
// values are updated when the target carries one, and new rows are inserted
// in a single statement. Everything runs in one transaction.
func (b *base) SetDataFor(ctx context.Context, targets map[int64]Values) error {
	if !b.configured() || len(targets) == 0 {
		return nil
	}

	itemIDs := make([]int64, 0, len(targets))
	for id := range targets {
		itemIDs = append(itemIDs, id)
	}
	idset.Sort(itemIDs)

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	store := b.store.With(tx)
	existing, err := store.ByItem(ctx, itemIDs)
	if err != nil {
		return err
	}

	var (
		inserts          []Relation
		removed, updated int
		pos              int
	)
	for _, itemID := range itemIDs {
		var current []int64
		for pos < len(existing) && existing[pos].ItemID == itemID {
			current = append(current, existing[pos].ValueID)
			pos++
		}

		target := targets[itemID]
		plan := Diff(current, target)
		if plan.IsEmpty() {
			continue
		}

		if err := store.Delete(ctx, itemID, plan.Remove); err != nil {
			return err
		}
		removed += len(plan.Remove)

		for _, valueID := range plan.Add {
			inserts = append(inserts, Relation{
				AttributeID: b.settings.ID,
				ItemID:      itemID,
				ValueID:     valueID,
				Sorting:     target[valueID].sortingOrZero(),
			})
		}

		for _, valueID := range plan.Update {
			sorting := target[valueID].Sorting
			if sorting == nil {
				continue
			}
			if err := store.UpdateSorting(ctx, itemID, valueID, *sorting); err != nil {
				return err
			}
			updated++
		}
	}

	if err := store.Insert(ctx, inserts); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit tag values")
	}

	b.log(ctx).Debugw("Saved tag values",
		logger.FieldItemCount, len(itemIDs),
		logger.FieldRemoved, removed,
		logger.FieldAdded, len(inserts),
		logger.FieldUpdated, updated,
	)
	return nil
}
