package tags

import (
	"context"
	"html"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/designs2/attribute-tags/db"
	"github.com/designs2/attribute-tags/errors"
)

// RawPredicate is an administrator-entered SQL boolean expression restricting
// a plain source table. It is inserted into queries verbatim and must never
// come from end users.
type RawPredicate string

// NewRawPredicate decodes HTML entities left by the configuration backend
func NewRawPredicate(configured string) RawPredicate {
	return RawPredicate(strings.TrimSpace(html.UnescapeString(configured)))
}

// IsZero reports whether no predicate is configured
func (p RawPredicate) IsZero() bool {
	return p == ""
}

// Expression wraps the predicate in parentheses for use in a WHERE clause
func (p RawPredicate) Expression() exp.LiteralExpression {
	return goqu.L("(" + string(p) + ")")
}

// ValidatePredicate dry-runs the source query with the configured predicate.
// A failing query is reported as errors.ErrQueryFailed so the settings can be
// rejected before they are stored.
func ValidatePredicate(ctx context.Context, q db.Querier, s Settings) error {
	src, err := Resolve(s)
	if err != nil {
		return err
	}
	if src.Kind != SourceSQLTable || src.Where.IsZero() {
		return nil
	}

	ds := db.Dialect.From(goqu.T(src.Table)).Prepared(true).
		Where(src.Where.Expression()).
		Order(goqu.C(src.SortColumn).Asc()).
		Limit(1)
	query, args, err := db.Build(ds)
	if err != nil {
		return err
	}
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return errors.WithHint(
			errors.WrapQueryFailed(err, "where predicate rejected"),
			"check the condition against the columns of "+src.Table)
	}
	defer rows.Close()
	for rows.Next() {
	}
	if err := rows.Err(); err != nil {
		return errors.WrapQueryFailed(err, "where predicate rejected")
	}
	return nil
}
