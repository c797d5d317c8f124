package db

import (
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/designs2/attribute-tags/errors"
)

// IsUniqueViolation reports whether err is a SQLite UNIQUE constraint failure,
// which for the relation table means a concurrent save tagged the same value.
// Errors that lost their driver type are matched by message.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
