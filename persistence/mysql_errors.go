package persistence

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

const mysqlErrDuplicateEntry = 1062

// IsDuplicateEntryError reports whether err is a violation of a unique index.
// Uniqueness races are closed at the storage layer, so callers translate this
// into their domain conflict instead of pre-checking with a read.
func IsDuplicateEntryError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlErrDuplicateEntry
	}
	return false
}
