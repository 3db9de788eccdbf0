package mysql

import (
	"errors"
	"fmt"

	driver "github.com/go-sql-driver/mysql"
	"github.com/phrazzld/userstore/internal/store"
)

// MySQL server error numbers
const (
	// duplicateEntryCode is ER_DUP_ENTRY, raised by unique index violations.
	duplicateEntryCode uint16 = 1062

	// duplicateKeyNameCode is ER_DUP_KEYNAME, raised by CREATE INDEX when the
	// index already exists.
	duplicateKeyNameCode uint16 = 1061
)

func errorNumber(err error) (uint16, bool) {
	var myErr *driver.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number, true
	}
	return 0, false
}

// IsUniqueViolation checks if the error is a duplicate entry on a unique index.
func IsUniqueViolation(err error) bool {
	n, ok := errorNumber(err)
	return ok && n == duplicateEntryCode
}

func isDuplicateKeyName(err error) bool {
	n, ok := errorNumber(err)
	return ok && n == duplicateKeyNameCode
}

// MapError maps a MySQL error from an operation on username to the
// normalized store error.
func MapError(err error, op string, username string) error {
	if err == nil {
		return nil
	}
	if IsUniqueViolation(err) {
		return store.Conflict(username)
	}
	return store.Backend(store.EngineMySQL, fmt.Sprintf("%s %s", op, username), err)
}
