package mongo

import (
	"fmt"
	"strings"

	"github.com/phrazzld/userstore/internal/store"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// duplicateKeyMarkers catch duplicate key failures the driver does not
// surface as a typed error, such as those from a mongos router.
var duplicateKeyMarkers = []string{"E11000", "duplicate key"}

// IsDuplicateKey checks if the error reports a unique index violation.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if mongo.IsDuplicateKeyError(err) {
		return true
	}
	msg := err.Error()
	for _, marker := range duplicateKeyMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// MapError maps a driver error from an operation on username to the
// normalized store error.
func MapError(err error, op string, username string) error {
	if err == nil {
		return nil
	}
	if IsDuplicateKey(err) {
		return store.Conflict(username)
	}
	return store.Backend(store.EngineMongo, fmt.Sprintf("%s %s", op, username), err)
}
