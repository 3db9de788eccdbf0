package domain

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// MaxUsernameLength is the longest username, in characters, that every
// backend can store. It matches the VARCHAR(255) column used by the relational engines.
const MaxUsernameLength = 255

var validate = validator.New()

// User is the single entity managed by the service.
//
// ID is assigned by the backend and its meaning varies: an auto-increment key
// for the relational engines, a counter value for Redis, and a display-only
// surrogate derived from the ObjectID for MongoDB. It is never used as a
// lookup key; Username is.
type User struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Age      uint32 `json:"age"`
}

// CreateUser is the payload for creating a user. Age always starts at 0.
type CreateUser struct {
	Username string `json:"username" validate:"required,max=255,excludes=/"`
}

// UpdateUser is the payload for updating a user. Only the age is mutable.
type UpdateUser struct {
	Age uint32 `json:"age"`
}

// NewUser returns a freshly created user with the default age.
func NewUser(id uint64, username string) *User {
	return &User{
		ID:       id,
		Username: username,
		Age:      0,
	}
}

// Validate checks the create request before it reaches a backend.
// The returned error wraps ErrValidation and one of the specific username errors.
func (c CreateUser) Validate() error {
	if strings.TrimSpace(c.Username) == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyUsername)
	}
	if !utf8.ValidString(c.Username) {
		return fmt.Errorf("%w: %w", ErrValidation, ErrInvalidUsername)
	}

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			switch verrs[0].Tag() {
			case "max":
				return fmt.Errorf("%w: %w", ErrValidation, ErrUsernameTooLong)
			case "required":
				return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyUsername)
			}
		}
		return fmt.Errorf("%w: %w", ErrValidation, ErrInvalidUsername)
	}

	return nil
}

// Apply returns a copy of u with the update applied. ID and Username are preserved.
func (upd UpdateUser) Apply(u User) User {
	u.Age = upd.Age
	return u
}

// CreatedMessage is the confirmation returned by every backend after a
// successful create.
func CreatedMessage(username string) string {
	return fmt.Sprintf("User created with username: %s", username)
}
