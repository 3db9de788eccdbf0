package api

import (
	"github.com/phrazzld/userstore/internal/domain"
)

// CreateUserRequest defines the payload for POST /users.
type CreateUserRequest struct {
	Username string `json:"username"`
}

// UpdateUserRequest defines the payload for PATCH and PUT /users/{username}.
// Age is a pointer so a missing field can be told apart from zero.
type UpdateUserRequest struct {
	Age *uint32 `json:"age" validate:"required"`
}

// CreateUserResponse is returned by a successful create.
type CreateUserResponse struct {
	Message string `json:"message"`
}

// UserResponse represents a stored user.
type UserResponse struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Age      uint32 `json:"age"`
}

func userToResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Age:      u.Age,
	}
}
