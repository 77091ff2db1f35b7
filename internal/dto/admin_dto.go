package dto

import (
	"time"
)

// UserDTO is the public shape of an account; the password hash never leaves the service layer.
type UserDTO struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	FirstName *string   `json:"first_name,omitempty"`
	LastName  *string   `json:"last_name,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type UserListResponse struct {
	Users []UserDTO `json:"users"`
}

type ToggleUserResponse struct {
	Message string  `json:"message"`
	User    UserDTO `json:"user"`
}

type TestMutationResponse struct {
	Message string   `json:"message"`
	Test    TestView `json:"test"`
}

type QuestionMutationResponse struct {
	Message  string       `json:"message"`
	Question QuestionView `json:"question"`
}

type ClearResultsResponse struct {
	Message string `json:"message"`
	Deleted int64  `json:"deleted"`
}
