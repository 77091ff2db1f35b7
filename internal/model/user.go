package model

import (
	"fmt"
	"strings"
	"time"
)

type Role string

const (
	RoleUser         Role = "user"
	RolePsychologist Role = "psychologist"
	RoleAdmin        Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RolePsychologist, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Email     string    `json:"email" gorm:"not null;uniqueIndex"`
	Username  string    `json:"username" gorm:"not null;uniqueIndex"`
	Password  string    `json:"-" gorm:"not null"` // bcrypt hash
	Role      Role      `json:"role" gorm:"type:varchar(20);not null;default:'user'"`
	FirstName *string   `json:"first_name,omitempty"`
	LastName  *string   `json:"last_name,omitempty"`
	IsActive  bool      `json:"is_active" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayName renders "First Last (username)", falling back to the username alone.
func (u *User) DisplayName() string {
	var parts []string
	if u.FirstName != nil && *u.FirstName != "" {
		parts = append(parts, *u.FirstName)
	}
	if u.LastName != nil && *u.LastName != "" {
		parts = append(parts, *u.LastName)
	}
	if len(parts) == 0 {
		return u.Username
	}
	return fmt.Sprintf("%s (%s)", strings.Join(parts, " "), u.Username)
}
