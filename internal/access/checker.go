// Package access holds the role-conditioned permission table and the field
// visibility filters every read path applies before returning data.
package access

import (
	"strings"

	"github.com/lshigami/psytest/internal/apperror"
	"github.com/lshigami/psytest/internal/model"
)

const (
	PermContentViewFull = "content:view-full"
	PermContentManage   = "content:manage"
	PermResultsManage   = "results:manage"
	PermStatisticsView  = "statistics:view"
	PermAttemptViewAny  = "attempt:view-any"
	PermUsersManage     = "users:manage"
)

var RolePermissions = map[model.Role][]string{
	model.RoleUser: {},
	model.RolePsychologist: {
		PermContentViewFull,
		PermStatisticsView,
		PermAttemptViewAny,
	},
	model.RoleAdmin: {
		"*",
	},
}

type Checker struct {
	rolePermissions map[model.Role][]string
}

func NewChecker(rp map[model.Role][]string) *Checker {
	if rp == nil {
		rp = RolePermissions
	}
	return &Checker{rolePermissions: rp}
}

var defaultChecker = NewChecker(nil)

func (c *Checker) Has(role model.Role, perm string) bool {
	for _, p := range c.rolePermissions[role] {
		if matchPerm(p, perm) {
			return true
		}
	}
	return false
}

func matchPerm(pattern, perm string) bool {
	if pattern == "*" || pattern == perm {
		return true
	}
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(perm, strings.TrimSuffix(pattern, "*"))
	}
	return false
}

// Caller is an authenticated identity. A nil *Caller is an anonymous guest.
type Caller struct {
	UserID uint
	Role   model.Role
}

func (c *Caller) ID() *uint {
	if c == nil {
		return nil
	}
	id := c.UserID
	return &id
}

// Can reports whether the caller holds perm. Guests hold nothing.
func (c *Caller) Can(perm string) bool {
	return c != nil && defaultChecker.Has(c.Role, perm)
}

// Privileged is true for roles that see full test content.
func (c *Caller) Privileged() bool {
	return c.Can(PermContentViewFull)
}

// Require returns Unauthenticated for guests and Forbidden for roles lacking perm.
func Require(c *Caller, perm string) error {
	if c == nil {
		return apperror.Unauthenticated("authentication required")
	}
	if !defaultChecker.Has(c.Role, perm) {
		return apperror.Forbidden("insufficient permissions")
	}
	return nil
}

// CheckOwnership guards writes to an attempt. Attempts without an owner are
// writable by any caller holding their id; owned attempts only by the owner.
func CheckOwnership(c *Caller, ownerID *uint) error {
	if ownerID == nil {
		return nil
	}
	if c == nil || c.UserID != *ownerID {
		return apperror.Forbidden("attempt belongs to another user")
	}
	return nil
}

// CanViewAttempt guards attempt detail reads: plain users see only their own.
func CanViewAttempt(c *Caller, ownerID *uint) error {
	if c == nil {
		return apperror.Unauthenticated("authentication required")
	}
	if c.Can(PermAttemptViewAny) {
		return nil
	}
	if ownerID == nil || *ownerID != c.UserID {
		return apperror.Forbidden("attempt belongs to another user")
	}
	return nil
}
