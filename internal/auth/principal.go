package auth

import (
	"github.com/sujalbistaa/bookit/internal/apperr"
	"github.com/sujalbistaa/bookit/internal/models"
)

// Principal is the caller identity attached to one request. It is passed
// explicitly into every service call; there is no ambient current user.
type Principal struct {
	ID     string
	Role   models.Role
	Banned bool
}

func PrincipalOf(user *models.User) Principal {
	return Principal{ID: user.ID, Role: user.Role, Banned: user.IsBanned}
}

func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

func (p Principal) IsAnonymous() bool {
	return p.ID == ""
}

// IsOwner reports whether p is the owner recorded on an entity.
func (p Principal) IsOwner(ownerID string) bool {
	return !p.IsAnonymous() && p.ID == ownerID
}

// errBanned is returned for a principal whose account was banned after
// the request was authenticated.
func errBanned() error {
	return apperr.Forbidden("Account is banned")
}

func RequireAdmin(p Principal) error {
	if p.Banned {
		return errBanned()
	}
	if !p.IsAdmin() {
		return apperr.Forbidden("Admin access required")
	}
	return nil
}

func RequireOwnerOrAdmin(p Principal, ownerID string) error {
	if p.Banned {
		return errBanned()
	}
	if p.IsOwner(ownerID) || p.IsAdmin() {
		return nil
	}
	return apperr.Forbidden("Not allowed")
}
