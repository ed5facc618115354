package services

import "fluvid/internal/core/domain"

// canAccess reports whether caller may see a resource owned by owner.
func canAccess(caller *domain.User, owner domain.UserID) bool {
	if caller == nil {
		return false
	}
	return caller.ID == owner || domain.RoleHasPermission(caller.Role, domain.PermViewAllContent)
}
