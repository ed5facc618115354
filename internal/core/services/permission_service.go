package services

import (
	"context"

	"fluvid/internal/core/domain"
	"fluvid/internal/core/ports"
)

type permissionService struct{}

func NewPermissionService() ports.PermissionService {
	return permissionService{}
}

// HasPermission checks the caller on ctx against the permission table. Anonymous callers have none.
func (permissionService) HasPermission(ctx context.Context, perm domain.Permission) bool {
	caller := domain.CallerFromContext(ctx)
	if caller == nil {
		return false
	}
	return domain.RoleHasPermission(caller.Role, perm)
}

func (p permissionService) Granted(ctx context.Context) []domain.Permission {
	granted := []domain.Permission{}
	for _, perm := range domain.Permissions() {
		if p.HasPermission(ctx, perm) {
			granted = append(granted, perm)
		}
	}
	return granted
}
