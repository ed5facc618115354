package services

import (
	"context"
	"testing"

	"fluvid/internal/core/domain"

	"github.com/stretchr/testify/assert"
)

func TestPermissionTable_Exhaustive(t *testing.T) {
	a, c, v := domain.RoleAdmin, domain.RoleCreator, domain.RoleViewer
	want := map[domain.Permission][]domain.UserRole{
		"view_dashboard":      {a, c, v},
		"view_videos":         {a, c, v},
		"upload_video":        {a, c},
		"edit_video":          {a, c},
		"delete_video":        {a, c},
		"manage_series":       {a, c},
		"view_analytics":      {a, c},
		"manage_monetization": {a, c},
		"manage_settings":     {a, c, v},
		"manage_users":        {a},
		"view_all_content":    {a},
	}
	assert.Len(t, domain.PermissionTable, len(want))

	svc := NewPermissionService()
	for perm, allowed := range want {
		for _, role := range domain.Roles {
			expected := false
			for _, r := range allowed {
				if r == role {
					expected = true
				}
			}
			ctx := domain.WithCaller(context.Background(), &domain.User{ID: "u", Role: role})
			assert.Equal(t, expected, svc.HasPermission(ctx, perm), "%s/%s", role, perm)
			assert.Equal(t, expected, domain.RoleHasPermission(role, perm), "%s/%s", role, perm)
		}
	}
}

func TestPermissionService_UnknownKeyDenied(t *testing.T) {
	svc := NewPermissionService()
	for _, role := range domain.Roles {
		ctx := domain.WithCaller(context.Background(), &domain.User{Role: role})
		assert.False(t, svc.HasPermission(ctx, "launch_rockets"))
	}
}

func TestPermissionService_AnonymousDenied(t *testing.T) {
	svc := NewPermissionService()
	assert.False(t, svc.HasPermission(context.Background(), domain.PermViewDashboard))
	assert.Empty(t, svc.Granted(context.Background()))
}

func TestPermissionService_Granted(t *testing.T) {
	svc := NewPermissionService()
	ctx := domain.WithCaller(context.Background(), &domain.User{Role: domain.RoleViewer})

	assert.Equal(t, []domain.Permission{
		domain.PermManageSettings,
		domain.PermViewDashboard,
		domain.PermViewVideos,
	}, svc.Granted(ctx))
}
