package domain

import "sort"

type Permission string

const (
	PermViewDashboard      Permission = "view_dashboard"
	PermViewVideos         Permission = "view_videos"
	PermUploadVideo        Permission = "upload_video"
	PermEditVideo          Permission = "edit_video"
	PermDeleteVideo        Permission = "delete_video"
	PermManageSeries       Permission = "manage_series"
	PermViewAnalytics      Permission = "view_analytics"
	PermManageMonetization Permission = "manage_monetization"
	PermManageSettings     Permission = "manage_settings"
	PermManageUsers        Permission = "manage_users"
	PermViewAllContent     Permission = "view_all_content"
)

// PermissionTable maps each permission to the roles allowed to use it.
// It is never mutated at runtime.
var PermissionTable = map[Permission][]UserRole{
	PermViewDashboard:      {RoleAdmin, RoleCreator, RoleViewer},
	PermViewVideos:         {RoleAdmin, RoleCreator, RoleViewer},
	PermUploadVideo:        {RoleAdmin, RoleCreator},
	PermEditVideo:          {RoleAdmin, RoleCreator},
	PermDeleteVideo:        {RoleAdmin, RoleCreator},
	PermManageSeries:       {RoleAdmin, RoleCreator},
	PermViewAnalytics:      {RoleAdmin, RoleCreator},
	PermManageMonetization: {RoleAdmin, RoleCreator},
	PermManageSettings:     {RoleAdmin, RoleCreator, RoleViewer},
	PermManageUsers:        {RoleAdmin},
	PermViewAllContent:     {RoleAdmin},
}

// RoleHasPermission reports whether role appears in the table entry for perm.
// Unknown permissions are denied for every role.
func RoleHasPermission(role UserRole, perm Permission) bool {
	for _, allowed := range PermissionTable[perm] {
		if allowed == role {
			return true
		}
	}
	return false
}

// Permissions returns every known permission key, sorted.
func Permissions() []Permission {
	keys := make([]Permission, 0, len(PermissionTable))
	for k := range PermissionTable {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
