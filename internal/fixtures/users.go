// Package fixtures holds the seed data the repositories start from.
package fixtures

import (
	"net/url"
	"time"

	"fluvid/internal/core/domain"
)

const (
	AdminID   domain.UserID = "usr_admin"
	CreatorID domain.UserID = "usr_creator"
	ViewerID  domain.UserID = "usr_viewer"
)

// SeedUser is a fixture account with its plaintext demo password.
type SeedUser struct {
	User     domain.User
	Password string
}

var seedEpoch = time.Date(2024, time.January, 8, 9, 0, 0, 0, time.UTC)

// Users returns the demo accounts. Passwords are hashed when the user repository is seeded.
func Users() []SeedUser {
	return []SeedUser{
		{
			User: domain.User{
				ID:        AdminID,
				Name:      "Alex Admin",
				Email:     "admin@fluvid.com",
				Avatar:    AvatarURL("Alex Admin"),
				Role:      domain.RoleAdmin,
				Premium:   true,
				CreatedAt: seedEpoch,
			},
			Password: "admin123",
		},
		{
			User: domain.User{
				ID:        CreatorID,
				Name:      "Casey Creator",
				Email:     "creator@fluvid.com",
				Avatar:    AvatarURL("Casey Creator"),
				Role:      domain.RoleCreator,
				CreatedAt: seedEpoch.Add(24 * time.Hour),
			},
			Password: "creator123",
		},
		{
			User: domain.User{
				ID:        ViewerID,
				Name:      "Val Viewer",
				Email:     "viewer@fluvid.com",
				Avatar:    AvatarURL("Val Viewer"),
				Role:      domain.RoleViewer,
				CreatedAt: seedEpoch.Add(48 * time.Hour),
			},
			Password: "viewer123",
		},
	}
}

// AvatarURL builds the generated avatar for a display name.
func AvatarURL(name string) string {
	return "https://api.dicebear.com/7.x/initials/svg?seed=" + url.QueryEscape(name)
}
