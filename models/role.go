package models

import "time"

// Role names used in JWT claims.
const (
	RoleAdministrator = "administrator"
	RoleEditor        = "editor"
	RoleUser          = "user"
)

// Role is a named permission level. Administrators and editors may change the catalog.
type Role struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Name        string `gorm:"size:32;uniqueIndex;not null"`
	Description string `gorm:"size:255"`
}

// DefaultRoles are seeded on startup.
func DefaultRoles() []Role {
	return []Role{
		{Name: RoleAdministrator, Description: "full access"},
		{Name: RoleEditor, Description: "may add catalog events"},
		{Name: RoleUser, Description: "read-only access to scans"},
	}
}

// CanEditCatalog reports whether role may add events.
func CanEditCatalog(role string) bool {
	return role == RoleAdministrator || role == RoleEditor
}
