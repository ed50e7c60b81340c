// Package projectpolicy provides authorization policies for project access.
//
// Authorization rules:
//   - Owner: full control, including deleting the project and granting owner
//   - Admin: can manage members and project settings
//   - Editor: can create and edit boards and tasks
//   - Viewer: read-only access
//
// A user with no membership entry has no role and fails every check.
package projectpolicy

import (
	"github.com/boardhub/boardhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is a project-scoped role name.
type Role string

const (
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
	RoleOwner  Role = "owner"
)

// hierarchy assigns each role an ordinal; a role satisfies a requirement
// when its ordinal is greater than or equal to the required one.
var hierarchy = map[Role]int{
	RoleViewer: 1,
	RoleEditor: 2,
	RoleAdmin:  3,
	RoleOwner:  4,
}

// Labels maps roles to display names.
var Labels = map[Role]string{
	RoleOwner:  "Owner",
	RoleAdmin:  "Admin",
	RoleEditor: "Editor",
	RoleViewer: "Viewer",
}

// Descriptions maps roles to the capability summary shown in member pickers.
var Descriptions = map[Role]string{
	RoleOwner:  "Full control over the project",
	RoleAdmin:  "Can manage members and settings",
	RoleEditor: "Can create and edit tasks",
	RoleViewer: "Can only view tasks",
}

// Colors maps roles to badge colors.
var Colors = map[Role]string{
	RoleOwner:  "#ef4444",
	RoleAdmin:  "#f59e0b",
	RoleEditor: "#3b82f6",
	RoleViewer: "#6b7280",
}

// Valid reports whether r names a known role.
func Valid(r Role) bool {
	_, ok := hierarchy[r]
	return ok
}

// GetUserRole returns the user's role within the project, or "" when the
// user is not a member. Absence fails every permission check.
func GetUserRole(p *models.Project, userID primitive.ObjectID) Role {
	if p == nil {
		return ""
	}
	for _, m := range p.MemberRoles {
		if m.UserID == userID {
			return Role(m.Role)
		}
	}
	return ""
}

// HasPermission reports whether role satisfies required. Unknown or empty
// roles never do.
func HasPermission(role, required Role) bool {
	r, ok := hierarchy[role]
	if !ok {
		return false
	}
	req, ok := hierarchy[required]
	if !ok {
		return false
	}
	return r >= req
}

// CanEditProject reports whether role may create/edit boards and tasks.
func CanEditProject(role Role) bool {
	return HasPermission(role, RoleEditor)
}

// CanManageMembers reports whether role may add members or change roles.
func CanManageMembers(role Role) bool {
	return HasPermission(role, RoleAdmin)
}

// CanDeleteProject reports whether role may delete the project.
func CanDeleteProject(role Role) bool {
	return HasPermission(role, RoleOwner)
}

// CanLeaveProject reports whether role may leave the project. The owner
// cannot leave; ownership would be orphaned.
func CanLeaveProject(role Role) bool {
	return Valid(role) && role != RoleOwner
}

// AvailableRoles returns the roles the current user may assign to others.
// Only an owner may grant owner.
func AvailableRoles(current Role) []Role {
	roles := []Role{RoleViewer, RoleEditor, RoleAdmin}
	if current == RoleOwner {
		roles = append(roles, RoleOwner)
	}
	return roles
}
