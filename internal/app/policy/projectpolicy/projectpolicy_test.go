package projectpolicy_test

import (
	"testing"
	"time"

	"github.com/boardhub/boardhub/internal/app/policy/projectpolicy"
	"github.com/boardhub/boardhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ordered = []projectpolicy.Role{
	projectpolicy.RoleViewer,
	projectpolicy.RoleEditor,
	projectpolicy.RoleAdmin,
	projectpolicy.RoleOwner,
}

func TestHasPermission_Hierarchy(t *testing.T) {
	for i, lower := range ordered {
		for _, higher := range ordered[i+1:] {
			if projectpolicy.HasPermission(lower, higher) {
				t.Errorf("HasPermission(%s, %s) = true, want false", lower, higher)
			}
			if !projectpolicy.HasPermission(higher, lower) {
				t.Errorf("HasPermission(%s, %s) = false, want true", higher, lower)
			}
		}
		if !projectpolicy.HasPermission(lower, lower) {
			t.Errorf("HasPermission(%s, %s) = false, want true", lower, lower)
		}
	}
}

func TestHasPermission_UnknownRoles(t *testing.T) {
	if projectpolicy.HasPermission("", projectpolicy.RoleViewer) {
		t.Error("empty role should fail every check")
	}
	if projectpolicy.HasPermission("superuser", projectpolicy.RoleViewer) {
		t.Error("unknown role should fail every check")
	}
	if projectpolicy.HasPermission(projectpolicy.RoleOwner, "banana") {
		t.Error("unknown requirement should never be satisfied")
	}
}

func TestGetUserRole(t *testing.T) {
	owner := primitive.NewObjectID()
	editor := primitive.NewObjectID()
	stranger := primitive.NewObjectID()

	p := &models.Project{
		Owner: owner,
		MemberRoles: []models.ProjectMember{
			{UserID: owner, Role: "owner", AddedAt: time.Now()},
			{UserID: editor, Role: "editor", AddedAt: time.Now()},
		},
	}

	if got := projectpolicy.GetUserRole(p, owner); got != projectpolicy.RoleOwner {
		t.Errorf("owner role: got %q", got)
	}
	if got := projectpolicy.GetUserRole(p, editor); got != projectpolicy.RoleEditor {
		t.Errorf("editor role: got %q", got)
	}
	if got := projectpolicy.GetUserRole(p, stranger); got != "" {
		t.Errorf("non-member role: got %q, want empty", got)
	}
	if got := projectpolicy.GetUserRole(nil, owner); got != "" {
		t.Errorf("nil project role: got %q, want empty", got)
	}
}

func TestPredicates_DenyMissingRole(t *testing.T) {
	var none projectpolicy.Role
	if projectpolicy.CanEditProject(none) {
		t.Error("CanEditProject should deny a missing role")
	}
	if projectpolicy.CanManageMembers(none) {
		t.Error("CanManageMembers should deny a missing role")
	}
	if projectpolicy.CanDeleteProject(none) {
		t.Error("CanDeleteProject should deny a missing role")
	}
	if projectpolicy.CanLeaveProject(none) {
		t.Error("CanLeaveProject should deny a missing role")
	}
}

func TestPredicates_Thresholds(t *testing.T) {
	cases := []struct {
		role       projectpolicy.Role
		edit       bool
		manage     bool
		deleteProj bool
		leave      bool
	}{
		{projectpolicy.RoleViewer, false, false, false, true},
		{projectpolicy.RoleEditor, true, false, false, true},
		{projectpolicy.RoleAdmin, true, true, false, true},
		{projectpolicy.RoleOwner, true, true, true, false},
	}
	for _, tc := range cases {
		if got := projectpolicy.CanEditProject(tc.role); got != tc.edit {
			t.Errorf("CanEditProject(%s) = %v, want %v", tc.role, got, tc.edit)
		}
		if got := projectpolicy.CanManageMembers(tc.role); got != tc.manage {
			t.Errorf("CanManageMembers(%s) = %v, want %v", tc.role, got, tc.manage)
		}
		if got := projectpolicy.CanDeleteProject(tc.role); got != tc.deleteProj {
			t.Errorf("CanDeleteProject(%s) = %v, want %v", tc.role, got, tc.deleteProj)
		}
		if got := projectpolicy.CanLeaveProject(tc.role); got != tc.leave {
			t.Errorf("CanLeaveProject(%s) = %v, want %v", tc.role, got, tc.leave)
		}
	}
}

func TestAvailableRoles(t *testing.T) {
	got := projectpolicy.AvailableRoles(projectpolicy.RoleAdmin)
	for _, r := range got {
		if r == projectpolicy.RoleOwner {
			t.Error("admin should not be able to grant owner")
		}
	}

	got = projectpolicy.AvailableRoles(projectpolicy.RoleOwner)
	found := false
	for _, r := range got {
		if r == projectpolicy.RoleOwner {
			found = true
		}
	}
	if !found {
		t.Error("owner should be able to grant owner")
	}
}
