// Package policy decides which roles may perform which operations.
package policy

import (
	"github.com/cityfeedback/feedback-service/internal/domain"
	apperrors "github.com/cityfeedback/feedback-service/pkg/util/errorutil"
)

// Action names a guarded operation.
type Action string

const (
	ActionCreateFeedback       Action = "feedback:create"
	ActionApproveFeedback      Action = "feedback:approve"
	ActionChangeFeedbackStatus Action = "feedback:change_status"
	ActionPublishFeedback      Action = "feedback:publish"
	ActionUnpublishFeedback    Action = "feedback:unpublish"
	ActionDeleteFeedback       Action = "feedback:delete"
	ActionAddComment           Action = "comment:add"
	ActionCreatePrivilegedUser Action = "user:create_privileged"
	ActionAdminCreateUser      Action = "user:admin_create"
	ActionChangeRole           Action = "user:change_role"
	ActionDeleteUser           Action = "user:delete"
	ActionManageOtherPassword  Action = "user:change_other_password"
	ActionDeleteDemoData       Action = "user:delete_demo_data"
)

var (
	anyRole   = []domain.UserRole{domain.RoleCitizen, domain.RoleStaff, domain.RoleAdmin}
	staffOnly = []domain.UserRole{domain.RoleStaff, domain.RoleAdmin}
	adminOnly = []domain.UserRole{domain.RoleAdmin}
)

var requiredRoles = map[Action][]domain.UserRole{
	ActionCreateFeedback:       anyRole,
	ActionApproveFeedback:      staffOnly,
	ActionChangeFeedbackStatus: staffOnly,
	ActionPublishFeedback:      staffOnly,
	ActionUnpublishFeedback:    staffOnly,
	ActionDeleteFeedback:       adminOnly,
	ActionAddComment:           staffOnly,
	ActionCreatePrivilegedUser: adminOnly,
	ActionAdminCreateUser:      adminOnly,
	ActionChangeRole:           adminOnly,
	ActionDeleteUser:           adminOnly,
	ActionManageOtherPassword:  adminOnly,
	ActionDeleteDemoData:       adminOnly,
}

// Allowed reports whether role may perform action. Unknown actions are denied.
func Allowed(role domain.UserRole, action Action) bool {
	for _, allowed := range requiredRoles[action] {
		if role == allowed {
			return true
		}
	}
	return false
}

// Authorize returns a FORBIDDEN error when role may not perform action.
// Callers must resolve the acting user before asking.
func Authorize(role domain.UserRole, action Action) error {
	if Allowed(role, action) {
		return nil
	}
	return apperrors.NewForbidden("insufficient role for "+string(action),
		map[string]any{"action": string(action), "role": string(role)})
}

// AuthorizeUser is Authorize for an already-loaded actor.
func AuthorizeUser(actor *domain.User, action Action) error {
	if actor == nil {
		return apperrors.NewForbidden("no acting user", nil)
	}
	return Authorize(actor.Role(), action)
}
