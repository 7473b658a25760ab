// Package authz decides whether a user may mutate a resource.
package authz

import (
	"github.com/recipebox/recipebox-go/internal/apperr"
	"github.com/recipebox/recipebox-go/internal/model"
)

type Action int

const (
	ActionUpdate Action = iota + 1
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Can reports whether user may perform action on a resource owned by ownerID.
// Owners may do anything; moderators may also delete; admins may also
// update and delete. A nil user or unknown action is denied.
func Can(user *model.User, ownerID string, action Action) bool {
	if user == nil || user.ID == "" {
		return false
	}
	if action != ActionUpdate && action != ActionDelete {
		return false
	}
	if user.ID == ownerID {
		return true
	}

	switch user.Role {
	case model.RoleAdmin:
		return true
	case model.RoleModerator:
		return action == ActionDelete
	default:
		return false
	}
}

// Authorize is Can returning a Forbidden error on denial.
func Authorize(user *model.User, ownerID string, action Action) error {
	if Can(user, ownerID, action) {
		return nil
	}
	return apperr.Forbidden("not authorized to " + action.String() + " this resource")
}

// HasRole reports whether user holds one of roles.
func HasRole(user *model.User, roles ...model.Role) bool {
	if user == nil {
		return false
	}
	for _, r := range roles {
		if user.Role == r {
			return true
		}
	}
	return false
}
