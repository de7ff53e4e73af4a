package auth

import (
	"github.com/frahmantamala/campus-fixit/internal"
	coreuser "github.com/frahmantamala/campus-fixit/internal/core/user"
)

type Action string

const (
	ActionViewProfile    Action = "profile:read"
	ActionCreateIssue    Action = "issue:create"
	ActionListOwnIssues  Action = "issue:list_own"
	ActionListAllIssues  Action = "issue:list_all"
	ActionReadIssue      Action = "issue:read"
	ActionUpdateStatus   Action = "issue:update_status"
	ActionAddRemark      Action = "issue:add_remark"
	ActionViewIssueStats Action = "issue:stats"
	ActionListCategories Action = "category:list"
)

// Resource carries the attributes a rule may look at. Nil means the action
// is not about one particular record.
type Resource struct {
	OwnerID string
}

type rule struct {
	roles []coreuser.Role
	// ownerOnly restricts non-admins to their own records.
	ownerOnly bool
}

// Policy decides (identity, action, resource) once per request.
type Policy struct {
	rules map[Action]rule
}

func DefaultPolicy() *Policy {
	everyone := []coreuser.Role{coreuser.RoleStudent, coreuser.RoleAdmin}
	adminOnly := []coreuser.Role{coreuser.RoleAdmin}

	return &Policy{rules: map[Action]rule{
		ActionViewProfile:    {roles: everyone},
		ActionListCategories: {roles: everyone},
		ActionCreateIssue:    {roles: everyone},
		ActionListOwnIssues:  {roles: everyone},
		ActionReadIssue:      {roles: everyone, ownerOnly: true},
		ActionListAllIssues:  {roles: adminOnly},
		ActionUpdateStatus:   {roles: adminOnly},
		ActionAddRemark:      {roles: adminOnly},
		ActionViewIssueStats: {roles: adminOnly},
	}}
}

// Authorize returns nil when allowed. Unknown actions are denied.
func (p *Policy) Authorize(id internal.Identity, action Action, res *Resource) error {
	if id.UserID == "" {
		return internal.ErrNotAuthenticated
	}

	r, ok := p.rules[action]
	if !ok {
		return internal.ErrAccessDenied
	}

	if !hasRole(r.roles, id.Role) {
		if len(r.roles) == 1 && r.roles[0] == coreuser.RoleAdmin {
			return internal.ErrAdminOnly
		}
		return internal.ErrInsufficientRoles
	}

	if r.ownerOnly && res != nil && !id.IsAdmin() && res.OwnerID != id.UserID {
		return internal.ErrAccessDenied
	}

	return nil
}

func hasRole(allowed []coreuser.Role, role coreuser.Role) bool {
	for _, a := range allowed {
		if a == role {
			return true
		}
	}
	return false
}
