package auth

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/campus-fixit/internal"
	coreuser "github.com/frahmantamala/campus-fixit/internal/core/user"
	"github.com/frahmantamala/campus-fixit/internal/transport"
)

// RBACAuthorization turns policy decisions into route middleware. It must
// run after the authentication middleware.
type RBACAuthorization struct {
	*transport.BaseHandler
	policy *Policy
}

func NewRBACAuthorization(policy *Policy, logger *slog.Logger) *RBACAuthorization {
	if policy == nil {
		policy = DefaultPolicy()
	}
	return &RBACAuthorization{
		BaseHandler: transport.NewBaseHandler(logger),
		policy:      policy,
	}
}

func (ra *RBACAuthorization) Policy() *Policy {
	return ra.policy
}

// Require gates a route on a resource-free policy action.
func (ra *RBACAuthorization) Require(action Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, _ := internal.IdentityFromContext(r.Context())
			if err := ra.policy.Authorize(id, action, nil); err != nil {
				ra.Logger.WarnContext(r.Context(), "access denied",
					"user_id", id.UserID,
					"role", id.Role,
					"action", action)
				ra.HandleServiceError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (ra *RBACAuthorization) RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := internal.IdentityFromContext(r.Context())
			if !ok {
				ra.HandleServiceError(w, r, internal.ErrNotAuthenticated)
				return
			}
			if !id.IsAdmin() {
				ra.Logger.WarnContext(r.Context(), "access denied: admin role required", "user_id", id.UserID)
				ra.HandleServiceError(w, r, internal.ErrAdminOnly)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (ra *RBACAuthorization) RequireRoles(roles ...coreuser.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := internal.IdentityFromContext(r.Context())
			if !ok {
				ra.HandleServiceError(w, r, internal.ErrNotAuthenticated)
				return
			}
			if !hasRole(roles, id.Role) {
				ra.Logger.WarnContext(r.Context(), "access denied: role not allowed",
					"user_id", id.UserID,
					"role", id.Role,
					"allowed", roles)
				ra.HandleServiceError(w, r, internal.ErrInsufficientRoles)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
