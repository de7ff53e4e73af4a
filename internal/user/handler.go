package user

import (
	"context"
	"net/http"

	"github.com/frahmantamala/campus-fixit/internal"
	"github.com/frahmantamala/campus-fixit/internal/transport"
	"github.com/frahmantamala/campus-fixit/pkg/logger"
)

type ServiceAPI interface {
	GetByID(ctx context.Context, userID string) (*User, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.LoggerWrapper()),
		Service:     svc,
	}
}

// Profile handles GET /auth/profile
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	id, ok := internal.IdentityFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, r, internal.ErrNotAuthenticated)
		return
	}

	u, err := h.Service.GetByID(r.Context(), id.UserID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, u.ToProfileV1(), "")
}
