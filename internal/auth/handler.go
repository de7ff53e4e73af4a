package auth

import (
	"context"
	"net/http"

	"github.com/frahmantamala/campus-fixit/internal"
	coreuser "github.com/frahmantamala/campus-fixit/internal/core/user"
	"github.com/frahmantamala/campus-fixit/internal/transport"
	"github.com/frahmantamala/campus-fixit/pkg/logger"
)

type ServiceAPI interface {
	Register(ctx context.Context, dto RegisterDTO) (*AuthResult, error)
	Login(ctx context.Context, dto LoginDTO) (*AuthResult, error)
	IssueToken(userID string, role coreuser.Role) (string, error)
	VerifyToken(token string) (internal.Identity, error)
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

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var dto RegisterDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	result, err := h.Service.Register(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusCreated, result, "Registration successful")
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	result, err := h.Service.Login(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, result, "Login successful")
}

// AuthMiddleware verifies the bearer token and puts the caller's identity on
// the request context. Any failure ends the request with 401.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := h.ExtractBearerToken(r)
		if err != nil {
			h.HandleServiceError(w, r, err)
			return
		}

		id, err := h.Service.VerifyToken(token)
		if err != nil {
			h.HandleServiceError(w, r, err)
			return
		}

		ctx := internal.ContextWithIdentity(r.Context(), id)
		ctx = logger.With(ctx, "user_id", id.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
