package transport

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/frahmantamala/campus-fixit/internal"
	"github.com/frahmantamala/campus-fixit/pkg/logger"
)

// SuccessResponse is the envelope for every 2xx body.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

type ErrorBody struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
	}
	return &BaseHandler{Logger: lg}
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

func (h *BaseHandler) WriteSuccess(w http.ResponseWriter, status int, data interface{}, message string) {
	h.WriteJSON(w, status, SuccessResponse{Success: true, Data: data, Message: message})
}

// WriteError writes an error envelope
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, message string) {
	h.WriteJSON(w, status, ErrorResponse{Error: ErrorBody{Message: message}})
}

// HandleServiceError is the single place where errors become HTTP statuses.
func (h *BaseHandler) HandleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := ClassifyError(err)

	lg := h.Logger
	if r != nil {
		lg = logger.From(r.Context())
	}
	if status >= http.StatusInternalServerError {
		lg.Error("request failed", "status", status, "error", err)
	} else {
		lg.Warn("request rejected", "status", status, "message", message)
	}

	h.WriteError(w, status, message)
}

// ClassifyError maps err to a status and a client-safe message. Errors that
// are not AppErrors never leak their text.
func ClassifyError(err error) (int, string) {
	if appErr, ok := internal.IsAppError(err); ok {
		if appErr.Type == internal.ErrorTypeInternal {
			return http.StatusInternalServerError, "Internal server error"
		}
		return statusFor(appErr), appErr.Message
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
		return http.StatusBadRequest, "Duplicate field value entered"
	}

	return http.StatusInternalServerError, "Internal server error"
}

func statusFor(e *internal.AppError) int {
	if e.StatusCode != 0 {
		return e.StatusCode
	}
	switch e.Type {
	case internal.ErrorTypeValidation:
		return http.StatusBadRequest
	case internal.ErrorTypeUnauthorized:
		return http.StatusUnauthorized
	case internal.ErrorTypeForbidden:
		return http.StatusForbidden
	case internal.ErrorTypeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// isUniqueViolation catches drivers that gorm does not translate.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

// ExtractBearerToken reads the Authorization header. It distinguishes a
// missing header from one without the Bearer prefix.
func (h *BaseHandler) ExtractBearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", internal.ErrNoToken
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", internal.ErrMalformedToken
	}

	token := strings.TrimSpace(authHeader[len("Bearer "):])
	if token == "" {
		return "", internal.ErrNoToken
	}

	return token, nil
}

// DecodeJSON decodes the request body into dst. An empty body leaves dst zero.
func (h *BaseHandler) DecodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return internal.NewValidationError("Invalid request body", internal.ErrCodeValidationFailed).WithCause(err)
}
