package category

import (
	"net/http"

	"github.com/frahmantamala/campus-fixit/internal/transport"
)

type ServiceAPI interface {
	GetAllCategories() []CategoryResponse
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) GetCategories(w http.ResponseWriter, r *http.Request) {
	h.WriteSuccess(w, http.StatusOK, CategoriesResponse{
		Categories: h.Service.GetAllCategories(),
	}, "")
}
