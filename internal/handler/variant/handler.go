package variant

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/stylechat/internal/model/variant"
	"github.com/zhouzirui/stylechat/pkg/utils"
)

// Handler lists the built-in variants.
type Handler struct {
	variants variant.Store
	active   string
}

// New creates the variant handler.
func New(variants variant.Store, active string) *Handler {
	return &Handler{
		variants: variants,
		active:   active,
	}
}

// RegisterRoutes registers the variant routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/variants", h.handleListVariants)
}

func (h *Handler) handleListVariants(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"active":   h.active,
		"variants": h.variants.List(),
	})
}
