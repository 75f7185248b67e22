package page

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/stylechat/internal/model/variant"
	"github.com/zhouzirui/stylechat/pkg/utils"
)

//go:embed templates/chat.html
var templatesFS embed.FS

var chatTemplate = template.Must(template.ParseFS(templatesFS, "templates/chat.html"))

type pageData struct {
	Title       string
	Placeholder string
	Endpoint    string
	Embedded    bool
}

// Handler serves the chat page of the active variant.
type Handler struct {
	variant variant.Variant
}

// New creates the page handler.
func New(v variant.Variant) *Handler {
	return &Handler{variant: v}
}

// RegisterRoutes registers GET / and, for embed-enabled variants, GET /embed.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleIndex)
	if h.variant.Embed {
		r.Get("/embed", h.handleEmbed)
	}
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	h.render(w, false)
}

func (h *Handler) handleEmbed(w http.ResponseWriter, r *http.Request) {
	h.render(w, true)
}

func (h *Handler) render(w http.ResponseWriter, embedded bool) {
	data := pageData{
		Title:       h.variant.Title,
		Placeholder: h.variant.Placeholder,
		Endpoint:    "/chat",
		Embedded:    embedded,
	}

	var buf bytes.Buffer
	if err := chatTemplate.Execute(&buf, data); err != nil {
		log.Error().Err(err).Msg("failed to render chat page")
		utils.RespondError(w, http.StatusInternalServerError, "failed to render page")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
