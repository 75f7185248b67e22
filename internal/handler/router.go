package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/stylechat/internal/config"
	"github.com/zhouzirui/stylechat/internal/handler/chat"
	"github.com/zhouzirui/stylechat/internal/handler/page"
	variantHandler "github.com/zhouzirui/stylechat/internal/handler/variant"
	middlewarePkg "github.com/zhouzirui/stylechat/internal/middleware"
	"github.com/zhouzirui/stylechat/internal/model/variant"
	chatService "github.com/zhouzirui/stylechat/internal/service/chat"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(variants variant.Store, active variant.Variant, chatSvc *chatService.Service, corsCfg config.CORSConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(log.Logger))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", middleware.GetReqID(r.Context())).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	}))
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(corsCfg.AllowedOrigins))

	pageHandler := page.New(active)
	chatHandler := chat.New(chatSvc)
	variantsHandler := variantHandler.New(variants, active.ID)

	pageHandler.RegisterRoutes(r)
	chatHandler.RegisterRoutes(r)

	r.Route("/api", func(api chi.Router) {
		variantsHandler.RegisterRoutes(api)
		chatHandler.RegisterAPIRoutes(api)
	})

	return r
}
