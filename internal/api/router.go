package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/nikhilbhutani/mediainsight/internal/api/handlers"
	"github.com/nikhilbhutani/mediainsight/internal/api/middleware"
	"github.com/nikhilbhutani/mediainsight/internal/app"
)

type Router struct {
	mux *chi.Mux
	svc *app.Services
}

func NewRouter(svc *app.Services) *Router {
	return &Router{
		mux: chi.NewRouter(),
		svc: svc,
	}
}

// Setup mounts every route. ctx bounds background middleware goroutines.
func (rt *Router) Setup(ctx context.Context) http.Handler {
	r := rt.mux
	cfg := rt.svc.Config

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.Server.CORSOrigins))

	// Health endpoints
	checks := map[string]handlers.Pinger{}
	if rt.svc.DB != nil {
		checks["database"] = rt.svc.DB
	}
	if rt.svc.Cache != nil {
		checks["redis"] = rt.svc.Cache
	}
	health := handlers.NewHealthHandler(checks)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	// Generated audio
	if cfg.Storage.Backend == "local" {
		prefix := "/" + strings.Trim(cfg.Storage.URLPrefix, "/")
		r.Handle(prefix+"/*", http.StripPrefix(prefix+"/", http.FileServer(http.Dir(cfg.Storage.Dir))))
	}

	var jobs handlers.JobQueue
	if rt.svc.Jobs != nil {
		jobs = rt.svc.Jobs
	}
	processH := handlers.NewProcessHandler(rt.svc.Pipeline, jobs, cfg.Server.MaxUploadMB)
	voiceH := handlers.NewVoiceHandler(rt.svc.Voice, rt.svc.Catalog)
	historyH := handlers.NewHistoryHandler(rt.svc.History)
	modelsH := handlers.NewModelsHandler(rt.svc.Transcription, rt.svc.Gateway)

	rl := middleware.NewRateLimiter(ctx, float64(cfg.Server.RateLimitRPS), cfg.Server.RateLimitBurst)

	r.Route("/api", func(r chi.Router) {
		r.Use(rl.Limit)

		r.Post("/process-media", processH.ProcessMedia)
		r.Post("/process-link", processH.ProcessLink)
		r.Post("/process-link/async", processH.ProcessLinkAsync)
		r.Post("/process-text", processH.ProcessText)
		r.Get("/jobs/{taskID}", processH.JobStatus)

		r.Post("/generate-audio", voiceH.GenerateAudio)
		r.Get("/languages", voiceH.Languages)
		r.Get("/voices", voiceH.Voices)
		r.Get("/emotions", voiceH.Emotions)

		r.Get("/models", modelsH.List)

		r.Route("/history/{userID}", func(r chi.Router) {
			r.Get("/", historyH.List)
			r.Delete("/{docID}", historyH.Delete)
		})
	})

	return r
}
