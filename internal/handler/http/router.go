package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Geeks-Solutions/exmedias/internal/service"
	"github.com/Geeks-Solutions/exmedias/pkg/health"
	"github.com/Geeks-Solutions/exmedias/pkg/middleware"
)

// NewRouter creates a chi router with all media library routes registered.
func NewRouter(
	mediaService *service.MediaService,
	platformService *service.PlatformService,
	healthHandler *health.Handler,
	logger *slog.Logger,
	pprofCIDRs []string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("exmedias"))
	r.Use(middleware.Tracing("exmedias"))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, pprofCIDRs, logger)

	mediaHandler := NewMediaHandler(mediaService, logger)
	platformHandler := NewPlatformHandler(platformService, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Route("/medias", func(r chi.Router) {
			r.Post("/list", mediaHandler.ListMedias)
			r.Post("/", mediaHandler.CreateMedia)
			r.Get("/{id}", mediaHandler.GetMedia)
			r.Put("/{id}", mediaHandler.UpdateMedia)
			r.Delete("/{id}", mediaHandler.DeleteMedia)

			r.Post("/{id}/files", mediaHandler.UploadFile)
			r.Get("/{id}/files/url", mediaHandler.SignedFileURL)

			r.Post("/{id}/contents/{contentID}", mediaHandler.LinkContent)
			r.Delete("/{id}/contents/{contentID}", mediaHandler.UnlinkContent)
		})

		r.Route("/platforms", func(r chi.Router) {
			r.Post("/list", platformHandler.ListPlatforms)
			r.Post("/", platformHandler.CreatePlatform)
			r.Get("/{id}", platformHandler.GetPlatform)
			r.Put("/{id}", platformHandler.UpdatePlatform)
			r.Delete("/{id}", platformHandler.DeletePlatform)
		})

		// Namespace counts tolerate brief staleness.
		r.With(middleware.CacheControl(30)).Get("/namespaces/{namespace}/count", mediaHandler.CountNamespace)
	})

	return r
}
