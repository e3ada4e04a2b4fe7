// Package httpapi is the JSON/HTTP and WebSocket surface of the console
// backend.
package httpapi

import (
	"net/http"

	"propdesk-service/internal/domain/repository"
	"propdesk-service/internal/infrastructure/oauth"
	"propdesk-service/pkg/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

// Deps wires the router.
type Deps struct {
	Verifier       oauth.Verifier
	SignIn         SignIn
	Admins         AdminDirectory
	Bookings       BookingWriter
	Units          UnitWriter
	Slides         SlideWriter
	Events         EventWriter
	Blobs          repository.BlobStore
	Streams        FeedServer
	Gatherer       prometheus.Gatherer
	Logger         logger.Logger
	AllowedOrigins []string
	MaxUploadBytes int64
}

func newState() string {
	return uuid.NewString()
}

// NewRouter builds the HTTP handler with CORS applied.
func NewRouter(d Deps) http.Handler {
	h := &Handler{
		signIn:         d.SignIn,
		admins:         d.Admins,
		bookings:       d.Bookings,
		units:          d.Units,
		slides:         d.Slides,
		events:         d.Events,
		blobs:          d.Blobs,
		streams:        d.Streams,
		logger:         d.Logger,
		maxUploadBytes: d.MaxUploadBytes,
	}
	if h.maxUploadBytes <= 0 {
		h.maxUploadBytes = 32 << 20
	}
	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(d.Logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Get("/auth/login", h.Login)
	r.Get("/auth/callback", h.Callback)
	r.Get("/media/*", h.Media)

	r.Route("/api", func(r chi.Router) {
		r.Use(authenticate(d.Verifier, d.Admins, d.Logger))

		r.Get("/me", h.Me)
		r.Get("/properties", h.Properties)

		r.Route("/properties/{pid}", func(r chi.Router) {
			r.Get("/stream/{feed}", h.Stream)

			// Concierges read everything but write nothing.
			r.Group(func(r chi.Router) {
				r.Use(requireContentRole(d.Logger))

				r.Post("/bookings", h.CreateBooking)
				r.Patch("/amenities/{aid}/bookings/{bid}", h.SetBookingStatus)

				r.Post("/units", h.CreateUnit)
				r.Put("/units/{uid}", h.UpdateUnit)
				r.Post("/units/{uid}/toggle", h.ToggleUnit)

				r.Post("/slides", h.UploadSlides)
				r.Delete("/slides", h.DeleteSlide)

				r.Post("/events", h.CreateEvent)
				r.Put("/events/{eid}", h.UpdateEvent)
				r.Delete("/events/{eid}", h.DeleteEvent)
			})
		})
	})

	co := cors.New(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	return co.Handler(r)
}
