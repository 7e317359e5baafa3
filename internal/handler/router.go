package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Shivanand-hulikatti/eventhub/internal/auth"
	"github.com/Shivanand-hulikatti/eventhub/internal/ratelimit"
	"github.com/Shivanand-hulikatti/eventhub/internal/service"
)

// Deps is everything the router needs.
type Deps struct {
	Log         *slog.Logger
	FrontendURL string
	UploadDir   string

	Gate    *auth.Gate
	Users   *service.UserService
	Events  *service.EventService
	Contact *service.ContactService
	Images  ImageStore
	Limiter ratelimit.Limiter
	Metrics *Metrics
}

// NewRouter builds the HTTP surface.
func NewRouter(d Deps) http.Handler {
	authH := NewAuthHandler(d.Users, d.Log)
	userH := NewUserHandler(d.Users, d.Log)
	eventH := NewEventHandler(d.Events, d.Images, d.Metrics, d.Log)
	contactH := NewContactHandler(d.Contact, d.Log)

	authenticated := Authenticate(d.Gate, d.Log)
	admin := AdminOnly(d.Log)

	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(PeerAddr)                // keep the socket peer for rate limiting
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For for logs
	r.Use(Logger(d.Log))           // structured access log
	r.Use(CORS(d.FrontendURL))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	// Health
	r.Get("/health", HealthCheck)

	// Stored images
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", noDirListing(http.FileServer(http.Dir(d.UploadDir)))))

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(RateLimit(d.Limiter, d.Metrics, "auth_register")).Post("/register", authH.Register)
			r.With(RateLimit(d.Limiter, d.Metrics, "auth_login")).Post("/login", authH.Login)
			r.Post("/refresh", authH.Refresh)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(authenticated)
			r.With(admin).Get("/", userH.List)
			r.Put("/update", userH.UpdateProfile)
		})

		r.Route("/events", func(r chi.Router) {
			r.Use(authenticated)
			r.Get("/", eventH.ListEvents)
			r.Get("/upcoming", eventH.UpcomingEvents)
			r.Get("/available", eventH.AvailableEvents)
			r.Get("/myevents", eventH.MyEvents)
			r.Post("/{id}/register", eventH.Register)
			r.Delete("/{id}/unregister", eventH.Unregister)

			r.Group(func(r chi.Router) {
				r.Use(admin)
				r.Post("/", eventH.CreateEvent)
				r.Get("/admin-events", eventH.AdminEvents)
				r.Put("/{id}", eventH.UpdateEvent)
				r.Delete("/{id}", eventH.DeleteEvent)
				r.Put("/{id}/attendees", eventH.MarkAttendees)
				r.Get("/{id}/registrants", eventH.Registrants)
			})
		})

		r.With(RateLimit(d.Limiter, d.Metrics, "contact")).Post("/contact", contactH.Send)
	})

	return r
}

func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
