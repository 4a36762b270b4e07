package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/medigo/backend/pkg/health"
	"github.com/medigo/backend/pkg/middleware"
)

// Services are the application services exposed over HTTP.
type Services struct {
	Cart     CartService
	Users    UserService
	Bookings BookingService
	Advisor  Advisor
}

// RouterOptions tune the HTTP surface.
type RouterOptions struct {
	ServiceName    string
	CORS           middleware.CORSConfig
	PprofCIDRs     []string
	RequestTimeout time.Duration

	// ChatRateLimit throttles POST /api/chat per client. Zero RPS disables it.
	ChatRateLimit middleware.RateLimitConfig
}

// NewRouter creates a chi router with every MediGo route registered.
func NewRouter(svcs Services, healthHandler *health.Handler, logger *slog.Logger, opts RouterOptions) http.Handler {
	if opts.ServiceName == "" {
		opts.ServiceName = "medigo-backend"
	}
	if len(opts.CORS.AllowedOrigins) == 0 {
		opts.CORS = middleware.DefaultCORSConfig()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(opts.CORS))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(opts.RequestTimeout))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(opts.ServiceName))
	r.Use(middleware.Tracing(opts.ServiceName))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health", healthHandler.PingHandler())
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, opts.PprofCIDRs, logger)

	cartHandler := NewCartHandler(svcs.Cart, logger)
	userHandler := NewUserHandler(svcs.Users, logger)
	bookingHandler := NewBookingHandler(svcs.Bookings, logger)
	chatHandler := NewChatHandler(svcs.Advisor, logger)

	r.Group(func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/cart/{userId}", cartHandler.GetItems)
		r.Post("/cart/add", cartHandler.AddItem)
		r.Put("/cart", cartHandler.SetQuantity)
		r.Delete("/cart/remove/{userId}/{productId}", cartHandler.RemoveItem)

		r.Post("/login", userHandler.Register)
		r.Post("/consultation", bookingHandler.RequestConsultation)
		r.Post("/lab", bookingHandler.BookLabTest)

		r.With(middleware.RateLimit(opts.ChatRateLimit, logger)).Post("/api/chat", chatHandler.Chat)
	})

	return r
}
