// README: API server; builds the gin engine, registers routes and wraps it with CORS.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"moodtrip/internal/http/handlers"
	"moodtrip/internal/http/middleware"
	"moodtrip/internal/infra"
)

type ServerDeps struct {
	Planner        handlers.Planner
	Store          handlers.PlanStore
	Usage          handlers.UsageGuard
	Linker         handlers.Linker
	Verifier       infra.TokenVerifier
	Logger         *slog.Logger
	AllowedOrigins []string
	RateRPS        float64
	RateBurst      int
}

type Server struct {
	deps ServerDeps
}

func NewServer(deps ServerDeps) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Server{deps: deps}
}

func (s *Server) engine() *gin.Engine {
	d := s.deps
	r := gin.New()
	r.Use(middleware.Logging(d.Logger), middleware.Recovery(d.Logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h := handlers.NewItineraryHandler(d.Planner, d.Store, d.Usage, d.Linker, d.Logger)
	api := r.Group("/api")
	api.Use(middleware.NewRateLimiter(d.RateRPS, d.RateBurst).Middleware(), middleware.Auth(d.Verifier))
	{
		api.POST("/itineraries/generate", h.Generate)
		api.GET("/itineraries", h.List)
		api.POST("/itineraries", h.Save)
		api.GET("/itineraries/:id", h.Get)
		api.DELETE("/itineraries/:id", h.Delete)
		api.PATCH("/itineraries/:id/schedule", h.EditSchedule)
		api.POST("/itineraries/:id/links", h.FillLinks)
		api.GET("/usage", h.Quota)
	}
	return r
}

// Routes returns the full handler, CORS included.
func (s *Server) Routes() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   s.deps.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader, "X-Quota-Remaining"},
		AllowCredentials: false,
	})
	return c.Handler(s.engine())
}
