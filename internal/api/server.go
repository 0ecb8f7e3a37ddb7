// Package api is the HTTP surface of the admin dashboard backend. Routes
// are grouped under /api/v1 and everything except login and health checks
// sits behind the JWT middleware.
package api

import (
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/microcosm-cc/bluemonday"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/becalab/becamap/internal/ai"
	"github.com/becalab/becamap/internal/auth"
	"github.com/becalab/becamap/internal/bulkedit"
	"github.com/becalab/becamap/internal/db"
	"github.com/becalab/becamap/internal/idgen"
	"github.com/becalab/becamap/internal/monitoring"
	"github.com/becalab/becamap/internal/storage"
)

type Server struct {
	Store       *db.Store
	AuthService *auth.Service
	Echo        *echo.Echo
	DB          *pgxpool.Pool
	AI          *ai.OllamaClient
	Storage     *storage.Client
	Metrics     *monitoring.Metrics
	IDGen       *idgen.Generator
	Rewriter    *bulkedit.Rewriter

	sanitizer *bluemonday.Policy

	// Background job tracking
	jobMu      sync.Mutex
	runningJob *backgroundJob
}

type backgroundJob struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`   // verify
	Status    string    `json:"status"` // running, completed, failed
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at,omitempty"`
	Current   int       `json:"current"`
	Total     int       `json:"total"`
	Detail    string    `json:"detail,omitempty"`
	Result    any       `json:"result,omitempty"`
	Error     string    `json:"error,omitempty"`
}

func NewServer(pool *pgxpool.Pool) *Server {
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// CORS: allow dashboard origins from env or default to localhost
	allowedOrigins := []string{"http://localhost:5173"}
	if extra := os.Getenv("CORS_ORIGINS"); extra != "" {
		for _, o := range strings.Split(extra, ",") {
			o = strings.TrimSpace(o)
			if o != "" {
				allowedOrigins = append(allowedOrigins, o)
			}
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	store := db.NewStore(pool)

	s := &Server{
		DB:          pool,
		Store:       store,
		AuthService: auth.NewService(pool),
		Echo:        e,
		AI:          ai.NewOllamaClient(os.Getenv("OLLAMA_HOST"), os.Getenv("OLLAMA_MODEL")),
		Storage:     storage.NewClient(os.Getenv("STORAGE_URL"), os.Getenv("STORAGE_KEY")),
		Metrics:     monitoring.NewMetrics(),
		IDGen:       idgen.NewGenerator(store),
		Rewriter:    bulkedit.NewRewriter(store),
		sanitizer:   bluemonday.StrictPolicy(),
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.Echo.GET("/health", s.handleHealth)
	s.Echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := s.Echo.Group("/api/v1")
	api.POST("/auth/login", s.handleLogin)

	// Everything below requires a valid admin token.
	admin := api.Group("")
	admin.Use(auth.Middleware)

	admin.GET("/scholarships", s.handleListScholarships)
	admin.GET("/scholarships/:id", s.handleGetScholarship)
	admin.POST("/scholarships", s.handleCreateScholarship)
	admin.PATCH("/scholarships/:id", s.handleUpdateScholarship)
	admin.DELETE("/scholarships/:id", s.handleDeleteScholarship)
	admin.GET("/levels", s.handleListLevels)
	admin.GET("/stats", s.handleGetStats)
	admin.GET("/audit", s.handleListAudit)

	admin.POST("/bulk-url/search", s.handleBulkSearch)
	admin.POST("/bulk-url/apply", s.handleBulkApply)

	admin.POST("/links/verify", s.handleVerifyLinks)
	admin.GET("/links/job/:id", s.handleJobStatus)
	admin.POST("/links/repair", s.handleRepairLinks)

	admin.GET("/export", s.handleExport)

	admin.GET("/content", s.handleListContent)
	admin.POST("/content", s.handleCreateContent)
	admin.PATCH("/content/:id", s.handleUpdateContent)
	admin.DELETE("/content/:id", s.handleDeleteContent)
	admin.GET("/content/stats", s.handleContentStats)
	admin.POST("/content/ideas/generate", s.handleGenerateIdea)

	admin.GET("/notifications", s.handleListNotifications)
	admin.POST("/notifications/:id/read", s.handleMarkNotificationRead)
	admin.POST("/notifications/:id/dismiss", s.handleDismissNotification)

	admin.POST("/uploads", s.handleUpload)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (s *Server) handleLogin(c echo.Context) error {
	var req auth.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	resp, err := s.AuthService.Login(c.Request().Context(), req)
	if err != nil {
		if err == auth.ErrInvalidCreds {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleJobStatus(c echo.Context) error {
	queried := c.Param("id")

	s.jobMu.Lock()
	defer s.jobMu.Unlock()

	job := s.runningJob
	if job == nil || job.ID != queried {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "job not found"})
	}

	resp := map[string]interface{}{
		"id":         job.ID,
		"kind":       job.Kind,
		"status":     job.Status,
		"started_at": job.StartedAt,
		"current":    job.Current,
		"total":      job.Total,
	}
	if job.Detail != "" {
		resp["detail"] = job.Detail
	}
	if !job.EndedAt.IsZero() {
		resp["ended_at"] = job.EndedAt
		resp["duration"] = job.EndedAt.Sub(job.StartedAt).String()
	}
	if job.Result != nil {
		resp["result"] = job.Result
	}
	if job.Error != "" {
		resp["error"] = job.Error
	}

	return c.JSON(http.StatusOK, resp)
}

func (s *Server) Start(port string) error {
	return s.Echo.Start(":" + port)
}
