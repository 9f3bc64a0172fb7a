package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"soundboard/internal/ratelimit"
	"soundboard/internal/util"
	"soundboard/services/api/internal/app"
)

const defaultMaxUploadBytes = 10 << 20

// Limiter decides whether a caller may hit an expensive endpoint.
type Limiter interface {
	Allow(ctx context.Context, key string) (ratelimit.Decision, error)
	Limit() int
}

// Config wires dependencies for the HTTP server.
type Config struct {
	App *app.App
	// Limiter throttles soundboard creation and text generation. Nil disables limiting.
	Limiter        Limiter
	TrustedProxies *util.TrustedProxies
	MaxUploadBytes int64
	CORSOrigin     string
}

// Server exposes the soundboard REST API.
type Server struct {
	app            *app.App
	limiter        Limiter
	trusted        *util.TrustedProxies
	mux            *http.ServeMux
	maxUploadBytes int64
	corsOrigin     string
	now            func() time.Time
}

// New constructs the server with routes configured.
func New(cfg Config) *Server {
	maxUploadBytes := cfg.MaxUploadBytes
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	s := &Server{
		app:            cfg.App,
		limiter:        cfg.Limiter,
		trusted:        cfg.TrustedProxies,
		mux:            http.NewServeMux(),
		maxUploadBytes: maxUploadBytes,
		corsOrigin:     cfg.CORSOrigin,
		now:            time.Now,
	}
	s.routes()
	return s
}

// Router returns the handler with the middleware chain applied.
func (s *Server) Router() http.Handler {
	return util.WithRequestID(
		util.WithRequestLog(
			util.WithRecover(
				util.WithSecurityHeaders(
					util.WithCORS(s.corsOrigin, s.mux),
				),
			),
		),
	)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/healthz", s.handleHealth)

	s.mux.Handle("/soundboards", s.withRateLimit("soundboards", s.handleSoundboards))
	s.mux.HandleFunc("/soundboards/", s.handleSoundboardByKey)

	s.mux.HandleFunc("/history/", s.handleHistory)

	s.mux.HandleFunc("/profile", s.handleProfiles)
	s.mux.HandleFunc("/profile/", s.handleProfileByEmail)

	s.mux.HandleFunc("/feedback", s.handleFeedback)
	s.mux.HandleFunc("/report", s.handleReports)

	s.mux.Handle("/generate", s.withRateLimit("generate", s.handleGenerate))

	s.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "SYSTEM_NOT_FOUND", "not found")
	})
}

type healthResponse struct {
	Status   string `json:"status"`
	Time     string `json:"time"`
	Database string `json:"database"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	database := "ok"
	if err := s.app.Ping(); err != nil {
		util.LoggerFromContext(r.Context()).Warn("database ping failed", "err", err)
		database = "unavailable"
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:   "ok",
		Time:     s.now().UTC().Format(time.RFC3339),
		Database: database,
	})
}

// pathParam returns the single path segment after prefix, or "" when the
// remainder is empty or has more segments.
func pathParam(r *http.Request, prefix string) string {
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	if rest == "" || strings.Contains(rest, "/") {
		return ""
	}
	return rest
}
