package http

import (
	stdhttp "net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"portfolio/app/internal/admin"
	"portfolio/app/internal/config"
	"portfolio/app/internal/contact"
	"portfolio/app/internal/content"
)

// Options configures the HTTP server wiring.
type Options struct {
	Content      content.Service
	Contact      *contact.Service
	Auth         *admin.Authenticator
	Editor       *admin.Editor
	Database     *gorm.DB
	Site         config.SiteConfig
	Logger       *logrus.Logger
	SentryHub    *sentry.Hub
	RateLimiter  RateLimiterSettings
	LoginLimiter *admin.LoginLimiter
}

// RateLimiterSettings configures the HTTP rate limiter behaviour.
type RateLimiterSettings struct {
	RequestsPerSecond float64
	Burst             int
	ClientTTL         time.Duration
}

// Server wires the HTTP transport layer via Huma and templ components.
type Server struct {
	api          huma.API
	mux          *stdhttp.ServeMux
	content      content.Service
	contact      *contact.Service
	auth         *admin.Authenticator
	editor       *admin.Editor
	db           *gorm.DB
	site         config.SiteConfig
	logger       *logrus.Logger
	sentry       *sentry.Hub
	rateLimiter  *RateLimiter
	loginLimiter *admin.LoginLimiter
}

// NewServer constructs the HTTP server.
func NewServer(opts Options) (*Server, error) {
	if opts.Content == nil {
		return nil, eris.New("content service is required")
	}
	if opts.Contact == nil {
		return nil, eris.New("contact service is required")
	}
	if opts.Database == nil {
		return nil, eris.New("database is required")
	}
	if opts.Auth == nil {
		opts.Auth = admin.NewAuthenticator(config.AdminConfig{}, opts.Logger)
	}
	if opts.Editor == nil {
		editor, err := admin.NewEditor(opts.Content, opts.Site.Author, opts.Logger)
		if err != nil {
			return nil, err
		}
		opts.Editor = editor
	}
	if opts.LoginLimiter == nil {
		opts.LoginLimiter = admin.NewLoginLimiter(5, time.Minute)
	}
	if opts.Site.Name == "" {
		opts.Site.Name = "Portfolio"
	}

	settings := opts.RateLimiter
	if settings.Burst <= 0 {
		return nil, eris.New("rate limiter burst must be greater than zero")
	}
	if settings.RequestsPerSecond <= 0 {
		return nil, eris.New("rate limiter requests per second must be greater than zero")
	}
	if settings.ClientTTL <= 0 {
		return nil, eris.New("rate limiter client TTL must be greater than zero")
	}

	mux := stdhttp.NewServeMux()
	humaConfig := huma.DefaultConfig(opts.Site.Name, "1.0.0")
	humaConfig.Info.Description = "Blog content and contact API."

	srv := &Server{
		api:          humago.New(mux, humaConfig),
		mux:          mux,
		content:      opts.Content,
		contact:      opts.Contact,
		auth:         opts.Auth,
		editor:       opts.Editor,
		db:           opts.Database,
		site:         opts.Site,
		logger:       opts.Logger,
		sentry:       opts.SentryHub,
		rateLimiter:  NewRateLimiter(settings.Burst, settings.RequestsPerSecond, settings.ClientTTL),
		loginLimiter: opts.LoginLimiter,
	}

	srv.registerMiddlewares()
	srv.registerRoutes()

	return srv, nil
}

// Handler exposes the underlying HTTP handler for wiring into the application.
func (s *Server) Handler() stdhttp.Handler {
	return s.mux
}

// API exposes the underlying Huma API instance.
func (s *Server) API() huma.API {
	return s.api
}

// Close releases background resources held by the server.
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Close()
	}
}

func (s *Server) registerMiddlewares() {
	s.api.UseMiddleware(
		s.sentryMiddleware(),
		s.recoveryMiddleware(),
		s.requestIDMiddleware(),
		s.rateLimitMiddleware(),
		s.adminSessionMiddleware(),
		s.loggingMiddleware(),
	)
}

func (s *Server) registerRoutes() {
	s.registerStaticRoutes()
	s.registerSessionRoutes()

	s.registerPostRoutes()
	s.registerContactRoute()
	s.registerAdminAPIRoutes()

	s.registerPageRoutes()
	s.registerFeedRoutes()
	s.registerHealthRoute()
}

func (s *Server) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	s.mux.ServeHTTP(w, r)
}
