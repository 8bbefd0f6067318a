// Package bootstrap composes the application from configuration.
package bootstrap

import (
	"context"
	"errors"

	"github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"portfolio/app/internal/admin"
	"portfolio/app/internal/blog/localstore"
	"portfolio/app/internal/blog/remote"
	"portfolio/app/internal/config"
	"portfolio/app/internal/contact"
	"portfolio/app/internal/content"
	"portfolio/app/internal/db"
	apphttp "portfolio/app/internal/http"
	"portfolio/app/internal/supabase"
)

type Dependencies struct {
	Config    config.Config
	Logger    *logrus.Logger
	SentryHub *sentry.Hub
	// Available overrides config.RemoteAvailable, mainly for tests.
	Available func() bool
	// InMemoryFallback keeps the fallback store out of the filesystem.
	InMemoryFallback bool
}

type Result struct {
	Content    content.Service
	Contact    *contact.Service
	HTTPServer *apphttp.Server
	Database   *gorm.DB
	Cleanup    func() error
}

// Build composes the portfolio application layers and returns the constructed components.
func Build(ctx context.Context, deps Dependencies) (Result, error) {
	cfg := deps.Config
	var closers []func() error

	cleanup := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	closeOnError := func(wrapper error) (Result, error) {
		if closeErr := cleanup(); closeErr != nil && deps.Logger != nil {
			deps.Logger.WithError(closeErr).Error("releasing resources after bootstrap failure")
		}
		return Result{}, wrapper
	}

	gormDB, err := db.Open(db.Options{Path: cfg.DBPath, Logger: deps.Logger})
	if err != nil {
		return Result{}, eris.Wrap(err, "opening database")
	}
	closers = append(closers, func() error { return db.Close(gormDB) })

	if err := contact.Migrate(ctx, gormDB, deps.Logger); err != nil {
		return closeOnError(eris.Wrap(err, "running contact migrations"))
	}

	store, err := localstore.Open(localstore.Options{
		Path:     cfg.FallbackStorePath,
		InMemory: deps.InMemoryFallback,
		Logger:   deps.Logger,
	})
	if err != nil {
		return closeOnError(eris.Wrap(err, "opening fallback store"))
	}
	closers = append(closers, store.Close)

	hosted := connectSupabase(ctx, cfg.Supabase, deps.Logger)
	if hosted != nil {
		closers = append(closers, hosted.Close)
	}

	contentOpts := content.Options{
		Local:     store,
		Available: deps.Available,
		Logger:    deps.Logger,
		SentryHub: deps.SentryHub,
	}
	if contentOpts.Available == nil {
		contentOpts.Available = config.RemoteAvailable
	}
	if hosted != nil {
		remoteClient, err := remote.New(remote.Options{
			SDK:    hosted.SDK(),
			URL:    cfg.Supabase.URL,
			Key:    cfg.Supabase.AnonKey,
			Logger: deps.Logger,
		})
		if err != nil {
			return closeOnError(eris.Wrap(err, "creating remote blog client"))
		}
		contentOpts.Remote = remoteClient
	}

	contentService, err := content.NewService(contentOpts)
	if err != nil {
		return closeOnError(eris.Wrap(err, "creating content service"))
	}

	contactService, err := buildContact(gormDB, hosted, cfg.Mail, deps)
	if err != nil {
		return closeOnError(err)
	}

	auth := admin.NewAuthenticator(cfg.Admin, deps.Logger)
	editor, err := admin.NewEditor(contentService, cfg.Site.Author, deps.Logger)
	if err != nil {
		return closeOnError(eris.Wrap(err, "creating admin editor"))
	}

	httpServer, err := apphttp.NewServer(apphttp.Options{
		Content:   contentService,
		Contact:   contactService,
		Auth:      auth,
		Editor:    editor,
		Database:  gormDB,
		Site:      cfg.Site,
		Logger:    deps.Logger,
		SentryHub: deps.SentryHub,
		RateLimiter: apphttp.RateLimiterSettings{
			Burst:             cfg.RateLimit.Burst,
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			ClientTTL:         cfg.RateLimit.ClientTTL,
		},
	})
	if err != nil {
		return closeOnError(eris.Wrap(err, "initialising http server"))
	}
	closers = append(closers, func() error {
		httpServer.Close()
		return nil
	})

	if deps.Logger != nil {
		deps.Logger.WithFields(logrus.Fields{
			"content_tier": contentService.Tier(),
			"contact_mode": contactService.Mode(),
			"admin":        auth.Enabled(),
		}).Info("application composed")
	}

	return Result{
		Content:    contentService,
		Contact:    contactService,
		HTTPServer: httpServer,
		Database:   gormDB,
		Cleanup:    cleanup,
	}, nil
}

// connectSupabase returns nil when the hosted backend is not configured or
// cannot be reached; the site then runs on the fallback store alone.
func connectSupabase(ctx context.Context, cfg config.SupabaseConfig, logger *logrus.Logger) *supabase.Client {
	if cfg.URL == "" || cfg.AnonKey == "" {
		if logger != nil {
			logger.WithField("component", "bootstrap").Info("supabase not configured, using local content only")
		}
		return nil
	}

	client := supabase.New(supabase.Config{
		URL:          cfg.URL,
		AnonKey:      cfg.AnonKey,
		DBURL:        cfg.DBURL,
		DBPassword:   cfg.DBPassword,
		MaxOpenConns: cfg.MaxOpenConns,
	}, logger)
	if err := client.Connect(ctx); err != nil {
		if logger != nil {
			logger.WithFields(logrus.Fields{
				"component": "bootstrap",
				"error":     err.Error(),
			}).Warn("supabase unavailable, using local content only")
		}
		return nil
	}
	return client
}

func buildContact(gormDB *gorm.DB, hosted *supabase.Client, mail config.MailConfig, deps Dependencies) (*contact.Service, error) {
	var (
		repo contact.Repository
		err  error
	)
	if hosted.HasDirectDB() {
		repo, err = contact.NewPostgresRepository(hosted.DB(), deps.Logger)
	} else {
		repo, err = contact.NewGormRepository(gormDB, deps.Logger)
	}
	if err != nil {
		return nil, eris.Wrap(err, "creating contact repository")
	}

	var mailer contact.Mailer
	if mail.ResendAPIKey != "" && mail.To != "" {
		resend, err := contact.NewResendMailer(mail.ResendAPIKey, mail.To, mail.From, deps.Logger)
		if err != nil {
			return nil, eris.Wrap(err, "creating resend mailer")
		}
		mailer = resend
	}

	service, err := contact.NewService(repo, mailer, deps.Logger, deps.SentryHub)
	if err != nil {
		return nil, eris.Wrap(err, "creating contact service")
	}
	return service, nil
}
