package contact

import (
	"context"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	applog "portfolio/app/internal/log"
)

// Service validates, stores and announces contact submissions.
type Service struct {
	repo      Repository
	mailer    Mailer
	logger    *logrus.Logger
	sentryHub *sentry.Hub
	now       func() time.Time
}

// NewService wires the contact service.
func NewService(repo Repository, mailer Mailer, logger *logrus.Logger, hub *sentry.Hub) (*Service, error) {
	if repo == nil {
		return nil, eris.New("contact repository is required")
	}
	if mailer == nil {
		mailer = NewDemoMailer(logger)
	}
	return &Service{
		repo:      repo,
		mailer:    mailer,
		logger:    logger,
		sentryHub: hub,
		now:       time.Now,
	}, nil
}

// Mode reports how notifications are delivered ("demo" or "resend").
func (s *Service) Mode() string {
	return s.mailer.Mode()
}

// Submit validates the input, stores it and notifies the owner. Invalid input
// returns validation.Errors. A failed notification is logged and does not fail
// the submission.
func (s *Service) Submit(ctx context.Context, in Input, meta Meta) (*Submission, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}
	in = in.Normalize()

	submission := &Submission{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Email:     in.Email,
		Message:   in.Message,
		UserAgent: truncate(meta.UserAgent, 512),
		IPAddress: truncate(meta.IPAddress, 64),
		CreatedAt: s.now().UTC(),
	}

	if err := s.repo.Save(ctx, submission); err != nil {
		applog.Capture(ctx, s.sentryHub, err)
		return nil, eris.Wrap(err, "storing contact submission")
	}

	if err := s.mailer.Notify(ctx, *submission); err != nil {
		if s.logger != nil {
			s.logger.WithContext(ctx).WithFields(logrus.Fields{
				"component":     "contact",
				"submission_id": submission.ID,
				"error":         err.Error(),
			}).Warn("contact notification failed")
		}
		applog.Capture(ctx, s.sentryHub, err)
	}

	return submission, nil
}

func truncate(value string, max int) string {
	runes := []rune(strings.TrimSpace(value))
	if len(runes) <= max {
		return string(runes)
	}
	return string(runes[:max])
}
