package contact

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
)

// Mailer notifies the site owner about a new submission.
type Mailer interface {
	Notify(ctx context.Context, submission Submission) error
	Mode() string
}

// DemoMailer only logs the submission. It is used when no relay key is configured.
type DemoMailer struct {
	logger *logrus.Logger
}

// NewDemoMailer constructs a logging-only mailer.
func NewDemoMailer(logger *logrus.Logger) *DemoMailer {
	return &DemoMailer{logger: logger}
}

func (m *DemoMailer) Notify(ctx context.Context, submission Submission) error {
	if m.logger != nil {
		m.logger.WithContext(ctx).WithFields(logrus.Fields{
			"component":     "contact.mailer",
			"submission_id": submission.ID,
			"from":          submission.Email,
		}).Info("demo mode: contact email not sent")
	}
	return nil
}

func (m *DemoMailer) Mode() string { return "demo" }

// ResendMailer sends the notification through Resend.
type ResendMailer struct {
	client *resend.Client
	to     string
	from   string
	logger *logrus.Logger
}

// NewResendMailer constructs a Resend-backed mailer.
func NewResendMailer(apiKey, to, from string, logger *logrus.Logger) (*ResendMailer, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, eris.New("resend API key is required")
	}
	if strings.TrimSpace(to) == "" {
		return nil, eris.New("contact recipient address is required")
	}
	client := resend.NewCustomClient(&http.Client{Timeout: 10 * time.Second}, apiKey)
	return &ResendMailer{
		client: client,
		to:     to,
		from:   from,
		logger: logger,
	}, nil
}

func (m *ResendMailer) Mode() string { return "resend" }

func (m *ResendMailer) Notify(ctx context.Context, submission Submission) error {
	sent, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{m.to},
		Subject: fmt.Sprintf("New contact message from %s", submission.Name),
		Text: fmt.Sprintf("Name: %s\nEmail: %s\nReceived: %s\n\n%s",
			submission.Name, submission.Email, submission.CreatedAt.UTC().Format(time.RFC1123), submission.Message),
		ReplyTo: submission.Email,
	})
	if err != nil {
		return eris.Wrapf(err, "sending contact email for submission %s", submission.ID)
	}

	if m.logger != nil {
		m.logger.WithContext(ctx).WithFields(logrus.Fields{
			"component":     "contact.mailer",
			"submission_id": submission.ID,
			"email_id":      sent.Id,
		}).Info("contact email sent")
	}
	return nil
}
