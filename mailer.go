package signup

import (
	"bytes"
	"context"
	"os"

	"github.com/gofiber/template/django/v3"
	goerrors "github.com/goliatone/go-errors"
)

// Email is a rendered, ready to deliver message.
type Email struct {
	To      string
	Subject string
	HTML    string
}

// Mailer delivers notification mail. The host provides the implementation
// (SMTP, SES, a queue); delivery failures are surfaced to callers but never
// roll back the work done before the send.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// ActivationMailData is the binding for the activation mail template.
type ActivationMailData struct {
	Name      string
	Code      string
	ExpiresIn string
}

// MailRenderer renders mail bodies from django templates on disk, mirroring
// how view templates are handled elsewhere in the stack.
type MailRenderer struct {
	engine *django.Engine
}

// NewMailRenderer loads templates with the given extension from dir.
func NewMailRenderer(dir, ext string) (*MailRenderer, error) {
	// pongo2's file system loader panics on a missing directory, so the
	// check has to happen before the engine touches it.
	if _, err := os.Stat(dir); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load mail templates")
	}

	engine := django.New(dir, ext)
	if err := engine.Load(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load mail templates")
	}
	return &MailRenderer{engine: engine}, nil
}

// Render produces the HTML body for the named template.
func (r *MailRenderer) Render(name string, data ActivationMailData) (string, error) {
	binding := map[string]any{
		"Name":      data.Name,
		"Code":      data.Code,
		"ExpiresIn": data.ExpiresIn,
	}

	var buf bytes.Buffer
	if err := r.engine.Render(&buf, name, binding); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to render mail template").
			WithMetadata(map[string]any{"template": name})
	}
	return buf.String(), nil
}

// logMailer is the fallback Mailer: it prints the notification so the flow
// stays exercisable in development without an SMTP relay.
type logMailer struct {
	logger Logger
}

func (m logMailer) Send(_ context.Context, email Email) error {
	logger := m.logger
	if logger == nil {
		logger = defLogger{}
	}
	logger.Info("====== SENDING EMAIL NOTIFICATION =======")
	logger.Info("to: %s", email.To)
	logger.Info("subject: %s", email.Subject)
	logger.Info("%s", email.HTML)
	return nil
}
