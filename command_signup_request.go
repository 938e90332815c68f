package signup

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

// ActivationMailTemplate is the template name the default mail composition
// renders when a MailRenderer is configured.
var ActivationMailTemplate = "activation"

type SignupRequestMessage struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	UseHashid bool
	OnResponse func(*SignupRequestResponse)
}

func (e SignupRequestMessage) Type() string { return "user.signup_request" }

type SignupRequestResponse struct {
	User            *User        `json:"user,omitempty"`
	ActivationToken string       `json:"activation_token,omitempty"`
	State           AttemptState `json:"state,omitempty"`
}

// SignupRequestHandler runs the issuance path: validate the draft against
// the user store, issue the activation token, persist the unverified user,
// and deliver the activation code out of band.
type SignupRequestHandler struct {
	repo     RepositoryManager
	tokens   *ActivationService
	mailer   Mailer
	renderer *MailRenderer
	logger   Logger
}

func NewSignupRequestHandler(repo RepositoryManager, tokens *ActivationService) *SignupRequestHandler {
	return &SignupRequestHandler{
		repo:   repo,
		tokens: tokens,
		mailer: logMailer{},
		logger: defLogger{},
	}
}

func (h *SignupRequestHandler) WithMailer(mailer Mailer) *SignupRequestHandler {
	if mailer != nil {
		h.mailer = mailer
	}
	return h
}

func (h *SignupRequestHandler) WithMailRenderer(renderer *MailRenderer) *SignupRequestHandler {
	h.renderer = renderer
	return h
}

func (h *SignupRequestHandler) WithLogger(logger Logger) *SignupRequestHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *SignupRequestHandler) Execute(ctx context.Context, event SignupRequestMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during signup request",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *SignupRequestHandler) execute(ctx context.Context, event SignupRequestMessage) error {
	att := newAttempt()
	resp := &SignupRequestResponse{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	var user *User
	var issued *IssuedActivation

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := h.repo.Users().GetByEmailTx(ctx, tx, event.Email); err == nil {
			return att.reject(sentinelWithMetadata(ErrEmailAlreadyExists, map[string]any{
				"email": event.Email,
			}))
		} else if !repository.IsRecordNotFound(err) {
			return att.reject(goerrors.Wrap(err, goerrors.CategoryExternal, "failed to check existing registration"))
		}

		if err := att.advance(StateDraftValidated); err != nil {
			return err
		}

		hash, err := HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return att.reject(richErr)
			}
			return att.reject(goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password"))
		}

		// the token carries the hash, never the cleartext
		issued, err = h.tokens.Issue(RegistrationDraft{
			Name:     event.Name,
			Email:    event.Email,
			Password: hash,
		})
		if err != nil {
			return att.reject(err)
		}

		if err := att.advance(StateTokenIssued); err != nil {
			return err
		}

		user = &User{
			Name:         event.Name,
			Email:        event.Email,
			PasswordHash: hash,
		}
		if event.UseHashid {
			if id, err := hashid.NewUUID(event.Email); err == nil {
				user.ID = id
			}
		}

		if user, err = h.repo.Users().CreateTx(ctx, tx, user); err != nil {
			return att.reject(goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user draft"))
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "signup request transaction failed")
	}

	// Delivery happens after the transaction commits: a failed send must not
	// roll back the draft or invalidate the issued token, only surface.
	if err := h.deliver(ctx, event.Email, event.Name, issued.Code); err != nil {
		h.logger.Error("activation mail delivery failed", "email", event.Email, "error", err)
		return att.reject(goerrors.Wrap(err, ErrMailDelivery.Category, ErrMailDelivery.Message).
			WithTextCode(ErrMailDelivery.TextCode).
			WithCode(goerrors.CodeBadRequest))
	}

	resp.User = user
	resp.ActivationToken = issued.Token
	resp.State = att.State()

	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}

func (h *SignupRequestHandler) deliver(ctx context.Context, email, name, code string) error {
	body, err := h.composeBody(name, code)
	if err != nil {
		return err
	}

	return h.mailer.Send(ctx, Email{
		To:      email,
		Subject: "Activate your account",
		HTML:    body,
	})
}

func (h *SignupRequestHandler) composeBody(name, code string) (string, error) {
	data := ActivationMailData{
		Name:      name,
		Code:      code,
		ExpiresIn: h.tokens.TTL().String(),
	}

	if h.renderer != nil {
		return h.renderer.Render(ActivationMailTemplate, data)
	}

	return fmt.Sprintf(
		"Hello %s, your activation code is %s. It expires in %s.",
		data.Name, data.Code, data.ExpiresIn,
	), nil
}
