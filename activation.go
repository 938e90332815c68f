package signup

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// ActivationClaims is the signed token payload: the registration draft plus
// the out of band activation code.
type ActivationClaims struct {
	jwt.RegisteredClaims
	Draft RegistrationDraft `json:"user"`
	Code  string            `json:"activation_code"`
}

// ValidatePayload runs schema validation over a decoded payload. A valid
// signature only proves the token came from us; it does not prove the payload
// has the shape downstream code expects. Named so jwt's ClaimsValidator
// interface does not pick it up during parsing and fold payload errors into
// signature errors.
func (c *ActivationClaims) ValidatePayload() error {
	return validation.Errors{
		"name":            validation.Validate(c.Draft.Name, validation.Required),
		"email":           validation.Validate(c.Draft.Email, validation.Required, is.Email),
		"password":        validation.Validate(c.Draft.Password, validation.Required),
		"activation_code": validation.Validate(c.Code, validation.Required, validation.Length(activationCodeLength, activationCodeLength), is.Digit),
	}.Filter()
}

// IssuedActivation is the result of issuing an activation token.
type IssuedActivation struct {
	Token string `json:"token"`
	Code  string `json:"activation_code"`
}

const activationCodeLength = 4

// ActivationService issues and verifies activation tokens. Verification is
// stateless: signature and expiry live in the token, replay prevention is
// the Redemptions ledger's job.
type ActivationService struct {
	signingKey []byte
	ttl        time.Duration
	issuer     string
	logger     Logger
	now        func() time.Time
}

type ActivationOption func(*ActivationService)

// WithActivationClock injects a custom clock (useful for tests).
func WithActivationClock(clock func() time.Time) ActivationOption {
	return func(s *ActivationService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithActivationLogger overrides the default logger.
func WithActivationLogger(logger Logger) ActivationOption {
	return func(s *ActivationService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewActivationService creates an ActivationService from validated config.
// Misconfiguration fails here, once, instead of on every Issue call.
func NewActivationService(cfg Config, opts ...ActivationOption) (*ActivationService, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	s := &ActivationService{
		signingKey: []byte(cfg.GetSigningKey()),
		ttl:        cfg.GetTokenTTL(),
		issuer:     cfg.GetIssuer(),
		logger:     defLogger{},
		now:        time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s, nil
}

// TTL returns the activation window tokens are issued with.
func (s *ActivationService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token binding the draft to a fresh activation code. Pure
// computation, no I/O.
func (s *ActivationService) Issue(draft RegistrationDraft) (*IssuedActivation, error) {
	code, err := newActivationCode()
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to generate activation code")
	}

	now := s.now()
	claims := &ActivationClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   draft.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Draft: draft,
		Code:  code,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to sign activation token")
	}

	return &IssuedActivation{Token: signed, Code: code}, nil
}

// Verify checks signature integrity, then expiry, then payload shape, and
// returns the decoded claims. It never mutates state.
func (s *ActivationService) Verify(tokenString string) (*ActivationClaims, error) {
	parserOptions := []jwt.ParserOption{
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &ActivationClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			s.logger.Error("activation verify encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, errors.Wrap(err, ErrTokenInvalid.Category, ErrTokenInvalid.Message).
			WithTextCode(ErrTokenInvalid.TextCode).
			WithCode(errors.CodeBadRequest)
	}

	claims, ok := token.Claims.(*ActivationClaims)
	if !ok || !token.Valid {
		s.logger.Error("activation verify could not decode claims")
		return nil, ErrTokenInvalid
	}

	if err := claims.ValidatePayload(); err != nil {
		return nil, errors.Wrap(err, ErrTokenPayload.Category, ErrTokenPayload.Message).
			WithTextCode(ErrTokenPayload.TextCode).
			WithCode(errors.CodeBadRequest)
	}

	return claims, nil
}

// newActivationCode returns a uniformly distributed 4 digit code without a
// leading zero, matching what the activation mail template renders.
func newActivationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+1000), nil
}
