package signup

import (
	"time"

	goerrors "github.com/goliatone/go-errors"
)

const (
	// DefaultTokenTTL matches the activation window users are told about
	// in the notification mail.
	DefaultTokenTTL = 5 * time.Minute
	// DefaultLedgerTTL keeps redemption records around well past token
	// expiry so a stale-but-unexpired token can never be replayed.
	DefaultLedgerTTL = time.Hour
)

// SimpleConfig is a plain value implementation of Config for hosts that do
// not bring their own configuration container.
type SimpleConfig struct {
	SigningKey string
	Issuer     string
	TokenTTL   time.Duration
	LedgerTTL  time.Duration
	CORSOrigin string
}

func (c SimpleConfig) GetSigningKey() string { return c.SigningKey }

func (c SimpleConfig) GetIssuer() string { return c.Issuer }

func (c SimpleConfig) GetTokenTTL() time.Duration {
	if c.TokenTTL <= 0 {
		return DefaultTokenTTL
	}
	return c.TokenTTL
}

func (c SimpleConfig) GetLedgerTTL() time.Duration {
	if c.LedgerTTL <= 0 {
		return DefaultLedgerTTL
	}
	return c.LedgerTTL
}

func (c SimpleConfig) GetCORSOrigin() string { return c.CORSOrigin }

// ValidateConfig asserts the process wide invariants once, at startup.
// Misconfiguration here is fatal rather than a per request failure:
// a missing signing key or a ledger retention shorter than the token TTL
// would silently break either issuance or the single-use guarantee.
func ValidateConfig(cfg Config) error {
	if cfg == nil {
		return goerrors.New("signup config is required", goerrors.CategoryInternal)
	}

	if cfg.GetSigningKey() == "" {
		return goerrors.New("activation signing key must not be empty", goerrors.CategoryInternal)
	}

	if cfg.GetTokenTTL() <= 0 {
		return goerrors.New("activation token TTL must be positive", goerrors.CategoryInternal).
			WithMetadata(map[string]any{"token_ttl": cfg.GetTokenTTL().String()})
	}

	if cfg.GetLedgerTTL() < cfg.GetTokenTTL() {
		return goerrors.New("ledger retention must be >= token TTL", goerrors.CategoryInternal).
			WithMetadata(map[string]any{
				"token_ttl":  cfg.GetTokenTTL().String(),
				"ledger_ttl": cfg.GetLedgerTTL().String(),
			})
	}

	return nil
}
