package signup

import (
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Config holds signup options. Implementations are expected to pass
// ValidateConfig before being handed to any constructor.
type Config interface {
	GetSigningKey() string
	GetIssuer() string
	// GetTokenTTL is how long an activation token stays redeemable.
	GetTokenTTL() time.Duration
	// GetLedgerTTL is how long redemption records are retained. Must be
	// greater than or equal to the token TTL or replay becomes possible.
	GetLedgerTTL() time.Duration
	GetCORSOrigin() string
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] SIGNUP "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] SIGNUP "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] SIGNUP "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] SIGNUP "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
