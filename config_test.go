package signup_test

import (
	"testing"
	"time"

	"github.com/goliatone/go-signup"
	"github.com/stretchr/testify/assert"
)

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     signup.SimpleConfig
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: signup.SimpleConfig{
				SigningKey: "secret",
				TokenTTL:   5 * time.Minute,
				LedgerTTL:  time.Hour,
			},
		},
		{
			name: "defaults satisfy the retention invariant",
			cfg: signup.SimpleConfig{
				SigningKey: "secret",
			},
		},
		{
			name: "missing signing key",
			cfg: signup.SimpleConfig{
				TokenTTL:  5 * time.Minute,
				LedgerTTL: time.Hour,
			},
			wantErr: true,
		},
		{
			name: "ledger retention below token TTL",
			cfg: signup.SimpleConfig{
				SigningKey: "secret",
				TokenTTL:   2 * time.Hour,
				LedgerTTL:  time.Hour,
			},
			wantErr: true,
		},
		{
			name: "equal TTLs are allowed",
			cfg: signup.SimpleConfig{
				SigningKey: "secret",
				TokenTTL:   time.Hour,
				LedgerTTL:  time.Hour,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := signup.ValidateConfig(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}

	t.Run("nil config", func(t *testing.T) {
		assert.Error(t, signup.ValidateConfig(nil))
	})
}

func TestSimpleConfigDefaults(t *testing.T) {
	cfg := signup.SimpleConfig{SigningKey: "secret"}

	assert.Equal(t, signup.DefaultTokenTTL, cfg.GetTokenTTL())
	assert.Equal(t, signup.DefaultLedgerTTL, cfg.GetLedgerTTL())
}
