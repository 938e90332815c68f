package signup

import "github.com/goliatone/go-errors"

const (
	TextCodeEmailExists     = "signup_email_exists"
	TextCodeTokenExpired    = "signup_token_expired"
	TextCodeTokenInvalid    = "signup_token_invalid"
	TextCodeTokenRedeemed   = "signup_token_redeemed"
	TextCodeCodeMismatch    = "signup_code_mismatch"
	TextCodeUserNotFound    = "signup_user_not_found"
	TextCodeMailDelivery    = "signup_mail_delivery_failed"
	TextCodeTokenPayload    = "signup_token_payload_invalid"
	TextCodeStateTransition = "signup_invalid_state_transition"
)

// Every client facing failure below carries CodeBadRequest: the redemption
// endpoint intentionally does not tell callers apart between expired, forged,
// replayed or mismatched credentials beyond the message text.

// ErrEmailAlreadyExists is returned when registering an email that already
// has a user record, verified or not.
var ErrEmailAlreadyExists = errors.New("email already exist", errors.CategoryValidation).
	WithTextCode(TextCodeEmailExists).
	WithCode(errors.CodeBadRequest)

// ErrTokenExpired is returned when the activation token is past its TTL.
var ErrTokenExpired = errors.New("activation token expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeBadRequest)

// ErrTokenInvalid is returned for tampered, forged or malformed tokens.
var ErrTokenInvalid = errors.New("invalid activation token", errors.CategoryAuth).
	WithTextCode(TextCodeTokenInvalid).
	WithCode(errors.CodeBadRequest)

// ErrTokenRedeemed is returned when a token was already consumed.
var ErrTokenRedeemed = errors.New("activation token already redeemed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenRedeemed).
	WithCode(errors.CodeBadRequest)

// ErrCodeMismatch is returned when the supplied activation code does not
// match the code embedded in the token payload.
var ErrCodeMismatch = errors.New("invalid activation code", errors.CategoryAuth).
	WithTextCode(TextCodeCodeMismatch).
	WithCode(errors.CodeBadRequest)

// ErrUserNotFound is returned when no draft exists for the decoded email.
var ErrUserNotFound = errors.New("user not found", errors.CategoryNotFound).
	WithTextCode(TextCodeUserNotFound).
	WithCode(errors.CodeBadRequest)

// ErrMailDelivery is returned when the activation mail could not be sent.
// The draft and token issued before the send remain valid.
var ErrMailDelivery = errors.New("failed to deliver activation mail", errors.CategoryExternal).
	WithTextCode(TextCodeMailDelivery).
	WithCode(errors.CodeBadRequest)

// ErrTokenPayload is returned when a correctly signed token carries a
// payload that fails schema validation. Signed does not mean well formed.
var ErrTokenPayload = errors.New("activation token payload is invalid", errors.CategoryAuth).
	WithTextCode(TextCodeTokenPayload).
	WithCode(errors.CodeBadRequest)

// ErrInvalidTransition flags a signup attempt moving through its lifecycle
// out of order. This is a programming error, not a client failure.
var ErrInvalidTransition = errors.New("invalid signup state transition", errors.CategoryInternal).
	WithTextCode(TextCodeStateTransition)

// sentinelWithMetadata attaches per-call metadata to a copy of a shared
// sentinel. Sentinels are package-level values; writing metadata into them
// directly would race across requests and leak one caller's details into
// another's error. The copy keeps the sentinel in its chain so errors.Is
// still matches.
func sentinelWithMetadata(base *errors.Error, meta map[string]any) *errors.Error {
	clone := base.Clone()
	if clone == nil {
		return base
	}
	clone.Source = base
	return clone.WithMetadata(meta)
}

// ErrNoEmptyString is returned when hashing an empty password.
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryValidation).
	WithCode(errors.CodeBadRequest)

// ErrMismatchedHashAndPassword is returned when a password comparison fails.
var ErrMismatchedHashAndPassword = errors.New("password does not match", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized)
