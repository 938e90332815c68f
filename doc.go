// Package signup implements the registration and account activation flow for
// user facing services: a registration request produces an unverified user
// draft plus a signed, short lived activation token and a 4 digit code that is
// delivered out of band; redeeming the token with the matching code marks the
// account verified exactly once.
//
// Activation tokens:
//   - ActivationService issues HS256 JWTs that embed the registration draft
//     and the activation code, so verification is stateless. Expiry lives in
//     the token itself; only replay prevention needs storage.
//
// Redemption ledger:
//   - Redemptions records consumed tokens with their own retention window.
//     Recording is an atomic insert-if-absent keyed by the token digest, so
//     two concurrent redemptions of the same token cannot both win.
//
// Coordination:
//   - SignupRequestHandler and ActivateAccountHandler drive a single signup
//     attempt through its lifecycle (started, draft_validated, token_issued,
//     redemption_pending, activated/rejected) against a RepositoryManager,
//     a Mailer, and the ActivationService. SignupController exposes both
//     operations over fiber with a uniform response envelope.
package signup
