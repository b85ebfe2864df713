// Package auth provides authentication and authorisation for UserHub.
//
// It implements stateless JWT sessions with a Redis-backed kill switch:
//   - HMAC-signed access/refresh token pairs carrying user_id and token_type
//   - Single-use refresh tokens (the presented token is banned on rotation)
//   - A revocation blacklist keyed on the raw token string, with entries
//     expiring alongside the tokens they ban
//   - Permission checks resolved from the caller's role at request time
//
// Validation runs a fixed pipeline: revocation check, then signature and
// expiry, then token kind, then account existence and the active flag. A
// revoked or expired token reads as an expired session; everything else
// wrong with a token reads as bad credentials, so callers cannot probe
// which check failed.
package auth
