// Package flightdeck implements the authentication core of the flight
// booking API: JWT issuance and verification, a server-side token
// blacklist, registration credential policy, and the per-request
// authentication gate.
//
// Tokens:
//   - TokenService signs HS256 tokens carrying {id, username, email,
//     iat, exp}. Validation failures are tagged errors so callers can
//     distinguish expired tokens from undecodable ones without string
//     matching.
//   - BlacklistStore records revoked token strings. A blacklisted token
//     is invalid forever, even while its signature still verifies. Two
//     implementations ship: a bun-backed SQL table and a Redis store
//     whose keys expire with the token itself.
//
// Identities:
//   - Users owns identity records (credentials, active/staff flags).
//     Accounts are created inactive and never physically deleted;
//     deactivation is the terminal state.
//   - Auther orchestrates register, login, logout and the
//     Authorization-header gate consumed by the HTTP middleware.
package flightdeck
