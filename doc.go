// Package relink provides the core of a short-link backend: bearer-token
// session handling (JWT issuance, validation, renewal, mass revocation),
// stateful Bun repositories for users and redirects, and a cursor-based
// pagination engine for listings.
//
// Session lifecycle:
//   - Auther exchanges credentials for signed HS256 tokens and validates
//     incoming ones through a single primitive, CurrentUser. Every failure
//     cause (forged, malformed, expired, unknown subject, revoked,
//     suspended) collapses into the same not-ok result so clients cannot
//     probe for accounts.
//   - Users carry a TokensRevokedAt watermark. Revoker advances it to
//     "now", invalidating every earlier token in O(1) with no server-side
//     token table. The store keeps the epoch monotonic.
//
// Pagination:
//   - Paginate walks any CursorCollection using millisecond-timestamp
//     cursors. It fetches limit+1 rows so the extra row signals a further
//     page, and computes next/prev/self cursors that round-trip exactly
//     onto the neighboring pages.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter used by Auther, Revoker,
//     and the redirect hot path to describe login, revocation, renewal, and
//     redirect-served events. Sinks run best-effort (errors are logged) so
//     you can forward to a database or queue without blocking requests.
package relink
