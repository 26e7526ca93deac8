// Package moderation provides the account moderation core for a two-sided
// marketplace: the status lifecycle shared by user and artist accounts, the
// side effects of each transition, and near-real-time enforcement against
// already-authenticated sessions.
//
// Account lifecycle:
//   - Accounts carry an AccountStatus (active, suspended, inactive,
//     terminated) persisted via Bun. Users and artists live in separate
//     tables with an identical moderation shape; one Accounts repository
//     serves both, keyed by PrincipalRef.
//   - TransitionEngine centralizes validation, suspension window
//     computation, reason recording, and persistence. Invoke Apply with
//     ActorRef metadata whenever an admin moves an account. Reactivation
//     reads the prior stored status first: lifting a permanent ban, lifting
//     a suspension, and a plain reactivate each notify differently.
//
// Expiry:
//   - Suspensions lapse lazily. ResolveEffectiveStatus is the single
//     comparison (suspension_end <= now) every read site shares; nothing
//     ever writes the lapse back, so a stored "suspended" and an effective
//     "active" may coexist until the next admin action.
//
// Notifications and audit:
//   - Transitions append inbox Notifications through a best-effort Notifier
//     (outbox write) and publish ActivityEvents to an ActivitySink. Neither
//     channel can fail a transition; errors are logged and swallowed.
//
// Enforcement:
//   - StatusPoller re-validates one authenticated session on a fixed
//     interval. When the effective status is not active it clears local
//     credentials, hands a Blocked value to the host's BlockHandler, and
//     stops. Fetch failures are fail-open: a session is never terminated
//     because the check itself could not reach the server.
package moderation
