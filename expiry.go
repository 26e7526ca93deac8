package moderation

import "time"

// ResolveEffectiveStatus computes the status a consumer should act on after
// lazy expiry resolution. A suspension whose end has passed (end <= now,
// inclusive) resolves to active; every other stored status passes through
// untouched, including a suspension with no recorded end.
//
// This is the single comparison shared by every read site. It never writes
// anything back: a stored "suspended" and an effective "active" are allowed
// to disagree until an admin applies a new transition.
func ResolveEffectiveStatus(status AccountStatus, end *time.Time, now time.Time) AccountStatus {
	if status != StatusSuspended {
		return status
	}
	if end == nil {
		return StatusSuspended
	}
	if end.After(now) {
		return StatusSuspended
	}
	return StatusActive
}

// SuspensionLapsed reports whether a stored suspension window has passed.
func SuspensionLapsed(end *time.Time, now time.Time) bool {
	return end != nil && !end.After(now)
}
