package moderation

import (
	"errors"
	"strings"
)

// ErrUnableToFindSession is the error when our request has no token
var ErrUnableToFindSession = errors.New("unable to find session")

// ErrUnableToDecodeSession unable to decode JWT from session credentials
var ErrUnableToDecodeSession = errors.New("unable to decode session")

// ErrUnableToMapClaims unable to get claims from token
var ErrUnableToMapClaims = errors.New("unable to map claims")

// ErrUnknownPrincipalKind principal kind outside user/artist
var ErrUnknownPrincipalKind = errors.New("unknown principal kind")

// ErrPollerStopped the poller reached a terminal state or was torn down
var ErrPollerStopped = errors.New("status poller stopped")

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is expired")
}
