package moderation_test

import (
	"testing"
	"time"

	moderation "github.com/goliatone/go-moderation"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for _, raw := range []string{"active", "suspended", "inactive", "terminated"} {
		status, ok := moderation.ParseStatus(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, raw, status.String())
	}

	for _, raw := range []string{"", "banned", "ACTIVE", "Suspended", "deleted"} {
		_, ok := moderation.ParseStatus(raw)
		assert.False(t, ok, raw)
	}
}

func TestParseKind(t *testing.T) {
	kind, ok := moderation.ParseKind("user")
	require.True(t, ok)
	assert.Equal(t, moderation.KindUser, kind)
	assert.Equal(t, "users", kind.Table())

	kind, ok = moderation.ParseKind("artist")
	require.True(t, ok)
	assert.Equal(t, moderation.KindArtist, kind)
	assert.Equal(t, "artists", kind.Table())

	for _, raw := range []string{"", "admin", "Artist", "venue"} {
		_, ok := moderation.ParseKind(raw)
		assert.False(t, ok, raw)
	}
}

func TestEnsureStatusDefaultsToActive(t *testing.T) {
	account := &moderation.Account{ID: uuid.New(), Kind: moderation.KindUser}
	account.EnsureStatus()
	assert.Equal(t, moderation.StatusActive, account.Status)
	assert.True(t, account.IsActive())

	account.Status = moderation.StatusTerminated
	account.EnsureStatus()
	assert.Equal(t, moderation.StatusTerminated, account.Status)
	assert.True(t, account.IsTerminated())
}

func TestProjectStatusCarriesBothStatuses(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	end := now.Add(-time.Minute)
	reason := "policy violation"

	account := &moderation.Account{
		ID:               uuid.New(),
		Kind:             moderation.KindArtist,
		Status:           moderation.StatusSuspended,
		SuspensionReason: &reason,
		SuspensionEnd:    &end,
	}

	projection := moderation.ProjectStatus(account, now)
	assert.Equal(t, account.ID, projection.ID)
	assert.Equal(t, moderation.KindArtist, projection.Kind)
	assert.Equal(t, moderation.StatusSuspended, projection.Status)
	assert.Equal(t, moderation.StatusActive, projection.EffectiveStatus)
	assert.Equal(t, "policy violation", projection.Reason())
	require.NotNil(t, projection.SuspensionEnd)
	assert.Equal(t, end, *projection.SuspensionEnd)
}

func TestPrincipalRefString(t *testing.T) {
	id := uuid.MustParse("7f9c24e5-2f31-4a3e-8f1a-0c6f2b1d9e00")
	ref := moderation.PrincipalRef{ID: id, Kind: moderation.KindUser}
	assert.Equal(t, "user:7f9c24e5-2f31-4a3e-8f1a-0c6f2b1d9e00", ref.String())
}
