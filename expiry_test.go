package moderation_test

import (
	"testing"
	"time"

	moderation "github.com/goliatone/go-moderation"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestResolveEffectiveStatus(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	cases := []struct {
		name     string
		status   moderation.AccountStatus
		end      *time.Time
		expected moderation.AccountStatus
	}{
		{"active passes through", moderation.StatusActive, nil, moderation.StatusActive},
		{"inactive passes through", moderation.StatusInactive, nil, moderation.StatusInactive},
		{"terminated ignores window", moderation.StatusTerminated, &past, moderation.StatusTerminated},
		{"suspended with future end holds", moderation.StatusSuspended, &future, moderation.StatusSuspended},
		{"suspended with past end lapses", moderation.StatusSuspended, &past, moderation.StatusActive},
		{"suspended at exact end lapses", moderation.StatusSuspended, &now, moderation.StatusActive},
		{"suspended without end never lapses", moderation.StatusSuspended, nil, moderation.StatusSuspended},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := moderation.ResolveEffectiveStatus(tc.status, tc.end, now)
			assert.Equal(t, tc.expected, got)
		})
	}
}

// A lapsed suspension resolves to active at read time while the stored
// status still says suspended. Both outputs are correct at the same
// instant; if a future change collapses them, this test makes that change
// deliberate.
func TestExpiryIsAdvisoryOnly(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	end := now.Add(-time.Hour)

	account := &moderation.Account{
		ID:            uuid.New(),
		Kind:          moderation.KindUser,
		Status:        moderation.StatusSuspended,
		SuspensionEnd: &end,
	}

	assert.Equal(t, moderation.StatusActive, account.EffectiveStatus(now))
	assert.Equal(t, moderation.StatusSuspended, account.Status)

	projection := moderation.ProjectStatus(account, now)
	assert.Equal(t, moderation.StatusSuspended, projection.Status)
	assert.Equal(t, moderation.StatusActive, projection.EffectiveStatus)
	assert.Equal(t, moderation.StatusActive, projection.Resolve(now))
}

func TestSuspensionLapsed(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Second)
	future := now.Add(time.Second)

	assert.False(t, moderation.SuspensionLapsed(nil, now))
	assert.False(t, moderation.SuspensionLapsed(&future, now))
	assert.True(t, moderation.SuspensionLapsed(&past, now))
	assert.True(t, moderation.SuspensionLapsed(&now, now))
}
