package moderation_test

import (
	"context"
	"sync"

	moderation "github.com/goliatone/go-moderation"
	"github.com/goliatone/go-repository-bun"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

// MockAccounts implements moderation.Accounts
type MockAccounts struct {
	mock.Mock
}

func (m *MockAccounts) Get(ctx context.Context, ref moderation.PrincipalRef) (*moderation.Account, error) {
	args := m.Called(ctx, ref)
	record, _ := args.Get(0).(*moderation.Account)
	return record, args.Error(1)
}

func (m *MockAccounts) GetTx(ctx context.Context, tx bun.IDB, ref moderation.PrincipalRef) (*moderation.Account, error) {
	args := m.Called(ctx, tx, ref)
	record, _ := args.Get(0).(*moderation.Account)
	return record, args.Error(1)
}

func (m *MockAccounts) Create(ctx context.Context, record *moderation.Account) (*moderation.Account, error) {
	args := m.Called(ctx, record)
	created, _ := args.Get(0).(*moderation.Account)
	return created, args.Error(1)
}

func (m *MockAccounts) CreateTx(ctx context.Context, tx bun.IDB, record *moderation.Account) (*moderation.Account, error) {
	args := m.Called(ctx, tx, record)
	created, _ := args.Get(0).(*moderation.Account)
	return created, args.Error(1)
}

func (m *MockAccounts) UpdateStatus(ctx context.Context, ref moderation.PrincipalRef, status moderation.AccountStatus, opts ...moderation.StatusUpdateOption) (*moderation.Account, error) {
	args := m.Called(ctx, ref, status, opts)
	record, _ := args.Get(0).(*moderation.Account)
	return record, args.Error(1)
}

func (m *MockAccounts) UpdateStatusTx(ctx context.Context, tx bun.IDB, ref moderation.PrincipalRef, status moderation.AccountStatus, opts ...moderation.StatusUpdateOption) (*moderation.Account, error) {
	args := m.Called(ctx, tx, ref, status, opts)
	record, _ := args.Get(0).(*moderation.Account)
	return record, args.Error(1)
}

// MockNotifier implements moderation.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Emit(ctx context.Context, record *moderation.Notification) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// MockActivitySink implements moderation.ActivitySink
type MockActivitySink struct {
	mock.Mock
}

func (m *MockActivitySink) Record(ctx context.Context, event moderation.ActivityEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// memAccounts is an in-memory Accounts used by engine and end-to-end tests.
// It folds StatusUpdateOptions through the same column semantics as the bun
// implementation.
type memAccounts struct {
	mu      sync.Mutex
	records map[string]*moderation.Account
}

func newMemAccounts(records ...*moderation.Account) *memAccounts {
	m := &memAccounts{records: map[string]*moderation.Account{}}
	for _, r := range records {
		m.put(r)
	}
	return m
}

func (m *memAccounts) put(record *moderation.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *record
	m.records[record.Ref().String()] = &clone
}

func (m *memAccounts) Get(ctx context.Context, ref moderation.PrincipalRef) (*moderation.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.records[ref.String()]
	if !ok {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{"id": ref.ID.String(), "kind": ref.Kind.String()})
	}

	clone := *record
	clone.EnsureStatus()
	return &clone, nil
}

func (m *memAccounts) GetTx(ctx context.Context, _ bun.IDB, ref moderation.PrincipalRef) (*moderation.Account, error) {
	return m.Get(ctx, ref)
}

func (m *memAccounts) Create(ctx context.Context, record *moderation.Account) (*moderation.Account, error) {
	m.put(record)
	return record, nil
}

func (m *memAccounts) CreateTx(ctx context.Context, _ bun.IDB, record *moderation.Account) (*moderation.Account, error) {
	return m.Create(ctx, record)
}

func (m *memAccounts) UpdateStatus(ctx context.Context, ref moderation.PrincipalRef, status moderation.AccountStatus, opts ...moderation.StatusUpdateOption) (*moderation.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.records[ref.String()]
	if !ok {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{"id": ref.ID.String(), "kind": ref.Kind.String()})
	}

	upd := moderation.NewStatusUpdate(status, opts...)

	record.Status = upd.Record.Status
	record.UpdatedAt = upd.Record.UpdatedAt
	if upd.Writes("suspension_reason") {
		record.SuspensionReason = upd.Record.SuspensionReason
	}
	if upd.Writes("suspension_start") {
		record.SuspensionStart = upd.Record.SuspensionStart
	}
	if upd.Writes("suspension_end") {
		record.SuspensionEnd = upd.Record.SuspensionEnd
	}

	clone := *record
	return &clone, nil
}

func (m *memAccounts) UpdateStatusTx(ctx context.Context, _ bun.IDB, ref moderation.PrincipalRef, status moderation.AccountStatus, opts ...moderation.StatusUpdateOption) (*moderation.Account, error) {
	return m.UpdateStatus(ctx, ref, status, opts...)
}

var _ moderation.Accounts = (*memAccounts)(nil)
var _ moderation.Accounts = (*MockAccounts)(nil)

// capturingNotifier records every emitted notification.
type capturingNotifier struct {
	mu      sync.Mutex
	records []*moderation.Notification
}

func (c *capturingNotifier) Emit(ctx context.Context, record *moderation.Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, record)
	return nil
}

func (c *capturingNotifier) last() *moderation.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.records) == 0 {
		return nil
	}
	return c.records[len(c.records)-1]
}

func (c *capturingNotifier) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

// capturingSink records every activity event.
type capturingSink struct {
	mu     sync.Mutex
	events []moderation.ActivityEvent
}

func (c *capturingSink) Record(ctx context.Context, evt moderation.ActivityEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, evt)
	return nil
}

func (c *capturingSink) byType(t moderation.ActivityEventType) []moderation.ActivityEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := []moderation.ActivityEvent{}
	for _, evt := range c.events {
		if evt.EventType == t {
			out = append(out, evt)
		}
	}
	return out
}
