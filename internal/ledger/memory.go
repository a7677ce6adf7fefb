package ledger

import (
	"context"
	"sync"
)

// MemoryLedger is an in-process Ledger used only for tests (per the
// design decision to have one production implementation, backed by
// Redis, rather than a separate "single-process" variant).
type MemoryLedger struct {
	mu     sync.Mutex
	usage  map[string]int64
	errors map[string]int64
}

// NewMemory creates an empty in-memory ledger.
func NewMemory() *MemoryLedger {
	return &MemoryLedger{
		usage:  make(map[string]int64),
		errors: make(map[string]int64),
	}
}

func (m *MemoryLedger) IncrementUsage(_ context.Context, credID, day string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := usageKey(credID, day)
	m.usage[k]++
	return m.usage[k], nil
}

func (m *MemoryLedger) IncrementError(_ context.Context, credID, day string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := errorsKey(credID, day)
	m.errors[k]++
	return m.errors[k], nil
}

func (m *MemoryLedger) GetUsage(_ context.Context, credID, day string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.usage[usageKey(credID, day)], nil
}

func (m *MemoryLedger) GetErrors(_ context.Context, credID, day string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errors[errorsKey(credID, day)], nil
}

func (m *MemoryLedger) ListAvailable(_ context.Context, credIDs []string, day string) ([]CredentialUsage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]CredentialUsage, len(credIDs))
	for i, id := range credIDs {
		result[i] = CredentialUsage{
			CredentialID: id,
			Usage:        m.usage[usageKey(id, day)],
			Errors:       m.errors[errorsKey(id, day)],
		}
	}
	return result, nil
}

func (m *MemoryLedger) Reset(_ context.Context, credID, day string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if credID == "" {
		m.usage = make(map[string]int64)
		m.errors = make(map[string]int64)
		return nil
	}
	delete(m.usage, usageKey(credID, day))
	delete(m.errors, errorsKey(credID, day))
	return nil
}

var _ Ledger = (*MemoryLedger)(nil)
