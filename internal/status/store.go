// Package status holds the in-memory provisioning status of every account
// the process has seen. State is volatile; a restart forgets everything.
package status

import (
	"sync"
	"time"

	"github.com/kursadbilgin/cosmos-provisioner/internal/domain"
)

// Store is a concurrency-safe map from account name to its current status
// record. Records are overwritten in place, never deleted; terminal records
// stay readable until the process exits.
type Store struct {
	mu      sync.RWMutex
	records map[string]domain.AccountStatus
	now     func() time.Time
}

func NewStore() *Store {
	return &Store{
		records: make(map[string]domain.AccountStatus),
		now:     time.Now,
	}
}

// Update inserts or overwrites the record for accountName and returns the
// stored value. CreatedAt is stamped on first insert and preserved on every
// subsequent update; only UpdatedAt advances.
func (s *Store) Update(accountName string, st domain.Status, message string) domain.AccountStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	record := domain.AccountStatus{
		AccountName: accountName,
		Status:      st,
		CreatedAt:   now,
		UpdatedAt:   now,
		Message:     message,
	}
	if existing, ok := s.records[accountName]; ok {
		record.CreatedAt = existing.CreatedAt
	}
	s.records[accountName] = record
	return record
}

// Get returns the current record for accountName, if any.
func (s *Store) Get(accountName string) (domain.AccountStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[accountName]
	return record, ok
}

// Len reports how many accounts the store currently tracks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}
