package storage

import (
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryStorage keeps the login log in process memory
type MemoryStorage struct {
	mu     sync.RWMutex
	logins map[string]*LoginRecord
	now    func() time.Time
}

var _ LoginStore = (*MemoryStorage)(nil)

// NewMemoryStorage creates a new in-memory login store
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		logins: make(map[string]*LoginRecord),
		now:    time.Now,
	}
}

// RecordLogin creates or refreshes the record for subject
func (s *MemoryStorage) RecordLogin(ctx context.Context, subject, email, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if record, exists := s.logins[subject]; exists {
		record.Email = email
		record.Name = name
		record.LastSeen = now
		record.LoginCount++
		return nil
	}

	s.logins[subject] = &LoginRecord{
		Subject:    subject,
		Email:      email,
		Name:       name,
		FirstSeen:  now,
		LastSeen:   now,
		LoginCount: 1,
	}
	return nil
}

// GetLogin returns a copy of the record for subject
func (s *MemoryStorage) GetLogin(ctx context.Context, subject string) (*LoginRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, exists := s.logins[subject]
	if !exists {
		return nil, ErrLoginNotFound
	}
	recordCopy := *record
	return &recordCopy, nil
}

// ListLogins returns all records, most recent login first
func (s *MemoryStorage) ListLogins(ctx context.Context) ([]LoginRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]LoginRecord, 0, len(s.logins))
	for _, record := range s.logins {
		records = append(records, *record)
	}
	slices.SortFunc(records, func(a, b LoginRecord) int {
		return b.LastSeen.Compare(a.LastSeen)
	})
	return records, nil
}

// Close is a no-op for memory storage
func (s *MemoryStorage) Close() error {
	return nil
}
