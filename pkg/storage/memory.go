package storage

import (
	"context"
	"log/slog"
	"sync"

	"warden-hq/warden/pkg/checker"
	"warden-hq/warden/pkg/policy"
)

// MemoryStorage keeps policies in process memory, in insertion order. It is
// the reference Storage implementation, the cache tier for EnfoldCache, and
// the workhorse of the test suite.
type MemoryStorage struct {
	mu       sync.RWMutex
	policies map[string]*policy.Policy
	order    []string
	logger   *slog.Logger
}

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage(logger *slog.Logger) *MemoryStorage {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryStorage{
		policies: make(map[string]*policy.Policy),
		logger:   logger.With("component", "storage.memory"),
	}
}

// Add implements Storage.
func (s *MemoryStorage) Add(_ context.Context, p *policy.Policy) error {
	if err := p.Validate(); err != nil {
		return &PolicyCreationError{UID: p.UID, Cause: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.policies[p.UID]; exists {
		return &PolicyExistsError{UID: p.UID}
	}
	s.policies[p.UID] = p
	s.order = append(s.order, p.UID)

	s.logger.Debug("policy added", "uid", p.UID)
	return nil
}

// Get implements Storage.
func (s *MemoryStorage) Get(_ context.Context, uid string) (*policy.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.policies[uid], nil
}

// GetAll implements Storage.
func (s *MemoryStorage) GetAll(_ context.Context, limit, offset int) ([]*policy.Policy, error) {
	if err := ValidatePagination(limit, offset); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if offset >= len(s.order) {
		return nil, nil
	}
	end := offset + limit
	if end > len(s.order) {
		end = len(s.order)
	}

	page := make([]*policy.Policy, 0, end-offset)
	for _, uid := range s.order[offset:end] {
		page = append(page, s.policies[uid])
	}
	return page, nil
}

// FindForInquiry implements Storage. Candidates are pre-filtered by the
// checker's policy family only; the caller still applies the checker.
func (s *MemoryStorage) FindForInquiry(_ context.Context, _ *policy.Inquiry, chk checker.Checker) ([]*policy.Policy, error) {
	want, filter, err := TypeForChecker(chk)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*policy.Policy
	for _, uid := range s.order {
		p := s.policies[uid]
		if filter {
			typ, ok := p.DeriveType()
			if !ok || typ != want {
				continue
			}
		}
		out = append(out, p)
	}
	return out, nil
}

// Update implements Storage.
func (s *MemoryStorage) Update(_ context.Context, p *policy.Policy) error {
	if err := p.Validate(); err != nil {
		return &PolicyUpdateError{UID: p.UID, Cause: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.policies[p.UID]; !exists {
		return &PolicyUpdateError{UID: p.UID, Cause: &PolicyNotFoundError{UID: p.UID}}
	}
	s.policies[p.UID] = p

	s.logger.Debug("policy updated", "uid", p.UID)
	return nil
}

// Delete implements Storage.
func (s *MemoryStorage) Delete(_ context.Context, uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.policies[uid]; !exists {
		return &PolicyNotFoundError{UID: uid}
	}
	delete(s.policies, uid)
	for i, u := range s.order {
		if u == uid {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	s.logger.Debug("policy deleted", "uid", uid)
	return nil
}

// Len returns the number of stored policies.
func (s *MemoryStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
