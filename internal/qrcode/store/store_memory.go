// Package store persists registration and verification records.
package store

import (
	"context"
	"sort"
	"sync"

	"truetrace/internal/qrcode/models"
	"truetrace/pkg/domain"
	"truetrace/pkg/platform/sentinel"
)

// InMemoryStore keeps records in maps. The fingerprint map and the consumer
// subject map carry the same uniqueness rules as the Postgres indexes.
type InMemoryStore struct {
	mu               sync.RWMutex
	registrations    map[string]models.RegistrationRecord
	verifications    []models.VerificationRecord
	consumerSubjects map[string]int
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		registrations:    make(map[string]models.RegistrationRecord),
		consumerSubjects: make(map[string]int),
	}
}

func (s *InMemoryStore) FindRegistration(_ context.Context, fingerprint string) (*models.RegistrationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.registrations[fingerprint]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &rec, nil
}

func (s *InMemoryStore) InsertRegistration(_ context.Context, rec *models.RegistrationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.registrations[rec.Fingerprint]; exists {
		return sentinel.ErrConflict
	}
	s.registrations[rec.Fingerprint] = *rec
	return nil
}

func (s *InMemoryStore) FindConsumerVerification(_ context.Context, subjectKey string) (*models.VerificationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.consumerSubjects[subjectKey]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	rec := s.verifications[idx]
	return &rec, nil
}

func (s *InMemoryStore) InsertVerification(_ context.Context, rec *models.VerificationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.Role == domain.RoleConsumer {
		if _, exists := s.consumerSubjects[rec.SubjectKey]; exists {
			return sentinel.ErrConflict
		}
		s.consumerSubjects[rec.SubjectKey] = len(s.verifications)
	}
	s.verifications = append(s.verifications, *rec)
	return nil
}

func (s *InMemoryStore) ListVerifications(_ context.Context, subjectKey string) ([]*models.VerificationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.VerificationRecord, 0)
	for i := range s.verifications {
		if s.verifications[i].SubjectKey == subjectKey {
			rec := s.verifications[i]
			out = append(out, &rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].VerifiedAt.Before(out[j].VerifiedAt)
	})
	return out, nil
}
