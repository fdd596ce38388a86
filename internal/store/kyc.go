/**
 * @description
 * KYC record storage. The service can run against Postgres or, for local
 * development without a database, an in-memory map. Both back the same
 * interface; the choice is made at startup from configuration.
 */

package store

import (
	"context"
	"errors"
	"sync"

	"github.com/facterra/oracle-service/internal/domain"
)

// ErrKYCNotFound is returned when no record exists for an address.
var ErrKYCNotFound = errors.New("kyc record not found")

// KYCStore persists per-address verification records.
type KYCStore interface {
	Get(ctx context.Context, address string) (*domain.KYCStatus, error)
	Set(ctx context.Context, status domain.KYCStatus) error
	Ping(ctx context.Context) error
}

// MemoryKYCStore keeps records in process memory. Records do not survive a
// restart.
type MemoryKYCStore struct {
	mu      sync.RWMutex
	records map[string]domain.KYCStatus
}

func NewMemoryKYCStore() *MemoryKYCStore {
	return &MemoryKYCStore{records: make(map[string]domain.KYCStatus)}
}

func (s *MemoryKYCStore) Get(ctx context.Context, address string) (*domain.KYCStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[address]
	if !ok {
		return nil, ErrKYCNotFound
	}
	return &record, nil
}

func (s *MemoryKYCStore) Set(ctx context.Context, status domain.KYCStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[status.Address] = status
	return nil
}

func (s *MemoryKYCStore) Ping(ctx context.Context) error {
	return nil
}
