package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/router-for-me/MailRelayGateway/internal/models"
)

// MemoryStore is an in-process backend with the same conflict semantics as
// the remote ones. It exists for tests and local development.
type MemoryStore struct {
	mu      sync.Mutex
	data    []byte
	version string
	// Messages records the change description of every save, oldest first.
	Messages []string
}

// NewMemoryStore constructs a MemoryStore seeded with the given collection.
func NewMemoryStore(users models.Collection) (*MemoryStore, error) {
	s := &MemoryStore{}
	if users != nil {
		data, errEncode := encodeCollection(users)
		if errEncode != nil {
			return nil, errEncode
		}
		s.data = data
		s.version = contentHash(data)
	}
	return s, nil
}

// Load returns a copy of the stored collection and its version marker.
func (s *MemoryStore) Load(_ context.Context) (models.Collection, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return models.Collection{}, "", nil
	}
	users, errDecode := decodeCollection(s.data)
	if errDecode != nil {
		return nil, "", errDecode
	}
	return users, s.version, nil
}

// Save replaces the stored collection if the version marker still matches.
func (s *MemoryStore) Save(_ context.Context, users models.Collection, version, message string) error {
	data, errEncode := encodeCollection(users)
	if errEncode != nil {
		return errEncode
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if version != s.version {
		return fmt.Errorf("%w: document changed since load", ErrConflict)
	}
	s.data = data
	s.version = contentHash(data)
	s.Messages = append(s.Messages, message)
	return nil
}
