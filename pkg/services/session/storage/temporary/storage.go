// Package temporary provides an in-memory session token store. Its
// contents do not survive node restart, tokens issued through it simply
// expire for the clients.
package temporary

import (
	"sync"

	"github.com/mr-tron/base58"

	"github.com/stornet-dev/stornet-node/pkg/core/container"
	"github.com/stornet-dev/stornet-node/pkg/services/session/storage"
)

type key struct {
	tokenID string
	ownerID string
}

// TokenStore is an in-memory session token store. It allows creating
// (storing), retrieving and expiring (removing) session tokens.
//
// Safe for concurrent use.
type TokenStore struct {
	mtx sync.RWMutex

	tokens map[key]*storage.Record
}

// NewTokenStore creates, initializes and returns an empty TokenStore.
func NewTokenStore() *TokenStore {
	return &TokenStore{
		tokens: make(map[key]*storage.Record),
	}
}

// Create stores a record of a new token issued to the owner and
// returns the generated token identifier.
func (s *TokenStore) Create(owner container.OwnerID, exp uint64) ([]byte, error) {
	uidBytes, err := storage.NewTokenID()
	if err != nil {
		return nil, err
	}

	s.mtx.Lock()
	s.tokens[key{
		tokenID: base58.Encode(uidBytes),
		ownerID: owner.String(),
	}] = storage.NewRecord(exp)
	s.mtx.Unlock()

	return uidBytes, nil
}

// Get returns the record of the token issued to the owner.
//
// Returns nil if this node has no record of the token.
func (s *TokenStore) Get(owner container.OwnerID, tokenID []byte) *storage.Record {
	s.mtx.RLock()
	t := s.tokens[key{
		tokenID: base58.Encode(tokenID),
		ownerID: owner.String(),
	}]
	s.mtx.RUnlock()

	return t
}

// RemoveOld removes all tokens expired at the provided epoch.
func (s *TokenStore) RemoveOld(epoch uint64) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for k, v := range s.tokens {
		if v.ExpiredAt() <= epoch {
			delete(s.tokens, k)
		}
	}
}

// Close releases the store resources. It is a no-op for the in-memory
// implementation.
func (s *TokenStore) Close() error {
	return nil
}
