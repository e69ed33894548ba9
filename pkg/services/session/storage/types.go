package storage

import (
	"fmt"

	"github.com/google/uuid"
)

// Record is the node-local trace of an issued session token. Presence
// of a record is what makes the issuing node authorize requests with
// the token; nodes without the record deny them.
type Record struct {
	exp uint64
}

// NewRecord creates a record of a token expiring at the given epoch.
func NewRecord(exp uint64) *Record {
	return &Record{exp: exp}
}

// ExpiredAt returns the last epoch the token is valid at.
func (r *Record) ExpiredAt() uint64 {
	return r.exp
}

// NewTokenID generates a new unique token identifier.
func NewTokenID() ([]byte, error) {
	uid, err := uuid.NewUUID()
	if err != nil {
		return nil, fmt.Errorf("could not generate UUID: %w", err)
	}

	uidBytes, err := uid.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("could not marshal UUID: %w", err)
	}

	return uidBytes, nil
}
