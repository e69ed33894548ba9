// Package persistent provides a session token store backed by a
// persistent K:V database, so that issued tokens survive node restart.
package persistent

import (
	"encoding/hex"
	"fmt"

	"go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/stornet-dev/stornet-node/pkg/core/container"
	"github.com/stornet-dev/stornet-node/pkg/services/session/storage"
)

// TokenStore is a wrapper around a persistent K:V db that allows
// creating (storing), retrieving and expiring (removing) session
// tokens.
type TokenStore struct {
	db *bbolt.DB

	l *zap.Logger
}

var sessionsBucket = []byte("sessions")

// NewTokenStore creates, initializes and returns a new TokenStore
// instance.
//
// The elements of the instance are stored in bolt DB.
func NewTokenStore(path string, opts ...Option) (*TokenStore, error) {
	cfg := defaultCfg()

	for _, o := range opts {
		o(cfg)
	}

	db, err := bbolt.Open(path, 0600,
		&bbolt.Options{
			Timeout: cfg.timeout,
		})
	if err != nil {
		return nil, fmt.Errorf("can't open bbolt at %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("could not init session bucket: %w", err)
	}

	return &TokenStore{db: db, l: cfg.l}, nil
}

// Create stores a record of a new token issued to the owner and
// returns the generated token identifier.
func (s *TokenStore) Create(owner container.OwnerID, exp uint64) ([]byte, error) {
	uidBytes, err := storage.NewTokenID()
	if err != nil {
		return nil, fmt.Errorf("could not generate token ID: %w", err)
	}

	rawRecord, err := packRecord(exp)
	if err != nil {
		return nil, fmt.Errorf("could not pack token record: %w", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		rootBucket := tx.Bucket(sessionsBucket)

		ownerBucket, err := rootBucket.CreateBucketIfNotExists([]byte(owner))
		if err != nil {
			return fmt.Errorf("could not get/create %s owner bucket: %w", owner, err)
		}

		return ownerBucket.Put(uidBytes, rawRecord)
	})
	if err != nil {
		return nil, err
	}

	return uidBytes, nil
}

// Get returns the record of the token issued to the owner.
//
// Returns nil if this node has no record of the token.
func (s *TokenStore) Get(owner container.OwnerID, tokenID []byte) (t *storage.Record) {
	err := s.db.View(func(tx *bbolt.Tx) error {
		rootBucket := tx.Bucket(sessionsBucket)

		ownerBucket := rootBucket.Bucket([]byte(owner))
		if ownerBucket == nil {
			return nil
		}

		rawRecord := ownerBucket.Get(tokenID)
		if rawRecord == nil {
			return nil
		}

		var err error

		t, err = unpackRecord(rawRecord)
		if err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		s.l.Error("could not get session from persistent storage",
			zap.Error(err),
			zap.Stringer("ownerID", owner),
			zap.String("tokenID", hex.EncodeToString(tokenID)),
		)
	}

	return
}

// RemoveOld removes all tokens expired at the provided epoch.
func (s *TokenStore) RemoveOld(epoch uint64) {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		rootBucket := tx.Bucket(sessionsBucket)

		// iterating over ownerIDs
		return iterateNestedBuckets(rootBucket, func(b *bbolt.Bucket) error {
			c := b.Cursor()

			// iterating over fixed ownerID's tokens
			for k, v := c.First(); k != nil; k, v = c.Next() {
				rec, err := unpackRecord(v)
				if err != nil {
					s.l.Error("skipping malformed token record",
						zap.String("token_id", hex.EncodeToString(k)),
						zap.Error(err),
					)

					continue
				}

				if rec.ExpiredAt() <= epoch {
					err = c.Delete()
					if err != nil {
						s.l.Error("could not delete expired token",
							zap.String("token_id", hex.EncodeToString(k)),
						)
					}
				}
			}

			return nil
		})
	})
	if err != nil {
		s.l.Error("could not clean up expired tokens",
			zap.Uint64("epoch", epoch),
		)
	}
}

// Close closes database connection.
func (s *TokenStore) Close() error {
	return s.db.Close()
}
