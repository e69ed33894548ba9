// Package localstore implements the node-local object storage: object
// headers and compressed payloads in a bolt DB.
package localstore

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
	"go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/stornet-dev/stornet-node/pkg/core/container"
	"github.com/stornet-dev/stornet-node/pkg/core/object"
)

// ErrNotFound is returned when the requested object is missing from
// the local storage.
var ErrNotFound = errors.New("object not found")

var (
	headersBucket  = []byte("headers")
	payloadsBucket = []byte("payloads")
)

// Storage is the local object storage of a single node.
//
// For correct operation must be created via Open.
type Storage struct {
	db *bbolt.DB

	enc *zstd.Encoder
	dec *zstd.Decoder

	log *zap.Logger
}

// Option is an option of the Storage constructor.
type Option func(*cfg)

type cfg struct {
	log *zap.Logger
}

// WithLogger returns option to set the Storage logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *cfg) {
		c.log = l
	}
}

// Open opens bolt DB at the given path, creating it if needed, and
// returns a ready-to-use Storage.
func Open(path string, opts ...Option) (*Storage, error) {
	c := &cfg{
		log: zap.L(),
	}

	for i := range opts {
		opts[i](c)
	}

	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("can't open bbolt at %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{headersBucket, payloadsBucket} {
			_, err := tx.CreateBucketIfNotExists(name)
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("could not init object buckets: %w", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &Storage{
		db:  db,
		enc: enc,
		dec: dec,
		log: c.log.With(zap.String("component", "Local Object Storage")),
	}, nil
}

// headerRecord is a serialized object header.
type headerRecord struct {
	Owner       string   `cbor:"owner"`
	PayloadSize uint64   `cbor:"payload_size"`
	CreatedAt   uint64   `cbor:"created_at"`
	LastPart    string   `cbor:"last_part,omitempty"`
	Parts       []string `cbor:"parts,omitempty"`
}

// Put durably persists the object and its payload.
func (s *Storage) Put(obj *object.Object, payload []byte) error {
	rec := headerRecord{
		Owner:       obj.Owner().String(),
		PayloadSize: obj.PayloadSize(),
		CreatedAt:   obj.CreatedAt(),
	}

	if si := obj.SplitInfo(); si != nil {
		rec.LastPart = si.LastPart.EncodeToString()
		for _, p := range si.Parts {
			rec.Parts = append(rec.Parts, p.EncodeToString())
		}
	}

	rawHdr, err := cbor.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal object header: %w", err)
	}

	key := []byte(obj.Address().EncodeToString())
	rawPayload := s.enc.EncodeAll(payload, nil)

	err = s.db.Update(func(tx *bbolt.Tx) error {
		err := tx.Bucket(headersBucket).Put(key, rawHdr)
		if err != nil {
			return err
		}

		return tx.Bucket(payloadsBucket).Put(key, rawPayload)
	})
	if err != nil {
		return fmt.Errorf("persist object %s: %w", obj.Address(), err)
	}

	return nil
}

// Head reads the object header. Returns ErrNotFound if the node does
// not hold the object.
func (s *Storage) Head(addr object.Address) (*object.Object, error) {
	var rec headerRecord

	key := []byte(addr.EncodeToString())

	err := s.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(headersBucket).Get(key)
		if raw == nil {
			return ErrNotFound
		}

		return cbor.Unmarshal(raw, &rec)
	})
	if err != nil {
		return nil, err
	}

	obj := object.New(addr, container.OwnerID(rec.Owner), rec.PayloadSize, rec.CreatedAt)

	if rec.LastPart != "" {
		si := new(object.SplitInfo)

		err = si.LastPart.DecodeString(rec.LastPart)
		if err != nil {
			return nil, fmt.Errorf("decode last part id: %w", err)
		}

		for _, p := range rec.Parts {
			var id object.ID

			err = id.DecodeString(p)
			if err != nil {
				return nil, fmt.Errorf("decode part id: %w", err)
			}

			si.Parts = append(si.Parts, id)
		}

		obj.SetSplitInfo(si)
	}

	return obj, nil
}

// Get reads the object header together with the decompressed payload.
func (s *Storage) Get(addr object.Address) (*object.Object, []byte, error) {
	obj, err := s.Head(addr)
	if err != nil {
		return nil, nil, err
	}

	var payload []byte

	key := []byte(addr.EncodeToString())

	err = s.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(payloadsBucket).Get(key)
		if raw == nil {
			return ErrNotFound
		}

		payload, err = s.dec.DecodeAll(raw, nil)
		if err != nil {
			return fmt.Errorf("decompress payload: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return obj, payload, nil
}

// Exists reports whether the node holds the object.
func (s *Storage) Exists(addr object.Address) (bool, error) {
	var found bool

	err := s.db.View(func(tx *bbolt.Tx) error {
		found = tx.Bucket(headersBucket).Get([]byte(addr.EncodeToString())) != nil
		return nil
	})

	return found, err
}

// Delete removes the object from the local storage. Removing a missing
// object is not an error.
func (s *Storage) Delete(addr object.Address) error {
	key := []byte(addr.EncodeToString())

	return s.db.Update(func(tx *bbolt.Tx) error {
		err := tx.Bucket(headersBucket).Delete(key)
		if err != nil {
			return err
		}

		return tx.Bucket(payloadsBucket).Delete(key)
	})
}

// IterateAddresses passes addresses of all locally stored objects into
// f until the storage is exhausted or f returns true.
func (s *Storage) IterateAddresses(f func(object.Address) (stop bool)) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(headersBucket).Cursor()

		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			var addr object.Address

			err := addr.DecodeString(string(k))
			if err != nil {
				s.log.Warn("malformed object key in local storage",
					zap.ByteString("key", k),
				)

				continue
			}

			if f(addr) {
				return nil
			}
		}

		return nil
	})
}

// Close closes database connection and compression codecs.
func (s *Storage) Close() error {
	s.dec.Close()
	_ = s.enc.Close()

	return s.db.Close()
}
