package persistent

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"go.etcd.io/bbolt"

	"github.com/stornet-dev/stornet-node/pkg/services/session/storage"
)

// tokenRecord is the persisted form of a token record.
type tokenRecord struct {
	Exp uint64 `cbor:"exp"`
}

func packRecord(exp uint64) ([]byte, error) {
	return cbor.Marshal(tokenRecord{Exp: exp})
}

func unpackRecord(raw []byte) (*storage.Record, error) {
	var rec tokenRecord

	err := cbor.Unmarshal(raw, &rec)
	if err != nil {
		return nil, fmt.Errorf("malformed token record: %w", err)
	}

	return storage.NewRecord(rec.Exp), nil
}

func iterateNestedBuckets(b *bbolt.Bucket, fn func(b *bbolt.Bucket) error) error {
	c := b.Cursor()

	for k, v := c.First(); k != nil; k, v = c.Next() {
		// nested buckets come with a nil value
		if v == nil {
			err := fn(b.Bucket(k))
			if err != nil {
				return err
			}
		}
	}

	return nil
}
