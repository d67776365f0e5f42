package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"go.etcd.io/bbolt"
)

// BoltStore implements GenerationStore using BoltDB
// Bucket: "generations" -> key: target path, value: JSON-encoded Generation
type BoltStore struct {
	db *bbolt.DB
}

const bucketName = "generations"

// DefaultPath returns the ledger location under the XDG state directory.
func DefaultPath() string {
	return filepath.Join(xdg.StateHome, "yamlconf", "ledger.db")
}

func NewBoltStore(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create ledger directory: %w", err)
	}
	// A running watch holds the file lock for as long as it runs.
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, err
	}
	// Ensure bucket exists
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &BoltStore{db: db}, nil
}

func (b *BoltStore) Record(gen Generation) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		val, err := json.Marshal(gen)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(gen.Path), val)
	})
}

func (b *BoltStore) Get(path string) (*Generation, error) {
	var gen Generation
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		val := bucket.Get([]byte(path))
		if val == nil {
			return ErrGenerationNotFound
		}
		return json.Unmarshal(val, &gen)
	})
	if err != nil {
		return nil, err
	}
	return &gen, nil
}

// List returns all generations ordered by path.
func (b *BoltStore) List() ([]Generation, error) {
	var gens []Generation
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).ForEach(func(_, v []byte) error {
			var gen Generation
			if err := json.Unmarshal(v, &gen); err != nil {
				return err
			}
			gens = append(gens, gen)
			return nil
		})
	})
	return gens, err
}

func (b *BoltStore) Close() error {
	return b.db.Close()
}
