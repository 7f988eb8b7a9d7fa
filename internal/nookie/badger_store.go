package nookie

import (
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
)

// BadgerStore is a durable, file-backed Store built on an embedded Badger
// key/value database. Badger's native per-key TTL and snapshot-isolated
// transactions are a direct match for nookie expiry and the "readers see a
// consistent snapshot, one writer at a time" requirement; no extra locking
// is needed above what db.Update/db.View already provide.
type BadgerStore struct {
	db     *badger.DB
	prefix string
}

// OpenBadgerStore opens (creating if necessary) a Badger database rooted at
// dir, namespacing every key under processorURL so nookies set by different
// processors never collide.
func OpenBadgerStore(dir, processorURL string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open nookie store at %s: %w", dir, err)
	}
	return &BadgerStore{db: db, prefix: processorURL + "\x00"}, nil
}

func (s *BadgerStore) key(name string) []byte {
	return []byte(s.prefix + name)
}

// Get implements Store. Badger itself hides expired entries from reads and
// drops them at compaction.
func (s *BadgerStore) Get(name string) string {
	var value string
	_ = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.key(name))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = string(val)
			return nil
		})
	})
	return value
}

// Set implements Store.
func (s *BadgerStore) Set(name, value, expiry string) error {
	ttl, hasTTL, err := parseExpiry(expiry)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(s.key(name), []byte(value))
		if hasTTL {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
}

func (s *BadgerStore) Close() error { return s.db.Close() }
