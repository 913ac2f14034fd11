package offline

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"
)

// bucketStores maps store name to its creation sequence. Each store's
// entries live in a top-level bucket named storePrefix+name.
var bucketStores = []byte("stores")

const storePrefix = "store:"

// BoltStorage keeps one bbolt bucket per store.
type BoltStorage struct {
	db *bolt.DB
}

// OpenBolt opens or creates a bbolt file at path.
func OpenBolt(path string) (*BoltStorage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketStores)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &BoltStorage{db: db}, nil
}

// Close closes the underlying file.
func (s *BoltStorage) Close() error {
	return s.db.Close()
}

func (s *BoltStorage) Open(ctx context.Context, name string) (Store, error) {
	err := s.db.Update(func(tx *bolt.Tx) error {
		meta := tx.Bucket(bucketStores)
		if meta.Get([]byte(name)) != nil {
			return nil
		}
		seq, err := meta.NextSequence()
		if err != nil {
			return err
		}
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], seq)
		if err := meta.Put([]byte(name), buf[:]); err != nil {
			return err
		}
		_, err = tx.CreateBucketIfNotExists(storeBucket(name))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("opening cache store %s: %w", name, err)
	}
	return &boltStore{db: s.db, name: name}, nil
}

func (s *BoltStorage) Names(ctx context.Context) ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bolt.Tx) error {
		names = orderedNames(tx)
		return nil
	})
	return names, err
}

func (s *BoltStorage) Delete(ctx context.Context, name string) (bool, error) {
	var existed bool
	err := s.db.Update(func(tx *bolt.Tx) error {
		meta := tx.Bucket(bucketStores)
		if meta.Get([]byte(name)) == nil {
			return nil
		}
		existed = true
		if err := meta.Delete([]byte(name)); err != nil {
			return err
		}
		if tx.Bucket(storeBucket(name)) != nil {
			return tx.DeleteBucket(storeBucket(name))
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("deleting cache store %s: %w", name, err)
	}
	return existed, nil
}

func (s *BoltStorage) Match(ctx context.Context, key string) (*Response, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		for _, name := range orderedNames(tx) {
			b := tx.Bucket(storeBucket(name))
			if b == nil {
				continue
			}
			if v := b.Get([]byte(key)); v != nil {
				data = append([]byte(nil), v...)
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrCacheMiss
	}
	return decodeEntry(data)
}

func orderedNames(tx *bolt.Tx) []string {
	type named struct {
		name string
		seq  uint64
	}
	var all []named
	tx.Bucket(bucketStores).ForEach(func(k, v []byte) error {
		all = append(all, named{name: string(k), seq: binary.BigEndian.Uint64(v)})
		return nil
	})
	sort.Slice(all, func(i, j int) bool { return all[i].seq < all[j].seq })

	names := make([]string, len(all))
	for i, n := range all {
		names[i] = n.name
	}
	return names
}

func storeBucket(name string) []byte {
	return []byte(storePrefix + name)
}

// boltEntry wraps a Response with its insertion sequence so Keys can
// report insertion order.
type boltEntry struct {
	Seq      uint64    `json:"seq"`
	Response *Response `json:"response"`
}

func decodeEntry(data []byte) (*Response, error) {
	var e boltEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("decoding cache entry: %w", err)
	}
	if e.Response == nil {
		return nil, ErrCacheMiss
	}
	return e.Response, nil
}

type boltStore struct {
	db   *bolt.DB
	name string
}

func (s *boltStore) Match(ctx context.Context, key string) (*Response, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(storeBucket(s.name))
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrCacheMiss
	}
	return decodeEntry(data)
}

func (s *boltStore) Put(ctx context.Context, key string, resp *Response) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(storeBucket(s.name))
		if b == nil {
			return fmt.Errorf("cache store %s was deleted", s.name)
		}
		e := boltEntry{Response: resp}
		if old := b.Get([]byte(key)); old != nil {
			var prev boltEntry
			if json.Unmarshal(old, &prev) == nil {
				e.Seq = prev.Seq
			}
		}
		if e.Seq == 0 {
			seq, err := b.NextSequence()
			if err != nil {
				return err
			}
			e.Seq = seq
		}
		data, err := json.Marshal(e)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("storing %s in %s: %w", key, s.name, err)
	}
	return nil
}

func (s *boltStore) Keys(ctx context.Context) ([]string, error) {
	type seqKey struct {
		key string
		seq uint64
	}
	var all []seqKey
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(storeBucket(s.name))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var e boltEntry
			if err := json.Unmarshal(v, &e); err != nil {
				return err
			}
			all = append(all, seqKey{key: string(k), seq: e.Seq})
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("listing keys of %s: %w", s.name, err)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].seq < all[j].seq })

	keys := make([]string, len(all))
	for i, k := range all {
		keys[i] = k.key
	}
	return keys, nil
}
