// Package badger provides a persistent vector index backed by a Badger
// keyspace. Vectors are written through to disk and kept resident in
// memory for scanning, so queries never touch the database.
package badger

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/custodia-labs/ancora/internal/adapters/driven/vector"
	"github.com/custodia-labs/ancora/internal/core/ports/driven"
	"github.com/custodia-labs/ancora/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// keyPrefix namespaces vector entries inside the keyspace.
const keyPrefix = "vec:"

// Index is a write-through vector index: Upsert and Delete mutate both
// the Badger keyspace and the resident map, Query scans the map only.
type Index struct {
	mu            sync.RWMutex
	db            *badger.DB
	vectors       map[string][]float32
	minSimilarity float64
}

// badgerLogger adapts Badger's logger interface onto the package logger.
// Badger is chatty, so informational output goes to the debug level.
type badgerLogger struct{}

var _ badger.Logger = badgerLogger{}

func (badgerLogger) Errorf(format string, args ...any)   { logger.Warn("badger: "+format, args...) }
func (badgerLogger) Warningf(format string, args ...any) { logger.Warn("badger: "+format, args...) }
func (badgerLogger) Infof(format string, args ...any)    { logger.Debug("badger: "+format, args...) }
func (badgerLogger) Debugf(format string, args ...any)   { logger.Debug("badger: "+format, args...) }

// OpenIndex opens (or creates) a vector index at the given directory.
// With inMemory set, nothing touches disk; useful for tests. Existing
// vectors are loaded into the resident map before the index is returned.
// minSimilarity <= 0 falls back to the default floor.
func OpenIndex(path string, inMemory bool, minSimilarity float64) (*Index, error) {
	var opts badger.Options
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(path, 0700); err != nil {
			return nil, fmt.Errorf("create vector directory: %w", err)
		}
		opts = badger.DefaultOptions(path)
	}
	opts.Logger = badgerLogger{}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open vector keyspace: %w", err)
	}

	if minSimilarity <= 0 {
		minSimilarity = vector.DefaultMinSimilarity
	}

	idx := &Index{
		db:            db,
		vectors:       make(map[string][]float32),
		minSimilarity: minSimilarity,
	}

	if err := idx.load(); err != nil {
		db.Close()
		return nil, fmt.Errorf("load vectors: %w", err)
	}

	logger.Debug("Vector index open: %d vectors resident", len(idx.vectors))
	return idx, nil
}

// load reads every stored vector into the resident map.
func (i *Index) load() error {
	return i.db.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefix)
		it := tx.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			id := string(item.Key()[len(keyPrefix):])
			err := item.Value(func(val []byte) error {
				i.vectors[id] = bytesToFloat32Slice(val)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Upsert inserts or replaces vectors for the given passage IDs. The
// keyspace write commits before the resident map changes, so a crash
// mid-upsert leaves queries serving the old vectors.
func (i *Index) Upsert(_ context.Context, ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("upsert: %d ids but %d vectors", len(ids), len(vectors))
	}

	err := i.db.Update(func(tx *badger.Txn) error {
		for n, id := range ids {
			if err := tx.Set([]byte(keyPrefix+id), float32SliceToBytes(vectors[n])); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("write vectors: %w", err)
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	for n, id := range ids {
		i.vectors[id] = vectors[n]
	}
	return nil
}

// Delete removes vectors from the index. Unknown IDs are ignored.
func (i *Index) Delete(_ context.Context, ids []string) error {
	err := i.db.Update(func(tx *badger.Txn) error {
		for _, id := range ids {
			if err := tx.Delete([]byte(keyPrefix + id)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete vectors: %w", err)
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	for _, id := range ids {
		delete(i.vectors, id)
	}
	return nil
}

// Query finds up to k passages by descending cosine similarity.
func (i *Index) Query(_ context.Context, queryVec []float32, k int) ([]driven.VectorHit, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return vector.Scan(i.vectors, queryVec, k, i.minSimilarity), nil
}

// Count returns the number of stored vectors.
func (i *Index) Count(_ context.Context) (int, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.vectors), nil
}

// Close closes the underlying keyspace.
func (i *Index) Close() error {
	return i.db.Close()
}

// float32SliceToBytes encodes a vector as little-endian float32 bits.
func float32SliceToBytes(floats []float32) []byte {
	buf := make([]byte, len(floats)*4)
	for n, f := range floats {
		binary.LittleEndian.PutUint32(buf[n*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice decodes a little-endian float32 blob.
func bytesToFloat32Slice(data []byte) []float32 {
	floats := make([]float32, len(data)/4)
	for n := range floats {
		floats[n] = math.Float32frombits(binary.LittleEndian.Uint32(data[n*4:]))
	}
	return floats
}
