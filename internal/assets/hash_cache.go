package assets

import (
	"fmt"
	"io"
	"io/fs"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/afero"

	siteerrors "github.com/toudaivocadou/vocadou/internal/errors"
)

// HashCache remembers content hashes by file metadata so that a rebuild in
// watch mode only reads files whose size or modification time changed.
type HashCache struct {
	// entries maps "path:mtime:size" to the hex content hash
	entries map[string]string
	mu      sync.RWMutex
	hits    int64
	misses  int64
}

// NewHashCache creates an empty cache.
func NewHashCache() *HashCache {
	return &HashCache{entries: make(map[string]string)}
}

func metadataKey(p string, info fs.FileInfo) string {
	return fmt.Sprintf("%s:%d:%d", p, info.ModTime().UnixNano(), info.Size())
}

// Hash returns the hex xxhash64 of the file at p.
func (hc *HashCache) Hash(fsys afero.Fs, p string, info fs.FileInfo) (string, error) {
	key := metadataKey(p, info)

	hc.mu.RLock()
	hash, ok := hc.entries[key]
	hc.mu.RUnlock()
	if ok {
		atomic.AddInt64(&hc.hits, 1)
		return hash, nil
	}
	atomic.AddInt64(&hc.misses, 1)

	f, err := fsys.Open(p)
	if err != nil {
		return "", siteerrors.WrapIO(err, siteerrors.ErrCodeFileRead, p, "failed to open asset")
	}
	defer f.Close()

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", siteerrors.WrapIO(err, siteerrors.ErrCodeFileRead, p, "failed to hash asset")
	}
	hash = fmt.Sprintf("%016x", h.Sum64())

	hc.mu.Lock()
	hc.entries[key] = hash
	hc.mu.Unlock()

	return hash, nil
}

// Hits returns the number of lookups answered without reading the file.
func (hc *HashCache) Hits() int64 { return atomic.LoadInt64(&hc.hits) }

// Misses returns the number of lookups that had to read the file.
func (hc *HashCache) Misses() int64 { return atomic.LoadInt64(&hc.misses) }

// Len returns the number of cached entries.
func (hc *HashCache) Len() int {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return len(hc.entries)
}
