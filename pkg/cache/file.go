package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/rs/zerolog"

	"github.com/salarylab/hh-research/pkg/logging"
	"github.com/salarylab/hh-research/pkg/vacancy"
)

// entry is the on-disk envelope around a serialized dataset.
type entry struct {
	CreatedAt time.Time        `json:"created_at"`
	Dataset   *vacancy.Dataset `json:"dataset"`
}

// keyPattern guards against keys escaping the cache directory. Keys are
// always hex digests, so anything else is rejected outright.
var keyPattern = regexp.MustCompile(`^[0-9a-f]{8,64}$`)

// FileStore keeps datasets as a flat directory of JSON blobs named by their
// content hash.
type FileStore struct {
	dir    string
	logger zerolog.Logger
}

// NewFileStore creates a file store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir %s: %w", dir, err)
	}
	return &FileStore{
		dir:    dir,
		logger: logging.NewLogger("cache"),
	}, nil
}

// Get implements Store. Missing and corrupt blobs both read as a miss.
func (s *FileStore) Get(_ context.Context, key string) (*vacancy.Dataset, error) {
	if !keyPattern.MatchString(key) {
		return nil, fmt.Errorf("invalid cache key %q", key)
	}

	data, err := os.ReadFile(filepath.Join(s.dir, key))
	if err != nil {
		CacheMisses.WithLabelValues("file").Inc()
		return nil, ErrCacheMiss
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil || e.Dataset == nil || e.Dataset.Validate() != nil {
		s.logger.Warn().Str("key", key).Msg("Corrupt cache entry, treating as miss")
		CacheCorrupt.WithLabelValues("file").Inc()
		CacheMisses.WithLabelValues("file").Inc()
		return nil, ErrCacheMiss
	}

	CacheHits.WithLabelValues("file").Inc()
	s.logger.Debug().Str("key", key).Int("records", e.Dataset.Len()).Msg("Cache hit")

	return e.Dataset, nil
}

// Put implements Store. The blob is written to a temp file and renamed into
// place so a crash mid-write cannot leave a truncated entry under the key.
func (s *FileStore) Put(_ context.Context, key string, dataset *vacancy.Dataset) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("invalid cache key %q", key)
	}
	if dataset == nil {
		return fmt.Errorf("dataset cannot be nil")
	}

	data, err := json.Marshal(entry{CreatedAt: time.Now().UTC(), Dataset: dataset})
	if err != nil {
		CacheErrors.WithLabelValues("file", "put").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, key+".tmp*")
	if err != nil {
		CacheErrors.WithLabelValues("file", "put").Inc()
		return fmt.Errorf("create cache temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		CacheErrors.WithLabelValues("file", "put").Inc()
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		CacheErrors.WithLabelValues("file", "put").Inc()
		return fmt.Errorf("close cache temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, key)); err != nil {
		os.Remove(tmp.Name())
		CacheErrors.WithLabelValues("file", "put").Inc()
		return fmt.Errorf("store cache entry: %w", err)
	}

	s.logger.Debug().Str("key", key).Int("records", dataset.Len()).Msg("Cache entry written")

	return nil
}
