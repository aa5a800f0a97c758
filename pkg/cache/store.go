// Package cache provides content-addressed storage for collected datasets.
//
// Keys are the hexadecimal content hash of the canonical query string. An
// entry is all-or-nothing: the collector writes it only after a fully
// successful collection pass, so a failed run never poisons the cache.
//
// A miss is normal control flow, not a failure, and a corrupt entry is
// deliberately indistinguishable from a miss: the worst a damaged cache can
// do is force a re-fetch.
package cache

import (
	"context"
	"errors"

	"github.com/salarylab/hh-research/pkg/vacancy"
)

// ErrCacheMiss indicates the key is not present (or its entry could not be
// read back). Callers proceed to a network fetch.
var ErrCacheMiss = errors.New("cache miss")

// Store is a content-addressed dataset store.
type Store interface {
	// Get returns the dataset stored under key, or ErrCacheMiss.
	Get(ctx context.Context, key string) (*vacancy.Dataset, error)

	// Put stores the dataset under key, replacing any previous entry.
	Put(ctx context.Context, key string, dataset *vacancy.Dataset) error
}
