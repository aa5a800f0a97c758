// Package collector drives the full collection pass: cache lookup, paginated
// identifier discovery, concurrent per-vacancy fetch, dataset assembly and
// the final cache write.
package collector

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/salarylab/hh-research/pkg/cache"
	"github.com/salarylab/hh-research/pkg/hh"
	"github.com/salarylab/hh-research/pkg/logging"
	"github.com/salarylab/hh-research/pkg/query"
	"github.com/salarylab/hh-research/pkg/rates"
	"github.com/salarylab/hh-research/pkg/vacancy"
)

// progressEvery controls how often fetch progress is logged.
const progressEvery = 50

// Config holds collector configuration.
type Config struct {
	// Client is the vacancy API client.
	Client *hh.Client

	// Store caches assembled datasets by query hash.
	Store cache.Store

	// Rates is the exchange-rate table shared read-only by all workers.
	// It must cover every currency the dataset can contain.
	Rates rates.Table

	// NumWorkers bounds the per-vacancy fetch parallelism. Values below 1
	// are coerced to 1.
	NumWorkers int

	// SkipFailed makes a single failed vacancy fetch drop that identifier
	// with a warning instead of aborting the whole run. Off by default:
	// the base behavior is all-or-nothing.
	SkipFailed bool
}

// Collector assembles vacancy datasets for search queries.
type Collector struct {
	client     *hh.Client
	fetcher    *vacancy.Fetcher
	store      cache.Store
	table      rates.Table
	workers    int
	skipFailed bool
	logger     zerolog.Logger
	flight     singleflight.Group
}

// New creates a collector.
func New(cfg Config) *Collector {
	workers := cfg.NumWorkers
	if workers < 1 {
		workers = 1
	}
	return &Collector{
		client:     cfg.Client,
		fetcher:    vacancy.NewFetcher(cfg.Client),
		store:      cfg.Store,
		table:      cfg.Rates,
		workers:    workers,
		skipFailed: cfg.SkipFailed,
		logger:     logging.NewLogger("collector"),
	}
}

// NumWorkers returns the effective worker count.
func (c *Collector) NumWorkers() int {
	return c.workers
}

// Collect returns the dataset for q. Unless refresh is set, a cached dataset
// under the query's content hash is returned without any network activity.
// Concurrent calls for the same query share a single collection pass.
func (c *Collector) Collect(ctx context.Context, q *query.Query, refresh bool) (*vacancy.Dataset, error) {
	key := q.Hash()

	result, err, _ := c.flight.Do(key, func() (interface{}, error) {
		return c.collect(ctx, q, key, refresh)
	})
	if err != nil {
		return nil, err
	}
	return result.(*vacancy.Dataset), nil
}

func (c *Collector) collect(ctx context.Context, q *query.Query, key string, refresh bool) (*vacancy.Dataset, error) {
	start := time.Now()
	logger := c.logger.With().
		Str("run_id", uuid.NewString()).
		Str("query", q.Encode()).
		Logger()

	if !refresh {
		dataset, err := c.store.Get(ctx, key)
		switch {
		case err == nil:
			logger.Info().Int("records", dataset.Len()).
				Msg("Returning cached results; enable refresh to update")
			collectionsTotal.WithLabelValues("cached").Inc()
			return dataset, nil
		case !errors.Is(err, cache.ErrCacheMiss):
			return nil, fmt.Errorf("cache lookup: %w", err)
		}
	}

	ids, err := c.discoverIDs(ctx, q.Encode(), logger)
	if err != nil {
		collectionsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	records, err := c.fetchAll(ctx, ids, logger)
	if err != nil {
		collectionsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	dataset := vacancy.NewDataset(records)

	// The dataset is complete at this point; a failed cache write only
	// costs the next run a re-fetch.
	if err := c.store.Put(ctx, key, dataset); err != nil {
		logger.Warn().Err(err).Msg("Failed to write cache entry")
	}

	collectionsTotal.WithLabelValues("collected").Inc()
	collectionDuration.Observe(time.Since(start).Seconds())
	logger.Info().
		Int("records", dataset.Len()).
		Dur("duration", time.Since(start)).
		Msg("Collection complete")

	return dataset, nil
}

// discoverIDs walks the search pages sequentially, starting with page 0 to
// learn the total page count. A page whose response omits the items array
// ends the walk: the API signals end-of-results that way, it is not an error.
func (c *Collector) discoverIDs(ctx context.Context, params string, logger zerolog.Logger) ([]string, error) {
	first, err := c.client.SearchPage(ctx, params, 0)
	if err != nil {
		return nil, fmt.Errorf("search page 0: %w", err)
	}

	var ids []string
	for _, item := range first.Items {
		ids = append(ids, item.ID)
	}
	if first.Items == nil {
		return ids, nil
	}

	for page := 1; page <= first.Pages; page++ {
		result, err := c.client.SearchPage(ctx, params, page)
		if err != nil {
			return nil, fmt.Errorf("search page %d: %w", page, err)
		}
		if result.Items == nil {
			break
		}
		for _, item := range result.Items {
			ids = append(ids, item.ID)
		}
	}

	logger.Info().Int("ids", len(ids)).Int("pages", first.Pages+1).Msg("Identifier discovery complete")

	return ids, nil
}

// fetchAll retrieves every vacancy through a bounded worker pool. Each
// result is written to the slot of its originating identifier, so assembly
// is matched to input regardless of completion order.
func (c *Collector) fetchAll(ctx context.Context, ids []string, logger zerolog.Logger) ([]*vacancy.Vacancy, error) {
	results := make([]*vacancy.Vacancy, len(ids))

	var fetched atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for i, id := range ids {
		g.Go(func() error {
			v, err := c.fetcher.Fetch(gctx, id, c.table)
			if err != nil {
				fetchFailuresTotal.Inc()
				if c.skipFailed {
					logger.Warn().Err(err).Str("vacancy_id", id).Msg("Skipping failed vacancy")
					return nil
				}
				return fmt.Errorf("fetch vacancy %s: %w", id, err)
			}

			results[i] = v
			vacanciesFetched.Inc()
			if n := fetched.Add(1); n%progressEvery == 0 {
				logger.Info().Int64("fetched", n).Int("total", len(ids)).Msg("Fetch progress")
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Compact the slots left empty by skipped identifiers.
	records := results[:0]
	for _, v := range results {
		if v != nil {
			records = append(records, v)
		}
	}

	return records, nil
}
