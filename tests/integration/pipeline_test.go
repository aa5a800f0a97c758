//go:build integration

package integration

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/salarylab/hh-research/internal/testutil"
	"github.com/salarylab/hh-research/pkg/cache"
	"github.com/salarylab/hh-research/pkg/collector"
	"github.com/salarylab/hh-research/pkg/hh"
	"github.com/salarylab/hh-research/pkg/query"
	"github.com/salarylab/hh-research/pkg/rates"
	"github.com/salarylab/hh-research/pkg/vacancy"
)

// setupRedis creates a Redis container for integration testing.
func setupRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	cleanup := func() {
		redisClient.Close()
		container.Terminate(ctx)
	}

	return redisClient, cleanup
}

func TestRedisStoreRoundTrip(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	store := cache.NewRedisStore(redisClient, 0)
	ctx := context.Background()

	key := "0123456789abcdef0123456789abcdef"

	if _, err := store.Get(ctx, key); err != cache.ErrCacheMiss {
		t.Fatalf("Get on empty store = %v, want ErrCacheMiss", err)
	}

	from := 100000
	dataset := vacancy.NewDataset([]*vacancy.Vacancy{
		{
			ID: "1", Name: "Go Developer", Employer: "Acme",
			HasSalary: true, From: &from,
			Experience: "1-3", Schedule: "remote",
			Keys: []string{"Go"}, Description: "build services",
		},
	})

	if err := store.Put(ctx, key, dataset); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !reflect.DeepEqual(got, dataset) {
		t.Errorf("round trip changed the dataset:\ngot  %+v\nwant %+v", got, dataset)
	}
}

func TestRedisStoreTTL(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	store := cache.NewRedisStore(redisClient, 1*time.Second)
	ctx := context.Background()

	key := "ffffffffffffffffffffffffffffffff"
	dataset := vacancy.NewDataset(nil)

	if err := store.Put(ctx, key, dataset); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if _, err := store.Get(ctx, key); err != nil {
		t.Fatalf("Get() before expiry error = %v", err)
	}

	time.Sleep(2 * time.Second)

	if _, err := store.Get(ctx, key); err != cache.ErrCacheMiss {
		t.Errorf("Get() after expiry = %v, want ErrCacheMiss", err)
	}
}

func TestRedisStoreCorruptEntry(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	store := cache.NewRedisStore(redisClient, 0)
	ctx := context.Background()

	key := "0000000000000000000000000000dead"
	if err := redisClient.Set(ctx, "hhcache:"+key, "{not json", 0).Err(); err != nil {
		t.Fatalf("seed corrupt entry: %v", err)
	}

	if _, err := store.Get(ctx, key); err != cache.ErrCacheMiss {
		t.Errorf("Get() of corrupt entry = %v, want ErrCacheMiss", err)
	}
}

// TestFullPipelineWithRedis runs discovery, fetch and caching end to end
// against a mock API with a Redis-backed store: the first collection hits the
// network, the second is served entirely from Redis.
func TestFullPipelineWithRedis(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockHH()
	defer mock.Close()

	mock.SetSearchPages(
		`{"pages": 1, "found": 3, "items": [{"id": "1"}, {"id": "2"}]}`,
		`{"pages": 1, "found": 3, "items": [{"id": "3"}]}`,
	)
	mock.SetVacancy("1", `{
		"id": "1", "name": "Go Developer", "employer": {"name": "Acme"},
		"salary": {"from": 100000, "to": 150000, "currency": "RUR", "gross": true},
		"experience": {"name": "1-3"}, "schedule": {"name": "remote"},
		"key_skills": [{"name": "Go"}], "description": "<p>build services</p>"
	}`)
	mock.SetVacancy("2", `{
		"id": "2", "name": "Backend Engineer", "employer": {"name": "Globex"},
		"salary": {"from": 2000, "currency": "USD", "gross": false},
		"experience": {"name": "3-6"}, "schedule": {"name": "office"},
		"key_skills": [], "description": "distributed systems"
	}`)
	mock.SetVacancy("3", `{
		"id": "3", "name": "Intern", "employer": {"name": "Initech"},
		"experience": {"name": "none"}, "schedule": {"name": "office"},
		"key_skills": [], "description": "entry level"
	}`)

	table := rates.Table{"RUR": 1.0, "USD": 0.0130}

	coll := collector.New(collector.Config{
		Client:     hh.New(hh.Config{BaseURL: mock.URL()}),
		Store:      cache.NewRedisStore(redisClient, 0),
		Rates:      table,
		NumWorkers: 2,
	})

	q := query.New().Set("text", "Go").SetInt("area", 1)
	ctx := context.Background()

	dataset, err := coll.Collect(ctx, q, false)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if dataset.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", dataset.Len())
	}
	if got := mock.DetailRequests(); len(got) != 3 {
		t.Errorf("detail requests = %v, want 3 ids", got)
	}

	mock.Reset()

	cached, err := coll.Collect(ctx, q, false)
	if err != nil {
		t.Fatalf("cached Collect() error = %v", err)
	}
	if !reflect.DeepEqual(cached, dataset) {
		t.Error("cached dataset differs from the collected one")
	}
	if got := mock.SearchPagesRequested(); len(got) != 0 {
		t.Errorf("search requests on cached run = %v, want none", got)
	}
	if got := mock.DetailRequests(); len(got) != 0 {
		t.Errorf("detail requests on cached run = %v, want none", got)
	}
}
