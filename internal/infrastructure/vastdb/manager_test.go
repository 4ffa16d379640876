package vastdb

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snowch/vast-sp-console/internal/config"
	"github.com/snowch/vast-sp-console/internal/domain/models"
	apperrors "github.com/snowch/vast-sp-console/pkg/errors"
	"github.com/snowch/vast-sp-console/pkg/logger"
)

// fakeStore is an in-memory Client used as the test double for the real
// REST client.
type fakeStore struct {
	mu      sync.Mutex
	schemas map[string][]TableInfo
}

func newFakeStore(schemas ...string) *fakeStore {
	f := &fakeStore{schemas: make(map[string][]TableInfo)}
	for _, s := range schemas {
		f.schemas[s] = nil
	}
	return f
}

func (f *fakeStore) Transaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	return fn(ctx, fakeTx{store: f})
}

func (f *fakeStore) Close() error { return nil }

type fakeTx struct{ store *fakeStore }

func (t fakeTx) Bucket(string) Bucket { return fakeBucket{store: t.store} }

type fakeBucket struct{ store *fakeStore }

func (b fakeBucket) CreateSchema(_ context.Context, name string) (*SchemaInfo, error) {
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	if _, ok := b.store.schemas[name]; ok {
		return nil, fmt.Errorf("%w: %s", ErrSchemaExists, name)
	}
	b.store.schemas[name] = nil
	return &SchemaInfo{Name: name}, nil
}

func (b fakeBucket) Schemas(context.Context) ([]SchemaInfo, error) {
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	out := make([]SchemaInfo, 0, len(b.store.schemas))
	for name := range b.store.schemas {
		out = append(out, SchemaInfo{Name: name})
	}
	return out, nil
}

func (b fakeBucket) Schema(_ context.Context, name string) (*SchemaInfo, error) {
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	if _, ok := b.store.schemas[name]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingSchema, name)
	}
	return &SchemaInfo{Name: name}, nil
}

func (b fakeBucket) DropSchema(_ context.Context, name string) error {
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	if _, ok := b.store.schemas[name]; !ok {
		return fmt.Errorf("%w: %s", ErrMissingSchema, name)
	}
	delete(b.store.schemas, name)
	return nil
}

func (b fakeBucket) Tables(_ context.Context, schema string) ([]TableInfo, error) {
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	tables, ok := b.store.schemas[schema]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingSchema, schema)
	}
	return tables, nil
}

func (b fakeBucket) CreateTable(_ context.Context, schema, table string, columns []ColumnSpec) (*TableInfo, error) {
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	tables, ok := b.store.schemas[schema]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingSchema, schema)
	}
	for _, t := range tables {
		if t.Name == table {
			return nil, fmt.Errorf("%w: %s", ErrTableExists, table)
		}
	}
	info := TableInfo{Name: table, Columns: columns}
	b.store.schemas[schema] = append(tables, info)
	return &info, nil
}

func validStoreConfig() *config.VastDBConfig {
	return &config.VastDBConfig{
		Endpoint:        "https://vast.internal:8443",
		AccessKeyID:     "AKIATEST",
		SecretAccessKey: "testsecret",
		Bucket:          "console-db",
		Region:          "africa-east-1",
	}
}

// countingConnect wraps a ConnectFunc and records attempts.
type countingConnect struct {
	mu       sync.Mutex
	attempts int
	client   Client
	err      error
}

func (c *countingConnect) fn(context.Context, ConnectionConfig) (Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attempts++
	return c.client, c.err
}

func (c *countingConnect) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempts
}

func TestManagerDegradedStates(t *testing.T) {
	ctx := context.Background()

	t.Run("missing settings", func(t *testing.T) {
		m := NewManager(&config.VastDBConfig{}, Connect, logger.NewNop())
		assert.Equal(t, StateUnconfigured, m.State())

		err := m.TestConnection(ctx)
		require.Error(t, err)
		assert.Equal(t, apperrors.KindUnavailable, apperrors.KindOf(err))
	})

	t.Run("placeholder settings", func(t *testing.T) {
		cfg := validStoreConfig()
		cfg.Endpoint = "https://vast.example.com"
		m := NewManager(cfg, Connect, logger.NewNop())
		assert.Equal(t, StateConfigError, m.State())

		_, err := m.ListSchemas(ctx)
		require.Error(t, err)
		assert.Equal(t, apperrors.KindUnavailable, apperrors.KindOf(err))
	})

	t.Run("no driver", func(t *testing.T) {
		m := NewManager(validStoreConfig(), nil, logger.NewNop())
		assert.Equal(t, StateDriverUnavailable, m.State())

		_, err := m.CreateSchema(ctx, "a", true)
		require.Error(t, err)
		assert.Equal(t, apperrors.KindUnavailable, apperrors.KindOf(err))
	})
}

func TestManagerConnectsLazilyOnce(t *testing.T) {
	conn := &countingConnect{client: newFakeStore()}
	m := NewManager(validStoreConfig(), conn.fn, logger.NewNop())

	assert.Equal(t, StateUninitialized, m.State())
	assert.Equal(t, 0, conn.count())

	require.NoError(t, m.TestConnection(context.Background()))
	assert.Equal(t, StateConnected, m.State())
	assert.Equal(t, 1, conn.count())

	// Subsequent operations reuse the connection.
	_, err := m.ListSchemas(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, conn.count())
}

func TestManagerCircuitBreaker(t *testing.T) {
	conn := &countingConnect{err: fmt.Errorf("%w: dial tcp refused", ErrConnection)}
	m := NewManager(validStoreConfig(), conn.fn, logger.NewNop())
	ctx := context.Background()

	err := m.TestConnection(ctx)
	require.Error(t, err)
	assert.Equal(t, StateConnectFailed, m.State())
	assert.Equal(t, 1, conn.count())

	// Every further operation fails immediately with the cached error and
	// never re-attempts the connection.
	for i := 0; i < 5; i++ {
		_, listErr := m.ListSchemas(ctx)
		require.Error(t, listErr)
		assert.Equal(t, apperrors.KindUpstreamConnection, apperrors.KindOf(listErr))
	}
	assert.Equal(t, 1, conn.count())
}

func TestManagerConcurrentFirstUseConnectsOnce(t *testing.T) {
	conn := &countingConnect{client: newFakeStore()}
	m := NewManager(validStoreConfig(), conn.fn, logger.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.ListSchemas(context.Background())
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, conn.count())
	assert.Equal(t, StateConnected, m.State())
}

func TestManagerCreateSchemaIdempotence(t *testing.T) {
	store := newFakeStore()
	conn := &countingConnect{client: store}
	m := NewManager(validStoreConfig(), conn.fn, logger.NewNop())
	ctx := context.Background()

	first, err := m.CreateSchema(ctx, "analytics", false)
	require.NoError(t, err)

	second, err := m.CreateSchema(ctx, "analytics", false)
	require.NoError(t, err)
	assert.Equal(t, first.Name, second.Name)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Path, second.Path)

	// With failIfExists the collision surfaces as AlreadyExists.
	_, err = m.CreateSchema(ctx, "analytics", true)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindAlreadyExists, apperrors.KindOf(err))
}

func TestManagerGetSchema(t *testing.T) {
	store := newFakeStore("analytics")
	m := NewManager(validStoreConfig(), (&countingConnect{client: store}).fn, logger.NewNop())
	ctx := context.Background()

	_, err := m.CreateTable(ctx, "analytics", "events", nil)
	require.NoError(t, err)

	schema, err := m.GetSchema(ctx, "analytics")
	require.NoError(t, err)
	assert.Equal(t, "analytics", schema.Name)
	assert.Equal(t, "/console-db/analytics", schema.Path)
	require.Len(t, schema.Tables, 1)
	assert.Equal(t, "events", schema.Tables[0].Name)

	_, err = m.GetSchema(ctx, "nope")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestManagerDeleteSchema(t *testing.T) {
	store := newFakeStore("scratch")
	m := NewManager(validStoreConfig(), (&countingConnect{client: store}).fn, logger.NewNop())
	ctx := context.Background()

	require.NoError(t, m.DeleteSchema(ctx, "scratch"))

	err := m.DeleteSchema(ctx, "scratch")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestManagerCreateTableDefaultsAndTypes(t *testing.T) {
	store := newFakeStore("app")
	m := NewManager(validStoreConfig(), (&countingConnect{client: store}).fn, logger.NewNop())
	ctx := context.Background()

	t.Run("default column skeleton", func(t *testing.T) {
		table, err := m.CreateTable(ctx, "app", "users", nil)
		require.NoError(t, err)
		require.Len(t, table.Columns, 3)
		assert.Equal(t, models.Column{Name: "id", Type: "int64", Nullable: false}, table.Columns[0])
		assert.Equal(t, models.Column{Name: "created_at", Type: "timestamp[us]", Nullable: false}, table.Columns[1])
		assert.Equal(t, models.Column{Name: "updated_at", Type: "timestamp[us]", Nullable: true}, table.Columns[2])
	})

	t.Run("lexical type mapping", func(t *testing.T) {
		table, err := m.CreateTable(ctx, "app", "metrics", []models.Column{
			{Name: "count", Type: "integer"},
			{Name: "ratio", Type: "double"},
			{Name: "flag", Type: "boolean"},
			{Name: "day", Type: "date"},
			{Name: "note", Type: "mystery"},
		})
		require.NoError(t, err)
		types := make(map[string]string, len(table.Columns))
		for _, col := range table.Columns {
			types[col.Name] = col.Type
		}
		assert.Equal(t, "int64", types["count"])
		assert.Equal(t, "float64", types["ratio"])
		assert.Equal(t, "bool", types["flag"])
		assert.Equal(t, "date32", types["day"])
		// Unrecognized type names fall back to text.
		assert.Equal(t, "utf8", types["note"])
	})

	t.Run("name collision", func(t *testing.T) {
		_, err := m.CreateTable(ctx, "app", "users", nil)
		require.Error(t, err)
		assert.Equal(t, apperrors.KindAlreadyExists, apperrors.KindOf(err))
	})

	t.Run("missing schema", func(t *testing.T) {
		_, err := m.CreateTable(ctx, "absent", "t", nil)
		require.Error(t, err)
		assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	})
}
