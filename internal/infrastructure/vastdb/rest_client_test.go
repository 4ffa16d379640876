package vastdb

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snowch/vast-sp-console/pkg/constants"
)

// fakeTabularServer answers the minimal tabular surface: transaction
// lifecycle plus a schemas listing whose handler the test controls.
func fakeTabularServer(t *testing.T, schemasHandler http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/tabular/v1/transactions", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "tx-1"})
	})
	mux.HandleFunc("/tabular/v1/transactions/tx-1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/tabular/v1/buckets/console-db/schemas", schemasHandler)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConnectionConfig(endpoint string) ConnectionConfig {
	return ConnectionConfig{
		Endpoint:        endpoint,
		AccessKeyID:     "ak",
		SecretAccessKey: "sk",
		Region:          "africa-east-1",
	}
}

func TestConnectRejectsBadEndpoint(t *testing.T) {
	_, err := Connect(context.Background(), testConnectionConfig("not a url"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBadRequest))
}

func TestTransactionBoundsUnitOfWork(t *testing.T) {
	srv := fakeTabularServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tx-1", r.Header.Get("X-Tabular-Txid"))
		_, _ = w.Write([]byte(`[{"name":"analytics"}]`))
	})

	client, err := Connect(context.Background(), testConnectionConfig(srv.URL))
	require.NoError(t, err)
	defer client.Close()

	before := time.Now()
	err = client.Transaction(context.Background(), func(ctx context.Context, tx Tx) error {
		deadline, ok := ctx.Deadline()
		require.True(t, ok, "unit of work must carry a deadline")
		assert.WithinDuration(t, before.Add(constants.StoreRequestTimeout), deadline, time.Second)

		schemas, err := tx.Bucket("console-db").Schemas(ctx)
		require.NoError(t, err)
		assert.Len(t, schemas, 1)
		return nil
	})
	require.NoError(t, err)
}

func TestTransactionCancelsSlowDataCall(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	srv := fakeTabularServer(t, func(w http.ResponseWriter, r *http.Request) {
		// Stall until the client gives up.
		select {
		case <-r.Context().Done():
		case <-release:
		}
	})

	client, err := Connect(context.Background(), testConnectionConfig(srv.URL))
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err = client.Transaction(ctx, func(ctx context.Context, tx Tx) error {
		_, err := tx.Bucket("console-db").Schemas(ctx)
		return err
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout))
	assert.Less(t, time.Since(start), 5*time.Second, "stalled call must be cut off at the deadline")
}
