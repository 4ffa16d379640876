package vastdb

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/snowch/vast-sp-console/pkg/constants"
)

// restClient speaks the VAST Database tabular REST surface. Every operation
// runs inside an explicit transaction identified by a server-issued id.
type restClient struct {
	httpClient *http.Client
	base       string
	accessKey  string
	secretKey  string
}

// Connect dials the store, verifying the endpoint is addressable with the
// given credentials. It is the production ConnectFunc wired in cmd/server.
func Connect(ctx context.Context, cfg ConnectionConfig) (Client, error) {
	base, err := url.Parse(cfg.Endpoint)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: bad endpoint %q", ErrBadRequest, cfg.Endpoint)
	}

	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: !cfg.VerifySSL},
	}
	c := &restClient{
		httpClient: &http.Client{Transport: transport},
		base:       strings.TrimRight(base.String(), "/") + "/tabular/v1",
		accessKey:  cfg.AccessKeyID,
		secretKey:  cfg.SecretAccessKey,
	}

	// A throwaway transaction proves the endpoint answers and the
	// credentials are accepted.
	ctx, cancel := context.WithTimeout(ctx, constants.StoreRequestTimeout)
	defer cancel()
	txID, err := c.beginTx(ctx)
	if err != nil {
		return nil, err
	}
	_ = c.rollbackTx(ctx, txID)
	return c, nil
}

func (c *restClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// Transaction implements Client. The deadline covers the whole unit of
// work: begin, every call fn makes through the bounded context it receives,
// and the final commit or rollback.
func (c *restClient) Transaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	ctx, cancel := context.WithTimeout(ctx, constants.StoreRequestTimeout)
	defer cancel()

	txID, err := c.beginTx(ctx)
	if err != nil {
		return err
	}

	if err := fn(ctx, &restTx{client: c, id: txID}); err != nil {
		_ = c.rollbackTx(ctx, txID)
		return err
	}
	return c.commitTx(ctx, txID)
}

func (c *restClient) beginTx(ctx context.Context) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/transactions", "", nil, &out, nil); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", fmt.Errorf("%w: transaction response missing id", ErrInternal)
	}
	return out.ID, nil
}

func (c *restClient) commitTx(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPut, "/transactions/"+id, id, nil, nil, nil)
}

func (c *restClient) rollbackTx(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/transactions/"+id, id, nil, nil, nil)
}

// do issues one request. notFoundAs overrides the category reported for a
// 404 so callers can distinguish a missing schema from a missing bucket by
// call site instead of by message text.
func (c *restClient) do(ctx context.Context, method, path, txID string, body, out interface{}, notFoundAs error) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	req.SetBasicAuth(c.accessKey, c.secretKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if txID != "" {
		req.Header.Set("X-Tabular-Txid", txID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer resp.Body.Close()

	payload, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<20))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out != nil && len(payload) > 0 {
			if err := json.Unmarshal(payload, out); err != nil {
				return fmt.Errorf("%w: undecodable response: %v", ErrInternal, err)
			}
		}
		return nil
	}

	return c.statusError(resp.StatusCode, payload, notFoundAs)
}

func (c *restClient) statusError(status int, payload []byte, notFoundAs error) error {
	detail := ""
	var remote struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload, &remote); err == nil {
		detail = remote.Message
	}

	var category error
	switch status {
	case http.StatusNotFound:
		category = ErrMissingBucket
		if notFoundAs != nil {
			category = notFoundAs
		}
	case http.StatusConflict:
		category = ErrSchemaExists
	case http.StatusBadRequest:
		category = ErrBadRequest
	case http.StatusForbidden, http.StatusUnauthorized:
		category = ErrForbidden
	case http.StatusRequestEntityTooLarge:
		category = ErrTooLarge
	case http.StatusServiceUnavailable, http.StatusBadGateway:
		category = ErrUnavailable
	default:
		category = ErrInternal
	}

	if detail != "" {
		return fmt.Errorf("%w: %s", category, detail)
	}
	return fmt.Errorf("%w: HTTP %d", category, status)
}

type restTx struct {
	client *restClient
	id     string
}

func (t *restTx) Bucket(name string) Bucket {
	return &restBucket{tx: t, name: name}
}

type restBucket struct {
	tx   *restTx
	name string
}

func (b *restBucket) path(parts ...string) string {
	p := "/buckets/" + url.PathEscape(b.name) + "/schemas"
	for _, part := range parts {
		p += "/" + url.PathEscape(part)
	}
	return p
}

func (b *restBucket) CreateSchema(ctx context.Context, name string) (*SchemaInfo, error) {
	var out SchemaInfo
	err := b.tx.client.do(ctx, http.MethodPost, b.path(), b.tx.id,
		map[string]string{"name": name}, &out, ErrMissingBucket)
	if err != nil {
		return nil, err
	}
	if out.Name == "" {
		out.Name = name
	}
	return &out, nil
}

func (b *restBucket) Schemas(ctx context.Context) ([]SchemaInfo, error) {
	var out []SchemaInfo
	if err := b.tx.client.do(ctx, http.MethodGet, b.path(), b.tx.id, nil, &out, ErrMissingBucket); err != nil {
		return nil, err
	}
	return out, nil
}

func (b *restBucket) Schema(ctx context.Context, name string) (*SchemaInfo, error) {
	var out SchemaInfo
	if err := b.tx.client.do(ctx, http.MethodGet, b.path(name), b.tx.id, nil, &out, ErrMissingSchema); err != nil {
		return nil, err
	}
	if out.Name == "" {
		out.Name = name
	}
	return &out, nil
}

func (b *restBucket) DropSchema(ctx context.Context, name string) error {
	return b.tx.client.do(ctx, http.MethodDelete, b.path(name), b.tx.id, nil, nil, ErrMissingSchema)
}

func (b *restBucket) Tables(ctx context.Context, schema string) ([]TableInfo, error) {
	var out []TableInfo
	if err := b.tx.client.do(ctx, http.MethodGet, b.path(schema, "tables"), b.tx.id, nil, &out, ErrMissingSchema); err != nil {
		return nil, err
	}
	return out, nil
}

func (b *restBucket) CreateTable(ctx context.Context, schema, table string, columns []ColumnSpec) (*TableInfo, error) {
	var out TableInfo
	err := b.tx.client.do(ctx, http.MethodPost, b.path(schema, "tables"), b.tx.id,
		map[string]interface{}{"name": table, "columns": columns}, &out, ErrMissingSchema)
	if err != nil {
		// A conflict on table creation is a table collision, not a schema one.
		if errors.Is(err, ErrSchemaExists) {
			return nil, fmt.Errorf("%w: %s", ErrTableExists, table)
		}
		return nil, err
	}
	if out.Name == "" {
		out.Name = table
		out.Columns = columns
	}
	return &out, nil
}
