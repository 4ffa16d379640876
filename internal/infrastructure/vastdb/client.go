// Package vastdb owns the connection to the VAST Database tabular store:
// a narrow client interface with typed failure categories, a REST
// implementation of it, the lazily-connecting manager with its
// restart-only circuit breaker, and the translator onto the API error
// taxonomy.
package vastdb

import (
	"context"
	"errors"
)

// Typed failure categories returned by store clients. Callers classify with
// errors.Is; message text is never inspected.
var (
	ErrMissingBucket = errors.New("vastdb: bucket does not exist")
	ErrMissingSchema = errors.New("vastdb: schema does not exist")
	ErrMissingTable  = errors.New("vastdb: table does not exist")
	ErrSchemaExists  = errors.New("vastdb: schema already exists")
	ErrTableExists   = errors.New("vastdb: table already exists")
	ErrBadRequest    = errors.New("vastdb: invalid request")
	ErrForbidden     = errors.New("vastdb: access denied")
	ErrTooLarge      = errors.New("vastdb: request too large")
	ErrConnection    = errors.New("vastdb: cannot reach endpoint")
	ErrTimeout       = errors.New("vastdb: request timed out")
	ErrUnavailable   = errors.New("vastdb: service unavailable")
	ErrInternal      = errors.New("vastdb: internal server error")
)

// ColumnSpec is a column in arrow type vocabulary, as the store accepts it.
type ColumnSpec struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
}

// TableInfo is a table descriptor as reported by the store.
type TableInfo struct {
	Name     string       `json:"name"`
	Columns  []ColumnSpec `json:"columns"`
	RowCount int64        `json:"row_count"`
	Created  string       `json:"created,omitempty"`
}

// SchemaInfo is a schema descriptor as reported by the store.
type SchemaInfo struct {
	Name string `json:"name"`
}

// Bucket is the schema/table surface of one bucket inside a transaction.
type Bucket interface {
	CreateSchema(ctx context.Context, name string) (*SchemaInfo, error)
	Schemas(ctx context.Context) ([]SchemaInfo, error)
	// Schema returns ErrMissingSchema when the schema does not exist.
	Schema(ctx context.Context, name string) (*SchemaInfo, error)
	DropSchema(ctx context.Context, name string) error
	Tables(ctx context.Context, schema string) ([]TableInfo, error)
	CreateTable(ctx context.Context, schema, table string, columns []ColumnSpec) (*TableInfo, error)
}

// Tx is one transactional unit of work against the store.
type Tx interface {
	Bucket(name string) Bucket
}

// Client is the narrow store surface the connection manager consumes:
// connect-with-credentials happens in the ConnectFunc, and everything else
// runs inside a transactional unit of work.
type Client interface {
	// Transaction runs fn in a transaction, committing when fn returns nil
	// and rolling back otherwise. fn must issue its calls through the
	// context it receives, which carries the store request deadline.
	Transaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	// Close releases the client's resources.
	Close() error
}

// ConnectFunc dials the store with credentials and verifies the endpoint is
// addressable. The manager treats a nil ConnectFunc as "driver unavailable".
type ConnectFunc func(ctx context.Context, cfg ConnectionConfig) (Client, error)

// ConnectionConfig carries the validated store settings a client needs.
type ConnectionConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	VerifySSL       bool
}
