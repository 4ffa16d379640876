package vastdb

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/snowch/vast-sp-console/internal/config"
	"github.com/snowch/vast-sp-console/internal/domain/models"
	"github.com/snowch/vast-sp-console/internal/domain/service"
	apperrors "github.com/snowch/vast-sp-console/pkg/errors"
	"github.com/snowch/vast-sp-console/pkg/logger"
)

// State is the connection manager's lifecycle state.
type State string

const (
	// StateUnconfigured: required settings are missing. Terminal until
	// restart.
	StateUnconfigured State = "not_configured"
	// StateConfigError: settings are present but hold placeholder or
	// malformed values. Terminal until restart.
	StateConfigError State = "configuration_error"
	// StateDriverUnavailable: no store driver was wired in. Terminal until
	// restart.
	StateDriverUnavailable State = "driver_unavailable"
	// StateUninitialized: configured but no operation has run yet.
	StateUninitialized State = "uninitialized"
	// StateConnecting: the first connect attempt is in flight.
	StateConnecting State = "connecting"
	// StateConnected: the store is usable.
	StateConnected State = "connected"
	// StateConnectFailed: the single connect attempt failed. Sticky for the
	// process lifetime; recovery requires a restart.
	StateConnectFailed State = "connect_failed"
)

// defaultColumns is the skeleton applied when a caller creates a table
// without specifying columns.
var defaultColumns = []models.Column{
	{Name: "id", Type: "int64", Nullable: false},
	{Name: "created_at", Type: "timestamp", Nullable: false},
	{Name: "updated_at", Type: "timestamp", Nullable: true},
}

// columnTypeMap is the fixed lexical mapping from caller-supplied type names
// to arrow types. Unrecognized names fall back to utf8 rather than failing.
var columnTypeMap = map[string]string{
	"string":    "utf8",
	"utf8":      "utf8",
	"text":      "utf8",
	"int":       "int64",
	"integer":   "int64",
	"int64":     "int64",
	"int32":     "int32",
	"float":     "float64",
	"double":    "float64",
	"float64":   "float64",
	"boolean":   "bool",
	"bool":      "bool",
	"date":      "date32",
	"date32":    "date32",
	"timestamp": "timestamp[us]",
}

// mapColumnType resolves a caller-supplied type name to its arrow type.
func mapColumnType(name string) string {
	if arrow, ok := columnTypeMap[strings.ToLower(strings.TrimSpace(name))]; ok {
		return arrow
	}
	return "utf8"
}

// Manager owns the lazy connection to the tabular store and serializes the
// one connect attempt the process is allowed. Configuration problems and a
// failed connect are sticky until restart so a known-bad endpoint is never
// hammered.
type Manager struct {
	cfg     *config.VastDBConfig
	connect ConnectFunc
	log     logger.Logger

	mu         sync.Mutex
	state      State
	client     Client
	stickyErr  *apperrors.AppError
	configNote string
}

var _ service.StoreService = (*Manager)(nil)

// NewManager validates configuration once at construction. When settings are
// missing, hold placeholders, or no driver is available, the manager starts
// in a terminal degraded state and every operation fails fast with
// Unavailable; the rest of the service keeps running.
func NewManager(cfg *config.VastDBConfig, connect ConnectFunc, log logger.Logger) *Manager {
	m := &Manager{cfg: cfg, connect: connect, log: log}

	if err := cfg.Validate(); err != nil {
		m.configNote = err.Error()
		if errors.Is(err, config.ErrPlaceholderValue) {
			m.state = StateConfigError
			m.stickyErr = apperrors.Unavailable("VAST Database configuration is invalid: " + err.Error())
		} else {
			m.state = StateUnconfigured
			m.stickyErr = apperrors.Unavailable("VAST Database not configured: " + err.Error())
		}
		log.Warn(context.Background(), "VAST Database unavailable", logger.String("reason", err.Error()))
		return m
	}

	if connect == nil {
		m.state = StateDriverUnavailable
		m.stickyErr = apperrors.Unavailable("VAST Database driver is not available")
		log.Warn(context.Background(), "VAST Database driver missing")
		return m
	}

	m.state = StateUninitialized
	return m
}

// State reports the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// ConnectionInfo summarizes the connection for status endpoints without
// triggering a connect attempt.
func (m *Manager) ConnectionInfo(ctx context.Context) models.ConnectionInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	info := models.ConnectionInfo{Status: string(m.state)}
	if m.state != StateUnconfigured && m.state != StateConfigError {
		info.Endpoint = m.cfg.Endpoint
		info.Bucket = m.cfg.Bucket
	}
	if m.stickyErr != nil {
		info.Message = m.stickyErr.Message
	} else if m.configNote != "" {
		info.Message = m.configNote
	}
	return info
}

// ensureConnected performs the at-most-once lazy connect. The lock
// serializes concurrent first use: one caller runs the attempt, the rest
// wait and observe the same terminal outcome.
func (m *Manager) ensureConnected(ctx context.Context) (Client, *apperrors.AppError) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case StateConnected:
		return m.client, nil
	case StateUninitialized:
		// Fall through to the single connect attempt below.
	default:
		return nil, m.stickyErr
	}

	m.state = StateConnecting
	start := time.Now()
	client, err := m.connect(ctx, ConnectionConfig{
		Endpoint:        m.cfg.Endpoint,
		AccessKeyID:     m.cfg.AccessKeyID,
		SecretAccessKey: m.cfg.SecretAccessKey,
		Region:          m.cfg.Region,
		VerifySSL:       m.cfg.VerifySSL,
	})
	if err != nil {
		m.state = StateConnectFailed
		m.stickyErr = TranslateError(err)
		m.log.Error(ctx, "VAST Database connect failed; store disabled until restart", err,
			logger.String("endpoint", m.cfg.Endpoint),
			logger.Duration("elapsed", time.Since(start)),
		)
		return nil, m.stickyErr
	}

	m.state = StateConnected
	m.client = client
	m.log.Info(ctx, "connected to VAST Database",
		logger.String("endpoint", m.cfg.Endpoint),
		logger.String("bucket", m.cfg.Bucket),
		logger.Duration("elapsed", time.Since(start)),
	)
	return client, nil
}

// TestConnection exercises the minimal can-we-address-the-bucket path.
func (m *Manager) TestConnection(ctx context.Context) error {
	client, appErr := m.ensureConnected(ctx)
	if appErr != nil {
		return appErr
	}

	err := client.Transaction(ctx, func(ctx context.Context, tx Tx) error {
		_, err := tx.Bucket(m.cfg.Bucket).Schemas(ctx)
		return err
	})
	if err != nil {
		return m.translate(ctx, "test connection", err)
	}
	return nil
}

// CreateSchema creates a schema. With failIfExists false an existing schema
// is returned as-is, making the call idempotent.
func (m *Manager) CreateSchema(ctx context.Context, name string, failIfExists bool) (*models.Schema, error) {
	client, appErr := m.ensureConnected(ctx)
	if appErr != nil {
		return nil, appErr
	}

	var info *SchemaInfo
	err := client.Transaction(ctx, func(ctx context.Context, tx Tx) error {
		bucket := tx.Bucket(m.cfg.Bucket)
		created, err := bucket.CreateSchema(ctx, name)
		if err != nil {
			if errors.Is(err, ErrSchemaExists) && !failIfExists {
				existing, getErr := bucket.Schema(ctx, name)
				if getErr != nil {
					return getErr
				}
				info = existing
				return nil
			}
			return err
		}
		info = created
		return nil
	})
	if err != nil {
		return nil, m.translate(ctx, "create schema", err)
	}

	schema := m.describeSchema(info.Name)
	return &schema, nil
}

// ListSchemas enumerates all schemas in the configured bucket. An empty
// bucket yields an empty, non-error result.
func (m *Manager) ListSchemas(ctx context.Context) ([]models.Schema, error) {
	client, appErr := m.ensureConnected(ctx)
	if appErr != nil {
		return nil, appErr
	}

	var infos []SchemaInfo
	err := client.Transaction(ctx, func(ctx context.Context, tx Tx) error {
		var txErr error
		infos, txErr = tx.Bucket(m.cfg.Bucket).Schemas(ctx)
		return txErr
	})
	if err != nil {
		return nil, m.translate(ctx, "list schemas", err)
	}

	schemas := make([]models.Schema, 0, len(infos))
	for _, info := range infos {
		schemas = append(schemas, m.describeSchema(info.Name))
	}
	return schemas, nil
}

// GetSchema fetches one schema with its tables, including column
// descriptors and row counts.
func (m *Manager) GetSchema(ctx context.Context, name string) (*models.Schema, error) {
	client, appErr := m.ensureConnected(ctx)
	if appErr != nil {
		return nil, appErr
	}

	var info *SchemaInfo
	var tables []TableInfo
	err := client.Transaction(ctx, func(ctx context.Context, tx Tx) error {
		bucket := tx.Bucket(m.cfg.Bucket)
		found, txErr := bucket.Schema(ctx, name)
		if txErr != nil {
			return txErr
		}
		info = found
		tables, txErr = bucket.Tables(ctx, name)
		return txErr
	})
	if err != nil {
		return nil, m.translate(ctx, "get schema", err)
	}

	schema := m.describeSchema(info.Name)
	schema.Tables = make([]models.Table, 0, len(tables))
	for _, t := range tables {
		schema.Tables = append(schema.Tables, m.describeTable(name, t))
	}
	return &schema, nil
}

// DeleteSchema drops a schema. Irreversible; there is no recycle bin.
func (m *Manager) DeleteSchema(ctx context.Context, name string) error {
	client, appErr := m.ensureConnected(ctx)
	if appErr != nil {
		return appErr
	}

	err := client.Transaction(ctx, func(ctx context.Context, tx Tx) error {
		return tx.Bucket(m.cfg.Bucket).DropSchema(ctx, name)
	})
	if err != nil {
		return m.translate(ctx, "delete schema", err)
	}
	return nil
}

// CreateTable creates a table in a schema. Empty columns get the default
// id/created_at/updated_at skeleton; type names go through the fixed
// lexical mapping with a permissive utf8 fallback.
func (m *Manager) CreateTable(ctx context.Context, schemaName, tableName string, columns []models.Column) (*models.Table, error) {
	client, appErr := m.ensureConnected(ctx)
	if appErr != nil {
		return nil, appErr
	}

	if len(columns) == 0 {
		columns = defaultColumns
	}
	specs := make([]ColumnSpec, 0, len(columns))
	for _, col := range columns {
		specs = append(specs, ColumnSpec{
			Name:     col.Name,
			Type:     mapColumnType(col.Type),
			Nullable: col.Nullable,
		})
	}

	var info *TableInfo
	err := client.Transaction(ctx, func(ctx context.Context, tx Tx) error {
		created, txErr := tx.Bucket(m.cfg.Bucket).CreateTable(ctx, schemaName, tableName, specs)
		if txErr != nil {
			return txErr
		}
		info = created
		return nil
	})
	if err != nil {
		return nil, m.translate(ctx, "create table", err)
	}

	table := m.describeTable(schemaName, *info)
	if len(table.Columns) == 0 {
		for _, spec := range specs {
			table.Columns = append(table.Columns, models.Column(spec))
		}
	}
	return &table, nil
}

func (m *Manager) describeSchema(name string) models.Schema {
	return models.Schema{
		Name:      name,
		Bucket:    m.cfg.Bucket,
		Path:      models.SchemaPath(m.cfg.Bucket, name),
		Protocols: models.SchemaProtocols,
		Created:   time.Now().UTC().Format(time.RFC3339),
		ID:        models.SchemaID(m.cfg.Bucket, name),
	}
}

func (m *Manager) describeTable(schemaName string, info TableInfo) models.Table {
	columns := make([]models.Column, 0, len(info.Columns))
	for _, spec := range info.Columns {
		columns = append(columns, models.Column(spec))
	}
	created := info.Created
	if created == "" {
		created = time.Now().UTC().Format(time.RFC3339)
	}
	return models.Table{
		Name:    info.Name,
		Schema:  schemaName,
		Columns: columns,
		Rows:    info.RowCount,
		Created: created,
	}
}

// translate classifies a store failure and logs the raw detail server-side;
// only the classified message reaches clients.
func (m *Manager) translate(ctx context.Context, op string, err error) *apperrors.AppError {
	appErr := TranslateError(err)
	if appErr.Kind == apperrors.KindInternal {
		m.log.Error(ctx, "unclassified VAST Database failure", err, logger.String("op", op))
	} else {
		m.log.Debug(ctx, "VAST Database operation failed", logger.String("op", op), logger.String("kind", string(appErr.Kind)))
	}
	return appErr
}
