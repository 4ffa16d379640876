package service

import (
	"context"
	"time"

	"github.com/snowch/vast-sp-console/internal/application/dto"
	"github.com/snowch/vast-sp-console/internal/domain/models"
	domainService "github.com/snowch/vast-sp-console/internal/domain/service"
	"github.com/snowch/vast-sp-console/internal/infrastructure/monitoring"
	"github.com/snowch/vast-sp-console/pkg/errors"
	"github.com/snowch/vast-sp-console/pkg/logger"
)

// SchemaAppService is the database administration surface consumed by the
// HTTP layer. It layers metrics and logging over the store service.
type SchemaAppService interface {
	ConnectionInfo(ctx context.Context) models.ConnectionInfo
	TestConnection(ctx context.Context) error
	CreateSchema(ctx context.Context, req *dto.CreateSchemaRequest) (*models.Schema, error)
	ListSchemas(ctx context.Context) ([]models.Schema, error)
	GetSchema(ctx context.Context, name string) (*models.Schema, error)
	DeleteSchema(ctx context.Context, name string) error
	CreateTable(ctx context.Context, schemaName string, req *dto.CreateTableRequest) (*models.Table, error)
}

type schemaAppServiceImpl struct {
	store   domainService.StoreService
	metrics *monitoring.Metrics
	logger  logger.Logger
}

// NewSchemaAppService creates a new SchemaAppService.
func NewSchemaAppService(store domainService.StoreService, metrics *monitoring.Metrics, log logger.Logger) SchemaAppService {
	return &schemaAppServiceImpl{store: store, metrics: metrics, logger: log}
}

func (s *schemaAppServiceImpl) ConnectionInfo(ctx context.Context) models.ConnectionInfo {
	return s.store.ConnectionInfo(ctx)
}

func (s *schemaAppServiceImpl) TestConnection(ctx context.Context) error {
	return s.observe(ctx, "test_connection", func() error {
		return s.store.TestConnection(ctx)
	})
}

func (s *schemaAppServiceImpl) CreateSchema(ctx context.Context, req *dto.CreateSchemaRequest) (*models.Schema, error) {
	var schema *models.Schema
	err := s.observe(ctx, "create_schema", func() error {
		var opErr error
		schema, opErr = s.store.CreateSchema(ctx, req.Name, req.FailIfExistsOrDefault())
		return opErr
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "schema created", logger.String("schema", schema.Name))
	return schema, nil
}

func (s *schemaAppServiceImpl) ListSchemas(ctx context.Context) ([]models.Schema, error) {
	var schemas []models.Schema
	err := s.observe(ctx, "list_schemas", func() error {
		var opErr error
		schemas, opErr = s.store.ListSchemas(ctx)
		return opErr
	})
	if err != nil {
		return nil, err
	}
	return schemas, nil
}

func (s *schemaAppServiceImpl) GetSchema(ctx context.Context, name string) (*models.Schema, error) {
	var schema *models.Schema
	err := s.observe(ctx, "get_schema", func() error {
		var opErr error
		schema, opErr = s.store.GetSchema(ctx, name)
		return opErr
	})
	if err != nil {
		return nil, err
	}
	return schema, nil
}

func (s *schemaAppServiceImpl) DeleteSchema(ctx context.Context, name string) error {
	err := s.observe(ctx, "delete_schema", func() error {
		return s.store.DeleteSchema(ctx, name)
	})
	if err != nil {
		return err
	}
	s.logger.Info(ctx, "schema deleted", logger.String("schema", name))
	return nil
}

func (s *schemaAppServiceImpl) CreateTable(ctx context.Context, schemaName string, req *dto.CreateTableRequest) (*models.Table, error) {
	var table *models.Table
	err := s.observe(ctx, "create_table", func() error {
		var opErr error
		table, opErr = s.store.CreateTable(ctx, schemaName, req.Name, req.ModelColumns())
		return opErr
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "table created",
		logger.String("schema", schemaName),
		logger.String("table", table.Name),
	)
	return table, nil
}

// observe runs op and records its outcome and latency.
func (s *schemaAppServiceImpl) observe(ctx context.Context, name string, op func() error) error {
	start := time.Now()
	err := op()
	if s.metrics != nil {
		result := "success"
		if err != nil {
			result = string(errors.KindOf(err))
		}
		s.metrics.RecordStoreOperation(name, result, time.Since(start))
	}
	return err
}
