package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snowch/vast-sp-console/internal/application/dto"
	"github.com/snowch/vast-sp-console/internal/domain/models"
	"github.com/snowch/vast-sp-console/pkg/errors"
)

type stubSchemaService struct {
	info      models.ConnectionInfo
	testErr   error
	schema    *models.Schema
	schemas   []models.Schema
	table     *models.Table
	schemaErr error
}

func (s *stubSchemaService) ConnectionInfo(ctx context.Context) models.ConnectionInfo {
	return s.info
}

func (s *stubSchemaService) TestConnection(ctx context.Context) error { return s.testErr }

func (s *stubSchemaService) CreateSchema(ctx context.Context, req *dto.CreateSchemaRequest) (*models.Schema, error) {
	return s.schema, s.schemaErr
}

func (s *stubSchemaService) ListSchemas(ctx context.Context) ([]models.Schema, error) {
	return s.schemas, s.schemaErr
}

func (s *stubSchemaService) GetSchema(ctx context.Context, name string) (*models.Schema, error) {
	return s.schema, s.schemaErr
}

func (s *stubSchemaService) DeleteSchema(ctx context.Context, name string) error {
	return s.schemaErr
}

func (s *stubSchemaService) CreateTable(ctx context.Context, schemaName string, req *dto.CreateTableRequest) (*models.Table, error) {
	return s.table, s.schemaErr
}

func newSchemaTestRouter(svc *stubSchemaService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	h := NewSchemaHandler(svc)
	engine.GET("/api/database/connection", h.ConnectionInfo)
	engine.GET("/api/database/schemas", h.ListSchemas)
	engine.POST("/api/database/schemas", h.CreateSchema)
	engine.GET("/api/database/schemas/:name", h.GetSchema)
	engine.DELETE("/api/database/schemas/:name", h.DeleteSchema)
	engine.POST("/api/database/schemas/:name/tables", h.CreateTable)
	return engine
}

func TestSchemaHandlerCreateSchema(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := &stubSchemaService{schema: &models.Schema{Name: "analytics", Bucket: "console-db"}}
		rec := postJSON(t, newSchemaTestRouter(svc), "/api/database/schemas", gin.H{"name": "analytics"})
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("invalid name", func(t *testing.T) {
		rec := postJSON(t, newSchemaTestRouter(&stubSchemaService{}), "/api/database/schemas", gin.H{"name": "1bad"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("collision maps to 409", func(t *testing.T) {
		svc := &stubSchemaService{schemaErr: errors.AlreadyExists("schema already exists")}
		rec := postJSON(t, newSchemaTestRouter(svc), "/api/database/schemas", gin.H{"name": "analytics"})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("store degraded maps to 503", func(t *testing.T) {
		svc := &stubSchemaService{schemaErr: errors.Unavailable("VAST Database not configured")}
		rec := postJSON(t, newSchemaTestRouter(svc), "/api/database/schemas", gin.H{"name": "analytics"})
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestSchemaHandlerGetSchema(t *testing.T) {
	t.Run("missing schema maps to 404", func(t *testing.T) {
		svc := &stubSchemaService{schemaErr: errors.NotFound("schema does not exist")}
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/database/schemas/ghost", nil)
		newSchemaTestRouter(svc).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("found", func(t *testing.T) {
		svc := &stubSchemaService{schema: &models.Schema{Name: "analytics", Tables: []models.Table{{Name: "events"}}}}
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/database/schemas/analytics", nil)
		newSchemaTestRouter(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.APIResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
	})
}

func TestSchemaHandlerCreateTable(t *testing.T) {
	t.Run("created with columns", func(t *testing.T) {
		svc := &stubSchemaService{table: &models.Table{Name: "events", Schema: "analytics"}}
		rec := postJSON(t, newSchemaTestRouter(svc), "/api/database/schemas/analytics/tables", gin.H{
			"name":    "events",
			"columns": []gin.H{{"name": "id", "type": "int64"}},
		})
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("invalid column name", func(t *testing.T) {
		rec := postJSON(t, newSchemaTestRouter(&stubSchemaService{}), "/api/database/schemas/analytics/tables", gin.H{
			"name":    "events",
			"columns": []gin.H{{"name": "bad-name"}},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSchemaHandlerConnectionInfo(t *testing.T) {
	svc := &stubSchemaService{info: models.ConnectionInfo{Status: "connected", Endpoint: "https://vast.internal:8443"}}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/database/connection", nil)
	newSchemaTestRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
