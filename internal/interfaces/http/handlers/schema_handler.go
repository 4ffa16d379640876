package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/snowch/vast-sp-console/internal/application/dto"
	"github.com/snowch/vast-sp-console/internal/application/service"
	"github.com/snowch/vast-sp-console/pkg/errors"
)

// SchemaHandler handles HTTP requests for database schema administration.
type SchemaHandler struct {
	schemaService service.SchemaAppService
}

// NewSchemaHandler creates a new SchemaHandler.
func NewSchemaHandler(schemaService service.SchemaAppService) *SchemaHandler {
	return &SchemaHandler{schemaService: schemaService}
}

// ConnectionInfo reports the store connection status without triggering a
// connect attempt.
func (h *SchemaHandler) ConnectionInfo(c *gin.Context) {
	SendSuccess(c, http.StatusOK, h.schemaService.ConnectionInfo(c.Request.Context()))
}

// TestConnection exercises the store connection.
func (h *SchemaHandler) TestConnection(c *gin.Context) {
	if err := h.schemaService.TestConnection(c.Request.Context()); err != nil {
		SendError(c, err)
		return
	}
	SendSuccess(c, http.StatusOK, gin.H{"connected": true})
}

// ListSchemas enumerates all schemas.
func (h *SchemaHandler) ListSchemas(c *gin.Context) {
	schemas, err := h.schemaService.ListSchemas(c.Request.Context())
	if err != nil {
		SendError(c, err)
		return
	}
	SendSuccess(c, http.StatusOK, gin.H{"schemas": schemas})
}

// CreateSchema creates a schema.
func (h *SchemaHandler) CreateSchema(c *gin.Context) {
	var req dto.CreateSchemaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendError(c, errors.InvalidArgument("request body is missing required fields").WithCause(err))
		return
	}
	if fields := req.Validate(); fields != nil {
		SendValidationError(c, fields)
		return
	}

	schema, err := h.schemaService.CreateSchema(c.Request.Context(), &req)
	if err != nil {
		SendError(c, err)
		return
	}
	SendSuccess(c, http.StatusCreated, schema)
}

// GetSchema returns one schema with its tables.
func (h *SchemaHandler) GetSchema(c *gin.Context) {
	name := c.Param("name")
	if reason, ok := dto.ValidateName(name); !ok {
		SendValidationError(c, map[string]string{"name": reason})
		return
	}

	schema, err := h.schemaService.GetSchema(c.Request.Context(), name)
	if err != nil {
		SendError(c, err)
		return
	}
	SendSuccess(c, http.StatusOK, schema)
}

// DeleteSchema drops a schema.
func (h *SchemaHandler) DeleteSchema(c *gin.Context) {
	name := c.Param("name")
	if reason, ok := dto.ValidateName(name); !ok {
		SendValidationError(c, map[string]string{"name": reason})
		return
	}

	if err := h.schemaService.DeleteSchema(c.Request.Context(), name); err != nil {
		SendError(c, err)
		return
	}
	SendSuccess(c, http.StatusOK, gin.H{"deleted": name})
}

// ListTables enumerates the tables of one schema.
func (h *SchemaHandler) ListTables(c *gin.Context) {
	name := c.Param("name")
	if reason, ok := dto.ValidateName(name); !ok {
		SendValidationError(c, map[string]string{"name": reason})
		return
	}

	schema, err := h.schemaService.GetSchema(c.Request.Context(), name)
	if err != nil {
		SendError(c, err)
		return
	}
	SendSuccess(c, http.StatusOK, gin.H{"tables": schema.Tables})
}

// CreateTable creates a table in a schema.
func (h *SchemaHandler) CreateTable(c *gin.Context) {
	name := c.Param("name")
	if reason, ok := dto.ValidateName(name); !ok {
		SendValidationError(c, map[string]string{"name": reason})
		return
	}

	var req dto.CreateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendError(c, errors.InvalidArgument("request body is missing required fields").WithCause(err))
		return
	}
	if fields := req.Validate(); fields != nil {
		SendValidationError(c, fields)
		return
	}

	table, err := h.schemaService.CreateTable(c.Request.Context(), name, &req)
	if err != nil {
		SendError(c, err)
		return
	}
	SendSuccess(c, http.StatusCreated, table)
}
