package dto

import (
	"net"
	"regexp"

	"github.com/snowch/vast-sp-console/internal/domain/models"
)

// namePattern constrains schema and table names: a leading letter followed
// by letters, digits, or underscores.
var namePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

const maxNameLength = 64

// ValidateName checks a schema or table name against the naming rules and
// returns a display-ready reason when it fails.
func ValidateName(name string) (string, bool) {
	switch {
	case name == "":
		return "must not be empty", false
	case len(name) > maxNameLength:
		return "must be at most 64 characters", false
	case !namePattern.MatchString(name):
		return "must start with a letter and contain only letters, digits, and underscores", false
	}
	return "", true
}

// LoginRequest carries cluster credentials for POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	VastHost string `json:"vast_host" binding:"required"`
	VastPort int    `json:"vast_port" binding:"required"`
	Tenant   string `json:"tenant"`
}

// Validate applies the rules gin's binding tags cannot express. It returns
// per-field reasons, empty when the request is valid.
func (r *LoginRequest) Validate() map[string]string {
	fields := make(map[string]string)
	if ip := net.ParseIP(r.VastHost); ip == nil || ip.To4() == nil {
		fields["vast_host"] = "must be an IPv4 address"
	}
	if r.VastPort < 1 || r.VastPort > 65535 {
		fields["vast_port"] = "must be between 1 and 65535"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// LoginResponse is the successful login payload: the session token plus the
// user identity the frontend displays.
type LoginResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// CreateSchemaRequest is the body of POST /api/database/schemas.
type CreateSchemaRequest struct {
	Name         string `json:"name" binding:"required"`
	FailIfExists *bool  `json:"fail_if_exists"`
}

// FailIfExistsOrDefault resolves the optional flag; omitted means true, so a
// plain create reports a collision instead of silently reusing the schema.
func (r *CreateSchemaRequest) FailIfExistsOrDefault() bool {
	if r.FailIfExists == nil {
		return true
	}
	return *r.FailIfExists
}

// Validate checks the schema name.
func (r *CreateSchemaRequest) Validate() map[string]string {
	if reason, ok := ValidateName(r.Name); !ok {
		return map[string]string{"name": reason}
	}
	return nil
}

// ColumnRequest is one column in a create-table request.
type ColumnRequest struct {
	Name     string `json:"name" binding:"required"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
}

// CreateTableRequest is the body of POST /api/database/schemas/:name/tables.
// Omitted columns get the server-side default skeleton.
type CreateTableRequest struct {
	Name    string          `json:"name" binding:"required"`
	Columns []ColumnRequest `json:"columns"`
}

// Validate checks the table name and each column name.
func (r *CreateTableRequest) Validate() map[string]string {
	fields := make(map[string]string)
	if reason, ok := ValidateName(r.Name); !ok {
		fields["name"] = reason
	}
	for _, col := range r.Columns {
		if reason, ok := ValidateName(col.Name); !ok {
			fields["columns."+col.Name] = reason
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// ModelColumns converts request columns to the domain representation.
func (r *CreateTableRequest) ModelColumns() []models.Column {
	if len(r.Columns) == 0 {
		return nil
	}
	columns := make([]models.Column, 0, len(r.Columns))
	for _, col := range r.Columns {
		columns = append(columns, models.Column{
			Name:     col.Name,
			Type:     col.Type,
			Nullable: col.Nullable,
		})
	}
	return columns
}
