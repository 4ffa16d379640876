package models

import (
	"encoding/base64"
	"fmt"
)

// SchemaProtocols are the access protocols every database schema exposes.
var SchemaProtocols = []string{"DATABASE", "S3"}

// Column describes one table column in arrow type vocabulary.
type Column struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
}

// Table describes a table inside a schema.
type Table struct {
	Name    string   `json:"name"`
	Schema  string   `json:"schema"`
	Columns []Column `json:"columns"`
	Rows    int64    `json:"rows"`
	Created string   `json:"created"`
}

// Schema describes a named namespace inside the configured bucket.
type Schema struct {
	Name      string   `json:"name"`
	Bucket    string   `json:"bucket"`
	Path      string   `json:"path"`
	Protocols []string `json:"protocols"`
	Created   string   `json:"created"`
	ID        string   `json:"id"`
	Tables    []Table  `json:"tables,omitempty"`
}

// SchemaID derives the deterministic public identifier for a schema.
func SchemaID(bucket, name string) string {
	id := base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf("%s-%s", bucket, name)))
	if len(id) > 16 {
		id = id[:16]
	}
	return id
}

// SchemaPath is the bucket-relative path clients display for a schema.
func SchemaPath(bucket, name string) string {
	return fmt.Sprintf("/%s/%s", bucket, name)
}

// ConnectionInfo summarizes the store connection for status endpoints.
type ConnectionInfo struct {
	Endpoint string `json:"endpoint,omitempty"`
	Bucket   string `json:"bucket,omitempty"`
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
}
