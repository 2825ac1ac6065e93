package api

import (
	"context"
	"database/sql"

	"github.com/danielgtaylor/huma/v2"
)

// DBHandler exposes read access to the DuckDB attribute mirror.
type DBHandler struct {
	db *sql.DB
}

// NewDBHandler creates a new database handler. db may be nil, in which case
// every route answers 503.
func NewDBHandler(db *sql.DB) *DBHandler {
	return &DBHandler{db: db}
}

// RegisterRoutes registers database routes with Huma.
func (h *DBHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/tables", h.ListTables, huma.OperationTags("sql"))
	huma.Post(api, "/api/v1/query", h.Query, huma.OperationTags("sql"))
}

type TablesBody struct {
	Tables []string `json:"tables" doc:"List of table names"`
}

type TablesOutput struct {
	Body TablesBody
}

// ListTables returns all DuckDB tables.
func (h *DBHandler) ListTables(ctx context.Context, input *struct{}) (*TablesOutput, error) {
	if h.db == nil {
		return nil, huma.Error503ServiceUnavailable("Database not available")
	}

	rows, err := h.db.QueryContext(ctx, "SHOW TABLES")
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to list tables", err)
	}
	defer rows.Close()

	tables := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err == nil {
			tables = append(tables, name)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, huma.Error500InternalServerError("Failed to list tables", err)
	}
	return &TablesOutput{Body: TablesBody{Tables: tables}}, nil
}

// QueryInput is the input for SQL queries.
type QueryInput struct {
	Body struct {
		Query string `json:"query" required:"true" minLength:"1" doc:"SQL query to execute" example:"SELECT name FROM features WHERE regexp_matches(name, '(?i)zurich')"`
	}
}

type QueryBody struct {
	Columns []string         `json:"columns" doc:"Column names"`
	Rows    []map[string]any `json:"rows" doc:"Query results"`
	Count   int              `json:"count" doc:"Number of rows returned"`
}

type QueryOutput struct {
	Body QueryBody
}

// Query executes a SQL query against DuckDB.
func (h *DBHandler) Query(ctx context.Context, input *QueryInput) (*QueryOutput, error) {
	if h.db == nil {
		return nil, huma.Error503ServiceUnavailable("Database not available")
	}

	rows, err := h.db.QueryContext(ctx, input.Body.Query)
	if err != nil {
		return nil, huma.Error400BadRequest("Query failed: " + err.Error())
	}
	defer rows.Close()

	body, err := scanRows(rows)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to read rows", err)
	}
	return &QueryOutput{Body: body}, nil
}

func scanRows(rows *sql.Rows) (QueryBody, error) {
	columns, err := rows.Columns()
	if err != nil {
		return QueryBody{}, err
	}

	results := []map[string]any{}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return QueryBody{}, err
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return QueryBody{}, err
	}
	return QueryBody{Columns: columns, Rows: results, Count: len(results)}, nil
}
