package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
)

type InfoHandler struct {
	dbOK bool
}

func NewInfoHandler(dbOK bool) *InfoHandler {
	return &InfoHandler{dbOK: dbOK}
}

func (h *InfoHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/info", h.GetInfo, huma.OperationTags("health"))
}

type InfoBody struct {
	Name     string   `json:"name" doc:"Service name"`
	Version  string   `json:"version" doc:"Service version"`
	DB       bool     `json:"db" doc:"Whether the DuckDB attribute mirror is available"`
	Formats  []string `json:"formats" doc:"Accepted and produced media types"`
	Features []string `json:"features" doc:"Available features"`
}

type InfoOutput struct {
	Body InfoBody
}

func (h *InfoHandler) GetInfo(ctx context.Context, input *struct{}) (*InfoOutput, error) {
	features := []string{"filter", "table", "scene", "export", "viewer"}
	if h.dbOK {
		features = append(features, "duckdb")
	}
	return &InfoOutput{Body: InfoBody{
		Name:     "geo-filter",
		Version:  Version,
		DB:       h.dbOK,
		Formats:  []string{"application/geo+json", "application/json"},
		Features: features,
	}}, nil
}
