package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/geo-filter/internal/geo"
	"github.com/joeblew999/geo-filter/internal/humastar"
	"github.com/joeblew999/geo-filter/internal/service"
)

// FilterQuery carries the attribute filter shared by the dataset views.
type FilterQuery struct {
	Attribute string `query:"attribute" doc:"Property to match; defaults to the dataset's filter column" example:"name"`
	Pattern   string `query:"pattern" doc:"Case-insensitive regular expression; empty keeps every feature" example:"helvetia|baloise"`
}

func (q FilterQuery) spec() geo.FilterSpec {
	return geo.FilterSpec{Attribute: q.Attribute, Pattern: q.Pattern}
}

type LoadInput struct {
	Name    string `query:"name" doc:"File name recorded with the dataset" default:"upload.geojson"`
	RawBody []byte
}

// DatasetBody is the dataset summary plus the actions available on it.
type DatasetBody struct {
	service.DatasetInfo
}

var datasetActions = []humastar.ActionDef{
	{Rel: "export", Pattern: "/api/v1/dataset/export?attribute=%s", Method: http.MethodGet, Title: "Download filtered GeoJSON"},
	{Rel: "scene", Pattern: "/api/v1/dataset/scene?attribute=%s", Method: http.MethodGet, Title: "Map scene"},
	{Rel: "table", Pattern: "/api/v1/dataset/table?attribute=%s", Method: http.MethodGet, Title: "Attribute table"},
	{Rel: "delete", Pattern: "/api/v1/dataset", Method: http.MethodDelete, Title: "Unload dataset"},
}

// Actions implements humastar.Actor.
func (b DatasetBody) Actions() []humastar.Action {
	return humastar.ActionsFor(b.DefaultColumn, datasetActions)
}

type DatasetOutput struct {
	Body DatasetBody
}

type TableInput struct {
	FilterQuery
	Columns []string `query:"columns,explode" doc:"Columns to return, in order; unknown names are skipped. Empty returns every column" example:"name"`
	Offset  int      `query:"offset" minimum:"0" default:"0" doc:"First row to return"`
	Limit   int      `query:"limit" minimum:"1" maximum:"1000" default:"100" doc:"Page size"`
}

// TableBody is one page of the filtered attribute table.
type TableBody struct {
	humastar.PageBody[geo.Row]
	Columns    []string `json:"columns" doc:"Property columns in first-seen order"`
	MatchCount int      `json:"matchCount" doc:"Rows matching the filter"`
	TotalCount int      `json:"totalCount" doc:"Rows in the dataset"`
}

type TableOutput struct {
	Body TableBody
}

type SceneInput struct {
	FilterQuery
	Focus []string `query:"focus,explode" doc:"Feature names to emphasize" example:"Helvetia Zurich"`
}

type SceneOutput struct {
	Body *geo.MapScene
}

type ExportOutput struct {
	ContentType        string `header:"Content-Type"`
	ContentDisposition string `header:"Content-Disposition"`
	FeatureCount       int    `header:"X-Feature-Count"`
	Body               []byte
}

// RegisterDataset registers dataset routes.
func (h *APIHandler) RegisterDataset(api huma.API) {
	limit := int64(0)
	if h.svc != nil {
		limit = h.svc.MaxUploadBytes
	}
	huma.Register(api, huma.Operation{
		OperationID:  "load-dataset",
		Method:       http.MethodPost,
		Path:         "/api/v1/dataset",
		Summary:      "Load a GeoJSON FeatureCollection",
		Tags:         []string{"dataset"},
		MaxBodyBytes: limit,
	}, h.LoadDataset)
	huma.Get(api, "/api/v1/dataset", h.GetDataset, huma.OperationTags("dataset"))
	huma.Delete(api, "/api/v1/dataset", h.DeleteDataset, huma.OperationTags("dataset"))
	huma.Get(api, "/api/v1/dataset/table", h.GetTable, huma.OperationTags("dataset"))
	huma.Get(api, "/api/v1/dataset/scene", h.GetScene, huma.OperationTags("dataset"))
	huma.Get(api, "/api/v1/dataset/export", h.ExportDataset, huma.OperationTags("dataset"))
}

func (h *APIHandler) LoadDataset(ctx context.Context, input *LoadInput) (*DatasetOutput, error) {
	svc, err := h.datasets()
	if err != nil {
		return nil, err
	}
	info, err := svc.Load(ctx, input.Name, bytes.NewReader(input.RawBody))
	if err != nil {
		return nil, problem(err)
	}
	return &DatasetOutput{Body: DatasetBody{info}}, nil
}

func (h *APIHandler) GetDataset(ctx context.Context, input *struct{}) (*DatasetOutput, error) {
	svc, err := h.datasets()
	if err != nil {
		return nil, err
	}
	ds, err := svc.Current()
	if err != nil {
		return nil, problem(err)
	}
	return &DatasetOutput{Body: DatasetBody{ds.Info}}, nil
}

func (h *APIHandler) DeleteDataset(ctx context.Context, input *struct{}) (*MessageOutput, error) {
	svc, err := h.datasets()
	if err != nil {
		return nil, err
	}
	if err := svc.Clear(ctx); err != nil {
		return nil, problem(err)
	}
	return &MessageOutput{Body: MessageBody{Message: "Dataset unloaded"}}, nil
}

func (h *APIHandler) GetTable(ctx context.Context, input *TableInput) (*TableOutput, error) {
	svc, err := h.datasets()
	if err != nil {
		return nil, err
	}
	res, err := svc.Filter(input.spec())
	if err != nil {
		return nil, problem(err)
	}
	table := res.Table
	if len(input.Columns) > 0 {
		table = table.Select(input.Columns)
	}
	return &TableOutput{Body: TableBody{
		PageBody:   humastar.Paginate(table.Rows, input.Offset, input.Limit),
		Columns:    table.Columns,
		MatchCount: res.MatchCount,
		TotalCount: res.TotalCount,
	}}, nil
}

func (h *APIHandler) GetScene(ctx context.Context, input *SceneInput) (*SceneOutput, error) {
	svc, err := h.datasets()
	if err != nil {
		return nil, err
	}
	scene, err := svc.Scene(geo.SceneRequest{Filter: input.spec(), Focus: input.Focus})
	if err != nil {
		return nil, problem(err)
	}
	return &SceneOutput{Body: scene}, nil
}

func (h *APIHandler) ExportDataset(ctx context.Context, input *FilterQuery) (*ExportOutput, error) {
	svc, err := h.datasets()
	if err != nil {
		return nil, err
	}
	doc, n, err := svc.Export(input.spec())
	if err != nil {
		return nil, problem(err)
	}
	return &ExportOutput{
		ContentType:        geo.ExportMediaType,
		ContentDisposition: fmt.Sprintf("attachment; filename=%q", geo.ExportFileName),
		FeatureCount:       n,
		Body:               doc,
	}, nil
}
