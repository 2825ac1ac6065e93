// Package viewer contains Datastar SSE handlers for the map viewer page.
package viewer

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog/log"

	"github.com/joeblew999/geo-filter/internal/geo"
	"github.com/joeblew999/geo-filter/internal/humastar"
	"github.com/joeblew999/geo-filter/internal/service"
	"github.com/joeblew999/geo-filter/internal/templates"
)

// previewRows caps the rows rendered into the preview table.
const previewRows = 200

// FilterHandler applies the page's filter signals and streams back the
// resulting scene and preview table.
type FilterHandler struct {
	humastar.Handler
	datasets *service.DatasetService
}

// NewFilterHandler creates a new filter handler.
func NewFilterHandler(datasets *service.DatasetService, renderer *templates.Renderer) *FilterHandler {
	return &FilterHandler{
		Handler:  humastar.Handler{Renderer: renderer},
		datasets: datasets,
	}
}

func (h *FilterHandler) RegisterRoutes(api huma.API) {
	huma.Post(api, "/api/v1/viewer/filter", h.Apply,
		huma.OperationTags("viewer"),
	)
}

// Apply reads the attribute, pattern, focus and columns signals. An empty
// columns list shows every column.
func (h *FilterHandler) Apply(ctx context.Context, input *humastar.SignalsInput) (*huma.StreamResponse, error) {
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}
	req := geo.SceneRequest{
		Filter: geo.FilterSpec{
			Attribute: signals.String("attribute"),
			Pattern:   signals.String("pattern"),
		},
		Focus: signals.Strings("focus"),
	}
	columns := signals.Strings("columns")

	return h.Stream(func(sse humastar.SSE) {
		res, scene, err := h.datasets.View(req)
		if err != nil {
			h.fail(sse, err)
			return
		}

		sse.Signals(map[string]any{
			"error":      "",
			"matchCount": res.MatchCount,
			"totalCount": res.TotalCount,
			"center":     scene.Center,
			"zoom":       scene.Zoom,
			"scene":      scene,
		})

		page := humastar.Paginate(res.Table.Rows, 0, previewRows)
		preview := &geo.Table{Columns: res.Table.Columns, Rows: page.Data}
		if len(columns) > 0 {
			preview = preview.Select(columns)
		}
		sse.Patch(h.Fragment("preview-table",
			templates.NewPreviewData(preview, res.MatchCount, res.TotalCount, req.Filter.Pattern != "")), "#preview")
	}), nil
}

func (h *FilterHandler) fail(sse humastar.SSE, err error) {
	switch {
	case errors.Is(err, service.ErrNoDataset):
		sse.Patch(h.Fragment("empty-state", map[string]string{
			"Title": "No dataset", "Message": "Load a GeoJSON file to start filtering.",
		}), "#preview")
	case errors.Is(err, geo.ErrInvalidPattern):
	default:
		log.Error().Err(err).Msg("Viewer filter failed")
	}
	sse.Error(err.Error())
}
