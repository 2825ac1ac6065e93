package viewer

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/geo-filter/internal/humastar"
	"github.com/joeblew999/geo-filter/internal/service"
	"github.com/joeblew999/geo-filter/internal/templates"
)

// EventHandler streams dataset change events to the viewer via SSE.
type EventHandler struct {
	humastar.Handler
	datasets *service.DatasetService
	bus      *service.EventBus
}

// NewEventHandler creates a new event handler.
func NewEventHandler(datasets *service.DatasetService, bus *service.EventBus, renderer *templates.Renderer) *EventHandler {
	return &EventHandler{
		Handler:  humastar.Handler{Renderer: renderer},
		datasets: datasets,
		bus:      bus,
	}
}

func (h *EventHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/viewer/events", h.Events,
		huma.OperationTags("viewer"),
	)
}

func (h *EventHandler) Events(ctx context.Context, input *humastar.EmptyInput) (*huma.StreamResponse, error) {
	return h.Stream(func(sse humastar.SSE) {
		ch := h.bus.Subscribe()
		defer h.bus.Unsubscribe(ch)

		h.sendDataset(sse)
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-ch:
				h.sendDataset(sse)
				sse.DispatchCustomEvent("dataset-changed", map[string]any{
					"action":       ev.Action,
					"dataset":      ev.Dataset,
					"featureCount": ev.FeatureCount,
				})
			}
		}
	}), nil
}

// sendDataset pushes the current dataset summary and column choices.
func (h *EventHandler) sendDataset(sse humastar.SSE) {
	ds, err := h.datasets.Current()
	if err != nil {
		sse.Signals(map[string]any{"dataset": "", "featureCount": 0, "attribute": ""})
		sse.Patch(h.RenderSelect("No dataset loaded", nil), "#attribute-select")
		sse.Patch(h.Fragment("empty-state", map[string]string{
			"Title": "No dataset", "Message": "Load a GeoJSON file to start filtering.",
		}), "#preview")
		return
	}

	options := make([]humastar.SelectOptionData, len(ds.Info.Columns))
	for i, col := range ds.Info.Columns {
		options[i] = humastar.SelectOptionData{Value: col, Label: col}
	}
	sse.Signals(map[string]any{
		"dataset":      ds.Info.Name,
		"featureCount": ds.Info.FeatureCount,
		"attribute":    ds.Info.DefaultColumn,
	})
	sse.Patch(h.RenderSelect("Filter column", options), "#attribute-select")
}
