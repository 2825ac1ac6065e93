// Package api defines the Huma API routes and handlers.
package api

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog/log"

	"github.com/joeblew999/geo-filter/internal/geo"
	"github.com/joeblew999/geo-filter/internal/service"
)

// Version is reported by /health and /api/v1/info.
const Version = "0.1.0"

// Services holds the service dependencies for API handlers.
type Services struct {
	Dataset *service.DatasetService
	// MaxUploadBytes bounds POST /api/v1/dataset bodies.
	MaxUploadBytes int64
}

type HealthBody struct {
	Status  string `json:"status" doc:"Health status" example:"ok"`
	Version string `json:"version" doc:"API version" example:"0.1.0"`
	Dataset bool   `json:"dataset" doc:"Whether a dataset is loaded"`
}

type HealthOutput struct {
	Body HealthBody
}

type MessageBody struct {
	Message string `json:"message" doc:"Result message"`
}

type MessageOutput struct {
	Body MessageBody
}

// APIHandler holds all REST API handlers. Methods named Register* are
// auto-discovered by huma.AutoRegister.
type APIHandler struct {
	svc *Services
}

func NewAPIHandler(svc *Services) *APIHandler {
	return &APIHandler{svc: svc}
}

// RegisterRoutes registers every REST route backed by svc.
func RegisterRoutes(api huma.API, svc *Services) {
	huma.AutoRegister(api, NewAPIHandler(svc))
}

// RegisterHealth registers health check routes.
func (h *APIHandler) RegisterHealth(api huma.API) {
	huma.Get(api, "/health", h.GetHealth, huma.OperationTags("health"))
}

func (h *APIHandler) GetHealth(ctx context.Context, input *struct{}) (*HealthOutput, error) {
	loaded := false
	if h.svc != nil && h.svc.Dataset != nil {
		_, err := h.svc.Dataset.Current()
		loaded = err == nil
	}
	return &HealthOutput{Body: HealthBody{Status: "ok", Version: Version, Dataset: loaded}}, nil
}

func (h *APIHandler) datasets() (*service.DatasetService, error) {
	if h.svc == nil || h.svc.Dataset == nil {
		return nil, huma.Error503ServiceUnavailable("dataset service not available")
	}
	return h.svc.Dataset, nil
}

// problem maps domain errors onto HTTP status codes.
func problem(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, service.ErrNoDataset):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, service.ErrTooLarge):
		return huma.Error413RequestEntityTooLarge(err.Error())
	case errors.Is(err, geo.ErrMalformed),
		errors.Is(err, geo.ErrNoFeatures),
		errors.Is(err, geo.ErrNoProperties),
		errors.Is(err, geo.ErrInvalidPattern):
		return huma.Error400BadRequest(err.Error())
	default:
		log.Error().Err(err).Msg("Request failed")
		return huma.Error500InternalServerError("internal error", err)
	}
}
