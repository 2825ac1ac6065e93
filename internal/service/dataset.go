package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/joeblew999/geo-filter/internal/config"
	"github.com/joeblew999/geo-filter/internal/geo"
)

var (
	// ErrNoDataset is returned when no dataset has been loaded yet.
	ErrNoDataset = errors.New("no dataset loaded")
	// ErrTooLarge is returned when an upload exceeds the configured limit.
	ErrTooLarge = errors.New("dataset exceeds upload limit")
)

// Mirror receives a copy of every loaded attribute table.
type Mirror interface {
	Sync(ctx context.Context, t *geo.Table) error
	Clear(ctx context.Context) error
}

// DatasetService holds the single loaded dataset. Each call works on the
// snapshot current when it started; loads replace the snapshot wholesale.
type DatasetService struct {
	cfg    *config.Config
	bus    *EventBus
	mirror Mirror

	mu      sync.RWMutex
	current *Dataset
}

// NewDatasetService creates a dataset service. bus and mirror may be nil.
func NewDatasetService(cfg *config.Config, bus *EventBus, mirror Mirror) *DatasetService {
	if cfg == nil {
		cfg = config.Default()
	}
	return &DatasetService{cfg: cfg, bus: bus, mirror: mirror}
}

// Load decodes a GeoJSON document and makes it the current dataset.
func (s *DatasetService) Load(ctx context.Context, name string, r io.Reader) (DatasetInfo, error) {
	limit := s.cfg.MaxUploadBytes()
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return DatasetInfo{}, fmt.Errorf("reading %s: %w", name, err)
	}
	if int64(len(data)) > limit {
		return DatasetInfo{}, fmt.Errorf("%w (%s)", ErrTooLarge, formatSize(limit))
	}

	fc, err := geo.DecodeCollection(data)
	if err != nil {
		return DatasetInfo{}, fmt.Errorf("loading %s: %w", name, err)
	}
	table, err := geo.BuildTable(fc.Features)
	if err != nil {
		return DatasetInfo{}, fmt.Errorf("loading %s: %w", name, err)
	}

	ds := &Dataset{
		Info: DatasetInfo{
			Name:          name,
			Size:          formatSize(int64(len(data))),
			FeatureCount:  fc.Len(),
			Columns:       table.Columns,
			DefaultColumn: table.Columns[table.DefaultFilterColumn()],
			LoadedAt:      time.Now().UTC(),
		},
		Collection: fc,
		Table:      table,
	}

	s.mu.Lock()
	s.current = ds
	s.mu.Unlock()

	if s.mirror != nil {
		if err := s.mirror.Sync(ctx, table); err != nil {
			log.Warn().Err(err).Str("dataset", name).Msg("Attribute mirror sync failed")
		}
	}

	log.Info().
		Str("dataset", name).
		Int("features", ds.Info.FeatureCount).
		Int("columns", len(table.Columns)).
		Str("size", ds.Info.Size).
		Msg("Dataset loaded")

	s.publish(Event{Action: ActionLoaded, Dataset: name, FeatureCount: ds.Info.FeatureCount})
	return ds.Info, nil
}

// Current returns the loaded dataset snapshot.
func (s *DatasetService) Current() (*Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, ErrNoDataset
	}
	return s.current, nil
}

// Clear unloads the dataset.
func (s *DatasetService) Clear(ctx context.Context) error {
	s.mu.Lock()
	ds := s.current
	s.current = nil
	s.mu.Unlock()

	if ds == nil {
		return ErrNoDataset
	}
	if s.mirror != nil {
		if err := s.mirror.Clear(ctx); err != nil {
			log.Warn().Err(err).Msg("Attribute mirror clear failed")
		}
	}
	s.publish(Event{Action: ActionCleared, Dataset: ds.Info.Name})
	return nil
}

// Filter returns the rows matching spec with match and total counts.
func (s *DatasetService) Filter(spec geo.FilterSpec) (*FilterResult, error) {
	ds, err := s.Current()
	if err != nil {
		return nil, err
	}
	return filterTable(ds, spec)
}

// Scene builds a map scene for req, filling in the configured focus
// attribute and palette when req leaves them unset.
func (s *DatasetService) Scene(req geo.SceneRequest) (*geo.MapScene, error) {
	ds, err := s.Current()
	if err != nil {
		return nil, err
	}
	return s.buildScene(ds, req)
}

// View returns the filtered table and the map scene for req, both computed
// from the same dataset snapshot.
func (s *DatasetService) View(req geo.SceneRequest) (*FilterResult, *geo.MapScene, error) {
	ds, err := s.Current()
	if err != nil {
		return nil, nil, err
	}
	res, err := filterTable(ds, req.Filter)
	if err != nil {
		return nil, nil, err
	}
	scene, err := s.buildScene(ds, req)
	if err != nil {
		return nil, nil, err
	}
	return res, scene, nil
}

func filterTable(ds *Dataset, spec geo.FilterSpec) (*FilterResult, error) {
	spec = ds.resolve(spec)
	table, n, err := ds.Table.Filter(spec.Attribute, spec.Pattern)
	if err != nil {
		return nil, err
	}
	return &FilterResult{Table: table, MatchCount: n, TotalCount: len(ds.Table.Rows)}, nil
}

func (s *DatasetService) buildScene(ds *Dataset, req geo.SceneRequest) (*geo.MapScene, error) {
	req.Filter = ds.resolve(req.Filter)
	if req.FocusAttribute == "" {
		req.FocusAttribute = s.cfg.FocusAttribute
	}
	if req.Palette == nil {
		req.Palette = s.cfg.Palette
	}
	return geo.BuildScene(ds.Collection, req)
}

// Export returns the filtered collection document and its feature count.
func (s *DatasetService) Export(spec geo.FilterSpec) ([]byte, int, error) {
	ds, err := s.Current()
	if err != nil {
		return nil, 0, err
	}
	return geo.ExportFiltered(ds.Collection, ds.resolve(spec))
}

func (s *DatasetService) publish(e Event) {
	if s.bus != nil {
		s.bus.Publish(e)
	}
}

// formatSize returns a human-readable file size.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
