// Package service holds the single in-memory dataset the API works on.
package service

import (
	"time"

	"github.com/joeblew999/geo-filter/internal/geo"
)

// DatasetInfo describes the loaded dataset.
type DatasetInfo struct {
	Name          string    `json:"name" doc:"Uploaded file name" example:"offices.geojson"`
	Size          string    `json:"size" doc:"Human-readable document size" example:"1.2 MB"`
	FeatureCount  int       `json:"featureCount" doc:"Number of features" example:"3"`
	Columns       []string  `json:"columns" doc:"Property columns in first-seen order"`
	DefaultColumn string    `json:"defaultColumn" doc:"Suggested filter column" example:"name"`
	LoadedAt      time.Time `json:"loadedAt" doc:"Load time"`
}

// Dataset is an immutable snapshot of the loaded collection.
type Dataset struct {
	Info       DatasetInfo
	Collection *geo.FeatureCollection
	Table      *geo.Table
}

// FilterResult is a filtered view of the attribute table.
type FilterResult struct {
	Table      *geo.Table
	MatchCount int
	TotalCount int
}

// resolve fills in the default filter column when spec names none.
func (ds *Dataset) resolve(spec geo.FilterSpec) geo.FilterSpec {
	if spec.Attribute == "" {
		spec.Attribute = ds.Info.DefaultColumn
	}
	return spec
}
