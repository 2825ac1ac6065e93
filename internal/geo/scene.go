package geo

import (
	"github.com/paulmach/orb/maptile"
	"github.com/paulmach/orb/planar"
)

// ShapeKind tells the renderer how to draw a styled feature.
type ShapeKind string

const (
	KindMarker ShapeKind = "marker"
	KindShape  ShapeKind = "shape"
)

// Style is the cosmetic rendering of a feature.
type Style struct {
	Color       string  `json:"color" yaml:"color" doc:"Stroke/marker colour (CSS)"`
	FillColor   string  `json:"fillColor" yaml:"fill_color" doc:"Fill colour (CSS)"`
	FillOpacity float64 `json:"fillOpacity" yaml:"fill_opacity" minimum:"0" maximum:"1" doc:"Fill opacity (0-1)"`
	Weight      float64 `json:"weight" yaml:"weight" doc:"Stroke width in pixels"`
	Radius      float64 `json:"radius" yaml:"radius" doc:"Marker radius in pixels"`
}

// StylePalette holds the normal and emphasized styles. Emphasis is used for
// focused scenes only.
type StylePalette struct {
	Normal   Style `json:"normal" yaml:"normal"`
	Emphasis Style `json:"emphasis" yaml:"emphasis"`
}

// DefaultPalette is the built-in blue/red palette.
func DefaultPalette() StylePalette {
	return StylePalette{
		Normal: Style{
			Color:       "#3388ff",
			FillColor:   "#3388ff",
			FillOpacity: 0.2,
			Weight:      2,
			Radius:      6,
		},
		Emphasis: Style{
			Color:       "#ff3333",
			FillColor:   "#ff6666",
			FillOpacity: 0.4,
			Weight:      4,
			Radius:      10,
		},
	}
}

// SceneRequest carries the UI selection into BuildScene.
type SceneRequest struct {
	Filter FilterSpec
	// Focus lists name values to highlight; empty means no focus.
	Focus []string
	// FocusAttribute is the property Focus names are read from. Defaults to
	// "name".
	FocusAttribute string
	Palette        *StylePalette
}

// StyledFeature is a feature with its draw instructions.
type StyledFeature struct {
	Feature    *Feature  `json:"feature" doc:"Source GeoJSON feature"`
	Kind       ShapeKind `json:"kind" enum:"marker,shape" doc:"marker for points, shape for polygons"`
	Emphasis   bool      `json:"emphasis" doc:"Drawn with the emphasis style"`
	Style      Style     `json:"style"`
	HintMarker *LatLon   `json:"hintMarker,omitempty" doc:"Declared polygon center, drawn as an extra marker"`
	Area       float64   `json:"area,omitempty" doc:"Planar polygon area in square degrees"`
}

// MapScene is everything a map widget needs to draw a selection.
type MapScene struct {
	Center     LatLon          `json:"center"`
	Zoom       int             `json:"zoom" doc:"Web-map zoom level"`
	Bound      [2][2]float64   `json:"bound" doc:"[[minLon,minLat],[maxLon,maxLat]] of sampled coordinates"`
	Tile       maptile.Tile    `json:"tile" doc:"Tile containing the center at the scene zoom"`
	Focused    bool            `json:"focused" doc:"Whether the scene highlights a focus selection"`
	MatchCount int             `json:"matchCount" doc:"Features in the scene"`
	TotalCount int             `json:"totalCount" doc:"Features in the collection"`
	Features   []StyledFeature `json:"features"`
}

// BuildScene filters fc, optionally narrows to focused names and lays out
// the result. A focus that matches nothing falls back to the full,
// unfiltered collection.
func BuildScene(fc *FeatureCollection, req SceneRequest) (*MapScene, error) {
	palette := DefaultPalette()
	if req.Palette != nil {
		palette = *req.Palette
	}

	selected, err := req.Filter.Apply(fc.Features)
	if err != nil {
		return nil, err
	}

	focused := false
	if len(req.Focus) > 0 {
		attr := req.FocusAttribute
		if attr == "" {
			attr = defaultColumn
		}
		if picked := SelectByName(selected, attr, req.Focus); len(picked) > 0 {
			selected, focused = picked, true
		} else {
			selected = fc.Features
		}
	}

	return layoutScene(selected, focused, palette, fc.Len()), nil
}

func layoutScene(features []*Feature, focused bool, palette StylePalette, total int) *MapScene {
	center := ComputeCenter(features)
	zoom := ComputeZoom(features)
	bound := ComputeBound(features)

	style := palette.Normal
	if focused {
		style = palette.Emphasis
	}

	styled := make([]StyledFeature, 0, len(features))
	for _, f := range features {
		sf := StyledFeature{Feature: f, Emphasis: focused, Style: style}
		switch g := f.Geometry.(type) {
		case *Point:
			sf.Kind = KindMarker
		case *Polygon:
			sf.Kind = KindShape
			sf.Area = planar.Area(g.Rings)
			sf.HintMarker = hintMarker(f)
		case *MultiPolygon:
			sf.Kind = KindShape
			sf.Area = planar.Area(g.Polygons)
			sf.HintMarker = hintMarker(f)
		case *OtherGeometry, nil:
			continue
		}
		styled = append(styled, sf)
	}

	return &MapScene{
		Center:     center,
		Zoom:       zoom,
		Bound:      [2][2]float64{bound.Min, bound.Max},
		Tile:       maptile.At(center.Point(), maptile.Zoom(zoom)),
		Focused:    focused,
		MatchCount: len(features),
		TotalCount: total,
		Features:   styled,
	}
}

func hintMarker(f *Feature) *LatLon {
	hint, ok := f.CenterHint()
	if !ok {
		return nil
	}
	return &LatLon{Lat: hint.Lat(), Lon: hint.Lon()}
}
