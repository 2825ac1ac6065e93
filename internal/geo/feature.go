// Package geo is the filtering, bounds and zoom engine behind the viewer.
//
// Everything in this package is a pure function of its inputs: a decoded
// FeatureCollection goes in, read-only projections (filtered slices, tables,
// centers, zoom levels, map scenes, export documents) come out.
package geo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

var (
	// ErrMalformed is returned when the input is not valid JSON.
	ErrMalformed = errors.New("input is not valid JSON")
	// ErrNoFeatures is returned when the input has no features array.
	ErrNoFeatures = errors.New("input contains no GeoJSON features")
)

const (
	featuresKey      = "features"
	featureCollType  = "FeatureCollection"
	featureType      = "Feature"
	centerHintKey    = "center"
	geometryPoint    = "Point"
	geometryPolygon  = "Polygon"
	geometryMultiPol = "MultiPolygon"
)

// FeatureCollection is a decoded GeoJSON document. Top-level members other
// than "features" are kept verbatim, in document order, for export.
type FeatureCollection struct {
	Features []*Feature
	members  []member
}

// NewFeatureCollection builds a collection from features that were not
// decoded from a document.
func NewFeatureCollection(features []*Feature) *FeatureCollection {
	return &FeatureCollection{
		Features: features,
		members: []member{
			{Key: "type", Value: json.RawMessage(`"` + featureCollType + `"`)},
			{Key: featuresKey},
		},
	}
}

// Type returns the top-level "type" member, or "" if absent.
func (fc *FeatureCollection) Type() string {
	for _, m := range fc.members {
		if m.Key != "type" {
			continue
		}
		var s string
		if err := json.Unmarshal(m.Value, &s); err == nil {
			return s
		}
	}
	return ""
}

// Len returns the number of features.
func (fc *FeatureCollection) Len() int {
	if fc == nil {
		return 0
	}
	return len(fc.Features)
}

// Feature is one entity of a collection. Geometry is nil when the source
// geometry is missing or null.
type Feature struct {
	Geometry   Geometry
	Properties *Properties
	raw        json.RawMessage
}

// NewFeature creates a feature that serializes from its fields.
func NewFeature(g Geometry, props *Properties) *Feature {
	if props == nil {
		props = NewProperties()
	}
	return &Feature{Geometry: g, Properties: props}
}

// CenterHint returns the declared center stored under the "center" property.
// Both a GeoJSON Point object and a bare [lon, lat] pair are accepted.
func (f *Feature) CenterHint() (orb.Point, bool) {
	v, ok := f.Properties.Get(centerHintKey)
	if !ok || v == nil {
		return orb.Point{}, false
	}
	switch hint := v.(type) {
	case map[string]any:
		if t, _ := hint["type"].(string); t != geometryPoint {
			return orb.Point{}, false
		}
		if c, ok := NodeFromJSON(hint["coordinates"]).(Coordinate); ok {
			return orb.Point{c.Lon, c.Lat}, true
		}
	case []any:
		if c, ok := NodeFromJSON(hint).(Coordinate); ok {
			return orb.Point{c.Lon, c.Lat}, true
		}
	}
	return orb.Point{}, false
}

// MarshalJSON returns the original feature JSON when the feature was decoded
// from a document.
func (f *Feature) MarshalJSON() ([]byte, error) {
	if f.raw != nil {
		return f.raw, nil
	}

	var geom json.RawMessage = []byte("null")
	if f.Geometry != nil {
		b, err := marshalGeometry(f.Geometry)
		if err != nil {
			return nil, err
		}
		geom = b
	}
	return json.Marshal(struct {
		Type       string          `json:"type"`
		Geometry   json.RawMessage `json:"geometry"`
		Properties *Properties     `json:"properties"`
	}{featureType, geom, f.Properties})
}

// ReadCollection decodes a FeatureCollection from r.
func ReadCollection(r io.Reader) (*FeatureCollection, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return DecodeCollection(data)
}

// DecodeCollection decodes a FeatureCollection. The document must be valid
// JSON with a "features" array; everything else is accepted as is.
func DecodeCollection(data []byte) (*FeatureCollection, error) {
	if !json.Valid(data) {
		return nil, ErrMalformed
	}
	members, err := decodeMembers(data)
	if err != nil {
		return nil, ErrNoFeatures
	}

	// Repeated keys resolve to the last occurrence, as in encoding/json.
	last := -1
	for i := range members {
		if members[i].Key == featuresKey {
			last = i
		}
	}
	if last < 0 {
		return nil, ErrNoFeatures
	}
	raw := bytes.TrimSpace(members[last].Value)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, ErrNoFeatures
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, ErrNoFeatures
	}

	fc := &FeatureCollection{Features: make([]*Feature, 0, len(items))}
	for n, item := range items {
		f, err := decodeFeature(item)
		if err != nil {
			return nil, fmt.Errorf("%w: feature %d: %v", ErrMalformed, n, err)
		}
		fc.Features = append(fc.Features, f)
	}
	for i, m := range members {
		switch {
		case i == last:
			fc.members = append(fc.members, member{Key: featuresKey})
		case m.Key != featuresKey:
			fc.members = append(fc.members, m)
		}
	}
	return fc, nil
}

func decodeFeature(data json.RawMessage) (*Feature, error) {
	members, err := decodeMembers(data)
	if err != nil {
		return nil, err
	}

	f := &Feature{Properties: NewProperties(), raw: data}
	for _, m := range members {
		switch m.Key {
		case "geometry":
			g, err := decodeGeometry(m.Value)
			if err != nil {
				return nil, err
			}
			f.Geometry = g
		case "properties":
			if err := f.Properties.UnmarshalJSON(m.Value); err != nil {
				return nil, fmt.Errorf("properties: %w", err)
			}
		}
	}
	return f, nil
}

// member is one key/value pair of a JSON object in document order.
type member struct {
	Key   string
	Value json.RawMessage
}

func decodeMembers(data []byte) ([]member, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("not a JSON object")
	}

	var members []member
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		members = append(members, member{Key: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return members, nil
}

// Geometry is the closed set of geometry shapes the engine understands.
// Shapes outside Point/Polygon/MultiPolygon decode to *OtherGeometry.
type Geometry interface {
	// GeometryType returns the GeoJSON type name.
	GeometryType() string
	sealed()
}

// Point is a single (lon, lat) coordinate.
type Point struct {
	Coordinate orb.Point
}

// Polygon is an outer ring followed by optional holes.
type Polygon struct {
	Rings orb.Polygon
}

// MultiPolygon is a list of polygons.
type MultiPolygon struct {
	Polygons orb.MultiPolygon
}

// OtherGeometry is any geometry the engine does not sample. It is exported
// unchanged.
type OtherGeometry struct {
	Type string
	Raw  json.RawMessage
}

func (*Point) GeometryType() string          { return geometryPoint }
func (*Polygon) GeometryType() string        { return geometryPolygon }
func (*MultiPolygon) GeometryType() string   { return geometryMultiPol }
func (g *OtherGeometry) GeometryType() string { return g.Type }

func (*Point) sealed()         {}
func (*Polygon) sealed()       {}
func (*MultiPolygon) sealed()  {}
func (*OtherGeometry) sealed() {}

// orbGeometry returns the orb value for supported shapes, nil otherwise.
func orbGeometry(g Geometry) orb.Geometry {
	switch g := g.(type) {
	case *Point:
		return g.Coordinate
	case *Polygon:
		return g.Rings
	case *MultiPolygon:
		return g.Polygons
	case *OtherGeometry:
		return nil
	}
	return nil
}

func decodeGeometry(data json.RawMessage) (Geometry, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}

	var head struct {
		Type        string          `json:"type"`
		Coordinates json.RawMessage `json:"coordinates"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return &OtherGeometry{Raw: data}, nil
	}

	other := &OtherGeometry{Type: head.Type, Raw: data}
	switch head.Type {
	case geometryPoint, geometryPolygon, geometryMultiPol:
	default:
		return other, nil
	}

	if !hasCoordinates(head.Coordinates) {
		return other, nil
	}
	// Shapes orb cannot parse are kept as-is rather than rejected.
	g, err := geojson.UnmarshalGeometry(data)
	if err != nil || g.Coordinates == nil {
		return other, nil
	}
	switch c := g.Coordinates.(type) {
	case orb.Point:
		return &Point{Coordinate: c}, nil
	case orb.Polygon:
		return &Polygon{Rings: c}, nil
	case orb.MultiPolygon:
		return &MultiPolygon{Polygons: c}, nil
	}
	return other, nil
}

// hasCoordinates reports whether a coordinates member is present and neither
// null nor an empty array.
func hasCoordinates(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return false
	}
	if raw[0] == '[' && len(bytes.TrimSpace(raw[1:len(raw)-1])) == 0 {
		return false
	}
	return true
}

func marshalGeometry(g Geometry) ([]byte, error) {
	if o, ok := g.(*OtherGeometry); ok {
		return o.Raw, nil
	}
	return geojson.NewGeometry(orbGeometry(g)).MarshalJSON()
}
