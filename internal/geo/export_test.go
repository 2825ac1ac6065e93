package geo

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportFilteredRoundTrip(t *testing.T) {
	fc := loadFixture(t, "companies.geojson")

	out, n, err := ExportFiltered(fc, FilterSpec{Attribute: "name", Pattern: ""})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	again, err := DecodeCollection(out)
	require.NoError(t, err)
	assert.Equal(t, fc.Len(), again.Len())
}

func TestExportFilteredSubset(t *testing.T) {
	fc := loadFixture(t, "swiss.geojson")

	out, n, err := ExportFiltered(fc, FilterSpec{Attribute: "type", Pattern: "insurance"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var doc struct {
		Type     string            `json:"type"`
		Name     string            `json:"name"`
		Features []json.RawMessage `json:"features"`
	}
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.Equal(t, "FeatureCollection", doc.Type)
	assert.Equal(t, "swiss-sample", doc.Name)
	assert.Len(t, doc.Features, 2)

	// Member order survives: type, name, features.
	s := string(out)
	assert.Less(t, strings.Index(s, `"name": "swiss-sample"`), strings.Index(s, `"features"`))
	assert.True(t, strings.HasPrefix(s, "{\n  \"type\""))
}

func TestExportNoMatches(t *testing.T) {
	fc := loadFixture(t, "swiss.geojson")

	out, n, err := ExportFiltered(fc, FilterSpec{Attribute: "name", Pattern: "NonExistent"})
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	again, err := DecodeCollection(out)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Len())
}

func TestExportKeepsUnsupportedGeometryAndText(t *testing.T) {
	fc := loadFixture(t, "companies.geojson")

	out, n, err := ExportFiltered(fc, FilterSpec{Attribute: "name", Pattern: "AXA"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	s := string(out)
	assert.Contains(t, s, `"LineString"`)
	assert.Contains(t, s, "Müller")
	assert.Contains(t, s, "AXA <Services> & Co")
}

func TestExportConstructedCollection(t *testing.T) {
	fc := NewFeatureCollection([]*Feature{pointFeature(1, 2, "name", "a")})

	out, err := ExportJSON(fc, fc.Features)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "FeatureCollection",
		"features": [
			{"type": "Feature", "geometry": {"type": "Point", "coordinates": [1, 2]}, "properties": {"name": "a"}}
		]
	}`, string(out))
}

func TestExportRepeatedFeaturesKeyWrittenOnce(t *testing.T) {
	fc, err := DecodeCollection([]byte(`{"type": "FeatureCollection", "features": [],
		"name": "dup", "features": [{"type": "Feature", "geometry": null, "properties": {"name": "kept"}}]}`))
	require.NoError(t, err)

	out, n, err := ExportFiltered(fc, FilterSpec{Attribute: "name"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, strings.Count(string(out), `"features"`))
	assert.Less(t, strings.Index(string(out), `"name": "dup"`), strings.Index(string(out), `"features"`))

	var doc struct {
		Features []json.RawMessage `json:"features"`
	}
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.Len(t, doc.Features, 1)
}
