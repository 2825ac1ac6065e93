package geo

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T, name string) *FeatureCollection {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	fc, err := DecodeCollection(data)
	require.NoError(t, err)
	return fc
}

func pointFeature(lon, lat float64, kv ...any) *Feature {
	props := NewProperties()
	for i := 0; i+1 < len(kv); i += 2 {
		props.Set(kv[i].(string), kv[i+1])
	}
	return NewFeature(&Point{Coordinate: orb.Point{lon, lat}}, props)
}

func boxFeature(minLon, minLat, maxLon, maxLat float64) *Feature {
	ring := orb.Ring{
		{minLon, minLat}, {maxLon, minLat}, {maxLon, maxLat}, {minLon, maxLat}, {minLon, minLat},
	}
	return NewFeature(&Polygon{Rings: orb.Polygon{ring}}, nil)
}

func TestDecodeCollection(t *testing.T) {
	fc := loadFixture(t, "swiss.geojson")

	assert.Equal(t, "FeatureCollection", fc.Type())
	require.Equal(t, 3, fc.Len())

	assert.IsType(t, &Point{}, fc.Features[0].Geometry)
	assert.IsType(t, &Polygon{}, fc.Features[2].Geometry)
	assert.Equal(t, []string{"name", "type", "city", "employees"}, fc.Features[0].Properties.Keys())
	assert.Equal(t, "250", fc.Features[0].Properties.String("employees"))

	hint, ok := fc.Features[2].CenterHint()
	require.True(t, ok)
	assert.Equal(t, orb.Point{8.55, 47.35}, hint)

	_, ok = fc.Features[0].CenterHint()
	assert.False(t, ok)
}

func TestDecodeCollectionErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"not json", `{"type": "FeatureCollection",`, ErrMalformed},
		{"no features", `{"type": "FeatureCollection"}`, ErrNoFeatures},
		{"features not array", `{"features": {"a": 1}}`, ErrNoFeatures},
		{"features null", `{"features": null}`, ErrNoFeatures},
		{"top level array", `[1, 2, 3]`, ErrNoFeatures},
		{"feature not object", `{"features": [42]}`, ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeCollection([]byte(tt.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestDecodeGeometryVariants(t *testing.T) {
	input := `{"features": [
		{"type": "Feature", "geometry": null, "properties": {"a": 1}},
		{"type": "Feature", "properties": {"a": 2}},
		{"type": "Feature", "geometry": {"type": "LineString", "coordinates": [[0, 0], [1, 1]]}, "properties": {}},
		{"type": "Feature", "geometry": {"type": "Hexagon", "cells": 6}, "properties": {}},
		{"type": "Feature", "geometry": {"type": "MultiPolygon", "coordinates": [[[[0, 0], [1, 0], [1, 1], [0, 0]]]]}, "properties": null}
	]}`
	fc, err := DecodeCollection([]byte(input))
	require.NoError(t, err)
	require.Len(t, fc.Features, 5)

	assert.Nil(t, fc.Features[0].Geometry)
	assert.Nil(t, fc.Features[1].Geometry)

	line, ok := fc.Features[2].Geometry.(*OtherGeometry)
	require.True(t, ok)
	assert.Equal(t, "LineString", line.GeometryType())

	hex, ok := fc.Features[3].Geometry.(*OtherGeometry)
	require.True(t, ok)
	assert.Equal(t, "Hexagon", hex.Type)
	assert.True(t, strings.Contains(string(hex.Raw), `"cells"`))

	assert.IsType(t, &MultiPolygon{}, fc.Features[4].Geometry)
	assert.Equal(t, 0, fc.Features[4].Properties.Len())
}

func TestCenterHintBareArray(t *testing.T) {
	f := boxFeature(0, 0, 1, 1)
	f.Properties.Set("center", []any{0.5, 0.25})

	hint, ok := f.CenterHint()
	require.True(t, ok)
	assert.Equal(t, orb.Point{0.5, 0.25}, hint)

	f.Properties.Set("center", "somewhere")
	_, ok = f.CenterHint()
	assert.False(t, ok)
}

func TestFeatureMarshalConstructed(t *testing.T) {
	f := pointFeature(8.5, 47.3, "name", "Zurich", "rank", 1)

	b, err := f.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "Feature",
		"geometry": {"type": "Point", "coordinates": [8.5, 47.3]},
		"properties": {"name": "Zurich", "rank": 1}
	}`, string(b))
}

func TestDecodeGeometryWithoutCoordinates(t *testing.T) {
	fc, err := DecodeCollection([]byte(`{"features": [
		{"type": "Feature", "geometry": {"type": "Point", "coordinates": null}},
		{"type": "Feature", "geometry": {"type": "Point", "coordinates": [ ]}},
		{"type": "Feature", "geometry": {"type": "Polygon"}},
		{"type": "Feature", "geometry": {"type": "MultiPolygon", "coordinates": []}}
	]}`))
	require.NoError(t, err)
	require.Len(t, fc.Features, 4)

	for i, f := range fc.Features {
		other, ok := f.Geometry.(*OtherGeometry)
		require.True(t, ok, "feature %d", i)
		assert.NotEmpty(t, other.Raw)
	}
	assert.Equal(t, "Point", fc.Features[0].Geometry.GeometryType())
	assert.Equal(t, "MultiPolygon", fc.Features[3].Geometry.GeometryType())
}

func TestDecodeCollectionRepeatedFeaturesKey(t *testing.T) {
	fc, err := DecodeCollection([]byte(`{"type": "FeatureCollection", "features": [
		{"type": "Feature", "geometry": null, "properties": {"name": "stale"}}
	], "name": "dup", "features": [
		{"type": "Feature", "geometry": null, "properties": {"name": "first"}},
		{"type": "Feature", "geometry": null, "properties": {"name": "second"}}
	]}`))
	require.NoError(t, err)
	require.Len(t, fc.Features, 2)
	assert.Equal(t, "first", fc.Features[0].Properties.String("name"))
}
