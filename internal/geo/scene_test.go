package geo

import (
	"encoding/json"
	"testing"

	"github.com/paulmach/orb/maptile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSceneFiltered(t *testing.T) {
	fc := loadFixture(t, "swiss.geojson")

	scene, err := BuildScene(fc, SceneRequest{Filter: FilterSpec{Attribute: "type", Pattern: "insurance"}})
	require.NoError(t, err)

	assert.False(t, scene.Focused)
	assert.Equal(t, 2, scene.MatchCount)
	assert.Equal(t, 3, scene.TotalCount)
	assert.Equal(t, 8, scene.Zoom)
	assert.Equal(t, ComputeCenter(fc.Features[:2]), scene.Center)
	assert.Equal(t, maptile.At(scene.Center.Point(), 8), scene.Tile)

	require.Len(t, scene.Features, 2)
	for _, sf := range scene.Features {
		assert.Equal(t, KindMarker, sf.Kind)
		assert.False(t, sf.Emphasis)
		assert.Equal(t, DefaultPalette().Normal, sf.Style)
	}
}

func TestBuildScenePolygonHint(t *testing.T) {
	fc := loadFixture(t, "swiss.geojson")

	scene, err := BuildScene(fc, SceneRequest{Filter: FilterSpec{Attribute: "type", Pattern: "region"}})
	require.NoError(t, err)
	require.Len(t, scene.Features, 1)

	sf := scene.Features[0]
	assert.Equal(t, KindShape, sf.Kind)
	require.NotNil(t, sf.HintMarker)
	assert.Equal(t, LatLon{Lat: 47.35, Lon: 8.55}, *sf.HintMarker)
	assert.InDelta(t, 0.04, sf.Area, 1e-9)
}

func TestBuildSceneFocus(t *testing.T) {
	fc := loadFixture(t, "swiss.geojson")
	palette := DefaultPalette()
	palette.Emphasis.Color = "#00ff00"

	scene, err := BuildScene(fc, SceneRequest{
		Focus:   []string{"Baloise Basel"},
		Palette: &palette,
	})
	require.NoError(t, err)

	assert.True(t, scene.Focused)
	assert.Equal(t, 1, scene.MatchCount)
	assert.Equal(t, LatLon{Lat: 47.5596, Lon: 7.5886}, scene.Center)
	assert.Equal(t, 16, scene.Zoom)
	require.Len(t, scene.Features, 1)
	assert.True(t, scene.Features[0].Emphasis)
	assert.Equal(t, "#00ff00", scene.Features[0].Style.Color)
}

func TestBuildSceneFocusFallsBackToFullCollection(t *testing.T) {
	fc := loadFixture(t, "swiss.geojson")

	scene, err := BuildScene(fc, SceneRequest{
		Filter: FilterSpec{Attribute: "type", Pattern: "insurance"},
		Focus:  []string{"Nowhere"},
	})
	require.NoError(t, err)

	assert.False(t, scene.Focused)
	assert.Equal(t, 3, scene.MatchCount)
	assert.Equal(t, ComputeCenter(fc.Features), scene.Center)
	assert.Equal(t, ComputeZoom(fc.Features), scene.Zoom)
}

func TestBuildSceneSkipsUnsupportedGeometry(t *testing.T) {
	fc := loadFixture(t, "companies.geojson")

	scene, err := BuildScene(fc, SceneRequest{})
	require.NoError(t, err)
	assert.Equal(t, 3, scene.MatchCount)
	assert.Len(t, scene.Features, 2)
}

func TestBuildSceneEmptySelection(t *testing.T) {
	fc := loadFixture(t, "swiss.geojson")

	scene, err := BuildScene(fc, SceneRequest{Filter: FilterSpec{Attribute: "name", Pattern: "zzz"}})
	require.NoError(t, err)
	assert.Equal(t, FallbackCenter, scene.Center)
	assert.Equal(t, DefaultZoom, scene.Zoom)
	assert.Empty(t, scene.Features)
}

func TestBuildSceneInvalidPattern(t *testing.T) {
	fc := loadFixture(t, "swiss.geojson")

	_, err := BuildScene(fc, SceneRequest{Filter: FilterSpec{Attribute: "name", Pattern: "("}})
	assert.ErrorIs(t, err, ErrInvalidPattern)
}

func TestMapSceneJSON(t *testing.T) {
	fc := loadFixture(t, "swiss.geojson")
	scene, err := BuildScene(fc, SceneRequest{Focus: []string{"Helvetia Zurich"}})
	require.NoError(t, err)

	b, err := json.Marshal(scene)
	require.NoError(t, err)

	var decoded struct {
		Center   LatLon `json:"center"`
		Zoom     int    `json:"zoom"`
		Features []struct {
			Kind    string `json:"kind"`
			Feature struct {
				Properties map[string]any `json:"properties"`
			} `json:"feature"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, 16, decoded.Zoom)
	require.Len(t, decoded.Features, 1)
	assert.Equal(t, "marker", decoded.Features[0].Kind)
	assert.Equal(t, "Helvetia Zurich", decoded.Features[0].Feature.Properties["name"])
}

func TestBuildSceneMultiPolygon(t *testing.T) {
	fc := loadFixture(t, "lakes.geojson")

	scene, err := BuildScene(fc, SceneRequest{})
	require.NoError(t, err)
	require.Len(t, scene.Features, 1)
	assert.Equal(t, 8, scene.Zoom)
	assert.Equal(t, ComputeCenter(fc.Features), scene.Center)

	sf := scene.Features[0]
	assert.Equal(t, KindShape, sf.Kind)
	require.NotNil(t, sf.HintMarker)
	assert.Equal(t, LatLon{Lat: 47.1, Lon: 8.6}, *sf.HintMarker)
	assert.InDelta(t, 0.08, sf.Area, 1e-9)
}
