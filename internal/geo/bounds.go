package geo

import (
	"github.com/paulmach/orb"
)

// FallbackCenter is used when no feature has a usable coordinate.
var FallbackCenter = LatLon{Lat: 51.1657, Lon: 10.4515}

// LatLon is a map position in renderer order.
type LatLon struct {
	Lat float64 `json:"lat" doc:"Latitude"`
	Lon float64 `json:"lon" doc:"Longitude"`
}

// Point returns the position as an orb point (lon, lat).
func (ll LatLon) Point() orb.Point {
	return orb.Point{ll.Lon, ll.Lat}
}

// appendSamples adds the coordinates a feature contributes to centering and
// zoom. Points add their coordinate; polygons add every vertex plus the
// declared center hint, if any; other shapes add nothing.
func appendSamples(f *Feature, lons, lats []float64) ([]float64, []float64) {
	switch g := f.Geometry.(type) {
	case *Point:
		lons = append(lons, g.Coordinate.Lon())
		lats = append(lats, g.Coordinate.Lat())
	case *Polygon:
		lons, lats = ExtractCoordinates(NodeFromGeometry(g.Rings), lons, lats)
		lons, lats = appendHint(f, lons, lats)
	case *MultiPolygon:
		lons, lats = ExtractCoordinates(NodeFromGeometry(g.Polygons), lons, lats)
		lons, lats = appendHint(f, lons, lats)
	case *OtherGeometry, nil:
	}
	return lons, lats
}

func appendHint(f *Feature, lons, lats []float64) ([]float64, []float64) {
	if hint, ok := f.CenterHint(); ok {
		lons = append(lons, hint.Lon())
		lats = append(lats, hint.Lat())
	}
	return lons, lats
}

func isPolygonal(f *Feature) bool {
	switch f.Geometry.(type) {
	case *Polygon, *MultiPolygon:
		return true
	}
	return false
}

// ComputeCenter returns the mean of all sampled latitudes and longitudes.
// A declared center hint adds one sample on top of the polygon's vertices.
// FallbackCenter is returned when nothing could be sampled.
func ComputeCenter(features []*Feature) LatLon {
	var lons, lats []float64
	for _, f := range features {
		lons, lats = appendSamples(f, lons, lats)
	}
	if len(lats) == 0 {
		return FallbackCenter
	}
	return LatLon{Lat: mean(lats), Lon: mean(lons)}
}

// ComputeBound returns the bounding box of all sampled coordinates, or a
// zero-size box at FallbackCenter.
func ComputeBound(features []*Feature) orb.Bound {
	var lons, lats []float64
	for _, f := range features {
		lons, lats = appendSamples(f, lons, lats)
	}
	if len(lats) == 0 {
		return FallbackCenter.Point().Bound()
	}
	mp := make(orb.MultiPoint, len(lats))
	for i := range lats {
		mp[i] = orb.Point{lons[i], lats[i]}
	}
	return mp.Bound()
}

func mean(vs []float64) float64 {
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}
