package geo

import (
	"encoding/json"

	"github.com/paulmach/orb"
)

// Node is one level of a nested coordinate structure: either a Coordinate
// leaf or a NestedList of further nodes.
type Node interface {
	node()
}

// Coordinate is a leaf pair in GeoJSON order.
type Coordinate struct {
	Lon float64
	Lat float64
}

// NestedList is an ordered list of sub-nodes (a ring, a polygon, ...).
type NestedList []Node

func (Coordinate) node() {}
func (NestedList) node() {}

// ExtractCoordinates walks node depth first and appends every leaf's
// longitude and latitude to lons and lats, in traversal order.
func ExtractCoordinates(n Node, lons, lats []float64) ([]float64, []float64) {
	switch n := n.(type) {
	case Coordinate:
		lons = append(lons, n.Lon)
		lats = append(lats, n.Lat)
	case NestedList:
		for _, child := range n {
			lons, lats = ExtractCoordinates(child, lons, lats)
		}
	}
	return lons, lats
}

// NodeFromGeometry converts the orb shapes used by features into nodes.
func NodeFromGeometry(g orb.Geometry) Node {
	switch g := g.(type) {
	case orb.Point:
		return Coordinate{Lon: g.Lon(), Lat: g.Lat()}
	case orb.Ring:
		list := make(NestedList, len(g))
		for i, p := range g {
			list[i] = Coordinate{Lon: p.Lon(), Lat: p.Lat()}
		}
		return list
	case orb.Polygon:
		list := make(NestedList, len(g))
		for i, r := range g {
			list[i] = NodeFromGeometry(r)
		}
		return list
	case orb.MultiPolygon:
		list := make(NestedList, len(g))
		for i, p := range g {
			list[i] = NodeFromGeometry(p)
		}
		return list
	}
	return nil
}

// NodeFromJSON converts a decoded JSON coordinate value. An array whose first
// two elements are numbers is a coordinate (extra ordinates are ignored);
// any other array is a nested list; anything else yields nil.
func NodeFromJSON(v any) Node {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	if len(arr) >= 2 {
		lon, okLon := number(arr[0])
		lat, okLat := number(arr[1])
		if okLon && okLat {
			return Coordinate{Lon: lon, Lat: lat}
		}
	}
	list := make(NestedList, 0, len(arr))
	for _, child := range arr {
		if n := NodeFromJSON(child); n != nil {
			list = append(list, n)
		}
	}
	return list
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
