package geo

// DefaultZoom is returned when there is nothing to zoom to.
const DefaultZoom = 10

// largePolygonRange is the lat/lon span, in degrees, above which a polygon
// scan marks the selection as containing large shapes.
const largePolygonRange = 0.5

// ComputeZoom picks a web-map zoom level for features. It zooms in tight on
// compact clusters and out for large polygons or many scattered features.
// The thresholds are empirical and kept as-is.
func ComputeZoom(features []*Feature) int {
	if len(features) == 0 {
		return DefaultZoom
	}

	var (
		lons, lats    []float64
		r             span
		hasLargeShape bool
	)
	for _, f := range features {
		start := len(lats)
		lons, lats = appendSamples(f, lons, lats)
		for i := start; i < len(lats); i++ {
			r.add(lats[i], lons[i])
		}
		if isPolygonal(f) && (r.latRange() > largePolygonRange || r.lonRange() > largePolygonRange) {
			hasLargeShape = true
		}
	}
	if len(lats) == 0 {
		return DefaultZoom
	}

	maxRange := max(r.latRange(), r.lonRange())
	count := len(features)

	if hasLargeShape {
		return largePolygonZoom(count, maxRange)
	}
	return standardZoom(count, maxRange)
}

func largePolygonZoom(count int, maxRange float64) int {
	if count > 1 {
		return max(4, 7-count/2)
	}
	switch {
	case maxRange > 5.0:
		return 5
	case maxRange > 2.0:
		return 7
	case maxRange > 1.0:
		return 8
	}
	return 10
}

func standardZoom(count int, maxRange float64) int {
	switch {
	case count == 1:
		switch {
		case maxRange < 0.001:
			return 16
		case maxRange < 0.01:
			return 14
		case maxRange < 0.1:
			return 12
		}
		return 10
	case count <= 3:
		switch {
		case maxRange < 0.01:
			return 14
		case maxRange < 0.1:
			return 12
		case maxRange < 0.5:
			return 10
		}
		return 8
	case count <= 10:
		switch {
		case maxRange < 0.1:
			return 11
		case maxRange < 1.0:
			return 9
		}
		return 7
	case count <= 50:
		switch {
		case maxRange < 0.5:
			return 9
		case maxRange < 2.0:
			return 7
		}
		return 5
	}
	return max(4, 8-count/20)
}

// span tracks the running min/max of sampled coordinates.
type span struct {
	n              int
	minLat, maxLat float64
	minLon, maxLon float64
}

func (s *span) add(lat, lon float64) {
	if s.n == 0 {
		s.minLat, s.maxLat, s.minLon, s.maxLon = lat, lat, lon, lon
	} else {
		s.minLat, s.maxLat = min(s.minLat, lat), max(s.maxLat, lat)
		s.minLon, s.maxLon = min(s.minLon, lon), max(s.maxLon, lon)
	}
	s.n++
}

func (s *span) latRange() float64 {
	if s.n < 2 {
		return 0
	}
	return s.maxLat - s.minLat
}

func (s *span) lonRange() float64 {
	if s.n < 2 {
		return 0
	}
	return s.maxLon - s.minLon
}
