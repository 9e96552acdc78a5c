package geo

// Bounds is a geographic bounding box in WGS84 degrees.
type Bounds struct {
	MinLat, MinLon float64
	MaxLat, MaxLon float64
}

// Center returns the midpoint of the box.
func (b Bounds) Center() (lat, lon float64) {
	return (b.MinLat + b.MaxLat) / 2, (b.MinLon + b.MaxLon) / 2
}

// BoundsOf computes the bounding box over all point features of fc.
// ok is false when the collection has no point with coordinates.
func BoundsOf(fc GeoJSONFeatureCollection) (Bounds, bool) {
	var b Bounds
	found := false

	for _, ft := range fc.Features {
		if ft.Geometry.Type != "Point" || len(ft.Geometry.Coordinates) < 2 {
			continue
		}
		lon, lat := ft.Geometry.Coordinates[0], ft.Geometry.Coordinates[1]

		if !found {
			b = Bounds{MinLat: lat, MaxLat: lat, MinLon: lon, MaxLon: lon}
			found = true
			continue
		}

		if lat < b.MinLat {
			b.MinLat = lat
		}
		if lat > b.MaxLat {
			b.MaxLat = lat
		}
		if lon < b.MinLon {
			b.MinLon = lon
		}
		if lon > b.MaxLon {
			b.MaxLon = lon
		}
	}

	return b, found
}
