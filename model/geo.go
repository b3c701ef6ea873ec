package model

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"

	"github.com/teranos/entigraph/errors"
)

// GeoValue is either a point or a shape made of one or more polygons with
// holes. Coordinates follow orb: X is longitude, Y is latitude.
type GeoValue struct {
	Geometry orb.Geometry
}

// NewPoint returns a point GeoValue.
func NewPoint(lat, lon float64) GeoValue {
	return GeoValue{Geometry: orb.Point{lon, lat}}
}

// NewShape returns a shape GeoValue. A single polygon stays a Polygon,
// several become a MultiPolygon. Each polygon's first ring is the outer
// boundary, the remaining rings are holes.
func NewShape(polygons ...orb.Polygon) GeoValue {
	if len(polygons) == 1 {
		return GeoValue{Geometry: polygons[0]}
	}
	return GeoValue{Geometry: orb.MultiPolygon(polygons)}
}

// ParseGeo parses WKT. Only points, polygons and multipolygons are accepted.
func ParseGeo(s string) (GeoValue, error) {
	g, err := wkt.Unmarshal(s)
	if err != nil {
		return GeoValue{}, errors.Wrapf(err, "invalid WKT %q", s)
	}
	switch g.(type) {
	case orb.Point, orb.Polygon, orb.MultiPolygon:
		return GeoValue{Geometry: g}, nil
	default:
		return GeoValue{}, errors.Newf("unsupported geometry %s", g.GeoJSONType())
	}
}

// IsPoint reports whether the value is a single point.
func (v GeoValue) IsPoint() bool {
	_, ok := v.Geometry.(orb.Point)
	return ok
}

func (v GeoValue) Kind() Kind { return KindGeo }

func (v GeoValue) Lexical() string {
	if v.Geometry == nil {
		return ""
	}
	return wkt.MarshalString(v.Geometry)
}

func (v GeoValue) String() string { return v.Lexical() }

func (v GeoValue) Equal(other Value) bool {
	o, ok := other.(GeoValue)
	if !ok || v.Geometry == nil || o.Geometry == nil {
		return ok && v.Geometry == nil && o.Geometry == nil
	}
	return orb.Equal(v.Geometry, o.Geometry)
}
