package tools

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0

// Haversine returns the great-circle distance in km between two coordinates
// given in decimal degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180.0
	dLon := (lon2 - lon1) * math.Pi / 180.0
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180.0)*math.Cos(lat2*math.Pi/180.0)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// Bbox - a bounding box structure
type Bbox struct {
	LatSW float64 `json:"latSW"`
	LonSW float64 `json:"lonSW"`
	LatNE float64 `json:"latNE"`
	LonNE float64 `json:"lonNE"`
}

// EmptyBbox returns a box that contains nothing and grows with Extend.
func EmptyBbox() Bbox {
	return Bbox{
		LatSW: math.Inf(1),
		LonSW: math.Inf(1),
		LatNE: math.Inf(-1),
		LonNE: math.Inf(-1),
	}
}

// IsEmpty reports whether no point was ever added to the box.
func (b Bbox) IsEmpty() bool {
	return b.LatSW > b.LatNE || b.LonSW > b.LonNE
}

// Extend grows the box to include the given point.
func (b Bbox) Extend(lat, lon float64) Bbox {
	b.LatSW = math.Min(b.LatSW, lat)
	b.LonSW = math.Min(b.LonSW, lon)
	b.LatNE = math.Max(b.LatNE, lat)
	b.LonNE = math.Max(b.LonNE, lon)
	return b
}

// Contains reports whether the point lies inside the box, edges included.
func (b Bbox) Contains(lat, lon float64) bool {
	return lat >= b.LatSW && lat <= b.LatNE && lon >= b.LonSW && lon <= b.LonNE
}

// Intersects reports whether two boxes overlap.
func (b Bbox) Intersects(o Bbox) bool {
	if b.IsEmpty() || o.IsEmpty() {
		return false
	}
	return b.LatSW <= o.LatNE && o.LatSW <= b.LatNE && b.LonSW <= o.LonNE && o.LonSW <= b.LonNE
}

// GetBbox parses a 'latSW,lonSW^latNE,lonNE' box.
func GetBbox(data string) (Bbox, error) {
	sWnE := strings.Split(data, "^")
	result := Bbox{}
	if len(sWnE) != 2 {
		return result, errors.New("Bounding Box malformed - need ^ for separating SW and NE coordinate")
	}

	for idx, latlonRec := range sWnE {
		latlon := strings.Split(latlonRec, ",")
		if len(latlon) != 2 {
			return result, errors.New("Bounding Box malformed - need , for separating lat and lon coordinate")
		}
		lat, errLat := strconv.ParseFloat(strings.TrimSpace(latlon[0]), 64)
		if errLat != nil {
			return result, errLat
		}
		lon, errLon := strconv.ParseFloat(strings.TrimSpace(latlon[1]), 64)
		if errLon != nil {
			return result, errLon
		}
		if idx == 0 {
			result.LatSW = lat
			result.LonSW = lon
		} else {
			result.LatNE = lat
			result.LonNE = lon
		}
	}
	if result.IsEmpty() {
		return result, errors.New("Bounding Box malformed - SW corner must be below and left of NE corner")
	}
	return result, nil
}

// BboxToWKT renders the box as a closed WKT polygon.
func BboxToWKT(bbox Bbox) string {
	sw := fmt.Sprintf("%f %f", bbox.LonSW, bbox.LatSW)
	nw := fmt.Sprintf("%f %f", bbox.LonSW, bbox.LatNE)
	ne := fmt.Sprintf("%f %f", bbox.LonNE, bbox.LatNE)
	se := fmt.Sprintf("%f %f", bbox.LonNE, bbox.LatSW)
	result := fmt.Sprintf("POLYGON((%s, %s, %s, %s, %s))", sw, nw, ne, se, sw)
	return result
}

// PointToWKT renders a coordinate as a WKT point (lon lat order).
func PointToWKT(lat, lon float64) string {
	return "POINT(" + fmt.Sprintf("%f", lon) + " " + fmt.Sprintf("%f", lat) + ")"
}
