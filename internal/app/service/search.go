package service

import (
	"github.com/francois-poidevin/sondetracker/internal/app"
	"github.com/francois-poidevin/sondetracker/internal/app/tools"
)

// Search keeps the flights with at least one sample inside bbox.
func Search(flights []*app.Flight, bbox tools.Bbox) []*app.Flight {
	result := make([]*app.Flight, 0)
	for _, f := range flights {
		if !f.Bounds().Intersects(bbox) {
			continue
		}
		for _, s := range f.Samples {
			if bbox.Contains(s.Lat, s.Lon) {
				result = append(result, f)
				break
			}
		}
	}
	return result
}

// Bounds covers every sample of flights; empty when there is none.
func Bounds(flights []*app.Flight) tools.Bbox {
	b := tools.EmptyBbox()
	for _, f := range flights {
		for _, s := range f.Samples {
			b = b.Extend(s.Lat, s.Lon)
		}
	}
	return b
}
