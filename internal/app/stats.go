package app

//Summary - aggregate statistics over a set of flights
type Summary struct {
	TotalFlights int     `json:"totalFlights"`
	MaxAltitude  float64 `json:"maxAltitude"`
	MaxSpeed     float64 `json:"maxSpeed"`
	AvgDuration  float64 `json:"avgDuration"`
}

// Summarize aggregates flights; every field is zero for an empty input.
func Summarize(flights []*Flight) Summary {
	result := Summary{TotalFlights: len(flights)}
	if len(flights) == 0 {
		return result
	}

	total := 0.0
	for i, f := range flights {
		if i == 0 || f.MaxAltitude > result.MaxAltitude {
			result.MaxAltitude = f.MaxAltitude
		}
		if i == 0 || f.MaxSpeed > result.MaxSpeed {
			result.MaxSpeed = f.MaxSpeed
		}
		total += f.Duration
	}
	result.AvgDuration = total / float64(len(flights))

	return result
}
