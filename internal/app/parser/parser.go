package parser

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/francois-poidevin/sondetracker/internal/app"
	"github.com/sirupsen/logrus"
)

// TimeLayout is the timestamp layout of a log line. It has no zone.
const TimeLayout = "2006-01-02 15:04:05"

var lineRe = regexp.MustCompile(`(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}) \| Lat: ([\d.-]+), Lon: ([\d.-]+), Alt: ([\d.-]+) m, vH: ([\d.-]+) km/h, vV: ([\d.-]+) m/s, Dir: ([\d.-]+)`)

// Parser turns raw log text into samples.
type Parser struct {
	Log *logrus.Logger
	// Location the naive timestamps are read in.
	Location *time.Location
	// SortByTime re-sorts samples chronologically instead of trusting file order.
	SortByTime bool
}

func New(log *logrus.Logger) *Parser {
	return &Parser{Log: log, Location: time.Local}
}

// Parse returns the samples of every matching line of content, in file
// order. Lines that do not match are skipped; no match at all yields an
// empty result.
func (p *Parser) Parse(ctx context.Context, content, source string) []app.Sample {
	loc := p.Location
	if loc == nil {
		loc = time.Local
	}

	var samples []app.Sample
	skipped := 0
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		sample, ok := parseLine(line, loc)
		if !ok {
			skipped++
			continue
		}
		samples = append(samples, sample)
	}

	if p.SortByTime {
		sort.SliceStable(samples, func(i, j int) bool {
			return samples[i].Timestamp.Before(samples[j].Timestamp)
		})
	}

	if p.Log != nil && skipped > 0 {
		p.Log.WithContext(ctx).WithFields(logrus.Fields{
			"file":    source,
			"samples": len(samples),
			"skipped": skipped,
		}).Debug("Skipped malformed lines")
	}

	return samples
}

func parseLine(line string, loc *time.Location) (app.Sample, bool) {
	m := lineRe.FindStringSubmatch(line)
	if m == nil {
		return app.Sample{}, false
	}

	ts, err := time.ParseInLocation(TimeLayout, m[1], loc)
	if err != nil {
		return app.Sample{}, false
	}

	var values [6]float64
	for i := range values {
		v, err := strconv.ParseFloat(m[i+2], 64)
		if err != nil {
			return app.Sample{}, false
		}
		values[i] = v
	}

	return app.Sample{
		Timestamp:          ts,
		Lat:                values[0],
		Lon:                values[1],
		Altitude:           values[2],
		HorizontalVelocity: values[3],
		VerticalVelocity:   values[4],
		Direction:          values[5],
	}, true
}
