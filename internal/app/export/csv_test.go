package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/francois-poidevin/sondetracker/internal/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "Sonde ID,Timestamp,Latitude,Longitude,Altitude (m),Horizontal Speed (km/h),Vertical Speed (m/s),Direction (°)"

func TestWriteCSV(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 2, 0, 0, 0, time.FixedZone("EET", 2*60*60))
	flights := []*app.Flight{
		{Name: "sonde_A", Samples: []app.Sample{
			{Timestamp: t0, Lat: 44, Lon: 26, Altitude: 100, HorizontalVelocity: 10, VerticalVelocity: 1, Direction: 90},
			{Timestamp: t0.Add(time.Minute), Lat: 44.5, Lon: 26.5, Altitude: 200, HorizontalVelocity: 12, VerticalVelocity: -1, Direction: 180},
		}},
		{Name: "sonde_B", Samples: []app.Sample{
			{Timestamp: t0, Lat: 1, Lon: 2, Altitude: 3, HorizontalVelocity: 4, VerticalVelocity: 5, Direction: 6},
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, flights))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, header, joinRecord(records[0]))
	assert.Equal(t, []string{"sonde_A", "2025-01-01T00:00:00.000Z", "44", "26", "100", "10", "1", "90"}, records[1])
	assert.Equal(t, "sonde_A", records[2][0])
	assert.Equal(t, "2025-01-01T00:01:00.000Z", records[2][1])
	assert.Equal(t, "-1", records[2][6])
	assert.Equal(t, "sonde_B", records[3][0])
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, header+"\n", buf.String())
}

func TestRows(t *testing.T) {
	assert.Empty(t, Rows([]*app.Flight{{Name: "empty"}}))
}

func joinRecord(r []string) string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(r)
	w.Flush()
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}
