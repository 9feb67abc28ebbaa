package marine

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/cache"
)

func nwsServer(t *testing.T, alertsStatus int, hits *int32) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/points/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, "application/geo+json", r.Header.Get("Accept"))
		fmt.Fprintf(w, `{"properties":{"gridId":"BRO","gridX":70,"gridY":20,
			"forecast":"%[1]s/gridpoints/BRO/70,20/forecast",
			"forecastHourly":"%[1]s/gridpoints/BRO/70,20/forecast/hourly",
			"relativeLocation":{"properties":{"city":"South Padre Island","state":""}}}}`, srv.URL)
	})
	mux.HandleFunc("/gridpoints/BRO/70,20/forecast", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"properties":{"periods":[{"number":1,"name":"Tonight","temperature":78}]}}`)
	})
	mux.HandleFunc("/gridpoints/BRO/70,20/forecast/hourly", func(w http.ResponseWriter, r *http.Request) {
		periods := make([]Period, 60)
		for i := range periods {
			periods[i] = Period{Number: i + 1}
		}
		var body forecastResponse
		body.Properties.Periods = periods
		json.NewEncoder(w).Encode(body)
	})
	mux.HandleFunc("/alerts/active", func(w http.ResponseWriter, r *http.Request) {
		if alertsStatus != http.StatusOK {
			w.WriteHeader(alertsStatus)
			return
		}
		fmt.Fprint(w, `{"features":[
			{"properties":{"id":"a1","event":"Small Craft Advisory","severity":"Minor"}},
			{"properties":{"id":"a2","event":"Heat Advisory"}},
			{"properties":{"id":"a3","event":"Rip Current Statement"}}]}`)
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestWeather(t *testing.T) {
	var hits int32
	srv := nwsServer(t, http.StatusOK, &hits)
	c := NewClient(cache.NewMemory(), zap.NewNop(), Endpoints{NWS: srv.URL})

	data, cached, err := c.Weather(context.Background(), DefaultLat, DefaultLon)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Len(t, data.Hourly, 48)
	assert.Equal(t, "BRO", data.GridID)
	assert.Equal(t, "South Padre Island", data.City)
	assert.Equal(t, "TX", data.State)
	require.Len(t, data.Alerts, 2)
	assert.Equal(t, "a1", data.Alerts[0].ID)
	assert.Equal(t, "Unknown", data.Alerts[1].Severity)

	_, cached, err = c.Weather(context.Background(), DefaultLat, DefaultLon)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits), "points lookup is cached")
}

func TestWeather_AlertFailureFallsBack(t *testing.T) {
	var hits int32
	srv := nwsServer(t, http.StatusBadGateway, &hits)
	c := NewClient(cache.NewMemory(), zap.NewNop(), Endpoints{NWS: srv.URL})

	data, _, err := c.Weather(context.Background(), "26.0", "-97.1")
	require.NoError(t, err)
	assert.Empty(t, data.Alerts)
}

func TestWeather_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	c := NewClient(cache.NewMemory(), zap.NewNop(), Endpoints{NWS: srv.URL})

	_, _, err := c.Weather(context.Background(), DefaultLat, DefaultLon)
	require.Error(t, err)
	assert.Equal(t, "NOAA API error: 503 Service Unavailable", err.Error())
}

func TestFilterMarineAlerts(t *testing.T) {
	in := []Alert{{Event: "Gale Warning"}, {Event: "Freeze Watch"}, {Event: "Tropical Storm Warning"}, {Event: "Coastal Flood Advisory"}}
	out := FilterMarineAlerts(in)
	require.Len(t, out, 3)
	assert.Equal(t, "Coastal Flood Advisory", out[2].Event)
}

func TestExtremesAlternate(t *testing.T) {
	vals := []string{"0.1", "0.5", "0.9", "0.6", "0.8", "0.4", "0.2", "0.3", "1.0", "0.7"}
	preds := make([]Prediction, len(vals))
	for i, v := range vals {
		preds[i] = Prediction{Time: fmt.Sprintf("2024-05-0%d 0%d:00", 1+i/6, i%6), Value: v}
	}

	ex := Extremes(preds)
	require.NotEmpty(t, ex)
	for i := 1; i < len(ex); i++ {
		assert.NotEqual(t, ex[i-1].Type, ex[i].Type)
	}
	assert.Equal(t, "high", ex[0].Type)
	assert.InDelta(t, 0.9, ex[0].Height, 1e-9)

	days := GroupByDay(ex)
	require.Len(t, days, 2)
	assert.Equal(t, "2024-05-01", days[0].Date)
	require.NotNil(t, days[0].High)
	assert.InDelta(t, 0.9, days[0].High.Height, 1e-9)
}

func TestTides(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "8779748", r.URL.Query().Get("station"))
		assert.Equal(t, "predictions", r.URL.Query().Get("product"))
		fmt.Fprint(w, `{"predictions":[
			{"t":"2024-05-01 00:00","v":"0.2"},{"t":"2024-05-01 06:00","v":"1.1"},
			{"t":"2024-05-01 12:00","v":"0.1"},{"t":"2024-05-01 18:00","v":"0.9"},
			{"t":"2024-05-02 00:00","v":"0.3"}]}`)
	}))
	defer srv.Close()

	c := NewClient(cache.NewMemory(), zap.NewNop(), Endpoints{Tides: srv.URL})
	c.now = func() time.Time { return time.Date(2024, 5, 1, 12, 10, 0, 0, c.tideZone) }

	r, err := c.Tides(context.Background(), DefaultStation, 2)
	require.NoError(t, err)
	assert.InDelta(t, 0.1, r.Current, 1e-9)
	require.Len(t, r.Today, 3)
	assert.Equal(t, []string{"high", "low", "high"}, []string{r.Today[0].Type, r.Today[1].Type, r.Today[2].Type})
}

func TestConditions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/marine") {
			fmt.Fprint(w, `{"hourly":{"time":["t0"],"wave_height":[1.2]}}`)
			return
		}
		assert.Equal(t, "fahrenheit", r.URL.Query().Get("temperature_unit"))
		fmt.Fprint(w, `{"hourly":{"time":["t0"],"wind_speed_10m":[9]},"current_weather":{"temperature":81,"windspeed":11,"winddirection":120,"weathercode":2}}`)
	}))
	defer srv.Close()

	c := NewClient(cache.NewMemory(), zap.NewNop(), Endpoints{Marine: srv.URL + "/marine", Weather: srv.URL + "/forecast"})
	got, cached, err := c.Conditions(context.Background(), DefaultLat, DefaultLon)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, []float64{1.2}, got.Marine.WaveHeight)
	assert.Equal(t, 81.0, got.Weather.CurrentWeather.Temperature)
	assert.Len(t, got.Solunar.Periods, 4)
}

func TestCalculateSolunar(t *testing.T) {
	s := CalculateSolunar(knownNewMoon.Add(time.Hour))
	assert.Equal(t, "New Moon", s.MoonPhase)
	assert.Equal(t, "Excellent", s.Rating)
	assert.Equal(t, 0, s.MoonIllumination)

	full := CalculateSolunar(knownNewMoon.Add(15 * 24 * time.Hour))
	assert.Equal(t, "Full Moon", full.MoonPhase)
	assert.Equal(t, 100, full.MoonIllumination)
}

func TestParseCoordinates(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon string
		wantLat  string
		wantLon  string
		wantErr  bool
	}{
		{"defaults", "", "", DefaultLat, DefaultLon, false},
		{"rounded to four decimals", "26.123456", "-97.10004", "26.1235", "-97.1", false},
		{"latitude out of range", "90.5", "0", "", "", true},
		{"longitude out of range", "0", "-181", "", "", true},
		{"not a number", "26,1", "-97", "", "", true},
		{"path injection", "26/../alerts", "-97", "", "", true},
		{"nan", "NaN", "-97", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lat, lon, err := ParseCoordinates(tt.lat, tt.lon)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCoordinates)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLat, lat)
			assert.Equal(t, tt.wantLon, lon)
		})
	}
}

func TestParseStation(t *testing.T) {
	s, err := ParseStation("")
	require.NoError(t, err)
	assert.Equal(t, DefaultStation, s)

	s, err = ParseStation("8775870")
	require.NoError(t, err)
	assert.Equal(t, "8775870", s)

	for _, bad := range []string{"87a5870", "8775870&product=x", "12345678901"} {
		_, err = ParseStation(bad)
		assert.ErrorIs(t, err, ErrInvalidStation, bad)
	}
}
