package marine

import (
	"context"
	"fmt"
	"net/url"

	"golang.org/x/sync/errgroup"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/cache"
)

// Sea holds hourly wave and swell series from the Open-Meteo marine API.
type Sea struct {
	Time               []string  `json:"time"`
	WaveHeight         []float64 `json:"waveHeight"`
	WaveDirection      []float64 `json:"waveDirection"`
	WavePeriod         []float64 `json:"wavePeriod"`
	SwellWaveHeight    []float64 `json:"swellWaveHeight"`
	SwellWaveDirection []float64 `json:"swellWaveDirection"`
	SwellWavePeriod    []float64 `json:"swellWavePeriod"`
}

// CurrentWeather is the latest observation from the Open-Meteo forecast API.
type CurrentWeather struct {
	Temperature   float64 `json:"temperature"`
	WindSpeed     float64 `json:"windSpeed"`
	WindDirection float64 `json:"windDirection"`
	WeatherCode   int     `json:"weatherCode"`
}

// Weather holds hourly land/sea-surface weather series.
type Weather struct {
	Time           []string       `json:"time"`
	Temperature    []float64      `json:"temperature"`
	Humidity       []float64      `json:"humidity"`
	Precipitation  []float64      `json:"precipitation"`
	WindSpeed      []float64      `json:"windSpeed"`
	WindDirection  []float64      `json:"windDirection"`
	WindGusts      []float64      `json:"windGusts"`
	UVIndex        []float64      `json:"uvIndex"`
	CurrentWeather CurrentWeather `json:"currentWeather"`
}

// Conditions combines sea state, weather and solunar periods for one spot.
type Conditions struct {
	Marine  Sea     `json:"marine"`
	Weather Weather `json:"weather"`
	Solunar Solunar `json:"solunar"`
}

type marineResponse struct {
	Hourly struct {
		Time               []string  `json:"time"`
		WaveHeight         []float64 `json:"wave_height"`
		WaveDirection      []float64 `json:"wave_direction"`
		WavePeriod         []float64 `json:"wave_period"`
		SwellWaveHeight    []float64 `json:"swell_wave_height"`
		SwellWaveDirection []float64 `json:"swell_wave_direction"`
		SwellWavePeriod    []float64 `json:"swell_wave_period"`
	} `json:"hourly"`
}

type weatherResponse struct {
	Hourly struct {
		Time          []string  `json:"time"`
		Temperature   []float64 `json:"temperature_2m"`
		Humidity      []float64 `json:"relative_humidity_2m"`
		Precipitation []float64 `json:"precipitation"`
		WindSpeed     []float64 `json:"wind_speed_10m"`
		WindDirection []float64 `json:"wind_direction_10m"`
		WindGusts     []float64 `json:"wind_gusts_10m"`
		UVIndex       []float64 `json:"uv_index"`
	} `json:"hourly"`
	CurrentWeather *struct {
		Temperature   float64 `json:"temperature"`
		WindSpeed     float64 `json:"windspeed"`
		WindDirection float64 `json:"winddirection"`
		WeatherCode   int     `json:"weathercode"`
	} `json:"current_weather"`
}

func (c *Client) sea(ctx context.Context, lat, lon string) (Sea, error) {
	q := url.Values{}
	q.Set("latitude", lat)
	q.Set("longitude", lon)
	q.Set("hourly", "wave_height,wave_direction,wave_period,swell_wave_height,swell_wave_direction,swell_wave_period")
	q.Set("forecast_days", "2")

	var r marineResponse
	if err := c.getJSON(ctx, c.endpoints.Marine+"?"+q.Encode(), false, &r); err != nil {
		return Sea{}, fmt.Errorf("failed to fetch marine data from Open-Meteo: %w", err)
	}
	h := r.Hourly
	return Sea{
		Time:               h.Time,
		WaveHeight:         h.WaveHeight,
		WaveDirection:      h.WaveDirection,
		WavePeriod:         h.WavePeriod,
		SwellWaveHeight:    h.SwellWaveHeight,
		SwellWaveDirection: h.SwellWaveDirection,
		SwellWavePeriod:    h.SwellWavePeriod,
	}, nil
}

func (c *Client) weather(ctx context.Context, lat, lon string) (Weather, error) {
	q := url.Values{}
	q.Set("latitude", lat)
	q.Set("longitude", lon)
	q.Set("hourly", "temperature_2m,relative_humidity_2m,precipitation,wind_speed_10m,wind_direction_10m,wind_gusts_10m,uv_index")
	q.Set("current_weather", "true")
	q.Set("timezone", "America/Chicago")
	q.Set("temperature_unit", "fahrenheit")
	q.Set("wind_speed_unit", "mph")

	var r weatherResponse
	if err := c.getJSON(ctx, c.endpoints.Weather+"?"+q.Encode(), false, &r); err != nil {
		return Weather{}, fmt.Errorf("failed to fetch weather data from Open-Meteo: %w", err)
	}
	h := r.Hourly
	w := Weather{
		Time:          h.Time,
		Temperature:   h.Temperature,
		Humidity:      h.Humidity,
		Precipitation: h.Precipitation,
		WindSpeed:     h.WindSpeed,
		WindDirection: h.WindDirection,
		WindGusts:     h.WindGusts,
		UVIndex:       h.UVIndex,
		CurrentWeather: CurrentWeather{
			Temperature:   72,
			WindSpeed:     8,
			WindDirection: 180,
		},
	}
	if cw := r.CurrentWeather; cw != nil {
		w.CurrentWeather = CurrentWeather{
			Temperature:   cw.Temperature,
			WindSpeed:     cw.WindSpeed,
			WindDirection: cw.WindDirection,
			WeatherCode:   cw.WeatherCode,
		}
	}
	return w, nil
}

// Conditions returns sea state and weather for a coordinate, fetched in parallel,
// plus the current solunar outlook.
func (c *Client) Conditions(ctx context.Context, lat, lon string) (*Conditions, bool, error) {
	var (
		out          Conditions
		seaCached    bool
		weatherCache bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		out.Marine, seaCached, err = cache.Fetch(gctx, c.cache, c.log, fmt.Sprintf("meteo:marine:%s,%s", lat, lon), conditionsTTL,
			func(ctx context.Context) (Sea, error) { return c.sea(ctx, lat, lon) })
		return err
	})
	g.Go(func() error {
		var err error
		out.Weather, weatherCache, err = cache.Fetch(gctx, c.cache, c.log, fmt.Sprintf("meteo:weather:%s,%s", lat, lon), conditionsTTL,
			func(ctx context.Context) (Weather, error) { return c.weather(ctx, lat, lon) })
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, false, err
	}
	out.Solunar = CalculateSolunar(c.now())
	return &out, seaCached && weatherCache, nil
}
