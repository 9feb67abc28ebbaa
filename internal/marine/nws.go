package marine

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/cache"
)

// Period is one NWS forecast period.
type Period struct {
	Number                     int    `json:"number"`
	Name                       string `json:"name"`
	StartTime                  string `json:"startTime"`
	EndTime                    string `json:"endTime"`
	IsDaytime                  bool   `json:"isDaytime"`
	Temperature                int    `json:"temperature"`
	TemperatureUnit            string `json:"temperatureUnit"`
	WindSpeed                  string `json:"windSpeed"`
	WindDirection              string `json:"windDirection"`
	Icon                       string `json:"icon"`
	ShortForecast              string `json:"shortForecast"`
	DetailedForecast           string `json:"detailedForecast"`
	ProbabilityOfPrecipitation *struct {
		Value *int `json:"value"`
	} `json:"probabilityOfPrecipitation,omitempty"`
}

// Alert is an active NWS alert.
type Alert struct {
	ID          string `json:"id"`
	AreaDesc    string `json:"areaDesc"`
	Severity    string `json:"severity"`
	Urgency     string `json:"urgency"`
	Event       string `json:"event"`
	Headline    string `json:"headline"`
	Description string `json:"description"`
	Instruction string `json:"instruction,omitempty"`
	Onset       string `json:"onset"`
	Expires     string `json:"expires"`
}

// WeatherData is the payload of the marine weather endpoint.
type WeatherData struct {
	Forecast []Period `json:"forecast"`
	Hourly   []Period `json:"hourly"`
	GridID   string   `json:"gridId"`
	GridX    int      `json:"gridX"`
	GridY    int      `json:"gridY"`
	City     string   `json:"city"`
	State    string   `json:"state"`
	Alerts   []Alert  `json:"alerts"`
}

type pointsResponse struct {
	Properties struct {
		GridID           string `json:"gridId"`
		GridX            int    `json:"gridX"`
		GridY            int    `json:"gridY"`
		Forecast         string `json:"forecast"`
		ForecastHourly   string `json:"forecastHourly"`
		RelativeLocation struct {
			Properties struct {
				City  string `json:"city"`
				State string `json:"state"`
			} `json:"properties"`
		} `json:"relativeLocation"`
	} `json:"properties"`
}

type forecastResponse struct {
	Properties struct {
		Periods []Period `json:"periods"`
	} `json:"properties"`
}

type alertsResponse struct {
	Features []struct {
		Properties Alert `json:"properties"`
	} `json:"features"`
}

var marineKeywords = []string{
	"marine", "coastal", "rip current", "small craft", "gale", "storm", "hurricane", "tropical",
}

// FilterMarineAlerts keeps alerts whose event mentions a marine hazard.
func FilterMarineAlerts(alerts []Alert) []Alert {
	out := make([]Alert, 0, len(alerts))
	for _, a := range alerts {
		event := strings.ToLower(a.Event)
		for _, kw := range marineKeywords {
			if strings.Contains(event, kw) {
				out = append(out, a)
				break
			}
		}
	}
	return out
}

// Weather resolves the NWS grid for a coordinate and returns its forecasts and
// marine alerts. The boolean reports whether the forecast was served from cache.
func (c *Client) Weather(ctx context.Context, lat, lon string) (*WeatherData, bool, error) {
	points, _, err := cache.Fetch(ctx, c.cache, c.log, fmt.Sprintf("nws:points:%s,%s", lat, lon), pointsTTL,
		func(ctx context.Context) (pointsResponse, error) {
			var p pointsResponse
			err := c.getJSON(ctx, fmt.Sprintf("%s/points/%s,%s", c.endpoints.NWS, lat, lon), true, &p)
			return p, err
		})
	if err != nil {
		return nil, false, err
	}
	props := points.Properties

	var (
		forecast, hourly forecastResponse
		alerts           []Alert
		cached           bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		forecast, cached, err = cache.Fetch(gctx, c.cache, c.log, "nws:forecast:"+props.Forecast, forecastTTL,
			func(ctx context.Context) (forecastResponse, error) {
				var f forecastResponse
				err := c.getJSON(ctx, props.Forecast, true, &f)
				return f, err
			})
		return err
	})
	g.Go(func() error {
		var err error
		hourly, _, err = cache.Fetch(gctx, c.cache, c.log, "nws:hourly:"+props.ForecastHourly, forecastTTL,
			func(ctx context.Context) (forecastResponse, error) {
				var f forecastResponse
				err := c.getJSON(ctx, props.ForecastHourly, true, &f)
				return f, err
			})
		return err
	})
	g.Go(func() error {
		res, _, err := cache.Fetch(gctx, c.cache, c.log, fmt.Sprintf("nws:alerts:%s,%s", lat, lon), alertsTTL,
			func(ctx context.Context) (alertsResponse, error) {
				var a alertsResponse
				err := c.getJSON(ctx, fmt.Sprintf("%s/alerts/active?point=%s,%s", c.endpoints.NWS, lat, lon), true, &a)
				return a, err
			})
		if err != nil {
			// Alerts are optional.
			c.log.Warn("NOAA alerts unavailable", zap.Error(err))
			return nil
		}
		for _, f := range res.Features {
			a := f.Properties
			if a.Severity == "" {
				a.Severity = "Unknown"
			}
			if a.Urgency == "" {
				a.Urgency = "Unknown"
			}
			alerts = append(alerts, a)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, false, err
	}

	hourlyPeriods := hourly.Properties.Periods
	if len(hourlyPeriods) > 48 {
		hourlyPeriods = hourlyPeriods[:48]
	}
	city := props.RelativeLocation.Properties.City
	if city == "" {
		city = "Unknown"
	}
	state := props.RelativeLocation.Properties.State
	if state == "" {
		state = "TX"
	}

	return &WeatherData{
		Forecast: forecast.Properties.Periods,
		Hourly:   hourlyPeriods,
		GridID:   props.GridID,
		GridX:    props.GridX,
		GridY:    props.GridY,
		City:     city,
		State:    state,
		Alerts:   FilterMarineAlerts(alerts),
	}, cached, nil
}
