package marine

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/cache"
)

const tideTimeLayout = "2006-01-02 15:04"

// Prediction is one NOAA CO-OPS water level prediction.
type Prediction struct {
	Time  string `json:"t"`
	Value string `json:"v"`
}

// TideExtreme is a local high or low water.
type TideExtreme struct {
	Time   string  `json:"time"`
	Height float64 `json:"height"`
	Type   string  `json:"type"`
}

// TidePoint is a time and height pair.
type TidePoint struct {
	Time   string  `json:"time"`
	Height float64 `json:"height"`
}

// DailyTide groups the extremes of one calendar day.
type DailyTide struct {
	Date     string        `json:"date"`
	High     *TidePoint    `json:"high"`
	Low      *TidePoint    `json:"low"`
	Extremes []TideExtreme `json:"extremes"`
}

// TideReport is the payload of the tides endpoint.
type TideReport struct {
	Station  string        `json:"station"`
	Current  float64       `json:"current"`
	Today    []TideExtreme `json:"today"`
	Forecast []DailyTide   `json:"forecast"`
}

// Extremes reduces a prediction series to alternating highs and lows.
func Extremes(preds []Prediction) []TideExtreme {
	heights := make([]float64, len(preds))
	for i, p := range preds {
		heights[i], _ = strconv.ParseFloat(p.Value, 64)
	}

	out := []TideExtreme{}
	last := ""
	for i := 1; i < len(preds)-1; i++ {
		cur, prev, next := heights[i], heights[i-1], heights[i+1]
		isMax := cur > prev && cur > next
		isMin := cur < prev && cur < next
		if !isMax && !isMin {
			continue
		}
		typ := "low"
		if isMax {
			typ = "high"
		}
		if typ == last {
			continue
		}
		out = append(out, TideExtreme{Time: preds[i].Time, Height: cur, Type: typ})
		last = typ
	}
	return out
}

// GroupByDay buckets extremes by calendar date in prediction order.
func GroupByDay(extremes []TideExtreme) []DailyTide {
	var days []DailyTide
	index := map[string]int{}
	for _, e := range extremes {
		date := e.Time
		if len(date) >= 10 {
			date = date[:10]
		}
		i, ok := index[date]
		if !ok {
			i = len(days)
			index[date] = i
			days = append(days, DailyTide{Date: date})
		}
		d := &days[i]
		d.Extremes = append(d.Extremes, e)
		if e.Type == "high" && d.High == nil {
			d.High = &TidePoint{Time: e.Time, Height: e.Height}
		}
		if e.Type == "low" && d.Low == nil {
			d.Low = &TidePoint{Time: e.Time, Height: e.Height}
		}
	}
	return days
}

type tidesResponse struct {
	Predictions []Prediction `json:"predictions"`
}

// Tides fetches predictions for a CO-OPS station and summarizes them.
func (c *Client) Tides(ctx context.Context, station string, days int) (*TideReport, error) {
	if days <= 0 || days > 31 {
		days = 10
	}
	now := c.now().In(c.tideZone)
	end := now.AddDate(0, 0, days)

	q := url.Values{}
	q.Set("begin_date", now.Format("20060102"))
	q.Set("end_date", end.Format("20060102"))
	q.Set("station", station)
	q.Set("product", "predictions")
	q.Set("datum", "MLLW")
	q.Set("time_zone", "lst")
	q.Set("units", "english")
	q.Set("format", "json")

	res, _, err := cache.Fetch(ctx, c.cache, c.log, fmt.Sprintf("tides:%s:%s:%d", station, now.Format("2006010215"), days), conditionsTTL,
		func(ctx context.Context) (tidesResponse, error) {
			var r tidesResponse
			if err := c.getJSON(ctx, c.endpoints.Tides+"?"+q.Encode(), false, &r); err != nil {
				return r, fmt.Errorf("failed to fetch tide data from NOAA: %w", err)
			}
			return r, nil
		})
	if err != nil {
		return nil, err
	}

	extremes := Extremes(res.Predictions)
	forecast := GroupByDay(extremes)
	report := &TideReport{Station: station, Today: []TideExtreme{}, Forecast: forecast}

	for _, p := range res.Predictions {
		t, err := time.ParseInLocation(tideTimeLayout, p.Time, c.tideZone)
		if err != nil {
			continue
		}
		if d := t.Sub(now); d < 30*time.Minute && d > -30*time.Minute {
			report.Current, _ = strconv.ParseFloat(p.Value, 64)
			break
		}
	}

	today := now.Format("2006-01-02")
	for _, d := range forecast {
		if d.Date == today {
			report.Today = d.Extremes
		}
	}
	if report.Forecast == nil {
		report.Forecast = []DailyTide{}
	}
	return report, nil
}
