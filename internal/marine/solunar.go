package marine

import (
	"fmt"
	"math"
	"time"
)

const lunarCycle = 29.53059

var knownNewMoon = time.Date(2000, 1, 6, 18, 14, 0, 0, time.UTC)

var moonPhases = []string{
	"New Moon", "Waxing Crescent", "First Quarter", "Waxing Gibbous",
	"Full Moon", "Waning Gibbous", "Last Quarter", "Waning Crescent",
}

// SolunarPeriod is a forecast window of fish feeding activity.
type SolunarPeriod struct {
	Type        string `json:"type"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Activity    int    `json:"activity"`
	Description string `json:"description"`
}

// Solunar is the daily moon-driven fishing outlook.
type Solunar struct {
	Periods          []SolunarPeriod `json:"periods"`
	MoonPhase        string          `json:"moonPhase"`
	MoonIllumination int             `json:"moonIllumination"`
	Sunrise          string          `json:"sunrise"`
	Sunset           string          `json:"sunset"`
	Rating           string          `json:"rating"`
}

func hour(h int) string {
	return fmt.Sprintf("%02d:00", ((h%24)+24)%24)
}

// CalculateSolunar approximates moon phase and feeding periods from the moon's age.
func CalculateSolunar(now time.Time) Solunar {
	days := now.Sub(knownNewMoon).Hours() / 24
	age := math.Mod(days, lunarCycle)
	if age < 0 {
		age += lunarCycle
	}
	illumination := int(math.Round((1 - math.Cos(age/lunarCycle*2*math.Pi)) * 50))
	phase := moonPhases[int(math.Floor(age/lunarCycle*8))%8]

	_, frac := math.Modf(age)
	base := int(math.Floor(frac * 24))
	major := int(math.Round(float64(illumination) / 10))
	minor := int(math.Round(float64(illumination) / 20))

	rating := "Fair"
	switch phase {
	case "New Moon", "Full Moon":
		rating = "Excellent"
	case "First Quarter", "Last Quarter":
		rating = "Good"
	}

	return Solunar{
		Periods: []SolunarPeriod{
			{Type: "Major", Start: hour(base + 6), End: hour(base + 8), Activity: 85 + major, Description: "Peak feeding activity - Moon overhead"},
			{Type: "Major", Start: hour(base + 18), End: hour(base + 20), Activity: 90 + major, Description: "Peak feeding activity - Moon underfoot"},
			{Type: "Minor", Start: hour(base), End: hour(base + 2), Activity: 45 + minor, Description: "Moderate feeding activity - Moonrise"},
			{Type: "Minor", Start: hour(base + 12), End: hour(base + 14), Activity: 50 + minor, Description: "Moderate feeding activity - Moonset"},
		},
		MoonPhase:        phase,
		MoonIllumination: illumination,
		// TODO: compute sunrise and sunset from the requested coordinate instead of fixed South Padre times.
		Sunrise: "06:45",
		Sunset:  "19:15",
		Rating:  rating,
	}
}
