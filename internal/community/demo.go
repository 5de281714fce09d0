package community

import (
	"context"
	"strings"

	"github.com/terraincognita07/biolog/internal/models"
)

type demoEntry struct {
	keyword string
	signal  models.CommunitySignal
}

var demoSignals = []demoEntry{
	{keyword: "heat", signal: models.CommunitySignal{Source: "Reddit (r/santacruz)", Headline: "PSA: Extreme Heat Advisory in Santa Cruz today. Stay hydrated.", Context: "Heatwave", URL: "https://reddit.com/r/santacruz/demo"}},
	{keyword: "fire", signal: models.CommunitySignal{Source: "Reddit (r/santacruz)", Headline: "Wildfire smoke advisory: Air quality may be affected. Limit outdoor activities.", Context: "Wildfire", URL: "https://reddit.com/r/santacruz/demo"}},
	{keyword: "air quality", signal: models.CommunitySignal{Source: "Reddit (r/santacruz)", Headline: "Air Quality Alert: Unhealthy conditions expected. Sensitive groups should stay indoors.", Context: "Air Quality", URL: "https://reddit.com/r/santacruz/demo"}},
	{keyword: "covid", signal: models.CommunitySignal{Source: "Reddit (r/UCSC)", Headline: "COVID cases on campus: Health center updates protocols.", Context: "COVID-19", URL: "https://reddit.com/r/UCSC/demo"}},
	{keyword: "flu", signal: models.CommunitySignal{Source: "Reddit (r/UCSC)", Headline: "Flu season alert: High activity reported in Santa Cruz County.", Context: "Influenza", URL: "https://reddit.com/r/UCSC/demo"}},
}

// DemoSignal returns canned data for keyword. It is always marked synthetic.
func DemoSignal(keyword string) models.CommunitySignal {
	normalized := strings.ToLower(keyword)
	signal := demoSignals[0].signal
	for _, entry := range demoSignals {
		if strings.Contains(normalized, entry.keyword) {
			signal = entry.signal
			break
		}
	}
	signal.Found = true
	signal.Synthetic = true
	return signal
}

// DemoSource serves DemoSignal for every keyword.
type DemoSource struct{}

func (DemoSource) Lookup(_ context.Context, keyword string) (models.CommunitySignal, error) {
	if strings.TrimSpace(keyword) == "" {
		return models.CommunitySignal{}, ErrEmptyKeyword
	}
	return DemoSignal(keyword), nil
}
