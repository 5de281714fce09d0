package services

import (
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/terraincognita07/biolog/internal/models"
)

// Weight gain thresholds in pounds for the congestive heart failure protocol.
const (
	ProtocolActivationGain = 3.0
	CloseMonitoringGain    = 2.0
	AdvisoryGain           = 1.0
)

var weightTextPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:lbs?|pounds?|kg)`)

type ProtocolDecision struct {
	Severity     int
	Action       models.ProtocolAction
	AlertMessage string
}

// EvaluateWeightGain maps a non-negative gain onto severity, action and the
// alert text shown to the patient. Losses must be clamped to zero by the caller.
func EvaluateWeightGain(gain float64) ProtocolDecision {
	switch {
	case gain >= ProtocolActivationGain:
		return ProtocolDecision{
			Severity:     models.SeverityUnbearable,
			Action:       models.ProtocolActionTakeLasix,
			AlertMessage: fmt.Sprintf("⚠️ PROTOCOL ACTIVATED: Weight gain of %.1f lbs detected. Action required: %s", gain, models.ProtocolActionTakeLasix),
		}
	case gain >= CloseMonitoringGain:
		return ProtocolDecision{
			Severity:     models.SeveritySevere,
			Action:       models.ProtocolActionMonitorClosely,
			AlertMessage: fmt.Sprintf("Weight gain of %.1f lbs. Monitor closely.", gain),
		}
	case gain >= AdvisoryGain:
		return ProtocolDecision{
			Severity:     models.SeverityModerate,
			AlertMessage: fmt.Sprintf("Weight gain of %.1f lbs. Continue monitoring.", gain),
		}
	default:
		return ProtocolDecision{Severity: models.SeverityMild}
	}
}

// ExtractWeightFromText returns the first number followed by lb, lbs, pound,
// pounds or kg. Units are not converted.
func ExtractWeightFromText(text string) (float64, bool) {
	matches := weightTextPattern.FindStringSubmatch(text)
	if len(matches) != 2 {
		return 0, false
	}
	value, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// PreviousWeight scans newest-first entries and returns the first usable
// reading found in the explicit weight field, then the label, then the raw
// text. Entries that cannot carry a weight and non-positive readings are
// skipped.
func PreviousWeight(entries []models.SymptomLog) (float64, bool) {
	for _, entry := range entries {
		if !entry.IsWeightRelated() {
			continue
		}
		if entry.WeightValue != nil && isUsableWeight(*entry.WeightValue) {
			return *entry.WeightValue, true
		}
		if value, ok := ExtractWeightFromText(entry.Label); ok && isUsableWeight(value) {
			return value, true
		}
		if value, ok := ExtractWeightFromText(entry.RawText); ok && isUsableWeight(value) {
			return value, true
		}
	}
	return 0, false
}

func roundWeightDelta(delta float64) float64 {
	return math.Round(delta*100) / 100
}
