package assistant

import (
	"github.com/terraincognita07/biolog/internal/models"
	"github.com/terraincognita07/biolog/internal/services"
)

type ErrorResult struct {
	Error string `json:"error"`
}

type SaveSymptomLogResult struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Log     models.SymptomLog `json:"log"`
}

type QueryLogsResult struct {
	Success bool               `json:"success"`
	Count   int                `json:"count"`
	Logs    []services.LogView `json:"logs"`
}

type AnalyzePatternsResult struct {
	Success  bool   `json:"success"`
	Analysis string `json:"analysis,omitempty"`
	Focus    string `json:"focus,omitempty"`
	*services.PatternReport
}

type LogWeightResult struct {
	Success        bool              `json:"success"`
	Weight         float64           `json:"weight"`
	PreviousWeight *float64          `json:"previousWeight"`
	WeightChange   float64           `json:"weightChange"`
	WeightGain     float64           `json:"weightGain"`
	Severity       int               `json:"severity"`
	ActionRequired *string           `json:"actionRequired"`
	AlertMessage   *string           `json:"alertMessage"`
	Log            models.SymptomLog `json:"log"`
}

type CommunityTrendsResult struct {
	Success bool `json:"success"`
	services.TrendCheck
}

const (
	messageNoOwnerAnalysis = "Please log in to see your health patterns."
	messageNoDataAnalysis  = "No symptom data to analyze yet. Start logging symptoms first."
)

func newLogWeightResult(reading services.WeightReading) LogWeightResult {
	result := LogWeightResult{
		Success:        true,
		Weight:         reading.Weight,
		PreviousWeight: reading.PreviousWeight,
		WeightChange:   reading.WeightChange,
		WeightGain:     reading.WeightGain,
		Severity:       reading.Severity,
		Log:            reading.Entry,
	}
	if reading.Action != models.ProtocolActionNone {
		action := string(reading.Action)
		result.ActionRequired = &action
	}
	if reading.AlertMessage != "" {
		alert := reading.AlertMessage
		result.AlertMessage = &alert
	}
	return result
}
