package models

import (
	"strings"
	"time"
)

const (
	SeverityMild       = 1
	SeverityModerate   = 2
	SeveritySevere     = 3
	SeverityUnbearable = 4

	DefaultSeverity = SeverityModerate

	WeightUnitPounds = "lbs"
)

type ProtocolAction string

const (
	ProtocolActionNone           ProtocolAction = ""
	ProtocolActionTakeLasix      ProtocolAction = "TAKE_LASIX"
	ProtocolActionMonitorClosely ProtocolAction = "MONITOR_CLOSELY"
)

// SymptomLog is one owner-scoped health observation. Weight readings carry the
// optional weight fields; plain symptom entries leave them nil.
type SymptomLog struct {
	ID                  string         `gorm:"primaryKey;size:36" json:"id"`
	OwnerID             string         `gorm:"not null;index:idx_symptom_logs_owner_occurred,priority:1" json:"userId"`
	OccurredDate        string         `gorm:"not null;size:10" json:"date"`
	OccurredAt          time.Time      `gorm:"not null;index:idx_symptom_logs_owner_occurred,priority:2" json:"timestamp"`
	Severity            int            `gorm:"not null;default:2" json:"level"`
	Label               string         `gorm:"not null" json:"symptom"`
	RawText             string         `gorm:"not null;default:''" json:"raw_text"`
	Tags                []string       `gorm:"serializer:json" json:"tags"`
	WeightValue         *float64       `json:"weight,omitempty"`
	PreviousWeightValue *float64       `json:"previousWeight,omitempty"`
	WeightDelta         *float64       `json:"weightChange,omitempty"`
	WeightUnit          string         `gorm:"not null;default:''" json:"weightUnit,omitempty"`
	ProtocolAction      ProtocolAction `json:"actionRequired,omitempty"`
	CreatedAt           time.Time      `gorm:"not null" json:"createdAt"`
}

// SymptomLogFilter narrows a store lookup. OwnerID is always required.
type SymptomLogFilter struct {
	OwnerID           string
	CreatedSince      *time.Time
	LabelContains     string
	WeightRelatedOnly bool
}

var weightRelatedMarkers = []string{"weight", "fluid", "chf"}

func IsValidSeverity(severity int) bool {
	return severity >= SeverityMild && severity <= SeverityUnbearable
}

// IsWeightRelated reports whether the entry may carry a body weight reading.
func (entry *SymptomLog) IsWeightRelated() bool {
	if entry.WeightValue != nil {
		return true
	}
	if containsWeightMarker(entry.Label) {
		return true
	}
	for _, tag := range entry.Tags {
		if containsWeightMarker(tag) {
			return true
		}
	}
	return false
}

func containsWeightMarker(value string) bool {
	normalized := strings.ToLower(value)
	for _, marker := range weightRelatedMarkers {
		if strings.Contains(normalized, marker) {
			return true
		}
	}
	return false
}

func WeightRelatedMarkers() []string {
	return append([]string(nil), weightRelatedMarkers...)
}
