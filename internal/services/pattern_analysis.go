package services

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/terraincognita07/biolog/internal/models"
)

const (
	patternAnalysisWindow = 200
	topSymptomsLimit      = 5
	topTagsLimit          = 5
	worstDaysLimit        = 3
)

type CountEntry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type SeverityAverage struct {
	Symptom string  `json:"symptom"`
	Average float64 `json:"average"`
}

type PatternReport struct {
	TotalLogs          int               `json:"total_logs"`
	MostCommonSymptoms []CountEntry      `json:"most_common_symptoms"`
	CommonTags         []CountEntry      `json:"common_tags"`
	AverageSeverity    []SeverityAverage `json:"average_severity"`
	WorstDays          []CountEntry      `json:"worst_days"`
}

// AnalyzePatterns loads the owner's most recent entries and summarizes them.
// The boolean is false when the owner has nothing logged yet.
func (service *LogService) AnalyzePatterns(ctx context.Context, ownerID string) (PatternReport, bool, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return PatternReport{}, false, ErrOwnerRequired
	}

	entries, err := service.logs.Find(ctx, models.SymptomLogFilter{OwnerID: ownerID}, patternAnalysisWindow)
	if err != nil {
		return PatternReport{}, false, fmt.Errorf("%w: %v", ErrLoadSymptomLogsFailed, err)
	}
	if len(entries) == 0 {
		return PatternReport{}, false, nil
	}
	return SummarizePatterns(entries), true, nil
}

// SummarizePatterns ranks by count; ties keep the order in which a name was
// first seen in entries.
func SummarizePatterns(entries []models.SymptomLog) PatternReport {
	symptoms := newOrderedCounter()
	tags := newOrderedCounter()
	days := newOrderedCounter()
	severityTotals := make(map[string]int)

	for _, entry := range entries {
		symptoms.add(entry.Label)
		severityTotals[entry.Label] += entry.Severity

		seenTags := make(map[string]struct{}, len(entry.Tags))
		for _, tag := range entry.Tags {
			if _, dup := seenTags[tag]; dup {
				continue
			}
			seenTags[tag] = struct{}{}
			tags.add(tag)
		}

		if weekday, ok := WeekdayOfISODate(entry.OccurredDate); ok {
			days.add(weekday.String())
		}
	}

	averages := make([]SeverityAverage, 0, len(symptoms.order))
	for _, name := range symptoms.order {
		average := float64(severityTotals[name]) / float64(symptoms.counts[name])
		averages = append(averages, SeverityAverage{
			Symptom: name,
			Average: math.Round(average*10) / 10,
		})
	}

	return PatternReport{
		TotalLogs:          len(entries),
		MostCommonSymptoms: symptoms.top(topSymptomsLimit),
		CommonTags:         tags.top(topTagsLimit),
		AverageSeverity:    averages,
		WorstDays:          days.top(worstDaysLimit),
	}
}

type orderedCounter struct {
	order  []string
	counts map[string]int
}

func newOrderedCounter() *orderedCounter {
	return &orderedCounter{counts: make(map[string]int)}
}

func (counter *orderedCounter) add(name string) {
	if _, ok := counter.counts[name]; !ok {
		counter.order = append(counter.order, name)
	}
	counter.counts[name]++
}

func (counter *orderedCounter) top(limit int) []CountEntry {
	ranked := make([]CountEntry, 0, len(counter.order))
	for _, name := range counter.order {
		ranked = append(ranked, CountEntry{Name: name, Count: counter.counts[name]})
	}
	slices.SortStableFunc(ranked, func(left, right CountEntry) int {
		return cmp.Compare(right.Count, left.Count)
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
