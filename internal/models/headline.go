package models

import (
	"regexp"
	"strings"
	"time"
)

const staleMonthLookback = 3

var (
	staleHeadlinePattern = regexp.MustCompile(`(?i)\b(lectures?|seminars?|events?|research papers?|study published)\b`)
	monthPatterns        = buildMonthPatterns()
)

// IsRelevantHeadline rejects posts about scheduled talks or publications and
// posts naming one of the three months before now.
func IsRelevantHeadline(headline string, now time.Time) bool {
	if strings.TrimSpace(headline) == "" {
		return false
	}
	if staleHeadlinePattern.MatchString(headline) {
		return false
	}

	for offset := 1; offset <= staleMonthLookback; offset++ {
		month := time.Month((int(now.Month())-offset+11)%12 + 1)
		if monthPatterns[month-1].MatchString(headline) {
			return false
		}
	}
	return true
}

// Month names match case-insensitively, except May which only counts when
// capitalized.
func buildMonthPatterns() [12]*regexp.Regexp {
	var patterns [12]*regexp.Regexp
	for month := time.January; month <= time.December; month++ {
		flags := "(?i)"
		if month == time.May {
			flags = ""
		}
		patterns[month-1] = regexp.MustCompile(flags + `\b` + month.String() + `\b`)
	}
	return patterns
}
