package models

import "strings"

// CommunitySignal is the single most relevant recent public post for a
// keyword. Synthetic marks canned demo data that must never reach a user as
// a real report.
type CommunitySignal struct {
	Found     bool   `json:"found"`
	Source    string `json:"source,omitempty"`
	Headline  string `json:"headline,omitempty"`
	URL       string `json:"url,omitempty"`
	Context   string `json:"context,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Synthetic bool   `json:"isDemo"`
}

const syntheticURLMarker = "/demo"

func (signal CommunitySignal) IsSynthetic() bool {
	return signal.Synthetic || strings.Contains(signal.URL, syntheticURLMarker)
}
