package assistant

import "github.com/terraincognita07/biolog/internal/llm"

type ToolName string

const (
	ToolSaveSymptomLog       ToolName = "save_symptom_log"
	ToolQueryLogs            ToolName = "query_logs"
	ToolAnalyzePatterns      ToolName = "analyze_patterns"
	ToolCheckCommunityTrends ToolName = "check_community_trends"
	ToolLogWeight            ToolName = "log_weight"
)

// Catalog lists every tool offered on the first model call.
func Catalog() []llm.Tool {
	return []llm.Tool{
		{
			Name:        string(ToolSaveSymptomLog),
			Description: "Save a symptom the user describes. Call immediately when the user reports how they feel.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"symptom": map[string]any{
						"type":        "string",
						"description": "Short symptom name, for example Headache or Nausea",
					},
					"severity": map[string]any{
						"type":        "integer",
						"minimum":     1,
						"maximum":     4,
						"description": "1 mild, 2 moderate, 3 severe, 4 unbearable",
					},
					"days_ago": map[string]any{
						"type":        "integer",
						"minimum":     0,
						"maximum":     3650,
						"description": "0 for today, 1 for yesterday, 7 for last week",
					},
					"tags": map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "string"},
						"description": "Context such as activity, food or time of day",
					},
					"raw_text": map[string]any{
						"type":        "string",
						"description": "The user's own words",
					},
				},
				"required": []string{"symptom", "severity", "raw_text"},
			},
		},
		{
			Name:        string(ToolQueryLogs),
			Description: "Look up the user's recent symptom history.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"symptom_filter": map[string]any{
						"type":        "string",
						"description": "Only return symptoms whose name contains this text",
					},
					"days_back": map[string]any{
						"type":        "integer",
						"description": "How many days of history to search, default 30",
					},
				},
			},
		},
		{
			Name:        string(ToolAnalyzePatterns),
			Description: "Summarize frequent symptoms, tags, average severity and the worst weekdays.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"focus": map[string]any{
						"type":        "string",
						"description": "Optional aspect the user cares about, such as triggers or timing",
					},
				},
			},
		},
		{
			Name:        string(ToolCheckCommunityTrends),
			Description: "Check recent local community reports for active environmental health alerts such as heat, wildfire smoke or air quality.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"keyword": map[string]any{
						"type":        "string",
						"description": "Search keyword, for example heat, fire or air quality",
					},
				},
				"required": []string{"keyword"},
			},
		},
		{
			Name:        string(ToolLogWeight),
			Description: "Record a body weight reading in pounds. Compares against the previous reading and applies the fluid retention protocol.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"weight": map[string]any{
						"type":        "number",
						"description": "Weight in pounds",
					},
					"condition": map[string]any{
						"type":        "string",
						"description": "Related condition, CHF when the user mentions heart failure or fluid retention",
					},
				},
				"required": []string{"weight"},
			},
		},
	}
}
