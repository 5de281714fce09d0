package assistant

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

var (
	ErrUnknownTool      = errors.New("unknown tool")
	ErrInvalidArguments = errors.New("invalid tool arguments")
)

// Invocation is one decoded tool call. The set of implementations is closed;
// DecodeInvocation is the only constructor.
type Invocation interface {
	Tool() ToolName
}

type SaveSymptomLogCall struct {
	Symptom  string
	Severity int
	DaysAgo  int
	Tags     []string
	RawText  string
}

type QueryLogsCall struct {
	SymptomFilter string
	DaysBack      int
}

type AnalyzePatternsCall struct {
	Focus string
}

type CheckCommunityTrendsCall struct {
	Keyword string
}

type LogWeightCall struct {
	Weight    float64
	Condition string
}

func (SaveSymptomLogCall) Tool() ToolName       { return ToolSaveSymptomLog }
func (QueryLogsCall) Tool() ToolName            { return ToolQueryLogs }
func (AnalyzePatternsCall) Tool() ToolName      { return ToolAnalyzePatterns }
func (CheckCommunityTrendsCall) Tool() ToolName { return ToolCheckCommunityTrends }
func (LogWeightCall) Tool() ToolName            { return ToolLogWeight }

// DecodeInvocation turns untyped model output into a typed call. Numbers sent
// as strings or floats are coerced; unusable values fall back to zero so the
// business rules can apply their own defaults.
func DecodeInvocation(name string, rawArguments string) (Invocation, error) {
	args, err := parseArguments(rawArguments)
	if err != nil {
		return nil, err
	}

	switch ToolName(name) {
	case ToolSaveSymptomLog:
		return SaveSymptomLogCall{
			Symptom:  args.text("symptom"),
			Severity: args.integer("severity"),
			DaysAgo:  args.integer("days_ago"),
			Tags:     args.textList("tags"),
			RawText:  args.text("raw_text"),
		}, nil
	case ToolQueryLogs:
		return QueryLogsCall{
			SymptomFilter: args.text("symptom_filter"),
			DaysBack:      args.integer("days_back"),
		}, nil
	case ToolAnalyzePatterns:
		return AnalyzePatternsCall{Focus: args.text("focus")}, nil
	case ToolCheckCommunityTrends:
		return CheckCommunityTrendsCall{Keyword: args.text("keyword")}, nil
	case ToolLogWeight:
		return LogWeightCall{
			Weight:    args.number("weight"),
			Condition: args.text("condition"),
		}, nil
	default:
		return nil, ErrUnknownTool
	}
}

type arguments map[string]any

func parseArguments(raw string) (arguments, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return arguments{}, nil
	}

	decoder := json.NewDecoder(bytes.NewReader([]byte(raw)))
	decoder.UseNumber()
	args := arguments{}
	if err := decoder.Decode(&args); err != nil {
		return nil, ErrInvalidArguments
	}
	if decoder.More() {
		return nil, ErrInvalidArguments
	}
	return args, nil
}

func (args arguments) text(key string) string {
	switch value := args[key].(type) {
	case string:
		return strings.TrimSpace(value)
	case json.Number:
		return value.String()
	default:
		return ""
	}
}

func (args arguments) number(key string) float64 {
	var (
		parsed float64
		err    error
	)
	switch value := args[key].(type) {
	case json.Number:
		parsed, err = value.Float64()
	case string:
		parsed, err = strconv.ParseFloat(strings.TrimSpace(value), 64)
	default:
		return 0
	}
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0
	}
	return parsed
}

// integer saturates at the int32 range so oversized values stay out of range
// instead of wrapping to zero.
func (args arguments) integer(key string) int {
	value := math.Round(args.number(key))
	return int(max(min(value, math.MaxInt32), math.MinInt32))
}

func (args arguments) textList(key string) []string {
	switch value := args[key].(type) {
	case []any:
		out := make([]string, 0, len(value))
		for _, item := range value {
			if text, ok := item.(string); ok && strings.TrimSpace(text) != "" {
				out = append(out, strings.TrimSpace(text))
			}
		}
		return out
	case string:
		out := make([]string, 0)
		for _, part := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out
	default:
		return []string{}
	}
}
