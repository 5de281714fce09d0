package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/terraincognita07/biolog/internal/llm"
	"github.com/terraincognita07/biolog/internal/services"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const maxParallelTools = 4

type SymptomLogger interface {
	SaveSymptom(ctx context.Context, input services.SymptomInput) (services.SavedSymptom, error)
	QueryRecent(ctx context.Context, query services.RecentLogsQuery) ([]services.LogView, error)
	AnalyzePatterns(ctx context.Context, ownerID string) (services.PatternReport, bool, error)
}

type WeightLogger interface {
	LogWeight(ctx context.Context, input services.WeightInput) (services.WeightReading, error)
}

type TrendChecker interface {
	Check(ctx context.Context, keyword string) (services.TrendCheck, error)
}

// ToolContext carries the per-turn identity and calendar.
type ToolContext struct {
	OwnerID  string
	Location *time.Location
}

type ToolInvocationResult struct {
	CallID string          `json:"-"`
	Tool   string          `json:"tool"`
	Args   json.RawMessage `json:"args"`
	Result any             `json:"result"`
	Failed bool            `json:"-"`
}

type Executor struct {
	logs     SymptomLogger
	weights  WeightLogger
	trends   TrendChecker
	parallel bool
	logger   *zap.Logger
}

func NewExecutor(logs SymptomLogger, weights WeightLogger, trends TrendChecker, parallel bool, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		logs:     logs,
		weights:  weights,
		trends:   trends,
		parallel: parallel,
		logger:   logger,
	}
}

// ExecuteAll runs every call and returns results in call order. A failing
// call never prevents its siblings from running.
func (executor *Executor) ExecuteAll(ctx context.Context, toolCtx ToolContext, calls []llm.ToolCall) []ToolInvocationResult {
	results := make([]ToolInvocationResult, len(calls))
	if !executor.parallel || len(calls) < 2 {
		for index, call := range calls {
			results[index] = executor.Execute(ctx, toolCtx, call)
		}
		return results
	}

	var group errgroup.Group
	group.SetLimit(maxParallelTools)
	for index, call := range calls {
		group.Go(func() error {
			results[index] = executor.Execute(ctx, toolCtx, call)
			return nil
		})
	}
	_ = group.Wait()
	return results
}

func (executor *Executor) Execute(ctx context.Context, toolCtx ToolContext, call llm.ToolCall) (result ToolInvocationResult) {
	started := time.Now()
	result = ToolInvocationResult{
		CallID: call.ID,
		Tool:   call.Name,
		Args:   argumentsJSON(call.Arguments),
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			executor.logger.Error("tool panicked",
				zap.String("tool", call.Name),
				zap.Any("panic", recovered),
			)
			result.Result = ErrorResult{Error: "Tool execution failed"}
			result.Failed = true
		}
		executor.logger.Info("tool executed",
			zap.String("tool", call.Name),
			zap.Bool("owner", toolCtx.OwnerID != ""),
			zap.Bool("failed", result.Failed),
			zap.Duration("duration", time.Since(started)),
		)
	}()

	invocation, err := DecodeInvocation(call.Name, call.Arguments)
	if err == nil {
		result.Result, err = executor.dispatch(ctx, toolCtx, invocation)
	}
	if err != nil {
		executor.logger.Warn("tool failed", zap.String("tool", call.Name), zap.Error(err))
		result.Result = ErrorResult{Error: toolErrorMessage(err)}
		result.Failed = true
	}
	return result
}

func (executor *Executor) dispatch(ctx context.Context, toolCtx ToolContext, invocation Invocation) (any, error) {
	switch call := invocation.(type) {
	case SaveSymptomLogCall:
		saved, err := executor.logs.SaveSymptom(ctx, services.SymptomInput{
			OwnerID:  toolCtx.OwnerID,
			Label:    call.Symptom,
			Severity: call.Severity,
			DaysAgo:  call.DaysAgo,
			Tags:     call.Tags,
			RawText:  call.RawText,
			Location: toolCtx.Location,
		})
		if err != nil {
			return nil, err
		}
		return SaveSymptomLogResult{Success: true, Message: saved.Message, Log: saved.Entry}, nil

	case QueryLogsCall:
		views, err := executor.logs.QueryRecent(ctx, services.RecentLogsQuery{
			OwnerID:       toolCtx.OwnerID,
			LabelContains: call.SymptomFilter,
			DaysBack:      call.DaysBack,
			Location:      toolCtx.Location,
		})
		if err != nil {
			return nil, err
		}
		return QueryLogsResult{Success: true, Count: len(views), Logs: views}, nil

	case AnalyzePatternsCall:
		if strings.TrimSpace(toolCtx.OwnerID) == "" {
			return AnalyzePatternsResult{Success: true, Analysis: messageNoOwnerAnalysis}, nil
		}
		report, found, err := executor.logs.AnalyzePatterns(ctx, toolCtx.OwnerID)
		if err != nil {
			return nil, err
		}
		if !found {
			return AnalyzePatternsResult{Success: true, Analysis: messageNoDataAnalysis}, nil
		}
		return AnalyzePatternsResult{Success: true, Focus: call.Focus, PatternReport: &report}, nil

	case LogWeightCall:
		reading, err := executor.weights.LogWeight(ctx, services.WeightInput{
			OwnerID:   toolCtx.OwnerID,
			Weight:    call.Weight,
			Condition: call.Condition,
			Location:  toolCtx.Location,
		})
		if err != nil {
			return nil, err
		}
		return newLogWeightResult(reading), nil

	case CheckCommunityTrendsCall:
		check, err := executor.trends.Check(ctx, call.Keyword)
		if err != nil {
			return nil, err
		}
		return CommunityTrendsResult{Success: true, TrendCheck: check}, nil

	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownTool, invocation)
	}
}

var toolErrorMessages = []struct {
	target  error
	message string
}{
	{target: ErrUnknownTool, message: "Unknown tool"},
	{target: ErrInvalidArguments, message: "Invalid tool arguments"},
	{target: services.ErrInvalidWeight, message: "Valid weight required"},
	{target: services.ErrOwnerRequired, message: "User ID required"},
	{target: services.ErrSymptomRequired, message: "Symptom required"},
	{target: services.ErrInvalidDaysAgo, message: "days_ago must be between 0 and 3650"},
	{target: services.ErrKeywordRequired, message: "Keyword required"},
	{target: services.ErrSaveSymptomLogFailed, message: "Failed to save symptom log"},
	{target: services.ErrLoadSymptomLogsFailed, message: "Failed to load symptom logs"},
	{target: services.ErrLogWeightFailed, message: "Failed to log weight"},
}

func toolErrorMessage(err error) string {
	for _, candidate := range toolErrorMessages {
		if errors.Is(err, candidate.target) {
			return candidate.message
		}
	}
	return "Tool execution failed"
}

// argumentsJSON echoes the model's arguments back to the caller. Text that is
// not valid JSON is returned as a JSON string.
func argumentsJSON(raw string) json.RawMessage {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return json.RawMessage("{}")
	}
	if json.Valid([]byte(trimmed)) {
		return json.RawMessage(trimmed)
	}
	quoted, _ := json.Marshal(raw)
	return json.RawMessage(quoted)
}
