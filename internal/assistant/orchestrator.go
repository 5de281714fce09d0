package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/terraincognita07/biolog/internal/llm"
	"go.uber.org/zap"
)

var (
	ErrMessageRequired = errors.New("message required")
	ErrModelFailed     = errors.New("model call failed")
)

const (
	DefaultHistoryLimit = 20

	fallbackNoReply      = "I'm not sure how to respond to that. Could you rephrase?"
	fallbackNoFollowUp   = "I processed that, but didn't have anything to add. What would you like to know?"
	protocolActivatedTag = "PROTOCOL ACTIVATED"
)

type HistoryTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type TurnRequest struct {
	Message  string
	History  []HistoryTurn
	OwnerID  string
	Location *time.Location
}

type TurnResult struct {
	Response    string                 `json:"response"`
	ToolResults []ToolInvocationResult `json:"toolResults"`
}

// Orchestrator runs one assistant turn: a tool-enabled model call, execution
// of any proposed tools, then a tool-free call that phrases the answer.
type Orchestrator struct {
	model        llm.Client
	executor     *Executor
	historyLimit int
	logger       *zap.Logger
}

func NewOrchestrator(model llm.Client, executor *Executor, historyLimit int, logger *zap.Logger) *Orchestrator {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		model:        model,
		executor:     executor,
		historyLimit: historyLimit,
		logger:       logger,
	}
}

func (orchestrator *Orchestrator) Ask(ctx context.Context, request TurnRequest) (TurnResult, error) {
	message := strings.TrimSpace(request.Message)
	if message == "" {
		return TurnResult{}, ErrMessageRequired
	}

	conversation := orchestrator.composePrompt(request.History, message)

	first, err := orchestrator.model.Complete(ctx, conversation, Catalog())
	if err != nil {
		orchestrator.logger.Error("first model call failed", zap.Error(err))
		return TurnResult{}, fmt.Errorf("%w: %v", ErrModelFailed, err)
	}
	orchestrator.logUsage("first", first)

	if len(first.ToolCalls) == 0 {
		reply := strings.TrimSpace(first.Content)
		if reply == "" {
			reply = fallbackNoReply
		}
		return TurnResult{Response: reply, ToolResults: []ToolInvocationResult{}}, nil
	}

	toolCtx := ToolContext{OwnerID: strings.TrimSpace(request.OwnerID), Location: request.Location}
	results := orchestrator.executor.ExecuteAll(ctx, toolCtx, first.ToolCalls)

	followUp := append(slices.Clone(conversation), llm.Message{
		Role:      llm.RoleAssistant,
		Content:   first.Content,
		ToolCalls: first.ToolCalls,
	})
	for _, result := range results {
		followUp = append(followUp, llm.Message{
			Role:       llm.RoleTool,
			ToolCallID: result.CallID,
			Content:    encodeToolResult(result.Result),
		})
	}

	second, err := orchestrator.model.Complete(ctx, followUp, nil)
	if err != nil {
		orchestrator.logger.Error("follow-up model call failed", zap.Error(err))
		return TurnResult{}, fmt.Errorf("%w: %v", ErrModelFailed, err)
	}
	orchestrator.logUsage("follow-up", second)

	reply := strings.TrimSpace(second.Content)
	if reply == "" {
		reply = fallbackNoFollowUp
	}
	return TurnResult{
		Response:    surfaceWeightAlerts(reply, results),
		ToolResults: results,
	}, nil
}

// composePrompt keeps the trailing history window. Roles other than
// assistant are treated as user turns and empty turns are dropped.
func (orchestrator *Orchestrator) composePrompt(history []HistoryTurn, message string) []llm.Message {
	if len(history) > orchestrator.historyLimit {
		history = history[len(history)-orchestrator.historyLimit:]
	}

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: systemPrompt})
	for _, turn := range history {
		content := strings.TrimSpace(turn.Content)
		if content == "" {
			continue
		}
		role := llm.RoleUser
		if turn.Role == llm.RoleAssistant {
			role = llm.RoleAssistant
		}
		messages = append(messages, llm.Message{Role: role, Content: content})
	}
	return append(messages, llm.Message{Role: llm.RoleUser, Content: message})
}

func (orchestrator *Orchestrator) logUsage(pass string, response llm.Response) {
	orchestrator.logger.Debug("model call completed",
		zap.String("pass", pass),
		zap.String("model", response.Model),
		zap.Int("tool_calls", len(response.ToolCalls)),
		zap.Int("total_tokens", response.TotalTokens),
	)
}

func encodeToolResult(result any) string {
	encoded, err := json.Marshal(result)
	if err != nil {
		return `{"error":"Tool result could not be encoded"}`
	}
	return string(encoded)
}

// surfaceWeightAlerts prepends any weight alert the reply failed to convey.
func surfaceWeightAlerts(reply string, results []ToolInvocationResult) string {
	missing := make([]string, 0)
	for _, result := range results {
		weight, ok := result.Result.(LogWeightResult)
		if !ok || weight.AlertMessage == nil {
			continue
		}
		if !alertConveyed(reply, weight) {
			missing = append(missing, *weight.AlertMessage)
		}
	}
	if len(missing) == 0 {
		return reply
	}
	return strings.Join(missing, "\n") + "\n\n" + reply
}

func alertConveyed(reply string, weight LogWeightResult) bool {
	normalized := strings.ToUpper(reply)
	if strings.Contains(strings.ToUpper(*weight.AlertMessage), protocolActivatedTag) {
		return strings.Contains(normalized, protocolActivatedTag) &&
			weight.ActionRequired != nil &&
			strings.Contains(normalized, *weight.ActionRequired)
	}
	if weight.ActionRequired != nil && strings.Contains(normalized, *weight.ActionRequired) {
		return true
	}
	return strings.Contains(normalized, strings.ToUpper(fmt.Sprintf("%.1f lbs", weight.WeightGain)))
}
