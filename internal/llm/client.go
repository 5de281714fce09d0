package llm

import "context"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

type Message struct {
	Role       string
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
}

// ToolCall keeps the arguments exactly as the model produced them. Decoding
// and validation belong to the tool executor.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any
}

type Response struct {
	Content          string
	ToolCalls        []ToolCall
	Model            string
	FinishReason     string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Client sends one chat completion. A nil or empty tools slice disables tool
// calling for that request.
type Client interface {
	Complete(ctx context.Context, messages []Message, tools []Tool) (Response, error)
}
