package llm

import "github.com/GriffinCanCode/placechat/internal/shared/types"

// Request is one chat completion. Model comes from the client configuration.
type Request struct {
	Messages    []types.ChatMessage
	Format      string // "json" constrains the reply to a JSON value
	MaxTokens   int
	Temperature *float64
}

// Usage reports token accounting from the final frame, when the server sends it
type Usage struct {
	PromptTokens int
	EvalTokens   int
	DoneReason   string
}

type chatRequest struct {
	Model    string              `json:"model"`
	Messages []types.ChatMessage `json:"messages"`
	Stream   bool                `json:"stream"`
	Format   string              `json:"format,omitempty"`
	Options  *chatOptions        `json:"options,omitempty"`
}

type chatOptions struct {
	NumPredict  int      `json:"num_predict,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

// chatFrame is both the non-streaming reply and one line of a streamed reply
type chatFrame struct {
	Model           string            `json:"model"`
	Message         types.ChatMessage `json:"message"`
	Done            bool              `json:"done"`
	DoneReason      string            `json:"done_reason,omitempty"`
	PromptEvalCount int               `json:"prompt_eval_count,omitempty"`
	EvalCount       int               `json:"eval_count,omitempty"`
	Error           string            `json:"error,omitempty"`
}

func (f chatFrame) usage() Usage {
	return Usage{
		PromptTokens: f.PromptEvalCount,
		EvalTokens:   f.EvalCount,
		DoneReason:   f.DoneReason,
	}
}
