package llm

// Role is the speaker of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a conversation sent to the model.
type Message struct {
	Role    Role
	Content string
}

// CompletionRequest carries everything a completion call needs. The
// chat service and the timeline builder both drive providers through
// this; JSONMode is set when the caller will json.Unmarshal the reply.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
	JSONMode    bool
}

// CompletionResponse is the model's reply plus usage accounting.
type CompletionResponse struct {
	Content      string
	InputTokens  int
	OutputTokens int
	Model        string
	FinishReason string
}
