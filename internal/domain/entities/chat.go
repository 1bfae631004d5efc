package entities

import (
	"fmt"
	"strings"
)

// ChatRole identifies the author of a conversation turn.
type ChatRole string

const (
	RoleSystem    ChatRole = "system"
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatMessage is one conversation turn. Provider tags assistant turns with
// the service that produced them; Error flags apology entries appended when
// every provider failed.
type ChatMessage struct {
	Role     ChatRole `json:"role"`
	Content  string   `json:"content"`
	Provider string   `json:"provider,omitempty"`
	Error    bool     `json:"error,omitempty"`
}

// TaskSummary is the reduced task shape sent to a provider as context.
type TaskSummary struct {
	Title       string          `json:"title"`
	Goal        string          `json:"goal,omitempty"`
	Description string          `json:"description,omitempty"`
	Importance  ImportanceLevel `json:"importance"`
	Status      string          `json:"status"`
}

// ChatRequestPayload is the provider-agnostic request assembled per send.
// It is constructed fresh for each call and discarded afterwards.
type ChatRequestPayload struct {
	SystemPrompt string
	TasksContext []TaskSummary
	TaskHint     *TaskSummary
	Conversation []ChatMessage
	UserMessage  string
}

// BuildMessages flattens the payload into the ordered wire message list:
// system messages first (base prompt, task context, task hint), then the
// conversation history, then the new user message last.
func (p *ChatRequestPayload) BuildMessages() []ChatMessage {
	messages := make([]ChatMessage, 0, len(p.Conversation)+4)

	if p.SystemPrompt != "" {
		messages = append(messages, ChatMessage{Role: RoleSystem, Content: p.SystemPrompt})
	}
	if len(p.TasksContext) > 0 {
		messages = append(messages, ChatMessage{Role: RoleSystem, Content: renderTasksContext(p.TasksContext)})
	}
	if p.TaskHint != nil {
		messages = append(messages, ChatMessage{Role: RoleSystem, Content: renderTaskHint(p.TaskHint)})
	}
	for _, msg := range p.Conversation {
		messages = append(messages, ChatMessage{Role: msg.Role, Content: msg.Content})
	}
	messages = append(messages, ChatMessage{Role: RoleUser, Content: p.UserMessage})

	return messages
}

func renderTasksContext(tasks []TaskSummary) string {
	parts := make([]string, 0, len(tasks))
	for _, task := range tasks {
		part := fmt.Sprintf("%q (%s priority, %s", task.Title, task.Importance, task.Status)
		if task.Goal != "" {
			part += fmt.Sprintf(", goal: %s", task.Goal)
		}
		part += ")"
		parts = append(parts, part)
	}
	return "Current tasks: " + strings.Join(parts, ", ")
}

func renderTaskHint(hint *TaskSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The user is asking about their task %q", hint.Title)
	if hint.Goal != "" {
		fmt.Fprintf(&b, " (goal: %s)", hint.Goal)
	}
	b.WriteString(".")
	if hint.Description != "" {
		fmt.Fprintf(&b, " Task description: %s.", hint.Description)
	}
	b.WriteString(" Give clear step-by-step guidance for making progress on this task.")
	return b.String()
}

// ProviderConfig describes one chat-completion provider endpoint.
type ProviderConfig struct {
	Name        string
	EndpointURL string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
}

// Validate checks the fields required before any network call is made.
func (c ProviderConfig) Validate() error {
	if c.EndpointURL == "" {
		return &ConfigurationError{Provider: c.Name, Missing: "endpoint URL"}
	}
	if c.APIKey == "" {
		return &ConfigurationError{Provider: c.Name, Missing: "API key"}
	}
	return nil
}

// ChatSession holds the per-conversation state: the stored history and
// whether the base system prompt has been delivered in this session.
// It replaces the script-level globals of earlier frontend variants.
type ChatSession struct {
	History          []ChatMessage
	SystemPromptSent bool
}

// Recent returns the most recent n messages without mutating the history.
func (s *ChatSession) Recent(n int) []ChatMessage {
	if len(s.History) <= n {
		return s.History
	}
	return s.History[len(s.History)-n:]
}

// Append adds a turn to the stored history.
func (s *ChatSession) Append(msg ChatMessage) {
	s.History = append(s.History, msg)
}

// Trim evicts the oldest entries so at most max remain.
func (s *ChatSession) Trim(max int) {
	if len(s.History) > max {
		s.History = s.History[len(s.History)-max:]
	}
}

// Chat error taxonomy. ConfigurationError, ProviderError and
// MalformedResponseError are all recoverable by falling back to the next
// provider; AllProvidersUnavailableError is terminal for the request.

// ConfigurationError means a provider is missing credentials or an endpoint
// URL. It is detected before any network call.
type ConfigurationError struct {
	Provider string
	Missing  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s is not configured: missing %s", e.Provider, e.Missing)
}

// ProviderError means the provider returned a non-2xx status or the call
// failed at the transport level.
type ProviderError struct {
	Provider string
	Status   int
	Body     string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.Status, e.Body)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// MalformedResponseError means the provider answered 2xx but the body had
// neither a populated choices[0].message.content nor a reply field.
type MalformedResponseError struct {
	Provider string
	Body     string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s returned an unexpected response shape", e.Provider)
}

// AllProvidersUnavailableError carries both underlying failures after the
// primary and the fallback provider have been tried.
type AllProvidersUnavailableError struct {
	PrimaryErr  error
	FallbackErr error
}

func (e *AllProvidersUnavailableError) Error() string {
	return fmt.Sprintf("all providers unavailable: primary: %v; fallback: %v", e.PrimaryErr, e.FallbackErr)
}

func (e *AllProvidersUnavailableError) Unwrap() []error {
	return []error{e.PrimaryErr, e.FallbackErr}
}
