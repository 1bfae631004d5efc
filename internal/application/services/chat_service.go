package services

import (
	"context"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tasktrail/core/internal/domain/entities"
	"github.com/tasktrail/core/internal/infrastructure/config"
	"github.com/tasktrail/core/internal/infrastructure/logger"
	"github.com/tasktrail/core/internal/ports"
)

// GeneralSystemPrompt is the base assistant prompt, delivered once per session.
const GeneralSystemPrompt = "You are TrailGuide, an AI assistant for TaskTrail. " +
	"Use the user's task list context to give concise, actionable replies when asked. " +
	"Do not loop or re-prompt the user."

// UnavailableReply is appended to the conversation, flagged as an error,
// when every provider has failed. Raw provider errors never reach the user.
const UnavailableReply = "Sorry, TrailGuide is unavailable. Please try again later."

var providerRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "chat_provider_requests_total",
		Help: "Total number of chat-completion provider calls by outcome",
	},
	[]string{"provider", "outcome"},
)

// ChatService assembles provider-agnostic chat payloads, drives the
// primary-then-fallback delivery sequence and normalizes the outcome.
type ChatService struct {
	taskRepo ports.TaskRepository
	client   ports.CompletionClient
	primary  entities.ProviderConfig
	fallback entities.ProviderConfig
	logger   *logger.Logger

	historyLimit int
	contextTasks int

	// One conversation per session; the mutex enforces a single in-flight
	// send so conversation ordering is preserved.
	mu      sync.Mutex
	session entities.ChatSession
}

// NewChatService creates a new chat service
func NewChatService(taskRepo ports.TaskRepository, client ports.CompletionClient, cfg config.ChatConfig, appLogger *logger.Logger) *ChatService {
	return &ChatService{
		taskRepo:     taskRepo,
		client:       client,
		primary:      cfg.GroqProvider(),
		fallback:     cfg.DeepSeekProvider(),
		logger:       appLogger.WithComponent("chat"),
		historyLimit: cfg.HistoryLimit,
		contextTasks: cfg.ContextTasks,
	}
}

// SendMessage builds the request payload from the user message plus current
// task state, attempts the primary provider and falls back to the secondary
// on any failure. Either a single normalized reply is returned, or an
// AllProvidersUnavailableError carrying both failure reasons; no partial
// reply ever reaches the caller.
func (s *ChatService) SendMessage(ctx context.Context, req ports.SendMessageRequest) (*ports.SendMessageResult, error) {
	userMessage := strings.TrimSpace(req.UserMessage)
	if userMessage == "" {
		return nil, entities.ErrEmptyMessage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := s.buildPayload(ctx, req, userMessage)
	if err != nil {
		return nil, err
	}
	messages := payload.BuildMessages()

	reply, providerName, sendErr := s.deliver(ctx, messages)

	s.session.Append(entities.ChatMessage{Role: entities.RoleUser, Content: userMessage})
	if sendErr != nil {
		s.session.Append(entities.ChatMessage{
			Role:    entities.RoleAssistant,
			Content: UnavailableReply,
			Error:   true,
		})
		s.session.Trim(s.historyLimit)
		return nil, sendErr
	}

	s.session.Append(entities.ChatMessage{
		Role:     entities.RoleAssistant,
		Content:  reply,
		Provider: providerName,
	})
	s.session.Trim(s.historyLimit)
	// The prompt counts as delivered only once a provider accepted it.
	if payload.SystemPrompt != "" {
		s.session.SystemPromptSent = true
	}

	return &ports.SendMessageResult{Reply: reply, Provider: providerName}, nil
}

// History returns a copy of the stored conversation.
func (s *ChatService) History() []entities.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := make([]entities.ChatMessage, len(s.session.History))
	copy(history, s.session.History)
	return history
}

// buildPayload assembles the provider-agnostic request. Caller-supplied
// fields from the wire contract win; anything absent is filled in from the
// session and the task collection.
func (s *ChatService) buildPayload(ctx context.Context, req ports.SendMessageRequest, userMessage string) (*entities.ChatRequestPayload, error) {
	payload := &entities.ChatRequestPayload{UserMessage: userMessage}

	active, err := s.taskRepo.List(ctx, entities.FilterOptions{
		Status:     entities.StatusActive,
		Importance: entities.ImportanceAll,
		Deadline:   entities.DeadlineAll,
	})
	if err != nil {
		return nil, err
	}

	payload.TaskHint = req.TaskHint
	if payload.TaskHint == nil {
		payload.TaskHint = detectTaskHint(active, userMessage)
	}

	// A task hint suppresses the broad context to keep the model focused.
	if payload.TaskHint == nil {
		payload.TasksContext = req.TasksContext
		if payload.TasksContext == nil {
			limit := s.contextTasks
			if len(active) < limit {
				limit = len(active)
			}
			for _, task := range active[:limit] {
				payload.TasksContext = append(payload.TasksContext, task.Summarize())
			}
		}
	}

	switch {
	case req.SystemPrompt != "":
		payload.SystemPrompt = req.SystemPrompt
	case !s.session.SystemPromptSent:
		payload.SystemPrompt = GeneralSystemPrompt
	}

	payload.Conversation = req.Conversation
	if payload.Conversation == nil {
		payload.Conversation = s.session.Recent(s.historyLimit)
	} else if len(payload.Conversation) > s.historyLimit {
		payload.Conversation = payload.Conversation[len(payload.Conversation)-s.historyLimit:]
	}

	return payload, nil
}

// deliver attempts the primary provider, then the fallback with the same
// message list. Any primary failure, configuration included, triggers the
// fallback.
func (s *ChatService) deliver(ctx context.Context, messages []entities.ChatMessage) (string, string, error) {
	reply, primaryErr := s.client.Complete(ctx, s.primary, messages)
	if primaryErr == nil {
		providerRequests.WithLabelValues(s.primary.Name, "success").Inc()
		return reply, s.primary.Name, nil
	}
	providerRequests.WithLabelValues(s.primary.Name, "failure").Inc()
	s.logger.Warnw("Primary provider failed, falling back",
		"provider", s.primary.Name,
		"error", primaryErr.Error(),
	)

	reply, fallbackErr := s.client.Complete(ctx, s.fallback, messages)
	if fallbackErr == nil {
		providerRequests.WithLabelValues(s.fallback.Name, "success").Inc()
		return reply, s.fallback.Name, nil
	}
	providerRequests.WithLabelValues(s.fallback.Name, "failure").Inc()
	s.logger.Errorw("Both providers failed",
		"primary_error", primaryErr.Error(),
		"fallback_error", fallbackErr.Error(),
	)

	return "", "", &entities.AllProvidersUnavailableError{
		PrimaryErr:  primaryErr,
		FallbackErr: fallbackErr,
	}
}

// detectTaskHint scans active tasks for one mentioned in the user message.
// The first match in task order wins to avoid ambiguity.
func detectTaskHint(tasks []*entities.Task, userMessage string) *entities.TaskSummary {
	for _, task := range tasks {
		if task.MentionedIn(userMessage) {
			hint := task.Summarize()
			return &hint
		}
	}
	return nil
}
