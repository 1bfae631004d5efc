package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasktrail/core/internal/domain/entities"
	"github.com/tasktrail/core/internal/infrastructure/logger"
	"github.com/tasktrail/core/internal/ports"
)

type testValidator struct {
	validator *validator.Validate
}

func (v *testValidator) Validate(i interface{}) error {
	return v.validator.Struct(i)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}
	return e
}

// stubChatService scripts the orchestration outcome for handler tests.
type stubChatService struct {
	result  *ports.SendMessageResult
	err     error
	lastReq ports.SendMessageRequest
}

func (s *stubChatService) SendMessage(_ context.Context, req ports.SendMessageRequest) (*ports.SendMessageResult, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func postChat(t *testing.T, svc ports.ChatService, body string) *httptest.ResponseRecorder {
	t.Helper()

	e := newTestEcho()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := NewChatHandler(svc, logger.NewNop())
	if err := handler.Send(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestChatSend_Success(t *testing.T) {
	svc := &stubChatService{result: &ports.SendMessageResult{Reply: "Here you go.", Provider: "Groq"}}

	rec := postChat(t, svc, `{"userMessage":"what should I do today?"}`)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Here you go.", resp.Reply)
	assert.Equal(t, "Groq", resp.Provider)
	assert.Equal(t, "what should I do today?", svc.lastReq.UserMessage)
}

func TestChatSend_BindsOptionalWireFields(t *testing.T) {
	svc := &stubChatService{result: &ports.SendMessageResult{Reply: "ok", Provider: "Groq"}}

	body := `{
		"systemPrompt": "Custom prompt",
		"tasksContext": [{"title":"Write report","importance":"Focused","status":"pending"}],
		"conversation": [{"role":"user","content":"hi"}],
		"userMessage": "next"
	}`
	rec := postChat(t, svc, body)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Custom prompt", svc.lastReq.SystemPrompt)
	require.Len(t, svc.lastReq.TasksContext, 1)
	assert.Equal(t, "Write report", svc.lastReq.TasksContext[0].Title)
	require.Len(t, svc.lastReq.Conversation, 1)
	assert.Equal(t, entities.RoleUser, svc.lastReq.Conversation[0].Role)
}

func TestChatSend_EmptyMessage(t *testing.T) {
	svc := &stubChatService{err: entities.ErrEmptyMessage}

	rec := postChat(t, svc, `{"userMessage":""}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "User message is required", resp.Error)
}

func TestChatSend_AllProvidersUnavailable(t *testing.T) {
	svc := &stubChatService{err: &entities.AllProvidersUnavailableError{
		PrimaryErr:  &entities.ProviderError{Provider: "Groq", Status: 500, Body: "boom"},
		FallbackErr: &entities.ProviderError{Provider: "DeepSeek", Status: 503, Body: "down"},
	}}

	rec := postChat(t, svc, `{"userMessage":"hello"}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "All AI services are currently unavailable.", resp.Error)
	// Raw provider errors never leak to the client.
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestChatSend_MalformedBody(t *testing.T) {
	svc := &stubChatService{}

	rec := postChat(t, svc, `{not json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
