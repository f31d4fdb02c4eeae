package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/beforest/brandvoice/internal/domain/analytics"
	"github.com/beforest/brandvoice/internal/domain/auth"
	"github.com/beforest/brandvoice/internal/domain/chat"
	"github.com/beforest/brandvoice/internal/domain/settings"
	"github.com/beforest/brandvoice/internal/domain/transform"
	"github.com/beforest/brandvoice/internal/infra/config"
	"github.com/beforest/brandvoice/internal/infra/llm/chatgpt"
	"github.com/beforest/brandvoice/internal/infra/transformrepo"
	apperrors "github.com/beforest/brandvoice/pkg/errors"
)

const testToken = "good-token"

func TestRouter_Healthz(t *testing.T) {
	server := newRouterUnderTest(t, services{})
	rec := performRequest(server, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRouter_RegisterIsPublic(t *testing.T) {
	authSvc := &stubAuth{
		registerFn: func(ctx context.Context, req auth.RegisterRequest) (auth.LoginResponse, error) {
			require.Equal(t, "walker", req.Username)
			return auth.LoginResponse{User: auth.UserView{ID: 7, Username: "walker"}, Token: "t", RefreshToken: "r"}, nil
		},
	}
	server := newRouterUnderTest(t, services{auth: authSvc})

	for _, path := range []string{"/auth/register", "/api/auth/register"} {
		rec := performRequest(server, http.MethodPost, path, `{"email":"a@b.co","password":"pass1234","username":"walker","displayName":"W"}`, nil)
		require.Equal(t, http.StatusCreated, rec.Code, path)
	}

	authSvc.registerFn = func(ctx context.Context, req auth.RegisterRequest) (auth.LoginResponse, error) {
		return auth.LoginResponse{}, apperrors.Wrap("email_exists", "user already exists", nil)
	}
	rec := performRequest(server, http.MethodPost, "/auth/register", `{"email":"a@b.co"}`, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "email_exists", decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])
}

func TestRouter_AuthMiddleware(t *testing.T) {
	server := newRouterUnderTest(t, services{})

	cases := []struct {
		name   string
		header string
	}{
		{name: "missing header"},
		{name: "wrong scheme", header: "Basic abc"},
		{name: "bad token", header: "Bearer nope"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			headers := map[string]string{}
			if tc.header != "" {
				headers["Authorization"] = tc.header
			}
			rec := performRequest(server, http.MethodGet, "/api/conversations", "", headers)
			require.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRouter_Me(t *testing.T) {
	authSvc := &stubAuth{
		profileFn: func(ctx context.Context, userID int64) (auth.UserView, error) {
			require.Equal(t, int64(42), userID)
			return auth.UserView{ID: 42, Email: "user@example.com"}, nil
		},
	}
	server := newRouterUnderTest(t, services{auth: authSvc})

	rec := performRequest(server, http.MethodGet, "/auth/me", "", authHeader())
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		User auth.UserView `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "user@example.com", body.User.Email)
}

func TestRouter_TransformPassesRequestMeta(t *testing.T) {
	svc := &stubTransform{
		transformFn: func(ctx context.Context, meta transform.RequestMeta, req transform.Request) (transform.Response, error) {
			require.Equal(t, int64(42), meta.UserID)
			require.Equal(t, "user@example.com", meta.UserEmail)
			require.Equal(t, "203.0.113.9", meta.UserIP)
			require.Equal(t, "session-1", meta.SessionID)
			require.Equal(t, "test-agent", meta.UserAgent)
			require.Equal(t, "Buy now!!!", req.OriginalContent)
			return transform.Response{TransformationID: "abc", OriginalLength: 10}, nil
		},
	}
	server := newRouterUnderTest(t, services{transform: svc})

	headers := authHeader()
	headers["X-Forwarded-For"] = "203.0.113.9, 10.0.0.1"
	headers["X-Real-IP"] = "10.9.9.9"
	headers["X-Session-Id"] = "session-1"
	headers["User-Agent"] = "test-agent"
	rec := performRequest(server, http.MethodPost, "/transform", `{"original_content":"Buy now!!!","content_type":"marketing","target_audience":"customers"}`, headers)
	require.Equal(t, http.StatusOK, rec.Code)

	var got transform.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "abc", got.TransformationID)
	require.Equal(t, 10, got.OriginalLength)
}

func TestRouter_TransformErrors(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{name: "validation", err: apperrors.Wrap("invalid_input", "original_content is required", nil), status: http.StatusBadRequest, code: "invalid_input", message: "original_content is required"},
		{name: "upstream", err: apperrors.Wrap("llm_error", "upstream said 503 with secrets", nil), status: http.StatusInternalServerError, code: "llm_error", message: "Failed to transform content"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubTransform{
				transformFn: func(ctx context.Context, meta transform.RequestMeta, req transform.Request) (transform.Response, error) {
					return transform.Response{}, tc.err
				},
			}
			server := newRouterUnderTest(t, services{transform: svc})
			rec := performRequest(server, http.MethodPost, "/transform", `{}`, authHeader())
			require.Equal(t, tc.status, rec.Code)
			body := decodeErrorBody(t, rec.Body.Bytes())
			require.Equal(t, tc.code, body["error"]["code"])
			require.Equal(t, tc.message, body["error"]["message"])
		})
	}
}

func TestRouter_TransformHistoryQuery(t *testing.T) {
	svc := &stubTransform{
		historyFn: func(ctx context.Context, userID int64, query transform.ListQuery) (transform.ListResult, error) {
			require.Equal(t, transform.ListQuery{Limit: 5, Page: 2, PageSize: 10, ContentType: "email"}, query)
			return transform.ListResult{TotalCount: 11, Limit: 10, Offset: 10}, nil
		},
	}
	server := newRouterUnderTest(t, services{transform: svc})

	rec := performRequest(server, http.MethodGet, "/transform?limit=5&page=2&page_size=10&content_type=email", "", authHeader())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = performRequest(server, http.MethodGet, "/transform?limit=abc", "", authHeader())
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid_input", decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])
	require.Equal(t, 1, svc.historyCalls)
}

func TestRouter_TransformHistoryFiltersSubmittedContentType(t *testing.T) {
	client := &stubCompletions{
		createFn: func(context.Context, chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error) {
			resp := chatgpt.ChatCompletionResponse{}
			resp.Choices = append(resp.Choices, struct {
				Message      chatgpt.Message `json:"message"`
				FinishReason string          `json:"finish_reason"`
			}{Message: chatgpt.Message{Role: "assistant", Content: "Calm copy."}, FinishReason: "stop"})
			return resp, nil
		},
	}
	transformSvc := transform.NewService(transform.Config{}, transformrepo.NewMemoryRepository(), &stubSettings{}, client, newTestLogger())
	server := newRouterUnderTest(t, services{transform: &stubTransform{transformFn: transformSvc.Transform, historyFn: transformSvc.History}})

	rec := performRequest(server, http.MethodPost, "/transform", `{"original_content":"Huge sale!","content_type":"Marketing","target_audience":"guests"}`, authHeader())
	require.Equal(t, http.StatusOK, rec.Code)

	for _, query := range []string{"content_type=Marketing", "content_type=marketing", "content_type=%20MARKETING%20"} {
		rec = performRequest(server, http.MethodGet, "/api/transform?"+query, "", authHeader())
		require.Equal(t, http.StatusOK, rec.Code, query)
		var got transform.ListResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Equal(t, 1, got.TotalCount, query)
		require.Equal(t, "marketing", got.Transformations[0].ContentType)
	}

	rec = performRequest(server, http.MethodGet, "/transform?content_type=email", "", authHeader())
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"total_count":0`)
}

func TestRouter_MalformedBodyIsInvalidInput(t *testing.T) {
	svc := &stubTransform{}
	server := newRouterUnderTest(t, services{transform: svc})

	for _, path := range []string{"/transform", "/transform/t-1/feedback"} {
		rec := performRequest(server, http.MethodPost, path, `{"original_content":`, authHeader())
		require.Equal(t, http.StatusBadRequest, rec.Code, path)
		require.Equal(t, "invalid_input", decodeErrorBody(t, rec.Body.Bytes())["error"]["code"], path)
	}
	require.Zero(t, svc.feedbackCalls)
}

func TestRouter_TransformFeedback(t *testing.T) {
	svc := &stubTransform{
		feedbackFn: func(ctx context.Context, userID int64, id string, feedback int) (transform.FeedbackResult, error) {
			if id == "missing" {
				return transform.FeedbackResult{}, apperrors.Wrap("not_found", "transformation not found", nil)
			}
			return transform.FeedbackResult{Message: "Feedback recorded", TransformationID: id, Feedback: feedback}, nil
		},
	}
	server := newRouterUnderTest(t, services{transform: svc})

	rec := performRequest(server, http.MethodPost, "/transform/t-1/feedback", `{"feedback":4}`, authHeader())
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"message":"Feedback recorded","transformation_id":"t-1","feedback":4}`, rec.Body.String())

	for _, body := range []string{`{"feedback":"great"}`, `{"feedback":4.5}`, `{}`} {
		rec = performRequest(server, http.MethodPost, "/transform/t-1/feedback", body, authHeader())
		require.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	require.Equal(t, 1, svc.feedbackCalls)

	rec = performRequest(server, http.MethodPost, "/transform/missing/feedback", `{"feedback":2}`, authHeader())
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_ChatStreamsFrames(t *testing.T) {
	frames := []chat.Frame{
		{Type: chat.FrameContent, Content: "Hel", ConversationID: "c-1"},
		{Type: chat.FrameContent, Content: "lo", ConversationID: "c-1"},
		{Type: chat.FrameComplete, MessageID: "m-1", ConversationID: "c-1"},
	}
	svc := &stubChat{
		streamFn: func(ctx context.Context, userID int64, req chat.ChatRequest) (<-chan chat.Frame, error) {
			require.Equal(t, "c-1", req.ConversationID)
			out := make(chan chat.Frame)
			go func() {
				defer close(out)
				for _, f := range frames {
					out <- f
				}
			}()
			return out, nil
		},
	}
	server := newRouterUnderTest(t, services{chat: svc})

	rec := performRequest(server, http.MethodPost, "/api/chat", `{"message":"hi","conversationId":"c-1"}`, authHeader())
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	raw := strings.Split(strings.TrimSpace(rec.Body.String()), "\n\n")
	require.Len(t, raw, len(frames))
	for i, frame := range raw {
		require.True(t, strings.HasPrefix(frame, "data: "))
		var got chat.Frame
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(frame, "data: ")), &got))
		require.Equal(t, frames[i], got)
	}
}

func TestRouter_ChatSynchronousErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{name: "foreign conversation", err: apperrors.Wrap("not_found", "conversation not found", nil), status: http.StatusNotFound},
		{name: "user message not saved", err: apperrors.Wrap("storage_error", "failed to save message", nil), status: http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubChat{
				streamFn: func(ctx context.Context, userID int64, req chat.ChatRequest) (<-chan chat.Frame, error) {
					return nil, tc.err
				},
			}
			server := newRouterUnderTest(t, services{chat: svc})
			rec := performRequest(server, http.MethodPost, "/chat", `{"message":"hi","conversationId":"c-1"}`, authHeader())
			require.Equal(t, tc.status, rec.Code)
			require.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
		})
	}
}

func TestRouter_ConversationRoutes(t *testing.T) {
	svc := &stubChat{
		renameFn: func(ctx context.Context, userID int64, req chat.RenameRequest) (chat.Conversation, error) {
			if req.ID == "theirs" {
				return chat.Conversation{}, apperrors.Wrap("forbidden", "conversation belongs to another user", nil)
			}
			return chat.Conversation{ID: req.ID, Title: req.Title}, nil
		},
		createFn: func(ctx context.Context, userID int64, req chat.CreateConversationRequest) (chat.Conversation, error) {
			return chat.Conversation{ID: "new", Title: req.Title, Mode: "chat"}, nil
		},
	}
	server := newRouterUnderTest(t, services{chat: svc})

	rec := performRequest(server, http.MethodPost, "/conversations", `{"title":"Plans"}`, authHeader())
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Contains(t, rec.Body.String(), `"conversation"`)

	rec = performRequest(server, http.MethodPut, "/conversations/c-9", `{"title":"Renamed"}`, authHeader())
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Conversation chat.Conversation `json:"conversation"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "c-9", body.Conversation.ID)

	rec = performRequest(server, http.MethodPut, "/conversations", `{"id":"c-3","title":"Body id"}`, authHeader())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = performRequest(server, http.MethodPut, "/conversations/theirs", `{"title":"x"}`, authHeader())
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = performRequest(server, http.MethodDelete, "/conversations/c-9", "", authHeader())
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"success":true}`, rec.Body.String())
}

func TestRouter_AnalyticsPassesTimeframe(t *testing.T) {
	svc := &stubAnalytics{
		reportFn: func(ctx context.Context, userID int64, timeframe string) (analytics.Report, error) {
			require.Equal(t, "30d", timeframe)
			return analytics.Report{Timeframe: timeframe, TotalTransformations: 3}, nil
		},
	}
	server := newRouterUnderTest(t, services{analytics: svc})
	rec := performRequest(server, http.MethodGet, "/analytics?timeframe=30d", "", authHeader())
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"total_transformations":3`)
}

func TestRouter_SettingsPasscodeGuard(t *testing.T) {
	svc := &stubSettings{
		saveFn: func(ctx context.Context, updatedBy string, req settings.SaveRequest) (settings.SaveResult, error) {
			require.Equal(t, "user@example.com", updatedBy)
			return settings.SaveResult{Success: true, Saved: 1}, nil
		},
	}
	server := newRouterUnderTest(t, services{settings: svc})
	payload := `{"settings":{"prompts.main":"long enough prompt"}}`

	rec := performRequest(server, http.MethodPost, "/settings", payload, authHeader())
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, 0, svc.saveCalls)

	headers := authHeader()
	headers["X-Settings-Passcode"] = "wrong"
	rec = performRequest(server, http.MethodPut, "/settings", `{"key":"model","value":{}}`, headers)
	require.Equal(t, http.StatusForbidden, rec.Code)

	headers["X-Settings-Passcode"] = "123456"
	rec = performRequest(server, http.MethodPost, "/settings", payload, headers)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, svc.saveCalls)

	rec = performRequest(server, http.MethodGet, "/settings", "", authHeader())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = performRequest(server, http.MethodPost, "/settings/verify-passcode", `{"passcode":"123456"}`, authHeader())
	require.JSONEq(t, `{"valid":true}`, rec.Body.String())
}

func TestRouter_CORSPreflight(t *testing.T) {
	server := newRouterUnderTest(t, services{})
	rec := performRequest(server, http.MethodOptions, "/api/settings", "", map[string]string{"Origin": "https://app.example.com"})
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "X-Settings-Passcode")
	require.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "DELETE")
}

func TestIPRateLimiter(t *testing.T) {
	limiter := newIPRateLimiter(config.RateLimitConfig{Enabled: true, RequestsPerMinute: 60, Burst: 2})
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.True(t, limiter.allow("1.1.1.1", now))
	require.True(t, limiter.allow("1.1.1.1", now))
	require.False(t, limiter.allow("1.1.1.1", now))
	require.True(t, limiter.allow("2.2.2.2", now))
	require.True(t, limiter.allow("1.1.1.1", now.Add(2*time.Second)))
}

func performRequest(server *http.Server, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func authHeader() map[string]string {
	return map[string]string{"Authorization": "Bearer " + testToken}
}

type services struct {
	auth      *stubAuth
	transform *stubTransform
	chat      *stubChat
	settings  *stubSettings
	analytics *stubAnalytics
}

func newRouterUnderTest(t *testing.T, s services) *http.Server {
	t.Helper()
	if s.auth == nil {
		s.auth = &stubAuth{}
	}
	if s.transform == nil {
		s.transform = &stubTransform{}
	}
	if s.chat == nil {
		s.chat = &stubChat{}
	}
	if s.settings == nil {
		s.settings = &stubSettings{}
	}
	if s.analytics == nil {
		s.analytics = &stubAnalytics{}
	}
	handler := NewHandler(s.auth, s.transform, s.chat, s.settings, s.analytics, newTestLogger())
	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Address:        ":0",
			ReadTimeout:    time.Second,
			AllowedOrigins: []string{"https://app.example.com"},
		},
	}
	return NewRouter(cfg, handler)
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

type stubAuth struct {
	registerFn func(ctx context.Context, req auth.RegisterRequest) (auth.LoginResponse, error)
	profileFn  func(ctx context.Context, userID int64) (auth.UserView, error)
}

func (s *stubAuth) Register(ctx context.Context, req auth.RegisterRequest) (auth.LoginResponse, error) {
	if s.registerFn != nil {
		return s.registerFn(ctx, req)
	}
	return auth.LoginResponse{}, nil
}

func (s *stubAuth) Login(context.Context, auth.LoginRequest) (auth.LoginResponse, error) {
	return auth.LoginResponse{}, nil
}

func (s *stubAuth) ValidateToken(_ context.Context, token string) (auth.Claims, error) {
	if token != testToken {
		return auth.Claims{}, apperrors.Wrap("invalid_token", "token validation failed", nil)
	}
	return auth.Claims{UserID: 42, Email: "user@example.com", TokenType: "access"}, nil
}

func (s *stubAuth) Refresh(context.Context, string) (auth.LoginResponse, error) {
	return auth.LoginResponse{}, nil
}

func (s *stubAuth) Profile(ctx context.Context, userID int64) (auth.UserView, error) {
	if s.profileFn != nil {
		return s.profileFn(ctx, userID)
	}
	return auth.UserView{ID: userID}, nil
}

type stubTransform struct {
	transformFn   func(ctx context.Context, meta transform.RequestMeta, req transform.Request) (transform.Response, error)
	historyFn     func(ctx context.Context, userID int64, query transform.ListQuery) (transform.ListResult, error)
	feedbackFn    func(ctx context.Context, userID int64, id string, feedback int) (transform.FeedbackResult, error)
	historyCalls  int
	feedbackCalls int
}

func (s *stubTransform) Transform(ctx context.Context, meta transform.RequestMeta, req transform.Request) (transform.Response, error) {
	if s.transformFn != nil {
		return s.transformFn(ctx, meta, req)
	}
	return transform.Response{}, nil
}

func (s *stubTransform) History(ctx context.Context, userID int64, query transform.ListQuery) (transform.ListResult, error) {
	s.historyCalls++
	if s.historyFn != nil {
		return s.historyFn(ctx, userID, query)
	}
	return transform.ListResult{}, nil
}

func (s *stubTransform) Feedback(ctx context.Context, userID int64, id string, feedback int) (transform.FeedbackResult, error) {
	s.feedbackCalls++
	if s.feedbackFn != nil {
		return s.feedbackFn(ctx, userID, id, feedback)
	}
	return transform.FeedbackResult{}, nil
}

func (s *stubTransform) TestPrompts(context.Context, transform.TestPromptRequest) (transform.TestPromptResponse, error) {
	return transform.TestPromptResponse{TestMode: true}, nil
}

type stubChat struct {
	streamFn func(ctx context.Context, userID int64, req chat.ChatRequest) (<-chan chat.Frame, error)
	renameFn func(ctx context.Context, userID int64, req chat.RenameRequest) (chat.Conversation, error)
	createFn func(ctx context.Context, userID int64, req chat.CreateConversationRequest) (chat.Conversation, error)
}

func (s *stubChat) ListConversations(context.Context, int64) ([]chat.Conversation, error) {
	return []chat.Conversation{}, nil
}

func (s *stubChat) CreateConversation(ctx context.Context, userID int64, req chat.CreateConversationRequest) (chat.Conversation, error) {
	if s.createFn != nil {
		return s.createFn(ctx, userID, req)
	}
	return chat.Conversation{}, nil
}

func (s *stubChat) RenameConversation(ctx context.Context, userID int64, req chat.RenameRequest) (chat.Conversation, error) {
	if s.renameFn != nil {
		return s.renameFn(ctx, userID, req)
	}
	return chat.Conversation{}, nil
}

func (s *stubChat) DeleteConversation(context.Context, int64, string) error { return nil }

func (s *stubChat) ListMessages(context.Context, int64, string) ([]chat.Message, error) {
	return []chat.Message{}, nil
}

func (s *stubChat) ExportConversation(context.Context, int64, string) (chat.ExportResult, error) {
	return chat.ExportResult{}, nil
}

func (s *stubChat) Stream(ctx context.Context, userID int64, req chat.ChatRequest) (<-chan chat.Frame, error) {
	if s.streamFn != nil {
		return s.streamFn(ctx, userID, req)
	}
	out := make(chan chat.Frame)
	close(out)
	return out, nil
}

type stubCompletions struct {
	createFn func(context.Context, chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
}

func (s *stubCompletions) CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error) {
	return s.createFn(ctx, req)
}

type stubSettings struct {
	saveFn    func(ctx context.Context, updatedBy string, req settings.SaveRequest) (settings.SaveResult, error)
	saveCalls int
}

func (s *stubSettings) Get(context.Context) (settings.View, error) {
	return settings.View{Settings: settings.DefaultPrompts().Flatten(), Model: settings.DefaultModelParams()}, nil
}

func (s *stubSettings) Save(ctx context.Context, updatedBy string, req settings.SaveRequest) (settings.SaveResult, error) {
	s.saveCalls++
	if s.saveFn != nil {
		return s.saveFn(ctx, updatedBy, req)
	}
	return settings.SaveResult{}, nil
}

func (s *stubSettings) Put(context.Context, string, settings.PutRequest) (settings.SaveResult, error) {
	return settings.SaveResult{Success: true}, nil
}

func (s *stubSettings) Prompts(context.Context) (settings.Prompts, error) {
	return settings.DefaultPrompts(), nil
}

func (s *stubSettings) ModelParams(context.Context) (settings.ModelParams, error) {
	return settings.DefaultModelParams(), nil
}

func (s *stubSettings) CheckPasscode(passcode string) error {
	if !s.VerifyPasscode(passcode) {
		return apperrors.Wrap("forbidden", "settings passcode required", nil)
	}
	return nil
}

func (s *stubSettings) VerifyPasscode(passcode string) bool { return passcode == "123456" }

func (s *stubSettings) Seed(context.Context, bool) (int, error) { return 0, nil }

type stubAnalytics struct {
	reportFn func(ctx context.Context, userID int64, timeframe string) (analytics.Report, error)
}

func (s *stubAnalytics) Report(ctx context.Context, userID int64, timeframe string) (analytics.Report, error) {
	if s.reportFn != nil {
		return s.reportFn(ctx, userID, timeframe)
	}
	return analytics.Report{}, nil
}
