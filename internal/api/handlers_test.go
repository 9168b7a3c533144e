package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/model"
	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/orchestrator"
	errx "github.com/Chative-core-poc-v1/frontdesk/internal/core/error"
)

type mockEngine struct {
	reply *orchestrator.Reply
	err   error
	got   *model.TurnRequest
}

func (m *mockEngine) HandleTurn(_ context.Context, req *model.TurnRequest) (*orchestrator.Reply, error) {
	m.got = req
	if err := req.Validate(); err != nil {
		return nil, errx.Validation(err.Error())
	}
	return m.reply, m.err
}

func postChat(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestChatHandler_Success(t *testing.T) {
	engine := &mockEngine{reply: &orchestrator.Reply{
		Result: &model.TurnResult{
			Message:      "Logos usually take about two weeks.",
			ResponseType: model.ResponseStrategic,
			Trigger:      "timeline",
			Context:      "trigger",
		},
		SessionID:          "s1",
		AssistantTurnCount: 2,
	}}
	srv := NewServer(engine)

	rec := postChat(t, srv, `{"sessionId":"s1","messages":[{"role":"user","content":"how long does a logo take?"}]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp model.TurnResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Logos usually take about two weeks.", resp.Message)
	assert.Equal(t, model.ResponseStrategic, resp.Debug.ResponseType)
	assert.Equal(t, "s1", resp.Debug.SessionID)
	assert.Equal(t, 2, resp.Debug.AssistantTurnCount)
	assert.NotEmpty(t, resp.Debug.RequestID)

	require.NotNil(t, engine.got)
	assert.Equal(t, "s1", engine.got.SessionID)
	assert.Equal(t, "how long does a logo take?", engine.got.CurrentText())
}

func TestChatHandler_ValidationErrors(t *testing.T) {
	srv := NewServer(&mockEngine{})

	for name, body := range map[string]string{
		"invalid json":   `{"messages":`,
		"empty messages": `{"messages":[]}`,
		"last not user":  `{"messages":[{"role":"user","content":"hi"},{"role":"assistant","content":"hello"}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := postChat(t, srv, body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp model.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, errx.TypeValidation, resp.Debug.ErrorType)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestChatHandler_UpstreamFailure(t *testing.T) {
	cases := map[string]struct {
		err         error
		wantType    string
		wantMessage string
	}{
		"rate limited": {
			err:         errx.RetryableUpstream(errors.New("429 Too Many Requests"), 429),
			wantType:    errx.TypeRateLimit,
			wantMessage: errx.BusyMessage,
		},
		"timeout": {
			err:         errx.Timeout(context.DeadlineExceeded),
			wantType:    errx.TypeTimeout,
			wantMessage: errx.TimeoutMessage,
		},
		"auth": {
			err:         errx.FatalUpstream(errors.New("401 invalid API key"), 401),
			wantType:    errx.TypeAPIConfig,
			wantMessage: errx.UnavailableMessage,
		},
		"unknown": {
			err:         errors.New("boom"),
			wantType:    errx.TypeGeneral,
			wantMessage: errx.UnavailableMessage,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			srv := NewServer(&mockEngine{err: tc.err})

			rec := postChat(t, srv, `{"messages":[{"role":"user","content":"hi"}]}`)
			require.Equal(t, http.StatusInternalServerError, rec.Code)

			var resp model.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tc.wantType, resp.Debug.ErrorType)
			assert.Equal(t, tc.wantMessage, resp.Error)
			assert.NotEmpty(t, resp.Debug.ErrorMessage)
		})
	}
}

func TestHealthHandler(t *testing.T) {
	srv := NewServer(&mockEngine{})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestChatHandler_MethodNotAllowed(t *testing.T) {
	srv := NewServer(&mockEngine{})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chat", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
