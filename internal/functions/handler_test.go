package functions

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"resumepro/internal/assistant"
	"resumepro/internal/credits"
	"resumepro/internal/gateway"
	"resumepro/internal/llm"
	"resumepro/internal/records"
	"resumepro/internal/scoring"
	"resumepro/internal/shared/storage/object/local"
)

type cannedLLM struct {
	reply string
}

func (c cannedLLM) Complete(context.Context, llm.Request) (string, error) {
	return c.reply, nil
}

func newTestRouter(t *testing.T, client llm.Client) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	gw := gateway.New(gateway.Options{
		Records: records.NewMemoryRepo(),
		Objects: local.New(t.TempDir()),
		Credits: credits.NewService(1),
	})
	if err := gw.RegisterFunction(gateway.FunctionAnalyzeResume, scoring.NewAnalyzer(client).Invoke); err != nil {
		t.Fatalf("register analyzer: %v", err)
	}
	if err := gw.RegisterFunction(gateway.FunctionChatAssistant, assistant.New(client).Invoke); err != nil {
		t.Fatalf("register assistant: %v", err)
	}
	r := gin.New()
	NewHandler(gw).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func post(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestInvokeAnalyzeResume(t *testing.T) {
	r := newTestRouter(t, cannedLLM{reply: `{"overallScore":120,"designScore":50,"clarityScore":50,"atsScore":50,"recommendations":["Quantify impact"]}`})

	rec := post(r, "/api/v1/functions/analyze-resume", `{"resumeText":"Go developer","fileName":"cv.pdf"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got scoring.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.OverallScore != 100 {
		t.Fatalf("expected clamped score 100, got %d", got.OverallScore)
	}
}

func TestInvokeFallsBackOnUnparsableOutput(t *testing.T) {
	r := newTestRouter(t, cannedLLM{reply: "looks great"})

	rec := post(r, "/api/v1/functions/analyze-resume", `{"resumeText":"Go developer"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got scoring.Result
	_ = json.Unmarshal(rec.Body.Bytes(), &got)
	if got.OverallScore != scoring.Fallback().OverallScore {
		t.Fatalf("expected fallback score, got %+v", got)
	}
}

func TestInvokeChatAssistant(t *testing.T) {
	r := newTestRouter(t, cannedLLM{reply: "Lead with results."})

	rec := post(r, "/api/v1/functions/chat-assistant", `{"message":"How do I start?"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("Lead with results.")) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestInvokeErrors(t *testing.T) {
	r := newTestRouter(t, cannedLLM{reply: "ok"})

	cases := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{name: "unknown function", path: "/api/v1/functions/generate-pdf", body: `{}`, status: http.StatusNotFound},
		{name: "malformed body", path: "/api/v1/functions/chat-assistant", body: `{`, status: http.StatusBadRequest},
		{name: "short message", path: "/api/v1/functions/chat-assistant", body: `{"message":" a "}`, status: http.StatusBadRequest},
		{name: "empty resume", path: "/api/v1/functions/analyze-resume", body: `{"resumeText":""}`, status: http.StatusBadRequest},
		{name: "wrong type", path: "/api/v1/functions/chat-assistant", body: `{"message":5}`, status: http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := post(r, tc.path, tc.body)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestInvokeUpstreamFailure(t *testing.T) {
	r := newTestRouter(t, llm.PlaceholderClient{})

	rec := post(r, "/api/v1/functions/chat-assistant", `{"message":"Hello there"}`)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}
