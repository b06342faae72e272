package respond

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestErrorEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/x", func(c *gin.Context) {
		Error(c, http.StatusPaymentRequired, "insufficient_credits", "No credits left", gin.H{"credits": 0})
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/x", nil))

	if resp.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d", resp.Code)
	}
	var body ErrorResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "insufficient_credits" || body.Error.Message != "No credits left" {
		t.Fatalf("unexpected envelope: %+v", body)
	}
}

func TestAttachmentSetsDisposition(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/dl", func(c *gin.Context) {
		Attachment(c, `my"resume.json`, "application/json", []byte(`{}`))
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/dl", nil))

	if got := resp.Header().Get("Content-Disposition"); got != `attachment; filename="myresume.json"` {
		t.Fatalf("unexpected disposition %q", got)
	}
	if resp.Body.String() != "{}" {
		t.Fatalf("unexpected body %q", resp.Body.String())
	}
}
