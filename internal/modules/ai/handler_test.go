package ai

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func aiRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(svc, zap.NewNop())
	h.RegisterRoutes(r.Group("/api"), func(c *gin.Context) { c.Next() }, nil)
	return r
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestGenerateOutlineEndpoint(t *testing.T) {
	svc, _ := newTestService(Result{Text: `[{"title": "One", "description": "First."}]`})
	r := aiRouter(svc)

	w := postJSON(r, "/api/ai/generate-outline", `{"topic": "Bee Keeping"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"outline"`)
	assert.Contains(t, w.Body.String(), `"One"`)
}

func TestGenerateOutlineAsPDF(t *testing.T) {
	svc, _ := newTestService(Result{Text: `[{"title": "One", "description": "First."}]`})
	r := aiRouter(svc)

	w := postJSON(r, "/api/ai/generate-outline", `{"topic": "Bee Keeping", "returnPdf": true}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="Bee_Keeping_outline.pdf"`)
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))
}

func TestGenerateOutlineMissingTopic(t *testing.T) {
	svc, _ := newTestService(Result{Text: `[]`})
	r := aiRouter(svc)

	w := postJSON(r, "/api/ai/generate-outline", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateChapterContentEndpoint(t *testing.T) {
	svc, fake := newTestService(Result{Text: "The hive wakes before dawn."})
	r := aiRouter(svc)

	w := postJSON(r, "/api/ai/generate-chapter-content", `{"chapterTitle": "Spring"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "The hive wakes before dawn.")
	assert.Contains(t, fake.lastPrompt, `"Spring"`)
}

func TestGenerateOutlineProviderFailure(t *testing.T) {
	svc, _ := newTestService(Result{Failure: &Failure{Kind: FailureProvider, Reason: "boom"}})
	r := aiRouter(svc)

	w := postJSON(r, "/api/ai/generate-outline", `{"topic": "Bee Keeping"}`)

	require.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), `"ok":0`)
}
