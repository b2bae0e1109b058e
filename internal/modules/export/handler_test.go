package export

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bookwright/core/internal/middleware"
	"github.com/bookwright/core/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeBookSource struct {
	book *models.BookModel
	err  error

	lastUserID string
	lastID     string
}

func (f *fakeBookSource) Get(userID, id string) (*models.BookModel, error) {
	f.lastUserID = userID
	f.lastID = id
	if f.err != nil {
		return nil, f.err
	}
	return f.book, nil
}

func exportRouter(src BookSource) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(src, zap.NewNop())
	h.RegisterRoutes(r.Group("/api"), func(c *gin.Context) {
		c.Set(middleware.ContextKeyUserID, "user-1")
		c.Next()
	})
	return r
}

func TestExportPDFEndpoint(t *testing.T) {
	src := &fakeBookSource{book: exportBook()}
	r := exportRouter(src)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/export/book-1/pdf", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", src.lastUserID)
	assert.Equal(t, "book-1", src.lastID)
	assert.Equal(t, pdfContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="The_Silk_Road.pdf"`)
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))
}

func TestExportDOCXEndpoint(t *testing.T) {
	r := exportRouter(&fakeBookSource{book: exportBook()})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/export/book-1/doc", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, docxContentType, w.Header().Get("Content-Type"))
	// Zip local file header magic.
	assert.True(t, strings.HasPrefix(w.Body.String(), "PK"))
}

func TestExportUnknownBookIs404(t *testing.T) {
	r := exportRouter(&fakeBookSource{err: models.ErrBookNotFound})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/export/missing/pdf", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"ok":0`)
}

func TestExportRenderFailureIsErrorStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHandler(&fakeBookSource{book: exportBook()}, zap.NewNop())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/export/book-1/pdf", nil)
	c.Set(middleware.ContextKeyUserID, "user-1")
	c.Params = gin.Params{{Key: "id", Value: "book-1"}}

	h.export(c, ".pdf", pdfContentType, func(io.Writer, Document) error {
		return errors.New("render blew up")
	})

	// The failure surfaces as a JSON error, never as a truncated file.
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"ok":0`)
	assert.Empty(t, w.Header().Get("Content-Disposition"))
}
