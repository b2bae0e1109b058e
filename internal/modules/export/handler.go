package export

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/bookwright/core/internal/middleware"
	"github.com/bookwright/core/internal/models"
	"github.com/bookwright/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	pdfContentType  = "application/pdf"
	docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// BookSource loads a book scoped to its owner. Lookups for missing or
// foreign books return models.ErrBookNotFound.
type BookSource interface {
	Get(userID, id string) (*models.BookModel, error)
}

type Handler struct {
	books  BookSource
	logger *zap.Logger
}

func NewHandler(books BookSource, logger *zap.Logger) *Handler {
	return &Handler{books: books, logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/export", authMW)
	g.GET("/:id/pdf", h.exportPDF)
	g.GET("/:id/doc", h.exportDOCX)
}

// GET /export/:id/pdf
func (h *Handler) exportPDF(c *gin.Context) {
	h.export(c, ".pdf", pdfContentType, WritePDF)
}

// GET /export/:id/doc
func (h *Handler) exportDOCX(c *gin.Context) {
	h.export(c, ".docx", docxContentType, WriteDOCX)
}

// export renders the whole document into memory before any bytes go out.
// A render failure therefore still carries a real error status; the
// client never receives a truncated attachment marked successful.
func (h *Handler) export(c *gin.Context, ext, contentType string, write func(io.Writer, Document) error) {
	bk, err := h.books.Get(middleware.CurrentUserID(c), c.Param("id"))
	if errors.Is(err, models.ErrBookNotFound) {
		response.NotFoundMsg(c, err.Error())
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}

	doc := FromBook(bk)
	var buf bytes.Buffer
	if err := write(&buf, doc); err != nil {
		h.logger.Error("document render failed",
			zap.String("book_id", bk.ID),
			zap.String("format", ext),
			zap.Error(err))
		response.InternalError(c, errors.New("failed to render document"))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+AttachmentName(doc.Title, ext)+`"`)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
