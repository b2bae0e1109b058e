package ai

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/bookwright/core/internal/modules/export"
	"github.com/bookwright/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	svc    *Service
	logger *zap.Logger
}

func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc, rateMW gin.HandlerFunc) {
	g := rg.Group("/ai", authMW)
	if rateMW != nil {
		g.Use(rateMW)
	}
	g.POST("/generate-outline", h.generateOutline)
	g.POST("/generate-chapter-content", h.generateChapterContent)
}

type generateOutlineDTO struct {
	Topic       string `json:"topic" binding:"required"`
	Description string `json:"description"`
	Style       string `json:"style"`
	NumChapters int    `json:"numChapters"`
	ReturnPDF   bool   `json:"returnPdf"`
}

type generateChapterDTO struct {
	ChapterTitle       string `json:"chapterTitle" binding:"required"`
	ChapterDescription string `json:"chapterDescription"`
	Style              string `json:"style"`
	ReturnPDF          bool   `json:"returnPdf"`
}

// POST /ai/generate-outline
func (h *Handler) generateOutline(c *gin.Context) {
	var dto generateOutlineDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "please provide a topic")
		return
	}
	if dto.NumChapters == 0 {
		dto.NumChapters = DefaultChapterCount
	}

	req, err := NewOutlineRequest(dto.Topic, dto.Style, dto.NumChapters, dto.Description)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	entries, err := h.svc.GenerateOutline(c.Request.Context(), req)
	if err != nil {
		WriteGenerationError(c, err)
		return
	}

	if dto.ReturnPDF || c.Query("returnPdf") == "true" {
		sections := make([]export.Section, 0, len(entries))
		for _, entry := range entries {
			sections = append(sections, export.Section{Title: entry.Title, Description: entry.Description})
		}
		h.streamPDF(c, export.AttachmentName(req.Topic, "_outline.pdf"), export.Document{
			Title:   "Outline: " + req.Topic,
			Outline: sections,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"outline": entries})
}

// POST /ai/generate-chapter-content
func (h *Handler) generateChapterContent(c *gin.Context) {
	var dto generateChapterDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "please provide a chapter title")
		return
	}

	req, err := NewChapterRequest(dto.ChapterTitle, dto.ChapterDescription, dto.Style)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	content, err := h.svc.GenerateChapter(c.Request.Context(), req)
	if err != nil {
		WriteGenerationError(c, err)
		return
	}

	if dto.ReturnPDF || c.Query("returnPdf") == "true" {
		h.streamPDF(c, export.AttachmentName(req.Title, ".pdf"), export.Document{
			Title: req.Title,
			Body:  content,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"content": content})
}

// streamPDF renders the PDF fully into memory before sending, so a
// render failure still carries a real error status instead of a
// truncated body.
func (h *Handler) streamPDF(c *gin.Context, filename string, doc export.Document) {
	var buf bytes.Buffer
	if err := export.WritePDF(&buf, doc); err != nil {
		h.logger.Error("pdf render failed", zap.String("filename", filename), zap.Error(err))
		response.InternalError(c, errors.New("failed to render document"))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// WriteGenerationError maps a generation error onto the response
// envelope. Provider faults surface as gateway statuses so clients can
// distinguish upstream trouble from their own bad input.
func WriteGenerationError(c *gin.Context, err error) {
	var gatewayErr *GatewayError
	if errors.As(err, &gatewayErr) {
		if gatewayErr.Kind == FailureTimeout {
			response.GatewayTimeout(c, "generation timed out, please try again")
			return
		}
		response.BadGateway(c, "generation provider failed: "+gatewayErr.Reason)
		return
	}

	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		// The raw text goes back to the caller for diagnostics; there is
		// no automatic retry on malformed generator output.
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{
			"ok":      0,
			"code":    http.StatusBadGateway,
			"message": parseErr.Error(),
			"raw":     parseErr.Raw,
		})
		return
	}

	if errors.Is(err, ErrNoProvider) {
		response.BadGateway(c, ErrNoProvider.Error())
		return
	}
	if errors.Is(err, ErrInvalidInput) {
		response.BadRequest(c, err.Error())
		return
	}
	response.InternalError(c, err)
}
