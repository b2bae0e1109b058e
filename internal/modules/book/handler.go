package book

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/bookwright/core/internal/middleware"
	"github.com/bookwright/core/internal/models"
	"github.com/bookwright/core/internal/modules/ai"
	"github.com/bookwright/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxCoverSize = 5 << 20

type Handler struct {
	svc       *Service
	aiSvc     *ai.Service
	uploadDir string
	logger    *zap.Logger
}

func NewHandler(svc *Service, aiSvc *ai.Service, uploadDir string, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, aiSvc: aiSvc, uploadDir: uploadDir, logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/books", authMW)

	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
	g.PUT("/cover/:id", h.updateCover)

	g.POST("/:id/outline", h.applyOutline)
	g.POST("/:id/chapters", h.addChapter)
	g.DELETE("/:id/chapters/:chapterId", h.deleteChapter)
	g.PUT("/:id/chapters/reorder", h.reorderChapters)
	g.POST("/:id/chapters/:chapterId/generate", h.generateChapterContent)
}

type createBookDTO struct {
	Title    string `json:"title" binding:"required"`
	Author   string `json:"author"`
	Subtitle string `json:"subtitle"`
}

type updateBookDTO struct {
	Title    *string          `json:"title"`
	Author   *string          `json:"author"`
	Subtitle *string          `json:"subtitle"`
	Chapters []models.Chapter `json:"chapters"`
}

type applyOutlineDTO struct {
	Topic       string `json:"topic" binding:"required"`
	Description string `json:"description"`
	Style       string `json:"style"`
	NumChapters int    `json:"numChapters"`
	Mode        string `json:"mode"`
}

type addChapterDTO struct {
	Title string `json:"title"`
}

type reorderDTO struct {
	From int `json:"from" binding:"min=0"`
	To   int `json:"to" binding:"min=0"`
}

type generateChapterDTO struct {
	Style string `json:"style"`
}

// POST /books
func (h *Handler) create(c *gin.Context) {
	var dto createBookDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "please provide a title")
		return
	}

	book, err := h.svc.Create(middleware.CurrentUserID(c), CreateInput{
		Title:    dto.Title,
		Author:   dto.Author,
		Subtitle: dto.Subtitle,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Created(c, book)
}

// GET /books
func (h *Handler) list(c *gin.Context) {
	books, err := h.svc.List(middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, books)
}

// GET /books/:id
func (h *Handler) get(c *gin.Context) {
	book, err := h.svc.Get(middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.OK(c, book)
}

// PUT /books/:id
func (h *Handler) update(c *gin.Context) {
	var dto updateBookDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	book, err := h.svc.Update(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"), UpdateInput{
		Title:    dto.Title,
		Author:   dto.Author,
		Subtitle: dto.Subtitle,
		Chapters: dto.Chapters,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.OK(c, book)
}

// DELETE /books/:id
func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(middleware.CurrentUserID(c), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	response.NoContent(c)
}

// PUT /books/cover/:id
func (h *Handler) updateCover(c *gin.Context) {
	file, err := c.FormFile("cover")
	if err != nil {
		response.BadRequest(c, "please attach a cover image")
		return
	}
	if file.Size > maxCoverSize {
		response.BadRequest(c, "cover image exceeds the 5MB limit")
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		response.BadRequest(c, "cover must be a jpg, png or webp image")
		return
	}

	dir := filepath.Join(h.uploadDir, "covers")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		response.InternalError(c, err)
		return
	}
	name := uuid.NewString() + ext
	if err := c.SaveUploadedFile(file, filepath.Join(dir, name)); err != nil {
		response.InternalError(c, err)
		return
	}

	book, err := h.svc.UpdateCover(middleware.CurrentUserID(c), c.Param("id"), "/static/covers/"+name)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.OK(c, book)
}

// POST /books/:id/outline
//
// Generates an outline for the topic and folds it into the stored book.
// Mode "append" keeps existing chapters; anything else replaces them.
func (h *Handler) applyOutline(c *gin.Context) {
	var dto applyOutlineDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "please provide a topic")
		return
	}
	if dto.NumChapters == 0 {
		dto.NumChapters = ai.DefaultChapterCount
	}

	userID := middleware.CurrentUserID(c)
	if _, err := h.svc.Get(userID, c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}

	req, err := ai.NewOutlineRequest(dto.Topic, dto.Style, dto.NumChapters, dto.Description)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	entries, err := h.aiSvc.GenerateOutline(c.Request.Context(), req)
	if err != nil {
		ai.WriteGenerationError(c, err)
		return
	}

	// Re-read after the slow generation call so concurrent edits made in
	// the meantime are folded in, not overwritten.
	book, err := h.svc.Get(userID, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	mode := OutlineReplace
	if strings.EqualFold(dto.Mode, string(OutlineAppend)) {
		mode = OutlineAppend
	}
	state := NewState(book)
	if err := state.ApplyOutline(entries, mode); err != nil {
		h.writeError(c, err)
		return
	}

	h.svc.AutoSave(state.Book)
	c.JSON(http.StatusOK, gin.H{"outline": entries, "book": state.Book})
}

// POST /books/:id/chapters
func (h *Handler) addChapter(c *gin.Context) {
	var dto addChapterDTO
	_ = c.ShouldBindJSON(&dto)

	book, err := h.svc.Get(middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	state := NewState(book)
	chapter := state.AddChapter(dto.Title)
	if err := h.svc.Save(c.Request.Context(), state.Book); err != nil {
		response.InternalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"chapter": chapter, "book": state.Book})
}

// DELETE /books/:id/chapters/:chapterId
func (h *Handler) deleteChapter(c *gin.Context) {
	book, err := h.svc.Get(middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	state := NewState(book)
	if err := state.DeleteChapter(c.Param("chapterId")); err != nil {
		h.writeError(c, err)
		return
	}
	if err := h.svc.Save(c.Request.Context(), state.Book); err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, state.Book)
}

// PUT /books/:id/chapters/reorder
func (h *Handler) reorderChapters(c *gin.Context) {
	var dto reorderDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "please provide from and to positions")
		return
	}

	book, err := h.svc.Get(middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	state := NewState(book)
	if err := state.MoveChapter(dto.From, dto.To); err != nil {
		h.writeError(c, err)
		return
	}
	if err := h.svc.Save(c.Request.Context(), state.Book); err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, state.Book)
}

// POST /books/:id/chapters/:chapterId/generate
//
// Generates prose for one chapter and writes it into the stored book.
func (h *Handler) generateChapterContent(c *gin.Context) {
	var dto generateChapterDTO
	_ = c.ShouldBindJSON(&dto)

	userID := middleware.CurrentUserID(c)
	book, err := h.svc.Get(userID, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	chapterID := c.Param("chapterId")
	var target *models.Chapter
	for i := range book.Chapters {
		if book.Chapters[i].ID == chapterID {
			target = &book.Chapters[i]
			break
		}
	}
	if target == nil {
		h.writeError(c, ErrChapterNotFound)
		return
	}

	req, err := ai.NewChapterRequest(target.Title, target.Description, dto.Style)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	content, err := h.aiSvc.GenerateChapter(c.Request.Context(), req)
	if err != nil {
		ai.WriteGenerationError(c, err)
		return
	}

	// The book may have been edited while generation ran. Splice into the
	// current record, not the pre-call snapshot.
	book, err = h.svc.Get(userID, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	state := NewState(book)
	if err := state.SetChapterContent(chapterID, content); err != nil {
		h.writeError(c, err)
		return
	}

	h.svc.AutoSave(state.Book)
	c.JSON(http.StatusOK, gin.H{"content": content, "book": state.Book})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrBookNotFound):
		response.NotFoundMsg(c, ErrBookNotFound.Error())
	case errors.Is(err, ErrChapterNotFound):
		response.NotFoundMsg(c, ErrChapterNotFound.Error())
	case errors.Is(err, ErrLastChapter):
		response.Conflict(c, ErrLastChapter.Error())
	case errors.Is(err, ErrEmptyOutline):
		response.UnprocessableEntity(c, ErrEmptyOutline.Error())
	case errors.Is(err, ErrTitleRequired):
		response.BadRequest(c, ErrTitleRequired.Error())
	case errors.Is(err, ErrIndexOutOfRange):
		response.BadRequest(c, ErrIndexOutOfRange.Error())
	default:
		response.InternalError(c, err)
	}
}
