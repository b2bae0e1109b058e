package legacy

import (
	"errors"
	"io"
	"net/http"

	"github.com/bookwright/core/internal/middleware"
	"github.com/bookwright/core/internal/models"
	"github.com/bookwright/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxDumpSize = 64 << 20

type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// ImportResult summarizes one dump import.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// Import stores every decodable book from the dump under the importing
// user. Books whose ID already exists are skipped, so importing the same
// dump twice is harmless.
func (s *Service) Import(userID string, payload []byte) (ImportResult, error) {
	books, err := DecodeBooks(userID, payload)
	if err != nil {
		return ImportResult{}, err
	}

	var result ImportResult
	err = s.db.Transaction(func(tx *gorm.DB) error {
		for i := range books {
			var count int64
			if err := tx.Model(&models.BookModel{}).Where("id = ?", books[i].ID).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				result.Skipped++
				continue
			}
			if err := tx.Create(&books[i]).Error; err != nil {
				return err
			}
			result.Imported++
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}

	s.logger.Info("legacy dump imported",
		zap.String("user_id", userID),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/books", authMW)
	g.POST("/import", h.importDump)
}

// POST /books/import
func (h *Handler) importDump(c *gin.Context) {
	file, err := c.FormFile("dump")
	if err != nil {
		response.BadRequest(c, "please attach a .bson dump file")
		return
	}
	if file.Size > maxDumpSize {
		response.BadRequest(c, "dump exceeds the 64MB limit")
		return
	}

	f, err := file.Open()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	defer f.Close()

	payload, err := io.ReadAll(f)
	if err != nil {
		response.InternalError(c, err)
		return
	}

	result, err := h.svc.Import(middleware.CurrentUserID(c), payload)
	if err != nil {
		if errors.Is(err, ErrEmptyDump) {
			response.UnprocessableEntity(c, err.Error())
			return
		}
		response.BadRequest(c, "could not decode dump: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, result)
}
