package book

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bookwright/core/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrBookNotFound  = models.ErrBookNotFound
	ErrTitleRequired = errors.New("book title is required")
)

type Service struct {
	db     *gorm.DB
	saver  *Saver
	logger *zap.Logger
}

func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	s := &Service{db: db, logger: logger}
	s.saver = NewSaver(s.writeBook, logger)
	return s
}

type CreateInput struct {
	Title    string
	Author   string
	Subtitle string
}

// Create stores a new book owned by the user. Every book starts with one
// empty chapter so the editor always has a selection target.
func (s *Service) Create(userID string, in CreateInput) (*models.BookModel, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	book := &models.BookModel{
		UserID:   userID,
		Title:    title,
		Author:   strings.TrimSpace(in.Author),
		Subtitle: strings.TrimSpace(in.Subtitle),
		Chapters: []models.Chapter{
			{ID: uuid.NewString(), Title: "Chapter 1", Position: 0},
		},
	}
	if err := s.db.Create(book).Error; err != nil {
		return nil, err
	}
	return book, nil
}

// List returns the user's books, most recently modified first.
func (s *Service) List(userID string) ([]models.BookModel, error) {
	var books []models.BookModel
	if err := s.db.Where("user_id = ?", userID).Order("updated_at DESC").Find(&books).Error; err != nil {
		return nil, err
	}
	for i := range books {
		books[i].NormalizeChapterPositions()
	}
	return books, nil
}

// Get loads one book scoped to its owner.
func (s *Service) Get(userID, id string) (*models.BookModel, error) {
	var book models.BookModel
	err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&book).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, err
	}
	book.NormalizeChapterPositions()
	return &book, nil
}

type UpdateInput struct {
	Title    *string
	Author   *string
	Subtitle *string
	Chapters []models.Chapter
}

// Update applies a metadata and chapter update to a stored book and
// persists it through the save pipeline. A nil Chapters slice leaves the
// chapters untouched; a present slice replaces them wholesale, which is
// how the editor submits edits and reorders.
func (s *Service) Update(ctx context.Context, userID, id string, in UpdateInput) (*models.BookModel, error) {
	book, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		book.Title = title
	}
	if in.Author != nil {
		book.Author = strings.TrimSpace(*in.Author)
	}
	if in.Subtitle != nil {
		book.Subtitle = strings.TrimSpace(*in.Subtitle)
	}
	if in.Chapters != nil {
		for i := range in.Chapters {
			if strings.TrimSpace(in.Chapters[i].ID) == "" {
				in.Chapters[i].ID = uuid.NewString()
			}
		}
		book.Chapters = in.Chapters
		book.NormalizeChapterPositions()
	}

	if err := s.Save(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

// Delete soft-deletes a book owned by the user.
func (s *Service) Delete(userID, id string) error {
	res := s.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.BookModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrBookNotFound
	}
	return nil
}

// UpdateCover records the public path of a freshly uploaded cover image.
func (s *Service) UpdateCover(userID, id, publicPath string) (*models.BookModel, error) {
	book, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}
	book.CoverImage = publicPath
	if err := s.db.Save(book).Error; err != nil {
		return nil, err
	}
	return book, nil
}

// Save persists the book through the coalescing saver. The save stamp
// and the dirty flag change only once the write has succeeded; a failed
// save leaves the session copy dirty.
func (s *Service) Save(ctx context.Context, book *models.BookModel) error {
	now := time.Now()
	stamped := *book
	stamped.SavedAt = &now
	if err := s.saver.Save(ctx, &stamped); err != nil {
		return err
	}
	book.SavedAt = &now
	book.Dirty = false
	return nil
}

// AutoSave persists the book in the background after a generation step.
// The outcome is unknown when the caller's response goes out, so only
// the stored row gets stamped; the session copy stays dirty until an
// explicit save confirms a write.
func (s *Service) AutoSave(book *models.BookModel) {
	now := time.Now()
	stamped := *book
	stamped.SavedAt = &now
	s.saver.AutoSave(&stamped)
}

func (s *Service) writeBook(ctx context.Context, book *models.BookModel) error {
	return s.db.WithContext(ctx).Save(book).Error
}
