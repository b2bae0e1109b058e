package book

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bookwright/core/internal/models"
	"github.com/bookwright/core/internal/modules/ai"
	"github.com/google/uuid"
)

var (
	// ErrChapterNotFound marks an operation against a chapter ID that is
	// not in the book.
	ErrChapterNotFound = errors.New("chapter not found")
	// ErrLastChapter guards against deleting the only remaining chapter.
	ErrLastChapter = errors.New("a book must keep at least one chapter")
	// ErrEmptyOutline rejects replacing all chapters with nothing.
	ErrEmptyOutline = errors.New("outline has no chapters")
	// ErrUnknownField marks a metadata update for a field that does not exist.
	ErrUnknownField = errors.New("unknown book field")
)

// OutlineMode selects how a generated outline is folded into the book.
type OutlineMode string

const (
	// OutlineReplace discards existing chapters in favor of the outline.
	OutlineReplace OutlineMode = "replace"
	// OutlineAppend adds outline chapters after the existing ones.
	OutlineAppend OutlineMode = "append"
)

// State is one editing session over a book. It owns a deep copy of the
// record, so mutations never leak into shared model instances until the
// state is persisted. Selected always indexes a valid chapter while the
// book has any.
type State struct {
	Book     *models.BookModel
	Selected int
}

// NewState opens an editing session over a snapshot of the given book.
func NewState(book *models.BookModel) *State {
	clone := book.Clone()
	clone.NormalizeChapterPositions()
	return &State{Book: clone}
}

// Select moves the chapter selection, clamping to the valid range.
func (s *State) Select(index int) {
	s.Selected = s.clamp(index)
}

// SelectedChapter returns the currently selected chapter, or nil when the
// book has none.
func (s *State) SelectedChapter() *models.Chapter {
	if len(s.Book.Chapters) == 0 {
		return nil
	}
	s.Selected = s.clamp(s.Selected)
	return &s.Book.Chapters[s.Selected]
}

// ApplyOutline folds parsed outline entries into the book. Replace mode
// swaps out every chapter and resets the selection; append mode keeps
// existing chapters and their content. Entry order becomes chapter order.
func (s *State) ApplyOutline(entries []ai.OutlineEntry, mode OutlineMode) error {
	if mode == OutlineReplace && len(entries) == 0 {
		return ErrEmptyOutline
	}

	fresh := make([]models.Chapter, 0, len(entries))
	for _, entry := range entries {
		fresh = append(fresh, models.Chapter{
			ID:          uuid.NewString(),
			Title:       entry.Title,
			Description: entry.Description,
		})
	}

	switch mode {
	case OutlineAppend:
		s.Book.Chapters = append(s.Book.Chapters, fresh...)
	default:
		s.Book.Chapters = fresh
		s.Selected = 0
	}
	s.Book.NormalizeChapterPositions()
	s.markDirty()
	return nil
}

// SetChapterContent replaces the prose of the chapter with the given ID.
func (s *State) SetChapterContent(chapterID, content string) error {
	for i := range s.Book.Chapters {
		if s.Book.Chapters[i].ID == chapterID {
			s.Book.Chapters[i].Content = content
			s.markDirty()
			return nil
		}
	}
	return ErrChapterNotFound
}

// AddChapter appends an empty chapter and selects it. A blank title gets
// a numbered placeholder.
func (s *State) AddChapter(title string) *models.Chapter {
	title = strings.TrimSpace(title)
	if title == "" {
		title = fmt.Sprintf("Chapter %d", len(s.Book.Chapters)+1)
	}
	chapter := models.Chapter{
		ID:       uuid.NewString(),
		Title:    title,
		Position: len(s.Book.Chapters),
	}
	s.Book.Chapters = append(s.Book.Chapters, chapter)
	s.Selected = len(s.Book.Chapters) - 1
	s.markDirty()
	return &s.Book.Chapters[s.Selected]
}

// DeleteChapter removes the chapter with the given ID. The last chapter
// cannot be deleted. Remaining chapters renumber densely and the
// selection clamps to the nearest surviving chapter.
func (s *State) DeleteChapter(chapterID string) error {
	if len(s.Book.Chapters) <= 1 {
		return ErrLastChapter
	}

	index := -1
	for i := range s.Book.Chapters {
		if s.Book.Chapters[i].ID == chapterID {
			index = i
			break
		}
	}
	if index == -1 {
		return ErrChapterNotFound
	}

	s.Book.Chapters = append(s.Book.Chapters[:index], s.Book.Chapters[index+1:]...)
	s.Book.NormalizeChapterPositions()
	if s.Selected >= index {
		s.Selected = s.clamp(s.Selected - 1)
	}
	s.markDirty()
	return nil
}

// MoveChapter relocates a chapter between positions. The selection keeps
// following the chapter it pointed at before the move.
func (s *State) MoveChapter(from, to int) error {
	var selectedID string
	if ch := s.SelectedChapter(); ch != nil {
		selectedID = ch.ID
	}

	moved, err := MoveChapter(s.Book.Chapters, from, to)
	if err != nil {
		return err
	}
	s.Book.Chapters = moved

	for i := range s.Book.Chapters {
		if s.Book.Chapters[i].ID == selectedID {
			s.Selected = i
			break
		}
	}
	s.markDirty()
	return nil
}

// UpdateField sets one piece of book metadata by field name.
func (s *State) UpdateField(field, value string) error {
	switch strings.ToLower(field) {
	case "title":
		s.Book.Title = value
	case "author":
		s.Book.Author = value
	case "subtitle":
		s.Book.Subtitle = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	s.markDirty()
	return nil
}

func (s *State) markDirty() { s.Book.Dirty = true }

func (s *State) clamp(index int) int {
	if index < 0 {
		return 0
	}
	if max := len(s.Book.Chapters) - 1; index > max {
		if max < 0 {
			return 0
		}
		return max
	}
	return index
}
