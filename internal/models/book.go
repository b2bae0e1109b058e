package models

import (
	"errors"
	"time"
)

// ErrBookNotFound is returned by book lookups when no record matches the
// ID within the caller's ownership scope.
var ErrBookNotFound = errors.New("book not found")

// Chapter is one ordered section of a book. Chapters are embedded in the
// book record as a JSON array; Position always matches the chapter's index
// in that array. The ID is assigned once at creation and survives reorders.
type Chapter struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Content     string `json:"content"`
	Position    int    `json:"position"`
}

// BookModel is the persisted book record.
type BookModel struct {
	Base
	UserID     string     `json:"userId"     gorm:"index;not null"`
	Title      string     `json:"title"      gorm:"not null"`
	Author     string     `json:"author"`
	Subtitle   string     `json:"subtitle"`
	CoverImage string     `json:"coverImage"`
	Chapters   []Chapter  `json:"chapters"   gorm:"type:longtext;serializer:json"`
	SavedAt    *time.Time `json:"savedAt"`

	// Dirty marks unpersisted session mutations. It never leaves the process.
	Dirty bool `json:"-" gorm:"-"`
}

func (BookModel) TableName() string { return "books" }

// Clone returns a deep copy safe to mutate in an editing session.
func (b *BookModel) Clone() *BookModel {
	out := *b
	out.Chapters = make([]Chapter, len(b.Chapters))
	copy(out.Chapters, b.Chapters)
	return &out
}

// NormalizeChapterPositions rewrites Position values to match array order.
// Persisted rows from older deployments may carry gaps; the contiguity
// invariant is re-established on every read.
func (b *BookModel) NormalizeChapterPositions() {
	for i := range b.Chapters {
		b.Chapters[i].Position = i
	}
}
