// Package export renders a book into downloadable document formats.
package export

import (
	"regexp"
	"sort"
	"strings"

	"github.com/bookwright/core/internal/models"
)

// Section is one outline row: a chapter heading without its prose.
type Section struct {
	Title       string
	Description string
}

// ChapterBody is one chapter with its full prose.
type ChapterBody struct {
	Title   string
	Content string
}

// Document is the format-independent snapshot a writer renders from.
// Either Chapters or Body is populated, not both: Chapters for a full
// book export, Body for a single generated text.
type Document struct {
	Title    string
	Author   string
	Subtitle string
	Outline  []Section
	Chapters []ChapterBody
	Body     string
}

// FromBook builds an export document from a stored book. Chapters are
// ordered by their position field regardless of storage order, so a
// reordered book exports in reading order.
func FromBook(book *models.BookModel) Document {
	chapters := make([]models.Chapter, len(book.Chapters))
	copy(chapters, book.Chapters)
	sort.SliceStable(chapters, func(i, j int) bool {
		return chapters[i].Position < chapters[j].Position
	})

	doc := Document{
		Title:    book.Title,
		Author:   book.Author,
		Subtitle: book.Subtitle,
	}
	for _, ch := range chapters {
		doc.Outline = append(doc.Outline, Section{Title: ch.Title, Description: ch.Description})
		doc.Chapters = append(doc.Chapters, ChapterBody{Title: ch.Title, Content: ch.Content})
	}
	return doc
}

var filenameUnsafe = regexp.MustCompile(`\s+`)

// AttachmentName builds a download filename from a document title.
// Whitespace runs become underscores; the extension must include the dot.
func AttachmentName(title, ext string) string {
	base := strings.TrimSpace(title)
	if base == "" {
		base = "document"
	}
	return filenameUnsafe.ReplaceAllString(base, "_") + ext
}
