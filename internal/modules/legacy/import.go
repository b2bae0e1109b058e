// Package legacy ingests mongodump exports from the previous deployment
// of the service, which stored books in MongoDB.
package legacy

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bookwright/core/internal/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrEmptyDump marks an uploaded dump with no decodable documents.
var ErrEmptyDump = errors.New("dump contains no book documents")

type legacyChapter struct {
	Title       string `bson:"title"`
	Description string `bson:"description"`
	Content     string `bson:"content"`
}

type legacyBook struct {
	ID         primitive.ObjectID `bson:"_id"`
	Title      string             `bson:"title"`
	Author     string             `bson:"author"`
	Subtitle   string             `bson:"subtitle"`
	CoverImage string             `bson:"coverImage"`
	Chapters   []legacyChapter    `bson:"chapters"`
	CreatedAt  time.Time          `bson:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt"`
}

// DecodeBooks parses a mongodump .bson payload: a back-to-back stream of
// length-prefixed BSON documents with no outer framing. Documents without
// a title are dropped rather than failing the whole import.
func DecodeBooks(userID string, payload []byte) ([]models.BookModel, error) {
	if len(payload) == 0 {
		return nil, ErrEmptyDump
	}

	books := make([]models.BookModel, 0)
	cursor := 0
	for cursor < len(payload) {
		if cursor+4 > len(payload) {
			return nil, fmt.Errorf("invalid bson payload at offset %d", cursor)
		}
		docLen := int(int32(binary.LittleEndian.Uint32(payload[cursor : cursor+4])))
		if docLen <= 0 || cursor+docLen > len(payload) {
			return nil, fmt.Errorf("invalid bson document length at offset %d", cursor)
		}

		var doc legacyBook
		if err := bson.Unmarshal(payload[cursor:cursor+docLen], &doc); err != nil {
			return nil, fmt.Errorf("decode bson document at offset %d: %w", cursor, err)
		}
		cursor += docLen

		if strings.TrimSpace(doc.Title) == "" {
			continue
		}
		books = append(books, convertBook(userID, doc))
	}

	if len(books) == 0 {
		return nil, ErrEmptyDump
	}
	return books, nil
}

// convertBook maps one legacy document onto the current schema. The
// ObjectID hex survives as the book ID so a re-imported dump overwrites
// instead of duplicating. Legacy chapters had no IDs or positions; both
// are assigned here.
func convertBook(userID string, doc legacyBook) models.BookModel {
	book := models.BookModel{
		Base: models.Base{
			ID:        doc.ID.Hex(),
			CreatedAt: doc.CreatedAt,
			UpdatedAt: doc.UpdatedAt,
		},
		UserID:     userID,
		Title:      strings.TrimSpace(doc.Title),
		Author:     strings.TrimSpace(doc.Author),
		Subtitle:   strings.TrimSpace(doc.Subtitle),
		CoverImage: strings.TrimSpace(doc.CoverImage),
	}

	for i, ch := range doc.Chapters {
		book.Chapters = append(book.Chapters, models.Chapter{
			ID:          uuid.NewString(),
			Title:       strings.TrimSpace(ch.Title),
			Description: strings.TrimSpace(ch.Description),
			Content:     ch.Content,
			Position:    i,
		})
	}
	if len(book.Chapters) == 0 {
		book.Chapters = []models.Chapter{
			{ID: uuid.NewString(), Title: "Chapter 1", Position: 0},
		}
	}
	return book
}
