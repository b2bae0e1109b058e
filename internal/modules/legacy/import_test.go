package legacy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func dumpPayload(t *testing.T, docs ...interface{}) []byte {
	t.Helper()
	var payload []byte
	for _, doc := range docs {
		raw, err := bson.Marshal(doc)
		require.NoError(t, err)
		payload = append(payload, raw...)
	}
	return payload
}

func TestDecodeBooks(t *testing.T) {
	id := primitive.NewObjectID()
	created := time.Date(2023, 4, 1, 12, 0, 0, 0, time.UTC)

	payload := dumpPayload(t, bson.M{
		"_id":       id,
		"title":     "  Legacy Book  ",
		"author":    "Old Author",
		"subtitle":  "From the archive",
		"createdAt": created,
		"updatedAt": created,
		"chapters": []bson.M{
			{"title": "One", "description": "First.", "content": "Body one."},
			{"title": "Two", "description": "Second.", "content": "Body two."},
		},
	})

	books, err := DecodeBooks("user-1", payload)
	require.NoError(t, err)
	require.Len(t, books, 1)

	book := books[0]
	assert.Equal(t, id.Hex(), book.ID)
	assert.Equal(t, "user-1", book.UserID)
	assert.Equal(t, "Legacy Book", book.Title)
	assert.Equal(t, "Old Author", book.Author)
	assert.True(t, created.Equal(book.CreatedAt))

	require.Len(t, book.Chapters, 2)
	assert.Equal(t, "One", book.Chapters[0].Title)
	assert.Equal(t, "Body two.", book.Chapters[1].Content)
	assert.NotEmpty(t, book.Chapters[0].ID)
	assert.Equal(t, 0, book.Chapters[0].Position)
	assert.Equal(t, 1, book.Chapters[1].Position)
}

func TestDecodeBooksMultipleDocuments(t *testing.T) {
	payload := dumpPayload(t,
		bson.M{"_id": primitive.NewObjectID(), "title": "First"},
		bson.M{"_id": primitive.NewObjectID(), "title": "Second"},
	)

	books, err := DecodeBooks("user-1", payload)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "First", books[0].Title)
	assert.Equal(t, "Second", books[1].Title)
}

func TestDecodeBooksSkipsUntitled(t *testing.T) {
	payload := dumpPayload(t,
		bson.M{"_id": primitive.NewObjectID()},
		bson.M{"_id": primitive.NewObjectID(), "title": "Kept"},
	)

	books, err := DecodeBooks("user-1", payload)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Kept", books[0].Title)
}

func TestDecodeBooksChapterlessGetsDefault(t *testing.T) {
	payload := dumpPayload(t, bson.M{"_id": primitive.NewObjectID(), "title": "Bare"})

	books, err := DecodeBooks("user-1", payload)
	require.NoError(t, err)
	require.Len(t, books[0].Chapters, 1)
	assert.Equal(t, "Chapter 1", books[0].Chapters[0].Title)
}

func TestDecodeBooksRejectsGarbage(t *testing.T) {
	_, err := DecodeBooks("user-1", nil)
	assert.ErrorIs(t, err, ErrEmptyDump)

	_, err = DecodeBooks("user-1", []byte{0x01, 0x02})
	assert.Error(t, err)

	// Valid first doc followed by a truncated length prefix.
	payload := dumpPayload(t, bson.M{"_id": primitive.NewObjectID(), "title": "Ok"})
	payload = append(payload, 0xFF, 0xFF, 0xFF, 0x7F)
	_, err = DecodeBooks("user-1", payload)
	assert.Error(t, err)
}
