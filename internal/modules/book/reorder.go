package book

import (
	"errors"

	"github.com/bookwright/core/internal/models"
)

// ErrIndexOutOfRange marks a chapter move with an index outside the list.
var ErrIndexOutOfRange = errors.New("chapter index out of range")

// MoveChapter returns a new slice with the chapter at from relocated to
// to, everything in between shifted by one, and positions renumbered to
// match the new order. The input slice is never mutated. A move to the
// same index returns a renumbered copy unchanged in order.
func MoveChapter(chapters []models.Chapter, from, to int) ([]models.Chapter, error) {
	if from < 0 || from >= len(chapters) || to < 0 || to >= len(chapters) {
		return nil, ErrIndexOutOfRange
	}

	out := make([]models.Chapter, len(chapters))
	copy(out, chapters)

	if from != to {
		moved := out[from]
		out = append(out[:from], out[from+1:]...)
		out = append(out[:to], append([]models.Chapter{moved}, out[to:]...)...)
	}

	for i := range out {
		out[i].Position = i
	}
	return out, nil
}
