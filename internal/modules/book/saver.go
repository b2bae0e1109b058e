package book

import (
	"context"
	"sync"
	"time"

	"github.com/bookwright/core/internal/models"
	"go.uber.org/zap"
)

const saveTimeout = 10 * time.Second

// PersistFunc writes a book snapshot to storage.
type PersistFunc func(ctx context.Context, book *models.BookModel) error

// Saver serializes writes per book. At most one write per book is in
// flight; saves arriving during a write coalesce into a single trailing
// write of the newest snapshot, so storage always converges on the latest
// state without a write per keystroke.
type Saver struct {
	persist PersistFunc
	logger  *zap.Logger

	mu      sync.Mutex
	flights map[string]*saveFlight
}

type saveFlight struct {
	pending *models.BookModel
	done    chan struct{}
	err     error
}

func NewSaver(persist PersistFunc, logger *zap.Logger) *Saver {
	return &Saver{
		persist: persist,
		logger:  logger,
		flights: make(map[string]*saveFlight),
	}
}

// Save persists a snapshot of the book. If a write for the same book is
// already running, the snapshot becomes that flight's trailing write and
// the call blocks until the flight drains. The returned error is the
// flight's final write outcome; ctx cancellation only stops the waiting,
// never an in-progress write.
func (s *Saver) Save(ctx context.Context, book *models.BookModel) error {
	snapshot := book.Clone()
	snapshot.Dirty = false

	s.mu.Lock()
	if f, ok := s.flights[snapshot.ID]; ok {
		f.pending = snapshot
		s.mu.Unlock()
		select {
		case <-f.done:
			return f.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	f := &saveFlight{done: make(chan struct{})}
	s.flights[snapshot.ID] = f
	s.mu.Unlock()

	current := snapshot
	var err error
	for {
		err = s.write(current)

		s.mu.Lock()
		if f.pending != nil {
			current = f.pending
			f.pending = nil
			s.mu.Unlock()
			continue
		}
		delete(s.flights, snapshot.ID)
		f.err = err
		s.mu.Unlock()
		close(f.done)
		return err
	}
}

// AutoSave persists the book in the background. Failures are logged and
// swallowed; the caller's response must not depend on the save.
func (s *Saver) AutoSave(book *models.BookModel) {
	snapshot := book.Clone()
	go func() {
		if err := s.Save(context.Background(), snapshot); err != nil {
			s.logger.Warn("auto-save failed",
				zap.String("book_id", snapshot.ID),
				zap.Error(err))
		}
	}()
}

// write runs one storage write under its own deadline. The caller's
// request context deliberately does not propagate here: a disconnecting
// client must not abort a write other callers coalesced into.
func (s *Saver) write(book *models.BookModel) error {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	return s.persist(ctx, book)
}
