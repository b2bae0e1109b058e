package book

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bookwright/core/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// recordingPersist captures every persisted snapshot. An optional gate
// blocks the first write until released so tests can pile saves up
// behind it.
type recordingPersist struct {
	mu      sync.Mutex
	titles  []string
	err     error
	gate    chan struct{}
	entered chan struct{}
	gated   bool
}

func (p *recordingPersist) fn(_ context.Context, book *models.BookModel) error {
	p.mu.Lock()
	first := !p.gated
	if first {
		p.gated = true
	}
	p.mu.Unlock()

	if first && p.gate != nil {
		close(p.entered)
		<-p.gate
	}

	p.mu.Lock()
	p.titles = append(p.titles, book.Title)
	p.mu.Unlock()
	return p.err
}

func (p *recordingPersist) persisted() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.titles))
	copy(out, p.titles)
	return out
}

func saveBook(title string) *models.BookModel {
	return &models.BookModel{
		Base:     models.Base{ID: "book-1"},
		Title:    title,
		Chapters: chapterList("a"),
		Dirty:    true,
	}
}

func TestSaverWritesSnapshot(t *testing.T) {
	persist := &recordingPersist{}
	saver := NewSaver(persist.fn, zap.NewNop())

	book := saveBook("v1")
	require.NoError(t, saver.Save(context.Background(), book))

	// The caller's record is untouched; only the snapshot was cleaned.
	assert.True(t, book.Dirty)
	assert.Equal(t, []string{"v1"}, persist.persisted())
}

func TestSaverPropagatesWriteError(t *testing.T) {
	wantErr := errors.New("disk full")
	persist := &recordingPersist{err: wantErr}
	saver := NewSaver(persist.fn, zap.NewNop())

	err := saver.Save(context.Background(), saveBook("v1"))
	assert.ErrorIs(t, err, wantErr)
}

func TestSaverCoalescesConcurrentSaves(t *testing.T) {
	persist := &recordingPersist{
		gate:    make(chan struct{}),
		entered: make(chan struct{}),
	}
	saver := NewSaver(persist.fn, zap.NewNop())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, saver.Save(context.Background(), saveBook("v1")))
	}()
	<-persist.entered

	// Two more saves arrive while v1 is mid-write. They coalesce into a
	// single trailing write of the newest snapshot.
	wg.Add(2)
	go func() {
		defer wg.Done()
		assert.NoError(t, saver.Save(context.Background(), saveBook("v2")))
	}()
	require.Eventually(t, func() bool {
		saver.mu.Lock()
		defer saver.mu.Unlock()
		f, ok := saver.flights["book-1"]
		return ok && f.pending != nil
	}, time.Second, time.Millisecond)
	go func() {
		defer wg.Done()
		assert.NoError(t, saver.Save(context.Background(), saveBook("v3")))
	}()
	require.Eventually(t, func() bool {
		saver.mu.Lock()
		defer saver.mu.Unlock()
		f, ok := saver.flights["book-1"]
		return ok && f.pending != nil && f.pending.Title == "v3"
	}, time.Second, time.Millisecond)

	close(persist.gate)
	wg.Wait()

	// v2 never reached storage on its own; v3 superseded it.
	assert.Equal(t, []string{"v1", "v3"}, persist.persisted())

	saver.mu.Lock()
	assert.Empty(t, saver.flights)
	saver.mu.Unlock()
}

func TestSaverSeparateBooksDoNotSerialize(t *testing.T) {
	persist := &recordingPersist{}
	saver := NewSaver(persist.fn, zap.NewNop())

	other := saveBook("other")
	other.ID = "book-2"

	require.NoError(t, saver.Save(context.Background(), saveBook("v1")))
	require.NoError(t, saver.Save(context.Background(), other))
	assert.Equal(t, []string{"v1", "other"}, persist.persisted())
}

func TestAutoSaveLogsFailure(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	persist := &recordingPersist{err: errors.New("timeout")}
	saver := NewSaver(persist.fn, zap.New(core))

	saver.AutoSave(saveBook("v1"))

	require.Eventually(t, func() bool {
		return logs.FilterMessage("auto-save failed").Len() == 1
	}, time.Second, time.Millisecond)

	entry := logs.FilterMessage("auto-save failed").All()[0]
	assert.Equal(t, "book-1", entry.ContextMap()["book_id"])
}
