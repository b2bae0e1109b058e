package book

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bookwright/core/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func serviceWithPersist(persist PersistFunc) *Service {
	logger := zap.NewNop()
	return &Service{saver: NewSaver(persist, logger), logger: logger}
}

func TestSaveStampsOnlyAfterSuccess(t *testing.T) {
	var stored *models.BookModel
	svc := serviceWithPersist(func(_ context.Context, b *models.BookModel) error {
		stored = b
		return nil
	})

	bk := saveBook("v1")
	bk.Dirty = true

	require.NoError(t, svc.Save(context.Background(), bk))
	assert.False(t, bk.Dirty)
	require.NotNil(t, bk.SavedAt)
	assert.WithinDuration(t, time.Now(), *bk.SavedAt, time.Minute)

	require.NotNil(t, stored)
	require.NotNil(t, stored.SavedAt)
}

func TestFailedSaveLeavesBookDirty(t *testing.T) {
	svc := serviceWithPersist(func(context.Context, *models.BookModel) error {
		return errors.New("disk full")
	})

	bk := saveBook("v1")
	bk.Dirty = true

	err := svc.Save(context.Background(), bk)
	require.Error(t, err)
	assert.True(t, bk.Dirty)
	assert.Nil(t, bk.SavedAt)
}

func TestAutoSaveLeavesSessionCopyDirty(t *testing.T) {
	storedCh := make(chan *models.BookModel, 1)
	svc := serviceWithPersist(func(_ context.Context, b *models.BookModel) error {
		storedCh <- b
		return nil
	})

	bk := saveBook("v1")
	bk.Dirty = true
	svc.AutoSave(bk)

	select {
	case stored := <-storedCh:
		require.NotNil(t, stored.SavedAt)
	case <-time.After(5 * time.Second):
		t.Fatal("auto-save never persisted")
	}

	// The write outcome is unknown to the caller, so its copy keeps the
	// dirty flag and the old stamp.
	assert.True(t, bk.Dirty)
	assert.Nil(t, bk.SavedAt)
}
