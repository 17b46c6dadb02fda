package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/kalyptra/ariadne/internal/semstore"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeStore records calls and serves canned responses.
type fakeStore struct {
	mu       sync.Mutex
	existing []semstore.Record
	getErr   error
	addErr   error
	delErr   error

	added   []semstore.Record
	deleted []string
}

func (f *fakeStore) Add(_ context.Context, records []semstore.Record, _ string) ([]semstore.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return nil, f.addErr
	}
	f.added = append(f.added, records...)
	return records, nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.delErr != nil {
		return f.delErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeStore) GetAll(_ context.Context, _ string) ([]semstore.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.existing, f.getErr
}

func TestSync(t *testing.T) {
	ctx := context.Background()

	t.Run("unchanged snapshot is a no-op", func(t *testing.T) {
		fake := &fakeStore{existing: []semstore.Record{
			{ID: "1", Role: "user", Content: "a"},
		}}
		s := NewSynchronizer(fake, zap.NewNop())

		added, deleted, err := s.Sync(ctx, "scope", []semstore.Record{{Role: "user", Content: "a"}})
		require.NoError(t, err)
		assert.Zero(t, added)
		assert.Zero(t, deleted)
		assert.Empty(t, fake.added)
		assert.Empty(t, fake.deleted)
	})

	t.Run("applies additions and deletions", func(t *testing.T) {
		fake := &fakeStore{existing: []semstore.Record{
			{ID: "1", Role: "user", Content: "stale"},
			{ID: "2", Role: "user", Content: "kept"},
		}}
		s := NewSynchronizer(fake, zap.NewNop())

		added, deleted, err := s.Sync(ctx, "scope", []semstore.Record{
			{Role: "user", Content: "kept"},
			{Role: "user", Content: "fresh"},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, added)
		assert.Equal(t, 1, deleted)
		require.Len(t, fake.added, 1)
		assert.Equal(t, "fresh", fake.added[0].Content)
		assert.Equal(t, []string{"1"}, fake.deleted)
	})

	t.Run("propagates load failures", func(t *testing.T) {
		loadErr := errors.New("connection refused")
		fake := &fakeStore{getErr: loadErr}
		s := NewSynchronizer(fake, zap.NewNop())

		_, _, err := s.Sync(ctx, "scope", nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, loadErr)
	})

	t.Run("propagates add failures", func(t *testing.T) {
		addErr := errors.New("insert failed")
		fake := &fakeStore{addErr: addErr}
		s := NewSynchronizer(fake, zap.NewNop())

		_, _, err := s.Sync(ctx, "scope", []semstore.Record{{Role: "user", Content: "a"}})
		require.Error(t, err)
		assert.ErrorIs(t, err, addErr)
	})

	t.Run("propagates delete failures", func(t *testing.T) {
		delErr := errors.New("delete failed")
		fake := &fakeStore{
			existing: []semstore.Record{{ID: "1", Role: "user", Content: "gone"}},
			delErr:   delErr,
		}
		s := NewSynchronizer(fake, zap.NewNop())

		_, _, err := s.Sync(ctx, "scope", nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, delErr)
	})
}
