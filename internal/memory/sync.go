package memory

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kalyptra/ariadne/internal/semstore"
)

// Store is the slice of the semantic store the synchronizer needs.
type Store interface {
	Add(ctx context.Context, records []semstore.Record, scope string) ([]semstore.Record, error)
	Delete(ctx context.Context, id string) error
	GetAll(ctx context.Context, scope string) ([]semstore.Record, error)
}

// Synchronizer applies snapshot deltas to the semantic store.
type Synchronizer struct {
	store Store
	log   *zap.Logger
}

// NewSynchronizer wires the synchronizer to a store.
func NewSynchronizer(store Store, logger *zap.Logger) *Synchronizer {
	return &Synchronizer{store: store, log: logger.Named("memory")}
}

// Sync brings the scope's records in line with the snapshot. Additions and
// deletions touch disjoint records, so the two batches run concurrently.
// It returns the number of records added and deleted.
func (s *Synchronizer) Sync(ctx context.Context, scope string, snapshot []semstore.Record) (added, deleted int, err error) {
	previous, err := s.store.GetAll(ctx, scope)
	if err != nil {
		return 0, 0, fmt.Errorf("load existing records: %w", err)
	}
	toAdd, toDelete := Diff(snapshot, previous)
	if len(toAdd) == 0 && len(toDelete) == 0 {
		s.log.Debug("Store already in sync.", zap.String("scope", scope))
		return 0, 0, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if len(toAdd) == 0 {
			return nil
		}
		if _, err := s.store.Add(gctx, toAdd, scope); err != nil {
			return fmt.Errorf("add records: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		for _, id := range toDelete {
			if err := s.store.Delete(gctx, id); err != nil {
				return fmt.Errorf("delete record %s: %w", id, err)
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return 0, 0, err
	}

	s.log.Info("Synchronized semantic store.",
		zap.String("scope", scope),
		zap.Int("added", len(toAdd)),
		zap.Int("deleted", len(toDelete)))
	return len(toAdd), len(toDelete), nil
}
