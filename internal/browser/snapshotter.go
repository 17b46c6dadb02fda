package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/kalyptra/ariadne/internal/aria"
	"github.com/kalyptra/ariadne/internal/axtree"
)

const tagTimeout = 10 * time.Second

// Snapshotter rebuilds the accessible tree from the live page. It owns the
// session's reference assigner, so references stay stable across rebuilds
// for elements whose accessible identity does not change.
type Snapshotter struct {
	session *Session
	refs    *axtree.RefAssigner
	logger  *zap.Logger
}

// NewSnapshotter wires a snapshotter to a session. refPrefix is prepended
// to every minted reference, normally empty.
func NewSnapshotter(session *Session, refPrefix string, logger *zap.Logger) *Snapshotter {
	return &Snapshotter{
		session: session,
		refs:    axtree.NewRefAssigner(refPrefix),
		logger:  logger.Named("snapshotter"),
	}
}

// Snapshot settles the page, harvests the DOM, builds the tree with
// references, and tags every referenced element with data-ariadne-ref so
// the action executors can address it by CSS selector.
func (s *Snapshotter) Snapshot(ctx context.Context) (*axtree.Snapshot, error) {
	if err := s.session.Settle(ctx); err != nil {
		return nil, fmt.Errorf("settle before snapshot: %w", err)
	}
	doc, err := s.session.Harvest(ctx)
	if err != nil {
		return nil, err
	}

	oracle := aria.New(doc)
	builder := axtree.NewBuilder(oracle, s.refs, s.logger)
	snap, err := builder.Build(doc, doc.Root, axtree.Options{ForAI: true})
	if err != nil {
		return nil, err
	}

	if err := s.tagRefs(ctx, snap); err != nil {
		return nil, fmt.Errorf("tag references: %w", err)
	}
	s.logger.Debug("Snapshot built.", zap.Int("refs", len(snap.Refs)))
	return snap, nil
}

// tagRefs writes each reference onto its element as data-ariadne-ref,
// addressed by the persistent data-ariadne-id the capture script assigned.
func (s *Snapshotter) tagRefs(ctx context.Context, snap *axtree.Snapshot) error {
	if len(snap.Refs) == 0 {
		return nil
	}
	pairs := make(map[int64]string, len(snap.Refs))
	for ref, node := range snap.Refs {
		if node.BackendID != 0 {
			pairs[node.BackendID] = ref
		}
	}
	encoded, err := wireJSON.Marshal(pairs)
	if err != nil {
		return err
	}
	script := fmt.Sprintf(`((pairs) => {
        for (const [id, ref] of Object.entries(pairs)) {
            const el = document.querySelector('[data-ariadne-id="' + id + '"]');
            if (el) el.setAttribute('data-ariadne-ref', ref);
        }
    })(%s)`, encoded)

	opCtx, cancel := context.WithTimeout(ctx, tagTimeout)
	defer cancel()
	return s.session.Run(opCtx,
		chromedp.Evaluate(script, nil, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithSilent(true)
		}),
	)
}
