package replicator

import (
	"context"
	"errors"
	"fmt"

	"treecopy/internal/models"
	"treecopy/internal/remote"
)

// DefaultMaxDepth bounds recursion below the root container.
const DefaultMaxDepth = 256

var ErrMaxDepthExceeded = errors.New("maximum folder depth exceeded")

// TraversalContext is one descent step: the container being read, the
// container receiving its mirror and the display name used for narration.
type TraversalContext struct {
	SourceID      string
	DestinationID string
	Name          string
	Depth         int
}

// Visitor receives the children of every walked container.
type Visitor interface {
	// EnterContainer is called before the walker descends into item and
	// returns the destination id for the descent.
	EnterContainer(ctx context.Context, parent TraversalContext, item models.RemoteItem) (string, error)
	VisitLeaf(ctx context.Context, parent TraversalContext, item models.RemoteItem) error
}

// Walker performs a depth-first, pre-order descent. Children are processed in
// the order the storage lists them and every sub-container is finished before
// the next sibling. The remote hierarchy is assumed to be acyclic.
type Walker struct {
	storage  remote.Storage
	maxDepth int

	// OnContainer, when set, is called once per container before listing.
	OnContainer func(TraversalContext)
}

func NewWalker(storage remote.Storage, maxDepth int) *Walker {
	return &Walker{storage: storage, maxDepth: maxDepth}
}

func (w *Walker) Walk(ctx context.Context, frame TraversalContext, v Visitor) error {
	if w.maxDepth > 0 && frame.Depth > w.maxDepth {
		return fmt.Errorf("%w: %q is at depth %d (limit %d)", ErrMaxDepthExceeded, frame.Name, frame.Depth, w.maxDepth)
	}
	if w.OnContainer != nil {
		w.OnContainer(frame)
	}

	items, err := w.storage.ListChildren(ctx, frame.SourceID)
	if err != nil {
		return fmt.Errorf("failed to list folder %q: %w", frame.Name, err)
	}

	for _, item := range items {
		if !item.IsContainer() {
			if err := v.VisitLeaf(ctx, frame, item); err != nil {
				return err
			}
			continue
		}

		destinationID, err := v.EnterContainer(ctx, frame, item)
		if err != nil {
			return err
		}
		child := TraversalContext{
			SourceID:      item.ID,
			DestinationID: destinationID,
			Name:          item.Name,
			Depth:         frame.Depth + 1,
		}
		if err := w.Walk(ctx, child, v); err != nil {
			return err
		}
	}
	return nil
}
