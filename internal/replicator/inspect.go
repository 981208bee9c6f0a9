package replicator

import (
	"context"
	"fmt"
	"time"

	"treecopy/internal/models"
	"treecopy/internal/remote"
)

type countingVisitor struct {
	info *models.TreeInfo
}

func (v *countingVisitor) EnterContainer(ctx context.Context, parent TraversalContext, item models.RemoteItem) (string, error) {
	v.info.ContainerCount++
	if parent.Depth+1 > v.info.MaxDepth {
		v.info.MaxDepth = parent.Depth + 1
	}
	return "", nil
}

func (v *countingVisitor) VisitLeaf(ctx context.Context, parent TraversalContext, item models.RemoteItem) error {
	v.info.LeafCount++
	return nil
}

// Inspect walks the tree below rootID without modifying anything and counts
// what a replication would touch.
func Inspect(ctx context.Context, storage remote.Storage, rootID string, maxDepth int, now time.Time) (*models.TreeInfo, error) {
	name, err := storage.GetName(ctx, rootID)
	if err != nil {
		return nil, fmt.Errorf("failed to get folder name: %w", err)
	}

	info := &models.TreeInfo{RootID: rootID, RootName: name, ScannedAt: now}
	frame := TraversalContext{SourceID: rootID, Name: name}
	if err := NewWalker(storage, maxDepth).Walk(ctx, frame, &countingVisitor{info: info}); err != nil {
		return nil, err
	}
	return info, nil
}
