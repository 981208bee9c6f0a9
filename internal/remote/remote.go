package remote

import (
	"context"
	"fmt"

	"treecopy/internal/models"
)

// Storage is the remote capability the replicator consumes. Implementations
// issue exactly one remote request per call and never retry.
type Storage interface {
	ListChildren(ctx context.Context, containerID string) ([]models.RemoteItem, error)
	CreateContainer(ctx context.Context, name, parentID string) (string, error)
	GetName(ctx context.Context, itemID string) (string, error)
	CopyItem(ctx context.Context, itemID, destinationParentID, newName string) (string, error)
	ReparentItem(ctx context.Context, itemID, addParentID, removeParentID string) error
}

const (
	OpList     = "list"
	OpCreate   = "create"
	OpGetName  = "get-name"
	OpCopy     = "copy"
	OpReparent = "reparent"
)

// OperationError is returned by every Storage method on failure.
type OperationError struct {
	Op     string
	ItemID string
	Err    error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.ItemID, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

func NewOperationError(op, itemID string, err error) error {
	if err == nil {
		return nil
	}
	return &OperationError{Op: op, ItemID: itemID, Err: err}
}
