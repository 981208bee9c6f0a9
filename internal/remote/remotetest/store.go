// Package remotetest provides an in-memory remote.Storage for tests.
package remotetest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"treecopy/internal/models"
	"treecopy/internal/remote"
)

var (
	ErrNotFound     = errors.New("item not found")
	ErrNotContainer = errors.New("item is not a container")
	ErrNotLeaf      = errors.New("item is not a leaf")
	ErrNotParent    = errors.New("item is not a child of the given parent")
)

type Call struct {
	Op     string
	ItemID string
}

type node struct {
	id       string
	name     string
	kind     models.ItemKind
	parent   string
	children []string
}

// Store keeps a single-parent item tree in memory. Children are listed in
// insertion order.
type Store struct {
	items    map[string]*node
	failures map[string]error
	seq      int

	// FailFunc, when set, is consulted on every call after FailOn.
	FailFunc func(op, itemID string) error

	Calls []Call
}

func NewStore() *Store {
	return &Store{
		items:    make(map[string]*node),
		failures: make(map[string]error),
	}
}

// AddContainer creates a container without recording a call. An empty
// parentID creates a top-level root.
func (s *Store) AddContainer(name, parentID string) string {
	return s.add(name, parentID, models.KindContainer)
}

// AddLeaf creates a leaf without recording a call.
func (s *Store) AddLeaf(name, parentID string) string {
	return s.add(name, parentID, models.KindLeaf)
}

// FailOn makes every call of op against itemID fail with err.
func (s *Store) FailOn(op, itemID string, err error) {
	s.failures[op+"|"+itemID] = err
}

func (s *Store) Exists(id string) bool {
	_, ok := s.items[id]
	return ok
}

func (s *Store) Parent(id string) string {
	if n, ok := s.items[id]; ok {
		return n.parent
	}
	return ""
}

func (s *Store) Children(id string) []models.RemoteItem {
	n, ok := s.items[id]
	if !ok {
		return nil
	}
	out := make([]models.RemoteItem, 0, len(n.children))
	for _, childID := range n.children {
		c := s.items[childID]
		out = append(out, models.RemoteItem{ID: c.id, Name: c.name, Kind: c.kind})
	}
	return out
}

// Shape renders the subtree below id by name, with siblings sorted, so two
// trees with the same nesting and membership produce the same string.
func (s *Store) Shape(id string) string {
	n, ok := s.items[id]
	if !ok {
		return ""
	}
	parts := make([]string, 0, len(n.children))
	for _, childID := range n.children {
		c := s.items[childID]
		if c.kind == models.KindContainer {
			parts = append(parts, c.name+s.Shape(childID))
		} else {
			parts = append(parts, c.name)
		}
	}
	sort.Strings(parts)
	return "{" + strings.Join(parts, ",") + "}"
}

// CountCalls returns how many recorded calls used op.
func (s *Store) CountCalls(op string) int {
	count := 0
	for _, c := range s.Calls {
		if c.Op == op {
			count++
		}
	}
	return count
}

func (s *Store) ListChildren(ctx context.Context, containerID string) ([]models.RemoteItem, error) {
	if err := s.begin(remote.OpList, containerID); err != nil {
		return nil, err
	}
	if _, err := s.container(remote.OpList, containerID); err != nil {
		return nil, err
	}
	return s.Children(containerID), nil
}

func (s *Store) CreateContainer(ctx context.Context, name, parentID string) (string, error) {
	if err := s.begin(remote.OpCreate, parentID); err != nil {
		return "", err
	}
	if _, err := s.container(remote.OpCreate, parentID); err != nil {
		return "", err
	}
	return s.add(name, parentID, models.KindContainer), nil
}

func (s *Store) GetName(ctx context.Context, itemID string) (string, error) {
	if err := s.begin(remote.OpGetName, itemID); err != nil {
		return "", err
	}
	n, ok := s.items[itemID]
	if !ok {
		return "", remote.NewOperationError(remote.OpGetName, itemID, ErrNotFound)
	}
	return n.name, nil
}

func (s *Store) CopyItem(ctx context.Context, itemID, destinationParentID, newName string) (string, error) {
	if err := s.begin(remote.OpCopy, itemID); err != nil {
		return "", err
	}
	n, ok := s.items[itemID]
	if !ok {
		return "", remote.NewOperationError(remote.OpCopy, itemID, ErrNotFound)
	}
	if n.kind != models.KindLeaf {
		return "", remote.NewOperationError(remote.OpCopy, itemID, ErrNotLeaf)
	}
	if _, err := s.container(remote.OpCopy, destinationParentID); err != nil {
		return "", err
	}
	return s.add(newName, destinationParentID, models.KindLeaf), nil
}

func (s *Store) ReparentItem(ctx context.Context, itemID, addParentID, removeParentID string) error {
	if err := s.begin(remote.OpReparent, itemID); err != nil {
		return err
	}
	n, ok := s.items[itemID]
	if !ok {
		return remote.NewOperationError(remote.OpReparent, itemID, ErrNotFound)
	}
	if n.parent != removeParentID {
		return remote.NewOperationError(remote.OpReparent, itemID, ErrNotParent)
	}
	target, err := s.container(remote.OpReparent, addParentID)
	if err != nil {
		return err
	}

	old := s.items[removeParentID]
	for i, childID := range old.children {
		if childID == itemID {
			old.children = append(old.children[:i], old.children[i+1:]...)
			break
		}
	}
	target.children = append(target.children, itemID)
	n.parent = addParentID
	return nil
}

func (s *Store) begin(op, itemID string) error {
	s.Calls = append(s.Calls, Call{Op: op, ItemID: itemID})
	if err, ok := s.failures[op+"|"+itemID]; ok {
		return remote.NewOperationError(op, itemID, err)
	}
	if s.FailFunc != nil {
		if err := s.FailFunc(op, itemID); err != nil {
			return remote.NewOperationError(op, itemID, err)
		}
	}
	return nil
}

func (s *Store) container(op, id string) (*node, error) {
	n, ok := s.items[id]
	if !ok {
		return nil, remote.NewOperationError(op, id, ErrNotFound)
	}
	if n.kind != models.KindContainer {
		return nil, remote.NewOperationError(op, id, ErrNotContainer)
	}
	return n, nil
}

func (s *Store) add(name, parentID string, kind models.ItemKind) string {
	s.seq++
	prefix := "f"
	if kind == models.KindContainer {
		prefix = "d"
	}
	id := fmt.Sprintf("%s%d", prefix, s.seq)
	s.items[id] = &node{id: id, name: name, kind: kind, parent: parentID}
	if parent, ok := s.items[parentID]; ok {
		parent.children = append(parent.children, id)
	}
	return id
}
