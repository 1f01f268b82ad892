package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"filecrate/internal/domain"
	"filecrate/internal/domain/models"
	"filecrate/internal/domain/repositories"
)

// fakeStorageRepo is an in-memory StorageRepository sharing the real
// engine's ordering and filtering rules, so service protocols can be
// exercised without a database.
type fakeStorageRepo struct {
	items map[string]*models.Item
}

func newFakeStorageRepo() *fakeStorageRepo {
	return &fakeStorageRepo{items: map[string]*models.Item{}}
}

func (r *fakeStorageRepo) Create(ctx context.Context, item *models.Item) error {
	for _, existing := range r.items {
		if existing.Name == item.Name && sameParent(existing.ParentID, item.ParentID) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("item '%s' already exists in this location", item.Name),
				ResourceType: existing.Type.Display(),
				ResourceID:   existing.ID,
			}
		}
	}

	path, err := r.childPath(item.ParentID, item.Name)
	if err != nil {
		return err
	}
	item.Path = path

	clone := *item
	r.items[item.ID] = &clone
	return nil
}

func (r *fakeStorageRepo) Remove(ctx context.Context, id string) error {
	if _, ok := r.items[id]; !ok {
		return fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
	}
	for _, it := range r.subtree(id) {
		delete(r.items, it.ID)
	}
	return nil
}

func (r *fakeStorageRepo) ChangeParent(ctx context.Context, id string, newParentID *string) error {
	item, ok := r.items[id]
	if !ok {
		return fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
	}
	if newParentID != nil {
		if *newParentID == id {
			return fmt.Errorf("cannot move an item into itself: %w", domain.ErrValidation)
		}
		for cur := newParentID; cur != nil; {
			if *cur == id {
				return fmt.Errorf("cannot move an item into its own subtree: %w", domain.ErrValidation)
			}
			parent, ok := r.items[*cur]
			if !ok {
				return fmt.Errorf("parent %s: %w", *cur, domain.ErrIntegrity)
			}
			cur = parent.ParentID
		}
	}

	item.ParentID = newParentID
	newPath, err := r.childPath(newParentID, item.Name)
	if err != nil {
		return err
	}
	r.refreshPaths(id, newPath)
	return nil
}

func (r *fakeStorageRepo) Rename(ctx context.Context, id string, newName string) error {
	item, ok := r.items[id]
	if !ok {
		return fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
	}
	item.Name = newName
	newPath, err := r.childPath(item.ParentID, newName)
	if err != nil {
		return err
	}
	r.refreshPaths(id, newPath)
	return nil
}

func (r *fakeStorageRepo) Exists(ctx context.Context, id string) (bool, error) {
	_, ok := r.items[id]
	return ok, nil
}

func (r *fakeStorageRepo) GetByID(ctx context.Context, id string) (*models.Item, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
	}
	clone := *item
	return &clone, nil
}

func (r *fakeStorageRepo) GetByPaths(ctx context.Context, paths []string) ([]models.Item, error) {
	wanted := map[string]bool{}
	for _, p := range paths {
		wanted[p] = true
	}
	var out []models.Item
	for _, it := range r.items {
		if wanted[it.Path] {
			out = append(out, *it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (r *fakeStorageRepo) ListItems(ctx context.Context, opts repositories.ListOptions) ([]models.Item, error) {
	matched := r.match(opts)
	sortListing(matched)

	start := opts.Offset
	if start > len(matched) {
		start = len(matched)
	}
	end := start + opts.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return append([]models.Item{}, matched[start:end]...), nil
}

func (r *fakeStorageRepo) CountItems(ctx context.Context, opts repositories.ListOptions) (int, error) {
	return len(r.match(opts)), nil
}

func (r *fakeStorageRepo) GetItemPath(ctx context.Context, id string) ([]models.Item, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
	}
	var chain []models.Item
	for cur := item; cur != nil; {
		chain = append([]models.Item{*cur}, chain...)
		if cur.ParentID == nil {
			break
		}
		cur = r.items[*cur.ParentID]
	}
	return chain, nil
}

func (r *fakeStorageRepo) GetItemIDByPath(ctx context.Context, path string) (string, error) {
	for _, it := range r.items {
		if it.Path == path {
			return it.ID, nil
		}
	}
	return "", fmt.Errorf("path '%s': %w", path, domain.ErrNotFound)
}

func (r *fakeStorageRepo) GetPageNumber(ctx context.Context, parentID *string, id string, perPage int) (int, error) {
	var siblings []models.Item
	for _, it := range r.items {
		if sameParent(it.ParentID, parentID) {
			siblings = append(siblings, *it)
		}
	}
	sortListing(siblings)

	for i, it := range siblings {
		if it.ID == id {
			return i/perPage + 1, nil
		}
	}
	return 0, fmt.Errorf("item %s not under this parent: %w", id, domain.ErrNotFound)
}

func (r *fakeStorageRepo) ListSubtree(ctx context.Context, rootID string) ([]models.Item, error) {
	if _, ok := r.items[rootID]; !ok {
		return nil, fmt.Errorf("item %s: %w", rootID, domain.ErrNotFound)
	}
	return r.subtree(rootID), nil
}

func (r *fakeStorageRepo) childPath(parentID *string, name string) (string, error) {
	if parentID == nil {
		return name, nil
	}
	parent, ok := r.items[*parentID]
	if !ok {
		return "", fmt.Errorf("parent %s: %w", *parentID, domain.ErrIntegrity)
	}
	return parent.Path + models.PathDelimiter + name, nil
}

func (r *fakeStorageRepo) refreshPaths(id, path string) {
	item := r.items[id]
	item.Path = path
	for _, child := range r.items {
		if child.ParentID != nil && *child.ParentID == id {
			r.refreshPaths(child.ID, path+models.PathDelimiter+child.Name)
		}
	}
}

func (r *fakeStorageRepo) subtree(rootID string) []models.Item {
	out := []models.Item{*r.items[rootID]}
	for i := 0; i < len(out); i++ {
		for _, it := range r.items {
			if it.ParentID != nil && *it.ParentID == out[i].ID {
				out = append(out, *it)
			}
		}
	}
	return out
}

func (r *fakeStorageRepo) match(opts repositories.ListOptions) []models.Item {
	var out []models.Item
	for _, it := range r.items {
		if opts.ParentID != nil {
			if !sameParent(it.ParentID, opts.ParentID) {
				continue
			}
		} else if opts.Search == "" && it.ParentID != nil {
			continue
		}
		if opts.Search != "" {
			if it.Type != models.ItemTypeFile || !strings.Contains(it.Name, opts.Search) {
				continue
			}
		}
		out = append(out, *it)
	}
	return out
}

func sortListing(items []models.Item) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Type != items[j].Type {
			return items[i].Type == models.ItemTypeFolder
		}
		return items[i].Name < items[j].Name
	})
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// fakeTxManager runs the closure directly; commit/rollback semantics are
// the postgres manager's business.
type fakeTxManager struct{}

func (fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}

// fakeBindings reports references for a fixed set of paths.
type fakeBindings struct {
	refs map[string]int
}

func (b *fakeBindings) GetFileBinds(ctx context.Context, paths []string) (map[string]int, error) {
	if b.refs == nil {
		return map[string]int{}, nil
	}
	if paths == nil {
		out := make(map[string]int, len(b.refs))
		for k, v := range b.refs {
			out[k] = v
		}
		return out, nil
	}
	out := map[string]int{}
	for _, p := range paths {
		if n, ok := b.refs[p]; ok {
			out[p] = n
		}
	}
	return out, nil
}

// fakeObjectStore records uploads and removals in memory.
type fakeObjectStore struct {
	blobs   map[string][]byte
	removed []string
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{blobs: map[string][]byte{}}
}

func (s *fakeObjectStore) Upload(ctx context.Context, key string, content io.Reader) error {
	data, err := io.ReadAll(content)
	if err != nil {
		return err
	}
	s.blobs[key] = data
	return nil
}

func (s *fakeObjectStore) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	data, ok := s.blobs[key]
	if !ok {
		return nil, fmt.Errorf("object %s: %w", key, domain.ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *fakeObjectStore) Remove(ctx context.Context, keys []string) error {
	for _, key := range keys {
		delete(s.blobs, key)
		s.removed = append(s.removed, key)
	}
	return nil
}

func (s *fakeObjectStore) EnsureBucket(ctx context.Context) error { return nil }
func (s *fakeObjectStore) DeleteBucket(ctx context.Context) error { return nil }
