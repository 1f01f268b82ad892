package repositories

import (
	"context"

	"filecrate/internal/domain/models"
)

// ListOptions are the shared filters of the listing, count and page-number
// queries. All three must agree on predicates and ordering so that "page N
// of a listing" and "the page containing item X" never disagree.
type ListOptions struct {
	// ParentID scopes the listing to one folder's children; nil means the
	// root level. When Search is set and ParentID is nil the parent filter
	// collapses entirely and the search runs across the whole tree.
	ParentID *string
	// Search restricts results to file items whose name contains the
	// substring, case-sensitive. Folders never match a search.
	Search string
	Limit  int
	Offset int
}

// StorageRepository is the transactional CRUD and query surface over items.
//
// Mutating methods stage changes on the transaction found in ctx (see
// TransactionManager); callers own the commit/rollback decision.
type StorageRepository interface {
	// Create inserts an item and materializes its path from the parent's.
	// A sibling-name collision surfaces as a ConflictError; a missing
	// parent as ErrIntegrity.
	Create(ctx context.Context, item *models.Item) error

	// Remove deletes the item row. Descendants go with it via cascade.
	Remove(ctx context.Context, id string) error

	// ChangeParent reassigns an item's parent and refreshes the cached
	// paths of the whole moved subtree. Moving an item under its own
	// descendant is rejected with ErrValidation.
	ChangeParent(ctx context.Context, id string, newParentID *string) error

	// Rename changes an item's name and refreshes the subtree paths.
	Rename(ctx context.Context, id string, newName string) error

	Exists(ctx context.Context, id string) (bool, error)
	GetByID(ctx context.Context, id string) (*models.Item, error)
	GetByPaths(ctx context.Context, paths []string) ([]models.Item, error)

	// ListItems returns one page of matching items, folders before files,
	// names ascending within each type.
	ListItems(ctx context.Context, opts ListOptions) ([]models.Item, error)

	// CountItems returns the total match count under the same filters.
	CountItems(ctx context.Context, opts ListOptions) (int, error)

	// GetItemPath returns the ancestor chain from the root down to and
	// including the item.
	GetItemPath(ctx context.Context, id string) ([]models.Item, error)

	// GetItemIDByPath resolves a materialized path to an item id.
	GetItemIDByPath(ctx context.Context, path string) (string, error)

	// GetPageNumber returns the 1-based page on which the item appears in
	// its parent's listing at the given page size, or ErrNotFound if the
	// item is not among that parent's children.
	GetPageNumber(ctx context.Context, parentID *string, id string, perPage int) (int, error)

	// ListSubtree returns the item and every descendant, root first.
	ListSubtree(ctx context.Context, rootID string) ([]models.Item, error)
}
