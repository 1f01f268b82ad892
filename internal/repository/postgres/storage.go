package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"filecrate/internal/domain"
	"filecrate/internal/domain/models"
	"filecrate/internal/domain/repositories"
)

// PostgresStorageRepository implements the StorageRepository interface over
// a single flat items table with a materialized path column.
//
// Path maintenance happens here, inside the caller's transaction: inserts
// derive the path from the parent's, and moves/renames rewrite the cached
// paths of the whole affected subtree in one recursive statement. Nothing
// else ever writes the path column.
type PostgresStorageRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewStorageRepository creates a new storage repository
func NewStorageRepository(config *RepositoryConfig) repositories.StorageRepository {
	return &PostgresStorageRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts an item, materializing its path from the parent's path.
func (r *PostgresStorageRepository) Create(ctx context.Context, item *models.Item) error {
	path, err := r.childPath(ctx, item.ParentID, item.Name)
	if err != nil {
		return err
	}
	item.Path = path

	query := fmt.Sprintf(`
		INSERT INTO %s (item_id, name, parent_id, type, path)
		VALUES ($1, $2, $3, $4, $5)
	`, r.tables.Items)

	executor := GetExecutor(ctx, r.pool)
	_, err = executor.Exec(ctx, query, item.ID, item.Name, item.ParentID, item.Type, item.Path)
	if err != nil {
		if IsPgDuplicateError(err) {
			existingID, queryErr := r.getSiblingID(ctx, item.ParentID, item.Name)
			if queryErr != nil {
				return fmt.Errorf("item '%s' already exists in this location: %w", item.Name, domain.ErrConflict)
			}
			return &domain.ConflictError{
				Message:      fmt.Sprintf("item '%s' already exists in this location", item.Name),
				ResourceType: item.Type.Display(),
				ResourceID:   existingID,
			}
		}
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("parent of '%s' is gone: %w", item.Name, domain.ErrIntegrity)
		}
		return fmt.Errorf("create item: %w", err)
	}

	return nil
}

// Remove deletes an item row. Descendants are removed by the cascade on the
// parent foreign key.
func (r *PostgresStorageRepository) Remove(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE item_id = $1`, r.tables.Items)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("remove item: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ChangeParent reassigns an item's parent and refreshes the subtree paths.
func (r *PostgresStorageRepository) ChangeParent(ctx context.Context, id string, newParentID *string) error {
	item, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if newParentID != nil {
		if *newParentID == id {
			return fmt.Errorf("cannot move an item into itself: %w", domain.ErrValidation)
		}
		inSubtree, err := r.isAncestor(ctx, id, *newParentID)
		if err != nil {
			return err
		}
		if inSubtree {
			return fmt.Errorf("cannot move an item into its own subtree: %w", domain.ErrValidation)
		}
	}

	newPath, err := r.childPath(ctx, newParentID, item.Name)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`UPDATE %s SET parent_id = $1 WHERE item_id = $2`, r.tables.Items)
	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, newParentID, id)
	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("item '%s' already exists in the destination folder", item.Name),
				ResourceType: item.Type.Display(),
			}
		}
		return fmt.Errorf("change item parent: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
	}

	return r.refreshSubtreePaths(ctx, id, newPath)
}

// Rename changes an item's name and refreshes the subtree paths.
func (r *PostgresStorageRepository) Rename(ctx context.Context, id string, newName string) error {
	item, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	newPath, err := r.childPath(ctx, item.ParentID, newName)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`UPDATE %s SET name = $1 WHERE item_id = $2`, r.tables.Items)
	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, newName, id); err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("item '%s' already exists in this location", newName),
				ResourceType: item.Type.Display(),
			}
		}
		return fmt.Errorf("rename item: %w", err)
	}

	return r.refreshSubtreePaths(ctx, id, newPath)
}

// Exists reports whether an item with the given id exists.
func (r *PostgresStorageRepository) Exists(ctx context.Context, id string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE item_id = $1)`, r.tables.Items)

	var exists bool
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check item exists: %w", err)
	}

	return exists, nil
}

// GetByID retrieves an item by ID
func (r *PostgresStorageRepository) GetByID(ctx context.Context, id string) (*models.Item, error) {
	query := fmt.Sprintf(`
		SELECT item_id, name, parent_id, type, path
		FROM %s
		WHERE item_id = $1
	`, r.tables.Items)

	var item models.Item
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&item.ID,
		&item.Name,
		&item.ParentID,
		&item.Type,
		&item.Path,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get item: %w", err)
	}

	return &item, nil
}

// GetByPaths retrieves the items whose materialized path is in the given set.
func (r *PostgresStorageRepository) GetByPaths(ctx context.Context, paths []string) ([]models.Item, error) {
	query := fmt.Sprintf(`
		SELECT item_id, name, parent_id, type, path
		FROM %s
		WHERE path = ANY($1)
	`, r.tables.Items)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, paths)
	if err != nil {
		return nil, fmt.Errorf("get items by paths: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// childPath computes the materialized path an item has under the given
// parent. A nil parent means the root level; a missing parent row is a
// referential integrity failure.
func (r *PostgresStorageRepository) childPath(ctx context.Context, parentID *string, name string) (string, error) {
	if parentID == nil {
		return name, nil
	}

	query := fmt.Sprintf(`SELECT path FROM %s WHERE item_id = $1`, r.tables.Items)

	var parentPath string
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, *parentID).Scan(&parentPath); err != nil {
		if IsPgNoRowsError(err) {
			return "", fmt.Errorf("parent %s: %w", *parentID, domain.ErrIntegrity)
		}
		return "", fmt.Errorf("get parent path: %w", err)
	}

	return parentPath + models.PathDelimiter + name, nil
}

// refreshSubtreePaths rewrites the cached path of the item and all its
// descendants, starting from the given root path, in a single statement.
func (r *PostgresStorageRepository) refreshSubtreePaths(ctx context.Context, rootID, rootPath string) error {
	query := fmt.Sprintf(`
		WITH RECURSIVE subtree AS (
			SELECT item_id, $2::text AS path
			FROM %s
			WHERE item_id = $1
			UNION ALL
			SELECT c.item_id, s.path || '%s' || c.name
			FROM %s c
			JOIN subtree s ON c.parent_id = s.item_id
		)
		UPDATE %s i
		SET path = s.path
		FROM subtree s
		WHERE i.item_id = s.item_id
	`, r.tables.Items, models.PathDelimiter, r.tables.Items, r.tables.Items)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, rootID, rootPath); err != nil {
		return fmt.Errorf("refresh subtree paths: %w", err)
	}

	return nil
}

// isAncestor reports whether candidateID appears in the ancestor chain
// starting at startID (inclusive). UNION instead of UNION ALL acts as a
// visited-set guard so an unexpected cycle cannot loop the walk.
func (r *PostgresStorageRepository) isAncestor(ctx context.Context, candidateID, startID string) (bool, error) {
	query := fmt.Sprintf(`
		WITH RECURSIVE ancestors AS (
			SELECT item_id, parent_id FROM %s WHERE item_id = $1
			UNION
			SELECT i.item_id, i.parent_id
			FROM %s i
			JOIN ancestors a ON i.item_id = a.parent_id
		)
		SELECT EXISTS (SELECT 1 FROM ancestors WHERE item_id = $2)
	`, r.tables.Items, r.tables.Items)

	var found bool
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, startID, candidateID).Scan(&found); err != nil {
		return false, fmt.Errorf("check ancestor chain: %w", err)
	}

	return found, nil
}

// getSiblingID finds the id of the item occupying a name under a parent.
func (r *PostgresStorageRepository) getSiblingID(ctx context.Context, parentID *string, name string) (string, error) {
	query := fmt.Sprintf(`
		SELECT item_id
		FROM %s
		WHERE name = $1 AND coalesce(parent_id, '%s'::uuid) = coalesce($2::uuid, '%s'::uuid)
	`, r.tables.Items, models.ZeroID, models.ZeroID)

	var id string
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, name, parentID).Scan(&id); err != nil {
		return "", fmt.Errorf("get sibling id: %w", err)
	}

	return id, nil
}
