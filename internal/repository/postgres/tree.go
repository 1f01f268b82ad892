package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"filecrate/internal/domain"
	"filecrate/internal/domain/models"
	"filecrate/internal/domain/repositories"
)

// itemOrdering is the one ordering every structural query shares: folders
// before files, then names ascending. ListItems, CountItems and
// GetPageNumber must agree on it, or "page N of a listing" and "the page
// containing item X" drift apart.
const itemOrdering = `array_position(ARRAY['d','-']::varchar[], type), name ASC`

// listFilters renders the shared WHERE clause of the listing queries.
//
// A search collapses the parent filter when no folder is given (the search
// runs across the whole tree) and restricts matches to file items whose
// name contains the substring. Without a search, a nil parent means the
// root level.
func (r *PostgresStorageRepository) listFilters(opts repositories.ListOptions) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if opts.ParentID != nil {
		args = append(args, *opts.ParentID)
		conditions = append(conditions, fmt.Sprintf("parent_id = $%d", len(args)))
	} else if opts.Search == "" {
		conditions = append(conditions, "parent_id IS NULL")
	}

	if opts.Search != "" {
		args = append(args, "%"+opts.Search+"%")
		conditions = append(conditions, fmt.Sprintf("name LIKE $%d", len(args)))
		conditions = append(conditions, fmt.Sprintf("type = '%s'", models.ItemTypeFile))
	}

	where := ""
	for i, cond := range conditions {
		if i == 0 {
			where = "WHERE " + cond
		} else {
			where += " AND " + cond
		}
	}

	return where, args
}

// ListItems returns one page of items matching the options.
func (r *PostgresStorageRepository) ListItems(ctx context.Context, opts repositories.ListOptions) ([]models.Item, error) {
	where, args := r.listFilters(opts)

	args = append(args, opts.Limit, opts.Offset)
	query := fmt.Sprintf(`
		SELECT item_id, name, parent_id, type, path
		FROM %s
		%s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, r.tables.Items, where, itemOrdering, len(args)-1, len(args))

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// CountItems returns the total match count under the same filters as
// ListItems, without ordering or paging.
func (r *PostgresStorageRepository) CountItems(ctx context.Context, opts repositories.ListOptions) (int, error) {
	where, args := r.listFilters(opts)

	query := fmt.Sprintf(`SELECT count(item_id) FROM %s %s`, r.tables.Items, where)

	var total int
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}

	return total, nil
}

// GetItemPath returns the ancestor chain from the root down to and
// including the item, by walking parent links upward.
func (r *PostgresStorageRepository) GetItemPath(ctx context.Context, id string) ([]models.Item, error) {
	query := fmt.Sprintf(`
		WITH RECURSIVE chain AS (
			SELECT item_id, name, parent_id, type, path, 0 AS depth
			FROM %s
			WHERE item_id = $1
			UNION ALL
			SELECT i.item_id, i.name, i.parent_id, i.type, i.path, c.depth + 1
			FROM %s i
			JOIN chain c ON i.item_id = c.parent_id
		)
		SELECT item_id, name, parent_id, type, path
		FROM chain
		ORDER BY depth DESC
	`, r.tables.Items, r.tables.Items)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("get item path: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// GetItemIDByPath resolves a materialized path to an item id in a single
// index lookup instead of walking names component by component.
func (r *PostgresStorageRepository) GetItemIDByPath(ctx context.Context, path string) (string, error) {
	query := fmt.Sprintf(`SELECT item_id FROM %s WHERE path = $1`, r.tables.Items)

	var id string
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, path).Scan(&id); err != nil {
		if IsPgNoRowsError(err) {
			return "", fmt.Errorf("path '%s': %w", path, domain.ErrNotFound)
		}
		return "", fmt.Errorf("get item id by path: %w", err)
	}

	return id, nil
}

// GetPageNumber computes the 1-based page on which an item appears in its
// parent's listing at the given page size. The window ranks siblings under
// the exact listing ordering, so the result always agrees with ListItems.
func (r *PostgresStorageRepository) GetPageNumber(ctx context.Context, parentID *string, id string, perPage int) (int, error) {
	if perPage <= 0 {
		return 0, fmt.Errorf("per_page must be positive: %w", domain.ErrValidation)
	}

	query := fmt.Sprintf(`
		WITH ranked AS (
			SELECT item_id,
			       row_number() OVER (ORDER BY %s) - 1 AS rank
			FROM %s
			WHERE coalesce(parent_id, '%s'::uuid) = coalesce($1::uuid, '%s'::uuid)
		)
		SELECT (rank / $2)::int + 1
		FROM ranked
		WHERE item_id = $3
	`, itemOrdering, r.tables.Items, models.ZeroID, models.ZeroID)

	var page int
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, parentID, perPage, id).Scan(&page)
	if err != nil {
		if IsPgNoRowsError(err) {
			return 0, fmt.Errorf("item %s not under this parent: %w", id, domain.ErrNotFound)
		}
		return 0, fmt.Errorf("get page number: %w", err)
	}

	return page, nil
}

// ListSubtree returns the item and every descendant, shallowest first.
func (r *PostgresStorageRepository) ListSubtree(ctx context.Context, rootID string) ([]models.Item, error) {
	query := fmt.Sprintf(`
		WITH RECURSIVE subtree AS (
			SELECT item_id, name, parent_id, type, path, 0 AS depth
			FROM %s
			WHERE item_id = $1
			UNION ALL
			SELECT i.item_id, i.name, i.parent_id, i.type, i.path, s.depth + 1
			FROM %s i
			JOIN subtree s ON i.parent_id = s.item_id
		)
		SELECT item_id, name, parent_id, type, path
		FROM subtree
		ORDER BY depth
	`, r.tables.Items, r.tables.Items)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, rootID)
	if err != nil {
		return nil, fmt.Errorf("list subtree: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// scanItems drains a result set of item rows.
func scanItems(rows pgx.Rows) ([]models.Item, error) {
	var items []models.Item
	for rows.Next() {
		var item models.Item
		err := rows.Scan(
			&item.ID,
			&item.Name,
			&item.ParentID,
			&item.Type,
			&item.Path,
		)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}

	if items == nil {
		items = []models.Item{}
	}

	return items, nil
}
