package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"filecrate/internal/domain/models"
)

// EnsureSchema creates the items table and its indexes if they do not exist.
//
// The parent foreign key cascades on delete (removing a folder removes the
// whole subtree) and on update. Sibling-name uniqueness coalesces a NULL
// parent to the zero-UUID sentinel so root items collide like any others.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	statements := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				item_id   uuid PRIMARY KEY,
				name      text NOT NULL,
				parent_id uuid REFERENCES %s (item_id)
				          ON DELETE CASCADE ON UPDATE CASCADE,
				type      varchar(1) NOT NULL,
				path      text
			)
		`, tables.Items, tables.Items),
		fmt.Sprintf(`
			CREATE UNIQUE INDEX IF NOT EXISTS uix_%s_id_name
			ON %s (item_id, name)
		`, tables.Items, tables.Items),
		fmt.Sprintf(`
			CREATE UNIQUE INDEX IF NOT EXISTS uix_%s_name_parent
			ON %s (name, coalesce(parent_id, '%s'::uuid))
		`, tables.Items, tables.Items, models.ZeroID),
		fmt.Sprintf(`
			CREATE INDEX IF NOT EXISTS ix_%s_path
			ON %s (path)
		`, tables.Items, tables.Items),
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	return nil
}
