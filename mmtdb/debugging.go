package mmtdb

import (
	"context"
	"database/sql"
	"fmt"
)

// TableCounts reports the number of rows in every table of the store.
func (c *Client) TableCounts(ctx context.Context) (map[string]int, error) {
	var tables []string
	err := c.each(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'",
		func(rows *sql.Rows) error {
			var name string
			if err := rows.Scan(&name); err != nil {
				return fmt.Errorf("failed to scan table name: %w", err)
			}
			tables = append(tables, name)
			return nil
		})
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(tables))
	for _, table := range tables {
		var count int
		query := fmt.Sprintf("SELECT COUNT(*) FROM %q", table)
		if err := c.DB.QueryRowContext(ctx, query).Scan(&count); err != nil {
			return nil, err
		}
		counts[table] = count
	}
	return counts, nil
}
