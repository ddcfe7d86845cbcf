package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/lehigh-university-libraries/recipebox/internal/models"
)

// ListPantry returns the whole shared pantry sorted by name
func (s *SQLite) ListPantry(ctx context.Context) ([]models.PantryItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, quantity, unit, added_by, created_at FROM pantry_items ORDER BY name COLLATE NOCASE, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query pantry: %w", err)
	}
	defer rows.Close()

	items := []models.PantryItem{}
	for rows.Next() {
		var (
			item     models.PantryItem
			quantity sql.NullFloat64
			unit     sql.NullString
			created  string
		)
		if err := rows.Scan(&item.ID, &item.Name, &quantity, &unit, &item.AddedBy, &created); err != nil {
			return nil, fmt.Errorf("failed to scan pantry item: %w", err)
		}
		if quantity.Valid {
			q := quantity.Float64
			item.Quantity = &q
		}
		if unit.Valid {
			u := unit.String
			item.Unit = &u
		}
		item.CreatedAt = parseTime(created)
		items = append(items, item)
	}
	return items, rows.Err()
}

// InsertPantryItem stores item, assigning an id and timestamp when empty
func (s *SQLite) InsertPantryItem(ctx context.Context, item models.PantryItem) (models.PantryItem, error) {
	checked, err := models.NewPantryItem(item.Name, item.Quantity, deref(item.Unit), item.AddedBy)
	if err != nil {
		return models.PantryItem{}, err
	}
	checked.ID = item.ID
	checked.CreatedAt = item.CreatedAt
	if checked.ID == "" {
		checked.ID = uuid.NewString()
	}
	if checked.CreatedAt.IsZero() {
		checked.CreatedAt = s.now()
	}

	if _, err := s.exec(ctx,
		`INSERT INTO pantry_items(id, name, quantity, unit, added_by, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		checked.ID, checked.Name, checked.Quantity, checked.Unit, checked.AddedBy, formatTime(checked.CreatedAt),
	); err != nil {
		return models.PantryItem{}, fmt.Errorf("failed to insert pantry item: %w", err)
	}
	return checked, nil
}

// DeletePantryItem removes an item. The pantry is shared, so any user may remove any item.
func (s *SQLite) DeletePantryItem(ctx context.Context, id string) error {
	res, err := s.exec(ctx, `DELETE FROM pantry_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete pantry item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete pantry item: %w", err)
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
