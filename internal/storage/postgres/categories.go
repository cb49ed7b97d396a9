package postgres

import (
	"context"
	"fmt"

	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage"
)

func (s *Store) CreateCategory(ctx context.Context, category models.Category) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO categories (`+storage.CategoryColumns+`)
VALUES ($1, $2, $3, $4, $5)`,
		category.ID, category.UserID, category.Name, category.Color, storage.FormatTime(category.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert category %s: %w", category.Name, err)
	}
	return nil
}

func (s *Store) ListCategoriesForUser(ctx context.Context, userID string) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT `+storage.CategoryColumns+` FROM categories
WHERE user_id = $1 ORDER BY name`, userID)
	if err != nil {
		return nil, err
	}
	return storage.CollectCategories(rows)
}
