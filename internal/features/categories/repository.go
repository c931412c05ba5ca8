// Package categories — repository.go выполняет операции с таблицей categories.
package categories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"habit-bot/internal/common"
)

// Repository предоставляет методы для работы с таблицей categories.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий категорий.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create добавляет новую категорию и возвращает её с заполненным ID.
func (r *Repository) Create(ctx context.Context, c *Category) (*Category, error) {
	query := `
		INSERT INTO categories (user_id, name, description, color)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query, c.UserID, c.Name, c.Description, c.Color).
		Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания категории: %w", err)
	}
	return c, nil
}

// GetByID возвращает категорию по ID.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Category, error) {
	query := `
		SELECT id, user_id, name, description, color, created_at
		FROM categories
		WHERE id = $1
	`
	var c Category
	err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.UserID, &c.Name, &c.Description, &c.Color, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("ошибка получения категории: %w", err)
	}
	return &c, nil
}

// GetByUserID возвращает все категории пользователя, новые сверху.
func (r *Repository) GetByUserID(ctx context.Context, userID int64) ([]*Category, error) {
	query := `
		SELECT id, user_id, name, description, color, created_at
		FROM categories
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения категорий: %w", err)
	}
	defer rows.Close()

	var cats []*Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Description, &c.Color, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования категории: %w", err)
		}
		cats = append(cats, &c)
	}
	return cats, rows.Err()
}

// GetByName ищет категорию пользователя по названию (без учёта регистра).
// Нужна для команд бота: пользователь пишет название, а не ID.
func (r *Repository) GetByName(ctx context.Context, userID int64, name string) (*Category, error) {
	query := `
		SELECT id, user_id, name, description, color, created_at
		FROM categories
		WHERE user_id = $1 AND LOWER(name) = LOWER($2)
	`
	var c Category
	err := r.db.QueryRow(ctx, query, userID, name).Scan(
		&c.ID, &c.UserID, &c.Name, &c.Description, &c.Color, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("ошибка поиска категории: %w", err)
	}
	return &c, nil
}

// Update изменяет название, описание и цвет категории.
func (r *Repository) Update(ctx context.Context, c *Category) error {
	query := `
		UPDATE categories
		SET name = $2, description = $3, color = $4
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query, c.ID, c.Name, c.Description, c.Color)
	if err != nil {
		return fmt.Errorf("ошибка обновления категории: %w", err)
	}
	return nil
}

// Delete удаляет категорию. Привычки в ней должны быть удалены заранее
// (проверяется сервисом).
func (r *Repository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления категории: %w", err)
	}
	return nil
}

// CountHabits возвращает число привычек в категории.
func (r *Repository) CountHabits(ctx context.Context, categoryID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM habits WHERE category_id = $1`, categoryID,
	).Scan(&count)
	return count, err
}
