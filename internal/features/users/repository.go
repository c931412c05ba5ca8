// Package users — repository.go отвечает за все операции с таблицей users в БД.
// Каждая функция выполняет один SQL-запрос и возвращает результат или ошибку.
package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"habit-bot/internal/common"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create добавляет нового пользователя в таблицу users.
// На конфликте по user_id обновляет только имя/username (не трогает флаг бана).
func (r *Repository) Create(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (user_id, username, first_name, last_name, is_banned)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET username = EXCLUDED.username,
		    first_name = EXCLUDED.first_name,
		    last_name = EXCLUDED.last_name,
		    updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, u.UserID, u.Username, u.FirstName, u.LastName, u.IsBanned)
	if err != nil {
		return fmt.Errorf("ошибка создания пользователя: %w", err)
	}
	return nil
}

// GetByUserID возвращает пользователя по его Telegram user ID.
func (r *Repository) GetByUserID(ctx context.Context, userID int64) (*User, error) {
	query := `
		SELECT id, user_id, username, first_name, last_name, is_banned, created_at, updated_at
		FROM users
		WHERE user_id = $1
	`
	var u User
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&u.ID, &u.UserID, &u.Username, &u.FirstName, &u.LastName,
		&u.IsBanned, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("ошибка получения пользователя: %w", err)
	}
	return &u, nil
}

// GetByUsername возвращает пользователя по @username (без @).
// Используется админкой для выдачи очков по имени.
func (r *Repository) GetByUsername(ctx context.Context, username string) (*User, error) {
	query := `
		SELECT id, user_id, username, first_name, last_name, is_banned, created_at, updated_at
		FROM users
		WHERE LOWER(username) = LOWER($1)
	`
	var u User
	err := r.db.QueryRow(ctx, query, username).Scan(
		&u.ID, &u.UserID, &u.Username, &u.FirstName, &u.LastName,
		&u.IsBanned, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("ошибка поиска по username: %w", err)
	}
	return &u, nil
}

// Exists проверяет, зарегистрирован ли пользователь.
func (r *Repository) Exists(ctx context.Context, userID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE user_id = $1)`
	var exists bool
	err := r.db.QueryRow(ctx, query, userID).Scan(&exists)
	return exists, err
}

// UpdateInfo обновляет имя и username пользователя.
func (r *Repository) UpdateInfo(ctx context.Context, userID int64, info UpdateInfo) error {
	query := `
		UPDATE users
		SET username = $2, first_name = $3, last_name = $4, updated_at = NOW()
		WHERE user_id = $1
	`
	_, err := r.db.Exec(ctx, query, userID, info.Username, info.FirstName, info.LastName)
	if err != nil {
		return fmt.Errorf("ошибка обновления пользователя: %w", err)
	}
	return nil
}

// SetBanned выставляет или снимает флаг бана.
func (r *Repository) SetBanned(ctx context.Context, userID int64, banned bool) error {
	query := `UPDATE users SET is_banned = $2, updated_at = NOW() WHERE user_id = $1`
	_, err := r.db.Exec(ctx, query, userID, banned)
	return err
}

// CountAll возвращает общее число зарегистрированных пользователей.
// Используется админской статистикой.
func (r *Repository) CountAll(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

// ListAll возвращает всех пользователей по дате регистрации.
// Используется админ-панелью для выбора пользователя.
func (r *Repository) ListAll(ctx context.Context) ([]*User, error) {
	query := `
		SELECT id, user_id, username, first_name, last_name, is_banned, created_at, updated_at
		FROM users
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения пользователей: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		var u User
		if err := rows.Scan(
			&u.ID, &u.UserID, &u.Username, &u.FirstName, &u.LastName,
			&u.IsBanned, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка чтения пользователя: %w", err)
		}
		users = append(users, &u)
	}
	return users, rows.Err()
}
