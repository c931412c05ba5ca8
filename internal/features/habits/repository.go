// Package habits — repository.go выполняет операции с таблицами habits,
// completions и notes.
//
// Ключевые операции — CreateCompletionWithCredit и CreateRedemptionWithDebit:
// вставка отметки и изменение баланса выполняются в ОДНОЙ транзакции БД.
// Гонка двух одновременных отметок одного дня разрешается UNIQUE-ограничением
// (habit_id, completion_date): вторая вставка падает с кодом 23505,
// и баланс второй раз не меняется.
package habits

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"habit-bot/internal/common"
	"habit-bot/internal/db/postgres"
	"habit-bot/internal/features/ledger"
)

// Repository предоставляет методы для работы с привычками и отметками.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий привычек.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// --- Привычки ---

// CreateHabit добавляет привычку и возвращает её с заполненным ID.
func (r *Repository) CreateHabit(ctx context.Context, h *Habit) (*Habit, error) {
	query := `
		INSERT INTO habits (user_id, category_id, name, description, points_per_completion)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		h.UserID, h.CategoryID, h.Name, h.Description, h.PointsPerCompletion,
	).Scan(&h.ID, &h.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания привычки: %w", err)
	}
	return h, nil
}

// GetHabitByID возвращает привычку по ID.
func (r *Repository) GetHabitByID(ctx context.Context, id int64) (*Habit, error) {
	query := `
		SELECT id, user_id, category_id, name, description, points_per_completion, created_at
		FROM habits
		WHERE id = $1
	`
	var h Habit
	err := r.db.QueryRow(ctx, query, id).Scan(
		&h.ID, &h.UserID, &h.CategoryID, &h.Name, &h.Description,
		&h.PointsPerCompletion, &h.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrHabitNotFound
		}
		return nil, fmt.Errorf("ошибка получения привычки: %w", err)
	}
	return &h, nil
}

// GetHabitByName ищет привычку пользователя по названию (без учёта регистра).
// В командах бота пользователь пишет название, а не ID.
func (r *Repository) GetHabitByName(ctx context.Context, userID int64, name string) (*Habit, error) {
	query := `
		SELECT id, user_id, category_id, name, description, points_per_completion, created_at
		FROM habits
		WHERE user_id = $1 AND LOWER(name) = LOWER($2)
	`
	var h Habit
	err := r.db.QueryRow(ctx, query, userID, name).Scan(
		&h.ID, &h.UserID, &h.CategoryID, &h.Name, &h.Description,
		&h.PointsPerCompletion, &h.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrHabitNotFound
		}
		return nil, fmt.Errorf("ошибка поиска привычки: %w", err)
	}
	return &h, nil
}

// GetHabitsByUser возвращает привычки пользователя, новые сверху.
// Если categoryID не nil — только привычки этой категории.
func (r *Repository) GetHabitsByUser(ctx context.Context, userID int64, categoryID *int64) ([]*Habit, error) {
	query := `
		SELECT id, user_id, category_id, name, description, points_per_completion, created_at
		FROM habits
		WHERE user_id = $1 AND ($2::BIGINT IS NULL OR category_id = $2)
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID, categoryID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения привычек: %w", err)
	}
	defer rows.Close()

	var habits []*Habit
	for rows.Next() {
		var h Habit
		err := rows.Scan(
			&h.ID, &h.UserID, &h.CategoryID, &h.Name, &h.Description,
			&h.PointsPerCompletion, &h.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования привычки: %w", err)
		}
		habits = append(habits, &h)
	}
	return habits, rows.Err()
}

// UpdateHabit изменяет название, описание, очки и категорию привычки.
func (r *Repository) UpdateHabit(ctx context.Context, h *Habit) error {
	query := `
		UPDATE habits
		SET name = $2, description = $3, points_per_completion = $4, category_id = $5
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query, h.ID, h.Name, h.Description, h.PointsPerCompletion, h.CategoryID)
	if err != nil {
		return fmt.Errorf("ошибка обновления привычки: %w", err)
	}
	return nil
}

// DeleteHabit удаляет привычку каскадом: сначала заметки её отметок,
// затем отметки, затем саму привычку. Всё в одной транзакции —
// оборванных заметок или отметок не остаётся.
func (r *Repository) DeleteHabit(ctx context.Context, habitID int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		DELETE FROM notes
		WHERE completion_id IN (SELECT id FROM completions WHERE habit_id = $1)
	`, habitID)
	if err != nil {
		return fmt.Errorf("ошибка удаления заметок: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM completions WHERE habit_id = $1`, habitID); err != nil {
		return fmt.Errorf("ошибка удаления отметок: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM habits WHERE id = $1`, habitID); err != nil {
		return fmt.Errorf("ошибка удаления привычки: %w", err)
	}

	return tx.Commit(ctx)
}

// --- Отметки ---

const completionColumns = `id, habit_id, user_id, completion_date, is_point_redeemed, points, created_at`

// scanCompletion читает одну отметку из строки результата.
// Колонка DATE сканируется во time.Time и обрезается до календарного дня.
func scanCompletion(row pgx.Row) (*Completion, error) {
	var c Completion
	var date time.Time
	err := row.Scan(&c.ID, &c.HabitID, &c.UserID, &date, &c.IsPointRedeemed, &c.Points, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	c.Date = common.DateOf(date)
	return &c, nil
}

// ListAllCompletions возвращает ВСЕ отметки привычки.
// Нужно для подсчёта стрика: серия может быть длиннее окна показа.
func (r *Repository) ListAllCompletions(ctx context.Context, habitID int64) ([]*Completion, error) {
	query := `
		SELECT ` + completionColumns + `
		FROM completions
		WHERE habit_id = $1
		ORDER BY completion_date
	`
	return r.queryCompletions(ctx, query, habitID)
}

func (r *Repository) queryCompletions(ctx context.Context, query string, args ...any) ([]*Completion, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения отметок: %w", err)
	}
	defer rows.Close()

	var completions []*Completion
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования отметки: %w", err)
		}
		completions = append(completions, c)
	}
	return completions, rows.Err()
}

// GetCompletionByID возвращает отметку по ID.
func (r *Repository) GetCompletionByID(ctx context.Context, id int64) (*Completion, error) {
	query := `SELECT ` + completionColumns + ` FROM completions WHERE id = $1`
	c, err := scanCompletion(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrCompletionNotFound
		}
		return nil, fmt.Errorf("ошибка получения отметки: %w", err)
	}
	return c, nil
}

// GetCompletionByDate возвращает отметку привычки за конкретный день.
func (r *Repository) GetCompletionByDate(ctx context.Context, habitID int64, date common.Date) (*Completion, error) {
	query := `SELECT ` + completionColumns + ` FROM completions WHERE habit_id = $1 AND completion_date = $2`
	c, err := scanCompletion(r.db.QueryRow(ctx, query, habitID, date.Time()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrCompletionNotFound
		}
		return nil, fmt.Errorf("ошибка получения отметки: %w", err)
	}
	return c, nil
}

// CreateCompletionWithCredit вставляет обычную отметку и начисляет награду
// в одной транзакции. Если день уже отмечен — common.ErrAlreadyCompleted,
// баланс не меняется.
func (r *Repository) CreateCompletionWithCredit(ctx context.Context, c *Completion, description string) (*Completion, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := insertCompletion(ctx, tx, c); err != nil {
		return nil, err
	}

	// Начисляем награду только после успешной вставки: при гонке двух
	// запросов проигравший упадёт на UNIQUE и до баланса не дойдёт.
	if err := ledger.ApplyCredit(ctx, tx, c.UserID, c.Points, ledger.TxTypeCompletionReward, description); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return c, nil
}

// CreateRedemptionWithDebit вставляет выкупленную отметку и списывает цену
// в одной транзакции. Если очков не хватает — common.ErrInsufficientPoints,
// отметка не создаётся.
func (r *Repository) CreateRedemptionWithDebit(ctx context.Context, c *Completion, cost int64, description string) (*Completion, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := insertCompletion(ctx, tx, c); err != nil {
		return nil, err
	}

	if err := ledger.ApplyDebit(ctx, tx, c.UserID, cost, ledger.TxTypeRedeemSpend, description); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return c, nil
}

// insertCompletion вставляет отметку внутри транзакции.
// Нарушение UNIQUE (habit_id, completion_date) превращается
// в common.ErrAlreadyCompleted.
func insertCompletion(ctx context.Context, tx pgx.Tx, c *Completion) error {
	query := `
		INSERT INTO completions (habit_id, user_id, completion_date, is_point_redeemed, points)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := tx.QueryRow(ctx, query,
		c.HabitID, c.UserID, c.Date.Time(), c.IsPointRedeemed, c.Points,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return common.ErrAlreadyCompleted
		}
		return fmt.Errorf("ошибка создания отметки: %w", err)
	}
	return nil
}

// --- Заметки ---

// CreateNote добавляет заметку к отметке.
func (r *Repository) CreateNote(ctx context.Context, n *Note) (*Note, error) {
	query := `
		INSERT INTO notes (completion_id, content)
		VALUES ($1, $2)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query, n.CompletionID, n.Content).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания заметки: %w", err)
	}
	return n, nil
}

// ListNotes возвращает заметки отметки в порядке создания.
func (r *Repository) ListNotes(ctx context.Context, completionID int64) ([]*Note, error) {
	query := `
		SELECT id, completion_id, content, created_at
		FROM notes
		WHERE completion_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, completionID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения заметок: %w", err)
	}
	defer rows.Close()

	var notes []*Note
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.CompletionID, &n.Content, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования заметки: %w", err)
		}
		notes = append(notes, &n)
	}
	return notes, rows.Err()
}

// ListUsersWithPendingHabits возвращает незабаненных пользователей,
// у которых на указанный день есть хотя бы одна неотмеченная привычка.
// Используется планировщиком вечерних напоминаний.
func (r *Repository) ListUsersWithPendingHabits(ctx context.Context, date common.Date) ([]int64, error) {
	query := `
		SELECT DISTINCT h.user_id
		FROM habits h
		JOIN users u ON u.user_id = h.user_id AND u.is_banned = FALSE
		WHERE NOT EXISTS (
			SELECT 1 FROM completions c
			WHERE c.habit_id = h.id AND c.completion_date = $1
		)
	`
	rows, err := r.db.Query(ctx, query, date.Time())
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки для напоминаний: %w", err)
	}
	defer rows.Close()

	var userIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("ошибка сканирования пользователя: %w", err)
		}
		userIDs = append(userIDs, id)
	}
	return userIDs, rows.Err()
}
