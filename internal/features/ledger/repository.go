// Package ledger — repository.go выполняет все операции с таблицами balances и transactions.
// Все денежные операции выполняются в транзакциях БД для целостности данных.
//
// Функции ApplyCredit/ApplyDebit работают внутри ЧУЖОЙ транзакции (pgx.Tx):
// так пакет habits может в одной транзакции вставить отметку о выполнении
// и изменить баланс — либо произойдёт и то и другое, либо ничего.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"habit-bot/internal/common"
)

// Repository предоставляет методы для работы с балансами и транзакциями.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт новый репозиторий баланса.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateBalance создаёт начальный баланс для нового пользователя.
// Если запись уже есть — ничего не делает. Ненулевой стартовый баланс
// записывается в историю транзакций.
func (r *Repository) CreateBalance(ctx context.Context, userID int64, starting int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO balances (user_id, balance, total_earned, total_spent)
		VALUES ($1, $2, $2, 0)
		ON CONFLICT (user_id) DO NOTHING
	`
	tag, err := tx.Exec(ctx, query, userID, starting)
	if err != nil {
		return fmt.Errorf("ошибка создания баланса: %w", err)
	}

	if tag.RowsAffected() > 0 && starting > 0 {
		_, err = tx.Exec(ctx, `
			INSERT INTO transactions (user_id, amount, is_debit, transaction_type, description)
			VALUES ($1, $2, FALSE, $3, $4)
		`, userID, starting, TxTypeStartingBalance, "Стартовый баланс")
		if err != nil {
			return fmt.Errorf("ошибка записи стартовой транзакции: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// GetBalance возвращает текущий баланс пользователя.
func (r *Repository) GetBalance(ctx context.Context, userID int64) (int64, error) {
	query := `SELECT balance FROM balances WHERE user_id = $1`
	var balance int64
	err := r.db.QueryRow(ctx, query, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, common.ErrUserNotFound
		}
		return 0, fmt.Errorf("ошибка получения баланса: %w", err)
	}
	return balance, nil
}

// ApplyCredit начисляет очки внутри уже открытой транзакции tx.
// Обновляет balance/total_earned и записывает транзакцию в историю.
func ApplyCredit(ctx context.Context, tx pgx.Tx, userID int64, amount int64, txType, description string) error {
	tag, err := tx.Exec(ctx, `
		UPDATE balances
		SET balance = balance + $2, total_earned = total_earned + $2, updated_at = NOW()
		WHERE user_id = $1
	`, userID, amount)
	if err != nil {
		return fmt.Errorf("ошибка начисления: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrUserNotFound
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO transactions (user_id, amount, is_debit, transaction_type, description)
		VALUES ($1, $2, FALSE, $3, $4)
	`, userID, amount, txType, description)
	if err != nil {
		return fmt.Errorf("ошибка записи транзакции: %w", err)
	}
	return nil
}

// ApplyDebit списывает очки внутри уже открытой транзакции tx.
// Строка баланса блокируется (FOR UPDATE), чтобы два параллельных списания
// не прошли по одному и тому же остатку. Если очков не хватает —
// возвращает common.ErrInsufficientPoints, транзакцию должен откатить вызывающий.
func ApplyDebit(ctx context.Context, tx pgx.Tx, userID int64, amount int64, txType, description string) error {
	var currentBalance int64
	err := tx.QueryRow(ctx, `
		SELECT balance FROM balances WHERE user_id = $1 FOR UPDATE
	`, userID).Scan(&currentBalance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.ErrUserNotFound
		}
		return fmt.Errorf("ошибка получения баланса: %w", err)
	}

	if currentBalance < amount {
		return common.ErrInsufficientPoints
	}

	_, err = tx.Exec(ctx, `
		UPDATE balances
		SET balance = balance - $2, total_spent = total_spent + $2, updated_at = NOW()
		WHERE user_id = $1
	`, userID, amount)
	if err != nil {
		return fmt.Errorf("ошибка списания: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO transactions (user_id, amount, is_debit, transaction_type, description)
		VALUES ($1, $2, TRUE, $3, $4)
	`, userID, amount, txType, description)
	if err != nil {
		return fmt.Errorf("ошибка записи транзакции: %w", err)
	}
	return nil
}

// Credit начисляет очки пользователю в собственной транзакции.
// Используется для операций, не связанных с отметками привычек
// (выдача админом, стартовый бонус).
func (r *Repository) Credit(ctx context.Context, userID int64, amount int64, txType, description string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := ApplyCredit(ctx, tx, userID, amount, txType, description); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Debit списывает очки в собственной транзакции.
// Возвращает common.ErrInsufficientPoints, если очков не хватает —
// баланс при этом не меняется.
func (r *Repository) Debit(ctx context.Context, userID int64, amount int64, txType, description string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := ApplyDebit(ctx, tx, userID, amount, txType, description); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetTransactions возвращает последние N транзакций пользователя.
func (r *Repository) GetTransactions(ctx context.Context, userID int64, limit int) ([]*Transaction, error) {
	query := `
		SELECT id, user_id, amount, is_debit, transaction_type, description, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения транзакций: %w", err)
	}
	defer rows.Close()

	var transactions []*Transaction
	for rows.Next() {
		var t Transaction
		err := rows.Scan(
			&t.ID, &t.UserID, &t.Amount, &t.IsDebit,
			&t.TransactionType, &t.Description, &t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования транзакции: %w", err)
		}
		transactions = append(transactions, &t)
	}
	return transactions, rows.Err()
}

// GetTotalStats возвращает общую статистику баланса пользователя.
func (r *Repository) GetTotalStats(ctx context.Context, userID int64) (*Balance, error) {
	query := `
		SELECT id, user_id, balance, total_earned, total_spent, created_at, updated_at
		FROM balances
		WHERE user_id = $1
	`
	var b Balance
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&b.ID, &b.UserID, &b.Balance, &b.TotalEarned, &b.TotalSpent,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("ошибка получения статистики: %w", err)
	}
	return &b, nil
}
