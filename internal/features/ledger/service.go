// Package ledger — service.go содержит бизнес-логику работы с очками.
// Валидация сумм, получение баланса и истории транзакций.
package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"habit-bot/internal/common"
)

// Service управляет очками пользователей.
type Service struct {
	repo *Repository    // Репозиторий для работы с БД
	loc  *time.Location // Часовой пояс для отображения дат
}

// NewService создаёт новый сервис очков.
func NewService(repo *Repository, loc *time.Location) *Service {
	return &Service{repo: repo, loc: loc}
}

// GetBalance возвращает текущий баланс пользователя.
func (s *Service) GetBalance(ctx context.Context, userID int64) (int64, error) {
	return s.repo.GetBalance(ctx, userID)
}

// GetStats возвращает баланс вместе с суммарными заработано/потрачено.
func (s *Service) GetStats(ctx context.Context, userID int64) (*Balance, error) {
	return s.repo.GetTotalStats(ctx, userID)
}

// CreateBalance создаёт начальный баланс для нового пользователя.
func (s *Service) CreateBalance(ctx context.Context, userID int64, starting int64) error {
	return s.repo.CreateBalance(ctx, userID, starting)
}

// Credit начисляет очки пользователю.
// Используется админкой; награды за привычки начисляются
// атомарно вместе с отметкой в пакете habits.
func (s *Service) Credit(ctx context.Context, userID int64, amount int64, txType, description string) error {
	if amount <= 0 {
		return common.ErrInvalidAmount
	}
	if err := s.repo.Credit(ctx, userID, amount, txType, description); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"amount":  amount,
		"type":    txType,
	}).Info("Очки начислены")
	return nil
}

// Debit списывает очки пользователя.
// Возвращает common.ErrInsufficientPoints, если очков не хватает.
func (s *Service) Debit(ctx context.Context, userID int64, amount int64, txType, description string) error {
	if amount <= 0 {
		return common.ErrInvalidAmount
	}
	if err := s.repo.Debit(ctx, userID, amount, txType, description); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"amount":  amount,
		"type":    txType,
	}).Info("Очки списаны")
	return nil
}

// GetTransactionHistory возвращает форматированную историю транзакций.
// Последние 10 операций, новые сверху.
func (s *Service) GetTransactionHistory(ctx context.Context, userID int64) (string, error) {
	transactions, err := s.repo.GetTransactions(ctx, userID, 10)
	if err != nil {
		return "", err
	}

	if len(transactions) == 0 {
		return "📋 У вас пока нет транзакций", nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📋 Последние %d операций:\n\n", len(transactions)))

	for i, tx := range transactions {
		// Определяем знак: - для списаний, + для начислений
		sign := "+"
		if tx.IsDebit {
			sign = "-"
		}

		sb.WriteString(fmt.Sprintf("%d. %s | %s%d %s | %s\n",
			i+1,
			common.FormatDateTime(tx.CreatedAt, s.loc),
			sign,
			tx.Amount,
			common.PluralizePoints(tx.Amount),
			tx.Description,
		))
	}

	return sb.String(), nil
}
