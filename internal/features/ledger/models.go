// Package ledger управляет балансом очков пользователей.
// models.go описывает структуры для балансов и транзакций.
package ledger

import "time"

// Balance представляет баланс очков пользователя.
// Каждый пользователь имеет ровно одну запись в таблице balances.
// Баланс никогда не бывает отрицательным: списание, которое увело бы
// его в минус, отклоняется (плюс CHECK-ограничение в схеме).
type Balance struct {
	ID          int64     `db:"id"`           // ID записи
	UserID      int64     `db:"user_id"`      // Telegram user ID
	Balance     int64     `db:"balance"`      // Текущий баланс
	TotalEarned int64     `db:"total_earned"` // Сколько всего заработано
	TotalSpent  int64     `db:"total_spent"`  // Сколько всего потрачено
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// Transaction представляет одно движение очков.
// Все начисления и списания записываются сюда.
type Transaction struct {
	ID              int64     `db:"id"`               // ID транзакции
	UserID          int64     `db:"user_id"`          // Чей баланс изменился
	Amount          int64     `db:"amount"`           // Сумма (всегда положительная)
	IsDebit         bool      `db:"is_debit"`         // true — списание, false — начисление
	TransactionType string    `db:"transaction_type"` // Тип: 'completion_reward', 'redeem_spend', ...
	Description     string    `db:"description"`      // Описание для отображения
	CreatedAt       time.Time `db:"created_at"`       // Время транзакции
}

// Допустимые типы транзакций
const (
	TxTypeCompletionReward = "completion_reward" // Награда за выполнение привычки
	TxTypeRedeemSpend      = "redeem_spend"      // Выкуп пропущенного дня
	TxTypeStartingBalance  = "starting_balance"  // Стартовый баланс при регистрации
	TxTypeAdminGive        = "admin_give"        // Выдача админом
	TxTypeAdminTake        = "admin_take"        // Изъятие админом
)
