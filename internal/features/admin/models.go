// Package admin реализует админ-панель с парольной аутентификацией.
// models.go описывает структуры сессий и попыток входа.
package admin

import "time"

// Session — активная сессия администратора.
type Session struct {
	ID              int64     `db:"id"`
	UserID          int64     `db:"user_id"`
	SessionToken    string    `db:"session_token"`
	AuthenticatedAt time.Time `db:"authenticated_at"`
	ExpiresAt       time.Time `db:"expires_at"`
	LastActivity    time.Time `db:"last_activity"`
	IsActive        bool      `db:"is_active"`
}

// LoginAttempt — попытка входа (для защиты от brute-force).
type LoginAttempt struct {
	ID          int64     `db:"id"`
	UserID      int64     `db:"user_id"`
	AttemptTime time.Time `db:"attempt_time"`
	Success     bool      `db:"success"`
}

// DialogState — состояние диалога с админом (конечный автомат).
// Админ-панель работает по шагам: выбор действия → выбор пользователя → ввод суммы.
type DialogState struct {
	State     string      // Текущее состояние ("", "awaiting_password", "grant_select", ...)
	Data      interface{} // Данные контекста (список пользователей, выбранный пользователь)
	ExpiresAt time.Time   // Когда состояние истекает (5 минут)
}

// Возможные состояния админ-диалога
const (
	StateNone             = ""                  // Нет активного состояния
	StateAwaitingPassword = "awaiting_password" // Ждём пароль
	StateGrantSelect      = "grant_select"      // Ждём выбор пользователя для начисления
	StateGrantAmount      = "grant_amount"      // Ждём сумму начисления
	StateTakeSelect       = "take_select"       // Ждём выбор пользователя для списания
	StateTakeAmount       = "take_amount"       // Ждём сумму списания
	StateBanSelect        = "ban_select"        // Ждём выбор пользователя для бана/разбана
)
