// Package ledger — handlers.go обрабатывает команды баланса: !баланс и !транзакции.
package ledger

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"habit-bot/internal/common"
)

// Handler обрабатывает команды баланса очков.
type Handler struct {
	service *Service
	bot     *tgbotapi.BotAPI
}

// NewHandler создаёт новый обработчик команд баланса.
func NewHandler(service *Service, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{service: service, bot: bot}
}

// HandleBalance обрабатывает команду !баланс — показывает баланс и статистику.
//
// Формат ответа:
//
//	💰 Ваши очки: 150
//	Всего заработано: 420
//	Всего потрачено: 270
func (h *Handler) HandleBalance(ctx context.Context, chatID, userID int64) {
	stats, err := h.service.GetStats(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			h.sendMessage(chatID, "Вы ещё не зарегистрированы. Отправьте /start")
			return
		}
		log.WithError(err).Error("Ошибка получения баланса")
		h.sendMessage(chatID, "❌ Ошибка получения баланса")
		return
	}

	text := fmt.Sprintf(
		"💰 Ваши очки: %d\n\nВсего заработано: %d\nВсего потрачено: %d",
		stats.Balance, stats.TotalEarned, stats.TotalSpent,
	)
	h.sendMessage(chatID, text)
}

// HandleTransactions обрабатывает команду !транзакции — история операций.
func (h *Handler) HandleTransactions(ctx context.Context, chatID, userID int64) {
	history, err := h.service.GetTransactionHistory(ctx, userID)
	if err != nil {
		log.WithError(err).Error("Ошибка получения истории транзакций")
		h.sendMessage(chatID, "❌ Ошибка получения истории")
		return
	}
	h.sendMessage(chatID, history)
}

// sendMessage — вспомогательный метод для отправки текстовых сообщений.
func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
