// Package admin — handlers.go обрабатывает взаимодействие с админ-панелью.
// Панель работает через Reply Keyboard в личных сообщениях.
// Поток: аутентификация → клавиатура → выбор действия → пошаговый диалог.
package admin

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"habit-bot/internal/common"
	"habit-bot/internal/features/users"
)

// Handler обрабатывает админ-команды.
type Handler struct {
	service *Service
	bot     *tgbotapi.BotAPI
}

// NewHandler создаёт обработчик админ-панели.
func NewHandler(service *Service, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{service: service, bot: bot}
}

// HandleAdminMessage обрабатывает сообщение в контексте админ-панели.
// Возвращает true, если сообщение было обработано панелью.
func (h *Handler) HandleAdminMessage(ctx context.Context, chatID int64, userID int64, text string) bool {
	state := h.service.GetState(userID)

	// Обрабатываем состояние ожидания пароля
	if state != nil && state.State == StateAwaitingPassword {
		h.handlePasswordInput(ctx, chatID, userID, text)
		return true
	}

	// Вход в панель: без активной сессии запрашиваем пароль
	if strings.EqualFold(text, "админ") || strings.EqualFold(text, "панель") {
		if h.service.HasActiveSession(ctx, userID) {
			h.showKeyboard(chatID)
			return true
		}
		h.sendMessage(chatID, "🔐 Введите пароль для доступа к админ-панели:")
		h.service.SetState(userID, StateAwaitingPassword, nil)
		return true
	}

	// Всё остальное доступно только с активной сессией
	if !h.service.HasActiveSession(ctx, userID) {
		return false
	}

	// Обновляем активность сессии
	h.service.repo.UpdateActivity(ctx, userID)

	// Обрабатываем текущее состояние диалога
	if state != nil {
		switch state.State {
		case StateGrantSelect:
			h.handleUserSelect(ctx, chatID, userID, text, StateGrantAmount,
				"Введите сумму начисления:")
			return true
		case StateGrantAmount:
			h.handleGrantAmount(ctx, chatID, userID, text)
			return true
		case StateTakeSelect:
			h.handleUserSelect(ctx, chatID, userID, text, StateTakeAmount,
				"Введите сумму списания:")
			return true
		case StateTakeAmount:
			h.handleTakeAmount(ctx, chatID, userID, text)
			return true
		case StateBanSelect:
			h.handleBanSelect(ctx, chatID, userID, text)
			return true
		}
	}

	// Обрабатываем кнопки клавиатуры
	switch text {
	case "Выдать очки":
		h.startUserSelect(ctx, chatID, userID, StateGrantSelect)
		return true
	case "Забрать очки":
		h.startUserSelect(ctx, chatID, userID, StateTakeSelect)
		return true
	case "Бан/Разбан":
		h.startUserSelect(ctx, chatID, userID, StateBanSelect)
		return true
	case "Статистика":
		h.handleStats(ctx, chatID)
		return true
	case "Выйти":
		h.handleLogout(ctx, chatID, userID)
		return true
	}

	return false
}

// handlePasswordInput обрабатывает ввод пароля.
func (h *Handler) handlePasswordInput(ctx context.Context, chatID int64, userID int64, password string) {
	h.service.ClearState(userID)

	if err := h.service.VerifyPassword(ctx, userID, password); err != nil {
		h.sendMessage(chatID, fmt.Sprintf("❌ %s", err.Error()))
		return
	}

	h.sendMessage(chatID, "✅ Аутентификация успешна!")
	h.showKeyboard(chatID)
}

// showKeyboard отображает клавиатуру админ-панели.
func (h *Handler) showKeyboard(chatID int64) {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("Выдать очки"),
			tgbotapi.NewKeyboardButton("Забрать очки"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("Бан/Разбан"),
			tgbotapi.NewKeyboardButton("Статистика"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("Выйти"),
		),
	)

	msg := tgbotapi.NewMessage(chatID, "✅ Админ-панель открыта")
	msg.ReplyMarkup = keyboard
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки клавиатуры")
	}
}

// --- Пошаговые диалоги ---

// startUserSelect — Шаг 1: показать список пользователей.
func (h *Handler) startUserSelect(ctx context.Context, chatID int64, userID int64, nextState string) {
	list, err := h.service.ListUsers(ctx)
	if err != nil || len(list) == 0 {
		h.sendMessage(chatID, "Пользователей пока нет")
		return
	}

	var sb strings.Builder
	sb.WriteString("Выберите пользователя (отправьте номер):\n\n")
	for i, u := range list {
		sb.WriteString(fmt.Sprintf("%d. %s", i+1, u.DisplayName()))
		if u.IsBanned {
			sb.WriteString(" 🚫")
		}
		sb.WriteString("\n")
	}

	h.sendMessage(chatID, sb.String())
	h.service.SetState(userID, nextState, list)
}

// handleUserSelect — Шаг 2: админ выбрал номер, переходим к вводу суммы.
func (h *Handler) handleUserSelect(ctx context.Context, chatID int64, userID int64, text, nextState, prompt string) {
	state := h.service.GetState(userID)
	list := state.Data.([]*users.User)

	num, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || num < 1 || num > len(list) {
		h.sendMessage(chatID, "❌ Неверный номер. Попробуйте ещё раз.")
		return
	}

	selected := list[num-1]
	h.sendMessage(chatID, fmt.Sprintf("%s для %s.\n%s", actionName(nextState), selected.DisplayName(), prompt))
	h.service.SetState(userID, nextState, selected)
}

// handleGrantAmount — Шаг 3: ввод суммы начисления.
func (h *Handler) handleGrantAmount(ctx context.Context, chatID int64, userID int64, text string) {
	state := h.service.GetState(userID)
	selected := state.Data.(*users.User)
	defer h.service.ClearState(userID)

	amount, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil || amount <= 0 {
		h.sendMessage(chatID, "❌ Сумма должна быть целым положительным числом")
		return
	}

	if err := h.service.GrantPoints(ctx, selected.UserID, amount); err != nil {
		log.WithError(err).Error("Ошибка начисления очков")
		h.sendMessage(chatID, "❌ Не удалось начислить очки")
		return
	}

	h.sendMessage(chatID, fmt.Sprintf("✅ %s: %s", selected.DisplayName(), common.FormatSignedPoints(amount)))
}

// handleTakeAmount — Шаг 3: ввод суммы списания.
func (h *Handler) handleTakeAmount(ctx context.Context, chatID int64, userID int64, text string) {
	state := h.service.GetState(userID)
	selected := state.Data.(*users.User)
	defer h.service.ClearState(userID)

	amount, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil || amount <= 0 {
		h.sendMessage(chatID, "❌ Сумма должна быть целым положительным числом")
		return
	}

	if err := h.service.TakePoints(ctx, selected.UserID, amount); err != nil {
		log.WithError(err).Error("Ошибка списания очков")
		h.sendMessage(chatID, "❌ Не удалось списать очки")
		return
	}

	h.sendMessage(chatID, fmt.Sprintf("✅ %s: %s (не ниже нуля)", selected.DisplayName(), common.FormatSignedPoints(-amount)))
}

// handleBanSelect — Шаг 2 бана: переключаем флаг выбранного пользователя.
func (h *Handler) handleBanSelect(ctx context.Context, chatID int64, userID int64, text string) {
	state := h.service.GetState(userID)
	list := state.Data.([]*users.User)
	defer h.service.ClearState(userID)

	num, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || num < 1 || num > len(list) {
		h.sendMessage(chatID, "❌ Неверный номер")
		return
	}

	selected := list[num-1]
	banned := !selected.IsBanned
	if err := h.service.SetBanned(ctx, selected.UserID, banned); err != nil {
		log.WithError(err).Error("Ошибка смены бана")
		h.sendMessage(chatID, "❌ Не удалось изменить статус")
		return
	}

	if banned {
		h.sendMessage(chatID, fmt.Sprintf("🚫 %s забанен", selected.DisplayName()))
	} else {
		h.sendMessage(chatID, fmt.Sprintf("✅ %s разбанен", selected.DisplayName()))
	}
}

func (h *Handler) handleStats(ctx context.Context, chatID int64) {
	stats, err := h.service.Stats(ctx)
	if err != nil {
		log.WithError(err).Error("Ошибка получения статистики")
		h.sendMessage(chatID, "❌ Не удалось получить статистику")
		return
	}
	h.sendMessage(chatID, stats)
}

func (h *Handler) handleLogout(ctx context.Context, chatID int64, userID int64) {
	if err := h.service.Logout(ctx, userID); err != nil {
		log.WithError(err).Error("Ошибка выхода из панели")
	}

	msg := tgbotapi.NewMessage(chatID, "👋 Сессия завершена")
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}

// actionName — человекочитаемое название шага для подсказки.
func actionName(state string) string {
	switch state {
	case StateGrantAmount:
		return "Начисление"
	case StateTakeAmount:
		return "Списание"
	default:
		return "Действие"
	}
}

// sendMessage — утилита для отправки сообщений.
func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
