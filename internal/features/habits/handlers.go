// Package habits — handlers.go обрабатывает команды привычек:
// !привычки, !новая, !изменить, !готово, !выкупить, !цена, !стрик, !заметка, !удалить.
package habits

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"habit-bot/internal/common"
)

// Handler обрабатывает команды привычек.
type Handler struct {
	service *Service
	bot     *tgbotapi.BotAPI
}

// NewHandler создаёт обработчик команд привычек.
func NewHandler(service *Service, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{service: service, bot: bot}
}

// HandleList обрабатывает команду !привычки — все привычки с календарём и стриком.
func (h *Handler) HandleList(ctx context.Context, chatID, userID int64) {
	views, err := h.service.ListHabitViews(ctx, userID, nil)
	if err != nil {
		log.WithError(err).Error("Ошибка получения привычек")
		h.sendMessage(chatID, "❌ Ошибка получения привычек")
		return
	}

	if len(views) == 0 {
		h.sendMessage(chatID, "📋 У вас пока нет привычек.\nСоздайте: !новая <категория> <название> [очки]")
		return
	}

	var sb strings.Builder
	sb.WriteString("📋 Ваши привычки:\n")
	for _, v := range views {
		sb.WriteString("\n" + formatHabitView(v) + "\n")
	}
	h.sendMessage(chatID, sb.String())
}

// HandleCreate обрабатывает команду !новая <категория> <название> [очки].
func (h *Handler) HandleCreate(ctx context.Context, chatID, userID int64, args []string) {
	if len(args) < 2 {
		h.sendMessage(chatID, "Использование: !новая <категория> <название> [очки]")
		return
	}

	categoryName := args[0]
	rest := args[1:]

	// Последний аргумент может быть числом очков
	var points int64
	if len(rest) > 1 {
		if n, err := strconv.ParseInt(rest[len(rest)-1], 10, 64); err == nil {
			points = n
			rest = rest[:len(rest)-1]
		}
	}
	name := strings.Join(rest, " ")

	category, err := h.service.categories.Resolve(ctx, userID, categoryName)
	if err != nil {
		if errors.Is(err, common.ErrCategoryNotFound) {
			h.sendMessage(chatID, fmt.Sprintf("❌ Категория %q не найдена. Список: !категории", categoryName))
			return
		}
		log.WithError(err).Error("Ошибка поиска категории")
		h.sendMessage(chatID, "❌ Не удалось создать привычку")
		return
	}

	habit, err := h.service.CreateHabit(ctx, userID, CreateHabitInput{
		Name:       name,
		CategoryID: category.ID,
		Points:     points,
	})
	if err != nil {
		switch {
		case errors.Is(err, common.ErrEmptyHabitName), errors.Is(err, common.ErrInvalidHabitPoints):
			h.sendMessage(chatID, "❌ "+err.Error())
		default:
			log.WithError(err).Error("Ошибка создания привычки")
			h.sendMessage(chatID, "❌ Не удалось создать привычку")
		}
		return
	}

	h.sendMessage(chatID, fmt.Sprintf("✅ Привычка %q создана: %s за выполнение",
		habit.Name, common.FormatPoints(habit.PointsPerCompletion)))
}

// HandleComplete обрабатывает команду !готово <название> [дата].
// Без даты отмечается сегодняшний день.
func (h *Handler) HandleComplete(ctx context.Context, chatID, userID int64, args []string) {
	habit, date, ok := h.resolveHabitAndDate(ctx, chatID, userID, args,
		"Использование: !готово <название> [дата ГГГГ-ММ-ДД]")
	if !ok {
		return
	}

	view, err := h.service.CompleteHabit(ctx, userID, habit.ID, date)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrAlreadyCompleted):
			h.sendMessage(chatID, fmt.Sprintf("⚠️ День %s уже отмечен у привычки %q", date, habit.Name))
		default:
			log.WithError(err).Error("Ошибка отметки привычки")
			h.sendMessage(chatID, "❌ Не удалось отметить привычку")
		}
		return
	}

	h.sendMessage(chatID, fmt.Sprintf("✅ %q выполнено за %s! +%s\n\n%s",
		habit.Name, date, common.FormatPoints(habit.PointsPerCompletion), formatHabitView(view)))
}

// HandleQuote обрабатывает команду !цена <название> <дата> —
// сколько стоит выкуп пропущенного дня.
func (h *Handler) HandleQuote(ctx context.Context, chatID, userID int64, args []string) {
	habit, date, ok := h.resolveRedeemArgs(ctx, chatID, userID, args,
		"Использование: !цена <название> <дата ГГГГ-ММ-ДД>")
	if !ok {
		return
	}

	cost, err := h.service.QuoteRedemption(ctx, userID, habit.ID, date)
	if err != nil {
		h.sendRedeemError(chatID, habit, date, err)
		return
	}

	h.sendMessage(chatID, fmt.Sprintf("💱 Выкуп %s у привычки %q обойдётся в %s.\nВыкупить: !выкупить %s %s",
		date, habit.Name, common.FormatPoints(cost), habit.Name, date))
}

// HandleRedeem обрабатывает команду !выкупить <название> <дата>.
func (h *Handler) HandleRedeem(ctx context.Context, chatID, userID int64, args []string) {
	habit, date, ok := h.resolveRedeemArgs(ctx, chatID, userID, args,
		"Использование: !выкупить <название> <дата ГГГГ-ММ-ДД>")
	if !ok {
		return
	}

	view, cost, err := h.service.RedeemDay(ctx, userID, habit.ID, date)
	if err != nil {
		h.sendRedeemError(chatID, habit, date, err)
		return
	}

	h.sendMessage(chatID, fmt.Sprintf("🟨 День %s выкуплен за %s\n\n%s",
		date, common.FormatPoints(cost), formatHabitView(view)))
}

// HandleStreak обрабатывает команду !стрик <название>.
func (h *Handler) HandleStreak(ctx context.Context, chatID, userID int64, args []string) {
	if len(args) == 0 {
		h.sendMessage(chatID, "Использование: !стрик <название>")
		return
	}

	habit, ok := h.resolveHabit(ctx, chatID, userID, strings.Join(args, " "))
	if !ok {
		return
	}

	view, err := h.service.GetHabitView(ctx, userID, habit.ID)
	if err != nil {
		log.WithError(err).Error("Ошибка получения привычки")
		h.sendMessage(chatID, "❌ Ошибка получения привычки")
		return
	}

	if view.CurrentStreak == 0 {
		h.sendMessage(chatID, fmt.Sprintf("😴 Стрик у %q прерван. Начните заново: !готово %s", habit.Name, habit.Name))
		return
	}
	h.sendMessage(chatID, fmt.Sprintf("🔥 Текущий стрик у %q: %s подряд", habit.Name, common.FormatDays(view.CurrentStreak)))
}

// HandleDelete обрабатывает команду !удалить <название>.
func (h *Handler) HandleDelete(ctx context.Context, chatID, userID int64, args []string) {
	if len(args) == 0 {
		h.sendMessage(chatID, "Использование: !удалить <название>")
		return
	}

	habit, ok := h.resolveHabit(ctx, chatID, userID, strings.Join(args, " "))
	if !ok {
		return
	}

	if err := h.service.DeleteHabit(ctx, userID, habit.ID); err != nil {
		log.WithError(err).Error("Ошибка удаления привычки")
		h.sendMessage(chatID, "❌ Не удалось удалить привычку")
		return
	}
	h.sendMessage(chatID, fmt.Sprintf("🗑 Привычка %q удалена вместе с историей. Очки остаются при вас.", habit.Name))
}

// HandleUpdate обрабатывает команду !изменить <название> <поле> <значение>.
// Поля: название, описание, очки, категория. История отметок не трогается.
func (h *Handler) HandleUpdate(ctx context.Context, chatID, userID int64, args []string) {
	const usage = "Использование: !изменить <название> <поле> <значение>\nПоля: название, описание, очки, категория"
	if len(args) < 3 {
		h.sendMessage(chatID, usage)
		return
	}

	habit, ok := h.resolveHabit(ctx, chatID, userID, args[0])
	if !ok {
		return
	}

	field := strings.ToLower(args[1])
	value := strings.Join(args[2:], " ")

	var in UpdateHabitInput
	switch field {
	case "название":
		in.Name = &value
	case "описание":
		in.Description = &value
	case "очки":
		points, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			h.sendMessage(chatID, "❌ Очки должны быть числом, например: !изменить Зарядка очки 15")
			return
		}
		in.Points = &points
	case "категория":
		category, err := h.service.categories.Resolve(ctx, userID, value)
		if err != nil {
			if errors.Is(err, common.ErrCategoryNotFound) {
				h.sendMessage(chatID, fmt.Sprintf("❌ Категория %q не найдена. Список: !категории", value))
				return
			}
			log.WithError(err).Error("Ошибка поиска категории")
			h.sendMessage(chatID, "❌ Не удалось изменить привычку")
			return
		}
		in.CategoryID = &category.ID
	default:
		h.sendMessage(chatID, usage)
		return
	}

	updated, err := h.service.UpdateHabit(ctx, userID, habit.ID, in)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrEmptyHabitName), errors.Is(err, common.ErrInvalidHabitPoints):
			h.sendMessage(chatID, "❌ "+err.Error())
		default:
			log.WithError(err).Error("Ошибка изменения привычки")
			h.sendMessage(chatID, "❌ Не удалось изменить привычку")
		}
		return
	}

	h.sendMessage(chatID, fmt.Sprintf("✏️ Привычка %q обновлена: %s за выполнение",
		updated.Name, common.FormatPoints(updated.PointsPerCompletion)))
}

// HandleNote обрабатывает команду !заметка <название> <дата> <текст>.
func (h *Handler) HandleNote(ctx context.Context, chatID, userID int64, args []string) {
	if len(args) < 3 {
		h.sendMessage(chatID, "Использование: !заметка <название> <дата ГГГГ-ММ-ДД> <текст>")
		return
	}

	habit, ok := h.resolveHabit(ctx, chatID, userID, args[0])
	if !ok {
		return
	}

	date, err := common.ParseDate(args[1])
	if err != nil {
		h.sendMessage(chatID, "❌ Дата в формате ГГГГ-ММ-ДД, например 2026-08-30")
		return
	}

	completion, err := h.service.FindCompletion(ctx, userID, habit.ID, date)
	if err != nil {
		if errors.Is(err, common.ErrCompletionNotFound) {
			h.sendMessage(chatID, fmt.Sprintf("❌ День %s у привычки %q не отмечен — заметку прикрепить не к чему", date, habit.Name))
			return
		}
		log.WithError(err).Error("Ошибка поиска отметки")
		h.sendMessage(chatID, "❌ Не удалось добавить заметку")
		return
	}

	content := strings.Join(args[2:], " ")
	if _, err := h.service.AddNote(ctx, userID, completion.ID, content); err != nil {
		if errors.Is(err, common.ErrEmptyNote) {
			h.sendMessage(chatID, "❌ "+err.Error())
			return
		}
		log.WithError(err).Error("Ошибка добавления заметки")
		h.sendMessage(chatID, "❌ Не удалось добавить заметку")
		return
	}

	h.sendMessage(chatID, fmt.Sprintf("📝 Заметка к %s у %q сохранена", date, habit.Name))
}

// --- Вспомогательное ---

// resolveHabit находит привычку по названию и сообщает, если её нет.
func (h *Handler) resolveHabit(ctx context.Context, chatID, userID int64, name string) (*Habit, bool) {
	habit, err := h.service.ResolveHabit(ctx, userID, name)
	if err != nil {
		if errors.Is(err, common.ErrHabitNotFound) {
			h.sendMessage(chatID, fmt.Sprintf("❌ Привычка %q не найдена. Список: !привычки", name))
			return nil, false
		}
		log.WithError(err).Error("Ошибка поиска привычки")
		h.sendMessage(chatID, "❌ Ошибка поиска привычки")
		return nil, false
	}
	return habit, true
}

// resolveHabitAndDate разбирает аргументы вида <название...> [дата].
// Дата опциональна и по умолчанию — сегодня.
func (h *Handler) resolveHabitAndDate(ctx context.Context, chatID, userID int64, args []string, usage string) (*Habit, common.Date, bool) {
	if len(args) == 0 {
		h.sendMessage(chatID, usage)
		return nil, common.Date{}, false
	}

	date := h.service.Today()
	nameArgs := args
	if len(args) > 1 {
		if d, err := common.ParseDate(args[len(args)-1]); err == nil {
			date = d
			nameArgs = args[:len(args)-1]
		}
	}

	habit, ok := h.resolveHabit(ctx, chatID, userID, strings.Join(nameArgs, " "))
	if !ok {
		return nil, common.Date{}, false
	}
	return habit, date, true
}

// resolveRedeemArgs разбирает аргументы вида <название...> <дата>.
// Дата обязательна — выкупать можно только конкретный прошлый день.
func (h *Handler) resolveRedeemArgs(ctx context.Context, chatID, userID int64, args []string, usage string) (*Habit, common.Date, bool) {
	if len(args) < 2 {
		h.sendMessage(chatID, usage)
		return nil, common.Date{}, false
	}

	date, err := common.ParseDate(args[len(args)-1])
	if err != nil {
		h.sendMessage(chatID, "❌ Дата в формате ГГГГ-ММ-ДД, например 2026-08-30")
		return nil, common.Date{}, false
	}

	habit, ok := h.resolveHabit(ctx, chatID, userID, strings.Join(args[:len(args)-1], " "))
	if !ok {
		return nil, common.Date{}, false
	}
	return habit, date, true
}

// sendRedeemError переводит ошибки выкупа в понятные сообщения.
func (h *Handler) sendRedeemError(chatID int64, habit *Habit, date common.Date, err error) {
	switch {
	case errors.Is(err, common.ErrDateOutOfRange):
		h.sendMessage(chatID, fmt.Sprintf("❌ Выкупить можно только прошлый день не старше %s", common.FormatDays(h.service.cfg.RedeemHorizonDays)))
	case errors.Is(err, common.ErrAlreadyCompleted):
		h.sendMessage(chatID, fmt.Sprintf("⚠️ День %s у привычки %q уже отмечен", date, habit.Name))
	case errors.Is(err, common.ErrInsufficientPoints):
		h.sendMessage(chatID, "❌ Не хватает очков. Баланс: !баланс")
	default:
		log.WithError(err).Error("Ошибка выкупа дня")
		h.sendMessage(chatID, "❌ Не удалось выкупить день")
	}
}

// formatHabitView форматирует привычку с календарём и стриком.
func formatHabitView(v *HabitView) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("▪️ %s — %s за день", v.Habit.Name, common.FormatPoints(v.Habit.PointsPerCompletion)))
	if v.CurrentStreak > 0 {
		sb.WriteString(fmt.Sprintf(", 🔥 %s", common.FormatDays(v.CurrentStreak)))
	}
	sb.WriteString("\n")
	sb.WriteString(renderTimeline(v.Timeline))
	return sb.String()
}

// renderTimeline рисует календарь эмодзи: 🟩 выполнено, 🟨 выкуплено, ⬜ пропуск.
// По 10 дней в строке, слева старые дни.
func renderTimeline(timeline []DayStatus) string {
	var sb strings.Builder
	for i, day := range timeline {
		if i > 0 && i%10 == 0 {
			sb.WriteString("\n")
		}
		switch day.State {
		case DayCompleted:
			sb.WriteString("🟩")
		case DayRedeemed:
			sb.WriteString("🟨")
		default:
			sb.WriteString("⬜")
		}
	}
	return sb.String()
}

// sendMessage — утилита для отправки сообщений.
func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
