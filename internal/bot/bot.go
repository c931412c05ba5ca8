// Package bot содержит главный модуль бота — инициализацию, запуск и остановку.
// bot.go принимает апдейты, пропускает их через фильтры и маршрутизирует команды.
package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"habit-bot/internal/bot/filters"
	"habit-bot/internal/bot/middleware"
	"habit-bot/internal/config"
	"habit-bot/internal/features/admin"
	"habit-bot/internal/features/categories"
	"habit-bot/internal/features/habits"
	"habit-bot/internal/features/ledger"
	"habit-bot/internal/features/users"
)

// Bot — главная структура бота, объединяющая все компоненты.
type Bot struct {
	api *tgbotapi.BotAPI
	cfg *config.Config

	accessFilter *filters.AccessFilter
	rateLimiter  *middleware.RateLimiter

	userService   *users.Service
	ledgerService *ledger.Service

	habitHandler    *habits.Handler
	categoryHandler *categories.Handler
	ledgerHandler   *ledger.Handler
	adminHandler    *admin.Handler

	parser *CommandParser

	// ограничитель параллелизма обработки апдейтов
	inflight chan struct{}
}

// New создаёт новый экземпляр бота со всеми зависимостями.
func New(
	api *tgbotapi.BotAPI,
	cfg *config.Config,
	userService *users.Service,
	ledgerService *ledger.Service,
	habitHandler *habits.Handler,
	categoryHandler *categories.Handler,
	ledgerHandler *ledger.Handler,
	adminHandler *admin.Handler,
	accessFilter *filters.AccessFilter,
) *Bot {
	maxInFlight := cfg.BotMaxInflight
	if maxInFlight <= 0 {
		maxInFlight = 64
	}

	return &Bot{
		api:             api,
		cfg:             cfg,
		accessFilter:    accessFilter,
		rateLimiter:     middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow),
		userService:     userService,
		ledgerService:   ledgerService,
		habitHandler:    habitHandler,
		categoryHandler: categoryHandler,
		ledgerHandler:   ledgerHandler,
		adminHandler:    adminHandler,
		parser:          NewCommandParser(),
		inflight:        make(chan struct{}, maxInFlight),
	}
}

// Start запускает polling обновлений от Telegram.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.BotUpdateTimeoutSeconds

	updates := b.api.GetUpdatesChan(u)

	log.WithFields(log.Fields{
		"max_inflight": b.cfg.BotMaxInflight,
		"timeout_sec":  b.cfg.BotUpdateTimeoutSeconds,
	}).Info("Бот запущен и ожидает сообщения...")

	for {
		select {
		case <-ctx.Done():
			log.Info("Бот останавливается (ctx done)...")
			b.api.StopReceivingUpdates()
			b.rateLimiter.Close()
			return

		case update, ok := <-updates:
			if !ok {
				log.Info("Канал updates закрыт, бот остановлен")
				return
			}

			// лимит параллелизма
			b.inflight <- struct{}{}
			go func(upd tgbotapi.Update) {
				defer func() { <-b.inflight }()
				b.handleUpdate(ctx, upd)
			}(update)
		}
	}
}

// handleUpdate обрабатывает одно обновление от Telegram.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer middleware.RecoverFromPanic()

	if update.Message == nil || update.Message.Text == "" {
		return
	}

	message := update.Message

	// Логируем входящее
	middleware.LogMessage(message)

	// Только личка и только незабаненные
	if !b.accessFilter.CheckAccess(ctx, message) {
		return
	}

	// Rate limiting
	if !b.rateLimiter.Allow(message.From.ID) {
		log.WithField("user_id", message.From.ID).Debug("rate limited")
		return
	}

	chatID := message.Chat.ID
	userID := message.From.ID

	// Регистрируем пользователя при первом контакте. Ошибки нельзя
	// игнорировать, иначе потом будет "оно не работает".
	if err := b.userService.EnsureUser(ctx, userID,
		message.From.UserName, message.From.FirstName, message.From.LastName,
	); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("EnsureUser failed")
	}
	if err := b.ledgerService.CreateBalance(ctx, userID, b.cfg.EconomyStartingBalance); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("CreateBalance failed")
	}

	// Админ-панель: пароль, кнопки клавиатуры, пошаговые диалоги
	if b.adminHandler.HandleAdminMessage(ctx, chatID, userID, message.Text) {
		return
	}

	// Парсим команду
	cmd, args, isCommand := b.parser.ParseCommand(message.Text)
	if !isCommand {
		return
	}

	b.routeCommand(ctx, chatID, userID, cmd, args)
}

// routeCommand маршрутизирует команду к нужному обработчику.
func (b *Bot) routeCommand(ctx context.Context, chatID, userID int64, cmd string, args []string) {
	log.WithFields(log.Fields{
		"cmd":  cmd,
		"args": args,
	}).Debug("routing command")

	switch cmd {
	case "start", "help", "помощь":
		b.sendWelcome(chatID)

	case "привычки":
		b.habitHandler.HandleList(ctx, chatID, userID)

	case "новая":
		b.habitHandler.HandleCreate(ctx, chatID, userID, args)

	case "изменить":
		b.habitHandler.HandleUpdate(ctx, chatID, userID, args)

	case "готово":
		b.habitHandler.HandleComplete(ctx, chatID, userID, args)

	case "стрик":
		b.habitHandler.HandleStreak(ctx, chatID, userID, args)

	case "удалить":
		b.habitHandler.HandleDelete(ctx, chatID, userID, args)

	case "заметка":
		b.habitHandler.HandleNote(ctx, chatID, userID, args)

	case "цена":
		if b.cfg.FeatureRedeemEnabled {
			b.habitHandler.HandleQuote(ctx, chatID, userID, args)
		} else {
			b.sendMessage(chatID, "🟨 Выкуп дней временно отключён")
		}

	case "выкупить":
		if b.cfg.FeatureRedeemEnabled {
			b.habitHandler.HandleRedeem(ctx, chatID, userID, args)
		} else {
			b.sendMessage(chatID, "🟨 Выкуп дней временно отключён")
		}

	case "категории":
		b.categoryHandler.HandleList(ctx, chatID, userID)

	case "новаякатегория":
		b.categoryHandler.HandleCreate(ctx, chatID, userID, args)

	case "переименоватькатегорию":
		b.categoryHandler.HandleRename(ctx, chatID, userID, args)

	case "удалитькатегорию":
		b.categoryHandler.HandleDelete(ctx, chatID, userID, args)

	case "баланс":
		b.ledgerHandler.HandleBalance(ctx, chatID, userID)

	case "транзакции":
		b.ledgerHandler.HandleTransactions(ctx, chatID, userID)
	}
}

// sendWelcome отправляет приветствие со списком команд.
func (b *Bot) sendWelcome(chatID int64) {
	b.sendMessage(chatID, `👋 Я слежу за вашими привычками и начисляю очки.

Привычки:
!привычки — список с календарём и стриком
!новая <категория> <название> [очки] — создать
!изменить <название> <поле> <значение> — изменить
!готово <название> [дата] — отметить выполнение
!стрик <название> — текущая серия
!заметка <название> <дата> <текст> — заметка к дню
!удалить <название> — удалить с историей

Выкуп пропусков:
!цена <название> <дата> — узнать цену
!выкупить <название> <дата> — выкупить день за очки

Очки:
!баланс — текущие очки
!транзакции — последние операции

Категории:
!категории, !новаякатегория <название>
!переименоватькатегорию <старое> <новое>
!удалитькатегорию <название>`)
}

// sendMessage — утилита для отправки сообщений.
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}

// SendMessageToUser отправляет сообщение пользователю (для напоминаний).
func (b *Bot) SendMessageToUser(userID int64, text string) {
	msg := tgbotapi.NewMessage(userID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).WithField("user_id", userID).Debug("Не удалось отправить сообщение")
	}
}

// CommandParser парсит русские команды с префиксами !, . и /
type CommandParser struct {
	validPrefixes []string
}

// NewCommandParser создаёт парсер команд.
func NewCommandParser() *CommandParser {
	return &CommandParser{
		validPrefixes: []string{"!", ".", "/"},
	}
}

// ParseCommand разбирает текст на команду и аргументы.
func (p *CommandParser) ParseCommand(text string) (string, []string, bool) {
	text = strings.TrimSpace(text)

	hasPrefix := false
	for _, prefix := range p.validPrefixes {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimPrefix(text, prefix)
			hasPrefix = true
			break
		}
	}

	if !hasPrefix {
		return "", nil, false
	}

	text = strings.TrimSpace(text)
	parts := strings.Fields(text)

	if len(parts) == 0 {
		return "", nil, false
	}

	command := strings.ToLower(parts[0])
	var args []string
	if len(parts) > 1 {
		args = parts[1:]
	}

	return command, args, true
}
