// Package filters отсекает сообщения, которые бот не должен обрабатывать.
// Бот персональный и работает только в личных сообщениях.
package filters

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"habit-bot/internal/features/users"
)

// AccessFilter пропускает только личные сообщения от незабаненных пользователей.
type AccessFilter struct {
	userService *users.Service
	bot         *tgbotapi.BotAPI
}

func NewAccessFilter(userService *users.Service, bot *tgbotapi.BotAPI) *AccessFilter {
	return &AccessFilter{
		userService: userService,
		bot:         bot,
	}
}

func (f *AccessFilter) CheckAccess(ctx context.Context, message *tgbotapi.Message) bool {
	if message == nil || message.Chat == nil {
		log.WithField("component", "AccessFilter").Warn("nil message/chat")
		return false
	}
	if message.From == nil {
		log.WithFields(log.Fields{
			"component": "AccessFilter",
			"chat_id":   message.Chat.ID,
			"chat_type": message.Chat.Type,
		}).Warn("nil message.From (service/channel message?)")
		return false
	}

	logger := log.WithFields(log.Fields{
		"component": "AccessFilter",
		"chat_id":   message.Chat.ID,
		"chat_type": message.Chat.Type,
		"user_id":   message.From.ID,
	})

	// Группы и каналы игнорируем: привычки — личное дело
	if !message.Chat.IsPrivate() {
		logger.Debug("deny: not a private chat")
		return false
	}

	banned, err := f.userService.IsBanned(ctx, message.From.ID)
	if err != nil {
		logger.WithError(err).Error("ban check failed (db)")
		return false
	}
	if banned {
		logger.Info("deny: banned user")
		return false
	}

	return true
}
