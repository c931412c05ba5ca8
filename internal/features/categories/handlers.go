// Package categories — handlers.go обрабатывает команды категорий:
// !категории, !новаякатегория, !переименоватькатегорию, !удалитькатегорию.
package categories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"habit-bot/internal/common"
)

// Handler обрабатывает команды категорий.
type Handler struct {
	service *Service
	bot     *tgbotapi.BotAPI
}

// NewHandler создаёт обработчик команд категорий.
func NewHandler(service *Service, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{service: service, bot: bot}
}

// HandleList обрабатывает команду !категории — список категорий пользователя.
func (h *Handler) HandleList(ctx context.Context, chatID, userID int64) {
	cats, err := h.service.List(ctx, userID)
	if err != nil {
		log.WithError(err).Error("Ошибка получения категорий")
		h.sendMessage(chatID, "❌ Ошибка получения категорий")
		return
	}

	if len(cats) == 0 {
		h.sendMessage(chatID, "📂 У вас пока нет категорий.\nСоздайте: !новаякатегория <название>")
		return
	}

	var sb strings.Builder
	sb.WriteString("📂 Ваши категории:\n\n")
	for _, c := range cats {
		sb.WriteString(fmt.Sprintf("• %s (id %d)", c.Name, c.ID))
		if c.Description != "" {
			sb.WriteString(" — " + c.Description)
		}
		sb.WriteString("\n")
	}
	h.sendMessage(chatID, sb.String())
}

// HandleCreate обрабатывает команду !новаякатегория <название> [описание].
func (h *Handler) HandleCreate(ctx context.Context, chatID, userID int64, args []string) {
	if len(args) == 0 {
		h.sendMessage(chatID, "Использование: !новаякатегория <название> [описание]")
		return
	}

	name := args[0]
	description := strings.Join(args[1:], " ")

	cat, err := h.service.Create(ctx, userID, name, description, "")
	if err != nil {
		if errors.Is(err, common.ErrEmptyCategoryName) {
			h.sendMessage(chatID, "❌ "+err.Error())
			return
		}
		log.WithError(err).Error("Ошибка создания категории")
		h.sendMessage(chatID, "❌ Не удалось создать категорию")
		return
	}

	h.sendMessage(chatID, fmt.Sprintf("✅ Категория %q создана (id %d)", cat.Name, cat.ID))
}

// HandleRename обрабатывает команду !переименоватькатегорию <старое> <новое>.
func (h *Handler) HandleRename(ctx context.Context, chatID, userID int64, args []string) {
	if len(args) < 2 {
		h.sendMessage(chatID, "Использование: !переименоватькатегорию <старое название> <новое название>")
		return
	}

	cat, ok := h.resolveCategory(ctx, chatID, userID, args[0])
	if !ok {
		return
	}

	newName := strings.Join(args[1:], " ")
	if err := h.service.Rename(ctx, userID, cat.ID, newName); err != nil {
		if errors.Is(err, common.ErrEmptyCategoryName) {
			h.sendMessage(chatID, "❌ "+err.Error())
			return
		}
		log.WithError(err).Error("Ошибка переименования категории")
		h.sendMessage(chatID, "❌ Не удалось переименовать категорию")
		return
	}

	h.sendMessage(chatID, fmt.Sprintf("✏️ Категория %q теперь называется %q", cat.Name, newName))
}

// HandleDelete обрабатывает команду !удалитькатегорию <название>.
// Категорию с привычками удалить нельзя.
func (h *Handler) HandleDelete(ctx context.Context, chatID, userID int64, args []string) {
	if len(args) == 0 {
		h.sendMessage(chatID, "Использование: !удалитькатегорию <название>")
		return
	}

	cat, ok := h.resolveCategory(ctx, chatID, userID, strings.Join(args, " "))
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, userID, cat.ID); err != nil {
		log.WithError(err).Error("Ошибка удаления категории")
		h.sendMessage(chatID, "❌ "+err.Error())
		return
	}

	h.sendMessage(chatID, fmt.Sprintf("🗑 Категория %q удалена", cat.Name))
}

// resolveCategory находит категорию по названию и сообщает, если её нет.
func (h *Handler) resolveCategory(ctx context.Context, chatID, userID int64, name string) (*Category, bool) {
	cat, err := h.service.Resolve(ctx, userID, name)
	if err != nil {
		if errors.Is(err, common.ErrCategoryNotFound) {
			h.sendMessage(chatID, fmt.Sprintf("❌ Категория %q не найдена. Список: !категории", name))
			return nil, false
		}
		log.WithError(err).Error("Ошибка поиска категории")
		h.sendMessage(chatID, "❌ Ошибка поиска категории")
		return nil, false
	}
	return cat, true
}

// sendMessage — утилита для отправки сообщений.
func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
