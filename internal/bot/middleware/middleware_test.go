package middleware

import (
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
)

func TestLogMessage_NoSender(t *testing.T) {
	// Сообщение без отправителя не должно ронять обработчик
	assert.NotPanics(t, func() { LogMessage(nil) })
	assert.NotPanics(t, func() { LogMessage(&tgbotapi.Message{}) })
	assert.NotPanics(t, func() {
		LogMessage(&tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1}})
	})
}

func TestLogMessage_WithSender(t *testing.T) {
	msg := &tgbotapi.Message{
		From: &tgbotapi.User{ID: 42, UserName: "tester"},
		Chat: &tgbotapi.Chat{ID: 42},
		Text: "!привычки",
	}
	assert.NotPanics(t, func() { LogMessage(msg) })
}

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Close()

	assert.True(t, rl.Allow(1))
	assert.True(t, rl.Allow(1))
	assert.False(t, rl.Allow(1), "третье сообщение в окне должно быть отклонено")

	// Лимит считается на пользователя
	assert.True(t, rl.Allow(2))
}

func TestRateLimiter_WindowExpiry(t *testing.T) {
	rl := NewRateLimiter(1, 10*time.Millisecond)
	defer rl.Close()

	assert.True(t, rl.Allow(1))
	assert.False(t, rl.Allow(1))

	time.Sleep(20 * time.Millisecond)
	assert.True(t, rl.Allow(1), "после окна счётчик должен обнулиться")
}

func TestRateLimiter_CloseIdempotent(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	rl.Close()
	assert.NotPanics(t, func() { rl.Close() })
}
