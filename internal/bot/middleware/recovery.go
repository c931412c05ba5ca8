package middleware

import (
	"runtime/debug"

	log "github.com/sirupsen/logrus"
)

// RecoverFromPanic гасит панику в горутине обработки сообщения:
// один кривой апдейт не должен ронять весь бот.
func RecoverFromPanic() {
	if r := recover(); r != nil {
		log.WithFields(log.Fields{
			"component": "bot",
			"panic":     r,
			"stack":     string(debug.Stack()),
		}).Error("Паника при обработке сообщения — восстановлено")
	}
}
