// Package common — errors.go определяет пользовательские ошибки,
// которые используются во всех модулях бота.
// Эти ошибки позволяют обработчикам различать типы проблем
// и отправлять пользователю понятные сообщения.
package common

import "errors"

// Ошибки привычек и отметок
var (
	// ErrHabitNotFound — привычка не найдена или принадлежит другому пользователю
	ErrHabitNotFound = errors.New("привычка не найдена")
	// ErrAlreadyCompleted — за этот день уже есть отметка (обычная или выкупленная)
	ErrAlreadyCompleted = errors.New("этот день уже отмечен")
	// ErrDateOutOfRange — дата выкупа вне допустимого окна (будущее, сегодня или старше горизонта)
	ErrDateOutOfRange = errors.New("дата вне допустимого диапазона")
	// ErrCompletionNotFound — отметка о выполнении не найдена
	ErrCompletionNotFound = errors.New("отметка не найдена")
	// ErrEmptyHabitName — название привычки пустое
	ErrEmptyHabitName = errors.New("название привычки не может быть пустым")
	// ErrInvalidHabitPoints — очки за выполнение должны быть положительными
	ErrInvalidHabitPoints = errors.New("очки за выполнение должны быть положительными")
	// ErrEmptyNote — текст заметки пуст после обрезки пробелов
	ErrEmptyNote = errors.New("текст заметки не может быть пустым")
)

// Ошибки категорий
var (
	// ErrCategoryNotFound — категория не найдена или принадлежит другому пользователю
	ErrCategoryNotFound = errors.New("категория не найдена")
	// ErrEmptyCategoryName — название категории пустое
	ErrEmptyCategoryName = errors.New("название категории не может быть пустым")
)

// Ошибки баланса очков
var (
	// ErrInsufficientPoints — недостаточно очков для списания
	ErrInsufficientPoints = errors.New("недостаточно очков на счёте")
	// ErrInvalidAmount — некорректная сумма (ноль или отрицательная)
	ErrInvalidAmount = errors.New("сумма должна быть положительной")
	// ErrUserNotFound — пользователь не найден в базе
	ErrUserNotFound = errors.New("пользователь не найден")
)

// Ошибки админки
var (
	// ErrWrongPassword — неверный пароль
	ErrWrongPassword = errors.New("неверный пароль")
	// ErrTooManyAttempts — слишком много неудачных попыток входа
	ErrTooManyAttempts = errors.New("слишком много попыток, подождите 1 час")
)
