// Package common — pluralize.go содержит вспомогательные функции
// для правильного склонения русских числительных и форматирования
// сумм очков и дат.
package common

import (
	"fmt"
	"time"
)

// PluralizePoints возвращает правильную форму слова «очко» для числа n.
//
// Правила русского языка:
//   - n%10==1 И n%100!=11 → "очко" (1, 21, 31, 101, ...)
//   - n%10 в [2,3,4] И n%100 НЕ в [12,13,14] → "очка" (2, 3, 4, 22, 23, ...)
//   - Остальные случаи → "очков" (0, 5-20, 25-30, 100, ...)
//
// Примеры:
//
//	PluralizePoints(1)  → "очко"
//	PluralizePoints(3)  → "очка"
//	PluralizePoints(5)  → "очков"
//	PluralizePoints(11) → "очков"
//	PluralizePoints(21) → "очко"
func PluralizePoints(n int64) string {
	absN := n
	if absN < 0 {
		absN = -absN
	}
	lastDigit := absN % 10
	lastTwoDigits := absN % 100

	// Единственное число: 1, 21, 31, 101 (но НЕ 11, 111)
	if lastDigit == 1 && lastTwoDigits != 11 {
		return "очко"
	}

	// Малое множественное: 2-4, 22-24, 32-34 (но НЕ 12-14)
	if lastDigit >= 2 && lastDigit <= 4 && (lastTwoDigits < 12 || lastTwoDigits > 14) {
		return "очка"
	}

	// Большое множественное: 0, 5-20, 25-30, 100, ...
	return "очков"
}

// PluralizeDays возвращает правильную форму слова «день» для числа n.
//
// Правила:
//   - 1, 21, 31 → "день"
//   - 2-4, 22-24 → "дня"
//   - 5-20, 25-30 → "дней"
func PluralizeDays(n int) string {
	absN := n
	if absN < 0 {
		absN = -absN
	}
	lastDigit := absN % 10
	lastTwoDigits := absN % 100

	if lastDigit == 1 && lastTwoDigits != 11 {
		return "день"
	}
	if lastDigit >= 2 && lastDigit <= 4 && (lastTwoDigits < 12 || lastTwoDigits > 14) {
		return "дня"
	}
	return "дней"
}

// FormatPoints форматирует сумму очков в читабельную строку.
// Пример: FormatPoints(150) → "150 очков"
func FormatPoints(points int64) string {
	return fmt.Sprintf("%d %s", points, PluralizePoints(points))
}

// FormatDays форматирует количество дней в читабельную строку.
// Пример: FormatDays(3) → "3 дня"
func FormatDays(n int) string {
	return fmt.Sprintf("%d %s", n, PluralizeDays(n))
}

// FormatSignedPoints создаёт строку вида "+100 очков" или "-50 очков".
// Знак «+» или «-» добавляется автоматически.
func FormatSignedPoints(amount int64) string {
	if amount >= 0 {
		return fmt.Sprintf("+%d %s", amount, PluralizePoints(amount))
	}
	return fmt.Sprintf("%d %s", amount, PluralizePoints(amount))
}

// FormatDateTime форматирует время в формат "02.01.2006 15:04"
// (день.месяц.год часы:минуты) в заданном часовом поясе.
// Используется для отображения дат транзакций.
func FormatDateTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("02.01.2006 15:04")
}
