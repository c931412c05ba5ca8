// Package habits — ядро бота: привычки, отметки о выполнении, календарь
// и подсчёт стриков (серий дней подряд).
// models.go описывает структуры данных привычек.
package habits

import (
	"time"

	"habit-bot/internal/common"
)

// Habit представляет привычку пользователя.
// Привычка принадлежит одной категории и одному пользователю.
type Habit struct {
	ID          int64     `db:"id"`          // Автоинкрементный ID
	UserID      int64     `db:"user_id"`     // Владелец привычки
	CategoryID  int64     `db:"category_id"` // Категория
	Name        string    `db:"name"`        // Название (непустое)
	Description string    `db:"description"` // Описание (может быть пустым)
	// Сколько очков начисляется за одно выполнение. Всегда положительное.
	PointsPerCompletion int64     `db:"points_per_completion"`
	CreatedAt           time.Time `db:"created_at"`
}

// Completion представляет отметку за один календарный день.
// На пару (habit_id, completion_date) может существовать не больше
// одной записи — это обеспечивает UNIQUE-ограничение в БД.
// Созданная отметка неизменяема: «разотметить» день нельзя.
type Completion struct {
	ID      int64       `db:"id"`
	HabitID int64       `db:"habit_id"`
	UserID  int64       `db:"user_id"`
	Date    common.Date `db:"completion_date"` // Календарный день отметки
	// true — день выкуплен за очки, а не выполнен по-настоящему.
	IsPointRedeemed bool `db:"is_point_redeemed"`
	// Очки, начисленные за эту отметку. Для выкупленных дней всегда 0.
	Points    int64     `db:"points"`
	CreatedAt time.Time `db:"created_at"`
}

// Note — текстовая заметка к отметке о выполнении.
// К одной отметке может быть несколько заметок.
type Note struct {
	ID           int64     `db:"id"`
	CompletionID int64     `db:"completion_id"`
	Content      string    `db:"content"` // Непустой текст
	CreatedAt    time.Time `db:"created_at"`
}

// DayState — производное состояние одного календарного дня привычки.
// Не хранится в БД, вычисляется календарём (timeline.go).
type DayState string

const (
	// DayCompleted — привычка выполнена в этот день по-настоящему.
	DayCompleted DayState = "completed"
	// DayRedeemed — день выкуплен за очки.
	DayRedeemed DayState = "redeemed"
	// DayNone — отметки за день нет.
	DayNone DayState = "none"
)

// DayStatus — один день календаря привычки: дата и её состояние.
type DayStatus struct {
	Date  common.Date
	State DayState
}

// HabitView — привычка вместе с производными данными для отображения:
// календарём за окно показа и текущим стриком.
type HabitView struct {
	Habit         *Habit
	Timeline      []DayStatus // Окно показа, от старых дней к новым
	CurrentStreak int         // Текущая серия дней подряд
}
