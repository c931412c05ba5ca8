// Package categories управляет категориями привычек (Здоровье, Учёба, ...).
// models.go описывает структуру данных категории.
package categories

import "time"

// Category представляет категорию привычек пользователя.
// Каждая привычка принадлежит ровно одной категории.
type Category struct {
	ID          int64     `db:"id"`          // Автоинкрементный ID
	UserID      int64     `db:"user_id"`     // Владелец категории
	Name        string    `db:"name"`        // Название (непустое)
	Description string    `db:"description"` // Описание (может быть пустым)
	Color       string    `db:"color"`       // Цвет для отображения (#16A34A и т.п.)
	CreatedAt   time.Time `db:"created_at"`
}
