// Package common — date.go определяет тип Date для работы с календарными днями.
//
// Все сравнения дней в проекте идут через этот тип, а не через строки
// или time.Time с временем суток: так исключаются ошибки из-за часовых
// поясов и времени дня при определении «тот же день / соседний день».
package common

import (
	"fmt"
	"time"
)

// DateLayout — формат календарной даты в командах и БД: ГГГГ-ММ-ДД.
const DateLayout = "2006-01-02"

// Date представляет один календарный день без времени суток.
// Внутри хранится полночь UTC — арифметика дней получается точной,
// без сюрпризов перевода часов.
type Date struct {
	t time.Time
}

// NewDate создаёт дату из года, месяца и дня.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf обрезает время суток у момента t и возвращает календарный день
// в часовом поясе самого t.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// Today возвращает сегодняшний день в заданном часовом поясе.
// Пояс важен: около полуночи «сегодня» в UTC и в Москве — разные дни.
func Today(loc *time.Location) Date {
	return DateOf(time.Now().In(loc))
}

// ParseDate разбирает строку формата ГГГГ-ММ-ДД.
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return Date{}, fmt.Errorf("некорректная дата %q (ожидается ГГГГ-ММ-ДД): %w", s, err)
	}
	return Date{t: t}, nil
}

// String возвращает дату в формате ГГГГ-ММ-ДД.
func (d Date) String() string {
	return d.t.Format(DateLayout)
}

// Time возвращает полночь UTC этого дня.
// Используется для записи в колонки типа DATE через pgx.
func (d Date) Time() time.Time {
	return d.t
}

// IsZero сообщает, что дата не была установлена.
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// AddDays возвращает день через n дней (n может быть отрицательным).
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// Equal сравнивает два дня на точное совпадение.
func (d Date) Equal(other Date) bool {
	return d.t.Equal(other.t)
}

// Before сообщает, что d раньше other.
func (d Date) Before(other Date) bool {
	return d.t.Before(other.t)
}

// After сообщает, что d позже other.
func (d Date) After(other Date) bool {
	return d.t.After(other.t)
}

// DaysSince возвращает количество полных дней от other до d.
// Положительное, если d позже other.
func (d Date) DaysSince(other Date) int {
	return int(d.t.Sub(other.t) / (24 * time.Hour))
}
