// Package habits — timeline.go строит календарь привычки:
// непрерывную последовательность состояний дней за окно показа.
package habits

import "habit-bot/internal/common"

// BuildTimeline строит календарь привычки за окно в days дней,
// заканчивающееся сегодняшним днём (включительно).
//
// Результат — ровно days элементов, по одному на каждый календарный
// день от (today - days + 1) до today, от старых к новым. Дни без
// отметки получают состояние DayNone, так что пропуски видны явно.
// Отметки вне окна игнорируются.
//
// Функция чистая: одинаковые входы всегда дают одинаковый результат.
//
// Параметры:
//   - completions: отметки привычки (порядок не важен)
//   - today: «сегодня» передаётся снаружи, чтобы расчёт был тестируемым
//   - days: размер окна (обычно 30)
func BuildTimeline(completions []*Completion, today common.Date, days int) []DayStatus {
	if days <= 0 {
		return nil
	}

	// Индексируем отметки по дню: на день не может быть больше одной
	// (UNIQUE-ограничение в БД).
	byDate := make(map[common.Date]*Completion, len(completions))
	for _, c := range completions {
		byDate[c.Date] = c
	}

	start := today.AddDays(-(days - 1))
	timeline := make([]DayStatus, 0, days)

	for i := 0; i < days; i++ {
		date := start.AddDays(i)

		state := DayNone
		if c, ok := byDate[date]; ok {
			if c.IsPointRedeemed {
				state = DayRedeemed
			} else {
				state = DayCompleted
			}
		}

		timeline = append(timeline, DayStatus{Date: date, State: state})
	}

	return timeline
}
