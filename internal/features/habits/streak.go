// Package habits — streak.go считает текущий стрик:
// количество дней подряд, в которые привычка была выполнена или выкуплена.
package habits

import "habit-bot/internal/common"

// CurrentStreak возвращает длину текущей серии дней подряд.
//
// Правило якоря: серия жива, если отмечен сегодняшний день ИЛИ вчерашний.
// Невыполненное «сегодня» серию не ломает — день ещё не закончился,
// это льготный день, он просто не входит в счёт. Если не отмечены
// ни сегодня, ни вчера — серия равна 0.
//
// От якорного дня идём назад по одному дню и считаем подряд отмеченные
// дни (обычные и выкупленные равнозначны). Первый пропуск обрывает счёт.
//
// Считается по ПОЛНОЙ истории отметок привычки, а не по окну показа:
// серия может быть длиннее 30 дней. Проход ограничен числом отметок,
// поэтому зациклиться на битых данных невозможно.
func CurrentStreak(completions []*Completion, today common.Date) int {
	if len(completions) == 0 {
		return 0
	}

	marked := make(map[common.Date]bool, len(completions))
	for _, c := range completions {
		marked[c.Date] = true
	}

	// Выбираем якорь: сегодня, иначе вчера.
	anchor := today
	if !marked[anchor] {
		anchor = today.AddDays(-1)
		if !marked[anchor] {
			return 0
		}
	}

	// Идём назад от якоря. Больше len(marked) подряд отмеченных дней
	// быть не может — это и есть граница прохода.
	streak := 0
	day := anchor
	for i := 0; i < len(marked); i++ {
		if !marked[day] {
			break
		}
		streak++
		day = day.AddDays(-1)
	}

	return streak
}
