package habits

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"habit-bot/internal/common"
)

func TestCurrentStreak(t *testing.T) {
	today := day("2026-08-31")

	tests := []struct {
		name        string
		completions []*Completion
		want        int
	}{
		{
			name:        "без истории стрик нулевой",
			completions: nil,
			want:        0,
		},
		{
			name: "пять дней подряд включая сегодня",
			completions: []*Completion{
				completionOn("2026-08-27", false),
				completionOn("2026-08-28", false),
				completionOn("2026-08-29", false),
				completionOn("2026-08-30", false),
				completionOn("2026-08-31", false),
			},
			want: 5,
		},
		{
			name: "сегодня ещё не отмечено, серия по вчера жива",
			completions: []*Completion{
				completionOn("2026-08-28", false),
				completionOn("2026-08-29", false),
				completionOn("2026-08-30", false),
			},
			want: 3,
		},
		{
			name: "только вчера",
			completions: []*Completion{
				completionOn("2026-08-30", false),
			},
			want: 1,
		},
		{
			name: "только сегодня",
			completions: []*Completion{
				completionOn("2026-08-31", false),
			},
			want: 1,
		},
		{
			name: "пропуск позавчера обрывает счёт",
			completions: []*Completion{
				completionOn("2026-08-26", false),
				completionOn("2026-08-27", false),
				// 2026-08-28 пропущен
				completionOn("2026-08-29", false),
				completionOn("2026-08-30", false),
				completionOn("2026-08-31", false),
			},
			want: 3,
		},
		{
			name: "последняя отметка позавчера — серия мертва",
			completions: []*Completion{
				completionOn("2026-08-27", false),
				completionOn("2026-08-28", false),
				completionOn("2026-08-29", false),
			},
			want: 0,
		},
		{
			name: "выкупленный день продолжает серию",
			completions: []*Completion{
				completionOn("2026-08-28", false),
				completionOn("2026-08-29", true), // выкуплен
				completionOn("2026-08-30", false),
				completionOn("2026-08-31", false),
			},
			want: 4,
		},
		{
			name: "порядок отметок не важен",
			completions: []*Completion{
				completionOn("2026-08-31", false),
				completionOn("2026-08-29", false),
				completionOn("2026-08-30", false),
			},
			want: 3,
		},
		{
			name: "будущие отметки якорем не считаются",
			completions: []*Completion{
				completionOn("2026-09-05", false),
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CurrentStreak(tt.completions, today))
		})
	}
}

// Серия длиннее окна показа считается полностью.
func TestCurrentStreak_LongerThanTimelineWindow(t *testing.T) {
	today := day("2026-08-31")

	var completions []*Completion
	for i := 0; i < 45; i++ {
		completions = append(completions, &Completion{
			HabitID: 1, UserID: 1, Date: today.AddDays(-i),
		})
	}

	assert.Equal(t, 45, CurrentStreak(completions, today))
}

// Дубликаты дней (в БД невозможны, но функция чистая) не раздувают счёт.
func TestCurrentStreak_DuplicateDates(t *testing.T) {
	today := day("2026-08-31")
	completions := []*Completion{
		completionOn("2026-08-31", false),
		completionOn("2026-08-31", true),
		completionOn("2026-08-30", false),
	}

	assert.Equal(t, 2, CurrentStreak(completions, today))
}

func ExampleCurrentStreak() {
	today := common.NewDate(2026, time.August, 31)
	completions := []*Completion{
		{Date: common.NewDate(2026, time.August, 30)},
		{Date: common.NewDate(2026, time.August, 31)},
	}
	fmt.Println(CurrentStreak(completions, today))
	// Output: 2
}
