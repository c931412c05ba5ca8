package habits

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habit-bot/internal/common"
)

func day(s string) common.Date {
	d, err := common.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func completionOn(s string, redeemed bool) *Completion {
	return &Completion{HabitID: 1, UserID: 1, Date: day(s), IsPointRedeemed: redeemed}
}

func TestBuildTimeline_EmptyHistory(t *testing.T) {
	today := day("2026-08-31")

	timeline := BuildTimeline(nil, today, 30)

	require.Len(t, timeline, 30)
	assert.Equal(t, day("2026-08-02"), timeline[0].Date, "окно начинается за 29 дней до сегодня")
	assert.Equal(t, today, timeline[29].Date, "окно кончается сегодняшним днём")
	for _, d := range timeline {
		assert.Equal(t, DayNone, d.State)
	}
}

func TestBuildTimeline_MarksStates(t *testing.T) {
	today := day("2026-08-31")
	completions := []*Completion{
		completionOn("2026-08-31", false),
		completionOn("2026-08-30", true),
		completionOn("2026-08-02", false),
	}

	timeline := BuildTimeline(completions, today, 30)

	require.Len(t, timeline, 30)
	assert.Equal(t, DayCompleted, timeline[0].State, "первый день окна")
	assert.Equal(t, DayNone, timeline[1].State)
	assert.Equal(t, DayRedeemed, timeline[28].State, "вчера выкуплено")
	assert.Equal(t, DayCompleted, timeline[29].State, "сегодня выполнено")
}

func TestBuildTimeline_IgnoresOutsideWindow(t *testing.T) {
	today := day("2026-08-31")
	completions := []*Completion{
		completionOn("2026-08-01", false), // за день до начала окна
		completionOn("2026-09-01", false), // завтра
	}

	timeline := BuildTimeline(completions, today, 30)

	for _, d := range timeline {
		assert.Equal(t, DayNone, d.State)
	}
}

func TestBuildTimeline_ContiguousDates(t *testing.T) {
	today := day("2026-03-05") // окно пересекает границу месяца
	timeline := BuildTimeline(nil, today, 30)

	require.Len(t, timeline, 30)
	for i := 1; i < len(timeline); i++ {
		assert.Equal(t, timeline[i-1].Date.AddDays(1), timeline[i].Date,
			"дни идут подряд без дыр и повторов")
	}
}

func TestBuildTimeline_WindowSize(t *testing.T) {
	today := day("2026-08-31")

	assert.Len(t, BuildTimeline(nil, today, 7), 7)
	assert.Len(t, BuildTimeline(nil, today, 1), 1)
	assert.Empty(t, BuildTimeline(nil, today, 0))
}
