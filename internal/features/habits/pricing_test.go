package habits

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedemptionCost(t *testing.T) {
	tests := []struct {
		name    string
		points  int64
		daysAgo int
		want    int64
	}{
		{"вчера — только база", 10, 1, 50},
		{"позавчера — база плюс одна надбавка", 10, 2, 60},
		{"неделю назад", 10, 7, 110},
		{"край горизонта в 30 дней", 10, 30, 340},
		{"цена растёт с ценностью привычки", 25, 1, 125},
		{"дорогая привычка давно", 25, 10, 215},
		{"минимальная привычка", 1, 1, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RedemptionCost(tt.points, tt.daysAgo, 5, 10))
		})
	}
}

// Надбавка монотонно растёт: выкупать старые дни всегда не дешевле свежих.
func TestRedemptionCost_Monotonic(t *testing.T) {
	prev := RedemptionCost(10, 1, 5, 10)
	for daysAgo := 2; daysAgo <= 30; daysAgo++ {
		cost := RedemptionCost(10, daysAgo, 5, 10)
		assert.Greater(t, cost, prev, "daysAgo=%d", daysAgo)
		prev = cost
	}
}

// Множители из конфига применяются, а не зашиты в формулу.
func TestRedemptionCost_CustomMultipliers(t *testing.T) {
	assert.Equal(t, int64(30), RedemptionCost(10, 1, 3, 7))
	assert.Equal(t, int64(44), RedemptionCost(10, 3, 3, 7))
	// Нулевая надбавка: любая давность стоит одинаково
	assert.Equal(t, int64(50), RedemptionCost(10, 15, 5, 0))
}
