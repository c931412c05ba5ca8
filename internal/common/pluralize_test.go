package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPluralizePoints(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "очков"},
		{1, "очко"},
		{2, "очка"},
		{4, "очка"},
		{5, "очков"},
		{11, "очков"},
		{12, "очков"},
		{14, "очков"},
		{21, "очко"},
		{23, "очка"},
		{100, "очков"},
		{101, "очко"},
		{111, "очков"},
		{-3, "очка"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PluralizePoints(tt.n), "n=%d", tt.n)
	}
}

func TestPluralizeDays(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "дней"},
		{1, "день"},
		{3, "дня"},
		{7, "дней"},
		{11, "дней"},
		{21, "день"},
		{22, "дня"},
		{30, "дней"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PluralizeDays(tt.n), "n=%d", tt.n)
	}
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "150 очков", FormatPoints(150))
	assert.Equal(t, "1 очко", FormatPoints(1))
	assert.Equal(t, "3 дня", FormatDays(3))
	assert.Equal(t, "+100 очков", FormatSignedPoints(100))
	assert.Equal(t, "-50 очков", FormatSignedPoints(-50))
	assert.Equal(t, "+0 очков", FormatSignedPoints(0))
}

func TestFormatDateTime(t *testing.T) {
	msk := time.FixedZone("MSK", 3*60*60)
	moment := time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "31.08.2026 15:00", FormatDateTime(moment, msk))
	assert.Equal(t, "31.08.2026 12:00", FormatDateTime(moment, time.UTC))
}
