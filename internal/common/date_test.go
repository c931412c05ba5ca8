package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-08-31")
	require.NoError(t, err)
	assert.Equal(t, "2026-08-31", d.String())

	_, err = ParseDate("31.08.2026")
	assert.Error(t, err)
	_, err = ParseDate("2026-13-01")
	assert.Error(t, err)
	_, err = ParseDate("")
	assert.Error(t, err)
}

func TestDateOf_StripsTimeAndZone(t *testing.T) {
	msk := time.FixedZone("MSK", 3*60*60)
	late := time.Date(2026, time.August, 31, 23, 55, 12, 0, msk)

	d := DateOf(late)

	assert.Equal(t, "2026-08-31", d.String(), "календарный день берётся из локального времени")
	assert.Equal(t, DateOf(late), DateOf(late.Add(3*time.Minute)), "время суток не влияет на день")
}

func TestDate_AddDays(t *testing.T) {
	d := NewDate(2026, time.August, 31)

	assert.Equal(t, "2026-09-01", d.AddDays(1).String(), "перенос через границу месяца")
	assert.Equal(t, "2026-08-01", d.AddDays(-30).String())
	assert.Equal(t, d, d.AddDays(0))

	// Високальный февраль
	assert.Equal(t, "2028-02-29", NewDate(2028, time.February, 28).AddDays(1).String())
	assert.Equal(t, "2026-03-01", NewDate(2026, time.February, 28).AddDays(1).String())
}

func TestDate_DaysSince(t *testing.T) {
	today := NewDate(2026, time.August, 31)

	assert.Equal(t, 0, today.DaysSince(today))
	assert.Equal(t, 1, today.DaysSince(NewDate(2026, time.August, 30)))
	assert.Equal(t, 31, today.DaysSince(NewDate(2026, time.July, 31)))
	assert.Equal(t, -1, today.DaysSince(NewDate(2026, time.September, 1)))
}

func TestDate_Compare(t *testing.T) {
	a := NewDate(2026, time.August, 30)
	b := NewDate(2026, time.August, 31)

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.False(t, a.Equal(b))
	assert.True(t, a.Equal(NewDate(2026, time.August, 30)))
}

func TestDate_IsZero(t *testing.T) {
	var zero Date
	assert.True(t, zero.IsZero())
	assert.False(t, NewDate(2026, time.August, 31).IsZero())
}
