package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDayRoundTrip(t *testing.T) {
	d, err := ParseDay("2025-03-15")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-15", d.Format("2006-01-02"))
	assert.Equal(t, d, DayStart(d))
}

func TestDayWindowIsHalfOpen24h(t *testing.T) {
	d, err := ParseDay("2025-06-01")
	require.NoError(t, err)
	start, end := DayWindow(d)
	assert.Equal(t, 24*time.Hour, end.Sub(start))
	assert.Equal(t, start, DayStart(d))
}

func TestDayStartCollapsesTimeOfDay(t *testing.T) {
	d, err := ParseDay("2025-06-01")
	require.NoError(t, err)
	later := d.Add(13*time.Hour + 37*time.Minute)
	assert.Equal(t, d, DayStart(later))
}
