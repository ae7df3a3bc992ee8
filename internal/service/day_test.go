package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liftlog/api/internal/service"
)

func TestDayWindow(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	svc := service.NewDayService(nil, loc)

	start, end, err := svc.DayWindow("2025-09-01")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 9, 1, 0, 0, 0, 0, loc), start)
	assert.Equal(t, time.Date(2025, 9, 2, 0, 0, 0, 0, loc), end)

	// Any time-of-day on the calendar day falls inside the window.
	for _, offset := range []time.Duration{0, 8 * time.Hour, 24*time.Hour - time.Millisecond} {
		at := start.Add(offset)
		assert.True(t, !at.Before(start) && at.Before(end), "offset %v should be inside", offset)
	}

	// The neighboring days fall outside.
	for _, at := range []time.Time{start.Add(-time.Millisecond), end, end.Add(time.Hour)} {
		assert.False(t, !at.Before(start) && at.Before(end), "%v should be outside", at)
	}
}

func TestDayWindow_DSTTransition(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	svc := service.NewDayService(nil, loc)

	// 2025-03-30 is the 23-hour spring-forward day in Berlin; the window
	// must still end exactly at the next midnight.
	start, end, err := svc.DayWindow("2025-03-30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 31, 0, 0, 0, 0, loc), end)
	assert.Equal(t, 23*time.Hour, end.Sub(start))
}

func TestDayWindow_RejectsMalformedDates(t *testing.T) {
	svc := service.NewDayService(nil, time.UTC)

	for _, date := range []string{"", "garbage", "2025-9-1", "01-09-2025", "2025-13-40", "2025-09-01T08:00:00Z"} {
		_, _, err := svc.DayWindow(date)
		var validationErr *service.ValidationError
		require.ErrorAs(t, err, &validationErr, "date %q", date)
		assert.Equal(t, "date", validationErr.Field)
	}
}
