package utils_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autorenta/internal/utils"
)

func TestStartOfDay(t *testing.T) {
	ts := time.Date(2026, 3, 15, 17, 42, 9, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), utils.StartOfDay(ts))
	assert.Equal(t, utils.StartOfDay(ts), utils.StartOfDay(utils.StartOfDay(ts)))
}

func TestDurationDays(t *testing.T) {
	start := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 3, utils.DurationDays(start, start.Add(3*24*time.Hour)))
	assert.Equal(t, 1, utils.DurationDays(start, start.Add(24*time.Hour)))
	// Partial days round up.
	assert.Equal(t, 2, utils.DurationDays(start, start.Add(25*time.Hour)))
	assert.Equal(t, 1, utils.DurationDays(start, start.Add(time.Hour)))
}

func TestParseDate(t *testing.T) {
	d, err := utils.ParseDate("2026-03-15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), d)

	d, err = utils.ParseDate("2026-03-15T10:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), d)

	_, err = utils.ParseDate("15/03/2026")
	assert.Error(t, err)
}
