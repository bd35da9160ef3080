package finance_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"car-dealership-api-server/internal/finance"
	"car-dealership-api-server/internal/models"
)

func TestParsePeriod(t *testing.T) {
	for _, valid := range []string{"monthly", "6months", "yearly"} {
		period, err := finance.ParsePeriod(valid)
		require.NoError(t, err)
		assert.Equal(t, finance.Period(valid), period)
	}

	for _, invalid := range []string{"", "weekly", "MONTHLY", "12months"} {
		_, err := finance.ParsePeriod(invalid)
		assert.ErrorIs(t, err, models.ErrInvalidPeriod, "selector %q", invalid)
	}
}

func TestPeriodRange_Monthly(t *testing.T) {
	now := time.Date(2025, time.August, 14, 15, 30, 0, 0, time.UTC)

	from, to := finance.PeriodMonthly.Range(now)

	assert.Equal(t, time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2025, time.August, 14, 23, 59, 59, 0, time.UTC), to)
}

func TestPeriodRange_SixMonths_CrossesYearBoundary(t *testing.T) {
	now := time.Date(2025, time.February, 10, 8, 0, 0, 0, time.UTC)

	from, to := finance.PeriodSixMonths.Range(now)

	// Feb minus 5 months normalizes to September of the previous year.
	assert.Equal(t, time.Date(2024, time.September, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2025, time.February, 10, 23, 59, 59, 0, time.UTC), to)
}

func TestPeriodRange_Yearly(t *testing.T) {
	now := time.Date(2025, time.August, 14, 12, 0, 0, 0, time.UTC)

	from, _ := finance.PeriodYearly.Range(now)

	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), from)
}

func TestGroupKeyLayout(t *testing.T) {
	assert.Equal(t, "2006-01-02", finance.PeriodMonthly.GroupKeyLayout(), "monthly groups by day")
	assert.Equal(t, "2006-01", finance.PeriodSixMonths.GroupKeyLayout(), "six months groups by month")
	assert.Equal(t, "2006-01", finance.PeriodYearly.GroupKeyLayout(), "yearly groups by month")
}
