package finance_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"car-dealership-api-server/internal/finance"
	"car-dealership-api-server/internal/models"
)

var reportNow = time.Date(2025, time.August, 14, 12, 0, 0, 0, time.UTC)

func cashCarSoldOn(t *testing.T, plate string, date time.Time, price float64) models.Car {
	t.Helper()
	car := newSourcedCar()
	car.PlateNumber = plate
	require.NoError(t, car.MarkSoldPaid(models.SaleInput{Price: price, Date: date, Buyer: buyer()}))
	return *car
}

// installmentCarTransferredOn builds a fully paid installment car with the
// given start and transfer dates.
func installmentCarTransferredOn(t *testing.T, plate string, start, transfer time.Time) models.Car {
	t.Helper()
	car := newSourcedCar()
	car.PlateNumber = plate
	require.NoError(t, car.MarkSoldInstallment(models.InstallmentInput{
		DownPayment:     5000,
		RemainingAmount: 20000,
		Months:          10,
		MonthlyPayment:  2000,
		Buyer:           buyer(),
		StartDate:       start,
	}))
	for month := 1; month <= 10; month++ {
		_, err := car.UpsertMonthlyPayment(models.MonthlyPaymentInput{Month: month, Paid: true})
		require.NoError(t, err)
	}
	require.NoError(t, car.TransferOwnership(transfer, ""))
	return *car
}

func TestBuildProfitReport_CashRecognizedOnSaleDate(t *testing.T) {
	cars := []models.Car{
		cashCarSoldOn(t, "IN 001", time.Date(2025, time.August, 3, 0, 0, 0, 0, time.UTC), 25000),
		cashCarSoldOn(t, "OUT 001", time.Date(2025, time.July, 29, 0, 0, 0, 0, time.UTC), 30000),
	}

	report := finance.BuildProfitReport(finance.PeriodMonthly, reportNow, cars)

	require.Len(t, report.Cars, 1)
	assert.Equal(t, "IN 001", report.Cars[0].PlateNumber)
	assert.Equal(t, 8000.0, report.TotalGeneralProfit)
	assert.Equal(t, 8000.0, report.TotalDetailedProfit)
}

func TestBuildProfitReport_InstallmentAnchorsOnTransferDate(t *testing.T) {
	// GIVEN: an installment that STARTED this month but was transferred last
	// month, and one that started months ago but transferred this month
	// WHEN: the monthly report runs
	// THEN: only the transfer date decides inclusion. Anchoring on the start
	// date is the historical defect this pins down.

	transferredLastMonth := installmentCarTransferredOn(t, "LAST 01",
		time.Date(2025, time.August, 2, 0, 0, 0, 0, time.UTC), // start: current month
		time.Date(2025, time.July, 20, 0, 0, 0, 0, time.UTC))  // transfer: previous month
	transferredThisMonth := installmentCarTransferredOn(t, "THIS 01",
		time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.August, 5, 0, 0, 0, 0, time.UTC))

	report := finance.BuildProfitReport(finance.PeriodMonthly, reportNow,
		[]models.Car{transferredLastMonth, transferredThisMonth})

	require.Len(t, report.Cars, 1)
	assert.Equal(t, "THIS 01", report.Cars[0].PlateNumber)
	assert.Equal(t, transferredThisMonth.OwnerBookTransfer.TransferDate, report.Cars[0].RecognizedAt)
}

func TestBuildProfitReport_InProgressInstallmentNotRecognized(t *testing.T) {
	car := newSourcedCar()
	require.NoError(t, car.MarkSoldInstallment(models.InstallmentInput{
		DownPayment:     5000,
		RemainingAmount: 20000,
		Months:          10,
		MonthlyPayment:  2000,
		Buyer:           buyer(),
		StartDate:       time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC),
	}))

	report := finance.BuildProfitReport(finance.PeriodMonthly, reportNow, []models.Car{*car})

	assert.Empty(t, report.Cars, "profit is not real until fully paid and transferred")
	assert.Equal(t, 0.0, report.TotalDetailedProfit)
}

func TestBuildProfitReport_MixedSaleTypes(t *testing.T) {
	cars := []models.Car{
		cashCarSoldOn(t, "CASH 1", time.Date(2025, time.August, 3, 0, 0, 0, 0, time.UTC), 26000),
		installmentCarTransferredOn(t, "CRED 1",
			time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2025, time.August, 8, 0, 0, 0, 0, time.UTC)),
	}

	report := finance.BuildProfitReport(finance.PeriodMonthly, reportNow, cars)

	require.Len(t, report.Cars, 2)
	// Cash: 26000 - 15000 - 2000 = 9000. Installment: 25000 - 17000 = 8000.
	assert.Equal(t, 17000.0, report.TotalGeneralProfit)
	assert.Equal(t, 17000.0, report.TotalDetailedProfit)
	// Lines are ordered by recognition date.
	assert.Equal(t, "CASH 1", report.Cars[0].PlateNumber)
}

func TestBuildNetProfitReport_NetsExpenses(t *testing.T) {
	cars := []models.Car{
		cashCarSoldOn(t, "CASH 2", time.Date(2025, time.August, 3, 0, 0, 0, 0, time.UTC), 25000),
	}
	expenses := []models.Expense{
		{Title: "rent", Amount: 1200, ExpenseDate: time.Date(2025, time.August, 1, 9, 0, 0, 0, time.UTC)},
		{Title: "utilities", Amount: 300, ExpenseDate: time.Date(2025, time.August, 1, 17, 0, 0, 0, time.UTC)},
		{Title: "ads", Amount: 500, ExpenseDate: time.Date(2025, time.August, 9, 0, 0, 0, 0, time.UTC)},
		{Title: "outside window", Amount: 9999, ExpenseDate: time.Date(2025, time.July, 30, 0, 0, 0, 0, time.UTC)},
	}

	report := finance.BuildNetProfitReport(finance.PeriodMonthly, reportNow, cars, expenses)

	assert.Equal(t, 2000.0, report.TotalGeneralExpenses)
	assert.Equal(t, 6000.0, report.NetProfit) // 8000 gross - 2000 expenses

	// Monthly period groups expenses by calendar day.
	require.Len(t, report.ExpenseGroups, 2)
	assert.Equal(t, "2025-08-01", report.ExpenseGroups[0].Key)
	assert.Equal(t, 2, report.ExpenseGroups[0].Count)
	assert.Equal(t, 1500.0, report.ExpenseGroups[0].Total)
	assert.Equal(t, "2025-08-09", report.ExpenseGroups[1].Key)
}

func TestBuildNetProfitReport_YearlyGroupsByMonth(t *testing.T) {
	expenses := []models.Expense{
		{Title: "jan rent", Amount: 1000, ExpenseDate: time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC)},
		{Title: "jan ads", Amount: 400, ExpenseDate: time.Date(2025, time.January, 20, 0, 0, 0, 0, time.UTC)},
		{Title: "mar rent", Amount: 1000, ExpenseDate: time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC)},
	}

	report := finance.BuildNetProfitReport(finance.PeriodYearly, reportNow, nil, expenses)

	require.Len(t, report.ExpenseGroups, 2)
	assert.Equal(t, "2025-01", report.ExpenseGroups[0].Key)
	assert.Equal(t, 1400.0, report.ExpenseGroups[0].Total)
	assert.Equal(t, "2025-03", report.ExpenseGroups[1].Key)
	assert.Equal(t, -2400.0, report.NetProfit, "no recognized sales, expenses only")
}
