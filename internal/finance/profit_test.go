package finance_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"car-dealership-api-server/internal/finance"
	"car-dealership-api-server/internal/models"
)

func newSourcedCar() *models.Car {
	// Purchased for 15000, asking 25000, 2000 of repairs.
	car := &models.Car{
		PlateNumber:   "AA 777 BB",
		Brand:         "Chevrolet",
		Model:         "Malibu",
		Year:          2020,
		PurchasePrice: 15000,
		PriceToSell:   25000,
		IsAvailable:   true,
	}
	car.AddRepair("suspension", 1500, time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC))
	car.AddRepair("detailing", 500, time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC))
	return car
}

func buyer() models.Buyer {
	return models.Buyer{Name: "Dilshod Rustamov", Passport: "AB7654321"}
}

func TestCompute_UnsoldCar_NoBreakdown(t *testing.T) {
	car := newSourcedCar()

	_, ok := finance.Compute(car)

	assert.False(t, ok)
}

func TestCompute_CashSale(t *testing.T) {
	car := newSourcedCar()
	require.NoError(t, car.MarkSoldPaid(models.SaleInput{
		Price: 25000, Odometer: 40000, Buyer: buyer(),
	}))

	breakdown, ok := finance.Compute(car)

	require.True(t, ok)
	assert.Equal(t, models.BoughtTypePaid, breakdown.SaleType)
	assert.Equal(t, 2000.0, breakdown.TotalRepairCost)
	assert.Equal(t, 8000.0, breakdown.GeneralProfit)
	assert.Equal(t, 8000.0, breakdown.DetailedProfit)
	assert.Equal(t, 25000.0, breakdown.ContractValue)
	assert.Equal(t, 0.0, breakdown.FinancingIncome)
}

func TestCompute_InstallmentSale(t *testing.T) {
	// Down 5000, remaining 20000, 10 months of 2000.
	// After 3 payments: remaining 14000, contract value still 25000,
	// detailed profit equals general profit since contract == asking price.

	car := newSourcedCar()
	require.NoError(t, car.MarkSoldInstallment(models.InstallmentInput{
		DownPayment:     5000,
		RemainingAmount: 20000,
		Months:          10,
		MonthlyPayment:  2000,
		Buyer:           buyer(),
	}))

	for month := 1; month <= 3; month++ {
		_, err := car.UpsertMonthlyPayment(models.MonthlyPaymentInput{Month: month, Paid: true})
		require.NoError(t, err)
	}

	breakdown, ok := finance.Compute(car)

	require.True(t, ok)
	assert.Equal(t, models.BoughtTypeInstallment, breakdown.SaleType)
	assert.Equal(t, 14000.0, car.Installment.RemainingAmount)
	assert.Equal(t, 11000.0, breakdown.TotalPaidToDate)
	assert.Equal(t, 25000.0, breakdown.ContractValue)
	assert.Equal(t, 8000.0, breakdown.GeneralProfit)
	assert.Equal(t, 8000.0, breakdown.DetailedProfit)
	assert.Equal(t, 0.0, breakdown.FinancingIncome)
}

func TestCompute_CashAndInstallmentConverge(t *testing.T) {
	// The same car sold either way at the asking price must yield the same
	// profit through both code paths.

	cash := newSourcedCar()
	require.NoError(t, cash.MarkSoldPaid(models.SaleInput{Price: 25000, Buyer: buyer()}))

	credit := newSourcedCar()
	require.NoError(t, credit.MarkSoldInstallment(models.InstallmentInput{
		DownPayment: 5000, RemainingAmount: 20000, Months: 10, MonthlyPayment: 2000, Buyer: buyer(),
	}))

	cashBreakdown, ok := finance.Compute(cash)
	require.True(t, ok)
	creditBreakdown, ok := finance.Compute(credit)
	require.True(t, ok)

	assert.Equal(t, cashBreakdown.GeneralProfit, creditBreakdown.GeneralProfit)
	assert.Equal(t, cashBreakdown.DetailedProfit, creditBreakdown.DetailedProfit)
}

func TestCompute_FinancingMarkup(t *testing.T) {
	// Contract value above the asking price shows up as financing income.

	car := newSourcedCar()
	require.NoError(t, car.MarkSoldInstallment(models.InstallmentInput{
		DownPayment:     5000,
		RemainingAmount: 23000, // contract 28000 vs asking 25000
		Months:          12,
		MonthlyPayment:  2000,
		Buyer:           buyer(),
	}))

	breakdown, ok := finance.Compute(car)

	require.True(t, ok)
	assert.Equal(t, 28000.0, breakdown.ContractValue)
	assert.Equal(t, 8000.0, breakdown.GeneralProfit)
	assert.Equal(t, 11000.0, breakdown.DetailedProfit)
	assert.Equal(t, 3000.0, breakdown.FinancingIncome)
}

func TestCompute_PenaltiesReportedSeparately(t *testing.T) {
	car := newSourcedCar()
	require.NoError(t, car.MarkSoldInstallment(models.InstallmentInput{
		DownPayment: 5000, RemainingAmount: 20000, Months: 10, MonthlyPayment: 2000, Buyer: buyer(),
	}))

	_, err := car.UpsertMonthlyPayment(models.MonthlyPaymentInput{Month: 1, Paid: true, PenaltyFee: 250})
	require.NoError(t, err)

	breakdown, ok := finance.Compute(car)

	require.True(t, ok)
	assert.Equal(t, 250.0, breakdown.TotalPenaltyFees)
	// Penalty income is not in the contract value.
	assert.Equal(t, 25000.0, breakdown.ContractValue)
}

func TestCompute_ReflectsLaterRepairs(t *testing.T) {
	// Profit is computed at read time: a repair recorded after the sale
	// still lands in the breakdown.

	car := newSourcedCar()
	require.NoError(t, car.MarkSoldPaid(models.SaleInput{Price: 25000, Buyer: buyer()}))
	require.NoError(t, car.AddRepair("warranty fix", 300, time.Time{}))

	breakdown, ok := finance.Compute(car)

	require.True(t, ok)
	assert.Equal(t, 2300.0, breakdown.TotalRepairCost)
	assert.Equal(t, 7700.0, breakdown.GeneralProfit)
}
