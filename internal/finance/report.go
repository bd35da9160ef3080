// server/internal/finance/report.go
package finance

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"car-dealership-api-server/internal/models"
)

// CarProfit is the per-vehicle line of a profit report.
type CarProfit struct {
	CarID        string    `json:"carId"`
	PlateNumber  string    `json:"plateNumber"`
	Brand        string    `json:"brand"`
	Model        string    `json:"model"`
	RecognizedAt time.Time `json:"recognizedAt"`
	ProfitBreakdown
}

// ProfitReport aggregates recognized profit over a period.
type ProfitReport struct {
	Period              Period      `json:"period"`
	From                time.Time   `json:"from"`
	To                  time.Time   `json:"to"`
	TotalGeneralProfit  float64     `json:"totalGeneralProfit"`
	TotalDetailedProfit float64     `json:"totalDetailedProfit"`
	TotalPenaltyFees    float64     `json:"totalPenaltyFees"`
	Cars                []CarProfit `json:"cars"`
}

// ExpenseGroup buckets expense totals for the sub-report: by day for the
// monthly period, by month otherwise.
type ExpenseGroup struct {
	Key   string  `json:"key"`
	Count int     `json:"count"`
	Total float64 `json:"total"`
}

// NetProfitReport is a ProfitReport netted against general expenses.
type NetProfitReport struct {
	ProfitReport
	TotalGeneralExpenses float64        `json:"totalGeneralExpenses"`
	NetProfit            float64        `json:"netProfit"`
	ExpenseGroups        []ExpenseGroup `json:"expenseGroups"`
}

// recognitionDate returns when a sold car's profit becomes real for period
// reporting. Cash sales are recognized on the sale date. Installment sales
// are recognized on the owner-book transfer date only: until the contract is
// fully paid and the title transferred, nothing is recognized. Anchoring on
// the installment start date instead misattributes in-progress contracts.
func recognitionDate(car *models.Car) (time.Time, bool) {
	switch {
	case car.Sale != nil:
		return car.Sale.Date, true
	case car.Installment != nil:
		if car.OwnerBookTransfer == nil || !car.OwnerBookTransfer.Transferred {
			return time.Time{}, false
		}
		if !car.Installment.Complete() {
			return time.Time{}, false
		}
		return car.OwnerBookTransfer.TransferDate, true
	}
	return time.Time{}, false
}

// BuildProfitReport folds the profit of every car whose recognition date
// falls inside the period window. Callers may pre-filter with the same rule
// at the query level; the fold re-checks it so over-fetching is harmless.
func BuildProfitReport(period Period, now time.Time, cars []models.Car) ProfitReport {
	from, to := period.Range(now)
	report := ProfitReport{
		Period: period,
		From:   from,
		To:     to,
		Cars:   []CarProfit{},
	}

	general := decimal.Zero
	detailed := decimal.Zero
	penalties := decimal.Zero

	for i := range cars {
		car := &cars[i]
		recognized, ok := recognitionDate(car)
		if !ok || recognized.Before(from) || recognized.After(to) {
			continue
		}
		breakdown, ok := Compute(car)
		if !ok {
			continue
		}
		report.Cars = append(report.Cars, CarProfit{
			CarID:           car.ID.Hex(),
			PlateNumber:     car.PlateNumber,
			Brand:           car.Brand,
			Model:           car.Model,
			RecognizedAt:    recognized,
			ProfitBreakdown: breakdown,
		})
		general = general.Add(dec(breakdown.GeneralProfit))
		detailed = detailed.Add(dec(breakdown.DetailedProfit))
		penalties = penalties.Add(dec(breakdown.TotalPenaltyFees))
	}

	sort.Slice(report.Cars, func(i, j int) bool {
		return report.Cars[i].RecognizedAt.Before(report.Cars[j].RecognizedAt)
	})

	report.TotalGeneralProfit = general.InexactFloat64()
	report.TotalDetailedProfit = detailed.InexactFloat64()
	report.TotalPenaltyFees = penalties.InexactFloat64()
	return report
}

// BuildNetProfitReport nets the gross (detailed) profit against general
// expenses dated inside the window.
func BuildNetProfitReport(period Period, now time.Time, cars []models.Car, expenses []models.Expense) NetProfitReport {
	report := NetProfitReport{
		ProfitReport:  BuildProfitReport(period, now, cars),
		ExpenseGroups: []ExpenseGroup{},
	}

	layout := period.GroupKeyLayout()
	totals := make(map[string]*ExpenseGroup)
	sum := decimal.Zero
	for _, e := range expenses {
		if e.ExpenseDate.Before(report.From) || e.ExpenseDate.After(report.To) {
			continue
		}
		sum = sum.Add(dec(e.Amount))
		key := e.ExpenseDate.Format(layout)
		group, ok := totals[key]
		if !ok {
			group = &ExpenseGroup{Key: key}
			totals[key] = group
		}
		group.Count++
		group.Total = dec(group.Total).Add(dec(e.Amount)).InexactFloat64()
	}

	for _, g := range totals {
		report.ExpenseGroups = append(report.ExpenseGroups, *g)
	}
	sort.Slice(report.ExpenseGroups, func(i, j int) bool {
		return report.ExpenseGroups[i].Key < report.ExpenseGroups[j].Key
	})

	report.TotalGeneralExpenses = sum.InexactFloat64()
	report.NetProfit = dec(report.TotalDetailedProfit).Sub(sum).InexactFloat64()
	return report
}
