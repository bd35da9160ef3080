// server/internal/finance/profit.go

// Package finance derives the read-only financial view of a car and folds
// those views into period reports. Everything here is a pure function of a
// Car snapshot: profit is recomputed on every read and never persisted, so
// it always reflects the current repairs and payment ledger. Sums are folded
// with decimals so report totals do not accumulate float error.
package finance

import (
	"github.com/shopspring/decimal"

	"car-dealership-api-server/internal/models"
)

// ProfitBreakdown is the computed financial view of a sold car.
//
// GeneralProfit is the margin on the vehicle itself. For an installment sale
// it uses the base asking price, deliberately independent of financing
// terms. DetailedProfit additionally includes the financing markup baked
// into the contract value. Penalty fees are reported separately: they are
// income, but not part of the agreed sale price.
type ProfitBreakdown struct {
	SaleType         string  `json:"saleType"` // Paid | Installment
	TotalRepairCost  float64 `json:"totalRepairCost"`
	ContractValue    float64 `json:"contractValue"`
	TotalPaidToDate  float64 `json:"totalPaidToDate"`
	GeneralProfit    float64 `json:"generalProfit"`
	DetailedProfit   float64 `json:"detailedProfit"`
	FinancingIncome  float64 `json:"financingIncome"`
	TotalPenaltyFees float64 `json:"totalPenaltyFees"`
}

func dec(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

// Compute derives the profit breakdown for a sold car. Returns ok=false for
// a car that has neither a sale nor an installment record.
func Compute(car *models.Car) (ProfitBreakdown, bool) {
	repairs := decimal.Zero
	for _, r := range car.Repairs {
		repairs = repairs.Add(dec(r.Cost))
	}
	cost := dec(car.PurchasePrice).Add(repairs)

	switch {
	case car.Sale != nil:
		price := dec(car.Sale.Price)
		profit := price.Sub(cost)
		return ProfitBreakdown{
			SaleType:        models.BoughtTypePaid,
			TotalRepairCost: repairs.InexactFloat64(),
			ContractValue:   price.InexactFloat64(),
			TotalPaidToDate: price.InexactFloat64(),
			GeneralProfit:   profit.InexactFloat64(),
			DetailedProfit:  profit.InexactFloat64(),
		}, true

	case car.Installment != nil:
		ir := car.Installment
		paid := dec(ir.DownPayment)
		penalties := decimal.Zero
		for _, p := range ir.Payments {
			paid = paid.Add(dec(p.Amount))
			penalties = penalties.Add(dec(p.PenaltyFee))
		}
		// Contract value is the full amount the buyer will ultimately pay,
		// regardless of how much has been collected so far.
		contract := paid.Add(dec(ir.RemainingAmount))
		general := dec(car.PriceToSell).Sub(cost)
		detailed := contract.Sub(cost)
		return ProfitBreakdown{
			SaleType:         models.BoughtTypeInstallment,
			TotalRepairCost:  repairs.InexactFloat64(),
			ContractValue:    contract.InexactFloat64(),
			TotalPaidToDate:  paid.InexactFloat64(),
			GeneralProfit:    general.InexactFloat64(),
			DetailedProfit:   detailed.InexactFloat64(),
			FinancingIncome:  detailed.Sub(general).InexactFloat64(),
			TotalPenaltyFees: penalties.InexactFloat64(),
		}, true
	}

	return ProfitBreakdown{}, false
}
