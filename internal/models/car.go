// server/internal/models/car.go
package models

import (
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Sale lifecycle statuses derived from which sub-documents are populated.
// They are never stored; Status() computes them on demand.
type SaleStatus string

const (
	StatusAvailable             SaleStatus = "AVAILABLE"
	StatusSoldPaid              SaleStatus = "SOLD_PAID"
	StatusSoldInstallmentActive SaleStatus = "SOLD_INSTALLMENT_ACTIVE"
	StatusSoldInstallmentDone   SaleStatus = "SOLD_INSTALLMENT_COMPLETE"
	StatusOwnershipTransferred  SaleStatus = "OWNERSHIP_TRANSFERRED"
)

const (
	BoughtTypePaid        = "Paid"
	BoughtTypeInstallment = "Installment"
)

// MaxCarImages caps how many image references a car may carry.
const MaxCarImages = 20

// SaleRecord is present iff the car was sold for cash.
type SaleRecord struct {
	Price    float64   `bson:"price" json:"price"`
	Date     time.Time `bson:"date" json:"date"`
	Odometer float64   `bson:"odometer" json:"odometer"` // reading at the moment of sale
	Buyer    Buyer     `bson:"buyer" json:"buyer"`
}

// InstallmentPayment is one entry of the payment ledger, keyed by the
// 1-based contract month number (unique within the ledger).
type InstallmentPayment struct {
	Month      int       `bson:"month" json:"month"`
	Amount     float64   `bson:"amount" json:"amount"`
	PenaltyFee float64   `bson:"penaltyFee" json:"penaltyFee"`
	Date       time.Time `bson:"date" json:"date"`
	Notes      string    `bson:"notes,omitempty" json:"notes,omitempty"`
}

// InstallmentRecord is present iff the car was sold on credit.
type InstallmentRecord struct {
	DownPayment     float64              `bson:"downPayment" json:"downPayment"`
	RemainingAmount float64              `bson:"remainingAmount" json:"remainingAmount"`
	Months          int                  `bson:"months" json:"months"`
	MonthlyPayment  float64              `bson:"monthlyPayment" json:"monthlyPayment"`
	Buyer           Buyer                `bson:"buyer" json:"buyer"`
	StartDate       time.Time            `bson:"startDate" json:"startDate"`
	Payments        []InstallmentPayment `bson:"payments" json:"payments"`
}

// PaidTotal sums the ledger amounts (the down payment is not part of the
// ledger).
func (ir *InstallmentRecord) PaidTotal() float64 {
	var total float64
	for _, p := range ir.Payments {
		total += p.Amount
	}
	return total
}

// Complete reports whether the contract has been paid off.
func (ir *InstallmentRecord) Complete() bool {
	return ir.RemainingAmount <= 0
}

// OwnerBookTransfer records the legal title transfer. Terminal for financial
// reporting: installment profit is recognized in the period of TransferDate.
type OwnerBookTransfer struct {
	Transferred  bool      `bson:"transferred" json:"transferred"`
	TransferDate time.Time `bson:"transferDate" json:"transferDate"`
	Notes        string    `bson:"notes,omitempty" json:"notes,omitempty"`
}

// RepairEntry is a dated repair cost attached to a car.
type RepairEntry struct {
	Description string    `bson:"description" json:"description"`
	Date        time.Time `bson:"date" json:"date"`
	Cost        float64   `bson:"cost" json:"cost"`
}

// Car is the aggregate root for a vehicle: inventory attributes plus the
// entire sale / installment / transfer state. Sale, Installment and
// OwnerBookTransfer must only ever be set through the mutator methods below;
// they keep IsAvailable and BoughtType consistent and enforce the state
// machine. At most one of Sale/Installment is non-nil at any time.
type Car struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PlateNumber string             `bson:"plateNumber" json:"plateNumber"` // uppercased, unique

	Brand        string         `bson:"brand" json:"brand"`
	Model        string         `bson:"model" json:"model"`
	Year         int            `bson:"year" json:"year"`
	EnginePower  float64        `bson:"enginePower" json:"enginePower"`
	Transmission string         `bson:"transmission" json:"transmission"` // Manual | Automatic
	Color        string         `bson:"color" json:"color"`
	Drivetrain   string         `bson:"drivetrain" json:"drivetrain"` // FWD | RWD | 4WD | AWD
	Odometer     float64        `bson:"odometer" json:"odometer"`     // last known reading
	Images       []MediaPointer `bson:"images,omitempty" json:"images,omitempty"`

	PurchaseDate  time.Time `bson:"purchaseDate" json:"purchaseDate"`
	PurchasePrice float64   `bson:"purchasePrice" json:"purchasePrice"`
	PriceToSell   float64   `bson:"priceToSell" json:"priceToSell"`

	IsAvailable bool   `bson:"isAvailable" json:"isAvailable"`
	BoughtType  string `bson:"boughtType,omitempty" json:"boughtType,omitempty"` // "" | Paid | Installment

	Sale              *SaleRecord        `bson:"sale,omitempty" json:"sale,omitempty"`
	Installment       *InstallmentRecord `bson:"installment,omitempty" json:"installment,omitempty"`
	OwnerBookTransfer *OwnerBookTransfer `bson:"ownerBookTransfer,omitempty" json:"ownerBookTransfer,omitempty"`

	Repairs []RepairEntry `bson:"repairs,omitempty" json:"repairs,omitempty"`

	// Revision implements optimistic concurrency: every write goes through
	// ReplaceOne filtered on {_id, revision} and bumps it. A lost race shows
	// up as MatchedCount == 0.
	Revision  int64     `bson:"revision" json:"-"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// NormalizePlate uppercases and trims a license plate identifier so the
// unique index treats "ab 123" and "AB 123" as the same car.
func NormalizePlate(plate string) string {
	return strings.ToUpper(strings.TrimSpace(plate))
}

// Status derives the sale lifecycle state. Installment completion is not a
// stored state: it flips to COMPLETE the moment the remaining balance
// reaches zero.
func (c *Car) Status() SaleStatus {
	switch {
	case c.OwnerBookTransfer != nil && c.OwnerBookTransfer.Transferred:
		return StatusOwnershipTransferred
	case c.Sale != nil:
		return StatusSoldPaid
	case c.Installment != nil:
		if c.Installment.Complete() {
			return StatusSoldInstallmentDone
		}
		return StatusSoldInstallmentActive
	default:
		return StatusAvailable
	}
}

// TotalRepairCost sums the repair ledger.
func (c *Car) TotalRepairCost() float64 {
	var total float64
	for _, r := range c.Repairs {
		total += r.Cost
	}
	return total
}

func (c *Car) touch() {
	c.UpdatedAt = time.Now()
}

// --- Sale transitions ---

// SaleInput carries the fields of a cash sale.
type SaleInput struct {
	Price    float64
	Date     time.Time
	Odometer float64
	Buyer    Buyer
}

func validateBuyer(b Buyer) error {
	if strings.TrimSpace(b.Name) == "" {
		return invalidf("buyer.name", "is required")
	}
	if strings.TrimSpace(b.Passport) == "" {
		return invalidf("buyer.passport", "is required")
	}
	return nil
}

// MarkSoldPaid transitions Available -> SoldPaid. Fails with ErrNotAvailable
// when the car is already sold, so a second concurrent sale cannot succeed.
func (c *Car) MarkSoldPaid(in SaleInput) error {
	if c.Status() != StatusAvailable {
		return ErrNotAvailable
	}
	if in.Price <= 0 {
		return invalidf("price", "must be greater than zero")
	}
	if in.Odometer < 0 {
		return invalidf("odometer", "must not be negative")
	}
	if err := validateBuyer(in.Buyer); err != nil {
		return err
	}
	if in.Date.IsZero() {
		in.Date = time.Now()
	}

	c.Sale = &SaleRecord{
		Price:    in.Price,
		Date:     in.Date,
		Odometer: in.Odometer,
		Buyer:    in.Buyer,
	}
	c.Installment = nil
	c.IsAvailable = false
	c.BoughtType = BoughtTypePaid
	// The last known odometer never goes backwards.
	if in.Odometer > c.Odometer {
		c.Odometer = in.Odometer
	}
	c.touch()
	return nil
}

// InstallmentInput carries the terms of an installment sale.
type InstallmentInput struct {
	DownPayment     float64
	RemainingAmount float64
	Months          int
	MonthlyPayment  float64
	Buyer           Buyer
	StartDate       time.Time
}

// MarkSoldInstallment transitions Available -> SoldInstallmentActive with an
// empty payment ledger.
func (c *Car) MarkSoldInstallment(in InstallmentInput) error {
	if c.Status() != StatusAvailable {
		return ErrNotAvailable
	}
	if in.DownPayment < 0 {
		return invalidf("downPayment", "must not be negative")
	}
	if in.RemainingAmount < 0 {
		return invalidf("remainingAmount", "must not be negative")
	}
	if in.Months < 1 {
		return invalidf("months", "must be at least 1")
	}
	if in.MonthlyPayment <= 0 {
		return invalidf("monthlyPayment", "must be greater than zero")
	}
	if err := validateBuyer(in.Buyer); err != nil {
		return err
	}
	if in.StartDate.IsZero() {
		in.StartDate = time.Now()
	}

	c.Installment = &InstallmentRecord{
		DownPayment:     in.DownPayment,
		RemainingAmount: in.RemainingAmount,
		Months:          in.Months,
		MonthlyPayment:  in.MonthlyPayment,
		Buyer:           in.Buyer,
		StartDate:       in.StartDate,
		Payments:        []InstallmentPayment{},
	}
	c.Sale = nil
	c.IsAvailable = false
	c.BoughtType = BoughtTypeInstallment
	c.touch()
	return nil
}

// UpdateSaleDetails corrects fields of an existing cash sale record without
// re-running the Available guard. The exactly-one invariant is untouched.
func (c *Car) UpdateSaleDetails(in SaleInput) error {
	if c.Sale == nil {
		return ErrNotSold
	}
	if c.OwnerBookTransfer != nil && c.OwnerBookTransfer.Transferred {
		return ErrAlreadyTransferred
	}
	if in.Price <= 0 {
		return invalidf("price", "must be greater than zero")
	}
	if in.Odometer < 0 {
		return invalidf("odometer", "must not be negative")
	}
	if err := validateBuyer(in.Buyer); err != nil {
		return err
	}
	if in.Date.IsZero() {
		in.Date = c.Sale.Date
	}

	c.Sale.Price = in.Price
	c.Sale.Date = in.Date
	c.Sale.Odometer = in.Odometer
	c.Sale.Buyer = in.Buyer
	if in.Odometer > c.Odometer {
		c.Odometer = in.Odometer
	}
	c.touch()
	return nil
}

// InstallmentDetailsInput corrects contract terms that do not move money:
// buyer identity, term length, monthly payment and start date. Balances are
// only ever changed through the payment ledger.
type InstallmentDetailsInput struct {
	Months         int
	MonthlyPayment float64
	Buyer          Buyer
	StartDate      time.Time
}

func (c *Car) UpdateInstallmentDetails(in InstallmentDetailsInput) error {
	if c.Installment == nil {
		return ErrNotInstallment
	}
	if c.OwnerBookTransfer != nil && c.OwnerBookTransfer.Transferred {
		return ErrAlreadyTransferred
	}
	if in.Months < 1 {
		return invalidf("months", "must be at least 1")
	}
	if in.MonthlyPayment <= 0 {
		return invalidf("monthlyPayment", "must be greater than zero")
	}
	if err := validateBuyer(in.Buyer); err != nil {
		return err
	}
	if in.StartDate.IsZero() {
		in.StartDate = c.Installment.StartDate
	}

	c.Installment.Months = in.Months
	c.Installment.MonthlyPayment = in.MonthlyPayment
	c.Installment.Buyer = in.Buyer
	c.Installment.StartDate = in.StartDate
	c.touch()
	return nil
}

// --- Payment ledger ---

// RecordPayment is the simple additive form: it appends a ledger entry under
// the next free month number and decrements the balance, clamped at zero.
func (c *Car) RecordPayment(amount float64, date time.Time, notes string) error {
	if c.Installment == nil {
		return ErrNotInstallment
	}
	if c.OwnerBookTransfer != nil && c.OwnerBookTransfer.Transferred {
		return ErrLedgerFrozen
	}
	if amount <= 0 {
		return invalidf("amount", "must be greater than zero")
	}
	if amount > c.Installment.RemainingAmount {
		return invalidf("amount", "exceeds remaining balance of %.2f", c.Installment.RemainingAmount)
	}
	if date.IsZero() {
		date = time.Now()
	}

	next := 0
	for _, p := range c.Installment.Payments {
		if p.Month > next {
			next = p.Month
		}
	}
	c.Installment.Payments = append(c.Installment.Payments, InstallmentPayment{
		Month:  next + 1,
		Amount: amount,
		Date:   date,
		Notes:  notes,
	})
	c.Installment.RemainingAmount -= amount
	if c.Installment.RemainingAmount < 0 {
		c.Installment.RemainingAmount = 0
	}
	c.touch()
	return nil
}

// MonthlyPaymentInput is the idempotent upsert form used for monthly
// schedule tracking. A nil Amount falls back to the contract's standard
// monthly payment.
type MonthlyPaymentInput struct {
	Month      int
	Paid       bool
	Amount     *float64
	PenaltyFee float64
	Date       time.Time
	Notes      string
}

// PaymentSummary is returned from every ledger upsert.
type PaymentSummary struct {
	PaidMonths       []int           `json:"paidMonths"`
	Penalties        map[int]float64 `json:"penalties"`
	TotalPenaltyFees float64         `json:"totalPenaltyFees"`
	TotalPaid        float64         `json:"totalPaid"` // down payment + ledger amounts
	RemainingAmount  float64         `json:"remainingAmount"`
}

// UpsertMonthlyPayment records, corrects or removes the payment for one
// contract month. The new balance is re-derived from the contract total that
// was in force before the call (down payment + remaining + ledger sum), not
// decremented incrementally. That anchoring makes the operation idempotent
// and safe to apply out of order: correcting month 3 after month 5 was
// recorded cannot drift the balance, because the contract total is invariant
// and only the paid subset changes.
func (c *Car) UpsertMonthlyPayment(in MonthlyPaymentInput) (PaymentSummary, error) {
	if c.Installment == nil {
		return PaymentSummary{}, ErrNotInstallment
	}
	if c.OwnerBookTransfer != nil && c.OwnerBookTransfer.Transferred {
		return PaymentSummary{}, ErrLedgerFrozen
	}
	if in.Month < 1 {
		return PaymentSummary{}, invalidf("month", "must be at least 1")
	}
	if in.PenaltyFee < 0 {
		return PaymentSummary{}, invalidf("penaltyFee", "must not be negative")
	}

	ir := c.Installment
	originalTotal := ir.DownPayment + ir.RemainingAmount + ir.PaidTotal()

	if in.Paid {
		amount := ir.MonthlyPayment
		if in.Amount != nil {
			amount = *in.Amount
		}
		if amount <= 0 {
			return PaymentSummary{}, invalidf("amount", "must be greater than zero")
		}
		date := in.Date
		if date.IsZero() {
			date = time.Now()
		}
		entry := InstallmentPayment{
			Month:      in.Month,
			Amount:     amount,
			PenaltyFee: in.PenaltyFee,
			Date:       date,
			Notes:      in.Notes,
		}
		replaced := false
		for i := range ir.Payments {
			if ir.Payments[i].Month == in.Month {
				ir.Payments[i] = entry
				replaced = true
				break
			}
		}
		if !replaced {
			ir.Payments = append(ir.Payments, entry)
		}
	} else {
		kept := ir.Payments[:0]
		for _, p := range ir.Payments {
			if p.Month != in.Month {
				kept = append(kept, p)
			}
		}
		ir.Payments = kept
	}

	sort.Slice(ir.Payments, func(i, j int) bool {
		return ir.Payments[i].Month < ir.Payments[j].Month
	})

	newRemaining := originalTotal - ir.DownPayment - ir.PaidTotal()
	if newRemaining < 0 {
		newRemaining = 0
	}
	ir.RemainingAmount = newRemaining
	c.touch()

	return c.PaymentSummary(), nil
}

// PaymentSummary reports the paid months, penalties and current balance of
// the installment ledger. Call only when Installment is set.
func (c *Car) PaymentSummary() PaymentSummary {
	ir := c.Installment
	summary := PaymentSummary{
		PaidMonths:      make([]int, 0, len(ir.Payments)),
		Penalties:       make(map[int]float64),
		TotalPaid:       ir.DownPayment,
		RemainingAmount: ir.RemainingAmount,
	}
	for _, p := range ir.Payments {
		summary.PaidMonths = append(summary.PaidMonths, p.Month)
		if p.PenaltyFee != 0 {
			summary.Penalties[p.Month] = p.PenaltyFee
		}
		summary.TotalPenaltyFees += p.PenaltyFee
		summary.TotalPaid += p.Amount
	}
	sort.Ints(summary.PaidMonths)
	return summary
}

// --- Ownership transfer ---

// TransferOwnership closes the sale legally. Allowed only once the car is
// sold and, for installment sales, fully paid. Re-invoking on an already
// transferred car is a conflict, not a silent success.
func (c *Car) TransferOwnership(date time.Time, notes string) error {
	if c.OwnerBookTransfer != nil && c.OwnerBookTransfer.Transferred {
		return ErrAlreadyTransferred
	}
	if c.Sale == nil && c.Installment == nil {
		return ErrNotSold
	}
	if c.Installment != nil && !c.Installment.Complete() {
		return ErrNotFullyPaid
	}
	if date.IsZero() {
		date = time.Now()
	}

	c.OwnerBookTransfer = &OwnerBookTransfer{
		Transferred:  true,
		TransferDate: date,
		Notes:        notes,
	}
	c.touch()
	return nil
}

// --- Repairs ---

// AddRepair appends a repair cost entry. Legal in any lifecycle state.
func (c *Car) AddRepair(description string, cost float64, date time.Time) error {
	if strings.TrimSpace(description) == "" {
		return invalidf("description", "is required")
	}
	if cost < 0 {
		return invalidf("cost", "must not be negative")
	}
	if date.IsZero() {
		date = time.Now()
	}
	c.Repairs = append(c.Repairs, RepairEntry{
		Description: description,
		Date:        date,
		Cost:        cost,
	})
	c.touch()
	return nil
}

// --- Relisting ---

// Relist undoes a sale entirely: sale, installment, transfer and bought type
// are cleared and the car becomes available again. No route exposes this;
// it exists so the availability invariant stays restorable.
func (c *Car) Relist() {
	c.Sale = nil
	c.Installment = nil
	c.OwnerBookTransfer = nil
	c.BoughtType = ""
	c.IsAvailable = true
	c.touch()
}
