package models

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/IICPAS/IICPAS-sub003/internal/app_errors"
)

// MaxQuantity bounds one kit order and one cart line.
const MaxQuantity = 10000

const (
	KitOrderPendingPayment = "pending_payment"
	KitOrderPaid           = "paid"
	KitOrderCancelled      = "cancelled"
)

type Kit struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type KitLine struct {
	KitID    uuid.UUID `json:"kit_id"`
	KitName  string    `json:"kit_name,omitempty"`
	Quantity int       `json:"quantity"`
	Price    float64   `json:"unit_price"`
}

type KitQuote struct {
	Lines               []KitLine `json:"lines"`
	TotalQuantity       int       `json:"total_quantity"`
	GrossTotal          float64   `json:"gross_total"`
	BulkDiscountPercent float64   `json:"bulk_discount_percent"`
	DiscountedPrice     float64   `json:"discounted_price"`
	CombinationDiscount float64   `json:"combination_discount"`
	Payable             float64   `json:"payable"`
}

type KitOrder struct {
	ID              uuid.UUID `json:"id"`
	StudentID       uuid.UUID `json:"student_id"`
	Status          string    `json:"status"`
	ShippingAddress string    `json:"shipping_address"`
	KitQuote
	IdempotencyKey *string   `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// BulkDiscountPercent steps at exactly 5 and 10 units.
func BulkDiscountPercent(totalQty int) float64 {
	switch {
	case totalQty >= 10:
		return 10
	case totalQty >= 5:
		return 5
	}
	return 0
}

// QuoteKitOrder prices the lines. Rounding happens once, at the end.
// The combination discount is carried as zero; no rule for it exists yet.
// Every line needs at least one unit and the order at most MaxQuantity.
func QuoteKitOrder(lines []KitLine) (KitQuote, error) {
	q := KitQuote{Lines: lines}
	gross := 0.0
	for _, l := range lines {
		if l.Quantity < 1 || l.Quantity > MaxQuantity-q.TotalQuantity {
			return KitQuote{}, app_errors.ErrInvalidQuantity
		}
		gross += float64(l.Quantity) * l.Price
		q.TotalQuantity += l.Quantity
	}
	q.BulkDiscountPercent = BulkDiscountPercent(q.TotalQuantity)
	discounted := gross * (1 - q.BulkDiscountPercent/100)

	q.GrossTotal = RoundMoney(gross)
	q.DiscountedPrice = RoundMoney(discounted)
	q.Payable = RoundMoney(math.Max(0, discounted-q.CombinationDiscount))
	return q, nil
}
