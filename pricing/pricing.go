// Package pricing holds the few figures the client derives locally from
// backend data: product margins and delivery totals.
package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNegativePrice    = errors.New("price cannot be negative")
	ErrNegativeQuantity = errors.New("quantity cannot be negative")
	ErrTooManyReturned  = errors.New("returned quantity exceeds delivered quantity")
)

var hundred = decimal.NewFromInt(100)

// MarginResult is the profit made on one unit
type MarginResult struct {
	Amount decimal.Decimal
	// Percent of the sale price, zero when the sale price is zero
	Percent decimal.Decimal
}

func (m MarginResult) String() string {
	return fmt.Sprintf("%s (%s%%)", m.Amount.StringFixed(2), m.Percent.StringFixed(2))
}

// Margin computes the unit margin between a purchase and a sale price,
// rounded to two decimal places.
func Margin(purchase, sale decimal.Decimal) (MarginResult, error) {
	if purchase.IsNegative() || sale.IsNegative() {
		return MarginResult{}, fmt.Errorf("[pricing Margin] %w", ErrNegativePrice)
	}

	amount := sale.Sub(purchase)
	percent := decimal.Zero
	if !sale.IsZero() {
		percent = amount.Div(sale).Mul(hundred)
	}
	return MarginResult{Amount: amount.Round(2), Percent: percent.Round(2)}, nil
}

// ParseMargin is Margin over the string amounts the backend and the CLI use
func ParseMargin(purchase, sale string) (MarginResult, error) {
	p, err := decimal.NewFromString(purchase)
	if err != nil {
		return MarginResult{}, fmt.Errorf("[pricing ParseMargin] purchase price %q: %w", purchase, err)
	}
	s, err := decimal.NewFromString(sale)
	if err != nil {
		return MarginResult{}, fmt.Errorf("[pricing ParseMargin] sale price %q: %w", sale, err)
	}
	return Margin(p, s)
}

// DeliveryLine is one product on a delivery note
type DeliveryLine struct {
	ProductID string          `json:"productId"`
	Quantity  decimal.Decimal `json:"quantity"`
	Returned  decimal.Decimal `json:"returnedQuantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// Net is the quantity actually sold on this line
func (l DeliveryLine) Net() decimal.Decimal {
	return l.Quantity.Sub(l.Returned)
}

// Total is the amount owed for the line
func (l DeliveryLine) Total() decimal.Decimal {
	return l.Net().Mul(l.UnitPrice)
}

func (l DeliveryLine) validate() error {
	switch {
	case l.Quantity.IsNegative(), l.Returned.IsNegative():
		return ErrNegativeQuantity
	case l.UnitPrice.IsNegative():
		return ErrNegativePrice
	case l.Returned.GreaterThan(l.Quantity):
		return ErrTooManyReturned
	}
	return nil
}

// DeliveryTotal sums the net value of every line of a delivery, rounded to
// two decimal places. An empty delivery totals zero.
func DeliveryTotal(lines []DeliveryLine) (decimal.Decimal, error) {
	total := decimal.Zero
	for i, l := range lines {
		if err := l.validate(); err != nil {
			return decimal.Zero, fmt.Errorf("[pricing DeliveryTotal] line %d (%s): %w", i, l.ProductID, err)
		}
		total = total.Add(l.Total())
	}
	return total.Round(2), nil
}

// Delivery is a delivery note as returned by the backend's delivery endpoint
type Delivery struct {
	ID    string         `json:"id"`
	Items []DeliveryLine `json:"items"`
}

func (d Delivery) Total() (decimal.Decimal, error) {
	return DeliveryTotal(d.Items)
}
