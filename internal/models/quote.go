package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type QuoteItem struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Category    string          `json:"category"`
	Description string          `json:"description,omitempty"`
}

// LineTotal is price × quantity.
func (i QuoteItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Quote struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	Phone       string          `json:"phone"`
	Company     string          `json:"company,omitempty"`
	ServiceType string          `json:"serviceType"`
	Items       []QuoteItem     `json:"items"`
	GrandTotal  decimal.Decimal `json:"grandTotal"`
	Timeline    string          `json:"timeline,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	Date        time.Time       `json:"date"`
}

// Total sums price × quantity over items. It is the only way a grand total is
// computed.
func Total(items []QuoteItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.LineTotal())
	}
	return sum
}
