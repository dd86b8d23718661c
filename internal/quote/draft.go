// Package quote builds itemized quotations.
package quote

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"buzzi-console/internal/apperr"
	"buzzi-console/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Candidate is an unvalidated line item as entered by the caller. Price and
// Quantity stay strings so malformed numbers are rejected, not coerced.
type Candidate struct {
	Name        string `json:"name"`
	Price       string `json:"price"`
	Quantity    string `json:"quantity"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

type Draft struct {
	Name        string
	Email       string
	Phone       string
	Company     string
	ServiceType string
	Timeline    string
	Notes       string

	Items      []models.QuoteItem
	GrandTotal decimal.Decimal

	newID func() string
}

func NewDraft() *Draft {
	return &Draft{newID: func() string { return uuid.NewString() }}
}

func (d *Draft) AddItem(c Candidate) (models.QuoteItem, error) {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return models.QuoteItem{}, apperr.Invalid("name", "required")
	}
	price, err := parsePrice(c.Price)
	if err != nil {
		return models.QuoteItem{}, err
	}
	qty, err := parseQuantity(c.Quantity)
	if err != nil {
		return models.QuoteItem{}, err
	}
	item := models.QuoteItem{
		ID:          d.id(),
		Name:        name,
		Price:       price,
		Quantity:    qty,
		Category:    strings.TrimSpace(c.Category),
		Description: strings.TrimSpace(c.Description),
	}
	d.Items = append(d.Items, item)
	d.Recompute()
	return item, nil
}

func (d *Draft) RemoveItem(id string) error {
	for i := range d.Items {
		if d.Items[i].ID == id {
			d.Items = append(d.Items[:i], d.Items[i+1:]...)
			d.Recompute()
			return nil
		}
	}
	return fmt.Errorf("item %s: %w", id, apperr.ErrNotFound)
}

// Clone returns a draft that shares nothing mutable with d.
func (d *Draft) Clone() *Draft {
	c := *d
	c.Items = make([]models.QuoteItem, len(d.Items))
	copy(c.Items, d.Items)
	return &c
}

// Recompute derives GrandTotal from the full item list.
func (d *Draft) Recompute() decimal.Decimal {
	d.GrandTotal = models.Total(d.Items)
	return d.GrandTotal
}

// Finalize returns an independent, timestamped snapshot of the draft.
func (d *Draft) Finalize(now time.Time) (models.Quote, error) {
	var missing []string
	if strings.TrimSpace(d.Name) == "" {
		missing = append(missing, "name")
	}
	if len(d.Items) == 0 {
		missing = append(missing, "items")
	}
	if len(missing) > 0 {
		return models.Quote{}, &apperr.IncompleteQuoteError{Missing: missing}
	}
	items := make([]models.QuoteItem, len(d.Items))
	copy(items, d.Items)
	return models.Quote{
		Name:        strings.TrimSpace(d.Name),
		Email:       strings.TrimSpace(d.Email),
		Phone:       strings.TrimSpace(d.Phone),
		Company:     strings.TrimSpace(d.Company),
		ServiceType: strings.TrimSpace(d.ServiceType),
		Items:       items,
		GrandTotal:  models.Total(items),
		Timeline:    strings.TrimSpace(d.Timeline),
		Notes:       strings.TrimSpace(d.Notes),
		Date:        now,
	}, nil
}

func (d *Draft) id() string {
	if d.newID == nil {
		return uuid.NewString()
	}
	return d.newID()
}

func parsePrice(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, apperr.Invalid("price", "required")
	}
	p, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, apperr.Invalid("price", "not a number")
	}
	if !p.IsPositive() {
		return decimal.Zero, apperr.Invalid("price", "must be greater than zero")
	}
	return p, nil
}

func parseQuantity(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Invalid("quantity", "not a whole number")
	}
	if n < 1 {
		return 0, apperr.Invalid("quantity", "must be at least 1")
	}
	return n, nil
}
