package service

import (
	"context"
	"fmt"

	"buzzi-console/internal/apperr"
	"buzzi-console/internal/models"
	"buzzi-console/internal/quote"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DraftView is a quote draft as the console shows it while it is built.
type DraftView struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Email       string             `json:"email"`
	Phone       string             `json:"phone"`
	Company     string             `json:"company"`
	ServiceType string             `json:"serviceType"`
	Timeline    string             `json:"timeline"`
	Notes       string             `json:"notes"`
	Items       []models.QuoteItem `json:"items"`
	GrandTotal  decimal.Decimal    `json:"grandTotal"`
}

func draftView(id string, d *quote.Draft) DraftView {
	items := d.Items
	if items == nil {
		items = []models.QuoteItem{}
	}
	return DraftView{
		ID: id, Name: d.Name, Email: d.Email, Phone: d.Phone, Company: d.Company,
		ServiceType: d.ServiceType, Timeline: d.Timeline, Notes: d.Notes,
		Items: items, GrandTotal: d.GrandTotal,
	}
}

// StartDraft keeps d so items can be added and removed before submission.
func (s *Operations) StartDraft(d *quote.Draft) DraftView {
	id := uuid.NewString()
	d.Recompute()
	s.state.PutDraft(id, d)
	return draftView(id, d.Clone())
}

func (s *Operations) Draft(id string) (DraftView, error) {
	d, err := s.state.EditDraft(id, nil)
	if err != nil {
		return DraftView{}, err
	}
	return draftView(id, d), nil
}

func (s *Operations) AddDraftItem(id string, c quote.Candidate) (DraftView, error) {
	d, err := s.state.EditDraft(id, func(d *quote.Draft) error {
		_, err := d.AddItem(c)
		return err
	})
	if err != nil {
		return DraftView{}, err
	}
	return draftView(id, d), nil
}

func (s *Operations) RemoveDraftItem(id, itemID string) (DraftView, error) {
	d, err := s.state.EditDraft(id, func(d *quote.Draft) error {
		return d.RemoveItem(itemID)
	})
	if err != nil {
		return DraftView{}, err
	}
	return draftView(id, d), nil
}

// SubmitDraft submits a snapshot of the draft. The draft is dropped only after
// the backend accepted it, so a failed submission can be retried.
func (s *Operations) SubmitDraft(ctx context.Context, id string) (models.Quote, error) {
	d, err := s.state.EditDraft(id, nil)
	if err != nil {
		return models.Quote{}, err
	}
	saved, err := s.SubmitQuote(ctx, d)
	if err != nil {
		return models.Quote{}, err
	}
	s.state.DropDraft(id)
	return saved, nil
}

func (s *Operations) DiscardDraft(id string) error {
	if !s.state.DropDraft(id) {
		return fmt.Errorf("draft %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}
