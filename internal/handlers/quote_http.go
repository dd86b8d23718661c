package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"buzzi-console/internal/models"
	"buzzi-console/internal/quote"
	"buzzi-console/internal/service"
	"buzzi-console/internal/utils"
)

type QuoteService interface {
	Quotes() []models.Quote
	SubmitQuote(ctx context.Context, d *quote.Draft) (models.Quote, error)
	RenderInvoice(ctx context.Context, quoteID string) (string, error)

	StartDraft(d *quote.Draft) service.DraftView
	Draft(id string) (service.DraftView, error)
	AddDraftItem(id string, c quote.Candidate) (service.DraftView, error)
	RemoveDraftItem(id, itemID string) (service.DraftView, error)
	SubmitDraft(ctx context.Context, id string) (models.Quote, error)
	DiscardDraft(id string) error
}

type QuoteHTTP struct {
	svc QuoteService
}

func NewQuoteHTTP(svc QuoteService) *QuoteHTTP { return &QuoteHTTP{svc: svc} }

// quoteItemDTO accepts price and quantity as JSON numbers or strings.
type quoteItemDTO struct {
	Name        string          `json:"name"`
	Price       json.RawMessage `json:"price"`
	Quantity    json.RawMessage `json:"quantity"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
}

type quoteDTO struct {
	Name        string         `json:"name"`
	Email       string         `json:"email"`
	Phone       string         `json:"phone"`
	Company     string         `json:"company"`
	ServiceType string         `json:"serviceType"`
	Timeline    string         `json:"timeline"`
	Notes       string         `json:"notes"`
	Items       []quoteItemDTO `json:"items"`
}

func (it quoteItemDTO) candidate() quote.Candidate {
	return quote.Candidate{
		Name:        it.Name,
		Price:       numText(it.Price),
		Quantity:    numText(it.Quantity),
		Category:    it.Category,
		Description: it.Description,
	}
}

// draft validates every item; the first bad one is reported by position.
func (in quoteDTO) draft() (*quote.Draft, error) {
	d := quote.NewDraft()
	d.Name, d.Email, d.Phone, d.Company = in.Name, in.Email, in.Phone, in.Company
	d.ServiceType, d.Timeline, d.Notes = in.ServiceType, in.Timeline, in.Notes
	for i, it := range in.Items {
		if _, err := d.AddItem(it.candidate()); err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
	}
	return d, nil
}

// numText turns a raw JSON scalar into the text the quote parser validates.
func numText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	t := strings.TrimSpace(string(raw))
	if t == "null" {
		return ""
	}
	return t
}

// GET /api/quotes
func (h *QuoteHTTP) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		utils.JSON(w, http.StatusOK, h.svc.Quotes())
	}
}

// POST /api/quotes
func (h *QuoteHTTP) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in quoteDTO
		if !decodeOr400(w, r, &in) {
			return
		}
		d, err := in.draft()
		if err != nil {
			writeErr(w, r, err)
			return
		}
		q, err := h.svc.SubmitQuote(callerCtx(r), d)
		if err != nil {
			writeErr(w, r, err)
			return
		}
		utils.JSON(w, http.StatusCreated, q)
	}
}

// POST /api/quotes/{id}/invoice
func (h *QuoteHTTP) Invoice() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path, err := h.svc.RenderInvoice(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeErr(w, r, err)
			return
		}
		utils.JSON(w, http.StatusOK, map[string]string{"invoice": path})
	}
}

// POST /api/quotes/drafts
func (h *QuoteHTTP) StartDraft() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in quoteDTO
		if !decodeOr400(w, r, &in) {
			return
		}
		d, err := in.draft()
		if err != nil {
			writeErr(w, r, err)
			return
		}
		utils.JSON(w, http.StatusCreated, h.svc.StartDraft(d))
	}
}

// GET /api/quotes/drafts/{id}
func (h *QuoteHTTP) GetDraft() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := h.svc.Draft(chi.URLParam(r, "id"))
		if err != nil {
			writeErr(w, r, err)
			return
		}
		utils.JSON(w, http.StatusOK, v)
	}
}

// POST /api/quotes/drafts/{id}/items
func (h *QuoteHTTP) AddItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in quoteItemDTO
		if !decodeOr400(w, r, &in) {
			return
		}
		v, err := h.svc.AddDraftItem(chi.URLParam(r, "id"), in.candidate())
		if err != nil {
			writeErr(w, r, err)
			return
		}
		utils.JSON(w, http.StatusOK, v)
	}
}

// DELETE /api/quotes/drafts/{id}/items/{itemId}
func (h *QuoteHTTP) RemoveItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := h.svc.RemoveDraftItem(chi.URLParam(r, "id"), chi.URLParam(r, "itemId"))
		if err != nil {
			writeErr(w, r, err)
			return
		}
		utils.JSON(w, http.StatusOK, v)
	}
}

// POST /api/quotes/drafts/{id}/submit
func (h *QuoteHTTP) SubmitDraft() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := h.svc.SubmitDraft(callerCtx(r), chi.URLParam(r, "id"))
		if err != nil {
			writeErr(w, r, err)
			return
		}
		utils.JSON(w, http.StatusCreated, q)
	}
}

// DELETE /api/quotes/drafts/{id}
func (h *QuoteHTTP) DiscardDraft() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.svc.DiscardDraft(chi.URLParam(r, "id")); err != nil {
			writeErr(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
