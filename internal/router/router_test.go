package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"buzzi-console/internal/config"
	"buzzi-console/internal/models"
	"buzzi-console/internal/repository"
	"buzzi-console/internal/service"
	"buzzi-console/internal/utils"

	"github.com/rs/zerolog"
)

// memBackend serves just the calls these tests make; anything else panics
// through the nil embedded interface.
type memBackend struct {
	repository.Backend
	created []models.Ticket
	quotes  []models.Quote
}

func (m *memBackend) SubmitQuote(_ context.Context, q models.Quote) (models.Quote, error) {
	q.ID = "q-1"
	m.quotes = append(m.quotes, q)
	return q, nil
}

func (m *memBackend) CreateTicket(_ context.Context, t models.Ticket) (models.Ticket, error) {
	t.ID = "t-1"
	m.created = append(m.created, t)
	return t, nil
}

func newTestRouter(t *testing.T) (http.Handler, *memBackend, config.Config) {
	t.Helper()
	cfg := config.Config{Origin: "http://localhost:3000", SessionSecret: "test-secret"}
	be := &memBackend{}
	ops := service.NewOperations(service.Deps{Backend: be, Log: zerolog.Nop()})
	return New(zerolog.Nop(), ops, cfg, nil), be, cfg
}

func TestHealthIsPublic(t *testing.T) {
	h, _, _ := newTestRouter(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
}

func TestAPIRequiresAdmin(t *testing.T) {
	h, _, cfg := newTestRouter(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tickets", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous status=%d", rec.Code)
	}

	tok, _ := utils.SignJWT(cfg.SessionSecret, "u9", string(models.RoleCustomer), time.Minute)
	req := httptest.NewRequest(http.MethodGet, "/api/tickets", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("customer status=%d", rec.Code)
	}
}

func TestCreateThenListTickets(t *testing.T) {
	h, be, cfg := newTestRouter(t)
	tok, _ := utils.SignJWT(cfg.SessionSecret, "admin-1", string(models.RoleAdmin), time.Minute)

	req := httptest.NewRequest(http.MethodPost, "/api/tickets", strings.NewReader(`{"name":"Jane","serviceType":"Router Setup"}`))
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", rec.Code, rec.Body)
	}
	if len(be.created) != 1 {
		t.Fatalf("backend creates=%d", len(be.created))
	}

	req = httptest.NewRequest(http.MethodGet, "/api/tickets?status=Pending", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var out struct {
		Items []models.Ticket `json:"items"`
		Total int             `json:"total"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Total != 1 || out.Items[0].ID != "t-1" || out.Items[0].Status != models.StatusPending {
		t.Fatalf("unexpected list %+v", out)
	}
}

func TestQuoteDraftAddRemoveSubmit(t *testing.T) {
	h, be, cfg := newTestRouter(t)
	tok, _ := utils.SignJWT(cfg.SessionSecret, "admin-1", string(models.RoleAdmin), time.Minute)
	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+tok)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}
	type view struct {
		ID         string             `json:"id"`
		Items      []models.QuoteItem `json:"items"`
		GrandTotal string             `json:"grandTotal"`
	}
	decode := func(rec *httptest.ResponseRecorder) view {
		t.Helper()
		var v view
		if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return v
	}

	rec := do(http.MethodPost, "/api/quotes/drafts", `{"name":"Acme","items":[{"name":"Router","price":"120","quantity":2}]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("start status=%d body=%s", rec.Code, rec.Body)
	}
	d := decode(rec)

	rec = do(http.MethodPost, "/api/quotes/drafts/"+d.ID+"/items", `{"name":"Cabling","price":35.5}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("add status=%d body=%s", rec.Code, rec.Body)
	}
	d = decode(rec)
	if len(d.Items) != 2 || d.GrandTotal != "275.5" {
		t.Fatalf("after add %+v", d)
	}

	rec = do(http.MethodDelete, "/api/quotes/drafts/"+d.ID+"/items/"+d.Items[0].ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("remove status=%d body=%s", rec.Code, rec.Body)
	}
	d = decode(rec)
	if len(d.Items) != 1 || d.Items[0].Name != "Cabling" || d.GrandTotal != "35.5" {
		t.Fatalf("after remove %+v", d)
	}
	if rec := do(http.MethodDelete, "/api/quotes/drafts/"+d.ID+"/items/nope", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("remove missing status=%d", rec.Code)
	}

	if rec := do(http.MethodPost, "/api/quotes/drafts/"+d.ID+"/submit", ""); rec.Code != http.StatusCreated {
		t.Fatalf("submit status=%d body=%s", rec.Code, rec.Body)
	}
	if len(be.quotes) != 1 || len(be.quotes[0].Items) != 1 || be.quotes[0].Items[0].Name != "Cabling" {
		t.Fatalf("backend quotes %+v", be.quotes)
	}
	if rec := do(http.MethodGet, "/api/quotes/drafts/"+d.ID, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("draft kept after submit, status=%d", rec.Code)
	}
}
