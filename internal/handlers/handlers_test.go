package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"buzzi-console/internal/apperr"
	"buzzi-console/internal/models"
	"buzzi-console/internal/quote"
	"buzzi-console/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

func TestWriteErrMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{apperr.Invalid("name", "required"), http.StatusBadRequest},
		{&apperr.IncompleteQuoteError{Missing: []string{"items"}}, http.StatusBadRequest},
		{fmt.Errorf("update: %w", apperr.ErrInvalidStatus), http.StatusBadRequest},
		{&apperr.UnsupportedFormatError{Ext: ".txt"}, http.StatusUnsupportedMediaType},
		{fmt.Errorf("fetch tickets: %w", apperr.ErrUnauthorized), http.StatusUnauthorized},
		{fmt.Errorf("ticket x: %w", apperr.ErrNotFound), http.StatusNotFound},
		{apperr.ErrOperationInProgress, http.StatusConflict},
		{apperr.Remote("fetch tickets", 500, errors.New("boom")), http.StatusBadGateway},
		{errors.New("surprise"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		writeErr(rec, httptest.NewRequest(http.MethodGet, "/", nil), tc.err)
		if rec.Code != tc.want {
			t.Fatalf("%v -> %d, want %d", tc.err, rec.Code, tc.want)
		}
	}
}

type stubQuotes struct {
	submitted *quote.Draft
}

func (s *stubQuotes) Quotes() []models.Quote { return nil }

func (s *stubQuotes) SubmitQuote(_ context.Context, d *quote.Draft) (models.Quote, error) {
	s.submitted = d
	return models.Quote{ID: "q1", Name: d.Name, Items: d.Items, GrandTotal: d.GrandTotal}, nil
}

func (s *stubQuotes) RenderInvoice(context.Context, string) (string, error) { return "", nil }

func (s *stubQuotes) StartDraft(d *quote.Draft) service.DraftView {
	s.submitted = d
	return service.DraftView{ID: "d1", Items: d.Items}
}

func (s *stubQuotes) Draft(string) (service.DraftView, error) { return service.DraftView{}, apperr.ErrNotFound }

func (s *stubQuotes) AddDraftItem(string, quote.Candidate) (service.DraftView, error) {
	return service.DraftView{}, apperr.ErrNotFound
}

func (s *stubQuotes) RemoveDraftItem(string, string) (service.DraftView, error) {
	return service.DraftView{}, apperr.ErrNotFound
}

func (s *stubQuotes) SubmitDraft(context.Context, string) (models.Quote, error) {
	return models.Quote{}, apperr.ErrNotFound
}

func (s *stubQuotes) DiscardDraft(string) error { return apperr.ErrNotFound }

func TestQuoteCreateAcceptsNumbersAndStrings(t *testing.T) {
	svc := &stubQuotes{}
	h := NewQuoteHTTP(svc).Create()
	body := `{"name":"Acme","items":[{"name":"Router","price":100,"quantity":2},{"name":"Install","price":"50","quantity":"1"}]}`
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/api/quotes", strings.NewReader(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body)
	}
	if !svc.submitted.GrandTotal.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("total=%s", svc.submitted.GrandTotal)
	}
}

func TestQuoteCreateRejectsBadItem(t *testing.T) {
	svc := &stubQuotes{}
	h := NewQuoteHTTP(svc).Create()
	body := `{"name":"Acme","items":[{"name":"Router","price":"abc"}]}`
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/api/quotes", strings.NewReader(body)))
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "item 1") {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body)
	}
	if svc.submitted != nil {
		t.Fatal("invalid draft submitted")
	}
}

func TestStartDraftRejectsBadItemByPosition(t *testing.T) {
	svc := &stubQuotes{}
	h := NewQuoteHTTP(svc).StartDraft()
	body := `{"name":"Acme","items":[{"name":"Router","price":"10"},{"name":"Install","price":"-1"}]}`
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/api/quotes/drafts", strings.NewReader(body)))
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "item 2") {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body)
	}
	if svc.submitted != nil {
		t.Fatal("invalid draft stored")
	}
}

type stubKnowledge struct {
	name string
	body string
}

func (s *stubKnowledge) KnowledgeEntries() []models.KnowledgeEntry { return nil }

func (s *stubKnowledge) IngestKnowledge(_ context.Context, name string, r io.Reader) (service.IngestResult, error) {
	if err := service.CheckKnowledgeFormat(name); err != nil {
		return service.IngestResult{}, err
	}
	b, _ := io.ReadAll(r)
	s.name, s.body = name, string(b)
	return service.IngestResult{Count: 3}, nil
}

func (s *stubKnowledge) DeleteKnowledgeEntry(context.Context, string) error { return nil }

func multipartRequest(t *testing.T, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte(content))
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/api/knowledge", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestKnowledgeUpload(t *testing.T) {
	svc := &stubKnowledge{}
	h := NewKnowledgeHTTP(svc).Upload()

	rec := httptest.NewRecorder()
	h(rec, multipartRequest(t, "faq.json", `[]`))
	if rec.Code != http.StatusCreated || svc.name != "faq.json" || svc.body != "[]" {
		t.Fatalf("status=%d stub=%+v", rec.Code, svc)
	}

	rec = httptest.NewRecorder()
	h(rec, multipartRequest(t, "notes.txt", "x"))
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status=%d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/api/knowledge", strings.NewReader("{}")))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing file status=%d", rec.Code)
	}
}

type stubMessages struct{ n int }

func (s stubMessages) SendBulk(context.Context, service.BulkRequest) (service.DispatchResult, error) {
	return service.DispatchResult{Recipients: s.n}, nil
}

func TestBulkStatus(t *testing.T) {
	for _, tc := range []struct{ n, want int }{{0, http.StatusOK}, {4, http.StatusAccepted}} {
		rec := httptest.NewRecorder()
		NewMessageHTTP(stubMessages{n: tc.n}).Bulk()(rec,
			httptest.NewRequest(http.MethodPost, "/api/messages/bulk", strings.NewReader(`{"kind":"sms","body":"x"}`)))
		if rec.Code != tc.want {
			t.Fatalf("recipients=%d status=%d", tc.n, rec.Code)
		}
	}
}

type stubTickets struct {
	TicketService
	toggled string
}

func (s *stubTickets) RevealCode(id string) (bool, string, error) {
	if id != "t1" {
		return false, "", apperr.ErrNotFound
	}
	s.toggled = id
	return true, "482913", nil
}

func TestToggleCode(t *testing.T) {
	svc := &stubTickets{}
	r := chi.NewRouter()
	r.Post("/api/tickets/{id}/code", NewTicketHTTP(svc).ToggleCode())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/tickets/t1/code", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"revealed":true`) {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/tickets/nope/code", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status=%d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	Health(func(context.Context) error { return errors.New("backend session rejected") })(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", rec.Code)
	}
}
