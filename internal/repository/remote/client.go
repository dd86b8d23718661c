// Package remote implements repository.Backend against the console's HTTP API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"buzzi-console/internal/apperr"
	"buzzi-console/internal/models"
	"buzzi-console/internal/repository"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Client struct {
	base  *url.URL
	token string
	http  *http.Client
}

var _ repository.Backend = (*Client)(nil)

// New builds a client for baseURL that authenticates every call with token.
// A nil hc gets a traced client with a 15s timeout.
func New(baseURL, token string, hc *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("backend url %q must be absolute", baseURL)
	}
	if hc == nil {
		hc = &http.Client{
			Timeout:   15 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return &Client{base: u, token: token, http: hc}, nil
}

// -----------------------------------------------------------------------------
// Tickets (bookings)
// -----------------------------------------------------------------------------

func (c *Client) FetchTickets(ctx context.Context) ([]models.Ticket, error) {
	var out []models.Ticket
	err := c.do(ctx, "fetch tickets", http.MethodGet, "/api/bookings", nil, &out)
	return out, err
}

func (c *Client) CreateTicket(ctx context.Context, t models.Ticket) (models.Ticket, error) {
	var out models.Ticket
	if err := c.do(ctx, "create ticket", http.MethodPost, "/api/bookings", t, &out); err != nil {
		return models.Ticket{}, err
	}
	return out, nil
}

func (c *Client) DeleteTicket(ctx context.Context, id string) error {
	return c.do(ctx, "delete ticket", http.MethodDelete, "/api/bookings/"+url.PathEscape(id), nil, nil)
}

// AssignTechnician sends "Unassigned" when technician is empty, which is how
// the console API spells a cleared binding.
func (c *Client) AssignTechnician(ctx context.Context, id, technician string) error {
	if technician == "" {
		technician = "Unassigned"
	}
	body := map[string]string{"technician": technician}
	return c.do(ctx, "assign technician", http.MethodPut, "/api/bookings/"+url.PathEscape(id)+"/assign", body, nil)
}

func (c *Client) UpdateTicketStatus(ctx context.Context, id string, status models.Status) error {
	body := map[string]string{"status": string(status)}
	return c.do(ctx, "update ticket status", http.MethodPut, "/api/bookings/"+url.PathEscape(id)+"/status", body, nil)
}

// -----------------------------------------------------------------------------
// Quotes + users
// -----------------------------------------------------------------------------

func (c *Client) FetchQuotes(ctx context.Context) ([]models.Quote, error) {
	var out []models.Quote
	err := c.do(ctx, "fetch quotes", http.MethodGet, "/api/quotes", nil, &out)
	return out, err
}

func (c *Client) SubmitQuote(ctx context.Context, q models.Quote) (models.Quote, error) {
	var out models.Quote
	if err := c.do(ctx, "submit quote", http.MethodPost, "/api/quotes", q, &out); err != nil {
		return models.Quote{}, err
	}
	if out.ID == "" {
		// Some deployments answer with {"message": ...} only.
		out = q
	}
	return out, nil
}

func (c *Client) FetchUsers(ctx context.Context) ([]models.User, error) {
	var out []models.User
	err := c.do(ctx, "fetch users", http.MethodGet, "/api/users", nil, &out)
	return out, err
}

func (c *Client) CreateUser(ctx context.Context, f models.UserFields) (models.User, error) {
	var out models.User
	if err := c.do(ctx, "create user", http.MethodPost, "/api/users", f, &out); err != nil {
		return models.User{}, err
	}
	return out, nil
}

// -----------------------------------------------------------------------------
// Knowledge base + messaging
// -----------------------------------------------------------------------------

func (c *Client) FetchKnowledgeEntries(ctx context.Context) ([]models.KnowledgeEntry, error) {
	var out []models.KnowledgeEntry
	err := c.do(ctx, "fetch knowledge entries", http.MethodGet, "/api/knowledge", nil, &out)
	return out, err
}

func (c *Client) IngestKnowledgeFile(ctx context.Context, name string, r io.Reader) (int, error) {
	const op = "ingest knowledge file"
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return 0, apperr.Remote(op, 0, err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return 0, apperr.Remote(op, 0, err)
	}
	if err := mw.Close(); err != nil {
		return 0, apperr.Remote(op, 0, err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/knowledge/upload", &buf)
	if err != nil {
		return 0, apperr.Remote(op, 0, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out struct {
		Count int `json:"count"`
	}
	if err := c.send(op, req, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (c *Client) DeleteKnowledgeEntry(ctx context.Context, id string) error {
	return c.do(ctx, "delete knowledge entry", http.MethodDelete, "/api/knowledge/"+url.PathEscape(id), nil, nil)
}

func (c *Client) DispatchBulkMessage(ctx context.Context, m models.BulkMessage) error {
	body := map[string]any{
		"type":       m.Kind,
		"recipients": m.Recipients,
		"message":    m.Body,
	}
	if m.Subject != "" {
		body["subject"] = m.Subject
	}
	return c.do(ctx, "dispatch bulk message", http.MethodPost, "/api/notifications/bulk", body, nil)
}

// -----------------------------------------------------------------------------
// transport
// -----------------------------------------------------------------------------

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return apperr.Remote(op, 0, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return apperr.Remote(op, 0, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(op, req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) send(op string, req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return apperr.Remote(op, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%s: %w", op, apperr.ErrUnauthorized)
	}
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apperr.Remote(op, resp.StatusCode, errors.New(remoteMessage(resp.Body)))
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return apperr.Remote(op, resp.StatusCode, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// remoteMessage pulls {"message"} or {"error"} out of an error body.
func remoteMessage(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 4096))
	var e struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(b, &e) == nil {
		if e.Message != "" {
			return e.Message
		}
		if e.Error != "" {
			return e.Error
		}
	}
	if s := strings.TrimSpace(string(b)); s != "" {
		return s
	}
	return "request failed"
}
