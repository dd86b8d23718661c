package postgres

import (
	"context"

	"buzzi-console/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type QuoteRepo struct{ db *pgxpool.Pool }

func NewQuoteRepo(db *pgxpool.Pool) *QuoteRepo { return &QuoteRepo{db: db} }

// FetchQuotes returns quotes newest first, each with its items in position order.
func (r *QuoteRepo) FetchQuotes(ctx context.Context) ([]models.Quote, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, email, phone, company, service_type, grand_total, timeline, notes, date
		FROM quotes
		ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, wrap("fetch quotes", err)
	}
	out := []models.Quote{}
	index := map[string]int{}
	for rows.Next() {
		var q models.Quote
		if err := rows.Scan(&q.ID, &q.Name, &q.Email, &q.Phone, &q.Company, &q.ServiceType,
			&q.GrandTotal, &q.Timeline, &q.Notes, &q.Date); err != nil {
			rows.Close()
			return nil, wrap("fetch quotes", err)
		}
		q.Items = []models.QuoteItem{}
		index[q.ID] = len(out)
		out = append(out, q)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, wrap("fetch quotes", err)
	}

	items, err := r.db.Query(ctx, `
		SELECT quote_id, id, name, price, quantity, category, description
		FROM quote_items
		ORDER BY quote_id, position`)
	if err != nil {
		return nil, wrap("fetch quotes", err)
	}
	defer items.Close()
	for items.Next() {
		var (
			quoteID string
			it      models.QuoteItem
		)
		if err := items.Scan(&quoteID, &it.ID, &it.Name, &it.Price, &it.Quantity, &it.Category, &it.Description); err != nil {
			return nil, wrap("fetch quotes", err)
		}
		if i, ok := index[quoteID]; ok {
			out[i].Items = append(out[i].Items, it)
		}
	}
	return out, wrap("fetch quotes", items.Err())
}

// SubmitQuote writes the quote and its items in one transaction. The stored
// grand total is recomputed from the items rather than trusted.
func (r *QuoteRepo) SubmitQuote(ctx context.Context, q models.Quote) (models.Quote, error) {
	q.GrandTotal = models.Total(q.Items)

	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `
			INSERT INTO quotes (name, email, phone, company, service_type, grand_total, timeline, notes, date)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id`,
			q.Name, q.Email, q.Phone, q.Company, q.ServiceType, q.GrandTotal, q.Timeline, q.Notes, q.Date,
		).Scan(&q.ID); err != nil {
			return err
		}
		batch := &pgx.Batch{}
		for pos, it := range q.Items {
			batch.Queue(`
				INSERT INTO quote_items (id, quote_id, position, name, price, quantity, category, description)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				it.ID, q.ID, pos, it.Name, it.Price, it.Quantity, it.Category, it.Description)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return models.Quote{}, wrap("submit quote", err)
	}
	return q, nil
}
