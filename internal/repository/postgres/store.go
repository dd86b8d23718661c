// Package postgres implements repository.Backend on PostgreSQL.
package postgres

import (
	"context"

	"buzzi-console/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store bundles the table repos into one repository.Backend.
type Store struct {
	*TicketRepo
	*QuoteRepo
	*UserRepo
	*KnowledgeRepo
	*MessageRepo
}

var _ repository.Backend = (*Store)(nil)

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{
		TicketRepo:    NewTicketRepo(db),
		QuoteRepo:     NewQuoteRepo(db),
		UserRepo:      NewUserRepo(db),
		KnowledgeRepo: NewKnowledgeRepo(db),
		MessageRepo:   NewMessageRepo(db),
	}
}

const schema = `
CREATE EXTENSION IF NOT EXISTS pgcrypto;

CREATE TABLE IF NOT EXISTS users (
	id         uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	name       text NOT NULL,
	email      text NOT NULL,
	role       text NOT NULL,
	phone      text,
	password_h text,
	created_at timestamptz NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS tickets (
	id              uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	status          text NOT NULL DEFAULT 'Pending',
	task_status     text NOT NULL DEFAULT 'Unassigned',
	technician      text,
	completion_code text,
	name            text NOT NULL,
	phone           text NOT NULL DEFAULT '',
	email           text NOT NULL DEFAULT '',
	service_type    text NOT NULL,
	description     text NOT NULL DEFAULT '',
	date            text NOT NULL DEFAULT '',
	time            text NOT NULL DEFAULT '',
	created_at      timestamptz NOT NULL DEFAULT now(),
	updated_at      timestamptz NOT NULL DEFAULT now(),
	CHECK (status IN ('Pending', 'In Progress', 'Completed', 'Cancelled')),
	CHECK ((technician IS NULL) = (task_status = 'Unassigned'))
);

CREATE TABLE IF NOT EXISTS quotes (
	id           uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	name         text NOT NULL,
	email        text NOT NULL DEFAULT '',
	phone        text NOT NULL DEFAULT '',
	company      text NOT NULL DEFAULT '',
	service_type text NOT NULL DEFAULT '',
	grand_total  numeric(14, 4) NOT NULL,
	timeline     text NOT NULL DEFAULT '',
	notes        text NOT NULL DEFAULT '',
	date         timestamptz NOT NULL
);

CREATE TABLE IF NOT EXISTS quote_items (
	id          text NOT NULL,
	quote_id    uuid NOT NULL REFERENCES quotes(id) ON DELETE CASCADE,
	position    int NOT NULL,
	name        text NOT NULL,
	price       numeric(14, 4) NOT NULL CHECK (price >= 0),
	quantity    int NOT NULL CHECK (quantity > 0),
	category    text NOT NULL DEFAULT '',
	description text NOT NULL DEFAULT '',
	PRIMARY KEY (quote_id, id)
);

CREATE TABLE IF NOT EXISTS knowledge_entries (
	id         uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	question   text NOT NULL,
	answer     text NOT NULL,
	source     text NOT NULL DEFAULT '',
	created_at timestamptz NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS message_outbox (
	id         bigserial PRIMARY KEY,
	kind       text NOT NULL,
	recipients text[] NOT NULL,
	body       text NOT NULL,
	subject    text,
	created_at timestamptz NOT NULL DEFAULT now()
);
`

// Migrate creates the tables if they do not exist yet.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	_, err := db.Exec(ctx, schema)
	return err
}
