package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"buzzi-console/internal/apperr"
	"buzzi-console/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type KnowledgeRepo struct{ db *pgxpool.Pool }

func NewKnowledgeRepo(db *pgxpool.Pool) *KnowledgeRepo { return &KnowledgeRepo{db: db} }

func (r *KnowledgeRepo) FetchKnowledgeEntries(ctx context.Context) ([]models.KnowledgeEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, question, answer, source, created_at
		FROM knowledge_entries
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, wrap("fetch knowledge entries", err)
	}
	defer rows.Close()

	out := []models.KnowledgeEntry{}
	for rows.Next() {
		var e models.KnowledgeEntry
		if err := rows.Scan(&e.ID, &e.Question, &e.Answer, &e.Source, &e.CreatedAt); err != nil {
			return nil, wrap("fetch knowledge entries", err)
		}
		out = append(out, e)
	}
	return out, wrap("fetch knowledge entries", rows.Err())
}

// IngestKnowledgeFile extracts entries from the upload and returns how many
// were stored.
func (r *KnowledgeRepo) IngestKnowledgeFile(ctx context.Context, name string, rd io.Reader) (int, error) {
	entries, err := extractEntries(name, rd)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}
	rows := make([][]any, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []any{e.Question, e.Answer, e.Source})
	}
	n, err := r.db.CopyFrom(ctx,
		pgx.Identifier{"knowledge_entries"},
		[]string{"question", "answer", "source"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return 0, wrap("ingest knowledge file", err)
	}
	return int(n), nil
}

func (r *KnowledgeRepo) DeleteKnowledgeEntry(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM knowledge_entries WHERE id = $1`, id)
	if err != nil {
		return wrap("delete knowledge entry", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// extractEntries reads a JSON array of {question, answer} pairs. Documents
// (pdf, docx) are kept whole as one entry keyed by file name; their text is
// extracted downstream.
func extractEntries(name string, rd io.Reader) ([]models.KnowledgeEntry, error) {
	base := filepath.Base(name)
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")) {
	case "json":
		var raw []struct {
			Question string `json:"question"`
			Answer   string `json:"answer"`
		}
		if err := json.NewDecoder(rd).Decode(&raw); err != nil {
			return nil, apperr.Invalid("file", fmt.Sprintf("%s is not a JSON array of entries: %v", base, err))
		}
		out := make([]models.KnowledgeEntry, 0, len(raw))
		for _, e := range raw {
			q, a := strings.TrimSpace(e.Question), strings.TrimSpace(e.Answer)
			if q == "" || a == "" {
				continue
			}
			out = append(out, models.KnowledgeEntry{Question: q, Answer: a, Source: base})
		}
		return out, nil
	case "pdf", "docx":
		if _, err := io.Copy(io.Discard, rd); err != nil {
			return nil, apperr.Remote("ingest knowledge file", 0, err)
		}
		return []models.KnowledgeEntry{{
			Question: strings.TrimSuffix(base, filepath.Ext(base)),
			Answer:   "See attached document " + base,
			Source:   base,
		}}, nil
	}
	return nil, &apperr.UnsupportedFormatError{Ext: filepath.Ext(name), Allowed: []string{"json", "pdf", "docx"}}
}
