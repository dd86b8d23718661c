// Package invoice turns a finalized quote into a printable document.
package invoice

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"buzzi-console/internal/models"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

type Renderer interface {
	// Render produces the invoice for q and returns where it was written.
	Render(ctx context.Context, q models.Quote) (string, error)
}

// HTMLRenderer writes invoices as standalone HTML files under Dir.
type HTMLRenderer struct {
	Dir     string
	Company string
	md      goldmark.Markdown
}

func NewHTMLRenderer(dir, company string) *HTMLRenderer {
	return &HTMLRenderer{
		Dir:     dir,
		Company: company,
		md:      goldmark.New(goldmark.WithExtensions(extension.Table)),
	}
}

func (r *HTMLRenderer) Render(ctx context.Context, q models.Quote) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var body bytes.Buffer
	if err := r.md.Convert([]byte(Markdown(q, r.Company)), &body); err != nil {
		return "", fmt.Errorf("render invoice: %w", err)
	}
	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return "", fmt.Errorf("render invoice: %w", err)
	}
	path := filepath.Join(r.Dir, fileName(q))
	doc := "<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>Invoice</title></head><body>\n" +
		body.String() + "</body></html>\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		return "", fmt.Errorf("render invoice: %w", err)
	}
	return path, nil
}

// Markdown lays out the invoice; items keep quote order.
func Markdown(q models.Quote, company string) string {
	var b strings.Builder
	if company != "" {
		fmt.Fprintf(&b, "# %s\n\n", escape(company))
	}
	fmt.Fprintf(&b, "## Invoice for %s\n\n", escape(q.Name))
	if q.Company != "" {
		fmt.Fprintf(&b, "%s  \n", escape(q.Company))
	}
	if q.Email != "" {
		fmt.Fprintf(&b, "%s  \n", escape(q.Email))
	}
	if q.Phone != "" {
		fmt.Fprintf(&b, "%s  \n", escape(q.Phone))
	}
	fmt.Fprintf(&b, "Date: %s\n\n", q.Date.Format("2006-01-02"))
	if q.ServiceType != "" {
		fmt.Fprintf(&b, "Service: %s\n\n", escape(q.ServiceType))
	}

	b.WriteString("| Item | Category | Qty | Unit price | Amount |\n")
	b.WriteString("|---|---|---:|---:|---:|\n")
	for _, it := range q.Items {
		fmt.Fprintf(&b, "| %s | %s | %d | %s | %s |\n",
			escape(it.Name), escape(it.Category), it.Quantity, it.Price.StringFixed(2), it.LineTotal().StringFixed(2))
	}
	fmt.Fprintf(&b, "\n**Grand total: %s**\n", models.Total(q.Items).StringFixed(2))
	if q.Timeline != "" {
		fmt.Fprintf(&b, "\nTimeline: %s\n", escape(q.Timeline))
	}
	if q.Notes != "" {
		fmt.Fprintf(&b, "\n%s\n", escape(q.Notes))
	}
	return b.String()
}

func fileName(q models.Quote) string {
	id := q.ID
	if id == "" {
		id = q.Date.Format("20060102-150405")
	}
	return "invoice-" + strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == '.' {
			return '_'
		}
		return r
	}, id) + ".html"
}

var mdEscaper = strings.NewReplacer("|", `\|`, "<", "&lt;", ">", "&gt;", "*", `\*`, "_", `\_`)

func escape(s string) string { return mdEscaper.Replace(s) }
