package state

import (
	"errors"
	"testing"

	"buzzi-console/internal/apperr"
	"buzzi-console/internal/models"
	"buzzi-console/internal/quote"
)

func TestQuotesNewestFirst(t *testing.T) {
	s := New()
	s.SetQuotes([]models.Quote{{ID: "q1"}})
	s.PrependQuote(models.Quote{ID: "q2"})
	got := s.Quotes()
	if len(got) != 2 || got[0].ID != "q2" {
		t.Fatalf("unexpected order %v", got)
	}
	if _, ok := s.Quote("q1"); !ok {
		t.Fatalf("q1 not found")
	}
	got[0].ID = "mutated"
	if s.Quotes()[0].ID != "q2" {
		t.Fatalf("Quotes must return a copy")
	}
}

func TestKnowledgeRemove(t *testing.T) {
	s := New()
	s.SetKnowledge([]models.KnowledgeEntry{{ID: "a"}, {ID: "b"}})
	s.RemoveKnowledge("a")
	s.RemoveKnowledge("missing")
	if got := s.Knowledge(); len(got) != 1 || got[0].ID != "b" {
		t.Fatalf("unexpected entries %v", got)
	}
}

func TestUsersAppend(t *testing.T) {
	s := New()
	s.SetUsers([]models.User{{ID: "1"}})
	s.AppendUser(models.User{ID: "2"})
	if got := s.Users(); len(got) != 2 || got[1].ID != "2" {
		t.Fatalf("unexpected users %v", got)
	}
}

func TestDraftsEditAndDrop(t *testing.T) {
	s := New()
	s.PutDraft("d1", quote.NewDraft())

	got, err := s.EditDraft("d1", func(d *quote.Draft) error {
		_, err := d.AddItem(quote.Candidate{Name: "Router", Price: "120"})
		return err
	})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	got.Items = nil
	again, _ := s.EditDraft("d1", nil)
	if len(again.Items) != 1 {
		t.Fatalf("stored draft changed through a copy: %v", again.Items)
	}

	if _, err := s.EditDraft("d1", func(*quote.Draft) error { return apperr.Invalid("price", "bad") }); !apperr.IsValidation(err) {
		t.Fatalf("edit error not returned: %v", err)
	}
	if !s.DropDraft("d1") || s.DropDraft("d1") {
		t.Fatal("drop should succeed once")
	}
	if _, err := s.EditDraft("d1", nil); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err=%v, want ErrNotFound", err)
	}
}
