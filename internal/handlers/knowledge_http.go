package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"buzzi-console/internal/models"
	"buzzi-console/internal/service"
	"buzzi-console/internal/utils"
)

const maxUpload = 32 << 20

type KnowledgeService interface {
	KnowledgeEntries() []models.KnowledgeEntry
	IngestKnowledge(ctx context.Context, name string, r io.Reader) (service.IngestResult, error)
	DeleteKnowledgeEntry(ctx context.Context, id string) error
}

type KnowledgeHTTP struct {
	svc KnowledgeService
}

func NewKnowledgeHTTP(svc KnowledgeService) *KnowledgeHTTP { return &KnowledgeHTTP{svc: svc} }

// GET /api/knowledge
func (h *KnowledgeHTTP) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		utils.JSON(w, http.StatusOK, h.svc.KnowledgeEntries())
	}
}

// POST /api/knowledge (multipart, field "file")
func (h *KnowledgeHTTP) Upload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
		file, hdr, err := r.FormFile("file")
		if err != nil {
			utils.Error(w, http.StatusBadRequest, "multipart field \"file\" is required")
			return
		}
		defer file.Close()

		res, err := h.svc.IngestKnowledge(r.Context(), hdr.Filename, file)
		if err != nil {
			writeErr(w, r, err)
			return
		}
		utils.JSON(w, http.StatusCreated, res)
	}
}

// DELETE /api/knowledge/{id}
func (h *KnowledgeHTTP) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.svc.DeleteKnowledgeEntry(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeErr(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
