package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iudanet/gophtext/internal/models"
	"github.com/iudanet/gophtext/pkg/api"
)

//go:generate moq -out crdtservice_mock.go . CRDTService

// CRDTService операции CRDT документа, доступные по REST
type CRDTService interface {
	State(ctx context.Context, docID string) (api.StateResponse, error)
	Merge(ctx context.Context, docID string, atoms []*models.CharAtom) (api.MergeResponse, error)
}

// CRDTHandler обрабатывает REST запросы к CRDT документам
type CRDTHandler struct {
	logger  *slog.Logger
	service CRDTService
}

// NewCRDTHandler создает handler CRDT документов
func NewCRDTHandler(logger *slog.Logger, service CRDTService) *CRDTHandler {
	return &CRDTHandler{
		logger:  logger,
		service: service,
	}
}

// State обрабатывает GET /api/v1/crdt/{doc}/atoms
// Возвращает все атомы документа, включая надгробия
func (h *CRDTHandler) State(w http.ResponseWriter, r *http.Request) {
	docID := mux.Vars(r)["doc"]

	state, err := h.service.State(r.Context(), docID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	write(w, h.logger, responseCodec(r), http.StatusOK, state)
}

// Merge обрабатывает POST /api/v1/crdt/{doc}/atoms
// Сливает пакет атомов с серверной репликой (anti-entropy без websocket)
func (h *CRDTHandler) Merge(w http.ResponseWriter, r *http.Request) {
	docID := mux.Vars(r)["doc"]

	body, err := readBody(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	batch, err := api.DecodeAtomBatch(requestCodec(r), body)
	if err != nil {
		h.logger.Warn("Invalid atom batch", "doc_id", docID, "error", err)
		writeError(w, h.logger, err)
		return
	}

	atoms, err := api.ToAtoms(batch.Atoms)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	resp, err := h.service.Merge(r.Context(), docID, atoms)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.logger.Info("Merge completed", "doc_id", docID, "merged", resp.Merged, "skipped", resp.Skipped)
	write(w, h.logger, responseCodec(r), http.StatusOK, resp)
}
