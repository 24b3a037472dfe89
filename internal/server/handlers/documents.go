package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/iudanet/gophtext/pkg/api"
)

//go:generate moq -out otservice_mock.go . OTService

// OTService операции OT документа, доступные по REST
type OTService interface {
	Snapshot(ctx context.Context, docID string) (api.Snapshot, error)
	History(ctx context.Context, docID string, since uint64) (api.HistoryResponse, error)
	Submit(ctx context.Context, docID string, req *api.SubmitRequest) (api.SubmitResponse, error)
}

// OTHandler обрабатывает REST запросы к OT документам
type OTHandler struct {
	logger  *slog.Logger
	service OTService
}

// NewOTHandler создает handler OT документов
func NewOTHandler(logger *slog.Logger, service OTService) *OTHandler {
	return &OTHandler{
		logger:  logger,
		service: service,
	}
}

// Snapshot обрабатывает GET /api/v1/ot/{doc}
func (h *OTHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	docID := mux.Vars(r)["doc"]

	snapshot, err := h.service.Snapshot(r.Context(), docID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	write(w, h.logger, responseCodec(r), http.StatusOK, snapshot)
}

// History обрабатывает GET /api/v1/ot/{doc}/ops?since=N
// Возвращает принятые операции с версией больше N
func (h *OTHandler) History(w http.ResponseWriter, r *http.Request) {
	docID := mux.Vars(r)["doc"]

	var since uint64
	if sinceStr := r.URL.Query().Get("since"); sinceStr != "" {
		var err error
		since, err = strconv.ParseUint(sinceStr, 10, 64)
		if err != nil {
			h.logger.Warn("Invalid since parameter", "since", sinceStr, "error", err)
			http.Error(w, "Invalid since parameter", http.StatusBadRequest)
			return
		}
	}

	history, err := h.service.History(r.Context(), docID, since)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	write(w, h.logger, responseCodec(r), http.StatusOK, history)
}

// Submit обрабатывает POST /api/v1/ot/{doc}/ops
// Отказ секвенсора возвращается как 200 с accepted=false
func (h *OTHandler) Submit(w http.ResponseWriter, r *http.Request) {
	docID := mux.Vars(r)["doc"]

	body, err := readBody(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	req, err := api.DecodeSubmit(requestCodec(r), body)
	if err != nil {
		h.logger.Warn("Invalid submit request", "doc_id", docID, "error", err)
		writeError(w, h.logger, err)
		return
	}

	resp, err := h.service.Submit(r.Context(), docID, req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.logger.Info("Submit completed",
		"doc_id", docID,
		"client_id", req.ClientID,
		"accepted", resp.Accepted,
		"version", resp.Version,
	)
	write(w, h.logger, responseCodec(r), http.StatusOK, resp)
}
