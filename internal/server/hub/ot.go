package hub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/mux"

	"github.com/iudanet/gophtext/internal/models"
	"github.com/iudanet/gophtext/internal/ot"
	"github.com/iudanet/gophtext/pkg/api"
)

// OTHub связывает websocket-сессии клиентов с секвенсорами документов.
// Подтверждения и рассылки клиенту идут одной упорядоченной очередью.
type OTHub struct {
	registry *ot.Registry
	logger   *slog.Logger
	sessions sync.WaitGroup
}

// NewOTHub создает хаб поверх реестра секвенсоров
func NewOTHub(registry *ot.Registry, logger *slog.Logger) *OTHub {
	return &OTHub{
		registry: registry,
		logger:   logger,
	}
}

// ServeWS обрабатывает GET /api/v1/ot/{doc}/ws
//
// Протокол: клиент шлет hello{clientId, knownVersion}, сервер отвечает
// backlog с историей после knownVersion, затем клиент шлет submit,
// а сервер присылает ack на свои операции и broadcast на чужие.
func (h *OTHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	docID := mux.Vars(r)["doc"]
	if docID == "" {
		http.Error(w, "Document id is required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	seq, err := h.registry.Get(ctx, docID)
	if err != nil {
		h.logger.Error("Failed to open document", "doc_id", docID, "error", err)
		http.Error(w, "Sequencer unavailable", http.StatusServiceUnavailable)
		return
	}

	p, err := upgrade(w, r, h.logger)
	if err != nil {
		h.logger.Warn("Failed to start OT session", "doc_id", docID, "error", err)
		return
	}

	h.sessions.Add(1)
	defer h.sessions.Done()

	h.serve(ctx, seq, p)
}

func (h *OTHub) serve(ctx context.Context, seq *ot.Sequencer, p *peer) {
	defer p.close()
	docID := seq.DocID()

	hello, err := p.readHello()
	if err != nil {
		h.reject(p, docID, err)
		return
	}

	sub, backlog, err := seq.Subscribe(hello.ClientID, hello.KnownVersion)
	if err != nil {
		h.reject(p, docID, err)
		return
	}
	defer sub.Close()

	logger := h.logger.With("doc_id", docID, "client_id", hello.ClientID)
	logger.Info("OT session started", "known_version", hello.KnownVersion, "backlog", len(backlog))

	p.enqueue(&api.Message{Type: api.MessageBacklog, Backlog: api.FromHistory(backlog)})
	go p.writePump()
	go h.forward(sub, p)

	for {
		msg, err := p.read()
		if err != nil {
			if errors.Is(err, api.ErrMalformedPayload) {
				logger.Warn("Rejected malformed message", "error", err)
				p.sendError(err)
				continue
			}
			if !isClosure(err) {
				logger.Debug("OT session read failed", "error", err)
			}
			break
		}

		if msg.Type != api.MessageSubmit {
			p.sendError(fmt.Errorf("%w: unexpected %q", api.ErrMalformedPayload, msg.Type))
			continue
		}
		h.submit(ctx, seq, p, hello.ClientID, msg.Submit, logger)
	}

	logger.Info("OT session finished")
}

// submit передает операцию секвенсору. Успех подтверждается событием
// подписки (ack), отказ приходит отдельным сообщением error.
func (h *OTHub) submit(ctx context.Context, seq *ot.Sequencer, p *peer, clientID string, req *api.SubmitRequest, logger *slog.Logger) {
	if req.ClientID != clientID {
		p.sendError(fmt.Errorf("%w: submit for %q in session of %q", api.ErrMalformedPayload, req.ClientID, clientID))
		return
	}

	op, err := req.Op.ToModel()
	if err != nil {
		p.sendError(err)
		return
	}

	if _, err := seq.Receive(ctx, clientID, req.KnownVersion, op); err != nil {
		logger.Warn("Operation rejected", "known_version", req.KnownVersion, "error", err)
		p.sendError(err)
	}
}

// forward переносит события подписки в очередь соединения.
// Закрытие канала подписки (медленный клиент или остановка секвенсора)
// закрывает соединение: клиент переподключится со своей версией.
func (h *OTHub) forward(sub *ot.Subscription, p *peer) {
	defer p.close()

	for {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			if !p.enqueue(eventMessage(ev)) {
				return
			}
		case <-p.closed:
			return
		}
	}
}

func eventMessage(ev ot.Event) *api.Message {
	if ev.Kind == ot.EventAck {
		return &api.Message{
			Type: api.MessageAck,
			Ack:  &api.SubmitResponse{Accepted: true, Version: ev.Entry.Version},
		}
	}
	b := api.FromVersioned(ev.Entry)
	return &api.Message{Type: api.MessageBroadcast, Broadcast: &b}
}

// reject сообщает об ошибке до начала сессии и закрывает соединение
func (h *OTHub) reject(p *peer, docID string, err error) {
	if isClosure(err) {
		return
	}
	h.logger.Warn("OT session rejected", "doc_id", docID, "error", err)
	if werr := p.write(&api.Message{Type: api.MessageError, Error: err.Error()}); werr != nil {
		h.logger.Debug("Failed to send rejection", "doc_id", docID, "error", werr)
	}
}

// Submit принимает операцию вне websocket-сессии (REST).
// Результат отображается в SubmitResponse: отказ не является ошибкой транспорта.
func (h *OTHub) Submit(ctx context.Context, docID string, req *api.SubmitRequest) (api.SubmitResponse, error) {
	seq, err := h.registry.Get(ctx, docID)
	if err != nil {
		return api.SubmitResponse{}, err
	}

	op, err := req.Op.ToModel()
	if err != nil {
		return api.SubmitResponse{}, err
	}

	// Правка в обход живой сессии того же клиента разошлась бы с ее буфером
	if seq.Connected(req.ClientID) {
		h.logger.Warn("Rejected submit for connected client", "doc_id", docID, "client_id", req.ClientID)
		return api.SubmitResponse{Accepted: false, Reason: ot.ErrClientConnected.Error()}, nil
	}

	entry, err := seq.Receive(ctx, req.ClientID, req.KnownVersion, op)
	if err != nil {
		if isRejection(err) {
			return api.SubmitResponse{Accepted: false, Reason: err.Error()}, nil
		}
		return api.SubmitResponse{}, err
	}
	return api.SubmitResponse{Accepted: true, Version: entry.Version}, nil
}

// Snapshot возвращает текст документа и его версию
func (h *OTHub) Snapshot(ctx context.Context, docID string) (api.Snapshot, error) {
	seq, err := h.registry.Get(ctx, docID)
	if err != nil {
		return api.Snapshot{}, err
	}
	text, version := seq.Snapshot()
	return api.Snapshot{Text: text, Version: version}, nil
}

// History возвращает записи истории после since
func (h *OTHub) History(ctx context.Context, docID string, since uint64) (api.HistoryResponse, error) {
	seq, err := h.registry.Get(ctx, docID)
	if err != nil {
		return api.HistoryResponse{}, err
	}

	entries, err := seq.Since(since)
	if err != nil {
		return api.HistoryResponse{}, err
	}

	version := since
	if n := len(entries); n > 0 {
		version = entries[n-1].Version
	}
	return api.HistoryResponse{Entries: api.FromHistory(entries), Version: version}, nil
}

// Wait дожидается завершения всех сессий (после закрытия реестра)
func (h *OTHub) Wait() {
	h.sessions.Wait()
}

// isRejection отличает отказ в операции от сбоя сервера
func isRejection(err error) bool {
	return errors.Is(err, ot.ErrInvalidPosition) ||
		errors.Is(err, ot.ErrFutureVersion) ||
		errors.Is(err, models.ErrUnknownOpType) ||
		errors.Is(err, models.ErrNegativePosition)
}
