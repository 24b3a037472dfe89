package hub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/sync/singleflight"

	"github.com/iudanet/gophtext/internal/crdt"
	"github.com/iudanet/gophtext/internal/models"
	"github.com/iudanet/gophtext/internal/server/relay"
	"github.com/iudanet/gophtext/internal/verify"
	"github.com/iudanet/gophtext/pkg/api"
)

//go:generate moq -out atomstore_mock.go . AtomStore

// AtomStore хранилище атомов документов
type AtomStore interface {
	SaveAtom(ctx context.Context, docID string, atom *models.CharAtom) (bool, error)
	LoadAtoms(ctx context.Context, docID string) ([]*models.CharAtom, error)
}

// CRDTHub хранит серверную реплику каждого документа и пересылает
// новые атомы между участниками. Реплика сервера ничего не редактирует,
// она только копит состояние для новых и переподключившихся участников.
type CRDTHub struct {
	store      AtomStore
	relay      relay.Relay
	logger     *slog.Logger
	docs       map[string]*crdtDocument
	instanceID string
	loads      singleflight.Group // открытие документа не держит h.mu
	mu         sync.Mutex
}

type crdtDocument struct {
	replica     *crdt.Replica
	peers       map[*peer]struct{}
	unsubscribe func()
	id          string
	mu          sync.RWMutex
}

// NewCRDTHub создает хаб. store и rel могут быть nil.
func NewCRDTHub(store AtomStore, rel relay.Relay, logger *slog.Logger) *CRDTHub {
	return &CRDTHub{
		store:      store,
		relay:      rel,
		logger:     logger,
		docs:       make(map[string]*crdtDocument),
		instanceID: uuid.New().String(),
	}
}

// InstanceID идентификатор экземпляра в пакетах ретрансляции
func (h *CRDTHub) InstanceID() string {
	return h.instanceID
}

func (h *CRDTHub) document(ctx context.Context, docID string) (*crdtDocument, error) {
	if doc, ok := h.lookup(docID); ok {
		return doc, nil
	}

	v, err, _ := h.loads.Do(docID, func() (any, error) {
		if doc, ok := h.lookup(docID); ok {
			return doc, nil
		}

		doc, err := h.open(ctx, docID)
		if err != nil {
			return nil, err
		}

		h.mu.Lock()
		h.docs[docID] = doc
		h.mu.Unlock()

		h.logger.Info("CRDT document opened", "doc_id", docID, "atoms", len(doc.replica.Atoms()))
		return doc, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*crdtDocument), nil
}

func (h *CRDTHub) lookup(docID string) (*crdtDocument, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	doc, ok := h.docs[docID]
	return doc, ok
}

// open загружает атомы и подписывается на ретрансляцию. Ретранслированный
// пакет, пришедший до публикации документа, дождется этой же загрузки.
func (h *CRDTHub) open(ctx context.Context, docID string) (*crdtDocument, error) {
	doc := &crdtDocument{
		id:      docID,
		replica: crdt.NewReplica("server:"+h.instanceID, h.logger),
		peers:   make(map[*peer]struct{}),
	}

	if h.store != nil {
		atoms, err := h.store.LoadAtoms(ctx, docID)
		if err != nil {
			return nil, fmt.Errorf("failed to load atoms: %w", err)
		}
		doc.replica.MergeAll(atoms)
	}

	if h.relay != nil {
		unsubscribe, err := h.relay.Subscribe(context.Background(), docID, h.onRelay(docID))
		if err != nil {
			// Без ретрансляции документ остается рабочим в пределах экземпляра
			h.logger.Error("Failed to subscribe to relay", "doc_id", docID, "error", err)
		} else {
			doc.unsubscribe = unsubscribe
		}
	}

	return doc, nil
}

func (h *CRDTHub) onRelay(docID string) relay.Handler {
	return func(batch api.AtomBatch) {
		if batch.Origin == h.instanceID {
			return
		}
		atoms, err := api.ToAtoms(batch.Atoms)
		if err != nil {
			h.logger.Warn("Dropping malformed relay batch", "doc_id", docID, "origin", batch.Origin, "error", err)
			return
		}
		if _, err := h.merge(context.Background(), docID, atoms, nil, false); err != nil {
			h.logger.Error("Failed to merge relay batch", "doc_id", docID, "error", err)
		}
	}
}

// Merge применяет пакет атомов к документу, сохраняет и рассылает изменившиеся
func (h *CRDTHub) Merge(ctx context.Context, docID string, atoms []*models.CharAtom) (api.MergeResponse, error) {
	changed, err := h.merge(ctx, docID, atoms, nil, true)
	if err != nil {
		return api.MergeResponse{}, err
	}

	doc, err := h.document(ctx, docID)
	if err != nil {
		return api.MergeResponse{}, err
	}
	return api.MergeResponse{
		Digest:  verify.Digest(doc.replica.Text()),
		Merged:  changed,
		Skipped: len(atoms) - changed,
	}, nil
}

// merge общий путь слияния: from не получает собственные атомы обратно,
// publish управляет ретрансляцией на другие экземпляры
func (h *CRDTHub) merge(ctx context.Context, docID string, atoms []*models.CharAtom, from *peer, publish bool) (int, error) {
	doc, err := h.document(ctx, docID)
	if err != nil {
		return 0, err
	}

	changed := make([]*models.CharAtom, 0, len(atoms))
	for _, atom := range atoms {
		if !doc.replica.MergeRemote(atom) {
			continue
		}
		changed = append(changed, atom)

		if h.store != nil {
			if _, err := h.store.SaveAtom(ctx, docID, atom); err != nil {
				// Атом уже в памяти; при сбое хранилища он вернется от участников при следующем обмене
				h.logger.Error("Failed to persist atom", "doc_id", docID, "atom_id", atom.ID.String(), "error", err)
			}
		}
	}

	if len(changed) == 0 {
		return 0, nil
	}

	wire := api.FromAtoms(changed)
	doc.broadcast(&api.Message{Type: api.MessageAtoms, Atoms: wire}, from)

	if publish && h.relay != nil {
		batch := api.AtomBatch{Origin: h.instanceID, Atoms: wire}
		if err := h.relay.Publish(ctx, docID, batch); err != nil {
			h.logger.Error("Failed to relay atoms", "doc_id", docID, "count", len(changed), "error", err)
		}
	}

	return len(changed), nil
}

// State возвращает полное состояние документа, включая надгробия
func (h *CRDTHub) State(ctx context.Context, docID string) (api.StateResponse, error) {
	doc, err := h.document(ctx, docID)
	if err != nil {
		return api.StateResponse{}, err
	}
	return doc.state(), nil
}

// ServeWS обрабатывает GET /api/v1/crdt/{doc}/ws
//
// Протокол: клиент шлет hello, сервер отвечает state с полным набором атомов.
// Дальше обе стороны шлют atoms; сервер пересылает другим участникам
// только атомы, изменившие его реплику.
func (h *CRDTHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	docID := mux.Vars(r)["doc"]
	if docID == "" {
		http.Error(w, "Document id is required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	doc, err := h.document(ctx, docID)
	if err != nil {
		h.logger.Error("Failed to open document", "doc_id", docID, "error", err)
		http.Error(w, "Document unavailable", http.StatusServiceUnavailable)
		return
	}

	p, err := upgrade(w, r, h.logger)
	if err != nil {
		h.logger.Warn("Failed to start CRDT session", "doc_id", docID, "error", err)
		return
	}
	defer p.close()

	if _, err := p.readHello(); err != nil {
		if !isClosure(err) {
			h.logger.Warn("CRDT session rejected", "doc_id", docID, "error", err)
			_ = p.write(&api.Message{Type: api.MessageError, Error: err.Error()})
		}
		return
	}

	logger := h.logger.With("doc_id", docID, "client_id", p.clientID)

	// Состояние ставится в очередь под блокировкой документа: атомы,
	// пришедшие после снимка, гарантированно попадут в очередь позже него
	doc.mu.Lock()
	state := doc.state()
	p.enqueue(&api.Message{Type: api.MessageState, Atoms: state.Atoms})
	doc.peers[p] = struct{}{}
	doc.mu.Unlock()

	defer func() {
		doc.mu.Lock()
		delete(doc.peers, p)
		doc.mu.Unlock()
	}()

	go p.writePump()
	logger.Info("CRDT session started", "atoms", len(state.Atoms))

	for {
		msg, err := p.read()
		if err != nil {
			if errors.Is(err, api.ErrMalformedPayload) {
				logger.Warn("Rejected malformed message", "error", err)
				p.sendError(err)
				continue
			}
			break
		}

		if msg.Type != api.MessageAtoms {
			p.sendError(fmt.Errorf("%w: unexpected %q", api.ErrMalformedPayload, msg.Type))
			continue
		}

		atoms, err := api.ToAtoms(msg.Atoms)
		if err != nil {
			p.sendError(err)
			continue
		}
		if _, err := h.merge(ctx, docID, atoms, p, true); err != nil {
			logger.Error("Failed to merge atoms", "error", err)
			p.sendError(err)
		}
	}

	logger.Info("CRDT session finished")
}

// Close отписывает документы от ретрансляции
func (h *CRDTHub) Close() {
	h.mu.Lock()
	docs := make([]*crdtDocument, 0, len(h.docs))
	for id, doc := range h.docs {
		docs = append(docs, doc)
		delete(h.docs, id)
	}
	h.mu.Unlock()

	// Отписка ждет обработчик ретрансляции, а он берет h.mu
	for _, doc := range docs {
		if doc.unsubscribe != nil {
			doc.unsubscribe()
		}
		doc.mu.Lock()
		for p := range doc.peers {
			p.close()
		}
		doc.mu.Unlock()
	}
}

// state вызывается без блокировки или под doc.mu
func (d *crdtDocument) state() api.StateResponse {
	return api.StateResponse{
		Digest: verify.Digest(d.replica.Text()),
		Atoms:  api.FromAtoms(d.replica.Atoms()),
	}
}

// broadcast рассылает сообщение всем участникам, кроме from
func (d *crdtDocument) broadcast(msg *api.Message, from *peer) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for p := range d.peers {
		if p != from {
			p.enqueue(msg)
		}
	}
}
