package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	clientapi "github.com/iudanet/gophtext/internal/client/api"
	"github.com/iudanet/gophtext/internal/editor"
	"github.com/iudanet/gophtext/internal/models"
	"github.com/iudanet/gophtext/internal/ot"
	"github.com/iudanet/gophtext/pkg/api"
)

// Snapshotter получает состояние OT документа с сервера
type Snapshotter interface {
	Snapshot(ctx context.Context, docID string) (*api.Snapshot, error)
}

// submission последняя отправленная операция в пределах соединения
type submission struct {
	op      models.Operation
	gen     uint64
	version uint64
}

// OTSession ведет ot.Client через websocket-сессию секвенсора.
// После переподключения клиент получает историю после своей версии
// и досылает неподтвержденную операцию.
type OTSession struct {
	link      *link
	snapshots Snapshotter
	client    *ot.Client
	logger    *slog.Logger
	lastSent  *submission
	cancel    context.CancelFunc
	done      chan struct{}
	docID     string
	sendMu    sync.Mutex
}

// OpenOT открывает OT-сессию документа. Если snapshots задан, клиент
// стартует со снимка, иначе с пустого документа и получает всю историю.
// Недоступный сервер возвращает clientapi.ErrSequencerUnavailable.
func OpenOT(ctx context.Context, dialer Dialer, snapshots Snapshotter, docID, clientID string, logger *slog.Logger) (*OTSession, error) {
	text, version := "", uint64(0)
	if snapshots != nil {
		snapshot, err := snapshots.Snapshot(ctx, docID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch snapshot: %w", err)
		}
		text, version = snapshot.Text, snapshot.Version
	}

	s := &OTSession{
		snapshots: snapshots,
		logger:    logger.With("doc_id", docID, "client_id", clientID),
		docID:     docID,
		done:      make(chan struct{}),
	}
	s.client = ot.NewClient(clientID, text, version, s, logger)
	s.link = &link{
		dialer: dialer,
		logger: logger,
		mode:   clientapi.ModeOT,
		docID:  docID,
		hello: func() *api.Message {
			return &api.Message{
				Type:  api.MessageHello,
				Hello: &api.Hello{ClientID: clientID, KnownVersion: s.client.Version()},
			}
		},
	}

	if err := s.link.connect(ctx, false); err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go func() {
		defer close(s.done)
		s.link.run(runCtx, false, s.handle)
	}()

	s.logger.Info("OT session opened", "version", version)
	return s, nil
}

// Send отправляет операцию секвенсору (реализует ot.Sender).
// Без готового соединения операция остается pending в клиенте
// и будет дослана после переподключения.
func (s *OTSession) Send(clientVersion uint64, op models.Operation) error {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	if s.lastSent != nil && s.lastSent.gen == s.link.generation() &&
		s.lastSent.version == clientVersion && s.lastSent.op == op {
		return nil
	}

	gen, err := s.link.send(&api.Message{
		Type: api.MessageSubmit,
		Submit: &api.SubmitRequest{
			ClientID:     s.client.ID(),
			KnownVersion: clientVersion,
			Op:           api.FromOperation(op),
		},
	})
	if err != nil {
		s.logger.Debug("Operation queued until reconnect", "op", op.String(), "error", err)
		return nil
	}

	s.lastSent = &submission{op: op, gen: gen, version: clientVersion}
	return nil
}

// handle обрабатывает сообщения секвенсора. Вызывается только из цикла
// чтения, поэтому события сервера применяются строго по порядку.
func (s *OTSession) handle(ctx context.Context, msg *api.Message) {
	switch msg.Type {
	case api.MessageBacklog:
		backlog, err := api.ToHistory(msg.Backlog)
		if err == nil {
			err = s.client.Resync(backlog)
		}
		if err != nil {
			s.logger.Warn("Failed to apply backlog", "error", err)
			s.resync(ctx)
		}
		s.link.markReady()
		if err := s.client.Resend(); err != nil {
			s.logger.Warn("Failed to resend pending operation", "error", err)
		}

	case api.MessageAck:
		if err := s.client.OnServerAck(msg.Ack.Version); err != nil {
			s.logger.Debug("Ignored ack", "version", msg.Ack.Version, "error", err)
		}

	case api.MessageBroadcast:
		entry, err := msg.Broadcast.ToVersioned()
		if err != nil {
			s.logger.Warn("Ignored malformed broadcast", "error", err)
			return
		}
		// уже учтено снимком после resync
		if entry.Version <= s.client.Version() {
			return
		}
		if err := s.client.OnRemoteOp(entry); err != nil {
			s.resync(ctx)
		}

	case api.MessageError:
		// До backlog отказ относится к hello: правки остаются pending,
		// link переподключится с задержкой
		if !s.link.connected() {
			s.logger.Warn("Session rejected by sequencer", "reason", msg.Error)
			if conn := s.link.current(); conn != nil {
				s.link.drop(conn)
			}
			return
		}
		s.logger.Warn("Operation rejected by sequencer", "reason", msg.Error)
		s.resync(ctx)

	default:
		s.logger.Debug("Ignored message", "type", msg.Type)
	}
}

// resync сбрасывает клиента к снимку сервера, отбрасывая неподтвержденные правки
func (s *OTSession) resync(ctx context.Context) {
	if s.snapshots == nil {
		return
	}

	snapshot, err := s.snapshots.Snapshot(ctx, s.docID)
	if err != nil {
		s.logger.Warn("Failed to fetch snapshot", "error", err)
		return
	}

	s.sendMu.Lock()
	s.lastSent = nil
	s.sendMu.Unlock()

	s.client.Reset(snapshot.Text, snapshot.Version)
	s.logger.Info("Client reset to server snapshot", "version", snapshot.Version)
}

// Engine возвращает движок редактирования поверх сессии
func (s *OTSession) Engine() editor.Engine {
	return editor.NewOT(s.client)
}

// Client возвращает клиентский буфер
func (s *OTSession) Client() *ot.Client {
	return s.client
}

// Insert вставляет символ ch в позицию pos
func (s *OTSession) Insert(pos int, ch rune) error {
	return s.client.Insert(pos, ch)
}

// Delete удаляет символ в позиции pos
func (s *OTSession) Delete(pos int) error {
	return s.client.Delete(pos)
}

// Text возвращает локальное зеркало документа
func (s *OTSession) Text() string {
	return s.client.Text()
}

// Version возвращает последнюю известную версию сервера
func (s *OTSession) Version() uint64 {
	return s.client.Version()
}

// Connected сообщает, готово ли соединение к отправке
func (s *OTSession) Connected() bool {
	return s.link.connected()
}

// Flush ждет подтверждения всех локальных правок
func (s *OTSession) Flush(ctx context.Context) error {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		if _, pending := s.client.Pending(); !pending && len(s.client.Buffered()) == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("flush interrupted: %w", ctx.Err())
		case <-s.done:
			return ErrClosed
		case <-ticker.C:
		}
	}
}

// Close закрывает сессию. Неподтвержденные правки теряются.
func (s *OTSession) Close() error {
	s.cancel()
	s.link.close()
	<-s.done

	if _, pending := s.client.Pending(); pending {
		s.logger.Warn("OT session closed with unacknowledged edits")
	}
	s.logger.Info("OT session closed")
	return nil
}

var _ ot.Sender = (*OTSession)(nil)

// IsUnavailable сообщает, что ошибка означает недоступность сервера
func IsUnavailable(err error) bool {
	return errors.Is(err, clientapi.ErrSequencerUnavailable)
}
