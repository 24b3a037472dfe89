package ot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/iudanet/gophtext/internal/models"
)

//go:generate moq -out history_mock.go . HistoryStore

// HistoryStore сохраняет принятые операции документа
type HistoryStore interface {
	// AppendOperation сохраняет принятую операцию. Ошибка отменяет принятие.
	AppendOperation(ctx context.Context, docID string, entry models.VersionedOperation) error

	// LoadHistory возвращает всю историю документа в порядке версий
	LoadHistory(ctx context.Context, docID string) ([]models.VersionedOperation, error)
}

// EventKind тип события подписчика
type EventKind uint8

const (
	// EventAck подтверждение операции самого подписчика
	EventAck EventKind = iota + 1
	// EventBroadcast операция другого клиента
	EventBroadcast
)

func (k EventKind) String() string {
	switch k {
	case EventAck:
		return "ack"
	case EventBroadcast:
		return "broadcast"
	default:
		return "unknown"
	}
}

// Event событие, доставляемое подписчику в порядке версий
type Event struct {
	Entry models.VersionedOperation
	Kind  EventKind
}

// DefaultSubscriberBuffer размер буфера событий подписчика по умолчанию
const DefaultSubscriberBuffer = 256

// Option настраивает секвенсор
type Option func(*Sequencer)

// WithHistoryStore подключает хранилище истории
func WithHistoryStore(store HistoryStore) Option {
	return func(s *Sequencer) {
		s.store = store
	}
}

// WithSubscriberBuffer задает размер буфера событий подписчика
func WithSubscriberBuffer(size int) Option {
	return func(s *Sequencer) {
		if size > 0 {
			s.bufferSize = size
		}
	}
}

// Sequencer центральный упорядочивающий узел одного документа.
// Все изменения буфера и истории происходят под одним мьютексом.
type Sequencer struct {
	store       HistoryStore
	logger      *slog.Logger
	subscribers map[uint64]*Subscription
	docID       string
	doc         []rune
	history     []models.VersionedOperation // history[v-1] имеет версию v
	removed     []rune                      // символы, удаленные операцией той же версии
	nextSubID   uint64
	bufferSize  int
	mu          sync.Mutex
	closed      bool
}

// NewSequencer создает секвенсор пустого документа
func NewSequencer(docID string, logger *slog.Logger, opts ...Option) *Sequencer {
	s := &Sequencer{
		docID:       docID,
		logger:      logger,
		subscribers: make(map[uint64]*Subscription),
		bufferSize:  DefaultSubscriberBuffer,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore восстанавливает секвенсор, воспроизводя сохраненную историю
func Restore(docID string, history []models.VersionedOperation, logger *slog.Logger, opts ...Option) (*Sequencer, error) {
	s := NewSequencer(docID, logger, opts...)

	for i, entry := range history {
		if entry.Version != uint64(i)+1 {
			return nil, fmt.Errorf("%w: expected %d, got %d", ErrVersionGap, i+1, entry.Version)
		}
		doc, removed, err := Apply(s.doc, entry.Op)
		if err != nil {
			return nil, fmt.Errorf("failed to replay version %d: %w", entry.Version, err)
		}
		s.doc = doc
		s.history = append(s.history, entry)
		s.removed = append(s.removed, removed)
	}

	return s, nil
}

// DocID возвращает идентификатор документа
func (s *Sequencer) DocID() string {
	return s.docID
}

// Receive принимает операцию клиента, сгенерированную против clientVersion.
// Операция преобразуется против всех чужих записей истории с версией больше
// clientVersion, применяется к буферу и получает версию version+1.
// Автор получает EventAck, остальные подписчики EventBroadcast.
func (s *Sequencer) Receive(ctx context.Context, clientID string, clientVersion uint64, op models.Operation) (models.VersionedOperation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return models.VersionedOperation{}, ErrSequencerClosed
	}

	version := s.version()
	if clientVersion > version {
		s.logger.Warn("Rejected operation from the future",
			"doc_id", s.docID,
			"client_id", clientID,
			"client_version", clientVersion,
			"version", version,
		)
		return models.VersionedOperation{}, fmt.Errorf("%w: client %d, sequencer %d", ErrFutureVersion, clientVersion, version)
	}

	if err := op.Validate(); err != nil {
		s.logger.Warn("Rejected malformed operation", "doc_id", s.docID, "client_id", clientID, "error", err)
		return models.VersionedOperation{}, err
	}

	transformed := op
	for _, entry := range s.history[clientVersion:] {
		if entry.ClientID == clientID {
			continue
		}
		transformed = Transform(transformed, entry.Op)
	}

	doc, removed, err := Apply(s.doc, transformed)
	if err != nil {
		s.logger.Warn("Discarded operation with invalid position",
			"doc_id", s.docID,
			"client_id", clientID,
			"client_version", clientVersion,
			"op", transformed.String(),
			"length", len(s.doc),
			"error", err,
		)
		return models.VersionedOperation{}, err
	}

	entry := models.VersionedOperation{
		ClientID: clientID,
		Op:       transformed,
		Version:  version + 1,
	}

	if s.store != nil {
		if err := s.store.AppendOperation(ctx, s.docID, entry); err != nil {
			s.logger.Error("Failed to persist operation", "doc_id", s.docID, "version", entry.Version, "error", err)
			return models.VersionedOperation{}, fmt.Errorf("failed to persist operation: %w", err)
		}
	}

	s.doc = doc
	s.history = append(s.history, entry)
	s.removed = append(s.removed, removed)

	s.publish(entry)

	s.logger.Debug("Accepted operation",
		"doc_id", s.docID,
		"client_id", clientID,
		"version", entry.Version,
		"op", transformed.String(),
	)

	return entry, nil
}

// publish рассылает событие всем подписчикам. Вызывается под s.mu.
// Подписчик с переполненным буфером отключается: он восстановится
// переподключением с последней подтвержденной версией.
func (s *Sequencer) publish(entry models.VersionedOperation) {
	for id, sub := range s.subscribers {
		ev := Event{Entry: entry, Kind: EventBroadcast}
		if sub.clientID == entry.ClientID {
			ev.Kind = EventAck
		}

		select {
		case sub.ch <- ev:
		default:
			s.logger.Warn("Dropping slow subscriber",
				"doc_id", s.docID,
				"client_id", sub.clientID,
				"version", entry.Version,
			)
			delete(s.subscribers, id)
			close(sub.ch)
		}
	}
}

// Subscribe регистрирует подписчика и атомарно возвращает историю после since.
// События после возвращенной истории придут в канал подписки без пропусков.
func (s *Sequencer) Subscribe(clientID string, since uint64) (*Subscription, []models.VersionedOperation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, nil, ErrSequencerClosed
	}
	if since > s.version() {
		return nil, nil, fmt.Errorf("%w: client %d, sequencer %d", ErrFutureVersion, since, s.version())
	}
	// Receive пропускает записи автора, поэтому две сессии с одним
	// идентификатором не увидели бы правок друг друга
	if s.connectedLocked(clientID) {
		s.logger.Warn("Rejected duplicate subscription", "doc_id", s.docID, "client_id", clientID)
		return nil, nil, fmt.Errorf("%w: %s", ErrClientConnected, clientID)
	}

	s.nextSubID++
	sub := &Subscription{
		seq:      s,
		ch:       make(chan Event, s.bufferSize),
		clientID: clientID,
		id:       s.nextSubID,
	}
	s.subscribers[sub.id] = sub

	backlog := make([]models.VersionedOperation, len(s.history)-int(since))
	copy(backlog, s.history[since:])

	s.logger.Info("Client subscribed", "doc_id", s.docID, "client_id", clientID, "since", since, "backlog", len(backlog))

	return sub, backlog, nil
}

func (s *Sequencer) unsubscribe(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subscribers[id]
	if !ok {
		return
	}
	delete(s.subscribers, id)
	close(sub.ch)
}

// Since возвращает записи истории с версией больше v
func (s *Sequencer) Since(v uint64) ([]models.VersionedOperation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v > s.version() {
		return nil, fmt.Errorf("%w: client %d, sequencer %d", ErrFutureVersion, v, s.version())
	}

	result := make([]models.VersionedOperation, len(s.history)-int(v))
	copy(result, s.history[v:])
	return result, nil
}

// History возвращает копию всей истории
func (s *Sequencer) History() []models.VersionedOperation {
	history, _ := s.Since(0)
	return history
}

// Snapshot возвращает канонический текст и его версию
func (s *Sequencer) Snapshot() (string, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return string(s.doc), s.version()
}

// Text возвращает канонический текст
func (s *Sequencer) Text() string {
	text, _ := s.Snapshot()
	return text
}

// Version возвращает текущую версию
func (s *Sequencer) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.version()
}

// Inverse возвращает операцию, отменяющую запись с версией v,
// уже преобразованную против всех последующих записей истории.
// Результат можно отправить в Receive с текущей версией.
func (s *Sequencer) Inverse(v uint64) (models.Operation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v == 0 || v > s.version() {
		return models.Operation{}, fmt.Errorf("%w: %d", ErrVersionNotFound, v)
	}

	entry := s.history[v-1]
	inverse := Invert(entry.Op, s.removed[v-1])
	for _, later := range s.history[v:] {
		inverse = Transform(inverse, later.Op)
	}
	return inverse, nil
}

// Subscribers возвращает количество активных подписчиков
func (s *Sequencer) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.subscribers)
}

// Connected сообщает, есть ли у клиента живая подписка
func (s *Sequencer) Connected(clientID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.connectedLocked(clientID)
}

func (s *Sequencer) connectedLocked(clientID string) bool {
	for _, sub := range s.subscribers {
		if sub.clientID == clientID {
			return true
		}
	}
	return false
}

// Close закрывает секвенсор и все подписки
func (s *Sequencer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	for id, sub := range s.subscribers {
		delete(s.subscribers, id)
		close(sub.ch)
	}
}

func (s *Sequencer) version() uint64 {
	return uint64(len(s.history))
}

// Subscription поток событий одного клиента
type Subscription struct {
	seq      *Sequencer
	ch       chan Event
	clientID string
	id       uint64
}

// Events возвращает канал событий. Канал закрывается при отключении подписчика.
func (s *Subscription) Events() <-chan Event {
	return s.ch
}

// ClientID возвращает идентификатор клиента подписки
func (s *Subscription) ClientID() string {
	return s.clientID
}

// Close отменяет подписку
func (s *Subscription) Close() {
	s.seq.unsubscribe(s.id)
}
