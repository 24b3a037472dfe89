// Package relay передает пакеты атомов CRDT между экземплярами сервера.
// Каждый экземпляр держит свою реплику документа; ретрансляция лишь
// ускоряет сходимость, полное состояние все равно выравнивается при подключении.
package relay

import (
	"context"
	"sync"

	"github.com/iudanet/gophtext/pkg/api"
)

// Handler получает пакет, опубликованный любым экземпляром (включая текущий).
// Отсеивать собственные пакеты по Origin должен получатель.
type Handler func(batch api.AtomBatch)

//go:generate moq -out relay_mock.go . Relay

// Relay канал публикации атомов документа
type Relay interface {
	Publish(ctx context.Context, docID string, batch api.AtomBatch) error
	Subscribe(ctx context.Context, docID string, handler Handler) (func(), error)
	Close() error
}

// Local ретранслятор внутри одного процесса
type Local struct {
	subs   map[string]map[uint64]Handler
	nextID uint64
	mu     sync.RWMutex
}

// NewLocal создает ретранслятор в памяти процесса
func NewLocal() *Local {
	return &Local{
		subs: make(map[string]map[uint64]Handler),
	}
}

// Publish синхронно вызывает обработчики всех подписчиков документа
func (l *Local) Publish(_ context.Context, docID string, batch api.AtomBatch) error {
	l.mu.RLock()
	handlers := make([]Handler, 0, len(l.subs[docID]))
	for _, h := range l.subs[docID] {
		handlers = append(handlers, h)
	}
	l.mu.RUnlock()

	for _, h := range handlers {
		h(batch)
	}
	return nil
}

// Subscribe регистрирует обработчик и возвращает функцию отписки
func (l *Local) Subscribe(_ context.Context, docID string, handler Handler) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextID++
	id := l.nextID
	if l.subs[docID] == nil {
		l.subs[docID] = make(map[uint64]Handler)
	}
	l.subs[docID][id] = handler

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()

		delete(l.subs[docID], id)
		if len(l.subs[docID]) == 0 {
			delete(l.subs, docID)
		}
	}, nil
}

// Close удаляет всех подписчиков
func (l *Local) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.subs = make(map[string]map[uint64]Handler)
	return nil
}
