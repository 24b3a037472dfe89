// Package session связывает локальные движки (OT клиент, CRDT реплика)
// с сервером: websocket-сессия, переподключение и досылка правок.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	clientapi "github.com/iudanet/gophtext/internal/client/api"
	"github.com/iudanet/gophtext/pkg/api"
)

const (
	minBackoff = 100 * time.Millisecond
	maxBackoff = 5 * time.Second
)

//go:generate moq -out conn_mock.go . Conn

// Conn упорядоченный транспорт сессии (реализуется *clientapi.Conn)
type Conn interface {
	Send(msg *api.Message) error
	Receive() (*api.Message, error)
	Close() error
}

// Dialer открывает соединение с документом в режиме mode
type Dialer interface {
	Dial(ctx context.Context, mode, docID string) (Conn, error)
}

// DialFunc адаптер функции к Dialer
type DialFunc func(ctx context.Context, mode, docID string) (Conn, error)

// Dial вызывает f
func (f DialFunc) Dial(ctx context.Context, mode, docID string) (Conn, error) {
	return f(ctx, mode, docID)
}

// NewDialer возвращает Dialer поверх API клиента
func NewDialer(client *clientapi.Client) Dialer {
	return DialFunc(func(ctx context.Context, mode, docID string) (Conn, error) {
		conn, err := client.Dial(ctx, mode, docID)
		if err != nil {
			return nil, err
		}
		return conn, nil
	})
}

// link владеет текущим соединением сессии и переподключением.
// Сообщения отправляются только в готовое соединение: режим сам решает,
// когда соединение готово (OT после backlog, CRDT сразу).
type link struct {
	dialer Dialer
	logger *slog.Logger
	hello  func() *api.Message
	conn   Conn
	mode   string
	docID  string
	gen    uint64 // номер соединения, растет при каждом подключении
	ready  bool
	closed bool
	mu     sync.Mutex
}

// connect открывает соединение и отправляет hello
func (l *link) connect(ctx context.Context, ready bool) error {
	conn, err := l.dialer.Dial(ctx, l.mode, l.docID)
	if err != nil {
		return err
	}
	if err := conn.Send(l.hello()); err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to send hello: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		_ = conn.Close()
		return ErrClosed
	}
	l.conn = conn
	l.gen++
	l.ready = ready
	return nil
}

// reconnect повторяет connect с экспоненциальной задержкой до успеха
// или отмены ctx
func (l *link) reconnect(ctx context.Context, ready bool) error {
	backoff := retry.WithCappedDuration(maxBackoff, retry.NewExponential(minBackoff))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := l.connect(ctx, ready)
		if err == nil {
			l.logger.Info("Session reconnected", "mode", l.mode, "doc_id", l.docID)
			return nil
		}
		if errors.Is(err, ErrClosed) {
			return err
		}
		l.logger.Debug("Reconnect attempt failed", "mode", l.mode, "doc_id", l.docID, "error", err)
		return retry.RetryableError(err)
	})
}

func (l *link) current() Conn {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.conn
}

// drop забывает соединение, если оно все еще текущее
func (l *link) drop(conn Conn) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.conn == conn {
		l.conn = nil
		l.ready = false
	}
	_ = conn.Close()
}

func (l *link) markReady() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.conn != nil {
		l.ready = true
	}
}

// send отправляет сообщение в готовое соединение и возвращает его номер
func (l *link) send(msg *api.Message) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.conn == nil || !l.ready {
		return 0, ErrNotConnected
	}
	if err := l.conn.Send(msg); err != nil {
		return 0, err
	}
	return l.gen, nil
}

func (l *link) connected() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.conn != nil && l.ready
}

func (l *link) close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.closed = true
	if l.conn != nil {
		_ = l.conn.Close()
		l.conn = nil
		l.ready = false
	}
}

// run читает сообщения текущего соединения и передает их handle.
// Потеря соединения ведет к переподключению, readyOnConnect задает
// готовность нового соединения к отправке.
func (l *link) run(ctx context.Context, readyOnConnect bool, handle func(context.Context, *api.Message)) {
	for ctx.Err() == nil {
		conn := l.current()
		if conn == nil {
			if err := l.reconnect(ctx, readyOnConnect); err != nil {
				return
			}
			continue
		}

		msg, err := conn.Receive()
		if err != nil {
			if errors.Is(err, api.ErrMalformedPayload) {
				l.logger.Warn("Ignored malformed message", "mode", l.mode, "doc_id", l.docID, "error", err)
				continue
			}
			l.drop(conn)
			if ctx.Err() != nil {
				return
			}
			l.logger.Warn("Session disconnected", "mode", l.mode, "doc_id", l.docID, "error", err)
			continue
		}

		handle(ctx, msg)
	}
}

func (l *link) generation() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gen
}
