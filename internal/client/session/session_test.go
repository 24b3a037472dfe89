package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	clientapi "github.com/iudanet/gophtext/internal/client/api"
	"github.com/iudanet/gophtext/internal/ot"
	"github.com/iudanet/gophtext/internal/server/handlers"
	"github.com/iudanet/gophtext/internal/server/hub"
	"github.com/iudanet/gophtext/pkg/api"
)

const waitFor = 5 * time.Second

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testServer struct {
	client   *clientapi.Client
	registry *ot.Registry
	ot       *hub.OTHub
	crdt     *hub.CRDTHub
}

// setupTestServer поднимает сервер с обоими хабами за маршрутизатором API
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := setupTestLogger()
	registry := ot.NewRegistry(nil, logger)
	otHub := hub.NewOTHub(registry, logger)
	crdtHub := hub.NewCRDTHub(nil, nil, logger)

	router := handlers.NewRouter(
		handlers.NewHealthHandler(logger, "test", nil),
		handlers.NewOTHandler(logger, otHub),
		handlers.NewCRDTHandler(logger, crdtHub),
		handlers.Streams{OT: otHub.ServeWS, CRDT: crdtHub.ServeWS},
	)
	srv := httptest.NewServer(router)

	t.Cleanup(func() {
		srv.Close()
		registry.Close()
		crdtHub.Close()
	})

	return &testServer{
		client:   clientapi.NewClient(srv.URL, api.JSON),
		registry: registry,
		ot:       otHub,
		crdt:     crdtHub,
	}
}

// trackingDialer запоминает открытые соединения, чтобы тест мог их оборвать
type trackingDialer struct {
	dialer  Dialer
	conns   []Conn
	offline bool
	mu      sync.Mutex
}

func (d *trackingDialer) Dial(ctx context.Context, mode, docID string) (Conn, error) {
	d.mu.Lock()
	offline := d.offline
	d.mu.Unlock()
	if offline {
		return nil, clientapi.ErrSequencerUnavailable
	}

	conn, err := d.dialer.Dial(ctx, mode, docID)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.conns = append(d.conns, conn)
	d.mu.Unlock()
	return conn, nil
}

func (d *trackingDialer) setOffline(offline bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.offline = offline
}

// breakLast обрывает последнее соединение
func (d *trackingDialer) breakLast(t *testing.T) {
	t.Helper()

	d.mu.Lock()
	defer d.mu.Unlock()
	require.NotEmpty(t, d.conns)
	_ = d.conns[len(d.conns)-1].Close()
}

func (d *trackingDialer) dials() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.conns)
}

// scriptedConn соединение, сообщения сервера в которое подает тест
type scriptedConn struct {
	*ConnMock
	incoming chan *api.Message
}

func newScriptedConn() *scriptedConn {
	incoming := make(chan *api.Message, 16)
	closed := make(chan struct{})
	var once sync.Once

	return &scriptedConn{
		incoming: incoming,
		ConnMock: &ConnMock{
			SendFunc: func(msg *api.Message) error { return nil },
			ReceiveFunc: func() (*api.Message, error) {
				select {
				case msg := <-incoming:
					return msg, nil
				case <-closed:
					return nil, clientapi.ErrConnClosed
				}
			},
			CloseFunc: func() error {
				once.Do(func() { close(closed) })
				return nil
			},
		},
	}
}

// submits возвращает отправленные submit-запросы
func (c *scriptedConn) submits() []*api.SubmitRequest {
	var result []*api.SubmitRequest
	for _, call := range c.SendCalls() {
		if call.Msg.Type == api.MessageSubmit {
			result = append(result, call.Msg.Submit)
		}
	}
	return result
}

// onceDialer отдает одно соединение, дальше сервер недоступен
func onceDialer(conn Conn) Dialer {
	return sequenceDialer(conn)
}

// sequenceDialer отдает соединения по очереди, дальше сервер недоступен
func sequenceDialer(conns ...Conn) Dialer {
	var next int
	var mu sync.Mutex
	return DialFunc(func(ctx context.Context, mode, docID string) (Conn, error) {
		mu.Lock()
		defer mu.Unlock()
		if next >= len(conns) {
			return nil, errors.New("dial refused")
		}
		next++
		return conns[next-1], nil
	})
}

type snapshotFunc func(ctx context.Context, docID string) (*api.Snapshot, error)

func (f snapshotFunc) Snapshot(ctx context.Context, docID string) (*api.Snapshot, error) {
	return f(ctx, docID)
}

// typeAtEnd набирает text в конец локального текста сессии
func typeAtEnd(t *testing.T, insert func(int, rune) error, text func() string, s string) {
	t.Helper()
	for _, ch := range s {
		require.NoError(t, insert(len([]rune(text())), ch))
	}
}
