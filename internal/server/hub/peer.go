// Package hub обслуживает websocket-сессии документов: OT-сессии поверх
// секвенсора и CRDT-сессии поверх серверной реплики.
package hub

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/iudanet/gophtext/internal/validation"
	"github.com/iudanet/gophtext/pkg/api"
)

const (
	// DefaultSendBuffer размер очереди исходящих сообщений сессии
	DefaultSendBuffer = 256

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10

	maxMessageSize = 1 << 20
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// upgrade переводит запрос в websocket и выбирает кодек по параметру ?codec=
func upgrade(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*peer, error) {
	codec, err := api.CodecByName(r.URL.Query().Get("codec"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, err
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade уже записал ответ клиенту
		return nil, fmt.Errorf("failed to upgrade connection: %w", err)
	}

	return newPeer(conn, codec, logger), nil
}

// peer websocket-соединение одного участника.
// Пишет в соединение только writePump, остальные ставят сообщения в очередь.
type peer struct {
	conn      *websocket.Conn
	codec     api.Codec
	logger    *slog.Logger
	send      chan *api.Message
	closed    chan struct{}
	clientID  string
	closeOnce sync.Once
}

func newPeer(conn *websocket.Conn, codec api.Codec, logger *slog.Logger) *peer {
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	return &peer{
		conn:   conn,
		codec:  codec,
		logger: logger,
		send:   make(chan *api.Message, DefaultSendBuffer),
		closed: make(chan struct{}),
	}
}

// enqueue ставит сообщение в очередь. Участник с переполненной очередью
// отключается: догонять он будет после переподключения.
func (p *peer) enqueue(msg *api.Message) bool {
	select {
	case <-p.closed:
		return false
	default:
	}

	select {
	case p.send <- msg:
		return true
	case <-p.closed:
		return false
	default:
		p.logger.Warn("Dropping slow peer", "client_id", p.clientID)
		p.close()
		return false
	}
}

func (p *peer) sendError(err error) {
	p.enqueue(&api.Message{Type: api.MessageError, Error: err.Error()})
}

// close закрывает соединение. Повторные вызовы безопасны.
func (p *peer) close() {
	p.closeOnce.Do(func() {
		close(p.closed)
		_ = p.conn.Close()
	})
}

// read читает следующее сообщение. Ошибка разбора оборачивает
// api.ErrMalformedPayload и не закрывает соединение.
func (p *peer) read() (*api.Message, error) {
	_, data, err := p.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	return api.DecodeMessage(p.codec, data)
}

// writePump отправляет сообщения из очереди и пинги до закрытия соединения
func (p *peer) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		p.close()
	}()

	for {
		select {
		case msg := <-p.send:
			if err := p.write(msg); err != nil {
				p.logger.Debug("Failed to write message", "client_id", p.clientID, "error", err)
				return
			}
		case <-ticker.C:
			_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-p.closed:
			return
		}
	}
}

func (p *peer) write(msg *api.Message) error {
	data, err := p.codec.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	frame := websocket.TextMessage
	if p.codec.Binary() {
		frame = websocket.BinaryMessage
	}

	_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return p.conn.WriteMessage(frame, data)
}

// readHello ждет первое сообщение сессии, оно обязано быть hello
func (p *peer) readHello() (*api.Hello, error) {
	msg, err := p.read()
	if err != nil {
		return nil, err
	}
	if msg.Type != api.MessageHello {
		return nil, fmt.Errorf("%w: expected hello, got %q", api.ErrMalformedPayload, msg.Type)
	}
	if err := validation.ValidateClientID(msg.Hello.ClientID); err != nil {
		return nil, fmt.Errorf("%w: %w", api.ErrMalformedPayload, err)
	}
	p.clientID = msg.Hello.ClientID
	return msg.Hello, nil
}

// isClosure сообщает об обычном завершении соединения
func isClosure(err error) bool {
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return true
	}
	return errors.Is(err, websocket.ErrCloseSent) || errors.Is(err, net.ErrClosed)
}
