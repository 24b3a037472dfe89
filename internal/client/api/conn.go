package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/iudanet/gophtext/pkg/api"
)

const (
	// Режимы синхронизации, совпадают с префиксами маршрутов сервера
	ModeOT   = "ot"
	ModeCRDT = "crdt"

	writeWait = 10 * time.Second
)

// Conn websocket-соединение с документом.
// Send безопасен для конкурентного вызова, Receive читает один потребитель.
type Conn struct {
	ws      *websocket.Conn
	codec   api.Codec
	writeMu sync.Mutex
}

// Dial открывает websocket-сессию документа в режиме mode (ot или crdt)
func (c *Client) Dial(ctx context.Context, mode, docID string) (*Conn, error) {
	if mode != ModeOT && mode != ModeCRDT {
		return nil, fmt.Errorf("unknown session mode %q", mode)
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server address: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/api/v1/" + mode + "/" + url.PathEscape(docID) + "/ws"
	u.RawQuery = url.Values{"codec": {c.codec.Name()}}.Encode()

	ws, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if resp != nil && resp.StatusCode != http.StatusServiceUnavailable && resp.StatusCode != http.StatusBadGateway {
			return nil, fmt.Errorf("dial rejected with status %d: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrSequencerUnavailable, err)
	}

	return &Conn{ws: ws, codec: c.codec}, nil
}

// Send кодирует и отправляет сообщение
func (c *Conn) Send(msg *api.Message) error {
	data, err := c.codec.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	frame := websocket.TextMessage
	if c.codec.Binary() {
		frame = websocket.BinaryMessage
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.ws.WriteMessage(frame, data); err != nil {
		return fmt.Errorf("%w: %v", ErrConnClosed, err)
	}
	return nil
}

// Receive читает следующее сообщение. Некорректное сообщение возвращает
// api.ErrMalformedPayload, соединение при этом остается открытым.
func (c *Conn) Receive() (*api.Message, error) {
	_, data, err := c.ws.ReadMessage()
	if err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) ||
			errors.Is(err, websocket.ErrCloseSent) {
			return nil, ErrConnClosed
		}
		return nil, fmt.Errorf("%w: %v", ErrConnClosed, err)
	}
	return api.DecodeMessage(c.codec, data)
}

// Close закрывает соединение, отправляя close-фрейм
func (c *Conn) Close() error {
	c.writeMu.Lock()
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.writeMu.Unlock()
	return c.ws.Close()
}
