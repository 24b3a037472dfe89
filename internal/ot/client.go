package ot

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/iudanet/gophtext/internal/models"
)

//go:generate moq -out sender_mock.go . Sender

// Sender отправляет операцию клиента секвенсору по упорядоченному каналу
type Sender interface {
	Send(clientVersion uint64, op models.Operation) error
}

// Client клиентский буфер OT: оптимистичное локальное применение правок
// и согласование ожидающих операций с операциями других клиентов.
// Обработчики событий сериализуются мьютексом и не перемежаются.
type Client struct {
	sender   Sender
	logger   *slog.Logger
	pending  *models.Operation   // отправлена, ждет подтверждения (не больше одной)
	id       string
	doc      []rune              // локальное зеркало документа
	buffered []models.Operation  // набраны, пока pending не подтверждена
	version  uint64              // последняя известная версия сервера
	mu       sync.Mutex
}

// NewClient создает клиентский буфер поверх состояния text с версией version
func NewClient(id, text string, version uint64, sender Sender, logger *slog.Logger) *Client {
	return &Client{
		id:      id,
		doc:     []rune(text),
		version: version,
		sender:  sender,
		logger:  logger,
	}
}

// ID возвращает идентификатор клиента
func (c *Client) ID() string {
	return c.id
}

// Insert создает и применяет локальную вставку
func (c *Client) Insert(pos int, ch rune) error {
	op, err := models.NewInsert(pos, ch, c.id)
	if err != nil {
		return err
	}
	return c.OnLocalEdit(op)
}

// Delete создает и применяет локальное удаление
func (c *Client) Delete(pos int) error {
	op, err := models.NewDelete(pos, c.id)
	if err != nil {
		return err
	}
	return c.OnLocalEdit(op)
}

// OnLocalEdit сразу применяет правку к зеркалу. Если ничего не ждет
// подтверждения, правка отправляется, иначе попадает в буфер.
// Ошибка отправки не отменяет правку: она останется pending до Resend.
func (c *Client) OnLocalEdit(op models.Operation) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	doc, _, err := Apply(c.doc, op)
	if err != nil {
		return fmt.Errorf("failed to apply local edit: %w", err)
	}
	c.doc = doc

	if c.pending != nil {
		c.buffered = append(c.buffered, op)
		return nil
	}

	c.pending = &op
	if err := c.sender.Send(c.version, op); err != nil {
		return fmt.Errorf("failed to send operation: %w", err)
	}
	return nil
}

// OnServerAck подтверждает pending операцию и отправляет следующую из буфера
func (c *Client) OnServerAck(version uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending == nil {
		return ErrNoPendingOperation
	}
	if version != c.version+1 {
		c.logger.Warn("Unexpected ack version", "client_id", c.id, "expected", c.version+1, "got", version)
	}

	c.pending = nil
	c.version = version

	return c.flush()
}

// flush отправляет следующую операцию из буфера. Вызывается под c.mu.
func (c *Client) flush() error {
	if c.pending != nil || len(c.buffered) == 0 {
		return nil
	}

	next := c.buffered[0]
	c.buffered = c.buffered[1:]
	c.pending = &next

	if err := c.sender.Send(c.version, next); err != nil {
		return fmt.Errorf("failed to send operation: %w", err)
	}
	return nil
}

// OnRemoteOp применяет операцию другого клиента. Удаленная операция
// попарно преобразуется против pending, затем против каждой буферизованной;
// они при этом тоже обновляются.
func (c *Client) OnRemoteOp(entry models.VersionedOperation) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry.Version != c.version+1 {
		c.logger.Warn("Unexpected remote version", "client_id", c.id, "expected", c.version+1, "got", entry.Version)
	}

	remote := entry.Op
	if c.pending != nil {
		pending, transformed := TransformPair(*c.pending, remote)
		c.pending = &pending
		remote = transformed
	}
	for i := range c.buffered {
		c.buffered[i], remote = TransformPair(c.buffered[i], remote)
	}

	doc, _, err := Apply(c.doc, remote)
	if err != nil {
		c.logger.Warn("Discarded remote operation with invalid position",
			"client_id", c.id,
			"version", entry.Version,
			"op", remote.String(),
			"error", err,
		)
		return err
	}

	c.doc = doc
	c.version = entry.Version
	return nil
}

// Resync обрабатывает историю, полученную после переподключения.
// Собственная запись клиента в истории считается подтверждением pending,
// остальные записи обрабатываются как удаленные операции.
func (c *Client) Resync(backlog []models.VersionedOperation) error {
	for _, entry := range backlog {
		var err error
		if entry.ClientID == c.id {
			err = c.OnServerAck(entry.Version)
		} else {
			err = c.OnRemoteOp(entry)
		}
		if err != nil {
			return fmt.Errorf("failed to resync version %d: %w", entry.Version, err)
		}
	}
	return nil
}

// Resend повторно отправляет pending операцию относительно текущей версии.
// Используется после переподключения, когда подтверждение так и не пришло.
func (c *Client) Resend() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending == nil {
		return c.flush()
	}
	if err := c.sender.Send(c.version, *c.pending); err != nil {
		return fmt.Errorf("failed to resend operation: %w", err)
	}
	return nil
}

// Reset сбрасывает клиента к состоянию сервера, отбрасывая неподтвержденные правки.
// Используется, когда секвенсор отклонил pending операцию.
func (c *Client) Reset(text string, version uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending != nil || len(c.buffered) > 0 {
		c.logger.Warn("Discarding unacknowledged edits", "client_id", c.id, "pending", c.pending != nil, "buffered", len(c.buffered))
	}
	c.doc = []rune(text)
	c.version = version
	c.pending = nil
	c.buffered = nil
}

// Text возвращает локальное зеркало документа
func (c *Client) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return string(c.doc)
}

// Version возвращает последнюю известную версию сервера
func (c *Client) Version() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.version
}

// Pending возвращает операцию, ожидающую подтверждения
func (c *Client) Pending() (models.Operation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending == nil {
		return models.Operation{}, false
	}
	return *c.pending, true
}

// Buffered возвращает копию буферизованных операций
func (c *Client) Buffered() []models.Operation {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make([]models.Operation, len(c.buffered))
	copy(result, c.buffered)
	return result
}

// Consistent проверяет инвариант буфера: pending и буфер, примененные
// к последнему подтвержденному состоянию сервера, дают локальное зеркало.
func (c *Client) Consistent(serverText string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ops := make([]models.Operation, 0, len(c.buffered)+1)
	if c.pending != nil {
		ops = append(ops, *c.pending)
	}
	ops = append(ops, c.buffered...)

	expected, err := ApplyString(serverText, ops...)
	if err != nil {
		return err
	}
	if expected != string(c.doc) {
		return fmt.Errorf("local mirror %q differs from server state with outstanding edits %q", string(c.doc), expected)
	}
	return nil
}
