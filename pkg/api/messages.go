package api

import "github.com/iudanet/gophtext/internal/models"

// Типы сообщений websocket-сессий
const (
	MessageHello     = "hello"     // клиент -> сервер: представление и последняя подтвержденная версия
	MessageSubmit    = "submit"    // клиент -> секвенсор: операция
	MessageAck       = "ack"       // секвенсор -> автор: подтверждение
	MessageBroadcast = "broadcast" // секвенсор -> остальные клиенты: принятая операция
	MessageBacklog   = "backlog"   // секвенсор -> клиент: история после переподключения
	MessageAtoms     = "atoms"     // реплика <-> реплика: атомы CRDT
	MessageState     = "state"     // сервер -> реплика: полное состояние (anti-entropy)
	MessageError     = "error"     // сервер -> клиент: отклоненный запрос
)

// Hello первое сообщение клиента в сессии
type Hello struct {
	ClientID     string `json:"clientId" msgpack:"clientId"`
	KnownVersion uint64 `json:"knownVersion" msgpack:"knownVersion"`
}

// SubmitRequest представляет submit(clientId, knownVersion, op)
type SubmitRequest struct {
	ClientID     string    `json:"clientId" msgpack:"clientId"`
	Op           Operation `json:"op" msgpack:"op"`
	KnownVersion uint64    `json:"knownVersion" msgpack:"knownVersion"`
}

// SubmitResponse ответ секвенсора на submit
type SubmitResponse struct {
	Reason   string `json:"reason,omitempty" msgpack:"reason,omitempty"`
	Version  uint64 `json:"version" msgpack:"version"`
	Accepted bool   `json:"accepted" msgpack:"accepted"`
}

// Broadcast принятая секвенсором операция с присвоенной версией
type Broadcast struct {
	ClientID string    `json:"clientId" msgpack:"clientId"`
	Op       Operation `json:"op" msgpack:"op"`
	Version  uint64    `json:"version" msgpack:"version"`
}

// Snapshot текущее состояние OT документа
type Snapshot struct {
	Text    string `json:"text" msgpack:"text"`
	Version uint64 `json:"version" msgpack:"version"`
}

// HistoryResponse история операций после указанной версии
type HistoryResponse struct {
	Entries []Broadcast `json:"entries" msgpack:"entries"`
	Version uint64      `json:"version" msgpack:"version"`
}

// AtomBatch пакет атомов CRDT. Origin идентифицирует отправителя ретрансляции.
type AtomBatch struct {
	Origin string `json:"origin,omitempty" msgpack:"origin,omitempty"`
	Atoms  []Atom `json:"atoms" msgpack:"atoms"`
}

// StateResponse полное состояние реплики вместе с дайджестом видимого текста
type StateResponse struct {
	Digest string `json:"digest" msgpack:"digest"`
	Atoms  []Atom `json:"atoms" msgpack:"atoms"`
}

// MergeResponse результат слияния пакета атомов
type MergeResponse struct {
	Digest  string `json:"digest" msgpack:"digest"`
	Merged  int    `json:"merged" msgpack:"merged"`
	Skipped int    `json:"skipped" msgpack:"skipped"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error string `json:"error" msgpack:"error"`
}

// Message конверт websocket-сообщения. Заполнено поле, соответствующее Type.
type Message struct {
	Hello     *Hello          `json:"hello,omitempty" msgpack:"hello,omitempty"`
	Submit    *SubmitRequest  `json:"submit,omitempty" msgpack:"submit,omitempty"`
	Ack       *SubmitResponse `json:"ack,omitempty" msgpack:"ack,omitempty"`
	Broadcast *Broadcast      `json:"broadcast,omitempty" msgpack:"broadcast,omitempty"`
	Type      string          `json:"type" msgpack:"type"`
	Error     string          `json:"error,omitempty" msgpack:"error,omitempty"`
	Backlog   []Broadcast     `json:"backlog,omitempty" msgpack:"backlog,omitempty"`
	Atoms     []Atom          `json:"atoms,omitempty" msgpack:"atoms,omitempty"`
}

// Validate проверяет, что конверт содержит полезную нагрузку своего типа
func (m *Message) Validate() error {
	switch m.Type {
	case MessageHello:
		if m.Hello == nil || m.Hello.ClientID == "" {
			return malformed("hello without client id")
		}
	case MessageSubmit:
		if m.Submit == nil {
			return malformed("submit without payload")
		}
		if m.Submit.ClientID == "" {
			return malformed("submit without client id")
		}
		if err := m.Submit.Op.Validate(); err != nil {
			return err
		}
	case MessageAck:
		if m.Ack == nil {
			return malformed("ack without payload")
		}
	case MessageBroadcast:
		if m.Broadcast == nil {
			return malformed("broadcast without payload")
		}
		if err := m.Broadcast.Op.Validate(); err != nil {
			return err
		}
	case MessageBacklog:
		for i := range m.Backlog {
			if err := m.Backlog[i].Op.Validate(); err != nil {
				return err
			}
		}
	case MessageAtoms, MessageState:
		for i := range m.Atoms {
			if err := m.Atoms[i].Validate(); err != nil {
				return err
			}
		}
	case MessageError:
	default:
		return malformed("unknown message type %q", m.Type)
	}
	return nil
}

// FromVersioned конвертирует принятую операцию в wire-формат рассылки
func FromVersioned(entry models.VersionedOperation) Broadcast {
	op := FromOperation(entry.Op)
	v := entry.Version
	op.Version = &v
	return Broadcast{
		ClientID: entry.ClientID,
		Op:       op,
		Version:  entry.Version,
	}
}

// ToVersioned валидирует рассылку и конвертирует ее в модель
func (b *Broadcast) ToVersioned() (models.VersionedOperation, error) {
	op, err := b.Op.ToModel()
	if err != nil {
		return models.VersionedOperation{}, err
	}
	if b.Version == 0 {
		return models.VersionedOperation{}, malformed("broadcast version must be positive")
	}
	return models.VersionedOperation{
		ClientID: b.ClientID,
		Op:       op,
		Version:  b.Version,
	}, nil
}

// FromHistory конвертирует историю в wire-формат
func FromHistory(entries []models.VersionedOperation) []Broadcast {
	result := make([]Broadcast, 0, len(entries))
	for _, entry := range entries {
		result = append(result, FromVersioned(entry))
	}
	return result
}

// ToHistory валидирует и конвертирует историю из wire-формата
func ToHistory(wire []Broadcast) ([]models.VersionedOperation, error) {
	result := make([]models.VersionedOperation, 0, len(wire))
	for i := range wire {
		entry, err := wire[i].ToVersioned()
		if err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, nil
}
