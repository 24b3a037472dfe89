package models

import (
	"fmt"
	"strconv"
)

// OpType тип операции редактирования
type OpType uint8

const (
	// OpInsert вставка одного символа
	OpInsert OpType = iota + 1
	// OpDelete удаление одного символа
	OpDelete
)

// NoopPosition позиция-маркер операции, которую transform превратил в no-op.
// Такая операция записывается в историю, но к буферу не применяется.
const NoopPosition = -1

// String возвращает wire-имя типа операции
func (t OpType) String() string {
	switch t {
	case OpInsert:
		return "insert"
	case OpDelete:
		return "delete"
	default:
		return "unknown(" + strconv.Itoa(int(t)) + ")"
	}
}

// ParseOpType разбирает wire-имя типа операции
func ParseOpType(s string) (OpType, error) {
	switch s {
	case "insert":
		return OpInsert, nil
	case "delete":
		return OpDelete, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownOpType, s)
	}
}

// Operation представляет одну правку документа: Insert или Delete.
// Значение неизменяемо: transform возвращает новую операцию, а не правит старую.
type Operation struct {
	Originator string `json:"originator"` // Originator идентификатор клиента/реплики-автора
	Position   int    `json:"position"`   // Position смещение в видимой последовательности символов
	Value      rune   `json:"value"`      // Value вставляемый символ (только для Insert)
	Type       OpType `json:"type"`       // Type тип операции
}

// NewInsert создает операцию вставки символа value в позицию pos.
// Границы документа не проверяются, это ответственность вызывающего.
func NewInsert(pos int, value rune, originator string) (Operation, error) {
	if pos < 0 {
		return Operation{}, fmt.Errorf("%w: %d", ErrNegativePosition, pos)
	}
	return Operation{
		Type:       OpInsert,
		Position:   pos,
		Value:      value,
		Originator: originator,
	}, nil
}

// NewDelete создает операцию удаления символа в позиции pos.
func NewDelete(pos int, originator string) (Operation, error) {
	if pos < 0 {
		return Operation{}, fmt.Errorf("%w: %d", ErrNegativePosition, pos)
	}
	return Operation{
		Type:       OpDelete,
		Position:   pos,
		Originator: originator,
	}, nil
}

// IsNoop сообщает, что операция была поглощена transform и не должна применяться
func (o Operation) IsNoop() bool {
	return o.Position < 0
}

// IsInsert сообщает, что операция является вставкой
func (o Operation) IsInsert() bool {
	return o.Type == OpInsert
}

// IsDelete сообщает, что операция является удалением
func (o Operation) IsDelete() bool {
	return o.Type == OpDelete
}

// WithPosition возвращает копию операции с новой позицией
func (o Operation) WithPosition(pos int) Operation {
	o.Position = pos
	return o
}

// AsNoop возвращает копию операции, помеченную как no-op
func (o Operation) AsNoop() Operation {
	o.Position = NoopPosition
	return o
}

// Equal сравнивает две операции по значению.
// Value у Delete не участвует в сравнении.
func (o Operation) Equal(other Operation) bool {
	if o.Type != other.Type || o.Position != other.Position || o.Originator != other.Originator {
		return false
	}
	if o.Type == OpInsert {
		return o.Value == other.Value
	}
	return true
}

// Validate проверяет структурную корректность операции.
// No-op операции корректны, отрицательная позиция кроме NoopPosition нет.
func (o Operation) Validate() error {
	if o.Type != OpInsert && o.Type != OpDelete {
		return fmt.Errorf("%w: %d", ErrUnknownOpType, o.Type)
	}
	if o.Position < NoopPosition {
		return fmt.Errorf("%w: %d", ErrNegativePosition, o.Position)
	}
	return nil
}

func (o Operation) String() string {
	if o.IsNoop() {
		return fmt.Sprintf("%s(noop by %s)", o.Type, o.Originator)
	}
	if o.Type == OpInsert {
		return fmt.Sprintf("insert(%d, %q by %s)", o.Position, o.Value, o.Originator)
	}
	return fmt.Sprintf("delete(%d by %s)", o.Position, o.Originator)
}

// VersionedOperation операция, принятая секвенсором в каноническую историю.
// Создается один раз в момент принятия и больше не изменяется.
type VersionedOperation struct {
	ClientID string    `json:"client_id"` // ClientID клиент, отправивший операцию
	Op       Operation `json:"op"`        // Op операция после transform
	Version  uint64    `json:"version"`   // Version номер версии, присвоенный секвенсором (начиная с 1)
}
