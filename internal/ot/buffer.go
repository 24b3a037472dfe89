package ot

import (
	"fmt"

	"github.com/iudanet/gophtext/internal/models"
)

// Apply применяет операцию к копии документа и возвращает новый документ.
// Для удаления также возвращается удаленный символ (нужен для Invert).
// No-op возвращает документ без изменений.
func Apply(doc []rune, op models.Operation) ([]rune, rune, error) {
	if op.IsNoop() {
		return doc, 0, nil
	}

	switch op.Type {
	case models.OpInsert:
		if op.Position > len(doc) {
			return nil, 0, fmt.Errorf("%w: insert at %d, length %d", ErrInvalidPosition, op.Position, len(doc))
		}
		result := make([]rune, 0, len(doc)+1)
		result = append(result, doc[:op.Position]...)
		result = append(result, op.Value)
		result = append(result, doc[op.Position:]...)
		return result, 0, nil

	case models.OpDelete:
		if op.Position >= len(doc) {
			return nil, 0, fmt.Errorf("%w: delete at %d, length %d", ErrInvalidPosition, op.Position, len(doc))
		}
		removed := doc[op.Position]
		result := make([]rune, 0, len(doc)-1)
		result = append(result, doc[:op.Position]...)
		result = append(result, doc[op.Position+1:]...)
		return result, removed, nil
	}

	return nil, 0, fmt.Errorf("%w: %s", models.ErrUnknownOpType, op.Type)
}

// ApplyString применяет последовательность операций к строке
func ApplyString(text string, ops ...models.Operation) (string, error) {
	doc := []rune(text)
	for i, op := range ops {
		var err error
		doc, _, err = Apply(doc, op)
		if err != nil {
			return "", fmt.Errorf("failed to apply operation %d: %w", i, err)
		}
	}
	return string(doc), nil
}

// Invert возвращает операцию, отменяющую op.
// Для удаления нужен удаленный символ, для вставки removed игнорируется.
func Invert(op models.Operation, removed rune) models.Operation {
	if op.IsNoop() {
		return op
	}
	if op.IsInsert() {
		return models.Operation{Type: models.OpDelete, Position: op.Position, Originator: op.Originator}
	}
	return models.Operation{Type: models.OpInsert, Position: op.Position, Value: removed, Originator: op.Originator}
}
