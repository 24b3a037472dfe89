package api

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/iudanet/gophtext/internal/models"
)

// Operation wire-формат операции редактирования (общий для OT и CRDT режимов).
// Version заполняется только в рассылке секвенсора.
type Operation struct {
	Value      *string `json:"value,omitempty" msgpack:"value,omitempty"`     // ровно один символ, только для insert
	Version    *uint64 `json:"version,omitempty" msgpack:"version,omitempty"` // версия, присвоенная секвенсором
	Type       string  `json:"type" msgpack:"type"`                           // "insert" или "delete"
	Originator string  `json:"originator" msgpack:"originator"`               // идентификатор автора
	Position   uint64  `json:"position" msgpack:"position"`                   // смещение в видимом тексте
	Noop       bool    `json:"noop,omitempty" msgpack:"noop,omitempty"`       // операция поглощена transform
}

// Validate проверяет wire-операцию до того, как она попадет в модель
func (o *Operation) Validate() error {
	typ, err := models.ParseOpType(o.Type)
	if err != nil {
		return malformed("operation type: %v", err)
	}
	if o.Originator == "" {
		return malformed("operation originator is empty")
	}
	if o.Position > math.MaxInt32 {
		return malformed("operation position %d is out of range", o.Position)
	}

	switch typ {
	case models.OpInsert:
		if o.Value == nil {
			return malformed("insert without value")
		}
		if _, err := singleRune(*o.Value); err != nil {
			return err
		}
	case models.OpDelete:
		if o.Value != nil {
			return malformed("delete must not carry a value")
		}
	}

	return nil
}

// ToModel валидирует wire-операцию и конвертирует ее в модель
func (o *Operation) ToModel() (models.Operation, error) {
	if err := o.Validate(); err != nil {
		return models.Operation{}, err
	}

	typ, _ := models.ParseOpType(o.Type)
	op := models.Operation{
		Type:       typ,
		Position:   int(o.Position),
		Originator: o.Originator,
	}
	if typ == models.OpInsert {
		op.Value, _ = singleRune(*o.Value)
	}
	if o.Noop {
		op = op.AsNoop()
	}

	return op, nil
}

// FromOperation конвертирует модель в wire-формат
func FromOperation(op models.Operation) Operation {
	wire := Operation{
		Type:       op.Type.String(),
		Originator: op.Originator,
	}
	if op.IsNoop() {
		wire.Noop = true
	} else {
		wire.Position = uint64(op.Position)
	}
	if op.IsInsert() {
		v := string(op.Value)
		wire.Value = &v
	}
	return wire
}

// Atom wire-формат атома CRDT. Value == nil означает надгробие.
type Atom struct {
	Value   *string  `json:"value" msgpack:"value"`
	SiteID  string   `json:"siteId" msgpack:"siteId"`
	SortKey []uint64 `json:"sortKey" msgpack:"sortKey"`
	Counter uint64   `json:"counter" msgpack:"counter"`
}

// Validate проверяет wire-атом
func (a *Atom) Validate() error {
	if a.SiteID == "" {
		return malformed("atom siteId is empty")
	}
	if a.Counter == 0 {
		return malformed("atom counter must be positive")
	}
	if len(a.SortKey) == 0 {
		return malformed("atom sortKey is empty")
	}
	key := models.CharAtom{
		ID:      models.AtomID{ReplicaID: a.SiteID, Counter: a.Counter},
		SortKey: a.SortKey,
	}
	if err := key.ValidateKey(); err != nil {
		return malformed("atom %s: %v", key.ID, err)
	}
	if a.Value != nil {
		if _, err := singleRune(*a.Value); err != nil {
			return err
		}
	}
	return nil
}

// ToModel валидирует wire-атом и конвертирует его в модель
func (a *Atom) ToModel() (*models.CharAtom, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	atom := &models.CharAtom{
		ID:      models.AtomID{ReplicaID: a.SiteID, Counter: a.Counter},
		SortKey: models.SortKey(a.SortKey).Clone(),
		Deleted: a.Value == nil,
	}
	if a.Value != nil {
		atom.Value, _ = singleRune(*a.Value)
	}
	return atom, nil
}

// FromAtom конвертирует атом модели в wire-формат
func FromAtom(atom *models.CharAtom) Atom {
	wire := Atom{
		SiteID:  atom.ID.ReplicaID,
		Counter: atom.ID.Counter,
		SortKey: atom.SortKey.Clone(),
	}
	if !atom.Deleted {
		v := string(atom.Value)
		wire.Value = &v
	}
	return wire
}

// FromAtoms конвертирует набор атомов модели в wire-формат
func FromAtoms(atoms []*models.CharAtom) []Atom {
	result := make([]Atom, 0, len(atoms))
	for _, atom := range atoms {
		result = append(result, FromAtom(atom))
	}
	return result
}

// ToAtoms валидирует и конвертирует набор wire-атомов.
// Одна некорректная запись отклоняет весь набор.
func ToAtoms(wire []Atom) ([]*models.CharAtom, error) {
	result := make([]*models.CharAtom, 0, len(wire))
	for i := range wire {
		atom, err := wire[i].ToModel()
		if err != nil {
			return nil, fmt.Errorf("atom %d: %w", i, err)
		}
		result = append(result, atom)
	}
	return result, nil
}

func singleRune(s string) (rune, error) {
	if !utf8.ValidString(s) {
		return 0, malformed("value is not valid UTF-8")
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, malformed("value must be exactly one character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedPayload, fmt.Sprintf(format, args...))
}
