package models

import (
	"cmp"
	"fmt"
	"slices"
)

// AtomID постоянная глобально уникальная идентичность символа в CRDT.
// Назначается один раз при вставке и никогда не переиспользуется.
type AtomID struct {
	ReplicaID string `json:"replica_id"` // ReplicaID реплика, создавшая символ
	Counter   uint64 `json:"counter"`    // Counter локальный счетчик реплики (начиная с 1)
}

func (id AtomID) String() string {
	return fmt.Sprintf("%s:%d", id.ReplicaID, id.Counter)
}

// Compare сравнивает идентификаторы: сначала ReplicaID, затем Counter
func (id AtomID) Compare(other AtomID) int {
	if c := cmp.Compare(id.ReplicaID, other.ReplicaID); c != 0 {
		return c
	}
	return cmp.Compare(id.Counter, other.Counter)
}

// MaxSortKeyLen предел длины ключа: глубина синтеза плюс суффикс [site, counter]
const MaxSortKeyLen = 1026

// SortKey путь произвольной глубины для дробной индексации.
// Сравнивается лексикографически, собственный префикс меньше продолжения.
type SortKey []uint64

// Compare возвращает -1, 0 или 1
func (k SortKey) Compare(other SortKey) int {
	return slices.Compare(k, other)
}

// Clone создает копию ключа
func (k SortKey) Clone() SortKey {
	if k == nil {
		return nil
	}
	return slices.Clone(k)
}

// CharAtom представляет одну логическую позицию символа, видимую или удаленную.
// Атомы никогда физически не удаляются: удаление лишь выставляет Deleted.
type CharAtom struct {
	ID      AtomID  `json:"id"`       // ID постоянная идентичность атома
	SortKey SortKey `json:"sort_key"` // SortKey ключ полного порядка атомов
	Value   rune    `json:"value"`    // Value символ (не имеет смысла для надгробия, пришедшего по сети)
	Deleted bool    `json:"deleted"`  // Deleted флаг надгробия (tombstone)
}

// Compare задает полный порядок атомов: (SortKey, ReplicaID, Counter)
func (a *CharAtom) Compare(other *CharAtom) int {
	if c := a.SortKey.Compare(other.SortKey); c != 0 {
		return c
	}
	return a.ID.Compare(other.ID)
}

// ValidateKey проверяет форму ключа атома. Ключ оканчивается на
// [site, counter], где counter совпадает с ID.Counter и больше нуля:
// только при этом условии перед ключом и после него остается место.
func (a *CharAtom) ValidateKey() error {
	n := len(a.SortKey)
	switch {
	case n < 3:
		return fmt.Errorf("%w: %v is shorter than 3", ErrInvalidSortKey, a.SortKey)
	case n > MaxSortKeyLen:
		return fmt.Errorf("%w: length %d exceeds %d", ErrInvalidSortKey, n, MaxSortKeyLen)
	case a.SortKey[n-1] == 0:
		return fmt.Errorf("%w: %v ends with zero counter", ErrInvalidSortKey, a.SortKey)
	case a.SortKey[n-1] != a.ID.Counter:
		return fmt.Errorf("%w: %v does not end with counter %d", ErrInvalidSortKey, a.SortKey, a.ID.Counter)
	}
	return nil
}

// Visible сообщает, что атом не удален
func (a *CharAtom) Visible() bool {
	return !a.Deleted
}

// Clone создает глубокую копию атома
func (a *CharAtom) Clone() *CharAtom {
	return &CharAtom{
		ID:      a.ID,
		SortKey: a.SortKey.Clone(),
		Value:   a.Value,
		Deleted: a.Deleted,
	}
}
