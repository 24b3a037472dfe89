package crdt

import (
	"slices"
	"sync"

	"github.com/iudanet/gophtext/internal/models"
)

// AtomSet индекс атомов по их постоянной идентичности.
// Атом добавляется один раз и больше не удаляется; удаление только
// выставляет надгробие, и надгробие необратимо (монотонно).
type AtomSet struct {
	elements map[models.AtomID]*models.CharAtom
	mu       sync.RWMutex
}

// NewAtomSet создает пустой индекс
func NewAtomSet() *AtomSet {
	return &AtomSet{
		elements: make(map[models.AtomID]*models.CharAtom),
	}
}

// Add добавляет атом, если атома с таким ID еще нет.
// Set владеет переданным указателем: Replica разделяет его со своим упорядоченным списком.
// Возвращает true, если атом был добавлен.
func (s *AtomSet) Add(atom *models.CharAtom) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.elements[atom.ID]; exists {
		return false
	}
	s.elements[atom.ID] = atom
	return true
}

// Tombstone помечает атом удаленным.
// Возвращает true, только если атом существовал и был видимым.
func (s *AtomSet) Tombstone(id models.AtomID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	atom, exists := s.elements[id]
	if !exists || atom.Deleted {
		return false
	}
	atom.Deleted = true
	return true
}

// Get возвращает копию атома по ID, включая надгробия
func (s *AtomSet) Get(id models.AtomID) (*models.CharAtom, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	atom, exists := s.elements[id]
	if !exists {
		return nil, false
	}
	return atom.Clone(), true
}

// Contains сообщает, что атом с таким ID известен (видимый или удаленный)
func (s *AtomSet) Contains(id models.AtomID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.elements[id]
	return exists
}

// All возвращает копии всех атомов, включая надгробия, в полном порядке.
// Используется для anti-entropy обмена с другими репликами.
func (s *AtomSet) All() []*models.CharAtom {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.CharAtom, 0, len(s.elements))
	for _, atom := range s.elements {
		result = append(result, atom.Clone())
	}
	slices.SortFunc(result, func(a, b *models.CharAtom) int {
		return a.Compare(b)
	})
	return result
}

// Size возвращает количество видимых атомов
func (s *AtomSet) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, atom := range s.elements {
		if !atom.Deleted {
			count++
		}
	}
	return count
}

// TotalSize возвращает количество атомов, включая надгробия
func (s *AtomSet) TotalSize() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.elements)
}
