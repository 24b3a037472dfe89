package crdt

import (
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/iudanet/gophtext/internal/models"
)

// Replica локальная копия документа в режиме CRDT.
// Порядок атомов задается только их ключами, поэтому слияние
// коммутативно, ассоциативно и идемпотентно и не требует координатора.
// Мьютекс защищает лишь собственное состояние реплики.
type Replica struct {
	clock  *Clock
	index  *AtomSet
	logger *slog.Logger
	atoms  []*models.CharAtom // все атомы, включая надгробия, в полном порядке
	site   uint64
	mu     sync.RWMutex
}

// NewReplica создает пустую реплику с идентификатором replicaID
func NewReplica(replicaID string, logger *slog.Logger) *Replica {
	return &Replica{
		clock:  NewClockWithReplicaID(replicaID),
		index:  NewAtomSet(),
		logger: logger,
		site:   SiteHash(replicaID),
	}
}

// RestoreReplica восстанавливает реплику из сохраненных атомов и счетчика.
// Счетчик не может оказаться меньше счетчиков собственных атомов.
func RestoreReplica(replicaID string, counter uint64, atoms []*models.CharAtom, logger *slog.Logger) *Replica {
	r := NewReplica(replicaID, logger)
	for _, atom := range atoms {
		r.mergeLocked(atom.Clone())
		if atom.ID.ReplicaID == replicaID && atom.ID.Counter > counter {
			counter = atom.ID.Counter
		}
	}
	r.clock.Set(max(counter, r.clock.Counter()))
	return r
}

// ID возвращает идентификатор реплики
func (r *Replica) ID() string {
	return r.clock.ReplicaID()
}

// Counter возвращает последний выданный счетчик
func (r *Replica) Counter() uint64 {
	return r.clock.Counter()
}

// Insert вставляет символ ch так, чтобы он оказался на видимой позиции index.
// Ключ синтезируется между видимым атомом index-1 (или началом документа)
// и атомом, следующим за ним в полном порядке (или концом документа).
// Возвращает копию нового атома для рассылки другим репликам.
func (r *Replica) Insert(index int, ch rune) (*models.CharAtom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	slot := 0 // позиция в r.atoms, куда встанет новый атом
	if index < 0 {
		return nil, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	if index > 0 {
		left := r.visibleSlot(index - 1)
		if left < 0 {
			return nil, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
		}
		slot = left + 1
	}

	var leftKey, rightKey models.SortKey
	if slot > 0 {
		leftKey = r.atoms[slot-1].SortKey
	}
	if slot < len(r.atoms) {
		rightKey = r.atoms[slot].SortKey
	}

	counter := r.clock.Tick()
	key, err := Between(leftKey, rightKey, r.site, counter)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate sort key: %w", err)
	}

	atom := &models.CharAtom{
		ID:      models.AtomID{ReplicaID: r.clock.ReplicaID(), Counter: counter},
		SortKey: key,
		Value:   ch,
	}
	r.atoms = slices.Insert(r.atoms, slot, atom)
	r.index.Add(atom)

	return atom.Clone(), nil
}

// Delete помечает надгробием видимый атом на позиции index.
// Атом остается в списке: иначе поздние вставки рядом с ним
// разрешались бы на разных репликах по-разному.
func (r *Replica) Delete(index int) (*models.CharAtom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	slot := r.visibleSlot(index)
	if slot < 0 {
		return nil, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}

	atom := r.atoms[slot]
	r.index.Tombstone(atom.ID)

	return atom.Clone(), nil
}

// MergeRemote применяет атом другой реплики. Повторная доставка известного
// атома ничего не меняет, кроме перехода в надгробие. Неизвестный атом
// вставляется на позицию, заданную его ключом (двоичный поиск).
// Возвращает true, если состояние реплики изменилось.
func (r *Replica) MergeRemote(atom *models.CharAtom) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.mergeLocked(atom.Clone())
}

// MergeAll применяет набор атомов и возвращает количество изменений
func (r *Replica) MergeAll(atoms []*models.CharAtom) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	changed := 0
	for _, atom := range atoms {
		if r.mergeLocked(atom.Clone()) {
			changed++
		}
	}
	return changed
}

// mergeLocked вызывается под r.mu. atom принадлежит реплике после вызова.
func (r *Replica) mergeLocked(atom *models.CharAtom) bool {
	if atom.ID.ReplicaID == "" || atom.ID.Counter == 0 {
		r.logger.Warn("Skipping atom without identity", "atom_id", atom.ID.String())
		return false
	}

	if r.index.Contains(atom.ID) {
		if atom.Deleted {
			return r.index.Tombstone(atom.ID)
		}
		return false
	}

	if err := atom.ValidateKey(); err != nil {
		r.logger.Warn("Skipping atom with invalid sort key", "atom_id", atom.ID.String(), "error", err)
		return false
	}

	slot := sort.Search(len(r.atoms), func(i int) bool {
		return r.atoms[i].Compare(atom) >= 0
	})

	// Совпадение ключа с чужим атомом не оставило бы места для вставки между ними
	if owner, taken := r.keyOwner(slot, atom.SortKey); taken {
		r.logger.Warn("Skipping atom with duplicate sort key",
			"atom_id", atom.ID.String(),
			"owner_id", owner.String(),
			"sort_key", fmt.Sprint(atom.SortKey),
		)
		return false
	}
	r.atoms = slices.Insert(r.atoms, slot, atom)
	r.index.Add(atom)

	if atom.ID.ReplicaID == r.clock.ReplicaID() {
		r.clock.Observe(atom.ID.Counter)
	}
	return true
}

// keyOwner ищет соседей позиции slot с тем же ключом. Атомы упорядочены
// по ключу, поэтому дубликат может стоять только рядом.
func (r *Replica) keyOwner(slot int, key models.SortKey) (models.AtomID, bool) {
	for _, i := range []int{slot - 1, slot} {
		if i >= 0 && i < len(r.atoms) && r.atoms[i].SortKey.Compare(key) == 0 {
			return r.atoms[i].ID, true
		}
	}
	return models.AtomID{}, false
}

// visibleSlot возвращает позицию в r.atoms видимого атома с индексом index или -1
func (r *Replica) visibleSlot(index int) int {
	if index < 0 {
		return -1
	}
	seen := 0
	for i, atom := range r.atoms {
		if atom.Deleted {
			continue
		}
		if seen == index {
			return i
		}
		seen++
	}
	return -1
}

// Text возвращает видимый текст: атомы без надгробий в полном порядке
func (r *Replica) Text() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var b strings.Builder
	for _, atom := range r.atoms {
		if !atom.Deleted {
			b.WriteRune(atom.Value)
		}
	}
	return b.String()
}

// Len возвращает количество видимых символов
func (r *Replica) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.index.Size()
}

// Atoms возвращает копии всех атомов, включая надгробия, в полном порядке
func (r *Replica) Atoms() []*models.CharAtom {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.index.All()
}

// Get возвращает копию атома по идентификатору
func (r *Replica) Get(id models.AtomID) (*models.CharAtom, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.index.Get(id)
}

// Stats возвращает количество видимых атомов и надгробий
func (r *Replica) Stats() (visible, tombstones int) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	visible = r.index.Size()
	return visible, r.index.TotalSize() - visible
}

// Project строит видимый текст из произвольного набора атомов
// без создания реплики. Дубликаты ID схлопываются, надгробие побеждает.
func Project(atoms []*models.CharAtom) string {
	set := NewAtomSet()
	for _, atom := range atoms {
		if !set.Add(atom.Clone()) && atom.Deleted {
			set.Tombstone(atom.ID)
		}
	}

	var b strings.Builder
	for _, atom := range set.All() {
		if !atom.Deleted {
			b.WriteRune(atom.Value)
		}
	}
	return b.String()
}
