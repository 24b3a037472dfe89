package crdt

import (
	"sync"

	"github.com/google/uuid"
)

// Clock счетчик реплики в стиле часов Лампорта.
// Tick выдает значения для идентификаторов новых атомов, Observe
// подтягивает счетчик к значениям, увиденным у других реплик.
type Clock struct {
	replicaID string     // идентификатор реплики-владельца
	counter   uint64     // последнее выданное значение
	mu        sync.Mutex // мьютекс для потокобезопасности
}

// NewClock создает счетчик для новой реплики со случайным идентификатором (UUID)
func NewClock() *Clock {
	return &Clock{
		replicaID: uuid.New().String(),
	}
}

// NewClockWithReplicaID создает счетчик с заданным идентификатором реплики.
// Используется при восстановлении реплики из хранилища и в тестах.
func NewClockWithReplicaID(replicaID string) *Clock {
	return &Clock{
		replicaID: replicaID,
	}
}

// Tick увеличивает счетчик и возвращает новое значение.
// Первое значение равно 1: нулевой счетчик атомов не выдается.
func (c *Clock) Tick() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.counter++
	return c.counter
}

// Observe учитывает счетчик удаленного атома: counter = max(local, remote).
// Следующий Tick вернет значение больше всех увиденных.
func (c *Clock) Observe(remote uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if remote > c.counter {
		c.counter = remote
	}
}

// Counter возвращает текущее значение без изменения
func (c *Clock) Counter() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.counter
}

// ReplicaID возвращает идентификатор реплики
func (c *Clock) ReplicaID() string {
	return c.replicaID
}

// Set восстанавливает значение счетчика (например, после перезапуска)
func (c *Clock) Set(counter uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.counter = counter
}
