// Package editor дает единый интерфейс редактирования поверх двух стратегий
// синхронизации: OT с центральным секвенсором и CRDT без координатора.
package editor

import (
	"fmt"

	"github.com/iudanet/gophtext/internal/crdt"
	"github.com/iudanet/gophtext/internal/models"
	"github.com/iudanet/gophtext/internal/ot"
)

// Mode стратегия синхронизации
type Mode string

const (
	ModeOT   Mode = "ot"
	ModeCRDT Mode = "crdt"
)

// ParseMode разбирает имя стратегии
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeOT, ModeCRDT:
		return Mode(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Engine локальный документ, правки которого синхронизируются с другими участниками
type Engine interface {
	Insert(pos int, ch rune) error
	Delete(pos int) error
	Text() string
	Mode() Mode
}

//go:generate moq -out publisher_mock.go . AtomPublisher

// AtomPublisher рассылает атомы, созданные локальными правками
type AtomPublisher interface {
	Publish(atom *models.CharAtom) error
}

type otEngine struct {
	client *ot.Client
}

// NewOT оборачивает клиентский буфер OT
func NewOT(client *ot.Client) Engine {
	return &otEngine{client: client}
}

func (e *otEngine) Insert(pos int, ch rune) error {
	return e.client.Insert(pos, ch)
}

func (e *otEngine) Delete(pos int) error {
	return e.client.Delete(pos)
}

func (e *otEngine) Text() string {
	return e.client.Text()
}

func (e *otEngine) Mode() Mode {
	return ModeOT
}

type crdtEngine struct {
	replica   *crdt.Replica
	publisher AtomPublisher
}

// NewCRDT оборачивает реплику. Каждый созданный или помеченный
// удаленным атом передается publisher.
func NewCRDT(replica *crdt.Replica, publisher AtomPublisher) Engine {
	return &crdtEngine{replica: replica, publisher: publisher}
}

func (e *crdtEngine) Insert(pos int, ch rune) error {
	atom, err := e.replica.Insert(pos, ch)
	if err != nil {
		return err
	}
	return e.publish(atom)
}

func (e *crdtEngine) Delete(pos int) error {
	atom, err := e.replica.Delete(pos)
	if err != nil {
		return err
	}
	return e.publish(atom)
}

// publish ошибка рассылки не откатывает правку: атом уйдет при следующем обмене состоянием
func (e *crdtEngine) publish(atom *models.CharAtom) error {
	if e.publisher == nil {
		return nil
	}
	if err := e.publisher.Publish(atom); err != nil {
		return fmt.Errorf("failed to publish atom %s: %w", atom.ID, err)
	}
	return nil
}

func (e *crdtEngine) Text() string {
	return e.replica.Text()
}

func (e *crdtEngine) Mode() Mode {
	return ModeCRDT
}
