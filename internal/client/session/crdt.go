package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	clientapi "github.com/iudanet/gophtext/internal/client/api"
	"github.com/iudanet/gophtext/internal/client/storage"
	"github.com/iudanet/gophtext/internal/crdt"
	"github.com/iudanet/gophtext/internal/editor"
	"github.com/iudanet/gophtext/internal/models"
	"github.com/iudanet/gophtext/pkg/api"
)

// CRDTSession ведет локальную реплику: правки применяются и сохраняются
// сразу, а по сети расходятся, когда есть соединение. После подключения
// сервер присылает полное состояние, а сессия досылает атомы, которых
// у сервера нет (anti-entropy).
type CRDTSession struct {
	link    *link
	atoms   storage.AtomStorage
	meta    storage.MetadataStorage
	replica *crdt.Replica
	engine  editor.Engine
	logger  *slog.Logger
	cancel  context.CancelFunc
	done    chan struct{}
	docID   string
	stateMu sync.Mutex // сохранение часов не должно откатывать счетчик
}

// OpenCRDT открывает CRDT-сессию документа. Реплика восстанавливается
// из хранилища (идентичность, часы, атомы), atoms и meta могут быть nil.
// Недоступный сервер не мешает работе: сессия переподключается в фоне.
func OpenCRDT(ctx context.Context, dialer Dialer, atoms storage.AtomStorage, meta storage.MetadataStorage, docID string, logger *slog.Logger) (*CRDTSession, error) {
	replica, err := restoreReplica(ctx, atoms, meta, docID, logger)
	if err != nil {
		return nil, err
	}

	s := &CRDTSession{
		atoms:   atoms,
		meta:    meta,
		replica: replica,
		logger:  logger.With("doc_id", docID, "replica_id", replica.ID()),
		docID:   docID,
		done:    make(chan struct{}),
	}
	s.engine = editor.NewCRDT(replica, s)
	s.link = &link{
		dialer: dialer,
		logger: logger,
		mode:   clientapi.ModeCRDT,
		docID:  docID,
		hello: func() *api.Message {
			return &api.Message{
				Type:  api.MessageHello,
				Hello: &api.Hello{ClientID: replica.ID()},
			}
		},
	}

	if err := s.link.connect(ctx, true); err != nil {
		s.logger.Warn("Working offline", "error", err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go func() {
		defer close(s.done)
		s.link.run(runCtx, true, s.handle)
	}()

	visible, tombstones := replica.Stats()
	s.logger.Info("CRDT session opened", "visible", visible, "tombstones", tombstones)
	return s, nil
}

func restoreReplica(ctx context.Context, atoms storage.AtomStorage, meta storage.MetadataStorage, docID string, logger *slog.Logger) (*crdt.Replica, error) {
	state := storage.ReplicaState{ReplicaID: uuid.NewString()}
	if meta != nil {
		stored, err := meta.GetReplicaState(ctx, docID)
		switch {
		case err == nil:
			state = stored
		case errors.Is(err, storage.ErrReplicaNotFound):
			if err := meta.SaveReplicaState(ctx, docID, state); err != nil {
				return nil, fmt.Errorf("failed to save replica state: %w", err)
			}
		default:
			return nil, fmt.Errorf("failed to load replica state: %w", err)
		}
	}

	var loaded []*models.CharAtom
	if atoms != nil {
		var err error
		loaded, err = atoms.LoadAtoms(ctx, docID)
		if err != nil {
			return nil, fmt.Errorf("failed to load atoms: %w", err)
		}
	}

	return crdt.RestoreReplica(state.ReplicaID, state.Counter, loaded, logger), nil
}

// Publish сохраняет локальный атом и рассылает его (реализует editor.AtomPublisher).
// Ошибкой считается только сбой сохранения: без соединения атом
// уйдет при следующем подключении.
func (s *CRDTSession) Publish(atom *models.CharAtom) error {
	ctx := context.Background()
	if err := s.persist(ctx, []*models.CharAtom{atom}); err != nil {
		return err
	}
	if err := s.saveState(ctx, 0); err != nil {
		return err
	}

	if _, err := s.link.send(&api.Message{
		Type:  api.MessageAtoms,
		Atoms: []api.Atom{api.FromAtom(atom)},
	}); err != nil {
		s.logger.Debug("Atom queued until reconnect", "atom", atom.ID.String(), "error", err)
	}
	return nil
}

// handle обрабатывает сообщения хаба. Вызывается только из цикла чтения.
func (s *CRDTSession) handle(ctx context.Context, msg *api.Message) {
	switch msg.Type {
	case api.MessageState:
		remote, err := api.ToAtoms(msg.Atoms)
		if err != nil {
			s.logger.Warn("Ignored malformed state", "error", err)
			return
		}
		changed := s.merge(ctx, remote)
		if err := s.saveState(ctx, time.Now().Unix()); err != nil {
			s.logger.Warn("Failed to save replica state", "error", err)
		}
		missing := s.missingOn(remote)
		if len(missing) > 0 {
			if _, err := s.link.send(&api.Message{Type: api.MessageAtoms, Atoms: api.FromAtoms(missing)}); err != nil {
				s.logger.Warn("Failed to send missing atoms", "count", len(missing), "error", err)
			}
		}
		s.logger.Info("Synchronized with server", "merged", changed, "sent", len(missing))

	case api.MessageAtoms:
		remote, err := api.ToAtoms(msg.Atoms)
		if err != nil {
			s.logger.Warn("Ignored malformed atoms", "error", err)
			return
		}
		s.merge(ctx, remote)

	case api.MessageError:
		s.logger.Warn("Server reported error", "reason", msg.Error)

	default:
		s.logger.Debug("Ignored message", "type", msg.Type)
	}
}

// merge сливает удаленные атомы и сохраняет изменившиеся
func (s *CRDTSession) merge(ctx context.Context, remote []*models.CharAtom) int {
	changed := make([]*models.CharAtom, 0, len(remote))
	for _, atom := range remote {
		if s.replica.MergeRemote(atom) {
			changed = append(changed, atom)
		}
	}
	if err := s.persist(ctx, changed); err != nil {
		s.logger.Warn("Failed to persist merged atoms", "count", len(changed), "error", err)
	}
	return len(changed)
}

// missingOn возвращает атомы реплики, которых нет в состоянии сервера,
// и надгробия, о которых сервер не знает
func (s *CRDTSession) missingOn(remote []*models.CharAtom) []*models.CharAtom {
	known := make(map[models.AtomID]bool, len(remote))
	for _, atom := range remote {
		known[atom.ID] = atom.Deleted
	}

	var missing []*models.CharAtom
	for _, atom := range s.replica.Atoms() {
		deleted, ok := known[atom.ID]
		if !ok || (atom.Deleted && !deleted) {
			missing = append(missing, atom)
		}
	}
	return missing
}

func (s *CRDTSession) persist(ctx context.Context, atoms []*models.CharAtom) error {
	if s.atoms == nil || len(atoms) == 0 {
		return nil
	}
	if err := s.atoms.SaveAtoms(ctx, s.docID, atoms); err != nil {
		return fmt.Errorf("failed to persist atoms: %w", err)
	}
	return nil
}

// saveState сохраняет часы реплики; lastSync == 0 оставляет прежнее значение
func (s *CRDTSession) saveState(ctx context.Context, lastSync int64) error {
	if s.meta == nil {
		return nil
	}

	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	state := storage.ReplicaState{ReplicaID: s.replica.ID(), Counter: s.replica.Counter(), LastSync: lastSync}
	if lastSync == 0 {
		if prev, err := s.meta.GetReplicaState(ctx, s.docID); err == nil {
			state.LastSync = prev.LastSync
		}
	}
	if err := s.meta.SaveReplicaState(ctx, s.docID, state); err != nil {
		return fmt.Errorf("failed to save replica state: %w", err)
	}
	return nil
}

// Engine возвращает движок редактирования поверх сессии
func (s *CRDTSession) Engine() editor.Engine {
	return s.engine
}

// Replica возвращает локальную реплику
func (s *CRDTSession) Replica() *crdt.Replica {
	return s.replica
}

// Insert вставляет символ ch в позицию pos
func (s *CRDTSession) Insert(pos int, ch rune) error {
	return s.engine.Insert(pos, ch)
}

// Delete удаляет символ в позиции pos
func (s *CRDTSession) Delete(pos int) error {
	return s.engine.Delete(pos)
}

// Text возвращает видимый текст реплики
func (s *CRDTSession) Text() string {
	return s.replica.Text()
}

// Connected сообщает, есть ли соединение с хабом
func (s *CRDTSession) Connected() bool {
	return s.link.connected()
}

// Close закрывает сессию. Состояние реплики уже сохранено.
func (s *CRDTSession) Close() error {
	s.cancel()
	s.link.close()
	<-s.done
	s.logger.Info("CRDT session closed")
	return nil
}

var _ editor.AtomPublisher = (*CRDTSession)(nil)
