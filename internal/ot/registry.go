package ot

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Registry держит по одному секвенсору на документ.
// Документы независимы: каждый секвенсор имеет собственную точку сериализации.
type Registry struct {
	store  HistoryStore
	logger *slog.Logger
	docs   map[string]*Sequencer
	opts   []Option
	loads  singleflight.Group // загрузка документа не держит r.mu
	mu     sync.Mutex
	closed bool
}

// NewRegistry создает реестр секвенсоров. store может быть nil.
func NewRegistry(store HistoryStore, logger *slog.Logger, opts ...Option) *Registry {
	if store != nil {
		opts = append(opts, WithHistoryStore(store))
	}
	return &Registry{
		store:  store,
		logger: logger,
		docs:   make(map[string]*Sequencer),
		opts:   opts,
	}
}

// Get возвращает секвенсор документа, создавая его при первом обращении.
// Если подключено хранилище, история документа воспроизводится из него.
// Конкурентные обращения к одному документу ждут одну загрузку,
// остальные документы в это время доступны.
func (r *Registry) Get(ctx context.Context, docID string) (*Sequencer, error) {
	if seq, ok, err := r.lookup(docID); ok || err != nil {
		return seq, err
	}

	v, err, _ := r.loads.Do(docID, func() (any, error) {
		if seq, ok, err := r.lookup(docID); ok || err != nil {
			return seq, err
		}

		seq, err := r.load(ctx, docID)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		defer r.mu.Unlock()
		if r.closed {
			seq.Close()
			return nil, ErrSequencerClosed
		}
		r.docs[docID] = seq
		return seq, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Sequencer), nil
}

func (r *Registry) lookup(docID string) (*Sequencer, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, false, ErrSequencerClosed
	}
	seq, ok := r.docs[docID]
	return seq, ok, nil
}

// load читает и воспроизводит историю без блокировки реестра
func (r *Registry) load(ctx context.Context, docID string) (*Sequencer, error) {
	if r.store == nil {
		r.logger.Info("Document created", "doc_id", docID)
		return NewSequencer(docID, r.logger, r.opts...), nil
	}

	history, err := r.store.LoadHistory(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	seq, err := Restore(docID, history, r.logger, r.opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to restore document %s: %w", docID, err)
	}
	r.logger.Info("Document restored", "doc_id", docID, "version", seq.Version())
	return seq, nil
}

// Documents возвращает отсортированный список загруженных документов
func (r *Registry) Documents() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.docs))
	for id := range r.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Close закрывает все секвенсоры. После Close Get возвращает ErrSequencerClosed.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	for id, seq := range r.docs {
		seq.Close()
		delete(r.docs, id)
	}
}
