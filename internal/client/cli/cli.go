// Package cli команды клиента: интерактивное редактирование документа
// в режимах OT и CRDT, проверка сходимости и локальные документы.
package cli

import (
	"log/slog"

	clientapi "github.com/iudanet/gophtext/internal/client/api"
	"github.com/iudanet/gophtext/internal/client/iocli"
	"github.com/iudanet/gophtext/internal/client/session"
	"github.com/iudanet/gophtext/internal/client/storage"
)

type Cli struct {
	io       iocli.IO
	api      *clientapi.Client
	dialer   session.Dialer
	atoms    storage.AtomStorage
	meta     storage.MetadataStorage
	logger   *slog.Logger
	clientID string
}

// New создает набор команд клиента. atoms и meta хранят CRDT реплики,
// clientID идентифицирует клиента в OT сессиях.
func New(io iocli.IO, apiClient *clientapi.Client, atoms storage.AtomStorage, meta storage.MetadataStorage, clientID string, logger *slog.Logger) *Cli {
	return &Cli{
		io:       io,
		api:      apiClient,
		dialer:   session.NewDialer(apiClient),
		atoms:    atoms,
		meta:     meta,
		logger:   logger,
		clientID: clientID,
	}
}
