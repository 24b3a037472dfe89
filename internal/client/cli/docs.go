package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/gophtext/internal/client/storage"
	"github.com/iudanet/gophtext/internal/crdt"
)

// RunDocs выводит CRDT документы, сохраненные локально
func (c *Cli) RunDocs(ctx context.Context) error {
	docs, err := c.atoms.ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		c.io.Println("No local documents.")
		return nil
	}

	c.io.Printf("Found %d document(s):\n", len(docs))
	for _, docID := range docs {
		atoms, err := c.atoms.LoadAtoms(ctx, docID)
		if err != nil {
			return fmt.Errorf("failed to load document %s: %w", docID, err)
		}

		lastSync := "never"
		state, err := c.meta.GetReplicaState(ctx, docID)
		switch {
		case err == nil && state.LastSync > 0:
			lastSync = time.Unix(state.LastSync, 0).Format(time.RFC3339)
		case err != nil && !errors.Is(err, storage.ErrReplicaNotFound):
			return fmt.Errorf("failed to load replica state of %s: %w", docID, err)
		}

		c.io.Printf("  %-20s %6d chars  synced: %s\n", docID, len([]rune(crdt.Project(atoms))), lastSync)
	}
	return nil
}

// RunForget удаляет локальную реплику документа. Серверная копия не меняется.
func (c *Cli) RunForget(ctx context.Context, docID string) error {
	if err := c.atoms.ClearDocument(ctx, docID); err != nil {
		return fmt.Errorf("failed to forget document: %w", err)
	}
	c.io.Printf("Local replica of %s removed\n", docID)
	return nil
}
