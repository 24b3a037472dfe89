package cli

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/iudanet/gophtext/internal/crdt"
	"github.com/iudanet/gophtext/internal/editor"
	"github.com/iudanet/gophtext/internal/verify"
	"github.com/iudanet/gophtext/pkg/api"
)

// ErrDigestMismatch сервер прислал дайджест, не совпадающий с его атомами
var ErrDigestMismatch = errors.New("server digest does not match its state")

// RunVerify проверяет сходимость документа в режиме mode
func (c *Cli) RunVerify(ctx context.Context, mode editor.Mode, docID string) error {
	var (
		report verify.Report
		err    error
	)
	switch mode {
	case editor.ModeOT:
		report, err = c.verifyOT(ctx, docID)
	case editor.ModeCRDT:
		report, err = c.verifyCRDT(ctx, docID)
	default:
		return fmt.Errorf("%w: %q", editor.ErrUnknownMode, mode)
	}

	c.printReport(report)
	if err != nil {
		return err
	}
	c.io.Println("Converged")
	return nil
}

// verifyOT воспроизводит историю секвенсора и сравнивает результат с его снимком.
// Записи новее снимка отбрасываются: их могли принять между запросами.
func (c *Cli) verifyOT(ctx context.Context, docID string) (verify.Report, error) {
	snapshot, err := c.api.Snapshot(ctx, docID)
	if err != nil {
		return verify.Report{}, fmt.Errorf("failed to fetch snapshot: %w", err)
	}
	history, err := c.api.History(ctx, docID, 0)
	if err != nil {
		return verify.Report{}, fmt.Errorf("failed to fetch history: %w", err)
	}

	entries, err := api.ToHistory(history.Entries)
	if err != nil {
		return verify.Report{}, fmt.Errorf("failed to decode history: %w", err)
	}
	if uint64(len(entries)) > snapshot.Version {
		entries = entries[:snapshot.Version]
	}

	c.io.Printf("Sequencer version: %d\n", snapshot.Version)
	return verify.History(entries, "", snapshot.Text)
}

// verifyCRDT сравнивает состояние сервера с локальной репликой, если она есть
func (c *Cli) verifyCRDT(ctx context.Context, docID string) (verify.Report, error) {
	state, err := c.api.State(ctx, docID)
	if err != nil {
		return verify.Report{}, fmt.Errorf("failed to fetch state: %w", err)
	}

	atoms, err := api.ToAtoms(state.Atoms)
	if err != nil {
		return verify.Report{}, fmt.Errorf("failed to decode state: %w", err)
	}
	serverText := crdt.Project(atoms)
	if verify.Digest(serverText) != state.Digest {
		return verify.Report{}, fmt.Errorf("%w: document %s", ErrDigestMismatch, docID)
	}

	texts := map[string]string{"server": serverText}
	if c.atoms != nil {
		local, err := c.atoms.LoadAtoms(ctx, docID)
		if err != nil {
			return verify.Report{}, fmt.Errorf("failed to load local replica: %w", err)
		}
		if len(local) > 0 {
			texts["local"] = crdt.Project(local)
		}
	}

	return verify.Texts(texts)
}

func (c *Cli) printReport(report verify.Report) {
	for _, name := range slices.Sorted(maps.Keys(report.Digests)) {
		c.io.Printf("%-10s %s\n", name, report.Digests[name])
	}
}
