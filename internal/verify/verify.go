// Package verify проверяет сходимость реплик документа.
// Сравнение идет по дайджестам видимого текста (BLAKE2b-256).
package verify

import (
	"encoding/hex"
	"fmt"
	"maps"
	"slices"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/iudanet/gophtext/internal/crdt"
	"github.com/iudanet/gophtext/internal/models"
	"github.com/iudanet/gophtext/internal/ot"
)

// SequencerName имя канонического буфера в отчете
const SequencerName = "sequencer"

// Report результат проверки
type Report struct {
	Digests   map[string]string // Digests дайджест текста каждой реплики
	Text      string            // Text общий текст (только при сходимости)
	Converged bool              // Converged все дайджесты совпали
}

// Digest возвращает hex BLAKE2b-256 от текста
func Digest(text string) string {
	sum := blake2b.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Texts сравнивает именованные тексты.
// При расхождении возвращает отчет и ошибку, оборачивающую ErrDiverged.
func Texts(texts map[string]string) (Report, error) {
	if len(texts) == 0 {
		return Report{}, ErrNoReplicas
	}

	report := Report{
		Digests: make(map[string]string, len(texts)),
	}
	groups := make(map[string][]string)
	for name, text := range texts {
		digest := Digest(text)
		report.Digests[name] = digest
		groups[digest] = append(groups[digest], name)
	}

	if len(groups) == 1 {
		report.Converged = true
		for _, text := range texts {
			report.Text = text
			break
		}
		return report, nil
	}

	parts := make([]string, 0, len(groups))
	for _, digest := range slices.Sorted(maps.Keys(groups)) {
		names := groups[digest]
		slices.Sort(names)
		parts = append(parts, fmt.Sprintf("%s=%s", digest[:12], strings.Join(names, ",")))
	}
	return report, fmt.Errorf("%w: %d distinct states: %s", ErrDiverged, len(groups), strings.Join(parts, "; "))
}

// Replicas сравнивает видимый текст CRDT реплик
func Replicas(replicas ...*crdt.Replica) (Report, error) {
	texts := make(map[string]string, len(replicas))
	for _, r := range replicas {
		texts[r.ID()] = r.Text()
	}
	return Texts(texts)
}

// Sequencer сравнивает канонический буфер с зеркалами клиентов.
// Клиенты должны быть в покое: без ожидающих операций и на версии сервера.
func Sequencer(seq *ot.Sequencer, clients ...*ot.Client) (Report, error) {
	text, version := seq.Snapshot()
	texts := map[string]string{SequencerName: text}

	for _, c := range clients {
		if _, pending := c.Pending(); pending {
			return Report{}, fmt.Errorf("%w: client %s has unacknowledged operations", ErrNotQuiescent, c.ID())
		}
		if c.Version() != version {
			return Report{}, fmt.Errorf("%w: client %s at version %d, sequencer at %d",
				ErrNotQuiescent, c.ID(), c.Version(), version)
		}
		texts[c.ID()] = c.Text()
	}
	return Texts(texts)
}

// History воспроизводит историю поверх initial и сравнивает результат с text.
// Версии истории должны идти подряд начиная с 1.
func History(history []models.VersionedOperation, initial, text string) (Report, error) {
	doc := []rune(initial)
	for i, entry := range history {
		if entry.Version != uint64(i+1) {
			return Report{}, fmt.Errorf("%w: entry %d has version %d", ErrBrokenHistory, i, entry.Version)
		}
		next, _, err := ot.Apply(doc, entry.Op)
		if err != nil {
			return Report{}, fmt.Errorf("%w: version %d: %w", ErrBrokenHistory, entry.Version, err)
		}
		doc = next
	}

	return Texts(map[string]string{
		"replay":   string(doc),
		"document": text,
	})
}
