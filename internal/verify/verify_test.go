package verify

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/gophtext/internal/crdt"
	"github.com/iudanet/gophtext/internal/models"
	"github.com/iudanet/gophtext/internal/ot"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type sent struct {
	op      models.Operation
	version uint64
}

// outbox копит отправленные клиентом операции до явной доставки
type outbox struct {
	queue []sent
}

func (o *outbox) Send(clientVersion uint64, op models.Operation) error {
	o.queue = append(o.queue, sent{op: op, version: clientVersion})
	return nil
}

type peer struct {
	client *ot.Client
	out    *outbox
}

func newPeer(id, text string, version uint64) *peer {
	out := &outbox{}
	return &peer{client: ot.NewClient(id, text, version, out, setupTestLogger()), out: out}
}

// pump доставляет все операции из очередей секвенсору и рассылает результат
func pump(t *testing.T, seq *ot.Sequencer, peers ...*peer) {
	t.Helper()

	for progress := true; progress; {
		progress = false
		for _, p := range peers {
			if len(p.out.queue) == 0 {
				continue
			}
			next := p.out.queue[0]
			p.out.queue = p.out.queue[1:]
			progress = true

			entry, err := seq.Receive(context.Background(), p.client.ID(), next.version, next.op)
			require.NoError(t, err)

			for _, other := range peers {
				if other.client.ID() == entry.ClientID {
					require.NoError(t, other.client.OnServerAck(entry.Version))
				} else {
					require.NoError(t, other.client.OnRemoteOp(entry))
				}
			}
		}
	}
}

func seed(t *testing.T, text string) *ot.Sequencer {
	t.Helper()

	seq := ot.NewSequencer("doc", setupTestLogger())
	for i, ch := range []rune(text) {
		op, err := models.NewInsert(i, ch, "seed")
		require.NoError(t, err)
		_, err = seq.Receive(context.Background(), "seed", uint64(i), op)
		require.NoError(t, err)
	}
	return seq
}

func TestDigest(t *testing.T) {
	assert.Len(t, Digest(""), 64)
	assert.Equal(t, Digest("hello"), Digest("hello"))
	assert.NotEqual(t, Digest("hello"), Digest("hellO"))
}

func TestTexts(t *testing.T) {
	tests := []struct {
		name      string
		texts     map[string]string
		wantErr   error
		converged bool
	}{
		{name: "single replica", texts: map[string]string{"a": "x"}, converged: true},
		{name: "equal texts", texts: map[string]string{"a": "abc", "b": "abc", "c": "abc"}, converged: true},
		{name: "empty texts", texts: map[string]string{"a": "", "b": ""}, converged: true},
		{name: "one differs", texts: map[string]string{"a": "abc", "b": "abc", "c": "abd"}, wantErr: ErrDiverged},
		{name: "nothing to compare", texts: map[string]string{}, wantErr: ErrNoReplicas},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := Texts(tt.texts)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.False(t, report.Converged)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.converged, report.Converged)
			assert.Len(t, report.Digests, len(tt.texts))
			for _, text := range tt.texts {
				assert.Equal(t, text, report.Text)
			}
		})
	}
}

func TestTexts_DivergedReportNamesReplicas(t *testing.T) {
	report, err := Texts(map[string]string{"alice": "ATS", "bob": "AST"})
	require.ErrorIs(t, err, ErrDiverged)

	assert.Contains(t, err.Error(), "alice")
	assert.Contains(t, err.Error(), "bob")
	assert.Equal(t, Digest("ATS"), report.Digests["alice"])
	assert.Equal(t, Digest("AST"), report.Digests["bob"])
}

func TestReplicas(t *testing.T) {
	a := crdt.NewReplica("A", setupTestLogger())
	b := crdt.NewReplica("B", setupTestLogger())

	var fromA, fromB []*models.CharAtom
	for i, ch := range "HI" {
		atom, err := a.Insert(i, ch)
		require.NoError(t, err)
		fromA = append(fromA, atom)
	}
	for i, ch := range "OK" {
		atom, err := b.Insert(i, ch)
		require.NoError(t, err)
		fromB = append(fromB, atom)
	}

	_, err := Replicas(a, b)
	assert.ErrorIs(t, err, ErrDiverged)

	a.MergeAll(fromB)
	b.MergeAll(fromA)

	report, err := Replicas(a, b)
	require.NoError(t, err)
	assert.True(t, report.Converged)
	assert.Equal(t, a.Text(), report.Text)
}

func TestSequencer(t *testing.T) {
	seq := seed(t, "CAT")
	alice := newPeer("alice", "CAT", 3)
	bob := newPeer("bob", "CAT", 3)

	require.NoError(t, alice.client.Insert(3, 'S'))
	require.NoError(t, bob.client.Delete(0))

	_, err := Sequencer(seq, alice.client, bob.client)
	assert.ErrorIs(t, err, ErrNotQuiescent, "Operations still in flight")

	pump(t, seq, alice, bob)

	report, err := Sequencer(seq, alice.client, bob.client)
	require.NoError(t, err)
	assert.Equal(t, "ATS", report.Text)
	assert.Len(t, report.Digests, 3)
	assert.Contains(t, report.Digests, SequencerName)
}

func TestSequencer_StaleClient(t *testing.T) {
	seq := seed(t, "ab")
	stale := newPeer("carol", "ab", 1)

	_, err := Sequencer(seq, stale.client)
	assert.ErrorIs(t, err, ErrNotQuiescent)
}

func TestHistory(t *testing.T) {
	seq := seed(t, "hello")
	op, err := models.NewDelete(0, "bob")
	require.NoError(t, err)
	_, err = seq.Receive(context.Background(), "bob", 5, op)
	require.NoError(t, err)

	report, err := History(seq.History(), "", seq.Text())
	require.NoError(t, err)
	assert.Equal(t, "ello", report.Text)

	_, err = History(seq.History(), "", "hello")
	assert.ErrorIs(t, err, ErrDiverged)

	history := seq.History()
	_, err = History(history[1:], "", seq.Text())
	assert.ErrorIs(t, err, ErrBrokenHistory)

	broken := seq.History()
	broken[0].Op.Position = 10
	_, err = History(broken, "", seq.Text())
	assert.ErrorIs(t, err, ErrBrokenHistory)
}
