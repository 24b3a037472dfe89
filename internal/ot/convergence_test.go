package ot

import (
	"context"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/gophtext/internal/models"
)

type submission struct {
	op      models.Operation
	version uint64
}

// simClient клиент с очередью исходящих операций, которую тест
// доставляет секвенсору в произвольные моменты
type simClient struct {
	client *Client
	sub    *Subscription
	outbox []submission
}

func newSimClient(t *testing.T, seq *Sequencer, id string) *simClient {
	t.Helper()

	sc := &simClient{}
	sender := &SenderMock{
		SendFunc: func(clientVersion uint64, op models.Operation) error {
			sc.outbox = append(sc.outbox, submission{op: op, version: clientVersion})
			return nil
		},
	}
	sc.client = NewClient(id, "", 0, sender, setupTestLogger())

	sub, backlog, err := seq.Subscribe(id, 0)
	require.NoError(t, err)
	require.Empty(t, backlog)
	sc.sub = sub
	return sc
}

// submitOne доставляет одну операцию клиента секвенсору
func (sc *simClient) submitOne(t *testing.T, seq *Sequencer) bool {
	if len(sc.outbox) == 0 {
		return false
	}
	next := sc.outbox[0]
	sc.outbox = sc.outbox[1:]

	_, err := seq.Receive(context.Background(), sc.client.ID(), next.version, next.op)
	require.NoError(t, err)
	return true
}

// deliverOne доставляет клиенту одно событие секвенсора
func (sc *simClient) deliverOne(t *testing.T) bool {
	select {
	case ev := <-sc.sub.Events():
		switch ev.Kind {
		case EventAck:
			require.NoError(t, sc.client.OnServerAck(ev.Entry.Version))
		case EventBroadcast:
			require.NoError(t, sc.client.OnRemoteOp(ev.Entry))
		}
		return true
	default:
		return false
	}
}

func (sc *simClient) randomEdit(t *testing.T, rng *rand.Rand) {
	length := len([]rune(sc.client.Text()))
	if length > 0 && rng.IntN(3) == 0 {
		require.NoError(t, sc.client.Delete(rng.IntN(length)))
		return
	}
	ch := rune('a' + rng.IntN(26))
	require.NoError(t, sc.client.Insert(rng.IntN(length+1), ch))
}

// serverTextAt восстанавливает канонический текст на версии v
func serverTextAt(t *testing.T, seq *Sequencer, v uint64) string {
	t.Helper()

	history := seq.History()
	ops := make([]models.Operation, 0, v)
	for _, entry := range history[:v] {
		ops = append(ops, entry.Op)
	}
	text, err := ApplyString("", ops...)
	require.NoError(t, err)
	return text
}

func TestConvergence_RandomInterleavings(t *testing.T) {
	const (
		clients = 4
		steps   = 600
	)

	for seed := uint64(1); seed <= 12; seed++ {
		t.Run(fmt.Sprintf("seed_%d", seed), func(t *testing.T) {
			rng := rand.New(rand.NewPCG(seed, seed*7919))
			seq := NewSequencer("doc", setupTestLogger(), WithSubscriberBuffer(steps*clients))
			defer seq.Close()

			sims := make([]*simClient, clients)
			for i := range sims {
				sims[i] = newSimClient(t, seq, fmt.Sprintf("client-%d", i))
			}

			for step := 0; step < steps; step++ {
				sc := sims[rng.IntN(clients)]
				switch rng.IntN(3) {
				case 0:
					sc.randomEdit(t, rng)
				case 1:
					sc.submitOne(t, seq)
				case 2:
					sc.deliverOne(t)
				}

				if step%50 == 0 {
					require.NoError(t, sc.client.Consistent(serverTextAt(t, seq, sc.client.Version())))
				}
			}

			// Доставляем все оставшиеся сообщения
			for progress := true; progress; {
				progress = false
				for _, sc := range sims {
					for sc.submitOne(t, seq) {
						progress = true
					}
					for sc.deliverOne(t) {
						progress = true
					}
				}
			}

			expected, version := seq.Snapshot()
			assert.Equal(t, serverTextAt(t, seq, version), expected)
			for _, sc := range sims {
				assert.Equal(t, expected, sc.client.Text(), "client %s diverged", sc.client.ID())
				assert.Equal(t, version, sc.client.Version())
				_, pending := sc.client.Pending()
				assert.False(t, pending)
			}
		})
	}
}
