package session

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/gophtext/internal/verify"
	"github.com/iudanet/gophtext/pkg/api"
)

func openOT(t *testing.T, ts *testServer, dialer Dialer, clientID string) *OTSession {
	t.Helper()

	s, err := OpenOT(context.Background(), dialer, ts.client, "doc", clientID, setupTestLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func flush(t *testing.T, s *OTSession) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	require.NoError(t, s.Flush(ctx))
}

func TestOTSession_ConcurrentEditsConverge(t *testing.T) {
	ts := setupTestServer(t)
	dialer := NewDialer(ts.client)

	alice := openOT(t, ts, dialer, "alice")
	bob := openOT(t, ts, dialer, "bob")

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for _, ch := range "hello" {
			assert.NoError(t, alice.Insert(len([]rune(alice.Text())), ch))
		}
	}()
	go func() {
		defer wg.Done()
		for _, ch := range "world" {
			assert.NoError(t, bob.Insert(0, ch))
		}
	}()
	wg.Wait()

	flush(t, alice)
	flush(t, bob)

	seq, err := ts.registry.Get(context.Background(), "doc")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		report, err := verify.Sequencer(seq, alice.Client(), bob.Client())
		return err == nil && report.Converged
	}, waitFor, 10*time.Millisecond)

	assert.Len(t, []rune(alice.Text()), 10)
	assert.Equal(t, uint64(10), seq.Version())
	assert.ElementsMatch(t, []rune("helloworld"), []rune(alice.Text()))
}

func TestOTSession_LateJoinerReceivesDocument(t *testing.T) {
	ts := setupTestServer(t)
	dialer := NewDialer(ts.client)

	alice := openOT(t, ts, dialer, "alice")
	typeAtEnd(t, alice.Insert, alice.Text, "cat")
	flush(t, alice)

	bob := openOT(t, ts, dialer, "bob")
	assert.Equal(t, "cat", bob.Text())
	assert.Equal(t, uint64(3), bob.Version())

	require.NoError(t, bob.Delete(0))
	flush(t, bob)

	require.Eventually(t, func() bool { return alice.Text() == "at" }, waitFor, 10*time.Millisecond)
}

func TestOTSession_ReconnectResendsPending(t *testing.T) {
	ts := setupTestServer(t)
	dialer := &trackingDialer{dialer: NewDialer(ts.client)}

	alice := openOT(t, ts, dialer, "alice")
	typeAtEnd(t, alice.Insert, alice.Text, "ab")
	flush(t, alice)

	dialer.breakLast(t)
	require.NoError(t, alice.Insert(2, 'c'))
	require.NoError(t, alice.Insert(3, 'd'))
	flush(t, alice)

	snapshot, err := ts.ot.Snapshot(context.Background(), "doc")
	require.NoError(t, err)
	assert.Equal(t, "abcd", snapshot.Text)
	assert.Equal(t, uint64(4), snapshot.Version)
	assert.Equal(t, "abcd", alice.Text())
	assert.GreaterOrEqual(t, dialer.dials(), 2)
}

func TestOTSession_QueuesUntilBacklog(t *testing.T) {
	conn := newScriptedConn()
	snapshots := snapshotFunc(func(ctx context.Context, docID string) (*api.Snapshot, error) {
		return &api.Snapshot{Text: "ab", Version: 2}, nil
	})

	s, err := OpenOT(context.Background(), onceDialer(conn), snapshots, "doc", "alice", setupTestLogger())
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	hello := conn.SendCalls()[0].Msg
	require.Equal(t, api.MessageHello, hello.Type)
	assert.Equal(t, uint64(2), hello.Hello.KnownVersion)

	// до backlog соединение не готово: правка остается pending
	require.NoError(t, s.Insert(2, 'c'))
	assert.False(t, s.Connected())
	assert.Empty(t, conn.submits())

	conn.incoming <- &api.Message{Type: api.MessageBacklog}
	require.Eventually(t, func() bool { return len(conn.submits()) == 1 }, waitFor, 5*time.Millisecond)

	submitted := conn.submits()[0]
	assert.Equal(t, "alice", submitted.ClientID)
	assert.Equal(t, uint64(2), submitted.KnownVersion)
	assert.Equal(t, "c", *submitted.Op.Value)

	conn.incoming <- &api.Message{Type: api.MessageAck, Ack: &api.SubmitResponse{Accepted: true, Version: 3}}
	flushCtx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	require.NoError(t, s.Flush(flushCtx))

	assert.Len(t, conn.submits(), 1)
	assert.Equal(t, uint64(3), s.Version())
	assert.Equal(t, "abc", s.Text())
}

func TestOTSession_RejectionResetsToSnapshot(t *testing.T) {
	conn := newScriptedConn()

	var mu sync.Mutex
	current := &api.Snapshot{Text: "ab", Version: 2}
	snapshots := snapshotFunc(func(ctx context.Context, docID string) (*api.Snapshot, error) {
		mu.Lock()
		defer mu.Unlock()
		return current, nil
	})

	s, err := OpenOT(context.Background(), onceDialer(conn), snapshots, "doc", "alice", setupTestLogger())
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	conn.incoming <- &api.Message{Type: api.MessageBacklog}
	require.Eventually(t, s.Connected, waitFor, 5*time.Millisecond)

	require.NoError(t, s.Insert(0, 'x'))
	require.Eventually(t, func() bool { return len(conn.submits()) == 1 }, waitFor, 5*time.Millisecond)

	mu.Lock()
	current = &api.Snapshot{Text: "abc", Version: 3}
	mu.Unlock()

	conn.incoming <- &api.Message{Type: api.MessageError, Error: "invalid position"}
	require.Eventually(t, func() bool { return s.Text() == "abc" }, waitFor, 5*time.Millisecond)

	assert.Equal(t, uint64(3), s.Version())
	_, pending := s.Client().Pending()
	assert.False(t, pending)

	// рассылка, уже учтенная снимком, пропускается
	conn.incoming <- &api.Message{Type: api.MessageBroadcast, Broadcast: &api.Broadcast{
		ClientID: "bob",
		Version:  3,
		Op:       api.Operation{Type: "delete", Position: 0, Originator: "bob"},
	}}
	value := "!"
	conn.incoming <- &api.Message{Type: api.MessageBroadcast, Broadcast: &api.Broadcast{
		ClientID: "bob",
		Version:  4,
		Op:       api.Operation{Type: "insert", Position: 3, Value: &value, Originator: "bob"},
	}}
	require.Eventually(t, func() bool { return s.Text() == "abc!" }, waitFor, 5*time.Millisecond)
	assert.Equal(t, uint64(4), s.Version())
}

func TestOTSession_RejectedHelloKeepsPending(t *testing.T) {
	first, second := newScriptedConn(), newScriptedConn()

	var snapshotCalls atomic.Int32
	snapshots := snapshotFunc(func(ctx context.Context, docID string) (*api.Snapshot, error) {
		snapshotCalls.Add(1)
		return &api.Snapshot{Text: "ab", Version: 2}, nil
	})

	s, err := OpenOT(context.Background(), sequenceDialer(first, second), snapshots, "doc", "alice", setupTestLogger())
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	require.NoError(t, s.Insert(2, 'c'))
	assert.Empty(t, first.submits())

	// старая подписка того же клиента еще жива на сервере
	first.incoming <- &api.Message{Type: api.MessageError, Error: "client is already connected: alice"}
	require.Eventually(t, func() bool { return len(first.CloseCalls()) > 0 }, waitFor, 5*time.Millisecond)
	require.Eventually(t, func() bool { return len(second.SendCalls()) > 0 }, waitFor, 5*time.Millisecond)

	assert.Equal(t, "abc", s.Text())
	_, pending := s.Client().Pending()
	assert.True(t, pending)
	assert.Equal(t, int32(1), snapshotCalls.Load(), "Rejected hello must not reset the client")

	second.incoming <- &api.Message{Type: api.MessageBacklog}
	require.Eventually(t, func() bool { return len(second.submits()) == 1 }, waitFor, 5*time.Millisecond)
	assert.Equal(t, uint64(2), second.submits()[0].KnownVersion)
	assert.Empty(t, first.submits())
}

func TestOpenOT_ServerUnavailable(t *testing.T) {
	ts := setupTestServer(t)
	dialer := &trackingDialer{dialer: NewDialer(ts.client)}
	dialer.setOffline(true)

	_, err := OpenOT(context.Background(), dialer, nil, "doc", "alice", setupTestLogger())
	require.Error(t, err)
	assert.True(t, IsUnavailable(err))
}
