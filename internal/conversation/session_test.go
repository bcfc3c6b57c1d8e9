package conversation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xaenox/hr-hub/internal/classifier"
	"github.com/xaenox/hr-hub/internal/locale"
	"github.com/xaenox/hr-hub/internal/models"
	"github.com/xaenox/hr-hub/internal/storage"
)

func testContext(t *testing.T, store storage.Storage) classifier.Context {
	t.Helper()
	snap, err := storage.LoadSnapshot(context.Background(), store, storage.SampleEmployeeID)
	require.NoError(t, err)
	return classifier.Context{Snapshot: snap, Formatter: locale.Parse("en-US")}
}

func wait(t *testing.T, reply <-chan models.Turn) models.Turn {
	t.Helper()
	select {
	case turn, ok := <-reply:
		require.True(t, ok, "reply channel closed without a turn")
		return turn
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the assistant turn")
	}
	return models.Turn{}
}

func TestSession_Submit(t *testing.T) {
	store := storage.NewMemoryStorage(storage.SampleData())
	s := NewSession("s1", nil, classifier.NewRuleClassifier(), store, 10*time.Millisecond, zap.NewNop())

	user, reply, err := s.Submit(context.Background(), "How many vacation days do I have?", testContext(t, store))
	require.NoError(t, err)
	assistant := wait(t, reply)

	turns := s.Turns()
	require.Len(t, turns, 2)
	assert.EqualValues(t, user, turns[0])
	assert.EqualValues(t, models.RoleUser, turns[0].Role)
	assert.EqualValues(t, "How many vacation days do I have?", turns[0].Text)
	assert.EqualValues(t, models.RoleAssistant, turns[1].Role)
	assert.EqualValues(t, models.CategoryQuery, turns[1].Category)
	assert.Contains(t, turns[1].Response, "28 vacation days")
	assert.EqualValues(t, turns[0].Text, turns[1].Text)
	assert.EqualValues(t, assistant.ID, turns[1].ID)
	assert.NotEqual(t, turns[0].ID, turns[1].ID)
	assert.False(t, s.Busy())

	stored, err := store.GetTurns(context.Background(), "s1", 0)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestSession_SubmitEmpty(t *testing.T) {
	s := NewSession("s1", nil, classifier.NewRuleClassifier(), nil, 0, zap.NewNop())

	for _, text := range []string{"", "   ", "\n\t"} {
		_, reply, err := s.Submit(context.Background(), text, classifier.Context{})
		assert.ErrorIs(t, err, ErrEmptyMessage)
		assert.Nil(t, reply)
		assert.False(t, s.Busy())
	}
	assert.Empty(t, s.Turns())
}

func TestSession_SubmitWhileBusy(t *testing.T) {
	s := NewSession("s1", nil, classifier.NewRuleClassifier(), nil, 100*time.Millisecond, zap.NewNop())

	_, reply, err := s.Submit(context.Background(), "remote work?", classifier.Context{})
	require.NoError(t, err)
	assert.True(t, s.Busy())

	_, second, err := s.Submit(context.Background(), "expense policy", classifier.Context{})
	assert.ErrorIs(t, err, ErrBusy)
	assert.Nil(t, second)
	assert.Len(t, s.Turns(), 1)

	wait(t, reply)
	turns := s.Turns()
	require.Len(t, turns, 2)
	assert.EqualValues(t, models.CategoryPolicy, turns[1].Category)
	assert.Contains(t, turns[1].Response, "work from home")
	assert.False(t, s.Busy())

	_, reply, err = s.Submit(context.Background(), "expense policy", classifier.Context{})
	require.NoError(t, err)
	wait(t, reply)
	assert.Len(t, s.Turns(), 4)
}

func TestSession_ReplyOutlivesRequestContext(t *testing.T) {
	s := NewSession("s1", nil, classifier.NewRuleClassifier(), nil, 20*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	_, reply, err := s.Submit(ctx, "hello", classifier.Context{})
	require.NoError(t, err)
	cancel()

	turn := wait(t, reply)
	assert.Contains(t, turn.Response, `"hello"`)
}

func TestManager_Session(t *testing.T) {
	store := storage.NewMemoryStorage(storage.SampleData())
	m := NewManager(classifier.NewRuleClassifier(), store, 0, 50, 0, 0, zap.NewNop())

	s, err := m.Session(context.Background(), "chat-1")
	require.NoError(t, err)
	_, reply, err := s.Submit(context.Background(), "wfh", classifier.Context{})
	require.NoError(t, err)
	wait(t, reply)

	same, err := m.Session(context.Background(), "chat-1")
	require.NoError(t, err)
	assert.Same(t, s, same)

	// a fresh manager rehydrates from storage
	other := NewManager(classifier.NewRuleClassifier(), store, 0, 50, 0, 0, zap.NewNop())
	restored, err := other.Session(context.Background(), "chat-1")
	require.NoError(t, err)
	assert.Len(t, restored.Turns(), 2)
}

func TestSession_ReleasesBusyWhenUpstreamHangs(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	store := storage.NewMemoryStorage(storage.SampleData())
	clf := classifier.NewGPTClassifier("test-key", srv.URL+"/v1", "gpt-4o", 500, 0.2,
		50*time.Millisecond, classifier.NewRuleClassifier(), zap.NewNop())
	s := NewSession("s1", nil, clf, store, 0, zap.NewNop())
	cc := testContext(t, store)

	_, reply, err := s.Submit(context.Background(), "How many vacation days do I have?", cc)
	require.NoError(t, err)
	turn := wait(t, reply)
	assert.Contains(t, turn.Response, "28 vacation days")
	assert.False(t, s.Busy())

	_, reply, err = s.Submit(context.Background(), "wfh", cc)
	require.NoError(t, err)
	wait(t, reply)
}

type gatedTurns struct {
	storage.TurnStorage
	slowID  string
	entered chan struct{}
	gate    chan struct{}
}

func (g *gatedTurns) GetTurns(ctx context.Context, sessionID string, limit int) ([]models.Turn, error) {
	if sessionID == g.slowID {
		close(g.entered)
		<-g.gate
	}
	return g.TurnStorage.GetTurns(ctx, sessionID, limit)
}

func TestManager_SlowHistoryDoesNotBlockOtherSessions(t *testing.T) {
	store := &gatedTurns{
		TurnStorage: storage.NewMemoryStorage(storage.SampleData()),
		slowID:      "slow",
		entered:     make(chan struct{}),
		gate:        make(chan struct{}),
	}
	m := NewManager(classifier.NewRuleClassifier(), store, 0, 50, 0, 0, zap.NewNop())

	slowDone := make(chan error, 1)
	go func() {
		_, err := m.Session(context.Background(), "slow")
		slowDone <- err
	}()
	<-store.entered

	fastDone := make(chan error, 1)
	go func() {
		_, err := m.Session(context.Background(), "fast")
		fastDone <- err
	}()
	select {
	case err := <-fastDone:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("session lookup blocked behind a slow history load")
	}

	close(store.gate)
	require.NoError(t, <-slowDone)
	assert.Equal(t, 2, m.Len())
}

func TestManager_EvictsLeastRecentlyUsed(t *testing.T) {
	m := NewManager(classifier.NewRuleClassifier(), storage.NewMemoryStorage(storage.SampleData()), 0, 50, 2, time.Hour, zap.NewNop())
	clock := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }
	ctx := context.Background()

	a, err := m.Session(ctx, "a")
	require.NoError(t, err)
	clock = clock.Add(time.Second)
	_, err = m.Session(ctx, "b")
	require.NoError(t, err)
	clock = clock.Add(time.Second)
	again, err := m.Session(ctx, "a")
	require.NoError(t, err)
	assert.Same(t, a, again)

	clock = clock.Add(time.Second)
	_, err = m.Session(ctx, "c")
	require.NoError(t, err)

	assert.Equal(t, 2, m.Len())
	assert.Contains(t, m.sessions, "a")
	assert.NotContains(t, m.sessions, "b")
	assert.Contains(t, m.sessions, "c")
}

func TestManager_EvictsIdleButKeepsBusy(t *testing.T) {
	m := NewManager(classifier.NewRuleClassifier(), storage.NewMemoryStorage(storage.SampleData()), 200*time.Millisecond, 50, 10, time.Minute, zap.NewNop())
	clock := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }
	ctx := context.Background()

	_, err := m.Session(ctx, "idle")
	require.NoError(t, err)
	busy, err := m.Session(ctx, "busy")
	require.NoError(t, err)
	_, reply, err := busy.Submit(ctx, "wfh", classifier.Context{})
	require.NoError(t, err)
	require.True(t, busy.Busy())

	clock = clock.Add(2 * time.Minute)
	_, err = m.Session(ctx, "fresh")
	require.NoError(t, err)

	assert.NotContains(t, m.sessions, "idle")
	assert.Contains(t, m.sessions, "busy")
	assert.Contains(t, m.sessions, "fresh")
	wait(t, reply)
}
