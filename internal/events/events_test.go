package events

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/studyhall/internal/exam"
	"github.com/abhisek/studyhall/internal/logging"
	"github.com/abhisek/studyhall/internal/store"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "studyhall.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func completedEvent(session string) exam.Event {
	return exam.Event{
		Type:         exam.EventCompleted,
		SessionID:    session,
		Username:     "ada",
		Kind:         exam.KindJAMB,
		Class:        "SS3",
		Title:        "Mathematics, Physics SS3",
		At:           t0.Add(5 * time.Minute),
		SubjectCodes: "MATPHY",
		ExamID:       "MATPHY-X1Y2",
		Results: &exam.Results{
			Total: 10, Correct: 8, Percentage: 80, Passed: true,
			ElapsedSeconds: 300, TimeTaken: "05:00",
		},
	}
}

func TestMessageRoundTrip(t *testing.T) {
	e := completedEvent("s-1")
	msg, err := NewMessage(e)
	require.NoError(t, err)

	assert.NotEmpty(t, msg.UUID)
	assert.Equal(t, "exam.completed", msg.Metadata.Get(MetaEventType))
	assert.Equal(t, "s-1", msg.Metadata.Get(MetaSessionID))
	assert.Equal(t, "ada", msg.Metadata.Get(MetaUsername))

	got, err := DecodeMessage(msg)
	require.NoError(t, err)
	assert.Equal(t, e.Results, got.Results)
	assert.True(t, e.At.Equal(got.At))
}

func TestBus_PublishWithoutSubscribers(t *testing.T) {
	bus, err := NewBus(Config{}, logging.Nop())
	require.NoError(t, err)
	defer bus.Close()

	assert.Equal(t, DefaultTopic, bus.Topic())
	assert.NoError(t, bus.Publish(context.Background(), exam.Event{Type: exam.EventStarted, SessionID: "s"}))
}

func TestBus_DeliversInOrderAndMirrors(t *testing.T) {
	mirror := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 16}, watermill.NopLogger{})
	mirrored, err := mirror.Subscribe(context.Background(), "analytics")
	require.NoError(t, err)

	bus, err := NewBus(Config{Mirror: mirror, KafkaTopic: "analytics"}, logging.Nop())
	require.NoError(t, err)
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	msgs, err := bus.Subscribe(ctx)
	require.NoError(t, err)

	types := []exam.EventType{exam.EventStarted, exam.EventLoaded, exam.EventChecked, exam.EventCompleted}
	go func() {
		for _, typ := range types {
			_ = bus.Publish(context.Background(), exam.Event{Type: typ, SessionID: "s-1"})
		}
	}()

	for _, want := range types {
		select {
		case msg := <-msgs:
			assert.Equal(t, string(want), msg.Metadata.Get(MetaEventType))
			msg.Ack()
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %s", want)
		}
	}

	for range types {
		select {
		case msg := <-mirrored:
			var e exam.Event
			require.NoError(t, json.Unmarshal(msg.Payload, &e))
			assert.Equal(t, "s-1", e.SessionID)
			msg.Ack()
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for mirrored message")
		}
	}
}

func TestJournal_PersistsEventsAndAttempt(t *testing.T) {
	st := openTestStore(t)
	bus, err := NewBus(Config{}, logging.Nop())
	require.NoError(t, err)

	journal := NewJournal(st.ExamEvents(), st.Attempts(), logging.Nop())
	require.NoError(t, journal.Attach(context.Background(), bus))

	ctx := context.Background()
	require.NoError(t, bus.Publish(ctx, exam.Event{Type: exam.EventStarted, SessionID: "s-1", Username: "ada", At: t0}))
	require.NoError(t, bus.Publish(ctx, exam.Event{Type: exam.EventLoaded, SessionID: "s-1", Username: "ada", At: t0, QuestionCount: 10}))
	require.NoError(t, bus.Publish(ctx, completedEvent("s-1")))
	// Redelivery of the same completion must not duplicate the attempt.
	require.NoError(t, bus.Publish(ctx, completedEvent("s-1")))

	require.NoError(t, bus.Close())
	journal.Wait()

	recs, err := st.ExamEvents().Query(ctx, store.QueryOpts{SessionID: "s-1"})
	require.NoError(t, err)
	require.Len(t, recs, 4)
	assert.Equal(t, "exam.started", recs[0].Type)
	assert.Equal(t, "exam.loaded", recs[1].Type)
	assert.Equal(t, t0.UnixMilli(), recs[0].CreatedAt.UnixMilli())

	var loaded exam.Event
	require.NoError(t, json.Unmarshal(recs[1].Payload, &loaded))
	assert.Equal(t, 10, loaded.QuestionCount)

	attempts, err := st.Attempts().List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	a := attempts[0]
	assert.Equal(t, "s-1", a.SessionID)
	assert.Equal(t, "jamb", a.Kind)
	assert.Equal(t, "MATPHY", a.SubjectCodes)
	assert.Equal(t, "MATPHY-X1Y2", a.ExamID)
	assert.Equal(t, 8, a.Correct)
	assert.Equal(t, 80.0, a.Percentage)
	assert.True(t, a.Passed)
	assert.Equal(t, "05:00", a.TimeTaken)
}

func TestJournal_HandleRejectsGarbage(t *testing.T) {
	st := openTestStore(t)
	journal := NewJournal(st.ExamEvents(), st.Attempts(), nil)

	msg, err := NewMessage(exam.Event{Type: exam.EventStarted})
	require.NoError(t, err)
	msg.Payload = []byte("not json")

	assert.Error(t, journal.Handle(context.Background(), msg))
}

func TestAttemptFromEvent_NoResults(t *testing.T) {
	a := AttemptFromEvent(exam.Event{Type: exam.EventCompleted, SessionID: "s", Kind: exam.KindPractice})
	assert.Equal(t, "practice", a.Kind)
	assert.Zero(t, a.Total)
}

func TestJournal_HandleStoresMessagePayload(t *testing.T) {
	st := openTestStore(t)
	journal := NewJournal(st.ExamEvents(), st.Attempts(), logging.Nop())

	msg, err := NewMessage(exam.Event{Type: exam.EventChecked, SessionID: "s-2", Username: "ada", At: t0})
	require.NoError(t, err)
	require.NoError(t, journal.Handle(context.Background(), msg))

	recs, err := st.ExamEvents().Query(context.Background(), store.QueryOpts{SessionID: "s-2"})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.JSONEq(t, string(msg.Payload), string(recs[0].Payload))
	assert.Equal(t, "ada", recs[0].Username)
}
