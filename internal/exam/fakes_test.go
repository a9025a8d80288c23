package exam

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

type fakeSource struct {
	questions []Question
	err       error
	gotQuery  Query
	block     chan struct{}
}

func (f *fakeSource) FetchQuestions(ctx context.Context, q Query) ([]Question, error) {
	f.gotQuery = q
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.questions, nil
}

type fakeSink struct {
	mu         sync.Mutex
	streak     int
	streakErr  error
	narration  map[string][]NarrationBlock
	narrErr    error
	reportErr  error
	reports    []Report
	streakHits int
	narrHits   int
}

func (f *fakeSink) UpdateStreak(ctx context.Context, username string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.streakHits++
	if f.streakErr != nil {
		return 0, f.streakErr
	}
	f.streak++
	return f.streak, nil
}

func (f *fakeSink) FetchNarration(ctx context.Context, id string) ([]NarrationBlock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.narrHits++
	if f.narrErr != nil {
		return nil, f.narrErr
	}
	return f.narration[id], nil
}

func (f *fakeSink) SubmitReport(ctx context.Context, r Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports = append(f.reports, r)
	return f.reportErr
}

func (f *fakeSink) reportCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reports)
}

type fakeExplainer struct {
	blocks []NarrationBlock
	err    error
	calls  int
}

func (f *fakeExplainer) Explain(ctx context.Context, q Question) ([]NarrationBlock, error) {
	f.calls++
	return f.blocks, f.err
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *recordingPublisher) Publish(ctx context.Context, e Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

// manualClock is a settable time source.
type manualClock struct {
	mu sync.Mutex
	t  time.Time
}

func newManualClock() *manualClock {
	return &manualClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

var errOffline = errors.New("offline")

func makeQuestions(n int) []Question {
	qs := make([]Question, n)
	for i := range qs {
		qs[i] = Question{
			ID:      fmt.Sprintf("q%d", i+1),
			Type:    TypeMultipleChoice,
			Content: fmt.Sprintf("Question %d", i+1),
			Options: []string{"A", "B", "C", "D"},
			Answer:  "A",
		}
	}
	return qs
}

var testUser = User{Username: "ada", Class: "JSS2"}

type harness struct {
	sess  *Session
	src   *fakeSource
	sink  *fakeSink
	pub   *recordingPublisher
	clock *manualClock
}

func newHarness(qs []Question, opts ...func(*Config)) *harness {
	h := &harness{
		src:   &fakeSource{questions: qs},
		sink:  &fakeSink{narration: map[string][]NarrationBlock{}},
		pub:   &recordingPublisher{},
		clock: newManualClock(),
	}
	cfg := Config{
		Source:    h.src,
		Sink:      h.sink,
		Publisher: h.pub,
		Now:       h.clock.Now,
		SessionID: "sess-1",
	}
	for _, o := range opts {
		o(&cfg)
	}
	sess, err := New(testUser, Params{Kind: KindPractice, Class: "JSS2"}, cfg)
	if err != nil {
		panic(err)
	}
	h.sess = sess
	return h
}

func (h *harness) load() {
	_ = h.sess.Load(context.Background())
}
