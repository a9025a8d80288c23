package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/abhisek/studyhall/internal/exam"
	"github.com/abhisek/studyhall/internal/logging"
	"github.com/abhisek/studyhall/internal/store"
)

// Journal persists every exam event and records completed attempts.
type Journal struct {
	events   store.ExamEventRepo
	attempts store.AttemptRepo
	logger   logging.Logger

	wg sync.WaitGroup
}

// NewJournal creates a journal writing to the given repos.
func NewJournal(events store.ExamEventRepo, attempts store.AttemptRepo, logger logging.Logger) *Journal {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Journal{events: events, attempts: attempts, logger: logger.With("component", "journal")}
}

// Attach subscribes to bus and consumes in the background until the stream
// closes. Subscription happens before Attach returns, so no event published
// afterwards is missed.
func (j *Journal) Attach(ctx context.Context, bus *Bus) error {
	msgs, err := bus.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribe journal: %w", err)
	}
	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		j.consume(ctx, msgs)
	}()
	return nil
}

// Wait blocks until the consumer goroutine has exited.
func (j *Journal) Wait() { j.wg.Wait() }

func (j *Journal) consume(ctx context.Context, msgs <-chan *message.Message) {
	for msg := range msgs {
		if err := j.Handle(context.WithoutCancel(ctx), msg); err != nil {
			j.logger.LogError(err, "journal write failed", "message_id", msg.UUID)
		}
		// A failed write is not redelivered; the journal is best effort.
		msg.Ack()
	}
}

// Handle stores one message.
func (j *Journal) Handle(ctx context.Context, msg *message.Message) error {
	e, err := DecodeMessage(msg)
	if err != nil {
		return err
	}

	if _, err := j.events.Append(ctx, store.ExamEventRecord{
		SessionID: e.SessionID,
		Type:      string(e.Type),
		Username:  e.Username,
		Payload:   json.RawMessage(msg.Payload),
		CreatedAt: e.At,
	}); err != nil {
		return err
	}

	if e.Type == exam.EventCompleted && e.Results != nil && j.attempts != nil {
		if err := j.attempts.Save(ctx, AttemptFromEvent(e)); err != nil {
			return err
		}
	}
	return nil
}

// AttemptFromEvent builds the attempts row for an exam.completed event.
func AttemptFromEvent(e exam.Event) store.Attempt {
	a := store.Attempt{
		SessionID:    e.SessionID,
		Username:     e.Username,
		Kind:         string(e.Kind),
		Title:        e.Title,
		Class:        e.Class,
		SubjectCodes: e.SubjectCodes,
		ExamID:       e.ExamID,
		CompletedAt:  e.At,
	}
	if r := e.Results; r != nil {
		a.Total = r.Total
		a.Correct = r.Correct
		a.Percentage = r.Percentage
		a.Passed = r.Passed
		a.TimeTaken = r.TimeTaken
		a.ElapsedSeconds = r.ElapsedSeconds
	}
	return a
}
