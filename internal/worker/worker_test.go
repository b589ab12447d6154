package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-social-graph/internal/application"
	"github.com/oksasatya/go-social-graph/internal/domain/entity"
	"github.com/oksasatya/go-social-graph/internal/infrastructure/memory"
	"github.com/oksasatya/go-social-graph/pkg/mailer"
)

type sentMail struct{ to, subject string }

type fakeSender struct {
	sent []sentMail
	err  error
}

func (f *fakeSender) Send(_ context.Context, to, subject, _, _ string) error {
	f.sent = append(f.sent, sentMail{to, subject})
	return f.err
}

type fakeQueue struct{ jobs []any }

func (f *fakeQueue) PublishJSON(_ context.Context, body any) error {
	f.jobs = append(f.jobs, body)
	return nil
}

type ackRecorder struct {
	mu      sync.Mutex
	acks    int
	nacks   int
	requeue []bool
}

func (a *ackRecorder) Ack(_ uint64, _ bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acks++
	return nil
}

func (a *ackRecorder) Nack(_ uint64, _ bool, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nacks++
	a.requeue = append(a.requeue, requeue)
	return nil
}

func (a *ackRecorder) Reject(tag uint64, requeue bool) error { return a.Nack(tag, false, requeue) }

func newWorker(t *testing.T) (*Worker, *memory.NotificationRepository, *fakeQueue, *fakeSender) {
	t.Helper()
	users := memory.NewUserRepository()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for _, id := range []string{"alice", "bob"} {
		require.NoError(t, users.Save(context.Background(), entity.NewUser(id, id+"@example.com", "", id, now)))
	}
	notes := memory.NewNotificationRepository()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	queue := &fakeQueue{}
	sender := &fakeSender{}
	w := &Worker{
		Notifications:   application.NewNotificationService(notes, users, logger),
		Mail:            sender,
		EmailQueue:      queue,
		Logger:          logger,
		ProfileBaseURL:  "https://app.test/u",
		MailSendEnabled: true,
	}
	return w, notes, queue, sender
}

func eventBody(t *testing.T, ev entity.SocialEvent) []byte {
	t.Helper()
	b, err := json.Marshal(ev)
	require.NoError(t, err)
	return b
}

func TestHandleFollowEventNotifiesAndQueuesEmail(t *testing.T) {
	w, notes, queue, _ := newWorker(t)
	ctx := context.Background()

	err := w.HandleEvent(ctx, eventBody(t, entity.SocialEvent{Type: entity.EventFollow, ActorID: "alice", TargetID: "bob"}))
	require.NoError(t, err)

	list, err := notes.ListByUser(ctx, "bob", false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "alice", list[0].ActorID)

	require.Len(t, queue.jobs, 1)
	job, ok := queue.jobs[0].(*mailer.EmailJob)
	require.True(t, ok)
	assert.Equal(t, "bob@example.com", job.To)
	assert.Equal(t, "https://app.test/u/alice", job.Data["ProfileURL"])
}

func TestHandleEventWithMailDisabled(t *testing.T) {
	w, notes, queue, _ := newWorker(t)
	w.MailSendEnabled = false

	require.NoError(t, w.HandleEvent(context.Background(), eventBody(t, entity.SocialEvent{Type: entity.EventFollow, ActorID: "alice", TargetID: "bob"})))
	list, _ := notes.ListByUser(context.Background(), "bob", false)
	assert.Len(t, list, 1)
	assert.Empty(t, queue.jobs)
}

func TestHandleUnfollowEventIsAcknowledgedQuietly(t *testing.T) {
	w, notes, queue, _ := newWorker(t)
	require.NoError(t, w.HandleEvent(context.Background(), eventBody(t, entity.SocialEvent{Type: entity.EventUnfollow, ActorID: "alice", TargetID: "bob"})))
	list, _ := notes.ListByUser(context.Background(), "bob", false)
	assert.Empty(t, list)
	assert.Empty(t, queue.jobs)
}

func TestHandleEventPermanentFailures(t *testing.T) {
	w, _, _, _ := newWorker(t)
	ctx := context.Background()

	assert.ErrorIs(t, w.HandleEvent(ctx, []byte("{")), ErrPermanent)
	err := w.HandleEvent(ctx, eventBody(t, entity.SocialEvent{Type: entity.EventFollow, ActorID: "bob", TargetID: "bob"}))
	assert.ErrorIs(t, err, ErrPermanent)
	assert.ErrorIs(t, err, application.ErrMalformedEvent)
}

func TestHandleEmail(t *testing.T) {
	w, _, _, sender := newWorker(t)
	ctx := context.Background()
	body, err := json.Marshal(mailer.EmailJob{To: "bob@example.com", Template: mailer.TemplateNewFollower, Data: map[string]any{"ActorName": "Alice"}})
	require.NoError(t, err)

	require.NoError(t, w.HandleEmail(ctx, body))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, sentMail{"bob@example.com", "Alice started following you"}, sender.sent[0])

	sender.err = errors.New("mailgun 502")
	err = w.HandleEmail(ctx, body)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPermanent, "send failures are retried")

	assert.ErrorIs(t, w.HandleEmail(ctx, []byte("nope")), ErrPermanent)
	assert.ErrorIs(t, w.HandleEmail(ctx, []byte(`{"to":"","template":"new_follower"}`)), ErrPermanent)

	w.MailSendEnabled = false
	require.NoError(t, w.HandleEmail(ctx, body))
	assert.Len(t, sender.sent, 2)
}

func TestRunSettlesDeliveries(t *testing.T) {
	w, _, _, _ := newWorker(t)
	acks := &ackRecorder{}
	msgs := make(chan amqp.Delivery, 3)
	msgs <- amqp.Delivery{Acknowledger: acks, DeliveryTag: 1, Body: []byte("ok")}
	msgs <- amqp.Delivery{Acknowledger: acks, DeliveryTag: 2, Body: []byte("bad")}
	msgs <- amqp.Delivery{Acknowledger: acks, DeliveryTag: 3, Body: []byte("retry")}
	close(msgs)

	w.Run(context.Background(), "test", msgs, func(_ context.Context, body []byte) error {
		switch string(body) {
		case "bad":
			return permanent(errors.New("bad payload"))
		case "retry":
			return errors.New("db down")
		}
		return nil
	})

	assert.Equal(t, 1, acks.acks)
	assert.Equal(t, 2, acks.nacks)
	assert.Equal(t, []bool{false, true}, acks.requeue)
}

func TestRunStopsOnCancel(t *testing.T) {
	w, _, _, _ := newWorker(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx, "test", make(chan amqp.Delivery), func(context.Context, []byte) error { return nil })
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}
