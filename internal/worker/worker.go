// Package worker processes the RabbitMQ queues fed by the API: social events
// become notifications, email jobs are rendered and sent through Mailgun.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-graph/internal/application"
	"github.com/oksasatya/go-social-graph/internal/domain/entity"
	"github.com/oksasatya/go-social-graph/pkg/mailer"
)

const sendTimeout = 15 * time.Second

// Sender is satisfied by *mailer.Mailgun.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// ErrPermanent marks messages that will never succeed and must not be requeued.
var ErrPermanent = errors.New("permanent failure")

func permanent(err error) error {
	return fmt.Errorf("%w: %w", ErrPermanent, err)
}

type Worker struct {
	Notifications *application.NotificationService
	Mail          Sender
	EmailQueue    application.EventPublisher
	Logger        *logrus.Logger

	ProfileBaseURL  string
	MailSendEnabled bool
}

// HandleEvent records the notification for a social event and, for follows,
// queues an email to the followed user.
func (w *Worker) HandleEvent(ctx context.Context, body []byte) error {
	var ev entity.SocialEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return permanent(fmt.Errorf("decode social event: %w", err))
	}
	n, err := w.Notifications.HandleEvent(ctx, ev)
	if err != nil {
		if errors.Is(err, application.ErrMalformedEvent) {
			return permanent(err)
		}
		return err
	}
	if n == nil || !w.MailSendEnabled || w.EmailQueue == nil {
		return nil
	}
	job, err := w.Notifications.FollowerEmail(ctx, ev, w.ProfileBaseURL)
	if err != nil {
		w.logWarn("build follower email failed", err, logrus.Fields{"target_id": ev.TargetID})
		return nil
	}
	if err := w.EmailQueue.PublishJSON(ctx, job); err != nil {
		w.logWarn("enqueue follower email failed", err, logrus.Fields{"target_id": ev.TargetID})
	}
	return nil
}

// HandleEmail renders and sends one email job.
func (w *Worker) HandleEmail(ctx context.Context, body []byte) error {
	var job mailer.EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return permanent(fmt.Errorf("decode email job: %w", err))
	}
	subject, text, html, err := mailer.Compose(job)
	if err != nil {
		return permanent(err)
	}
	if !w.MailSendEnabled || w.Mail == nil {
		if w.Logger != nil {
			w.Logger.WithFields(logrus.Fields{"to": job.To, "subject": subject}).Info("mail sending disabled; dropping email")
		}
		return nil
	}
	c, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	return w.Mail.Send(c, job.To, subject, text, html)
}

// Acknowledger is the part of amqp.Delivery the loop needs.
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// Settle acks handled messages, drops permanent failures and requeues the rest.
func (w *Worker) Settle(d Acknowledger, queue string, err error) {
	switch {
	case err == nil:
		_ = d.Ack(false)
	case errors.Is(err, ErrPermanent):
		w.logWarn("dropping message", err, logrus.Fields{"queue": queue})
		_ = d.Nack(false, false)
	default:
		w.logWarn("requeueing message", err, logrus.Fields{"queue": queue})
		_ = d.Nack(false, true)
	}
}

// Run consumes deliveries until ctx is done or the channel closes.
func (w *Worker) Run(ctx context.Context, queue string, msgs <-chan amqp.Delivery, handle func(context.Context, []byte) error) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			w.Settle(msg, queue, handle(ctx, msg.Body))
		}
	}
}

func (w *Worker) logWarn(msg string, err error, fields logrus.Fields) {
	if w.Logger == nil {
		return
	}
	w.Logger.WithError(err).WithFields(fields).Warn(msg)
}
