// Package notify consumes notification messages from RabbitMQ and turns
// them into emails.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wb-go/wbf/zlog"

	"clubtix/internal/dto"
	"clubtix/internal/rabbit"
)

type Reader struct {
	RMQ    *rabbit.Client
	mailer *Mailer
	done   chan struct{}
	cancel context.CancelFunc
}

func NewReader(rmq *rabbit.Client, mailer *Mailer) *Reader {
	return &Reader{
		RMQ:    rmq,
		mailer: mailer,
		done:   make(chan struct{}),
	}
}

func (r *Reader) Start(ctx context.Context) {
	cctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	zlog.Logger.Info().Msg("notification reader started")

	go func() {
		defer close(r.done)

		handler := func(body []byte) error {
			var msg dto.NotificationMessage
			if err := json.Unmarshal(body, &msg); err != nil {
				zlog.Logger.Error().
					Err(err).
					Msgf("failed to unmarshal notification: %s", string(body))
				return err
			}

			zlog.Logger.Info().
				Str("kind", msg.Kind).
				Str("email", msg.Email).
				Msg("received notification message")

			subject, text := compose(msg)
			if subject == "" {
				zlog.Logger.Warn().Str("kind", msg.Kind).Msg("unknown notification kind, dropping")
				return nil
			}

			if err := r.mailer.Send(&zlog.Logger, msg.Email, subject, text); err != nil {
				zlog.Logger.Warn().Err(err).Msg("failed to send notification email")
			}
			return nil
		}

		if err := r.RMQ.Consume(handler); err != nil {
			zlog.Logger.Error().Err(err).Msg("failed to start consuming")
			return
		}

		<-cctx.Done()
		zlog.Logger.Info().Msg("notification reader stopped by context")
	}()
}

func (r *Reader) Stop() {
	if r.cancel != nil {
		r.cancel()
		<-r.done
	}
}

func compose(msg dto.NotificationMessage) (subject, body string) {
	switch msg.Kind {
	case dto.NotifyTicketIssued:
		subject = fmt.Sprintf("Your ticket for %s", msg.EventTitle)
		body = fmt.Sprintf("Hi!\n\nYour ticket for %s is ready. You can find it in the app under My Tickets.", msg.EventTitle)
	case dto.NotifyTransferCreated:
		subject = fmt.Sprintf("%s sent you a ticket", msg.FromUser)
		body = fmt.Sprintf("Hi!\n\n%s wants to transfer you a ticket for %s. Open the app to accept or decline it.", msg.FromUser, msg.EventTitle)
	case dto.NotifyTransferAccepted:
		subject = fmt.Sprintf("%s accepted your ticket", msg.FromUser)
		body = fmt.Sprintf("Hi!\n\n%s accepted the ticket you sent for %s.", msg.FromUser, msg.EventTitle)
	}
	return subject, body
}
