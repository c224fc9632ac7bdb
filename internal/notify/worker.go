package notify

import (
	"context"
	"log/slog"

	"github.com/riverqueue/river"
)

// SendEmailArgs is the queue payload for one transactional email. Enqueued
// inside the transaction that caused it (checkout, onboarding submit,
// delivery), so an email is only ever sent for a committed change.
type SendEmailArgs struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (SendEmailArgs) Kind() string { return "send_email" }

// Sender is the part of Mailer the worker needs.
type Sender interface {
	Send(to, subject, body string) error
}

type SendEmailWorker struct {
	river.WorkerDefaults[SendEmailArgs]
	mailer Sender
	log    *slog.Logger
}

func NewSendEmailWorker(mailer Sender, log *slog.Logger) *SendEmailWorker {
	if log == nil {
		log = slog.Default()
	}
	return &SendEmailWorker{mailer: mailer, log: log}
}

func (w *SendEmailWorker) Work(ctx context.Context, job *river.Job[SendEmailArgs]) error {
	args := job.Args
	if err := w.mailer.Send(args.To, args.Subject, args.Body); err != nil {
		// Returning the error lets River retry with backoff.
		return err
	}
	w.log.Info("email sent", "to", args.To, "subject", args.Subject)
	return nil
}
