package notify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"eventraffle/internal/bootstrap/logging"
	"eventraffle/internal/errs"
	"eventraffle/internal/ports"
)

type publisher interface {
	Publish(subject string, data []byte) error
}

// NATSNotifier publishes winner notices as JSON on a NATS subject. Publishing is
// fire-and-forget: the notice is buffered by the client and flushed on Close.
type NATSNotifier struct {
	pub     publisher
	conn    *nats.Conn
	subject string
}

var _ ports.WinnerNotifier = (*NATSNotifier)(nil)

func NewNATSNotifier(ctx context.Context, url, subject string) (*NATSNotifier, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if strings.TrimSpace(subject) == "" {
		return nil, errors.New("nats subject is required")
	}

	logCtx := logging.WithComponent(ctx, "notify.nats")
	conn, err := nats.Connect(
		url,
		nats.Name("eventraffle"),
		nats.Timeout(5*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logging.Warn(logCtx, "nats disconnected", slog.Any("err", errs.Loggable(err)))
			}
		}),
	)
	if err != nil {
		return nil, errs.Wrapf(err, "connect nats %q", url)
	}

	logging.Info(logCtx, "nats notifier connected", slog.String("url", conn.ConnectedUrlRedacted()), slog.String("subject", subject))
	return &NATSNotifier{pub: conn, conn: conn, subject: subject}, nil
}

func (n *NATSNotifier) NotifyWinner(ctx context.Context, notice ports.WinnerNotice) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	payload, err := json.Marshal(notice)
	if err != nil {
		return errs.Wrap(err, "marshal winner notice")
	}
	if err := n.pub.Publish(n.subject, payload); err != nil {
		return errs.Wrapf(err, "publish winner notice to %q", n.subject)
	}
	return nil
}

// Close drains pending publishes and closes the connection.
func (n *NATSNotifier) Close() error {
	if n.conn == nil {
		return nil
	}
	if err := n.conn.Drain(); err != nil {
		return errs.Wrap(err, "drain nats connection")
	}
	return nil
}
