// Package notify fans alarm notifications out to the configured channels.
// Each channel gets exactly one attempt per notification.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

type Sender interface {
	Send(ctx context.Context, subject, body string) error
}

type INotifier interface {
	Notify(ctx context.Context, subject, body string) error
	Enabled() bool
}

type channel struct {
	name   string
	sender Sender
}

type Notifier struct {
	log      *logrus.Logger
	channels []channel
}

func New(log *logrus.Logger) *Notifier {
	return &Notifier{log: log}
}

// Add registers a channel. Nil senders are skipped so unconfigured channels
// can be passed straight through.
func (n *Notifier) Add(name string, sender Sender) *Notifier {
	if sender == nil || isNilSender(sender) {
		return n
	}
	n.channels = append(n.channels, channel{name: name, sender: sender})
	return n
}

func (n *Notifier) Enabled() bool {
	return len(n.channels) > 0
}

func (n *Notifier) Notify(ctx context.Context, subject, body string) error {
	var errs []error
	for _, c := range n.channels {
		if err := c.sender.Send(ctx, subject, body); err != nil {
			n.log.WithFields(logrus.Fields{
				"channel": c.name,
				"error":   err.Error(),
			}).Warn("Notification not delivered")
			errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
			continue
		}
		n.log.WithField("channel", c.name).Debug("Notification delivered")
	}
	return errors.Join(errs...)
}
