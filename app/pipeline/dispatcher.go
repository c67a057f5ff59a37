package pipeline

import (
	"log/slog"

	"newsbrief/app/notify"
)

// Dispatcher fans a notification out to every configured channel.
type Dispatcher struct {
	notifiers []notify.Notifier
}

func NewDispatcher(notifiers []notify.Notifier) *Dispatcher {
	return &Dispatcher{notifiers: notifiers}
}

// Channels reports the number of configured channels.
func (d *Dispatcher) Channels() int {
	return len(d.notifiers)
}

// Dispatch delivers to every channel and reports success only when all of
// them accepted the notification. A partial delivery returns false so the
// caller keeps the item pending and retries the whole set later.
func (d *Dispatcher) Dispatch(title, message, url, category string) bool {
	allSent := true
	for _, notifier := range d.notifiers {
		if !notifier.Send(title, message, url, category) {
			slog.Warn("Channel delivery failed", "channel", notifier.Name(), "title", title)
			allSent = false
		}
	}
	return allSent
}

// Broadcast delivers best-effort and reports how many channels accepted.
// Used for digests, which are not retried.
func (d *Dispatcher) Broadcast(title, message, url, category string) int {
	sent := 0
	for _, notifier := range d.notifiers {
		if notifier.Send(title, message, url, category) {
			sent++
		} else {
			slog.Warn("Channel delivery failed", "channel", notifier.Name(), "title", title)
		}
	}
	return sent
}
