package desktop

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/sandeepkv93/remindd/internal/logging"
	"github.com/sandeepkv93/remindd/internal/model"
	"github.com/sandeepkv93/remindd/internal/scheduler"
)

// ChannelLookup resolves a channel id to its settings; Engine.Channel fits.
type ChannelLookup func(id string) (model.ChannelConfig, bool)

// Deliver forwards alarms to the notifier until the stream closes or ctx is
// done, and returns how many were shown. Send failures are logged and the
// loop keeps going.
func Deliver(ctx context.Context, alarms <-chan scheduler.Alarm, n Notifier, channels ChannelLookup, logger *log.Logger) int {
	logger = logging.OrDiscard(logger)
	delivered := 0
	for {
		select {
		case <-ctx.Done():
			return delivered
		case a, ok := <-alarms:
			if !ok {
				return delivered
			}
			if err := Show(ctx, a, n, channels); err != nil {
				logger.Error("show notification", "handle", a.Handle, "task", a.Payload.TaskID, "err", err)
				continue
			}
			logger.Info("notification shown", "task", a.Payload.TaskID, "kind", a.Payload.Kind)
			delivered++
		}
	}
}

// Show presents a single alarm.
func Show(ctx context.Context, a scheduler.Alarm, n Notifier, channels ChannelLookup) error {
	var ch model.ChannelConfig
	if channels != nil {
		ch, _ = channels(a.Payload.Channel)
	}
	return n.Send(ctx, FromAlarm(a, ch))
}
