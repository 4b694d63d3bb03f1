package notify

import (
	"context"
	"errors"

	"github.com/sandeepkv93/remindd/internal/scheduler"
)

// BulkDisarmer is implemented by dispatchers that can drop every pending
// alarm at once.
type BulkDisarmer interface {
	DisarmAll(ctx context.Context) (int, error)
}

type Canceller struct {
	dispatcher Dispatcher
	options
}

func NewCanceller(d Dispatcher, opts ...Option) *Canceller {
	return &Canceller{dispatcher: d, options: buildOptions(opts)}
}

// Cancel disarms every handle. Handles that already fired or were cancelled
// count as done; other failures are logged and the rest still get disarmed.
func (c *Canceller) Cancel(ctx context.Context, handles []string) {
	for _, h := range handles {
		err := c.dispatcher.Disarm(ctx, h)
		switch {
		case err == nil:
			c.metrics.AlarmDisarmed()
		case errors.Is(err, scheduler.ErrUnknownHandle):
			c.logger.Debug("alarm already gone", "handle", h)
		default:
			c.metrics.AlarmDisarmFailed()
			c.logger.Error("disarm alarm", "handle", h, "err", err)
		}
	}
	if len(handles) > 0 {
		c.logger.Debug("alarms cancelled", "handles", handles)
	}
}

// CancelAll drops every pending alarm, including ones no task refers to.
func (c *Canceller) CancelAll(ctx context.Context) int {
	bulk, ok := c.dispatcher.(BulkDisarmer)
	if !ok {
		c.logger.Warn("dispatcher cannot disarm in bulk")
		return 0
	}
	n, err := bulk.DisarmAll(ctx)
	if err != nil {
		c.logger.Error("disarm all alarms", "err", err)
	}
	for i := 0; i < n; i++ {
		c.metrics.AlarmDisarmed()
	}
	return n
}
