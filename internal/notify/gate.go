package notify

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/sandeepkv93/remindd/internal/logging"
	"github.com/sandeepkv93/remindd/internal/model"
)

// Gate resolves whether alerts may be armed at all.
type Gate struct {
	dispatcher Dispatcher
	channel    model.ChannelConfig
	logger     *log.Logger
}

func NewGate(d Dispatcher, channel model.ChannelConfig, logger *log.Logger) *Gate {
	return &Gate{dispatcher: d, channel: channel, logger: logging.OrDiscard(logger)}
}

// EnsurePermission checks the current authorization and asks once when it
// is missing. Failures are logged and read as "not granted".
func (g *Gate) EnsurePermission(ctx context.Context) bool {
	granted, err := g.dispatcher.PermissionStatus(ctx)
	if err != nil {
		g.logger.Error("query notification permission", "err", err)
		return false
	}
	if !granted {
		granted, err = g.dispatcher.RequestPermission(ctx)
		if err != nil {
			g.logger.Error("request notification permission", "err", err)
			return false
		}
	}
	if !granted {
		g.logger.Info("notification permission denied")
		return false
	}
	if err := g.dispatcher.EnsureChannel(ctx, g.channel); err != nil {
		g.logger.Error("ensure notification channel", "channel", g.channel.ID, "err", err)
		return false
	}
	return true
}
