package messaging

import (
	"context"

	"github.com/rs/zerolog"
)

// Handler processes a single raw message.
type Handler func(ctx context.Context, payload []byte) error

// Consume subscribes to channel and feeds every message to handler until ctx
// is cancelled or the subscription closes. Handler errors are logged and the
// loop continues.
func Consume(ctx context.Context, broker Broker, channel string, handler Handler, logger zerolog.Logger) error {
	msgs, err := broker.Subscribe(ctx, channel)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			if err := handler(ctx, msg); err != nil {
				logger.Error().Err(err).Str("channel", channel).Msg("Failed to handle message")
			}
		}
	}
}
