package redisad

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// CatalogFeed carries "catalog changed" notifications over a pub/sub
// channel. The payload is the category that changed.
type CatalogFeed struct {
	c       *redis.Client
	channel string
}

func NewCatalogFeed(c *redis.Client, channel string) *CatalogFeed {
	return &CatalogFeed{c: c, channel: channel}
}

func (f *CatalogFeed) NotifyCatalogChanged(ctx context.Context, category string) error {
	return f.c.Publish(ctx, f.channel, category).Err()
}

// Subscribe streams changed categories until ctx is done or the
// subscription drops.
func (f *CatalogFeed) Subscribe(ctx context.Context) (<-chan string, error) {
	sub := f.c.Subscribe(ctx, f.channel)
	// wait for the subscription confirmation so no publish is missed after return
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	out := make(chan string)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-msgs:
				if !ok {
					log.Warn().Str("channel", f.channel).Msg("catalog feed closed")
					return
				}
				select {
				case out <- m.Payload:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
