package ws

import (
	"log/slog"
	"sync"
	"time"
)

// keepalive emits one zero-payload ping frame per interval until stopped.
// Its lifetime is tied to the owning Client: Client.close stops it, so a
// removed client can never leak a timer.
type keepalive struct {
	ticker *time.Ticker
	stop   chan struct{}
	once   sync.Once
}

func startKeepalive(c *Client, interval time.Duration, logger *slog.Logger) *keepalive {
	k := &keepalive{
		ticker: time.NewTicker(interval),
		stop:   make(chan struct{}),
	}

	go func() {
		for {
			select {
			case <-k.stop:
				return
			case <-k.ticker.C:
				if err := c.write(encodePing()); err != nil {
					logger.Debug("keepalive ping dropped", "client_id", c.id, "error", err)
				}
			}
		}
	}()

	return k
}

func (k *keepalive) Stop() {
	k.once.Do(func() {
		k.ticker.Stop()
		close(k.stop)
	})
}
