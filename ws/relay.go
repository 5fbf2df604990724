package ws

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	channelPrefix  = "rso:user:"
	publishTimeout = 2 * time.Second
	resubscribeMin = time.Second
	resubscribeMax = 30 * time.Second
)

// ChannelName is the Redis channel addressing userID's notifications.
func ChannelName(userID string) string {
	return channelPrefix + userID
}

// Relay fans notifications out across processes through Redis pub/sub.
// NotifyUser publishes on the user's channel; Run pattern-subscribes to all
// user channels and hands each message to the local hub, which delivers it
// to whatever connections that user has on this process.
type Relay struct {
	rdb   redis.UniversalClient
	local Notifier
	log   *zap.Logger

	readyOnce sync.Once
	ready     chan struct{}
}

func NewRelay(rdb redis.UniversalClient, local Notifier, log *zap.Logger) *Relay {
	return &Relay{
		rdb:   rdb,
		local: local,
		log:   log,
		ready: make(chan struct{}),
	}
}

// Ready is closed once the first subscription is confirmed.
func (r *Relay) Ready() <-chan struct{} {
	return r.ready
}

// NotifyUser publishes asynchronously. When Redis is unreachable the signal
// is delivered to local connections only.
func (r *Relay) NotifyUser(userID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		if err := r.rdb.Publish(ctx, ChannelName(userID), SignalNewActivity).Err(); err != nil {
			r.log.Warn("publish failed, delivering locally",
				zap.String("user_id", userID),
				zap.Error(err),
			)
			r.local.NotifyUser(userID)
		}
	}()
}

// Run consumes user channels until ctx is cancelled, resubscribing with
// backoff when the subscription cannot be established.
func (r *Relay) Run(ctx context.Context) {
	delay := resubscribeMin
	for {
		err := r.consume(ctx)
		if ctx.Err() != nil {
			return
		}

		r.log.Warn("relay subscription lost", zap.Error(err), zap.Duration("retry_in", delay))
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return
		}
		delay = min(delay*2, resubscribeMax)
	}
}

func (r *Relay) consume(ctx context.Context) error {
	ps := r.rdb.PSubscribe(ctx, channelPrefix+"*")
	defer ps.Close()

	// wait for the subscription confirmation before reporting ready
	if _, err := ps.Receive(ctx); err != nil {
		return err
	}
	r.readyOnce.Do(func() { close(r.ready) })
	r.log.Info("relay subscribed", zap.String("pattern", channelPrefix+"*"))

	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return redis.ErrClosed
			}
			userID := strings.TrimPrefix(msg.Channel, channelPrefix)
			if userID == "" || msg.Payload != SignalNewActivity {
				continue
			}
			r.local.NotifyUser(userID)
		}
	}
}
