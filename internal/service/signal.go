package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/totegamma/moodboard/internal/domain"
)

// SignalService relays change events through a Redis pub/sub channel so
// several server processes can feed the same realtime subscribers.
type SignalService struct {
	rdb     *redis.Client
	channel string
}

func NewSignalService(redisClient *redis.Client, channel string) *SignalService {
	return &SignalService{
		rdb:     redisClient,
		channel: channel,
	}
}

func (s *SignalService) Publish(ctx context.Context, event domain.Event) error {

	jsonstr, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = s.rdb.Publish(ctx, s.channel, jsonstr).Err()
	if err != nil {
		return errors.Wrap(err, "redis publish")
	}

	return nil
}

// Subscribe streams events until the returned cancel func is called or ctx
// ends. Events that arrive while the consumer is busy are dropped.
func (s *SignalService) Subscribe(ctx context.Context) (<-chan domain.Event, func()) {
	ctx, cancel := context.WithCancel(ctx)
	pubsub := s.rdb.Subscribe(ctx, s.channel)
	out := make(chan domain.Event, subscriberBuffer)

	go func() {
		defer close(out)
		defer pubsub.Close()

		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var event domain.Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					slog.WarnContext(
						ctx, "Dropping malformed signal",
						slog.String("error", err.Error()),
						slog.String("module", "signal"),
					)
					continue
				}
				select {
				case out <- event:
				default:
				}
			}
		}
	}()

	return out, cancel
}

func (s *SignalService) Close() error {
	return s.rdb.Close()
}
