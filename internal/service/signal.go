package service

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/openprocure/tendergraph"
)

type SignalService struct {
	rdb *redis.Client
}

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb: redisClient,
	}
}

func (s *SignalService) Publish(ctx context.Context, channel string, event tendergraph.Event) error {

	jsonstr, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = s.rdb.Publish(ctx, channel, jsonstr).Err()
	if err != nil {
		return err
	}

	return nil
}

// Subscribe returns a channel of raw event payloads for the given
// channel. Closing the context ends the subscription.
func (s *SignalService) Subscribe(ctx context.Context, channel string) <-chan []byte {
	sub := s.rdb.Subscribe(ctx, channel)
	out := make(chan []byte)

	go func() {
		defer close(out)
		defer sub.Close()
		forward(ctx, sub.Channel(), out)
	}()

	return out
}

// forward pumps payloads until the context ends or the source closes.
// The send is also guarded by the context: consumers may stop reading
// at any time and must not strand the pump mid-send.
func forward(ctx context.Context, msgs <-chan *redis.Message, out chan<- []byte) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			select {
			case out <- []byte(msg.Payload):
			case <-ctx.Done():
				return
			}
		}
	}
}
