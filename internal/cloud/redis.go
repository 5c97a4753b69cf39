package cloud

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const redisDocumentKey = "invoice-system:" + documentPath

// RedisStore keeps the remote document under a single key and fans out
// changes over pub/sub. Published messages carry only the savedAt stamp;
// subscribers re-fetch the document on receipt.
type RedisStore struct {
	client *redis.Client
	log    zerolog.Logger
}

func NewRedisStore(ctx context.Context, addr, password string, log zerolog.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("unable to ping redis at %s: %w", addr, err)
	}
	return &RedisStore{client: client, log: log}, nil
}

func (s *RedisStore) Fetch(ctx context.Context) (*Envelope, error) {
	data, err := s.client.Get(ctx, redisDocumentKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch remote document: %w", err)
	}
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("remote document is not valid JSON: %w", err)
	}
	return &env, nil
}

func (s *RedisStore) Save(ctx context.Context, env *Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to encode remote document: %w", err)
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, redisDocumentKey, data, 0)
	pipe.Publish(ctx, notifyChannel, env.SavedAt)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write remote document: %w", err)
	}
	return nil
}

func (s *RedisStore) Subscribe(ctx context.Context) (<-chan Envelope, error) {
	pubsub := s.client.Subscribe(ctx, notifyChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", notifyChannel, err)
	}

	ch := make(chan Envelope, 1)
	go func() {
		defer close(ch)
		defer pubsub.Close()
		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-msgs:
				if !ok {
					return
				}
				env, err := s.Fetch(ctx)
				if err != nil {
					s.log.Warn().Err(err).Msg("failed to fetch document after publish")
					continue
				}
				if env == nil {
					continue
				}
				select {
				case ch <- *env:
				default:
					select {
					case <-ch:
					default:
					}
					ch <- *env
				}
			}
		}
	}()
	return ch, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
