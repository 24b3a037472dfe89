package relay

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/iudanet/gophtext/pkg/api"
)

// ChannelPrefix префикс каналов Redis для атомов документа
const ChannelPrefix = "gophtext:crdt:"

// Channel возвращает имя канала Redis документа
func Channel(docID string) string {
	return ChannelPrefix + docID
}

// Redis ретранслятор через Redis Pub/Sub. Пакеты кодируются msgpack.
type Redis struct {
	client *redis.Client
	logger *slog.Logger
	codec  api.Codec
}

// NewRedis создает ретранслятор поверх клиента Redis
func NewRedis(client *redis.Client, logger *slog.Logger) *Redis {
	return &Redis{
		client: client,
		logger: logger,
		codec:  api.Msgpack,
	}
}

// Publish публикует пакет в канал документа
func (r *Redis) Publish(ctx context.Context, docID string, batch api.AtomBatch) error {
	payload, err := r.codec.Marshal(batch)
	if err != nil {
		return fmt.Errorf("failed to encode atom batch: %w", err)
	}

	if err := r.client.Publish(ctx, Channel(docID), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish to redis: %w", err)
	}
	return nil
}

// Subscribe подписывается на канал документа. Обработчик вызывается
// из отдельной горутины до вызова функции отписки.
func (r *Redis) Subscribe(ctx context.Context, docID string, handler Handler) (func(), error) {
	pubsub := r.client.Subscribe(ctx, Channel(docID))

	// Receive дожидается подтверждения подписки, иначе ранние публикации теряются
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to redis: %w", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range pubsub.Channel() {
			batch, err := r.decode([]byte(msg.Payload))
			if err != nil {
				r.logger.Warn("Dropping malformed relay message", "doc_id", docID, "error", err)
				continue
			}
			handler(*batch)
		}
	}()

	return func() {
		if err := pubsub.Close(); err != nil {
			r.logger.Error("Failed to close redis subscription", "doc_id", docID, "error", err)
		}
		<-done
	}, nil
}

func (r *Redis) decode(payload []byte) (*api.AtomBatch, error) {
	return api.DecodeAtomBatch(r.codec, payload)
}

// Close закрывает клиент Redis
func (r *Redis) Close() error {
	return r.client.Close()
}
