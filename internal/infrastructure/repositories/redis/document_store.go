package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// maxWatchAttempts bounds optimistic retries when a watched key changes before EXEC.
const maxWatchAttempts = 10

var errDocumentExists = errors.New("document already exists")

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// documentStore keeps JSON documents under <prefix><id> and their ids in a set for listing.
type documentStore[T any] struct {
	client   *redis.Client
	prefix   string
	index    string
	notFound error
}

func (s documentStore[T]) key(id string) string {
	return s.prefix + id
}

func (s documentStore[T]) create(ctx context.Context, id string, doc *T) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", s.key(id), err)
	}

	var created *redis.BoolCmd
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		created = pipe.SetNX(ctx, s.key(id), data, 0)
		pipe.SAdd(ctx, s.index, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store %s in Redis: %w", s.key(id), err)
	}
	if !created.Val() {
		return fmt.Errorf("%s: %w", s.key(id), errDocumentExists)
	}
	return nil
}

func (s documentStore[T]) read(ctx context.Context, c stringGetter, id string) (*T, error) {
	data, err := c.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, s.notFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s from Redis: %w", s.key(id), err)
	}
	return s.decode(id, data)
}

func (s documentStore[T]) decode(id string, data []byte) (*T, error) {
	var doc T
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", s.key(id), err)
	}
	return &doc, nil
}

func (s documentStore[T]) get(ctx context.Context, id string) (*T, error) {
	return s.read(ctx, s.client, id)
}

// mutate reads, edits and writes one document inside WATCH/MULTI. An error from fn aborts without writing.
func (s documentStore[T]) mutate(ctx context.Context, id string, fn func(*T) error) (*T, error) {
	var out *T
	err := watchRetry(ctx, s.client, func(tx *redis.Tx) error {
		doc, err := s.read(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := fn(doc); err != nil {
			return err
		}
		data, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", s.key(id), err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.key(id), data, 0)
			return nil
		})
		if err != nil {
			return err
		}
		out = doc
		return nil
	}, s.key(id))
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s documentStore[T]) delete(ctx context.Context, id string) error {
	var removed *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		removed = pipe.Del(ctx, s.key(id))
		pipe.SRem(ctx, s.index, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s from Redis: %w", s.key(id), err)
	}
	if removed.Val() == 0 {
		return s.notFound
	}
	return nil
}

func (s documentStore[T]) list(ctx context.Context) ([]*T, error) {
	ids, err := s.client.SMembers(ctx, s.index).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.index, err)
	}
	if len(ids) == 0 {
		return []*T{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", s.index, err)
	}

	docs := make([]*T, 0, len(values))
	for i, v := range values {
		// nil when deleted between SMEMBERS and MGET
		raw, ok := v.(string)
		if !ok {
			continue
		}
		doc, err := s.decode(ids[i], []byte(raw))
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// watchRetry runs fn under WATCH keys, retrying while another client changes them first.
func watchRetry(ctx context.Context, client *redis.Client, fn func(tx *redis.Tx) error, keys ...string) error {
	for attempt := 0; attempt < maxWatchAttempts; attempt++ {
		err := client.Watch(ctx, fn, keys...)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("%v kept changing after %d attempts: %w", keys, maxWatchAttempts, redis.TxFailedErr)
}
