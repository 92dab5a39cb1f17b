package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/storefront/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

const maxPublishRetries = 8

// ErrPublishConflict is returned when the snapshot kept changing under a publish.
var ErrPublishConflict = errors.New("host context changed concurrently")

// Publisher is the host side of the Redis transport.
type Publisher struct {
	client *backend.Client
	prefix string
	logger *slog.Logger
}

// NewPublisher creates a host publisher sharing the transport's key layout.
func NewPublisher(client *backend.Client, opts ...Option) *Publisher {
	o := buildOptions(opts)
	return &Publisher{
		client: client,
		prefix: o.prefix,
		logger: o.logger,
	}
}

// SetContext replaces the full snapshot without notifying views.
func (p *Publisher) SetContext(ctx context.Context, hc domain.HostContext) error {
	data, err := json.Marshal(hc)
	if err != nil {
		return fmt.Errorf("failed to marshal host context: %w", err)
	}
	if err := p.client.Set(ctx, contextKey(p.prefix), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save host context: %w", err)
	}
	return nil
}

// Context returns the current snapshot.
func (p *Publisher) Context(ctx context.Context) (domain.HostContext, error) {
	val, err := p.client.Get(ctx, contextKey(p.prefix)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return domain.HostContext{}, domain.ErrHostUnavailable
		}
		return domain.HostContext{}, fmt.Errorf("failed to get from redis: %w", err)
	}
	var hc domain.HostContext
	if err := json.Unmarshal(val, &hc); err != nil {
		return domain.HostContext{}, fmt.Errorf("failed to unmarshal host context: %w", err)
	}
	return hc, nil
}

// Publish merges update into the stored snapshot and announces the partial
// update to subscribed views. The write and the announcement share one
// transaction, retried while another publisher races on the snapshot.
func (p *Publisher) Publish(ctx context.Context, update domain.HostContext) error {
	key := contextKey(p.prefix)
	payload, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("failed to marshal update: %w", err)
	}

	txf := func(tx *backend.Tx) error {
		var current domain.HostContext
		val, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, backend.Nil):
		case err != nil:
			return err
		default:
			if err := json.Unmarshal(val, &current); err != nil {
				return fmt.Errorf("failed to unmarshal host context: %w", err)
			}
		}

		merged, err := json.Marshal(domain.Merge(current, update))
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
			pipe.Set(ctx, key, merged, 0)
			pipe.Publish(ctx, channelKey(p.prefix), payload)
			return nil
		})
		return err
	}

	for i := 0; i < maxPublishRetries; i++ {
		err := p.client.Watch(ctx, txf, key)
		if err == nil {
			return nil
		}
		if errors.Is(err, backend.TxFailedErr) {
			p.logger.Debug("Retrying host context publish", "attempt", i+1)
			continue
		}
		return fmt.Errorf("failed to publish host context: %w", err)
	}
	return ErrPublishConflict
}

// Push implements the host driver used by the transport contract.
func (p *Publisher) Push(ctx context.Context, update domain.HostContext) error {
	return p.Publish(ctx, update)
}

// Views lists registered views by view ID.
func (p *Publisher) Views(ctx context.Context) (map[string]domain.Identity, error) {
	raw, err := p.client.HGetAll(ctx, viewsKey(p.prefix)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list views: %w", err)
	}
	views := make(map[string]domain.Identity, len(raw))
	for id, entry := range raw {
		var identity domain.Identity
		if err := json.Unmarshal([]byte(entry), &identity); err != nil {
			return nil, fmt.Errorf("failed to decode view %s: %w", id, err)
		}
		views[id] = identity
	}
	return views, nil
}
