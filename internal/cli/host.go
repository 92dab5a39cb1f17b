package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/storefront/internal/config"
	"github.com/aretw0/storefront/pkg/adapters/memory"
	"github.com/aretw0/storefront/pkg/adapters/redis"
	"github.com/aretw0/storefront/pkg/adapters/stdio"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// HostPusher sends a partial host-context update as the host would.
type HostPusher interface {
	Push(ctx context.Context, update domain.HostContext) error
}

// Host is the host side of a configured transport.
type Host struct {
	Transport ports.HostTransport

	// Pusher is nil when the host lives in another process we cannot speak for (stdio).
	Pusher HostPusher

	// Seed publishes the configured initial snapshot. Only set for redis.
	Seed func(ctx context.Context) error

	closers []func() error
}

// Close releases what OpenHost created. The transport itself is closed by its App.
func (h *Host) Close() error {
	var errs []error
	for _, c := range h.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// OpenHost builds the transport selected by cfg.Host.Transport.
func OpenHost(cfg config.Config, logger *slog.Logger) (*Host, error) {
	switch cfg.Host.Transport {
	case config.TransportMemory, "":
		host := memory.NewHost(cfg.Host.Initial)
		return &Host{Transport: host, Pusher: host}, nil

	case config.TransportStdio:
		t := stdio.New(os.Stdin, os.Stdout,
			stdio.WithLogger(logger),
			stdio.WithCloser(os.Stdin),
		)
		return &Host{Transport: t}, nil

	case config.TransportRedis:
		rc := cfg.Host.Redis
		client := backend.NewClient(&backend.Options{
			Addr:     rc.Addr,
			Password: rc.Password,
			DB:       rc.DB,
		})
		opts := []redis.Option{redis.WithPrefix(rc.Prefix), redis.WithLogger(logger)}
		publisher := redis.NewPublisher(client, opts...)
		initial := cfg.Host.Initial
		return &Host{
			Transport: redis.NewFromClient(client, opts...),
			Pusher:    publisher,
			Seed: func(ctx context.Context) error {
				return publisher.SetContext(ctx, initial)
			},
			closers: []func() error{client.Close},
		}, nil

	default:
		return nil, fmt.Errorf("unknown host transport %q", cfg.Host.Transport)
	}
}
