package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/calheira/conveyor/pkg/persistence"
	"github.com/calheira/conveyor/pkg/persistence/file"
	"github.com/calheira/conveyor/pkg/persistence/postgresql"
	"github.com/calheira/conveyor/pkg/persistence/redis"
)

// NewPersistence selects a storage backend by URL scheme: postgres://,
// redis:// or file:// (also the fallback for plain paths).
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) persistence.Persistence {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			panic(fmt.Errorf("failed to create PostgreSQL persistence: %w", err))
		}

		return p
	case strings.HasPrefix(databaseURL, "redis://"), strings.HasPrefix(databaseURL, "rediss://"):
		p, err := redis.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			panic(fmt.Errorf("failed to create Redis persistence: %w", err))
		}

		return p
	default:
		return file.NewPersistence(databaseURL)
	}
}
