package redis_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/calheira/conveyor/pkg/models"
	"github.com/calheira/conveyor/pkg/persistence"
	redispersistence "github.com/calheira/conveyor/pkg/persistence/redis"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*redispersistence.Persistence, context.Context) {
	t.Helper()

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("REDIS_URL is not set")
	}

	ctx := context.Background()

	p, err := redispersistence.NewPersistence(ctx, slog.Default(), redisURL)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, p.Close(ctx))
	})

	return p, ctx
}

func TestWorkflowRoundTrip(t *testing.T) {
	p, ctx := setupRedis(t)

	wf := &models.Workflow{
		ID:      uuid.New().String(),
		Name:    "redis test workflow",
		Trigger: &models.Trigger{ID: "trigger", Type: models.TriggerTypeWebhook},
		Nodes:   []*models.Node{{ID: "a", Type: "log", Enabled: true}},
		Edges:   []*models.Edge{{ID: "e1", From: "trigger", To: "a"}},
	}

	repo := p.WorkflowRepository()

	require.NoError(t, repo.Save(ctx, wf))

	t.Cleanup(func() {
		_ = repo.Delete(ctx, wf.ID)
	})

	loaded, err := repo.GetByID(ctx, wf.ID)
	require.NoError(t, err)
	assert.Equal(t, wf.Name, loaded.Name)

	require.NoError(t, repo.Delete(ctx, wf.ID))

	_, err = repo.GetByID(ctx, wf.ID)
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

func TestExecutionRoundTrip(t *testing.T) {
	p, ctx := setupRedis(t)

	execution := &models.Execution{
		ID:         uuid.New().String(),
		WorkflowID: "wf-redis",
		Status:     models.ExecutionStatusCompleted,
		Context:    map[string]any{"a": 1.0},
		Visited:    []string{"a"},
	}

	repo := p.ExecutionRepository()

	require.NoError(t, repo.Save(ctx, execution))

	loaded, err := repo.GetByID(ctx, execution.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusCompleted, loaded.Status)

	_, err = repo.GetByID(ctx, "ghost")
	assert.True(t, persistence.IsExecutionNotFound(err))
}
