package httprequest

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"

	"github.com/calheira/conveyor/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func testExecutionContext() models.ExecutionContext {
	return models.ExecutionContext{
		ExecutionID: "exec-1",
		WorkflowID:  "wf-1",
		Context:     map[string]any{"user_id": "u-42"},
	}
}

func TestNewAction_RequiresURL(t *testing.T) {
	_, err := NewAction("node-1", map[string]any{"method": "GET"})

	assert.ErrorIs(t, err, ErrURLRequired)
}

func TestAction_Execute_DecodesJSONResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "u-42", "active": true}`))
	}))
	defer server.Close()

	action, err := NewAction("node-1", map[string]any{"url": server.URL})
	require.NoError(t, err)

	output, err := action.Execute(context.Background(), testExecutionContext(), testLogger())
	require.NoError(t, err)

	result, ok := output.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, result["status_code"])

	body, ok := result["body"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "u-42", body["id"])
}

func TestAction_Execute_RendersURLTemplate(t *testing.T) {
	var requestedPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestedPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	action, err := NewAction("node-1", map[string]any{
		"url": server.URL + "/users/{{.context.user_id}}",
	})
	require.NoError(t, err)

	_, err = action.Execute(context.Background(), testExecutionContext(), testLogger())
	require.NoError(t, err)
	assert.Equal(t, "/users/u-42", requestedPath)
}

func TestAction_Execute_RetriesOnServerError(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)

			return
		}

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	action, err := NewAction("node-1", map[string]any{
		"url":   server.URL,
		"retry": map[string]any{"attempts": 2.0, "delay": 0.0},
	})
	require.NoError(t, err)

	output, err := action.Execute(context.Background(), testExecutionContext(), testLogger())
	require.NoError(t, err)

	result, ok := output.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, result["status_code"])
	assert.Equal(t, int32(2), calls.Load())
}
