package manifest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphql-mcp/bridge/internal/serverstate"
)

func TestPollEmitsOperationsFromManifest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"operations":[{"id":"abc123","name":"GetPlanet","body":"query GetPlanet { planet { id } }"}]}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan serverstate.Event, 4)
	go Poll(ctx, Config{URL: srv.URL, PollInterval: time.Hour}, out, logr.Discard())

	select {
	case ev := <-out:
		upd, ok := ev.(serverstate.OperationsUpdated)
		require.True(t, ok)
		require.Len(t, upd.Operations, 1)
		assert.Equal(t, "abc123", upd.Operations[0].PersistedQueryID)
		assert.Equal(t, "query GetPlanet { planet { id } }", upd.Operations[0].SourceText)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for manifest event")
	}
	cancel()
}

func TestPollBacksOffOnFailureWithoutEmitting(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan serverstate.Event, 4)
	go Poll(ctx, Config{URL: srv.URL, PollInterval: 20 * time.Millisecond, MaxInterval: 50 * time.Millisecond}, out, logr.Discard())

	time.Sleep(120 * time.Millisecond)
	cancel()

	select {
	case ev, ok := <-out:
		if ok {
			t.Fatalf("expected no events on repeated failure, got %v", ev)
		}
	default:
	}
	assert.GreaterOrEqual(t, calls, 1)
}
