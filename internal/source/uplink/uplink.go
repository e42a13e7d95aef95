// Package uplink polls a GraphOS-style uplink endpoint for the current
// schema and persisted-query manifest, emitting serverstate.SchemaUpdated
// events whenever the launch id changes. Grounded on
// original_source/.../mcp-apollo-registry/uplink/event.rs and
// runtime/schema_source.rs for the polling/retry shape; the teacher has no
// poller of its own, so the exponential-backoff idiom is taken from
// cenkalti/backoff/v4, a dependency surfaced across the retrieved pack
// (indirect via mcpany-core, direct or indirect across many
// other_examples/manifests/*/go.mod entries).
package uplink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-logr/logr"

	"github.com/graphql-mcp/bridge/internal/apperrors"
	"github.com/graphql-mcp/bridge/internal/serverstate"
)

// Config configures the uplink poller, matching spec.md §6's
// schema.sources.uplink config block.
type Config struct {
	URL        string
	APIKey     string
	GraphRef   string
	PollInterval time.Duration
}

const uplinkQuery = `
query FetchSchema($apiKey: String!, $graphRef: String!) {
  routerConfig(ref: $graphRef, apiKey: $apiKey) {
    ... on RouterConfigResult {
      id
      supergraphSdl
    }
    ... on FetchError {
      code
      message
    }
  }
}`

type uplinkResponse struct {
	Data struct {
		RouterConfig struct {
			ID            string `json:"id"`
			SupergraphSDL string `json:"supergraphSdl"`
			Code          string `json:"code"`
			Message       string `json:"message"`
		} `json:"routerConfig"`
	} `json:"data"`
}

// Poll runs until ctx is canceled, sending a SchemaUpdated event to out
// each time the uplink reports a new launch id, retrying transient
// failures with exponential backoff.
func Poll(ctx context.Context, cfg Config, out chan<- serverstate.Event, logger logr.Logger) {
	defer close(out)

	interval := cfg.PollInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}

	lastLaunchID := ""
	client := &http.Client{Timeout: 15 * time.Second}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	fetch := func() {
		bo := backoff.WithContext(backoff.NewExponentialBackOff(), ctx)
		err := backoff.Retry(func() error {
			sdl, launchID, err := fetchOnce(ctx, client, cfg)
			if err != nil {
				var netErr *apperrors.NetworkError
				if ok := asNetworkError(err, &netErr); ok && !netErr.Retryable {
					return backoff.Permanent(err)
				}
				return err
			}
			if launchID == lastLaunchID {
				return nil
			}
			lastLaunchID = launchID
			select {
			case out <- serverstate.SchemaUpdated{Schema: serverstate.SchemaState{SDL: sdl, LaunchID: launchID}}:
			case <-ctx.Done():
			}
			return nil
		}, bo)
		if err != nil && ctx.Err() == nil {
			logger.Error(err, "uplink poll failed after retries", "url", cfg.URL)
		}
	}

	fetch()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fetch()
		}
	}
}

func fetchOnce(ctx context.Context, client *http.Client, cfg Config) (sdl string, launchID string, err error) {
	body, err := json.Marshal(map[string]interface{}{
		"query": uplinkQuery,
		"variables": map[string]string{
			"apiKey":   cfg.APIKey,
			"graphRef": cfg.GraphRef,
		},
	})
	if err != nil {
		return "", "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.URL, bytes.NewReader(body))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return "", "", &apperrors.NetworkError{URL: cfg.URL, Retryable: true, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", &apperrors.NetworkError{URL: cfg.URL, Retryable: true, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return "", "", &apperrors.NetworkError{URL: cfg.URL, Retryable: resp.StatusCode >= 500, Err: fmt.Errorf("uplink returned status %d", resp.StatusCode)}
	}

	var parsed uplinkResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", "", &apperrors.NetworkError{URL: cfg.URL, Retryable: false, Err: err}
	}
	if parsed.Data.RouterConfig.Message != "" {
		return "", "", &apperrors.NetworkError{URL: cfg.URL, Retryable: false, Err: fmt.Errorf("uplink fetch error %s: %s", parsed.Data.RouterConfig.Code, parsed.Data.RouterConfig.Message)}
	}
	return parsed.Data.RouterConfig.SupergraphSDL, parsed.Data.RouterConfig.ID, nil
}

func asNetworkError(err error, target **apperrors.NetworkError) bool {
	ne, ok := err.(*apperrors.NetworkError)
	if ok {
		*target = ne
	}
	return ok
}
