// Package manifest polls a persisted-query manifest (a JSON document
// mapping operation id -> GraphQL document text) and emits
// serverstate.OperationsUpdated events, one RawOperation per manifest
// entry. Grounded on original_source/.../runtime/operation_source.rs's
// persisted-query manifest variant. Uses a doubling-interval retry instead
// of uplink's exponential backoff, since a manifest poll failure usually
// means "not published yet" rather than a transient network blip.
package manifest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-logr/logr"

	"github.com/graphql-mcp/bridge/internal/apperrors"
	"github.com/graphql-mcp/bridge/internal/compiler"
	"github.com/graphql-mcp/bridge/internal/serverstate"
)

// Config configures the persisted-query manifest poller.
type Config struct {
	URL          string
	PollInterval time.Duration
	MaxInterval  time.Duration
}

type manifestEntry struct {
	ID   string `json:"id"`
	Body string `json:"body"`
	Name string `json:"name"`
}

type manifestDocument struct {
	Operations []manifestEntry `json:"operations"`
}

// Poll runs until ctx is canceled, re-fetching the manifest at an interval
// that doubles (capped at cfg.MaxInterval) after each consecutive failure
// and resets to cfg.PollInterval after a success.
func Poll(ctx context.Context, cfg Config, out chan<- serverstate.Event, logger logr.Logger) {
	defer close(out)

	interval := cfg.PollInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	maxInterval := cfg.MaxInterval
	if maxInterval <= 0 {
		maxInterval = 10 * time.Minute
	}
	client := &http.Client{Timeout: 15 * time.Second}

	current := interval
	for {
		ops, err := fetch(ctx, client, cfg.URL)
		if err != nil {
			logger.Error(err, "persisted query manifest poll failed", "url", cfg.URL, "next_retry_in", current)
			current *= 2
			if current > maxInterval {
				current = maxInterval
			}
		} else {
			current = interval
			select {
			case out <- serverstate.OperationsUpdated{Operations: ops}:
			case <-ctx.Done():
				return
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(current):
		}
	}
}

func fetch(ctx context.Context, client *http.Client, url string) ([]compiler.RawOperation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &apperrors.NetworkError{URL: url, Retryable: true, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &apperrors.NetworkError{URL: url, Retryable: true, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &apperrors.NetworkError{URL: url, Retryable: resp.StatusCode >= 500, Err: &httpStatusError{resp.StatusCode}}
	}

	var doc manifestDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, &apperrors.NetworkError{URL: url, Retryable: false, Err: err}
	}

	raws := make([]compiler.RawOperation, 0, len(doc.Operations))
	for _, entry := range doc.Operations {
		raws = append(raws, compiler.RawOperation{
			SourceText:       entry.Body,
			PersistedQueryID: entry.ID,
			SourcePath:       "manifest:" + entry.Name,
		})
	}
	return raws, nil
}

type httpStatusError struct{ code int }

func (e *httpStatusError) Error() string {
	return "persisted query manifest request failed"
}
