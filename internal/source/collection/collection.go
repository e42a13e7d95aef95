// Package collection polls a platform-API operation collection (a named,
// versioned bundle of GraphQL operations managed outside the repository)
// and emits serverstate.OperationsUpdated events whenever the collection's
// revision changes. Grounded on
// original_source/.../runtime/operation_source.rs's operation_collections
// variant; retry/backoff reuses cenkalti/backoff/v4 the same way
// internal/source/uplink does.
package collection

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
	"github.com/graphql-mcp/bridge/internal/compiler"
	"github.com/graphql-mcp/bridge/internal/serverstate"
)

// Config configures the operation collection poller.
type Config struct {
	URL          string
	APIKey       string
	CollectionID string
	PollInterval time.Duration
}

const collectionQuery = `
query FetchOperationCollection($collectionId: ID!) {
  operationCollection(id: $collectionId) {
    lastUpdatedAt
    operations {
      id
      name
      body
    }
  }
}`

type collectionResponse struct {
	Data struct {
		OperationCollection struct {
			LastUpdatedAt string `json:"lastUpdatedAt"`
			Operations    []struct {
				ID   string `json:"id"`
				Name string `json:"name"`
				Body string `json:"body"`
			} `json:"operations"`
		} `json:"operationCollection"`
	} `json:"data"`
}

// Poll runs until ctx is canceled, emitting an OperationsUpdated event each
// time the collection's lastUpdatedAt timestamp advances.
func Poll(ctx context.Context, cfg Config, out chan<- serverstate.Event, logger logr.Logger) {
	defer close(out)

	interval := cfg.PollInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}

	lastUpdatedAt := ""
	client := &http.Client{Timeout: 15 * time.Second}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	fetch := func() {
		bo := backoff.WithContext(backoff.NewExponentialBackOff(), ctx)
		err := backoff.Retry(func() error {
			ops, updatedAt, err := fetchOnce(ctx, client, cfg)
			if err != nil {
				var netErr *apperrors.NetworkError
				if ok := asNetworkError(err, &netErr); ok && !netErr.Retryable {
					return backoff.Permanent(err)
				}
				return err
			}
			if updatedAt == lastUpdatedAt {
				return nil
			}
			lastUpdatedAt = updatedAt
			select {
			case out <- serverstate.OperationsUpdated{Operations: ops}:
			case <-ctx.Done():
			}
			return nil
		}, bo)
		if err != nil && ctx.Err() == nil {
			logger.Error(err, "operation collection poll failed after retries", "url", cfg.URL, "collection_id", cfg.CollectionID)
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

func fetchOnce(ctx context.Context, client *http.Client, cfg Config) ([]compiler.RawOperation, string, error) {
	body, err := json.Marshal(map[string]interface{}{
		"query": collectionQuery,
		"variables": map[string]string{
			"collectionId": cfg.CollectionID,
		},
	})
	if err != nil {
		return nil, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.URL, bytes.NewReader(body))
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if cfg.APIKey != "" {
		req.Header.Set("X-Api-Key", cfg.APIKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", &apperrors.NetworkError{URL: cfg.URL, Retryable: true, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", &apperrors.NetworkError{URL: cfg.URL, Retryable: true, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", &apperrors.NetworkError{URL: cfg.URL, Retryable: resp.StatusCode >= 500, Err: fmt.Errorf("operation collection endpoint returned status %d", resp.StatusCode)}
	}

	var parsed collectionResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, "", &apperrors.NetworkError{URL: cfg.URL, Retryable: false, Err: err}
	}

	oc := parsed.Data.OperationCollection
	raws := make([]compiler.RawOperation, 0, len(oc.Operations))
	for _, op := range oc.Operations {
		raws = append(raws, compiler.RawOperation{
			SourceText: op.Body,
			SourcePath: "collection:" + cfg.CollectionID + ":" + op.Name,
		})
	}
	return raws, oc.LastUpdatedAt, nil
}

func asNetworkError(err error, target **apperrors.NetworkError) bool {
	ne, ok := err.(*apperrors.NetworkError)
	if ok {
		*target = ne
	}
	return ok
}
