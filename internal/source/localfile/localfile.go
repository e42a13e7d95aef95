// Package localfile watches a local schema file and/or operations
// directory for changes, emitting serverstate.SchemaUpdated /
// OperationsUpdated events on save. Grounded on
// original_source/.../runtime/schema_source.rs's local file variant; the
// file-watch mechanism itself uses fsnotify in place of a hand-rolled poll
// loop, grounded on the same dependency surfaced via mcpany-core's go.mod
// and widely across other_examples/manifests/*.
package localfile

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-logr/logr"

	"github.com/graphql-mcp/bridge/internal/compiler"
	"github.com/graphql-mcp/bridge/internal/serverstate"
)

// Config configures the local file poller.
type Config struct {
	SchemaPath        string
	OperationsDir     string
	DebounceInterval time.Duration
}

// Watch runs until ctx is canceled, emitting an initial read of
// SchemaPath/OperationsDir followed by an event each time fsnotify reports
// a write.
func Watch(ctx context.Context, cfg Config, out chan<- serverstate.Event, logger logr.Logger) {
	defer close(out)

	debounce := cfg.DebounceInterval
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Error(err, "failed to start local file watcher")
		return
	}
	defer watcher.Close()

	if cfg.SchemaPath != "" {
		if err := watcher.Add(filepath.Dir(cfg.SchemaPath)); err != nil {
			logger.Error(err, "failed to watch schema directory", "path", cfg.SchemaPath)
		}
		emitSchema(cfg.SchemaPath, out, logger)
	}
	if cfg.OperationsDir != "" {
		if err := watcher.Add(cfg.OperationsDir); err != nil {
			logger.Error(err, "failed to watch operations directory", "path", cfg.OperationsDir)
		}
		emitOperations(cfg.OperationsDir, out, logger)
	}

	var debounceTimer *time.Timer
	pending := make(map[string]bool)
	resetTimer := func() {
		if debounceTimer == nil {
			debounceTimer = time.NewTimer(debounce)
		} else {
			debounceTimer.Reset(debounce)
		}
	}

	for {
		var timerC <-chan time.Time
		if debounceTimer != nil {
			timerC = debounceTimer.C
		}
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			pending[ev.Name] = true
			resetTimer()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Error(err, "file watcher error")
		case <-timerC:
			for path := range pending {
				if cfg.SchemaPath != "" && path == cfg.SchemaPath {
					emitSchema(cfg.SchemaPath, out, logger)
				}
				if cfg.OperationsDir != "" && filepath.Dir(path) == cfg.OperationsDir {
					emitOperations(cfg.OperationsDir, out, logger)
				}
			}
			pending = make(map[string]bool)
		}
	}
}

func emitSchema(path string, out chan<- serverstate.Event, logger logr.Logger) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error(err, "failed to read schema file", "path", path)
		return
	}
	out <- serverstate.SchemaUpdated{Schema: serverstate.SchemaState{SDL: string(data), LaunchID: "local:" + path}}
}

func emitOperations(dir string, out chan<- serverstate.Event, logger logr.Logger) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Error(err, "failed to read operations directory", "path", dir)
		return
	}
	raws := make([]compiler.RawOperation, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".graphql" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Error(err, "failed to read operation file", "path", path)
			continue
		}
		raws = append(raws, compiler.RawOperation{SourceText: string(data), SourcePath: path})
	}
	out <- serverstate.OperationsUpdated{Operations: raws}
}
