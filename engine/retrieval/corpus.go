package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	contractx "github.com/thanakit-dev/leadpilot/engine/contract"
)

// Knowledge corpora persist as one JSON blob per domain: <dir>/<domain>.json
// holding the full document slice, embeddings included, reloadable at
// startup.

// LoadCorpusDir loads every *.json corpus file under dir into the engine.
// Documents carrying embeddings are indexed as-is; the rest are embedded on
// the way in.
func (e *Engine) LoadCorpusDir(ctx context.Context, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read corpus dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		if err := e.loadCorpusFile(ctx, filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) loadCorpusFile(ctx context.Context, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read corpus file: %w", err)
	}

	var docs []contractx.Document
	if err := json.Unmarshal(raw, &docs); err != nil {
		return fmt.Errorf("decode corpus %s: %w", path, err)
	}

	domain := contractx.Domain(strings.TrimSuffix(filepath.Base(path), ".json"))
	if err := e.ReplaceKnowledge(ctx, domain, docs); err != nil {
		return err
	}
	log.Info().
		Str("domain", string(domain)).
		Int("documents", len(docs)).
		Msg("knowledge corpus loaded")
	return nil
}

// SaveCorpus writes one domain's full partition back to its JSON blob.
func (e *Engine) SaveCorpus(domain contractx.Domain, dir string) error {
	e.mu.RLock()
	docs := append([]contractx.Document(nil), e.docs[domain]...)
	e.mu.RUnlock()

	payload, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode corpus: %w", err)
	}
	path := filepath.Join(dir, string(domain)+".json")
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("write corpus file: %w", err)
	}
	return nil
}

// WatchCorpusDir reloads corpus files as they change on disk. Each reload
// replaces the domain partition and, through ReplaceKnowledge, invalidates
// that domain's query cache. Blocks until ctx is done.
func (e *Engine) WatchCorpusDir(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create corpus watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch corpus dir: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(event.Name, ".json") {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := e.loadCorpusFile(ctx, event.Name); err != nil {
				log.Warn().Err(err).Str("path", event.Name).Msg("corpus reload failed")
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("corpus watcher error")
		}
	}
}
