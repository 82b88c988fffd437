package prompts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/raphaelgruber/soractl/internal/kv"
	"github.com/raphaelgruber/soractl/internal/models"
)

// MaxHistory caps the number of stored history entries.
const MaxHistory = 100

// HistoryStore records distinct prompts with their latest settings.
// The stored array is kept in insertion order: new prompts go to the front,
// re-used prompts are updated in place, and the tail is cut at MaxHistory.
type HistoryStore struct {
	store  kv.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewHistoryStore creates a history store on top of store.
func NewHistoryStore(store kv.Store, logger *slog.Logger) *HistoryStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &HistoryStore{store: store, logger: logger, now: time.Now}
}

// Record adds one usage of settings.Prompt. Persistence failures are logged
// and swallowed.
func (s *HistoryStore) Record(ctx context.Context, settings models.GenerationSettings) {
	history, err := s.load(ctx)
	switch {
	case errors.Is(err, errCorrupt):
		s.logger.Warn("prompt history unreadable, starting fresh", "error", err)
		history = nil
	case err != nil:
		s.logger.Error("failed to add to prompt history", "error", err)
		return
	}

	now := s.now().UTC()
	idx := -1
	for i := range history {
		if history[i].Prompt == settings.Prompt {
			idx = i
			break
		}
	}

	if idx >= 0 {
		e := &history[idx]
		e.LastUsed = now
		e.UseCount++
		e.Model = settings.Model
		e.Size = settings.Size
		e.Seconds = settings.Seconds
	} else {
		history = append([]models.PromptHistoryEntry{{
			Prompt:   settings.Prompt,
			Model:    settings.Model,
			Size:     settings.Size,
			Seconds:  settings.Seconds,
			LastUsed: now,
			UseCount: 1,
		}}, history...)
	}

	if len(history) > MaxHistory {
		history = history[:MaxHistory]
	}

	data, err := json.Marshal(history)
	if err != nil {
		s.logger.Error("failed to encode prompt history", "error", err)
		return
	}
	if err := s.store.Set(ctx, HistoryKey, string(data)); err != nil {
		s.logger.Error("failed to add to prompt history", "error", err)
	}
}

// List returns the history sorted by last use, most recent first.
// An unreadable blob yields an empty list.
func (s *HistoryStore) List(ctx context.Context) []models.PromptHistoryEntry {
	history, err := s.load(ctx)
	if err != nil {
		s.logger.Error("failed to get prompt history", "error", err)
		return []models.PromptHistoryEntry{}
	}
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].LastUsed.After(history[j].LastUsed)
	})
	return history
}

func (s *HistoryStore) load(ctx context.Context) ([]models.PromptHistoryEntry, error) {
	raw, found, err := s.store.Get(ctx, HistoryKey)
	if err != nil {
		return nil, err
	}
	history := []models.PromptHistoryEntry{}
	if !found || raw == "" {
		return history, nil
	}
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errCorrupt, HistoryKey, err)
	}
	if history == nil {
		history = []models.PromptHistoryEntry{}
	}
	return history, nil
}
