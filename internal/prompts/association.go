// Package prompts keeps the local prompt cache: which prompt produced which
// video, and which prompts were used recently.
package prompts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/raphaelgruber/soractl/internal/kv"
	"github.com/raphaelgruber/soractl/internal/models"
)

// Blob keys in the key-value store.
const (
	AssociationsKey = "sora-video-prompts"
	HistoryKey      = "sora-prompt-history"
)

// errCorrupt marks a blob that was read but could not be parsed. Writers
// replace such a blob; store read failures abort the write instead.
var errCorrupt = errors.New("unparsable blob")

// AssociationStore maps video ids to the prompt and settings that created them.
// Every call is a full read-parse-mutate-write round trip; callers serialize writers.
type AssociationStore struct {
	store  kv.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewAssociationStore creates an association store on top of store.
func NewAssociationStore(store kv.Store, logger *slog.Logger) *AssociationStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &AssociationStore{store: store, logger: logger, now: time.Now}
}

// Save upserts the association for videoID. Persistence failures are logged
// and swallowed.
func (s *AssociationStore) Save(ctx context.Context, videoID string, settings models.GenerationSettings) {
	all, err := s.load(ctx)
	switch {
	case errors.Is(err, errCorrupt):
		s.logger.Warn("associations unreadable, starting fresh", "error", err)
		all = map[string]models.PromptAssociation{}
	case err != nil:
		s.logger.Error("failed to save prompt", "video_id", videoID, "error", err)
		return
	}

	all[videoID] = models.PromptAssociation{
		VideoID:   videoID,
		Prompt:    settings.Prompt,
		Model:     settings.Model,
		Size:      settings.Size,
		Seconds:   settings.Seconds,
		CreatedAt: s.now().UTC(),
	}

	data, err := json.Marshal(all)
	if err != nil {
		s.logger.Error("failed to encode associations", "video_id", videoID, "error", err)
		return
	}
	if err := s.store.Set(ctx, AssociationsKey, string(data)); err != nil {
		s.logger.Error("failed to save prompt", "video_id", videoID, "error", err)
		return
	}
	s.logger.Debug("prompt saved for video", "video_id", videoID, "prompt_length", len(settings.Prompt))
}

// Get returns the association for videoID. A missing or unreadable blob and an
// unknown id all report false.
func (s *AssociationStore) Get(ctx context.Context, videoID string) (*models.PromptAssociation, bool) {
	all, err := s.load(ctx)
	if err != nil {
		s.logger.Error("failed to get prompt", "video_id", videoID, "error", err)
		return nil, false
	}
	a, ok := all[videoID]
	if !ok {
		return nil, false
	}
	return &a, true
}

// ClearAll removes both the association and the history blobs. Each key is
// attempted even when an earlier removal fails.
func (s *AssociationStore) ClearAll(ctx context.Context) {
	cleared := true
	for _, key := range []string{AssociationsKey, HistoryKey} {
		if err := s.store.Remove(ctx, key); err != nil {
			s.logger.Error("failed to clear prompt storage", "key", key, "error", err)
			cleared = false
		}
	}
	if cleared {
		s.logger.Debug("prompt storage cleared")
	}
}

func (s *AssociationStore) load(ctx context.Context) (map[string]models.PromptAssociation, error) {
	raw, found, err := s.store.Get(ctx, AssociationsKey)
	if err != nil {
		return nil, err
	}
	all := map[string]models.PromptAssociation{}
	if !found || raw == "" {
		return all, nil
	}
	if err := json.Unmarshal([]byte(raw), &all); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errCorrupt, AssociationsKey, err)
	}
	if all == nil {
		all = map[string]models.PromptAssociation{}
	}
	return all, nil
}
