// Package service provides the video lifecycle actions of soractl.
package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/raphaelgruber/soractl/internal/client"
	"github.com/raphaelgruber/soractl/internal/errmsg"
	"github.com/raphaelgruber/soractl/internal/models"
	"github.com/raphaelgruber/soractl/internal/prompts"
)

// VideoAPI is the subset of the provider client the actions need.
type VideoAPI interface {
	CreateVideo(ctx context.Context, req models.CreateVideoRequest) (*models.Video, error)
	ListVideos(ctx context.Context, params client.ListParams) (*models.VideoList, error)
	GetVideo(ctx context.Context, id string) (*models.Video, error)
	DeleteVideo(ctx context.Context, id string) error
	DownloadVideo(ctx context.Context, id string) ([]byte, error)
	VideoPageURL(id string) string
}

// ArtifactWriter persists downloaded bytes and returns where they went.
type ArtifactWriter interface {
	Save(ctx context.Context, videoID string, data []byte) (string, error)
}

// Confirmer is the yes/no gate asked before a remote delete.
type Confirmer func(ctx context.Context, v models.Video) (bool, error)

// VideoService composes the provider client with the local prompt stores.
//
// The stores do unguarded read-modify-write cycles on shared blobs; the
// service holds writeMu around every store write so one process never
// interleaves two of them.
type VideoService struct {
	api          VideoAPI
	associations *prompts.AssociationStore
	history      *prompts.HistoryStore
	downloads    ArtifactWriter
	logger       *slog.Logger
	now          func() time.Time
	writeMu      sync.Mutex
}

// NewVideoService creates the lifecycle actions.
func NewVideoService(
	api VideoAPI,
	associations *prompts.AssociationStore,
	history *prompts.HistoryStore,
	downloads ArtifactWriter,
	logger *slog.Logger,
) *VideoService {
	if logger == nil {
		logger = slog.Default()
	}
	return &VideoService{
		api:          api,
		associations: associations,
		history:      history,
		downloads:    downloads,
		logger:       logger,
		now:          time.Now,
	}
}

// =============================================================================
// SUBMIT / REGENERATE
// =============================================================================

// Submit validates settings, creates the remote job and records its prompt.
// Unset model, size and seconds take the provider defaults.
func (s *VideoService) Submit(ctx context.Context, settings models.GenerationSettings) (*models.Video, error) {
	return s.submit(ctx, settings, "Failed to Create Video")
}

func (s *VideoService) submit(ctx context.Context, settings models.GenerationSettings, title string) (*models.Video, error) {
	if strings.TrimSpace(settings.Prompt) == "" {
		return nil, invalid("Prompt Required", "Please enter a description for your video", ErrEmptyPrompt)
	}
	settings = settings.WithDefaults()
	if !models.ValidDuration(settings.Seconds) {
		return nil, invalid("Invalid Duration", errmsg.InvalidDuration, ErrInvalidDuration)
	}

	video, err := s.api.CreateVideo(ctx, models.CreateVideoRequest{
		Prompt:  settings.Prompt,
		Model:   settings.Model,
		Size:    settings.Size,
		Seconds: settings.Seconds,
	})
	if err != nil {
		s.logger.Error("create video failed", "error", err)
		return nil, failure(title, err)
	}

	// Association and history are independent: each logs and swallows its own failure.
	s.writeMu.Lock()
	s.associations.Save(ctx, video.ID, settings)
	s.history.Record(ctx, settings)
	s.writeMu.Unlock()

	s.logger.Info("video generation started", "video_id", video.ID, "model", settings.Model)
	return video, nil
}

// Regenerate submits a new job with the settings that produced v. The job
// record wins; the association store is the fallback. v itself is untouched.
func (s *VideoService) Regenerate(ctx context.Context, v models.Video) (*models.Video, error) {
	settings, ok := s.resolveSettings(ctx, v)
	if !ok {
		return nil, invalid("Cannot Regenerate", "This video doesn't have an associated prompt to regenerate from", ErrCannotRegenerate)
	}
	s.logger.Info("regenerating video", "original_video_id", v.ID)
	return s.submit(ctx, settings, "Regeneration Failed")
}

// RegenerateFromHistory submits a new job with the entry's latest settings.
func (s *VideoService) RegenerateFromHistory(ctx context.Context, entry models.PromptHistoryEntry) (*models.Video, error) {
	return s.submit(ctx, entry.Settings(), "Failed to Create Video")
}

// =============================================================================
// STATUS / LIST
// =============================================================================

// CheckStatus is a live read of the job; nothing is cached locally.
func (s *VideoService) CheckStatus(ctx context.Context, id string) (*models.Video, error) {
	video, err := s.api.GetVideo(ctx, id)
	if err != nil {
		return nil, failure("Failed to Check Status", err)
	}
	return video, nil
}

// Filter selects jobs by lifecycle state.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterDrafts    Filter = "drafts" // queued or in progress
	FilterCompleted Filter = "completed"
	FilterFailed    Filter = "failed"
)

// Filters lists the accepted filter values.
var Filters = []Filter{FilterAll, FilterDrafts, FilterCompleted, FilterFailed}

// Match reports whether status passes the filter. Unknown filters match everything.
func (f Filter) Match(status models.VideoStatus) bool {
	switch f {
	case FilterDrafts:
		return status.Pending()
	case FilterCompleted:
		return status == models.StatusCompleted
	case FilterFailed:
		return status == models.StatusFailed
	default:
		return true
	}
}

// DefaultListLimit is the page size requested when ListOptions.Limit is zero.
const DefaultListLimit = 100

// ListOptions configures ListVideos.
type ListOptions struct {
	Limit         int
	StartingAfter string
	EndingBefore  string
	Filter        Filter
	Search        string // case-insensitive substring of the resolved prompt
}

// PromptSource tells where a resolved prompt came from.
type PromptSource string

const (
	SourceNone        PromptSource = ""
	SourceJob         PromptSource = "job"
	SourceAssociation PromptSource = "association"
)

// VideoSummary is a job enriched with local knowledge.
type VideoSummary struct {
	Video        models.Video
	Prompt       string
	PromptSource PromptSource
	ExpiresAt    time.Time
	Expired      bool // advisory; the provider decides
}

// VideoPage is one filtered page of summaries.
type VideoPage struct {
	Videos  []VideoSummary
	HasMore bool
}

// ListVideos fetches one page and resolves each job's prompt.
func (s *VideoService) ListVideos(ctx context.Context, opts ListOptions) (*VideoPage, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	list, err := s.api.ListVideos(ctx, client.ListParams{
		Limit:         limit,
		StartingAfter: opts.StartingAfter,
		EndingBefore:  opts.EndingBefore,
	})
	if err != nil {
		return nil, failure("Failed to Load Videos", err)
	}

	search := strings.ToLower(strings.TrimSpace(opts.Search))
	now := s.now()
	page := &VideoPage{Videos: []VideoSummary{}, HasMore: list.HasMore}
	for _, v := range list.Data {
		if !opts.Filter.Match(v.Status) {
			continue
		}
		prompt, source := s.resolvePrompt(ctx, v)
		// Jobs without any known prompt are kept: there is nothing to match against.
		if search != "" && prompt != "" && !strings.Contains(strings.ToLower(prompt), search) {
			continue
		}
		page.Videos = append(page.Videos, VideoSummary{
			Video:        v,
			Prompt:       prompt,
			PromptSource: source,
			ExpiresAt:    v.ExpiresAt(),
			Expired:      v.Expired(now),
		})
	}
	return page, nil
}

// =============================================================================
// DOWNLOAD / COPY
// =============================================================================

// DownloadResult describes a saved artifact.
type DownloadResult struct {
	Path      string
	Bytes     int
	ExpiresAt time.Time
}

// Download saves the artifact of a completed job. v is the caller's snapshot;
// the job is re-fetched before any bytes are transferred and the download is
// aborted with a *StatusChangedError if it is no longer completed.
func (s *VideoService) Download(ctx context.Context, v models.Video) (*DownloadResult, error) {
	if v.Status != models.StatusCompleted {
		return nil, invalid("Video Not Ready", "Video must be completed before downloading", ErrNotReady)
	}
	pageURL := s.api.VideoPageURL(v.ID)
	s.logger.Info("downloading video", "video_id", v.ID, "status", v.Status)

	current, err := s.api.GetVideo(ctx, v.ID)
	if err != nil {
		return nil, s.downloadFailure(v.ID, pageURL, err)
	}
	if current.Status != models.StatusCompleted {
		changed := &StatusChangedError{VideoID: v.ID, Status: current.Status}
		return nil, &ActionError{Title: "Video Not Ready", Message: changed.Error(), Err: changed}
	}

	data, err := s.api.DownloadVideo(ctx, v.ID)
	if err != nil {
		return nil, s.downloadFailure(v.ID, pageURL, err)
	}
	path, err := s.downloads.Save(ctx, v.ID, data)
	if err != nil {
		return nil, s.downloadFailure(v.ID, pageURL, err)
	}

	s.logger.Info("video downloaded", "video_id", v.ID, "path", path, "bytes", len(data))
	return &DownloadResult{Path: path, Bytes: len(data), ExpiresAt: current.ExpiresAt()}, nil
}

func (s *VideoService) downloadFailure(id, pageURL string, err error) *ActionError {
	actionErr := failure("Download Failed", err)
	actionErr.URL = pageURL
	s.logger.Error("download video failed", "video_id", id, "error", actionErr.Message)
	return actionErr
}

// CopyURL returns the browser page URL of a completed job.
func (s *VideoService) CopyURL(v models.Video) (string, error) {
	if v.Status != models.StatusCompleted {
		return "", invalid("Video Not Ready", "Video must be completed to get URL", ErrNotReady)
	}
	return s.api.VideoPageURL(v.ID), nil
}

// CopyPrompt returns the prompt of v, falling back to the association store.
func (s *VideoService) CopyPrompt(ctx context.Context, v models.Video) (string, error) {
	prompt, _ := s.resolvePrompt(ctx, v)
	if prompt == "" {
		return "", invalid("No Prompt Available", "This video doesn't have an associated prompt", ErrNoPrompt)
	}
	return prompt, nil
}

// resolvePrompt tries the job record, then the association store.
func (s *VideoService) resolvePrompt(ctx context.Context, v models.Video) (string, PromptSource) {
	if v.Prompt != "" {
		return v.Prompt, SourceJob
	}
	if a, ok := s.associations.Get(ctx, v.ID); ok && a.Prompt != "" {
		return a.Prompt, SourceAssociation
	}
	return "", SourceNone
}

// resolveSettings takes every setting from the same source as the prompt.
func (s *VideoService) resolveSettings(ctx context.Context, v models.Video) (models.GenerationSettings, bool) {
	if v.Prompt != "" {
		return models.GenerationSettings{Prompt: v.Prompt, Model: v.Model, Size: v.Size, Seconds: v.Seconds}, true
	}
	if a, ok := s.associations.Get(ctx, v.ID); ok && a.Prompt != "" {
		return a.Settings(), true
	}
	return models.GenerationSettings{}, false
}

// =============================================================================
// DELETE / HISTORY
// =============================================================================

// Delete removes the remote job after confirm agrees. It reports false when
// the user declined. Local associations and history are kept.
func (s *VideoService) Delete(ctx context.Context, v models.Video, confirm Confirmer) (bool, error) {
	ok, err := confirm(ctx, v)
	if err != nil {
		return false, invalid("Delete Video", err.Error(), err)
	}
	if !ok {
		return false, nil
	}
	if err := s.api.DeleteVideo(ctx, v.ID); err != nil {
		s.logger.Error("delete video failed", "video_id", v.ID, "error", err)
		return false, failure("Failed to Delete Video", err)
	}
	s.logger.Info("video deleted", "video_id", v.ID)
	return true, nil
}

// History returns recorded prompts, most recently used first.
func (s *VideoService) History(ctx context.Context) []models.PromptHistoryEntry {
	return s.history.List(ctx)
}

// Association returns the stored prompt record for a video id.
func (s *VideoService) Association(ctx context.Context, videoID string) (*models.PromptAssociation, bool) {
	return s.associations.Get(ctx, videoID)
}

// ClearHistory drops every association and history entry.
func (s *VideoService) ClearHistory(ctx context.Context) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.associations.ClearAll(ctx)
}
