// Package models defines data structures for the soractl video controller.
package models

import (
	"slices"
	"time"
)

// VideoStatus is the server-side lifecycle state of a generation job.
type VideoStatus string

const (
	StatusQueued     VideoStatus = "queued"
	StatusInProgress VideoStatus = "in_progress"
	StatusCompleted  VideoStatus = "completed"
	StatusFailed     VideoStatus = "failed"
)

// Terminal reports whether no further transitions are expected.
func (s VideoStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Pending reports whether the job is still queued or rendering.
func (s VideoStatus) Pending() bool {
	return s == StatusQueued || s == StatusInProgress
}

// Defaults applied when a create request leaves a setting out.
const (
	DefaultModel   = "sora-2"
	DefaultSize    = "1280x720"
	DefaultSeconds = "8"
)

// DownloadWindow is how long after creation the provider keeps artifacts downloadable.
// The provider is authoritative; this value only drives the advisory expiry flag.
const DownloadWindow = time.Hour

var (
	// Models lists the generation models offered by the provider.
	Models = []string{"sora-2", "sora-2-pro"}
	// Sizes lists the supported output resolutions.
	Sizes = []string{"1280x720", "720x1280", "1792x1024", "1024x1792"}
	// Durations lists the accepted clip lengths in seconds, as the API expects them (strings).
	Durations = []string{"4", "8", "12"}
)

// ValidDuration reports whether seconds is one of the accepted durations.
func ValidDuration(seconds string) bool {
	return slices.Contains(Durations, seconds)
}

// VideoError is the failure detail attached to a failed job.
type VideoError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Video is a generation job as reported by the provider. It is read-only to this system.
type Video struct {
	ID        string      `json:"id"`
	Object    string      `json:"object,omitempty"`
	CreatedAt int64       `json:"created_at"`
	Status    VideoStatus `json:"status"`
	Model     string      `json:"model"`
	Progress  *int        `json:"progress,omitempty"`
	Seconds   string      `json:"seconds"`
	Size      string      `json:"size"`
	Prompt    string      `json:"prompt,omitempty"`
	Error     *VideoError `json:"error,omitempty"`
}

// ProgressPercent returns the reported progress, or zero when the server sent none.
func (v Video) ProgressPercent() int {
	if v.Progress == nil {
		return 0
	}
	return *v.Progress
}

// Created returns the creation timestamp as a time.Time.
func (v Video) Created() time.Time {
	return time.Unix(v.CreatedAt, 0)
}

// ExpiresAt is exactly one DownloadWindow after creation.
func (v Video) ExpiresAt() time.Time {
	return v.Created().Add(DownloadWindow)
}

// Expired reports whether the advisory download window has lapsed at now.
func (v Video) Expired(now time.Time) bool {
	return !now.Before(v.ExpiresAt())
}

// VideoList is one page of the list endpoint.
type VideoList struct {
	Data    []Video `json:"data"`
	Object  string  `json:"object,omitempty"`
	HasMore bool    `json:"has_more"`
}

// CreateVideoRequest is the body of POST /videos.
type CreateVideoRequest struct {
	Prompt  string `json:"prompt"`
	Model   string `json:"model"`
	Size    string `json:"size,omitempty"`
	Seconds string `json:"seconds,omitempty"`
}
