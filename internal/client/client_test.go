package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/raphaelgruber/soractl/internal/client"
	"github.com/raphaelgruber/soractl/internal/metrics"
	"github.com/raphaelgruber/soractl/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*client.Client, *metrics.Collector) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	m := metrics.NewCollector()
	c, err := client.New(client.Options{
		APIKey:       "sk-test",
		BaseURL:      srv.URL + "/v1/",
		SiteURL:      "https://sora.example.com",
		Organization: "org-123",
		Metrics:      m,
	})
	require.NoError(t, err)
	return c, m
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := client.New(client.Options{APIKey: "  "})
	assert.ErrorIs(t, err, client.ErrMissingAPIKey)
}

func TestCreateVideoSendsAuthAndBody(t *testing.T) {
	c, m := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/videos", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "org-123", r.Header.Get("OpenAI-Organization"))
		assert.NotEmpty(t, r.Header.Get("X-Client-Request-Id"))

		var req models.CreateVideoRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "a red fox", req.Prompt)
		assert.Equal(t, "sora-2", req.Model)
		assert.Equal(t, "8", req.Seconds)

		_, _ = io.WriteString(w, `{"id":"video_1","object":"video","created_at":1700000000,"status":"queued","model":"sora-2","seconds":"8","size":"1280x720"}`)
	})

	v, err := c.CreateVideo(context.Background(), models.CreateVideoRequest{
		Prompt:  "a red fox",
		Model:   "sora-2",
		Size:    "1280x720",
		Seconds: "8",
	})
	require.NoError(t, err)
	assert.Equal(t, "video_1", v.ID)
	assert.Equal(t, models.StatusQueued, v.Status)

	snap := m.Snapshot()
	require.Len(t, snap.Operations, 1)
	assert.Equal(t, metrics.OpCreateVideo, snap.Operations[0].Name)
	assert.Equal(t, int64(0), snap.Operations[0].Errors)
}

func TestOrganizationHeaderOmittedWhenUnset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present := r.Header["Openai-Organization"]
		assert.False(t, present)
		_, _ = io.WriteString(w, `{"id":"video_1","status":"queued"}`)
	}))
	defer srv.Close()

	c, err := client.New(client.Options{APIKey: "sk-test", BaseURL: srv.URL})
	require.NoError(t, err)
	_, err = c.GetVideo(context.Background(), "video_1")
	require.NoError(t, err)
}

func TestErrorNormalization(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantMsg  string
		wantType string
	}{
		{
			name:     "nested message",
			status:   http.StatusBadRequest,
			body:     `{"error":{"message":"Invalid value: '3'. Supported values are: '4', '8', '12'","type":"invalid_request_error"}}`,
			wantMsg:  "Invalid value: '3'. Supported values are: '4', '8', '12'",
			wantType: "invalid_request_error",
		},
		{
			name:    "non json body",
			status:  http.StatusBadGateway,
			body:    "<html>bad gateway</html>",
			wantMsg: "HTTP 502: Bad Gateway",
		},
		{
			name:    "json without error field",
			status:  http.StatusUnauthorized,
			body:    `{"detail":"nope"}`,
			wantMsg: "HTTP 401: Unauthorized",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, m := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := c.GetVideo(context.Background(), "video_1")
			require.Error(t, err)

			var apiErr *client.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
			assert.Equal(t, tt.wantType, apiErr.Type)

			snap := m.Snapshot()
			require.Len(t, snap.Operations, 1)
			assert.Equal(t, int64(1), snap.Operations[0].Errors)
		})
	}
}

func TestListVideosQueryParams(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/videos", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "20", q.Get("limit"))
		assert.Equal(t, "video_9", q.Get("starting_after"))
		assert.False(t, q.Has("ending_before"))
		_, _ = io.WriteString(w, `{"object":"list","data":[{"id":"video_10","status":"completed"}],"has_more":true}`)
	})

	list, err := c.ListVideos(context.Background(), client.ListParams{Limit: 20, StartingAfter: "video_9"})
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	assert.Equal(t, "video_10", list.Data[0].ID)
	assert.True(t, list.HasMore)
}

func TestListVideosEmptyData(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		_, _ = io.WriteString(w, `{"object":"list"}`)
	})

	list, err := c.ListVideos(context.Background(), client.ListParams{})
	require.NoError(t, err)
	assert.NotNil(t, list.Data)
	assert.Empty(t, list.Data)
}

func TestDeleteVideoNoContent(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/v1/videos/video_1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.DeleteVideo(context.Background(), "video_1"))
}

func TestDeleteVideoTwiceSurfacesServerError(t *testing.T) {
	deleted := false
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if deleted {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"error":{"message":"Video not found"}}`)
			return
		}
		deleted = true
		_, _ = io.WriteString(w, `{"id":"video_1","deleted":true}`)
	})

	require.NoError(t, c.DeleteVideo(context.Background(), "video_1"))
	err := c.DeleteVideo(context.Background(), "video_1")
	require.Error(t, err)
	assert.Equal(t, "Video not found", err.Error())
}

func TestDownloadVideo(t *testing.T) {
	payload := []byte{0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p'}
	c, m := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/videos/video_1/content", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = w.Write(payload)
	})

	data, err := c.DownloadVideo(context.Background(), "video_1")
	require.NoError(t, err)
	assert.Equal(t, payload, data)

	snap := m.Snapshot()
	require.Len(t, snap.Operations, 1)
	assert.Equal(t, int64(len(payload)), snap.Operations[0].Bytes)
}

func TestDownloadVideoErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMsg     string
		wantExpired bool
	}{
		{
			name:        "expired",
			status:      http.StatusNotFound,
			body:        "Video content is no longer available. Downloads expire after 1 hour.",
			wantMsg:     "Failed to download video (404): Video content is no longer available. Downloads expire after 1 hour.",
			wantExpired: true,
		},
		{
			name:    "empty body uses status text",
			status:  http.StatusInternalServerError,
			wantMsg: "Failed to download video (500): Internal Server Error",
		},
		{
			name:    "json body uses nested message",
			status:  http.StatusForbidden,
			body:    `{"error":{"message":"Forbidden"}}`,
			wantMsg: "Failed to download video (403): Forbidden",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := c.DownloadVideo(context.Background(), "video_1")
			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, err.Error())
			assert.Equal(t, tt.wantExpired, errors.Is(err, client.ErrContentExpired))
		})
	}
}

func TestTransportErrorIsWrapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c, err := client.New(client.Options{APIKey: "sk-test", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.GetVideo(context.Background(), "video_1")
	require.Error(t, err)
	var apiErr *client.APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestURLBuilders(t *testing.T) {
	c, err := client.New(client.Options{APIKey: "sk-test"})
	require.NoError(t, err)

	assert.Equal(t, "https://api.openai.com/v1/videos/video_1/content", c.VideoContentURL("video_1"))
	assert.Equal(t, "https://sora.chatgpt.com/video/video_1", c.VideoPageURL("video_1"))
	assert.Equal(t, "https://sora.chatgpt.com/drafts", c.DraftsURL())
	assert.Equal(t, "https://sora.chatgpt.com/profile/@alice", c.ProfileURL("alice"))
	assert.Equal(t, "https://sora.chatgpt.com/profile/@alice", c.ProfileURL("@alice"))
}

func TestLinksWithoutCredentials(t *testing.T) {
	l := client.NewLinks("https://sora.example.com/ ")
	assert.Equal(t, "https://sora.example.com/drafts", l.DraftsURL())
	assert.Equal(t, "https://sora.example.com/video/video_1", l.VideoPageURL("video_1"))
	assert.Equal(t, "https://sora.chatgpt.com/drafts", client.NewLinks("").DraftsURL())
}
