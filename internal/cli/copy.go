package cli

import (
	"context"
	"errors"
	"net/http"

	"github.com/raphaelgruber/soractl/internal/client"
	"github.com/raphaelgruber/soractl/internal/models"
	"github.com/spf13/cobra"
)

var noClipboard bool

var urlCmd = &cobra.Command{
	Use:   "url <video-id>",
	Short: "Copy the browser URL of a completed video",
	Long: `Print the sora.chatgpt.com page of a completed video and copy it to
the clipboard (OSC52 terminals).

Examples:
  soractl url video_123
  soractl url video_123 --no-clipboard`,
	Args:        cobra.ExactArgs(1),
	Annotations: apiAnnotation,
	RunE:        runURL,
}

var promptCmd = &cobra.Command{
	Use:   "prompt <video-id>",
	Short: "Copy the prompt that produced a video",
	Long: `Print the prompt of a video and copy it to the clipboard.

When the provider does not return the prompt, the locally remembered
one is used.

Examples:
  soractl prompt video_123`,
	Args:        cobra.ExactArgs(1),
	Annotations: apiAnnotation,
	RunE:        runPrompt,
}

func init() {
	urlCmd.Flags().BoolVar(&noClipboard, "no-clipboard", false, "only print, do not copy")
	promptCmd.Flags().BoolVar(&noClipboard, "no-clipboard", false, "only print, do not copy")
}

func runURL(cmd *cobra.Command, args []string) error {
	video, err := videoSvc.CheckStatus(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	url, err := videoSvc.CopyURL(*video)
	if err != nil {
		return err
	}
	copyToClipboard(url, !noClipboard)
	return nil
}

func runPrompt(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	video, err := lookupVideo(ctx, args[0])
	if err != nil {
		return err
	}
	prompt, err := videoSvc.CopyPrompt(ctx, *video)
	if err != nil {
		return err
	}
	copyToClipboard(prompt, !noClipboard)
	return nil
}

// lookupVideo fetches a job, standing in a bare record when the server no
// longer knows the id so local prompt lookups still work.
func lookupVideo(ctx context.Context, id string) (*models.Video, error) {
	video, err := videoSvc.CheckStatus(ctx, id)
	if err == nil {
		return video, nil
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		if _, ok := videoSvc.Association(ctx, id); ok {
			return &models.Video{ID: id}, nil
		}
	}
	return nil, err
}
