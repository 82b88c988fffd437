package cli

import (
	"os"
	"time"

	"github.com/spf13/cobra"
)

var statusWatch bool

var statusCmd = &cobra.Command{
	Use:   "status <video-id>",
	Short: "Check the status of a video",
	Long: `Check the current status of a video. Every check is a live request.

With --watch, status is re-checked every few seconds until the video completes
or fails. Press Ctrl+C to stop watching; the video keeps rendering.

Examples:
  soractl status video_123
  soractl status video_123 --watch`,
	Args:        cobra.ExactArgs(1),
	Annotations: apiAnnotation,
	RunE:        runStatus,
}

func init() {
	statusCmd.Flags().BoolVarP(&statusWatch, "watch", "w", false, "follow progress until the video finishes")
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	video, err := videoSvc.CheckStatus(ctx, args[0])
	if err != nil {
		return err
	}

	if statusWatch && !video.Status.Terminal() {
		return RunVideoProgress(ctx, videoSvc, video)
	}

	prompt, _ := videoSvc.CopyPrompt(ctx, *video)
	printVideo(os.Stdout, *video, prompt, time.Now())
	return nil
}
