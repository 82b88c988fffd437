package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var downloadCmd = &cobra.Command{
	Use:   "download <video-id>",
	Short: "Download a completed video",
	Long: `Download a completed video to the downloads directory
(SORA_DOWNLOAD_DIR, default ~/Downloads).

Videos can be downloaded for about an hour after they are created.

Examples:
  soractl download video_123`,
	Args:        cobra.ExactArgs(1),
	Annotations: apiAnnotation,
	RunE:        runDownload,
}

func runDownload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	video, err := videoSvc.CheckStatus(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Println("Downloading video... This may take a moment.")
	res, err := videoSvc.Download(ctx, *video)
	if err != nil {
		return err
	}

	fmt.Printf("%s Video downloaded\n", defaultTheme.completedStyle().Render("✓"))
	fmt.Printf("  Saved to %s (%d bytes)\n", res.Path, res.Bytes)
	if left := time.Until(res.ExpiresAt); left > 0 {
		fmt.Printf("  Remote copy available for %s\n", left.Round(time.Minute))
	}
	return nil
}
