package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var regenerateWatch bool

var regenerateCmd = &cobra.Command{
	Use:   "regenerate <video-id>",
	Short: "Generate a new video with the same prompt and settings",
	Long: `Start a new generation using the prompt, model, size and duration of an
existing video. The original video is left untouched. Videos deleted on
the server can still be regenerated from the locally remembered prompt.

Examples:
  soractl regenerate video_123
  soractl regenerate video_123 --watch`,
	Args:        cobra.ExactArgs(1),
	Annotations: apiAnnotation,
	RunE:        runRegenerate,
}

func init() {
	regenerateCmd.Flags().BoolVarP(&regenerateWatch, "watch", "w", false, "follow progress until the video finishes")
}

func runRegenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	original, err := lookupVideo(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Println("Regenerating video... Starting new generation with same settings.")
	video, err := videoSvc.Regenerate(ctx, *original)
	if err != nil {
		return err
	}

	fmt.Printf("%s New video started: %s\n", defaultTheme.completedStyle().Render("✓"), video.ID)
	if regenerateWatch {
		return RunVideoProgress(ctx, videoSvc, video)
	}
	return nil
}
