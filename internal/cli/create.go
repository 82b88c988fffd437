package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/raphaelgruber/soractl/internal/models"
	"github.com/spf13/cobra"
)

var (
	createModel   string
	createSize    string
	createSeconds string
	createWatch   bool
)

var createCmd = &cobra.Command{
	Use:   "create <prompt>",
	Short: "Start generating a video",
	Long: `Start generating a video from a text prompt.

The prompt and settings are remembered locally so the video can be
regenerated later. Pass "-" to read the prompt from stdin.

Models:    sora-2, sora-2-pro
Sizes:     1280x720, 720x1280, 1792x1024, 1024x1792
Durations: 4, 8, 12 (seconds)

Examples:
  soractl create "a red fox running through snow"
  soractl create "city at night" --model sora-2-pro --size 720x1280 --seconds 12
  echo "ocean waves" | soractl create - --watch`,
	Args:        cobra.MinimumNArgs(1),
	Annotations: apiAnnotation,
	RunE:        runCreate,
}

func init() {
	createCmd.Flags().StringVarP(&createModel, "model", "m", models.DefaultModel, "generation model")
	createCmd.Flags().StringVarP(&createSize, "size", "s", models.DefaultSize, "output resolution")
	createCmd.Flags().StringVarP(&createSeconds, "seconds", "d", models.DefaultSeconds, "duration in seconds")
	createCmd.Flags().BoolVarP(&createWatch, "watch", "w", false, "follow progress until the video finishes")
}

func runCreate(cmd *cobra.Command, args []string) error {
	prompt, err := readPrompt(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	video, err := videoSvc.Submit(cmd.Context(), models.GenerationSettings{
		Prompt:  prompt,
		Model:   createModel,
		Size:    createSize,
		Seconds: createSeconds,
	})
	if err != nil {
		return err
	}

	fmt.Printf("%s Video generation started: %s\n", defaultTheme.completedStyle().Render("✓"), video.ID)
	if createWatch {
		return RunVideoProgress(cmd.Context(), videoSvc, video)
	}
	fmt.Printf("Use 'soractl status %s --watch' to follow progress.\n", video.ID)
	return nil
}

// readPrompt joins args into a prompt, or reads stdin when the only arg is "-".
func readPrompt(args []string, stdin io.Reader) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		if stdin == nil {
			stdin = os.Stdin
		}
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read prompt: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	return strings.TrimSpace(strings.Join(args, " ")), nil
}
