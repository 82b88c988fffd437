package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/raphaelgruber/soractl/internal/models"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	deleteForce bool
)

var deleteCmd = &cobra.Command{
	Use:   "delete <video-id>",
	Short: "Delete a video from your account",
	Long: `Delete a video on the server.

The locally remembered prompt and history are kept, so the video can
still be regenerated. Requires confirmation unless --force is used.

Examples:
  soractl delete video_123
  soractl delete video_123 --force`,
	Args:        cobra.ExactArgs(1),
	Annotations: apiAnnotation,
	RunE:        runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "skip confirmation")
}

var errNotInteractive = errors.New("stdin is not a terminal; use --force to skip confirmation")

func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	video, err := videoSvc.CheckStatus(ctx, args[0])
	if err != nil {
		return err
	}

	confirm := func(context.Context, models.Video) (bool, error) { return true, nil }
	if !deleteForce {
		if !stdinIsTerminal() {
			return errNotInteractive
		}
		confirm = stdinConfirmer(os.Stdin, os.Stdout)
	}

	deleted, err := videoSvc.Delete(ctx, *video, confirm)
	if err != nil {
		return err
	}
	if !deleted {
		fmt.Println("Cancelled.")
		return nil
	}
	fmt.Printf("Deleted: %s\n", video.ID)
	return nil
}

// stdinConfirmer asks a [y/N] question on out and reads the answer from in.
func stdinConfirmer(in io.Reader, out io.Writer) func(context.Context, models.Video) (bool, error) {
	return func(_ context.Context, v models.Video) (bool, error) {
		return askYesNo(in, out, fmt.Sprintf("About to delete: %s [%s]\nThis cannot be undone.\n\nContinue?", v.ID, v.Status))
	}
}

// askYesNo prints question followed by [y/N] and accepts y or yes.
func askYesNo(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N]: ", question)

	reader := bufio.NewReader(in)
	response, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read input: %w", err)
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}
