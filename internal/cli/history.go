package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var (
	historyForce bool
	historyWatch bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show and reuse previous prompts",
	Long: `Show prompts used before, most recent first.

Subcommands:
  list   List prompt history (default)
  use    Start a new video from a history entry
  clear  Forget all remembered prompts

Examples:
  soractl history
  soractl history use 1
  soractl history clear --force`,
	RunE: runHistoryList,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List prompt history",
	RunE:  runHistoryList,
}

var historyUseCmd = &cobra.Command{
	Use:         "use <number>",
	Short:       "Generate a video from a history entry",
	Args:        cobra.ExactArgs(1),
	Annotations: apiAnnotation,
	RunE:        runHistoryUse,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget all remembered prompts and video associations",
	RunE:  runHistoryClear,
}

func init() {
	historyUseCmd.Flags().BoolVarP(&historyWatch, "watch", "w", false, "follow progress until the video finishes")
	historyClearCmd.Flags().BoolVarP(&historyForce, "force", "f", false, "skip confirmation")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyUseCmd)
	historyCmd.AddCommand(historyClearCmd)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	entries := videoSvc.History(cmd.Context())
	if len(entries) == 0 {
		fmt.Println("No prompt history yet.")
		return nil
	}

	fmt.Printf("Prompt history (%d):\n\n", len(entries))
	for i, e := range entries {
		fmt.Printf("%3d. %s\n", i+1, truncate(e.Prompt, 100))
		fmt.Printf("     %s, %s, %ss · used %dx · last %s\n",
			e.Model, e.Size, e.Seconds, e.UseCount, e.LastUsed.Local().Format(time.DateTime))
	}
	return nil
}

func runHistoryUse(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	n, err := strconv.Atoi(args[0])
	entries := videoSvc.History(ctx)
	if err != nil || n < 1 || n > len(entries) {
		return fmt.Errorf("history entry %q not found (have %d)", args[0], len(entries))
	}

	video, err := videoSvc.RegenerateFromHistory(ctx, entries[n-1])
	if err != nil {
		return err
	}
	fmt.Printf("%s Video generation started: %s\n", defaultTheme.completedStyle().Render("✓"), video.ID)
	if historyWatch {
		return RunVideoProgress(ctx, videoSvc, video)
	}
	return nil
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	if !historyForce {
		ok, err := confirmClearHistory(os.Stdin, os.Stdout, stdinIsTerminal())
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Cancelled.")
			return nil
		}
	}
	videoSvc.ClearHistory(cmd.Context())
	fmt.Println("Prompt history cleared.")
	return nil
}

// confirmClearHistory uses the same gate as delete: no terminal, no prompt.
func confirmClearHistory(in io.Reader, out io.Writer, interactive bool) (bool, error) {
	if !interactive {
		return false, errNotInteractive
	}
	return askYesNo(in, out, "Forget all prompts and video associations?")
}
