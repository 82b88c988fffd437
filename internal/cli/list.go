package cli

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/raphaelgruber/soractl/internal/service"
	"github.com/spf13/cobra"
)

var (
	listFilter string
	listSearch string
	listLimit  int
	listAfter  string
	listBefore string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List your videos",
	Long: `List videos with optional status filter and prompt search.

Filters: all, drafts (queued or in progress), completed, failed.
Search matches the prompt case-insensitively; videos whose prompt is
unknown are always shown.

Examples:
  soractl list
  soractl list --filter drafts
  soractl list --search fox
  soractl list --limit 20 --after video_123`,
	Annotations: apiAnnotation,
	RunE:        runList,
}

func init() {
	listCmd.Flags().StringVarP(&listFilter, "filter", "f", string(service.FilterAll), "status filter")
	listCmd.Flags().StringVarP(&listSearch, "search", "q", "", "search prompts")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", service.DefaultListLimit, "max videos to fetch")
	listCmd.Flags().StringVar(&listAfter, "after", "", "list videos after this id")
	listCmd.Flags().StringVar(&listBefore, "before", "", "list videos before this id")
}

func runList(cmd *cobra.Command, args []string) error {
	filter := service.Filter(strings.ToLower(listFilter))
	if !slices.Contains(service.Filters, filter) {
		return fmt.Errorf("unknown filter %q (want all, drafts, completed or failed)", listFilter)
	}

	page, err := videoSvc.ListVideos(cmd.Context(), service.ListOptions{
		Limit:         listLimit,
		StartingAfter: listAfter,
		EndingBefore:  listBefore,
		Filter:        filter,
		Search:        listSearch,
	})
	if err != nil {
		return err
	}

	if len(page.Videos) == 0 {
		if listSearch != "" {
			fmt.Println("No videos found. Try a different search term.")
		} else {
			fmt.Println("No videos yet. Create your first one with 'soractl create'.")
		}
		return nil
	}

	now := time.Now()
	fmt.Printf("Videos (%d):\n\n", len(page.Videos))
	for _, s := range page.Videos {
		printVideo(os.Stdout, s.Video, s.Prompt, now)
		fmt.Println()
	}
	if page.HasMore {
		last := page.Videos[len(page.Videos)-1].Video.ID
		fmt.Printf("More videos available: soractl list --after %s\n", last)
	}
	return nil
}
