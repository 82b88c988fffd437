package cli

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/raphaelgruber/soractl/internal/client"
	"github.com/spf13/cobra"
)

var openPrintOnly bool

var openCmd = &cobra.Command{
	Use:   "open",
	Short: "Open Sora pages in the browser",
	Long: `Open pages of the Sora web app.

Subcommands:
  drafts   Your drafts
  profile  A public profile (SORA_USERNAME by default)

Examples:
  soractl open drafts
  soractl open profile
  soractl open profile someone --print`,
}

var openDraftsCmd = &cobra.Command{
	Use:   "drafts",
	Short: "Open your drafts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return openURL(siteLinks().DraftsURL())
	},
}

var openProfileCmd = &cobra.Command{
	Use:   "profile [username]",
	Short: "Open a profile page",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username := cfg.Username
		if len(args) == 1 {
			username = args[0]
		}
		if username == "" {
			return fmt.Errorf("no username: pass one or set SORA_USERNAME")
		}
		return openURL(siteLinks().ProfileURL(username))
	},
}

func init() {
	openCmd.PersistentFlags().BoolVarP(&openPrintOnly, "print", "p", false, "print the URL instead of opening it")
	openCmd.AddCommand(openDraftsCmd)
	openCmd.AddCommand(openProfileCmd)
}

// siteLinks needs no API client; the open commands work without an API key.
func siteLinks() client.Links {
	return client.NewLinks(cfg.SiteURL)
}

func openURL(url string) error {
	fmt.Println(url)
	if openPrintOnly {
		return nil
	}
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open browser: %w", err)
	}
	return nil
}
