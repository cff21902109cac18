// cmd/completion.go
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/zhang-bin/ludo-framework-sub000/internal/queue"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for ludo.

  $ source <(ludo completion bash)
  $ ludo completion zsh > "${fpath[1]}/_ludo"
  $ ludo completion fish | source
  PS> ludo completion powershell | Out-String | Invoke-Expression

Channel arguments of reload and flush complete to the valid roles.`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletionV2(os.Stdout, true)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		default:
			return rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
		}
	},
}

// completeChannels offers roles for the single optional channel argument.
func completeChannels(roles ...string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return roles, cobra.ShellCompDirectiveNoFileComp
	}
}

func init() {
	rootCmd.AddCommand(completionCmd)
	reloadCmd.ValidArgsFunction = completeChannels(queue.ChannelTimeout, queue.ChannelWaiting)
	flushCmd.ValidArgsFunction = completeChannels(queue.Roles()...)
}
