package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doyel/gantt/pkg/layout"
	"github.com/doyel/gantt/pkg/layout/route"
)

var completionShells = []string{"bash", "zsh", "fish", "powershell"}

func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Print a shell completion script",
		Long: `Print a completion script for gantt to stdout.

Besides subcommand names (render, layout, view, add-task, bounds, serve),
the script completes --router and --duplicates values and dataset paths.

  bash        source <(gantt completion bash)
  zsh         gantt completion zsh > "${fpath[1]}/_gantt"
  fish        gantt completion fish > ~/.config/fish/completions/gantt.fish
  powershell  gantt completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             completionShells,
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, out := cmd.Root(), cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, true)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(out)
			}
			return fmt.Errorf("unsupported shell %q", args[0])
		},
	}
}

// registerValueCompletions offers the fixed vocabularies of the layout flags.
func registerValueCompletions(cmd *cobra.Command) {
	fixed := map[string][]string{
		"router":     {route.NameCurved, route.NameElbow},
		"duplicates": {string(layout.LastWriteWins), string(layout.RejectDuplicates)},
	}
	for flag, values := range fixed {
		if cmd.Flags().Lookup(flag) == nil {
			continue
		}
		_ = cmd.RegisterFlagCompletionFunc(flag, cobra.FixedCompletions(values, cobra.ShellCompDirectiveNoFileComp))
	}
}
