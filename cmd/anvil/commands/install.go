package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/anvil/internal/app"
)

func (c *CLI) newInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install [version]",
		Short: "Install a NeoForge version into the game directory",
		Long: `Install a NeoForge version into the game directory.

The version is a release such as 21.1.5, a version name such as
neoforge-21.1.5, or one of the aliases "latest" and "recommended".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				// Display command usage help without returning an error
				_ = cmd.Help()
				return nil
			}
			base, _ := cmd.Flags().GetString("base")

			name, err := c.app.Install(cmd.Context(), app.InstallOptions{
				Options: c.opts,
				Version: args[0],
				Base:    base,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), name)
			return nil
		},
	}
	cmd.Flags().StringP("base", "b", "", "Restrict latest/recommended to one game version")
	return cmd
}
