package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/anvil/internal/app"
)

func (c *CLI) newPatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patch <class>",
		Short: "Patch an extracted installer entry point class",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			serverMeansClient, _ := cmd.Flags().GetBool("server-means-client")

			report, err := c.app.Patch(cmd.Context(), app.PatchOptions{
				Input:             args[0],
				Output:            output,
				ServerMeansClient: serverMeansClient,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d edits, %d patterns not found\n", len(report.Edits), len(report.Missed))
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "", "Write the patched class here instead of in place")
	cmd.Flags().Bool("server-means-client", false, "Redirect the server action to the client action")
	return cmd
}
