package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newExternalsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "externals",
		Short: "List the external dependencies the graph references",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names, err := c.app.Externals(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range names {
				cmd.Println(name)
			}
			return nil
		},
	}
}
