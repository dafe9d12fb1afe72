package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/amoghd24/footagents-ai-game/character"
)

func newCharactersCmd(_ *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "characters",
		Short: "List the available legends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog := character.NewCatalog()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tPOSITION\tERA")
			for _, id := range catalog.IDs() {
				p, err := catalog.GetCharacter(cmd.Context(), id)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Position, p.Era)
			}
			return w.Flush()
		},
	}
}
