package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPendingCmd(opts *options) *cobra.Command {
	var discard bool
	cmd := &cobra.Command{
		Use:   "pending",
		Short: "Afficher ou supprimer la simulation en cours",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, session, err := opts.open()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			ctx := cmd.Context()

			sim, err := c.PendingSimulation(ctx)
			if err != nil {
				return err
			}
			if sim == nil {
				fmt.Fprintln(out, dimStyle.Render("Aucune simulation en cours."))
				return session.Save(c)
			}
			if discard {
				if err := c.DiscardPending(ctx); err != nil {
					return err
				}
				fmt.Fprintln(out, okStyle.Render("Simulation "+sim.ID+" supprimée."))
				return session.Save(c)
			}
			fmt.Fprintln(out, renderSimulation(sim))
			return session.Save(c)
		},
	}
	cmd.Flags().BoolVar(&discard, "discard", false, "supprimer la simulation en cours")
	return cmd
}

func newShowCmd(opts *options) *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "show <simulation-id>",
		Short: "Afficher le résultat d'une simulation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := opts.open()
			if err != nil {
				return err
			}
			sim, err := c.GetSimulation(cmd.Context(), args[0], token)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderSimulation(sim))
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "jeton de vérification remis à la création")
	return cmd
}
