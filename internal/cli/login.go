package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newLoginCmd(opts *options) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Se connecter pour rattacher les simulations à son compte",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, session, err := opts.open()
			if err != nil {
				return err
			}
			if password == "" {
				p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
				if password, err = p.ask("Mot de passe :"); err != nil {
					return err
				}
			}
			if email == "" || password == "" {
				return errors.New("email and password are required")
			}
			res, err := c.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			session.Token = res.Token
			if err := session.Save(c); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("Connecté en tant que "+res.User.Email))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "adresse e-mail du compte")
	cmd.Flags().StringVar(&password, "password", "", "mot de passe (demandé si absent)")
	return cmd
}
