// Package cli implements colisctl, the terminal front end of the simulation wizard.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"colisapp/internal/client"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultAPI = "http://localhost:8080/api"

type options struct {
	v *viper.Viper
}

func (o *options) api() string         { return o.v.GetString("api") }
func (o *options) sessionPath() string { return o.v.GetString("session") }
func (o *options) maxParcels() int {
	if n := o.v.GetInt("colis_max_per_envoi"); n > 0 {
		return n
	}
	return 10
}

// open builds a client restored from the session file.
func (o *options) open() (*client.Client, *Session, error) {
	c, err := client.New(o.api())
	if err != nil {
		return nil, nil, err
	}
	s, err := LoadSession(o.sessionPath())
	if err != nil {
		return nil, nil, err
	}
	s.Apply(c)
	return c, s, nil
}

func newRootCmd() *cobra.Command {
	opts := &options{v: viper.New()}
	opts.v.SetDefault("api", defaultAPI)
	opts.v.SetDefault("session", defaultSessionPath())
	opts.v.SetDefault("colis_max_per_envoi", 10)
	opts.v.SetEnvPrefix("colisapp")
	opts.v.AutomaticEnv()
	_ = opts.v.BindEnv("colis_max_per_envoi", "COLIS_MAX_PER_ENVOI")

	cmd := &cobra.Command{
		Use:           "colisctl",
		Short:         "Simuler et suivre des envois ColisApp",
		Long:          "colisctl guides you through a ColisApp shipment simulation from the terminal.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().String("api", defaultAPI, "ColisApp API base URL (env COLISAPP_API)")
	cmd.PersistentFlags().String("session", defaultSessionPath(), "file keeping the token and pending-simulation cookie")
	_ = opts.v.BindPFlag("api", cmd.PersistentFlags().Lookup("api"))
	_ = opts.v.BindPFlag("session", cmd.PersistentFlags().Lookup("session"))

	cmd.AddCommand(newSimulateCmd(opts))
	cmd.AddCommand(newPendingCmd(opts))
	cmd.AddCommand(newLoginCmd(opts))
	cmd.AddCommand(newShowCmd(opts))
	return cmd
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".colisctl.json"
	}
	return filepath.Join(dir, "colisctl", "session.json")
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

func Execute() error {
	err := newRootCmd().Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Erreur : "+err.Error()))
	}
	return err
}
